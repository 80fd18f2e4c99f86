package model

type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusCheckmate  Status = "checkmate"
	StatusStalemate  Status = "stalemate"
	StatusDraw       Status = "draw"
)

func (s Status) Over() bool {
	return s != StatusInProgress
}

// GameState is an immutable snapshot of a game. The engine never mutates a GameState it is given;
// every accepted move returns a new value built on a cloned board.
type GameState struct {
	Board           Board          `json:"board"`
	CurrentTurn     Color          `json:"currentTurn"`
	Moves           []Move         `json:"moves"`
	Status          Status         `json:"status"`
	Winner          *Color         `json:"winner"`
	IsCheck         bool           `json:"isCheck"`
	CastlingRights  CastlingRights `json:"castlingRights"`
	EnPassantTarget *Position      `json:"enPassantTarget"`
	HalfMoveClock   int            `json:"halfMoveClock"`
	FullMoveNumber  int            `json:"fullMoveNumber"`
}

// LastMove returns the most recent history entry, if any.
func (s GameState) LastMove() (Move, bool) {
	if len(s.Moves) == 0 {
		return Move{}, false
	}
	return s.Moves[len(s.Moves)-1], true
}

// Clone returns a deep copy that shares nothing mutable with s.
func (s GameState) Clone() GameState {
	out := s
	out.Board = s.Board.Clone()
	out.Moves = make([]Move, len(s.Moves))
	for i, m := range s.Moves {
		out.Moves[i] = m.Clone()
	}
	if s.Winner != nil {
		w := *s.Winner
		out.Winner = &w
	}
	if s.EnPassantTarget != nil {
		ep := *s.EnPassantTarget
		out.EnPassantTarget = &ep
	}
	return out
}
