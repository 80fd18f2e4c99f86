package engine

import "github.com/benbeisheim/chess-backend/internal/model"

const (
	kingCol          = 4
	kingSideRookCol  = 7
	queenSideRookCol = 0
)

// LegalMoves returns the destinations piece may move to in state, castling included. Pieces of
// the side not on move have no legal moves.
func LegalMoves(state model.GameState, piece *model.Piece) []model.Position {
	if piece == nil || piece.Color != state.CurrentTurn {
		return nil
	}
	var legal []model.Position
	for _, to := range PseudoLegalMoves(&state.Board, piece, state.EnPassantTarget) {
		if !leavesKingAttacked(&state.Board, piece, to, state.EnPassantTarget) {
			legal = append(legal, to)
		}
	}
	if piece.Type == model.King && !piece.HasMoved {
		legal = append(legal, castlingMoves(state, piece)...)
	}
	return legal
}

// LegalMovesAt looks up the piece on pos and returns its legal destinations.
func LegalMovesAt(state model.GameState, pos model.Position) []model.Position {
	return LegalMoves(state, state.Board.At(pos))
}

// AllLegalMoves maps every piece of the side to move to its legal destinations. Pieces without a
// legal move are omitted.
func AllLegalMoves(state model.GameState) map[model.Position][]model.Position {
	out := make(map[model.Position][]model.Position)
	for _, pc := range state.Board.Pieces(state.CurrentTurn) {
		if moves := LegalMoves(state, pc); len(moves) > 0 {
			out[pc.Position] = moves
		}
	}
	return out
}

func hasLegalMove(state model.GameState, color model.Color) bool {
	for _, pc := range state.Board.Pieces(color) {
		if len(LegalMoves(state, pc)) > 0 {
			return true
		}
	}
	return false
}

// leavesKingAttacked plays piece to `to` on a scratch board and checks the mover's king.
func leavesKingAttacked(board *model.Board, piece *model.Piece, to model.Position, enPassant *model.Position) bool {
	scratch := board.Clone()
	from := piece.Position
	moving := scratch.At(from)
	if moving.Type == model.Pawn && enPassant != nil && *enPassant == to && scratch.At(to) == nil {
		scratch.Clear(model.Position{Row: from.Row, Col: to.Col})
	}
	scratch.Clear(from)
	scratch.Set(to, moving)
	return IsInCheck(&scratch, piece.Color, enPassant)
}

func castlingMoves(state model.GameState, king *model.Piece) []model.Position {
	row := king.Color.HomeRow()
	if king.Position != (model.Position{Row: row, Col: kingCol}) {
		return nil
	}
	var moves []model.Position
	if state.CastlingRights.KingSide(king.Color) && canCastle(&state.Board, king.Color, kingSideRookCol, state.EnPassantTarget) {
		moves = append(moves, model.Position{Row: row, Col: kingCol + 2})
	}
	if state.CastlingRights.QueenSide(king.Color) && canCastle(&state.Board, king.Color, queenSideRookCol, state.EnPassantTarget) {
		moves = append(moves, model.Position{Row: row, Col: kingCol - 2})
	}
	return moves
}

func canCastle(board *model.Board, color model.Color, rookCol int, enPassant *model.Position) bool {
	row := color.HomeRow()
	rook := board.At(model.Position{Row: row, Col: rookCol})
	if rook == nil || rook.Type != model.Rook || rook.Color != color || rook.HasMoved {
		return false
	}

	lo, hi := rookCol, kingCol
	if lo > hi {
		lo, hi = hi, lo
	}
	for col := lo + 1; col < hi; col++ {
		if board.At(model.Position{Row: row, Col: col}) != nil {
			return false
		}
	}

	step := 1
	if rookCol < kingCol {
		step = -1
	}
	for i := 0; i <= 2; i++ {
		sq := model.Position{Row: row, Col: kingCol + i*step}
		if IsSquareAttacked(board, sq, color.Opponent(), enPassant) {
			return false
		}
	}
	return true
}
