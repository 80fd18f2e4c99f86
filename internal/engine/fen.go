package engine

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/benbeisheim/chess-backend/internal/model"
)

// InitialFEN is the FEN string for the standard starting position.
const InitialFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// EncodeFEN serializes the position fields of state as a six-field FEN string.
func EncodeFEN(state model.GameState) string {
	var sb strings.Builder
	for row := 0; row < 8; row++ {
		empty := 0
		for col := 0; col < 8; col++ {
			pc := state.Board[row][col].Piece
			if pc == nil {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteString(pieceLetter(pc))
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if row < 7 {
			sb.WriteByte('/')
		}
	}

	turn := "w"
	if state.CurrentTurn == model.Black {
		turn = "b"
	}

	ep := "-"
	if state.EnPassantTarget != nil {
		ep = state.EnPassantTarget.String()
	}

	return fmt.Sprintf("%s %s %s %s %d %d", sb.String(), turn, castlingField(state.CastlingRights), ep, state.HalfMoveClock, state.FullMoveNumber)
}

func pieceLetter(pc *model.Piece) string {
	letter := pc.Type.Letter()
	if pc.Color == model.Black {
		return strings.ToLower(letter)
	}
	return letter
}

func castlingField(c model.CastlingRights) string {
	var sb strings.Builder
	if c.WhiteKingSide {
		sb.WriteByte('K')
	}
	if c.WhiteQueenSide {
		sb.WriteByte('Q')
	}
	if c.BlackKingSide {
		sb.WriteByte('k')
	}
	if c.BlackQueenSide {
		sb.WriteByte('q')
	}
	if sb.Len() == 0 {
		return "-"
	}
	return sb.String()
}

// DecodeFEN parses fen into a GameState with an empty history and default check/status fields.
// The clock fields may be omitted and default to 0 and 1. Any other structural problem yields the
// zero GameState and an error wrapping ErrInvalidFEN.
func DecodeFEN(fen string) (model.GameState, error) {
	parts := strings.Fields(fen)
	if len(parts) < 4 || len(parts) > 6 {
		return model.GameState{}, fmt.Errorf("expected 4 to 6 fields, got %d: %w", len(parts), ErrInvalidFEN)
	}

	board, err := parsePlacement(parts[0])
	if err != nil {
		return model.GameState{}, err
	}
	turn, err := parseSideToMove(parts[1])
	if err != nil {
		return model.GameState{}, err
	}
	rights, err := parseCastlingRights(parts[2])
	if err != nil {
		return model.GameState{}, err
	}
	ep, err := parseEnPassant(parts[3])
	if err != nil {
		return model.GameState{}, err
	}
	half, full, err := parseClocks(parts[4:])
	if err != nil {
		return model.GameState{}, err
	}

	return model.GameState{
		Board:           board,
		CurrentTurn:     turn,
		Moves:           []model.Move{},
		Status:          model.StatusInProgress,
		CastlingRights:  rights,
		EnPassantTarget: ep,
		HalfMoveClock:   half,
		FullMoveNumber:  full,
	}, nil
}

func parsePlacement(field string) (model.Board, error) {
	board := model.NewEmptyBoard()
	ranks := strings.Split(field, "/")
	if len(ranks) != 8 {
		return board, fmt.Errorf("expected 8 ranks, got %d: %w", len(ranks), ErrInvalidFEN)
	}
	for row, rank := range ranks {
		col := 0
		for _, c := range rank {
			if c >= '1' && c <= '8' {
				col += int(c - '0')
				continue
			}
			kind, ok := model.PieceTypeFromLetter(c)
			if !ok {
				return board, fmt.Errorf("invalid piece character %q: %w", c, ErrInvalidFEN)
			}
			if col > 7 {
				return board, fmt.Errorf("rank %d overflows: %w", 8-row, ErrInvalidFEN)
			}
			color := model.White
			if unicode.IsLower(c) {
				color = model.Black
			}
			board.Set(model.Position{Row: row, Col: col}, &model.Piece{Type: kind, Color: color})
			col++
		}
		if col != 8 {
			return board, fmt.Errorf("rank %d has %d files: %w", 8-row, col, ErrInvalidFEN)
		}
	}
	return board, nil
}

func parseSideToMove(field string) (model.Color, error) {
	switch field {
	case "w":
		return model.White, nil
	case "b":
		return model.Black, nil
	}
	return "", fmt.Errorf("invalid side to move %q: %w", field, ErrInvalidFEN)
}

func parseCastlingRights(field string) (model.CastlingRights, error) {
	var rights model.CastlingRights
	if field == "-" {
		return rights, nil
	}
	for _, c := range field {
		switch c {
		case 'K':
			rights.WhiteKingSide = true
		case 'Q':
			rights.WhiteQueenSide = true
		case 'k':
			rights.BlackKingSide = true
		case 'q':
			rights.BlackQueenSide = true
		default:
			return model.CastlingRights{}, fmt.Errorf("invalid castling character %q: %w", c, ErrInvalidFEN)
		}
	}
	return rights, nil
}

func parseEnPassant(field string) (*model.Position, error) {
	if field == "-" {
		return nil, nil
	}
	pos, err := model.ParsePosition(field)
	if err != nil {
		return nil, fmt.Errorf("en passant target: %v: %w", err, ErrInvalidFEN)
	}
	return &pos, nil
}

func parseClocks(fields []string) (int, int, error) {
	half, full := 0, 1
	if len(fields) > 0 {
		n, err := strconv.Atoi(fields[0])
		if err != nil || n < 0 {
			return 0, 0, fmt.Errorf("invalid half-move clock %q: %w", fields[0], ErrInvalidFEN)
		}
		half = n
	}
	if len(fields) > 1 {
		n, err := strconv.Atoi(fields[1])
		if err != nil || n < 1 {
			return 0, 0, fmt.Errorf("invalid full-move number %q: %w", fields[1], ErrInvalidFEN)
		}
		full = n
	}
	return half, full, nil
}
