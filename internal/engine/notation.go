package engine

import (
	"fmt"
	"strings"

	"github.com/benbeisheim/chess-backend/internal/model"
)

// AlgebraicNotation renders a committed move in simplified SAN: no check suffixes and no
// disambiguation between identical pieces.
func AlgebraicNotation(m model.Move) string {
	if m.IsCastling {
		if m.To.Col > m.From.Col {
			return "O-O"
		}
		return "O-O-O"
	}

	var sb strings.Builder
	if m.Piece.Type != model.Pawn {
		sb.WriteString(m.Piece.Type.Letter())
	}
	if m.CapturedPiece != nil {
		if m.Piece.Type == model.Pawn {
			sb.WriteString(m.From.File())
		}
		sb.WriteByte('x')
	}
	sb.WriteString(m.To.String())
	if m.IsPromotion && m.Promotion != nil {
		sb.WriteByte('=')
		sb.WriteString(m.Promotion.Letter())
	}
	return sb.String()
}

// CoordinateNotation renders from and to in file-rank form with a lower-case promotion letter
// when promotion is set.
func CoordinateNotation(from, to model.Position, promotion *model.PieceType) string {
	s := from.String() + to.String()
	if promotion != nil {
		s += strings.ToLower(promotion.Letter())
	}
	return s
}

// ParseCoordinate reads a move such as "e2e4" or "e7e8n". A missing promotion letter yields "".
func ParseCoordinate(s string) (model.Position, model.Position, model.PieceType, error) {
	s = strings.TrimSpace(s)
	if len(s) != 4 && len(s) != 5 {
		return model.Position{}, model.Position{}, "", fmt.Errorf("coordinate move %q: %w", s, ErrIllegalMove)
	}
	from, err := model.ParsePosition(s[0:2])
	if err != nil {
		return model.Position{}, model.Position{}, "", fmt.Errorf("%v: %w", err, ErrIllegalMove)
	}
	to, err := model.ParsePosition(s[2:4])
	if err != nil {
		return model.Position{}, model.Position{}, "", fmt.Errorf("%v: %w", err, ErrIllegalMove)
	}
	var promotion model.PieceType
	if len(s) == 5 {
		kind, ok := model.PieceTypeFromLetter(rune(s[4]))
		if !ok || !validPromotion(kind) {
			return model.Position{}, model.Position{}, "", fmt.Errorf("promotion %q: %w", s[4:], ErrInvalidPromotion)
		}
		promotion = kind
	}
	return from, to, promotion, nil
}
