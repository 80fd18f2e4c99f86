package service

import (
	"fmt"
	"strings"

	"github.com/benbeisheim/chess-backend/internal/engine"
	"github.com/benbeisheim/chess-backend/internal/model"
)

// MoveRequest names a move by squares or, when UCI is set, by coordinate notation.
type MoveRequest struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Promotion string `json:"promotion"`
	UCI       string `json:"uci"`
}

// Parse resolves the request into squares and a promotion kind ("" for the default).
func (r MoveRequest) Parse() (from, to model.Position, promotion model.PieceType, err error) {
	if r.UCI != "" {
		return engine.ParseCoordinate(r.UCI)
	}
	if from, err = model.ParsePosition(r.From); err != nil {
		return from, to, "", fmt.Errorf("from %q: %w", r.From, ErrBadRequest)
	}
	if to, err = model.ParsePosition(r.To); err != nil {
		return from, to, "", fmt.Errorf("to %q: %w", r.To, ErrBadRequest)
	}
	if promotion, err = ParsePromotion(r.Promotion); err != nil {
		return from, to, "", err
	}
	return from, to, promotion, nil
}

// ParsePromotion accepts a piece name ("knight") or letter ("n"); empty stays empty.
func ParsePromotion(s string) (model.PieceType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "", nil
	}
	if kind := model.PieceType(s); kind.Valid() {
		return kind, nil
	}
	if len(s) == 1 {
		if kind, ok := model.PieceTypeFromLetter(rune(s[0])); ok {
			return kind, nil
		}
	}
	return "", fmt.Errorf("promotion %q: %w", s, engine.ErrInvalidPromotion)
}
