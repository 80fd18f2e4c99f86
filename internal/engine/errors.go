package engine

import (
	"errors"
	"fmt"

	"github.com/benbeisheim/chess-backend/internal/model"
)

var (
	// ErrIllegalMove is the root of every move rejection.
	ErrIllegalMove = errors.New("illegal move")

	ErrNoPiece          = fmt.Errorf("no piece at from square: %w", ErrIllegalMove)
	ErrWrongTurn        = fmt.Errorf("not your turn: %w", ErrIllegalMove)
	ErrOutOfBounds      = fmt.Errorf("square out of bounds: %w", ErrIllegalMove)
	ErrInvalidPromotion = fmt.Errorf("invalid promotion piece: %w", ErrIllegalMove)

	// ErrGameOver rejects moves once the game has reached a terminal status.
	ErrGameOver = errors.New("game is over")

	ErrInvalidFEN = errors.New("invalid FEN string")
)

// MoveError records the squares of a rejected move.
type MoveError struct {
	From model.Position
	To   model.Position
	Err  error
}

func (e *MoveError) Error() string {
	return fmt.Sprintf("move %s-%s: %v", e.From, e.To, e.Err)
}

func (e *MoveError) Unwrap() error {
	return e.Err
}

func reject(from, to model.Position, err error) error {
	return &MoveError{From: from, To: to, Err: err}
}
