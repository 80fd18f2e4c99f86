// Package engine implements the chess rules: move generation, legality, state transitions and
// notation. Every function is pure; callers own the GameState values passed in and returned.
package engine

import "github.com/benbeisheim/chess-backend/internal/model"

type direction struct {
	dRow, dCol int
}

var (
	rookDirs   = []direction{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	bishopDirs = []direction{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	queenDirs  = append(append([]direction{}, rookDirs...), bishopDirs...)
	kingDirs   = queenDirs
	knightDirs = []direction{{2, 1}, {2, -1}, {-2, 1}, {-2, -1}, {1, 2}, {1, -2}, {-1, 2}, {-1, -2}}
)

// PseudoLegalMoves returns the destinations piece can reach by its movement rule, ignoring whether
// the move exposes its own king. Castling is not included.
func PseudoLegalMoves(board *model.Board, piece *model.Piece, enPassant *model.Position) []model.Position {
	switch piece.Type {
	case model.Pawn:
		return pawnMoves(board, piece, enPassant)
	case model.Knight:
		return stepMoves(board, piece, knightDirs)
	case model.Bishop:
		return slideMoves(board, piece, bishopDirs)
	case model.Rook:
		return slideMoves(board, piece, rookDirs)
	case model.Queen:
		return slideMoves(board, piece, queenDirs)
	case model.King:
		return stepMoves(board, piece, kingDirs)
	default:
		return nil
	}
}

func pawnMoves(board *model.Board, piece *model.Piece, enPassant *model.Position) []model.Position {
	var moves []model.Position
	dir := piece.Color.Forward()
	from := piece.Position

	one := from.Offset(dir, 0)
	if one.Valid() && board.At(one) == nil {
		moves = append(moves, one)
		two := from.Offset(2*dir, 0)
		if from.Row == piece.Color.PawnRow() && two.Valid() && board.At(two) == nil {
			moves = append(moves, two)
		}
	}

	for _, dCol := range []int{-1, 1} {
		target := from.Offset(dir, dCol)
		if !target.Valid() {
			continue
		}
		if occupant := board.At(target); occupant != nil && occupant.Color != piece.Color {
			moves = append(moves, target)
		} else if enPassant != nil && *enPassant == target {
			moves = append(moves, target)
		}
	}
	return moves
}

func stepMoves(board *model.Board, piece *model.Piece, dirs []direction) []model.Position {
	var moves []model.Position
	for _, d := range dirs {
		target := piece.Position.Offset(d.dRow, d.dCol)
		if !target.Valid() {
			continue
		}
		if occupant := board.At(target); occupant == nil || occupant.Color != piece.Color {
			moves = append(moves, target)
		}
	}
	return moves
}

func slideMoves(board *model.Board, piece *model.Piece, dirs []direction) []model.Position {
	var moves []model.Position
	for _, d := range dirs {
		target := piece.Position.Offset(d.dRow, d.dCol)
		for target.Valid() {
			occupant := board.At(target)
			if occupant == nil {
				moves = append(moves, target)
			} else {
				if occupant.Color != piece.Color {
					moves = append(moves, target)
				}
				break
			}
			target = target.Offset(d.dRow, d.dCol)
		}
	}
	return moves
}
