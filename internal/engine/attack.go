package engine

import "github.com/benbeisheim/chess-backend/internal/model"

// IsSquareAttacked reports whether any piece of byColor attacks square. Pawns attack their two
// forward diagonals whether or not they are occupied; every other piece attacks its pseudo-legal
// destinations.
func IsSquareAttacked(board *model.Board, square model.Position, byColor model.Color, enPassant *model.Position) bool {
	for _, pc := range board.Pieces(byColor) {
		if pc.Type == model.Pawn {
			dir := pc.Color.Forward()
			if square.Row == pc.Position.Row+dir && (square.Col == pc.Position.Col-1 || square.Col == pc.Position.Col+1) {
				return true
			}
			continue
		}
		for _, to := range PseudoLegalMoves(board, pc, enPassant) {
			if to == square {
				return true
			}
		}
	}
	return false
}

// IsInCheck reports whether color's king is attacked. A board without that king is never in check.
func IsInCheck(board *model.Board, color model.Color, enPassant *model.Position) bool {
	kingPos, ok := board.FindKing(color)
	if !ok {
		return false
	}
	return IsSquareAttacked(board, kingPos, color.Opponent(), enPassant)
}
