package engine

import (
	"github.com/benbeisheim/chess-backend/internal/model"
)

// fiftyMoveLimit is the half-move clock value at which the game is drawn.
const fiftyMoveLimit = 100

// NewGame returns the standard starting position with white to move.
func NewGame() model.GameState {
	return model.GameState{
		Board:          model.NewInitialBoard(),
		CurrentTurn:    model.White,
		Moves:          []model.Move{},
		Status:         model.StatusInProgress,
		CastlingRights: model.AllCastlingRights(),
		HalfMoveClock:  0,
		FullMoveNumber: 1,
	}
}

// NewGameFromFEN decodes fen and classifies check and terminal status for the side to move.
func NewGameFromFEN(fen string) (model.GameState, error) {
	state, err := DecodeFEN(fen)
	if err != nil {
		return model.GameState{}, err
	}
	classify(&state, state.CurrentTurn.Opponent())
	return state, nil
}

// ApplyMove validates and plays from-to for the side to move and returns the resulting state.
// An empty promotion means queen. The input state is never modified; on rejection the returned
// state is the zero value and the error unwraps to ErrIllegalMove or ErrGameOver.
func ApplyMove(state model.GameState, from, to model.Position, promotion model.PieceType) (model.GameState, error) {
	if state.Status.Over() {
		return model.GameState{}, reject(from, to, ErrGameOver)
	}
	if !from.Valid() || !to.Valid() {
		return model.GameState{}, reject(from, to, ErrOutOfBounds)
	}
	piece := state.Board.At(from)
	if piece == nil {
		return model.GameState{}, reject(from, to, ErrNoPiece)
	}
	if piece.Color != state.CurrentTurn {
		return model.GameState{}, reject(from, to, ErrWrongTurn)
	}
	if !containsPosition(LegalMoves(state, piece), to) {
		return model.GameState{}, reject(from, to, ErrIllegalMove)
	}

	mover := piece.Color
	isPromotion := piece.Type == model.Pawn && to.Row == mover.PromotionRow()
	if isPromotion {
		if promotion == "" {
			promotion = model.Queen
		}
		if !validPromotion(promotion) {
			return model.GameState{}, reject(from, to, ErrInvalidPromotion)
		}
	}

	board := state.Board.Clone()
	moving := board.At(from)
	snapshot := *moving
	record := model.Move{
		From:        from,
		To:          to,
		Piece:       snapshot,
		IsPromotion: isPromotion,
		FENBefore:   EncodeFEN(state),
	}
	if captured := board.At(to); captured != nil {
		cp := *captured
		record.CapturedPiece = &cp
	}

	if moving.Type == model.King && abs(to.Col-from.Col) == 2 {
		record.IsCastling = true
		rookFrom, rookTo := queenSideRookCol, kingCol-1
		if to.Col > from.Col {
			rookFrom, rookTo = kingSideRookCol, kingCol+1
		}
		if rook := board.At(model.Position{Row: from.Row, Col: rookFrom}); rook != nil {
			board.Clear(rook.Position)
			rook.HasMoved = true
			board.Set(model.Position{Row: from.Row, Col: rookTo}, rook)
		}
	}

	if moving.Type == model.Pawn && state.EnPassantTarget != nil && *state.EnPassantTarget == to && board.At(to) == nil {
		capturedAt := model.Position{Row: to.Row - mover.Forward(), Col: to.Col}
		if captured := board.At(capturedAt); captured != nil {
			cp := *captured
			record.CapturedPiece = &cp
			record.IsEnPassant = true
			board.Clear(capturedAt)
		}
	}

	if isPromotion {
		moving.Type = promotion
		p := promotion
		record.Promotion = &p
	}

	board.Clear(from)
	moving.HasMoved = true
	board.Set(to, moving)

	next := model.GameState{
		Board:          board,
		CurrentTurn:    mover.Opponent(),
		Status:         model.StatusInProgress,
		CastlingRights: nextCastlingRights(state.CastlingRights, snapshot, from, record.CapturedPiece),
		HalfMoveClock:  state.HalfMoveClock + 1,
		FullMoveNumber: state.FullMoveNumber,
	}
	if snapshot.Type == model.Pawn && abs(to.Row-from.Row) == 2 {
		next.EnPassantTarget = &model.Position{Row: (from.Row + to.Row) / 2, Col: from.Col}
	}
	if mover == model.Black {
		next.FullMoveNumber++
	}
	if record.CapturedPiece != nil || snapshot.Type == model.Pawn {
		next.HalfMoveClock = 0
	}

	classify(&next, mover)

	record.IsCheck = next.IsCheck
	record.IsCheckmate = next.Status == model.StatusCheckmate
	record.Algebraic = AlgebraicNotation(record)
	record.Coordinate = CoordinateNotation(from, to, record.Promotion)
	record.FENAfter = EncodeFEN(next)

	next.Moves = make([]model.Move, len(state.Moves), len(state.Moves)+1)
	copy(next.Moves, state.Moves)
	next.Moves = append(next.Moves, record)
	return next, nil
}

// classify sets IsCheck, Status and Winner for the side to move. lastMover wins on checkmate.
func classify(state *model.GameState, lastMover model.Color) {
	side := state.CurrentTurn
	state.IsCheck = IsInCheck(&state.Board, side, state.EnPassantTarget)
	state.Status = model.StatusInProgress
	state.Winner = nil

	canMove := hasLegalMove(*state, side)
	switch {
	case state.IsCheck && !canMove:
		state.Status = model.StatusCheckmate
		w := lastMover
		state.Winner = &w
	case !state.IsCheck && !canMove:
		state.Status = model.StatusStalemate
	case state.HalfMoveClock >= fiftyMoveLimit || insufficientMaterial(&state.Board):
		state.Status = model.StatusDraw
	}
}

// insufficientMaterial covers bare kings and king plus a single minor piece against a bare king.
func insufficientMaterial(board *model.Board) bool {
	pieces := board.Pieces("")
	switch len(pieces) {
	case 2:
		return true
	case 3:
		for _, pc := range pieces {
			if pc.Type == model.Knight || pc.Type == model.Bishop {
				return true
			}
		}
	}
	return false
}

func nextCastlingRights(rights model.CastlingRights, moved model.Piece, from model.Position, captured *model.Piece) model.CastlingRights {
	switch moved.Type {
	case model.King:
		rights.Clear(moved.Color)
	case model.Rook:
		clearRookSide(&rights, moved.Color, from.Col)
	}
	if captured != nil && captured.Type == model.Rook && captured.Position.Row == captured.Color.HomeRow() {
		clearRookSide(&rights, captured.Color, captured.Position.Col)
	}
	return rights
}

// clearRookSide drops the right matching a rook column. A moving rook clears it from any row.
func clearRookSide(rights *model.CastlingRights, color model.Color, col int) {
	switch col {
	case queenSideRookCol:
		rights.ClearQueenSide(color)
	case kingSideRookCol:
		rights.ClearKingSide(color)
	}
}

func validPromotion(t model.PieceType) bool {
	switch t {
	case model.Queen, model.Rook, model.Bishop, model.Knight:
		return true
	}
	return false
}

func containsPosition(list []model.Position, p model.Position) bool {
	for _, q := range list {
		if q == p {
			return true
		}
	}
	return false
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
