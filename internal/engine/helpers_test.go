package engine

import (
	"sort"
	"testing"

	"github.com/benbeisheim/chess-backend/internal/model"
)

func mustFEN(t *testing.T, fen string) model.GameState {
	t.Helper()
	state, err := NewGameFromFEN(fen)
	if err != nil {
		t.Fatalf("NewGameFromFEN(%q): %v", fen, err)
	}
	return state
}

func mustPos(t *testing.T, s string) model.Position {
	t.Helper()
	p, err := model.ParsePosition(s)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

// play applies coordinate moves in order and fails the test on the first rejection.
func play(t *testing.T, state model.GameState, moves ...string) model.GameState {
	t.Helper()
	for _, mv := range moves {
		from, to, promo, err := ParseCoordinate(mv)
		if err != nil {
			t.Fatalf("ParseCoordinate(%q): %v", mv, err)
		}
		state, err = ApplyMove(state, from, to, promo)
		if err != nil {
			t.Fatalf("ApplyMove(%s): %v", mv, err)
		}
	}
	return state
}

func squares(list []model.Position) []string {
	out := make([]string, 0, len(list))
	for _, p := range list {
		out = append(out, p.String())
	}
	sort.Strings(out)
	return out
}

func countMoves(moves map[model.Position][]model.Position) int {
	n := 0
	for _, to := range moves {
		n += len(to)
	}
	return n
}

var promotionTypes = []model.PieceType{model.Queen, model.Rook, model.Bishop, model.Knight}

// perft counts leaf nodes of the legal move tree, expanding every promotion choice.
func perft(t *testing.T, state model.GameState, depth int) int {
	t.Helper()
	if depth == 0 {
		return 1
	}
	nodes := 0
	for from, targets := range AllLegalMoves(state) {
		piece := state.Board.At(from)
		for _, to := range targets {
			promos := []model.PieceType{""}
			if piece.Type == model.Pawn && to.Row == piece.Color.PromotionRow() {
				promos = promotionTypes
			}
			for _, promo := range promos {
				if depth == 1 {
					nodes++
					continue
				}
				next, err := ApplyMove(state, from, to, promo)
				if err != nil {
					t.Fatalf("perft ApplyMove %s%s: %v", from, to, err)
				}
				next.Status = model.StatusInProgress
				nodes += perft(t, next, depth-1)
			}
		}
	}
	return nodes
}
