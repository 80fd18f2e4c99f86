package model

import (
	"fmt"
	"strings"
)

type PieceType string

const (
	King   PieceType = "king"
	Queen  PieceType = "queen"
	Rook   PieceType = "rook"
	Bishop PieceType = "bishop"
	Knight PieceType = "knight"
	Pawn   PieceType = "pawn"
)

// Letter returns the upper-case notation letter for the piece type.
func (p PieceType) Letter() string {
	switch p {
	case King:
		return "K"
	case Queen:
		return "Q"
	case Rook:
		return "R"
	case Bishop:
		return "B"
	case Knight:
		return "N"
	case Pawn:
		return "P"
	}
	return ""
}

func (p PieceType) Valid() bool {
	return p.Letter() != ""
}

// PieceTypeFromLetter maps a notation letter of either case back to its type.
func PieceTypeFromLetter(r rune) (PieceType, bool) {
	switch r {
	case 'k', 'K':
		return King, true
	case 'q', 'Q':
		return Queen, true
	case 'r', 'R':
		return Rook, true
	case 'b', 'B':
		return Bishop, true
	case 'n', 'N':
		return Knight, true
	case 'p', 'P':
		return Pawn, true
	}
	return "", false
}

type Color string

const (
	White Color = "white"
	Black Color = "black"
)

func (c Color) Opponent() Color {
	if c == White {
		return Black
	}
	return White
}

// Forward is the row delta of a pawn advance. White starts on rows 6-7 and moves toward row 0.
func (c Color) Forward() int {
	if c == White {
		return -1
	}
	return 1
}

// HomeRow is the row holding the color's king and rooks in the initial setup.
func (c Color) HomeRow() int {
	if c == White {
		return 7
	}
	return 0
}

func (c Color) PawnRow() int {
	return c.HomeRow() + c.Forward()
}

// PromotionRow is the farthest row from the color's home row.
func (c Color) PromotionRow() int {
	return 7 - c.HomeRow()
}

// Position is a board coordinate. Row 0 is rank 8, column 0 is file a.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (p Position) Valid() bool {
	return p.Row >= 0 && p.Row < 8 && p.Col >= 0 && p.Col < 8
}

func (p Position) Offset(dRow, dCol int) Position {
	return Position{Row: p.Row + dRow, Col: p.Col + dCol}
}

// String renders the square in file-rank form, e.g. "e4".
func (p Position) String() string {
	return fmt.Sprintf("%c%d", 'a'+p.Col, 8-p.Row)
}

func (p Position) File() string {
	return fmt.Sprintf("%c", 'a'+p.Col)
}

func ParsePosition(s string) (Position, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if len(s) != 2 || s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return Position{}, fmt.Errorf("invalid square %q", s)
	}
	return Position{Row: 8 - int(s[1]-'0'), Col: int(s[0] - 'a')}, nil
}

type Piece struct {
	Type     PieceType `json:"type"`
	Color    Color     `json:"color"`
	Position Position  `json:"position"`
	HasMoved bool      `json:"hasMoved"`
}

type Square struct {
	Position Position `json:"position"`
	Piece    *Piece   `json:"piece"`
}

// Board is the 8x8 grid. Copying a Board value shares pieces; use Clone for an independent board.
type Board [8][8]Square

func NewEmptyBoard() Board {
	var b Board
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			b[row][col].Position = Position{Row: row, Col: col}
		}
	}
	return b
}

var backRank = [8]PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

func NewInitialBoard() Board {
	b := NewEmptyBoard()
	for col := 0; col < 8; col++ {
		for _, color := range []Color{White, Black} {
			b.Set(Position{Row: color.HomeRow(), Col: col}, &Piece{Type: backRank[col], Color: color})
			b.Set(Position{Row: color.PawnRow(), Col: col}, &Piece{Type: Pawn, Color: color})
		}
	}
	return b
}

// At returns the piece on p, or nil when p is empty or off the board.
func (b *Board) At(p Position) *Piece {
	if !p.Valid() {
		return nil
	}
	return b[p.Row][p.Col].Piece
}

// Set places piece on p and keeps the piece's stored position in sync. A nil piece clears p.
func (b *Board) Set(p Position, piece *Piece) {
	if !p.Valid() {
		return
	}
	b[p.Row][p.Col].Piece = piece
	if piece != nil {
		piece.Position = p
	}
}

func (b *Board) Clear(p Position) {
	b.Set(p, nil)
}

func (b *Board) Clone() Board {
	out := *b
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			if pc := b[row][col].Piece; pc != nil {
				cp := *pc
				out[row][col].Piece = &cp
			}
		}
	}
	return out
}

// Pieces lists the pieces of color in row-major order. An empty color lists every piece.
func (b *Board) Pieces(color Color) []*Piece {
	var pieces []*Piece
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			pc := b[row][col].Piece
			if pc != nil && (color == "" || pc.Color == color) {
				pieces = append(pieces, pc)
			}
		}
	}
	return pieces
}

func (b *Board) FindKing(color Color) (Position, bool) {
	for _, pc := range b.Pieces(color) {
		if pc.Type == King {
			return pc.Position, true
		}
	}
	return Position{}, false
}
