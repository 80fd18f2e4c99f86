package model

// Move is the history entry produced when a move is committed.
type Move struct {
	From          Position   `json:"from"`
	To            Position   `json:"to"`
	Piece         Piece      `json:"piece"`
	CapturedPiece *Piece     `json:"capturedPiece"`
	IsCheck       bool       `json:"isCheck"`
	IsCheckmate   bool       `json:"isCheckmate"`
	IsCastling    bool       `json:"isCastling"`
	IsEnPassant   bool       `json:"isEnPassant"`
	IsPromotion   bool       `json:"isPromotion"`
	Promotion     *PieceType `json:"promotion"`
	Algebraic     string     `json:"san"`
	Coordinate    string     `json:"uci"`
	FENBefore     string     `json:"fenBefore"`
	FENAfter      string     `json:"fenAfter"`
}

// Clone copies the captured piece and promotion kind so the result shares no pointers with m.
func (m Move) Clone() Move {
	if m.CapturedPiece != nil {
		captured := *m.CapturedPiece
		m.CapturedPiece = &captured
	}
	if m.Promotion != nil {
		promotion := *m.Promotion
		m.Promotion = &promotion
	}
	return m
}

type CastlingRights struct {
	WhiteKingSide  bool `json:"whiteKingSide"`
	WhiteQueenSide bool `json:"whiteQueenSide"`
	BlackKingSide  bool `json:"blackKingSide"`
	BlackQueenSide bool `json:"blackQueenSide"`
}

func AllCastlingRights() CastlingRights {
	return CastlingRights{WhiteKingSide: true, WhiteQueenSide: true, BlackKingSide: true, BlackQueenSide: true}
}

func (c CastlingRights) KingSide(color Color) bool {
	if color == White {
		return c.WhiteKingSide
	}
	return c.BlackKingSide
}

func (c CastlingRights) QueenSide(color Color) bool {
	if color == White {
		return c.WhiteQueenSide
	}
	return c.BlackQueenSide
}

func (c *CastlingRights) ClearKingSide(color Color) {
	if color == White {
		c.WhiteKingSide = false
	} else {
		c.BlackKingSide = false
	}
}

func (c *CastlingRights) ClearQueenSide(color Color) {
	if color == White {
		c.WhiteQueenSide = false
	} else {
		c.BlackQueenSide = false
	}
}

func (c *CastlingRights) Clear(color Color) {
	c.ClearKingSide(color)
	c.ClearQueenSide(color)
}
