package weiqi

import "fmt"

// StoneColor is the color of a stone. Empty is only ever reported by board queries.
type StoneColor int8

const (
	Empty StoneColor = 0
	Black StoneColor = 1
	White StoneColor = -1
)

// Opposite returns the other player's color
func (c StoneColor) Opposite() StoneColor {
	return -c
}

// Valid reports whether c is Black or White
func (c StoneColor) Valid() bool {
	return c == Black || c == White
}

func (c StoneColor) String() string {
	switch c {
	case Black:
		return "B"
	case White:
		return "W"
	}
	return "?"
}

func (c StoneColor) index() int {
	if c == White {
		return 1
	}
	return 0
}

// Position stores coordinates of an intersection, 0-indexed from the top left
type Position struct {
	X, Y int
}

// adjacent returns the orthogonal neighbours, including ones off the board
func (p Position) adjacent() [4]Position {
	return [4]Position{
		{p.X, p.Y - 1},
		{p.X + 1, p.Y},
		{p.X, p.Y + 1},
		{p.X - 1, p.Y},
	}
}

// String prints the position as SGF letters ("cd" is x=2, y=3)
func (p Position) String() string {
	colLetter, err1 := coordinateToLetter(p.X)
	rowLetter, err2 := coordinateToLetter(p.Y)
	if err1 != nil {
		colLetter = "?"
	}
	if err2 != nil {
		rowLetter = "?"
	}
	return colLetter + rowLetter
}

// ParsePosition parses two SGF letters into a Position
func ParsePosition(s string) (Position, error) {
	if len(s) != 2 {
		return Position{}, fmt.Errorf("invalid position: %q", s)
	}
	x, err1 := letterToCoordinate(s[0])
	y, err2 := letterToCoordinate(s[1])
	if (err1 != nil) || (err2 != nil) {
		return Position{}, fmt.Errorf("invalid position: %q", s)
	}
	return Position{x, y}, nil
}

// Move stores the color and intersection of a move
type Move struct {
	Color    StoneColor
	Position Position
	Pass     bool
}

// NewMove creates a Move with coordinates
func NewMove(color StoneColor, x, y int) Move {
	return Move{Color: color, Position: Position{x, y}}
}

// NewMovePass creates a pass Move
func NewMovePass(color StoneColor) Move {
	return Move{Color: color, Pass: true}
}

// ParseMove parses an SGF-style string like "Bcd" (pass is "W", not "Wtt")
func ParseMove(moveString string) (Move, error) {

	// Check length of string
	pass := false
	switch len(moveString) {
	case 1:
		pass = true
	case 3:
	default:
		return Move{}, fmt.Errorf("invalid move string: %q", moveString)
	}

	// Parse color
	var color StoneColor
	switch moveString[0] {
	case 'B':
		color = Black
	case 'W':
		color = White
	default:
		return Move{}, fmt.Errorf("invalid color in move: %q", moveString)
	}

	if pass {
		return NewMovePass(color), nil
	}
	p, err := ParsePosition(moveString[1:])
	if err != nil {
		return Move{}, fmt.Errorf("invalid coordinates in move: %q", moveString)
	}
	return Move{Color: color, Position: p}, nil
}

func (m Move) String() string {
	if m.Pass {
		return m.Color.String()
	}
	return m.Color.String() + m.Position.String()
}

func letterToCoordinate(letter byte) (int, error) {
	value := int(letter)
	if (value >= 97) && (value <= 122) { // lowercase
		return value - 97, nil
	}
	if (value >= 65) && (value <= 90) { // uppercase
		return value - 65 + 26, nil
	}
	return 0, fmt.Errorf("invalid letter: %q", letter)
}

func coordinateToLetter(coordinate int) (string, error) {
	if (coordinate < 0) || (coordinate >= 52) {
		return "", fmt.Errorf("invalid coordinate: %d", coordinate)
	}
	if coordinate < 26 { // lowercase
		return string(byte(coordinate + 97)), nil
	}
	return string(byte(coordinate - 26 + 65)), nil // uppercase
}
