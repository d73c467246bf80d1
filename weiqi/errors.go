package weiqi

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrWrongPlayer means that it is the other player's turn
var ErrWrongPlayer = errors.New("wrong player")

// ErrOutsideBoard means that the position exceeds the size of the board
var ErrOutsideBoard = errors.New("outside board")

// ErrVertexNotEmpty means that there is already a stone at the position
var ErrVertexNotEmpty = errors.New("vertex not empty")

// ErrSuicide means that the move is suicidal
var ErrSuicide = errors.New("suicide")

// ErrKo means that the move recreates a position from the ruleset's ko window
var ErrKo = errors.New("ko")

// ErrUnknownRuleset means that a ruleset name is neither predefined nor a custom label
var ErrUnknownRuleset = errors.New("ruleset not supported")

// ErrInvalidColor means that a color was neither black nor white
var ErrInvalidColor = errors.New("invalid color")

// ErrInvalidSize means that a board size is not usable
var ErrInvalidSize = errors.New("invalid board size")

// ErrInvalidHandicap means that a handicap is outside [0, 9]
var ErrInvalidHandicap = errors.New("invalid handicap")

// ErrGameOver means that the game has already ended
var ErrGameOver = errors.New("game over")

// ErrWrongState means that the operation is not allowed in the current game state
var ErrWrongState = errors.New("operation not allowed in current game state")

// GameError wraps a rule violation with the attempted move
type GameError struct {
	err       error
	attempted Move
}

func (e GameError) Error() string {
	return fmt.Sprintf("move %q invalid: %s", e.attempted, e.err)
}

func (e GameError) Unwrap() error {
	return e.err
}

// Move returns the move that was rejected
func (e GameError) Move() Move {
	return e.attempted
}

// isRuleViolation separates expected rule outcomes from caller errors
func isRuleViolation(err error) bool {
	return errors.Is(err, ErrVertexNotEmpty) || errors.Is(err, ErrSuicide) || errors.Is(err, ErrKo)
}
