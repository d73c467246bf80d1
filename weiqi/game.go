/*
Package weiqi implements Go game logic.

A Game owns a Board of stone groups, a Ruleset and a History. Every action
(move, pass, resignation, handicap or setup stone, scoring) is recorded as one
Composite command so it can be undone and redone as a unit.

Rulesets available:

    Japanese      "japanese"  (territory + captures, fixed handicap, 6.5 komi)
    Chinese       "chinese"   (area scoring, fixed handicap, 7.5 komi)
    New Zealand   "nz"        (area scoring, free handicap, suicide allowed, 7 komi)
    Custom                    (user-defined komi, ko window, suicide, scoring, handicap)

Rule outcomes (occupied intersection, suicide, ko) are not errors: PlayMove
reports false and LastRejection tells why.*/
package weiqi

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// State is the phase a game is in
type State int

const (
	StateInit     State = iota // created, no game started
	StateHandicap              // waiting for handicap stones
	StatePlaying
	StateOver
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateHandicap:
		return "handicap"
	case StatePlaying:
		return "playing"
	case StateOver:
		return "over"
	}
	return "unknown"
}

// DefaultSize is the board size of a game built with New
const DefaultSize = 19

// Option configures a Game
type Option func(*Game)

// WithLogger sets the logger for rejected moves and game results
func WithLogger(l *zap.Logger) Option {
	return func(g *Game) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithListener registers a listener before the first game starts
func WithListener(l Listener) Option {
	return func(g *Game) {
		g.AddListener(l)
	}
}

// Game stores Go game information and its methods allow for game control
type Game struct {
	rules   Ruleset
	board   *Board
	history *History

	// every field below changes only through commands
	state        State
	turn         StoneColor
	moveNumber   int
	captures     [2]int
	passes       int
	handicapLeft int
	result       *GameResult
	handicap     int
	beginner     StoneColor

	listeners []Listener
	logger    *zap.Logger
	rejection error
}

// New creates a game with an empty default-size board waiting for NewGame.
// A nil ruleset means Japanese rules.
func New(rules Ruleset, opts ...Option) *Game {
	if rules == nil {
		rules = NewJapanese()
	}
	g := &Game{
		rules:    rules,
		board:    NewBoard(DefaultSize),
		history:  NewHistory(),
		turn:     Black,
		beginner: Black,
		logger:   zap.NewNop(),
	}
	g.board.SetSuicidePolicy(rules)
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// NewGame creates a game and starts it on a size x size board with the given handicap
func NewGame(size, handicap int, rules Ruleset, opts ...Option) (*Game, error) {
	g := New(rules, opts...)
	if err := g.NewGame(size, handicap); err != nil {
		return nil, err
	}
	return g, nil
}

// NewGame discards the current game and starts over. Handicap stones are placed
// by the ruleset; when it leaves placement to the players the game stays in
// StateHandicap until PlaceHandicapStone was called handicap times.
func (g *Game) NewGame(size, handicap int) error {
	if size < 1 || size > MaxSize {
		return errors.WithMessagef(ErrInvalidSize, "%d", size)
	}
	if handicap < 0 || handicap > 9 {
		return errors.WithMessagef(ErrInvalidHandicap, "%d", handicap)
	}
	g.rules.Reset()
	g.board = NewBoard(size)
	g.board.SetSuicidePolicy(g.rules)
	g.history = NewHistory()
	g.state = StatePlaying
	g.turn = Black
	g.beginner = Black
	g.moveNumber = 0
	g.captures = [2]int{}
	g.passes = 0
	g.result = nil
	g.rejection = nil
	g.handicap = handicap
	g.handicapLeft = 0

	g.logger.Info("new game",
		zap.Int("size", size),
		zap.Int("handicap", handicap),
		zap.String("ruleset", g.rules.Name()),
	)
	g.fire([]Event{{Kind: EventTurnChanged, Color: g.turn}})

	if handicap < 2 {
		return nil
	}
	g.state = StateHandicap
	g.handicapLeft = handicap
	auto, err := g.rules.SetHandicapStones(g, g.beginner, handicap)
	if err != nil {
		return err
	}
	if !auto {
		g.logger.Debug("handicap placement left to players", zap.Int("stones", handicap))
	}
	return nil
}

// PlaceHandicapStone puts one freely placed handicap stone of the beginner's color.
// It returns false if the intersection is occupied.
func (g *Game) PlaceHandicapStone(x, y int) (bool, error) {
	_, err := g.placeHandicapStone(g.beginner, Position{x, y})
	if isRuleViolation(err) {
		return false, nil
	}
	return err == nil, err
}

func (g *Game) placeHandicapStone(color StoneColor, p Position) (*Node, error) {
	if g.state != StateHandicap {
		return nil, errors.WithMessagef(ErrWrongState, "handicap stone in state %s", g.state)
	}
	pl, err := g.board.place(p, color, true)
	if err != nil {
		return nil, err
	}
	c := &Composite{}
	c.add(pl)
	g.feedKo(c)
	left := g.handicapLeft - 1
	c.add(assign(&g.handicapLeft, left))
	redo := []Event{{Kind: EventHandicapSet, Position: p, Color: color}}
	undo := []Event{{Kind: EventStoneRemoved, Position: p, Color: color}}
	if left == 0 {
		c.add(assign(&g.state, StatePlaying))
		c.add(assign(&g.turn, color.Opposite()))
		redo = append(redo, Event{Kind: EventTurnChanged, Color: color.Opposite()})
		undo = append(undo, Event{Kind: EventTurnChanged, Color: color})
	}
	c.on(redo, undo)
	return g.record(&Node{token: TokenHandicap, color: color, position: p, cmd: c}), nil
}

// record appends a node after the cursor and fires its events
func (g *Game) record(n *Node) *Node {
	g.history.Append(n)
	g.fire(n.cmd.RedoEvents())
	return n
}

// Play plays a move if it is legal. Rule outcomes come back as a GameError.
func (g *Game) Play(m Move) error {
	return g.play(m, false)
}

// PlayMove plays the current player's stone at (x, y).
// It returns false, with no error, when the move breaks a rule; LastRejection tells which.
func (g *Game) PlayMove(x, y int) (bool, error) {
	err := g.play(NewMove(g.turn, x, y), false)
	if err == nil {
		return true, nil
	}
	if isRuleViolation(err) {
		return false, nil
	}
	return false, err
}

// Check reports why the current player may not play at (x, y), or nil if the move is legal.
// The game, LastRejection included, is left unchanged and listeners hear nothing.
func (g *Game) Check(x, y int) error {
	return g.play(NewMove(g.turn, x, y), true)
}

func (g *Game) play(m Move, dryRun bool) error {
	if err := g.playable(); err != nil {
		return err
	}
	if m.Color != g.turn {
		return GameError{ErrWrongPlayer, m}
	}
	if m.Pass {
		if dryRun {
			return nil
		}
		return g.pass()
	}

	pl, err := g.board.place(m.Position, m.Color, false)
	if err != nil {
		if isRuleViolation(err) {
			return g.reject(m, err, dryRun)
		}
		return err
	}
	c := &Composite{}
	c.add(pl)

	window, ko := g.rules.IsKo(g)
	if ko {
		window.Undo()
		c.Undo()
		return g.reject(m, ErrKo, dryRun)
	}
	c.add(window)

	opp := m.Color.Opposite()
	if n := len(pl.Captured); n > 0 {
		c.add(assign(&g.captures[m.Color.index()], g.captures[m.Color.index()]+n))
	}
	if n := len(pl.Suicided); n > 0 {
		c.add(assign(&g.captures[opp.index()], g.captures[opp.index()]+n))
	}
	number := g.moveNumber + 1
	c.add(assign(&g.moveNumber, number))
	c.add(assign(&g.passes, 0))
	c.add(assign(&g.turn, opp))

	if dryRun {
		c.Undo()
		return nil
	}

	redo := []Event{{Kind: EventMovePlaced, Position: m.Position, Color: m.Color, MoveNumber: number}}
	redo = append(redo, stoneEvents(EventStoneRemoved, opp, pl.Captured)...)
	redo = append(redo, stoneEvents(EventStoneRemoved, m.Color, pl.Suicided)...)
	redo = append(redo, Event{Kind: EventTurnChanged, Color: opp, MoveNumber: number})

	var undo []Event
	if len(pl.Suicided) == 0 {
		undo = append(undo, Event{Kind: EventStoneRemoved, Position: m.Position, Color: m.Color, MoveNumber: number})
	}
	for _, p := range pl.Suicided {
		if p != m.Position {
			undo = append(undo, Event{Kind: EventStonePlaced, Position: p, Color: m.Color})
		}
	}
	undo = append(undo, stoneEvents(EventStonePlaced, opp, pl.Captured)...)
	undo = append(undo, Event{Kind: EventTurnChanged, Color: m.Color, MoveNumber: number - 1})
	c.on(redo, undo)

	g.rejection = nil
	g.record(&Node{token: TokenMove, color: m.Color, position: m.Position, cmd: c})
	return nil
}

// feedKo pushes the current position into the ko window.
// Passes, handicap and setup stones repeat or create positions but are never ko.
func (g *Game) feedKo(c *Composite) {
	window, _ := g.rules.IsKo(g)
	c.add(window)
}

// reject remembers and reports a move that broke a rule. A dry run only reports it.
func (g *Game) reject(m Move, reason error, dryRun bool) error {
	err := GameError{reason, m}
	if dryRun {
		return err
	}
	g.rejection = err
	g.logger.Debug("move rejected", zap.Stringer("move", m), zap.Error(reason))
	g.fire([]Event{{
		Kind:       EventDebugInfo,
		Position:   m.Position,
		Color:      m.Color,
		MoveNumber: g.moveNumber,
		Text:       err.Error(),
	}})
	return err
}

func (g *Game) playable() error {
	switch g.state {
	case StatePlaying:
		return nil
	case StateOver:
		return ErrGameOver
	}
	return errors.WithMessagef(ErrWrongState, "cannot play in state %s", g.state)
}

// Pass gives the turn to the other player
func (g *Game) Pass() error {
	if err := g.playable(); err != nil {
		return err
	}
	return g.pass()
}

func (g *Game) pass() error {
	color := g.turn
	c := &Composite{}
	g.feedKo(c)
	number := g.moveNumber + 1
	c.add(assign(&g.moveNumber, number))
	c.add(assign(&g.passes, g.passes+1))
	c.add(assign(&g.turn, color.Opposite()))
	c.on(
		[]Event{{Kind: EventTurnChanged, Color: color.Opposite(), MoveNumber: number}},
		[]Event{{Kind: EventTurnChanged, Color: color, MoveNumber: number - 1}},
	)
	g.rejection = nil
	g.record(&Node{token: TokenPass, color: color, cmd: c})
	return nil
}

// Resign ends the game with color giving up
func (g *Game) Resign(color StoneColor) error {
	if !color.Valid() {
		return errors.WithMessagef(ErrInvalidColor, "color %d", int(color))
	}
	if g.state == StateOver {
		return ErrGameOver
	}
	if g.state == StateInit {
		return errors.WithMessagef(ErrWrongState, "cannot resign in state %s", g.state)
	}
	g.finish(TokenResign, color, resignation(color))
	return nil
}

// ScoreGame asks the ruleset to count the position and ends the game
func (g *Game) ScoreGame() (*GameResult, error) {
	if err := g.playable(); err != nil {
		return nil, err
	}
	res := g.rules.ScoreGame(g)
	g.finish(TokenEnd, Empty, res)
	return res, nil
}

func (g *Game) finish(token Token, color StoneColor, res *GameResult) {
	c := &Composite{}
	c.add(assign(&g.result, res))
	c.add(assign(&g.state, StateOver))
	c.on(
		[]Event{{Kind: EventGameOver, Color: res.Winner, MoveNumber: g.moveNumber, Text: res.String()}},
		[]Event{{Kind: EventTurnChanged, Color: g.turn, MoveNumber: g.moveNumber}},
	)
	g.logger.Info("game over",
		zap.Stringer("result", res),
		zap.Float64("black", res.Score(Black)),
		zap.Float64("white", res.Score(White)),
	)
	g.record(&Node{token: token, color: color, cmd: c})
}

// SetupStone puts a stone of color at (x, y) outside the normal move order,
// replacing whatever was there. Setup stones merge but never capture.
// Empty clears the intersection.
func (g *Game) SetupStone(x, y int, color StoneColor) error {
	if color == Empty {
		return g.ClearStone(x, y)
	}
	if !color.Valid() {
		return errors.WithMessagef(ErrInvalidColor, "color %d", int(color))
	}
	if g.state == StateOver {
		return ErrGameOver
	}
	p := Position{x, y}
	if err := g.board.check(p); err != nil {
		return err
	}
	old := g.board.look(p)
	if old == color {
		return nil
	}
	c := &Composite{}
	var undo []Event
	if old != Empty {
		cmd, err := g.board.RemoveStone(x, y)
		if err != nil {
			return err
		}
		c.add(cmd)
		undo = append(undo, Event{Kind: EventStonePlaced, Position: p, Color: old})
	}
	pl, err := g.board.place(p, color, true)
	if err != nil {
		c.Undo()
		return err
	}
	c.add(pl)
	g.feedKo(c)
	undo = append([]Event{{Kind: EventStoneRemoved, Position: p, Color: color}}, undo...)
	c.on([]Event{{Kind: EventStonePlaced, Position: p, Color: color}}, undo)
	g.record(&Node{token: TokenSetup, color: color, position: p, cmd: c})
	return nil
}

// ClearStone empties (x, y) outside the normal move order
func (g *Game) ClearStone(x, y int) error {
	if g.state == StateOver {
		return ErrGameOver
	}
	p := Position{x, y}
	if err := g.board.check(p); err != nil {
		return err
	}
	old := g.board.look(p)
	if old == Empty {
		return nil
	}
	cmd, err := g.board.RemoveStone(x, y)
	if err != nil {
		return err
	}
	c := &Composite{}
	c.add(cmd)
	g.feedKo(c)
	c.on(
		[]Event{{Kind: EventStoneRemoved, Position: p, Color: old}},
		[]Event{{Kind: EventStonePlaced, Position: p, Color: old}},
	)
	g.record(&Node{token: TokenSetup, color: Empty, position: p, cmd: c})
	return nil
}

// Undo steps the history back by one action
func (g *Game) Undo() bool {
	n, ok := g.history.StepBack()
	if ok {
		g.fire(n.cmd.UndoEvents())
	}
	return ok
}

// Redo replays the next undone action
func (g *Game) Redo() bool {
	n, ok := g.history.StepForward()
	if ok {
		g.fire(n.cmd.RedoEvents())
	}
	return ok
}

// Rewind undoes every action
func (g *Game) Rewind() {
	for g.Undo() {
	}
}

// SkipToEnd redoes every undone action
func (g *Game) SkipToEnd() {
	for g.Redo() {
	}
}

// GoTo moves the history cursor so that exactly n actions are applied
func (g *Game) GoTo(n int) error {
	if n < 0 || n > g.history.Len() {
		return errors.Errorf("history position %d out of range [0, %d]", n, g.history.Len())
	}
	for g.history.Cursor() > n {
		g.Undo()
	}
	for g.history.Cursor() < n {
		g.Redo()
	}
	return nil
}

// SetComment replaces the comment of the current history node
func (g *Game) SetComment(text string) {
	g.history.Current().comment = text
}

// SetMark annotates (x, y) on the current history node
func (g *Game) SetMark(x, y int, m Mark) error {
	p := Position{x, y}
	if err := g.board.check(p); err != nil {
		return err
	}
	if m < MarkCircle || m > MarkTriangle {
		return errors.Errorf("unknown mark %d", int(m))
	}
	n := g.history.Current()
	if n.marks == nil {
		n.marks = make(map[Position]Mark)
	}
	n.marks[p] = m
	return nil
}

// ClearMark removes the annotation at (x, y) from the current history node
func (g *Game) ClearMark(x, y int) {
	delete(g.history.Current().marks, Position{x, y})
}

// AddListener registers l; listeners are called in registration order
func (g *Game) AddListener(l Listener) {
	if l != nil {
		g.listeners = append(g.listeners, l)
	}
}

func (g *Game) fire(events []Event) {
	for _, e := range events {
		for _, l := range g.listeners {
			l.OnEvent(e)
		}
	}
}

// Board returns the board. Mutating it directly bypasses the history.
func (g *Game) Board() *Board { return g.board }

// Size returns the board size
func (g *Game) Size() int { return g.board.Size() }

// ColorAt returns the color at (x, y)
func (g *Game) ColorAt(x, y int) (StoneColor, error) { return g.board.ColorAt(x, y) }

// Turn returns the color to play
func (g *Game) Turn() StoneColor { return g.turn }

// MoveNumber counts moves and passes played
func (g *Game) MoveNumber() int { return g.moveNumber }

// Captures returns how many stones color has taken
func (g *Game) Captures(color StoneColor) int {
	if !color.Valid() {
		return 0
	}
	return g.captures[color.index()]
}

// Passes returns the number of consecutive passes
func (g *Game) Passes() int { return g.passes }

// State returns the game phase
func (g *Game) State() State { return g.state }

// Result returns the result once the game is over, nil before
func (g *Game) Result() *GameResult { return g.result }

// Rules returns the ruleset
func (g *Game) Rules() Ruleset { return g.rules }

// Komi returns the ruleset's komi
func (g *Game) Komi() float64 { return g.rules.Komi() }

// Handicap returns the number of handicap stones the game started with
func (g *Game) Handicap() int { return g.handicap }

// HandicapLeft returns how many handicap stones still have to be placed
func (g *Game) HandicapLeft() int { return g.handicapLeft }

// Beginner returns the color receiving the handicap
func (g *Game) Beginner() StoneColor { return g.beginner }

// History returns the action log
func (g *Game) History() *History { return g.history }

// LastRejection returns why the last attempted move was refused, nil if it was played
func (g *Game) LastRejection() error { return g.rejection }

func (g *Game) String() string {
	return g.board.String()
}
