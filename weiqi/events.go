package weiqi

import "fmt"

// EventKind identifies what changed
type EventKind int

const (
	EventMovePlaced EventKind = iota // a player's stone was played
	EventStonePlaced                 // a stone appeared without being a move (setup, handicap, undo of a capture)
	EventStoneRemoved
	EventTurnChanged
	EventGameOver
	EventHandicapSet
	EventDebugInfo
)

var eventKindNames = [...]string{
	EventMovePlaced:   "move placed",
	EventStonePlaced:  "stone placed",
	EventStoneRemoved: "stone removed",
	EventTurnChanged:  "turn changed",
	EventGameOver:     "game over",
	EventHandicapSet:  "handicap set",
	EventDebugInfo:    "debug info",
}

func (k EventKind) String() string {
	if k < 0 || int(k) >= len(eventKindNames) {
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
	return eventKindNames[k]
}

// Event is a notification sent to listeners once per logical change
type Event struct {
	Kind       EventKind
	Position   Position
	Color      StoneColor
	MoveNumber int
	Text       string
}

func (e Event) String() string {
	switch e.Kind {
	case EventTurnChanged:
		return fmt.Sprintf("%s: %s to play", e.Kind, e.Color)
	case EventGameOver, EventDebugInfo:
		return fmt.Sprintf("%s: %s", e.Kind, e.Text)
	}
	return fmt.Sprintf("%s: %s%s #%d", e.Kind, e.Color, e.Position, e.MoveNumber)
}

// Listener receives game events synchronously, in registration order
type Listener interface {
	OnEvent(Event)
}

// ListenerFunc adapts a function to a Listener
type ListenerFunc func(Event)

func (f ListenerFunc) OnEvent(e Event) { f(e) }

func stoneEvents(kind EventKind, color StoneColor, ps []Position) []Event {
	events := make([]Event, 0, len(ps))
	for _, p := range ps {
		events = append(events, Event{Kind: kind, Position: p, Color: color})
	}
	return events
}
