package weiqi

// Command is a reversible unit of mutation.
// Commands are applied when they are created; Execute re-applies one after Undo.
type Command interface {
	Execute()
	Undo()
}

type noopCommand struct{}

func (noopCommand) Execute() {}
func (noopCommand) Undo()    {}

// noop is returned where a mutation would not change anything
var noop Command = noopCommand{}

type funcCommand struct {
	do, undo func()
}

func (c *funcCommand) Execute() { c.do() }
func (c *funcCommand) Undo()    { c.undo() }

// apply runs do and returns a command that can reverse it with undo
func apply(do, undo func()) Command {
	c := &funcCommand{do: do, undo: undo}
	c.do()
	return c
}

// assign sets *ptr to v, remembering the value it replaced
func assign[T comparable](ptr *T, v T) Command {
	old := *ptr
	if old == v {
		return noop
	}
	return apply(func() { *ptr = v }, func() { *ptr = old })
}

// Composite is an ordered sequence of commands undone in reverse order.
// It also carries the events observers receive when the sequence is
// replayed in either direction.
type Composite struct {
	cmds       []Command
	redoEvents []Event
	undoEvents []Event
}

// add records an already applied command
func (c *Composite) add(cmd Command) {
	if cmd == nil || cmd == noop {
		return
	}
	c.cmds = append(c.cmds, cmd)
}

// Len returns the number of sub-commands
func (c *Composite) Len() int {
	return len(c.cmds)
}

func (c *Composite) Execute() {
	for _, cmd := range c.cmds {
		cmd.Execute()
	}
}

func (c *Composite) Undo() {
	for i := len(c.cmds) - 1; i >= 0; i-- {
		c.cmds[i].Undo()
	}
}

// on registers events fired after Execute (redo) and after Undo
func (c *Composite) on(redo, undo []Event) {
	c.redoEvents = append(c.redoEvents, redo...)
	c.undoEvents = append(c.undoEvents, undo...)
}

// RedoEvents returns the events describing an Execute of c
func (c *Composite) RedoEvents() []Event {
	return c.redoEvents
}

// UndoEvents returns the events describing an Undo of c
func (c *Composite) UndoEvents() []Event {
	return c.undoEvents
}
