package weiqi

import "sort"

// StoneGroup tracks a maximal set of connected stones of one color and its liberties
type StoneGroup struct {
	color     StoneColor
	locations []Position            // in order of growth
	liberties map[Position]struct{} // adjacent empty intersections
	pointers  map[*groupPointer]struct{}
}

// groupPointer is the board cell's handle on its group.
// Each occupied cell owns exactly one; merges redirect them.
type groupPointer struct {
	group *StoneGroup
}

func newStoneGroup(color StoneColor, p Position, liberties []Position) *StoneGroup {
	g := &StoneGroup{
		color:     color,
		locations: []Position{p},
		liberties: make(map[Position]struct{}, len(liberties)),
		pointers:  make(map[*groupPointer]struct{}, 1),
	}
	for _, l := range liberties {
		g.liberties[l] = struct{}{}
	}
	return g
}

// Color returns the color shared by every stone of the group
func (g *StoneGroup) Color() StoneColor {
	return g.color
}

// Size returns the number of stones in the group
func (g *StoneGroup) Size() int {
	return len(g.locations)
}

// Locations returns a copy of the group's stones in the order they joined
func (g *StoneGroup) Locations() []Position {
	return append([]Position(nil), g.locations...)
}

// LibertyCount returns the number of distinct liberties
func (g *StoneGroup) LibertyCount() int {
	return len(g.liberties)
}

// HasLiberty reports whether p is a liberty of the group
func (g *StoneGroup) HasLiberty(p Position) bool {
	_, ok := g.liberties[p]
	return ok
}

// Liberties returns the liberties sorted by row, then column
func (g *StoneGroup) Liberties() []Position {
	libs := make([]Position, 0, len(g.liberties))
	for l := range g.liberties {
		libs = append(libs, l)
	}
	sort.Slice(libs, func(i, j int) bool {
		if libs[i].Y != libs[j].Y {
			return libs[i].Y < libs[j].Y
		}
		return libs[i].X < libs[j].X
	})
	return libs
}

// AddLiberty makes p a liberty of the group
func (g *StoneGroup) AddLiberty(p Position) Command {
	if g.HasLiberty(p) {
		return noop
	}
	return apply(
		func() { g.liberties[p] = struct{}{} },
		func() { delete(g.liberties, p) },
	)
}

// RemoveLiberty removes p from the group's liberties
func (g *StoneGroup) RemoveLiberty(p Position) Command {
	if !g.HasLiberty(p) {
		return noop
	}
	return apply(
		func() { delete(g.liberties, p) },
		func() { g.liberties[p] = struct{}{} },
	)
}

// Merge absorbs other into g. Every pointer that targeted other is redirected to g.
// Merging groups of different colors is a programming error and panics.
func (g *StoneGroup) Merge(other *StoneGroup) Command {
	if other == g {
		return noop
	}
	if g.color != other.color {
		panic("weiqi: merging stone groups of different colors")
	}
	return newMergeCommand(g, other)
}

type mergeCommand struct {
	into, from *StoneGroup

	// filled in by Execute for Undo
	oldLen    int
	addedLibs []Position
	moved     map[*groupPointer]struct{}
}

func newMergeCommand(into, from *StoneGroup) *mergeCommand {
	c := &mergeCommand{into: into, from: from}
	c.Execute()
	return c
}

func (c *mergeCommand) Execute() {
	g, o := c.into, c.from
	c.oldLen = len(g.locations)
	g.locations = append(g.locations, o.locations...)
	c.addedLibs = c.addedLibs[:0]
	for l := range o.liberties {
		if _, ok := g.liberties[l]; !ok {
			g.liberties[l] = struct{}{}
			c.addedLibs = append(c.addedLibs, l)
		}
	}
	c.moved = o.pointers
	o.pointers = make(map[*groupPointer]struct{})
	for ptr := range c.moved {
		ptr.group = g
		g.pointers[ptr] = struct{}{}
	}
}

func (c *mergeCommand) Undo() {
	g, o := c.into, c.from
	g.locations = g.locations[:c.oldLen]
	for _, l := range c.addedLibs {
		delete(g.liberties, l)
	}
	for ptr := range c.moved {
		delete(g.pointers, ptr)
		ptr.group = o
	}
	o.pointers = c.moved
}
