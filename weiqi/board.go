package weiqi

import (
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"
)

// MaxSize is the largest board whose coordinates SGF letters can express
const MaxSize = 52

// SuicidePolicy decides whether a placement that leaves its own group without liberties is allowed.
// existing is the group the new stone ended up in, added is the group created for it,
// which is existing itself when no larger neighbour absorbed it.
type SuicidePolicy interface {
	Suicide(existing, added *StoneGroup) bool
}

// Board holds a square grid of optional group pointers
type Board struct {
	size    int
	cells   []*groupPointer // row major, nil is empty
	suicide SuicidePolicy
}

// NewBoard creates an empty board. A size outside [1, MaxSize] panics.
func NewBoard(size int) *Board {
	if size < 1 || size > MaxSize {
		panic("weiqi: invalid board size")
	}
	return &Board{size: size, cells: make([]*groupPointer, size*size)}
}

// SetSuicidePolicy installs the hook consulted when a placement would be suicide.
// With no policy suicide is always rejected.
func (b *Board) SetSuicidePolicy(p SuicidePolicy) {
	b.suicide = p
}

// Size returns the number of lines on each side
func (b *Board) Size() int {
	return b.size
}

// exists checks if the position is on the board
func (b *Board) exists(p Position) bool {
	return (p.X >= 0) && (p.X < b.size) && (p.Y >= 0) && (p.Y < b.size)
}

func (b *Board) check(p Position) error {
	if !b.exists(p) {
		return errors.WithMessagef(ErrOutsideBoard, "(%d, %d) on %dx%d board", p.X, p.Y, b.size, b.size)
	}
	return nil
}

func (b *Board) cell(p Position) *groupPointer {
	return b.cells[p.Y*b.size+p.X]
}

// look retrieves the color at an on-board position
func (b *Board) look(p Position) StoneColor {
	if ptr := b.cell(p); ptr != nil {
		return ptr.group.color
	}
	return Empty
}

// ColorAt returns the color of the stone at (x, y), or Empty
func (b *Board) ColorAt(x, y int) (StoneColor, error) {
	p := Position{x, y}
	if err := b.check(p); err != nil {
		return Empty, err
	}
	return b.look(p), nil
}

// GroupAt returns the group owning the stone at (x, y), or nil for an empty intersection
func (b *Board) GroupAt(x, y int) (*StoneGroup, error) {
	p := Position{x, y}
	if err := b.check(p); err != nil {
		return nil, err
	}
	if ptr := b.cell(p); ptr != nil {
		return ptr.group, nil
	}
	return nil, nil
}

// emptyAdjacent returns the empty on-board neighbours of p
func (b *Board) emptyAdjacent(p Position) []Position {
	libs := make([]Position, 0, 4)
	for _, adj := range p.adjacent() {
		if b.exists(adj) && b.cell(adj) == nil {
			libs = append(libs, adj)
		}
	}
	return libs
}

// adjacentGroups returns the distinct groups next to p
func (b *Board) adjacentGroups(p Position) []*StoneGroup {
	groups := make([]*StoneGroup, 0, 4)
	for _, adj := range p.adjacent() {
		if !b.exists(adj) {
			continue
		}
		ptr := b.cell(adj)
		if ptr == nil {
			continue
		}
		seen := false
		for _, g := range groups {
			if g == ptr.group {
				seen = true
				break
			}
		}
		if !seen {
			groups = append(groups, ptr.group)
		}
	}
	return groups
}

// occupy gives p its own pointer onto g
func (b *Board) occupy(p Position, g *StoneGroup) Command {
	i := p.Y*b.size + p.X
	ptr := &groupPointer{}
	return apply(
		func() {
			ptr.group = g
			g.pointers[ptr] = struct{}{}
			b.cells[i] = ptr
		},
		func() {
			delete(g.pointers, ptr)
			b.cells[i] = nil
		},
	)
}

// vacate empties p without touching the group bookkeeping
func (b *Board) vacate(p Position) Command {
	i := p.Y*b.size + p.X
	ptr := b.cells[i]
	return apply(
		func() { b.cells[i] = nil },
		func() { b.cells[i] = ptr },
	)
}

// capture removes every stone of g and hands the freed intersections
// back as liberties to the groups around them
func (b *Board) capture(g *StoneGroup) Command {
	c := &Composite{}
	for _, p := range g.locations {
		c.add(b.vacate(p))
	}
	for _, p := range g.locations {
		for _, n := range b.adjacentGroups(p) {
			c.add(n.AddLiberty(p))
		}
	}
	return c
}

// Placement is the applied result of putting one stone on the board
type Placement struct {
	Composite
	Position Position
	Color    StoneColor
	Captured []Position // opponent stones removed
	Suicided []Position // own stones removed, only when the suicide policy allowed it
}

// SetStone places a stone of color at (x, y) and resolves merges and captures.
// An occupied intersection or a forbidden suicide returns a nil Placement and no error;
// the board is then unchanged. Positions off the board are an error.
// A prepare placement (setup stones) merges but never captures or judges suicide.
func (b *Board) SetStone(x, y int, color StoneColor, prepare bool) (*Placement, error) {
	pl, err := b.place(Position{x, y}, color, prepare)
	if isRuleViolation(err) {
		return nil, nil
	}
	return pl, err
}

func (b *Board) place(p Position, color StoneColor, prepare bool) (*Placement, error) {
	if !color.Valid() {
		return nil, errors.WithMessagef(ErrInvalidColor, "color %d", int(color))
	}
	if err := b.check(p); err != nil {
		return nil, err
	}
	if b.cell(p) != nil {
		return nil, ErrVertexNotEmpty
	}

	pl := &Placement{Position: p, Color: color}
	added := newStoneGroup(color, p, b.emptyAdjacent(p))
	pl.add(b.occupy(p, added))

	// The new stone fills a liberty of everything around it
	neighbours := b.adjacentGroups(p)
	for _, n := range neighbours {
		pl.add(n.RemoveLiberty(p))
	}

	// Largest friendly group survives so the fewest pointers move
	survivor := added
	for _, n := range neighbours {
		if n.color == color && n.Size() > survivor.Size() {
			survivor = n
		}
	}
	if survivor != added {
		pl.add(survivor.Merge(added))
	}
	for _, n := range neighbours {
		if n.color == color && n != survivor {
			pl.add(survivor.Merge(n))
		}
	}

	if prepare {
		return pl, nil
	}

	for _, n := range neighbours {
		if n.color != color && n.LibertyCount() == 0 {
			pl.Captured = append(pl.Captured, n.locations...)
			pl.add(b.capture(n))
		}
	}

	own := b.cell(p).group
	if own.LibertyCount() == 0 {
		if b.suicide == nil || !b.suicide.Suicide(own, added) {
			pl.Undo()
			return nil, ErrSuicide
		}
		pl.Suicided = own.Locations()
		pl.add(b.capture(own))
	}
	return pl, nil
}

// RemoveStone clears (x, y) and grants the freed intersection as a liberty to every adjacent group.
// Removing from an empty intersection does nothing.
func (b *Board) RemoveStone(x, y int) (Command, error) {
	p := Position{x, y}
	if err := b.check(p); err != nil {
		return nil, err
	}
	ptr := b.cell(p)
	if ptr == nil {
		return noop, nil
	}
	g := ptr.group
	c := &Composite{}
	c.add(b.detach(p, ptr))
	for _, n := range b.adjacentGroups(p) {
		c.add(n.AddLiberty(p))
	}
	if g.Size() > 0 {
		c.add(b.regroup(g))
	}
	return c, nil
}

// detach removes a single stone from its group and the board
func (b *Board) detach(p Position, ptr *groupPointer) Command {
	g := ptr.group
	i := p.Y*b.size + p.X
	oldLocs := g.locations
	newLocs := make([]Position, 0, len(oldLocs))
	for _, l := range oldLocs {
		if l != p {
			newLocs = append(newLocs, l)
		}
	}
	return apply(
		func() {
			b.cells[i] = nil
			delete(g.pointers, ptr)
			g.locations = newLocs
		},
		func() {
			g.locations = oldLocs
			g.pointers[ptr] = struct{}{}
			b.cells[i] = ptr
		},
	)
}

// regroup splits g into its connected parts after a stone was taken out of it
// and recomputes their liberties. The first part keeps g.
func (b *Board) regroup(g *StoneGroup) Command {
	oldLocs, oldLibs, oldPtrs := g.locations, g.liberties, g.pointers

	type part struct {
		group *StoneGroup
		locs  []Position
		libs  map[Position]struct{}
		ptrs  map[*groupPointer]struct{}
	}
	var parts []*part
	partOf := make(map[Position]*part, len(oldLocs))
	for _, start := range oldLocs {
		if partOf[start] != nil {
			continue
		}
		pt := &part{libs: make(map[Position]struct{}), ptrs: make(map[*groupPointer]struct{})}
		partOf[start] = pt
		queue := []Position{start}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			pt.ptrs[b.cell(cur)] = struct{}{}
			for _, adj := range cur.adjacent() {
				if !b.exists(adj) {
					continue
				}
				ptr := b.cell(adj)
				switch {
				case ptr == nil:
					pt.libs[adj] = struct{}{}
				case ptr.group == g && partOf[adj] == nil:
					partOf[adj] = pt
					queue = append(queue, adj)
				}
			}
		}
		parts = append(parts, pt)
	}
	// keep growth order inside each part
	for _, l := range oldLocs {
		partOf[l].locs = append(partOf[l].locs, l)
	}
	for i, pt := range parts {
		if i == 0 {
			pt.group = g
		} else {
			pt.group = &StoneGroup{color: g.color}
		}
	}

	return apply(
		func() {
			for _, pt := range parts {
				pt.group.locations = pt.locs
				pt.group.liberties = pt.libs
				pt.group.pointers = pt.ptrs
				for ptr := range pt.ptrs {
					ptr.group = pt.group
				}
			}
		},
		func() {
			g.locations = oldLocs
			g.liberties = oldLibs
			g.pointers = oldPtrs
			for ptr := range oldPtrs {
				ptr.group = g
			}
		},
	)
}

// Stones counts the stones of one color on the board
func (b *Board) Stones(color StoneColor) int {
	n := 0
	for _, ptr := range b.cells {
		if ptr != nil && ptr.group.color == color {
			n++
		}
	}
	return n
}

// Snapshot returns the color of every intersection, row major
func (b *Board) Snapshot() []StoneColor {
	s := make([]StoneColor, len(b.cells))
	for i, ptr := range b.cells {
		if ptr != nil {
			s[i] = ptr.group.color
		}
	}
	return s
}

// Hash hashes the color configuration of the board
func (b *Board) Hash() uint64 {
	buf := make([]byte, len(b.cells))
	for i, ptr := range b.cells {
		if ptr != nil {
			buf[i] = byte(ptr.group.color + 2)
		}
	}
	return xxhash.Sum64(buf)
}

// Equals compares the stones on two boards
func (b *Board) Equals(b2 *Board) bool {
	if b.size != b2.size {
		return false
	}
	for i := range b.cells {
		p := Position{i % b.size, i / b.size}
		if b.look(p) != b2.look(p) {
			return false
		}
	}
	return true
}

func (b *Board) String() string {
	stringRows := make([]string, b.size+1)
	header := make([]string, 0, b.size+1)
	header = append(header, " ")
	for x := 0; x < b.size; x++ {
		l, _ := coordinateToLetter(x)
		header = append(header, l)
	}
	stringRows[0] = strings.Join(header, " ")
	for y := 0; y < b.size; y++ {
		l, _ := coordinateToLetter(y)
		row := []string{l}
		for x := 0; x < b.size; x++ {
			switch b.look(Position{x, y}) {
			case Black:
				row = append(row, "X")
			case White:
				row = append(row, "O")
			default:
				row = append(row, ".")
			}
		}
		stringRows[y+1] = strings.Join(row, " ")
	}
	return strings.Join(stringRows, "\n") + "\n"
}
