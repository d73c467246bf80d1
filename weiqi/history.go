package weiqi

import "sort"

// Token tells what kind of action a history node records
type Token int

const (
	TokenRoot Token = iota // synthetic first node, never serialized
	TokenHandicap
	TokenSetup
	TokenMove
	TokenPass
	TokenResign
	TokenEnd // game scored
)

func (t Token) String() string {
	switch t {
	case TokenRoot:
		return "root"
	case TokenHandicap:
		return "handicap"
	case TokenSetup:
		return "setup"
	case TokenMove:
		return "move"
	case TokenPass:
		return "pass"
	case TokenResign:
		return "resign"
	case TokenEnd:
		return "end"
	}
	return "unknown"
}

// Mark is an annotation shape drawn on an intersection
type Mark int

const (
	MarkCircle Mark = iota + 1
	MarkSquare
	MarkTriangle
)

// Node is one recorded action. The command it holds is already applied
// whenever the history cursor is at or after the node.
type Node struct {
	token    Token
	color    StoneColor
	position Position
	comment  string
	marks    map[Position]Mark
	cmd      *Composite
}

// Token returns the kind of action recorded
func (n *Node) Token() Token { return n.token }

// Color returns the acting color (Empty for a cleared setup intersection)
func (n *Node) Color() StoneColor { return n.color }

// Position returns the intersection of a move, setup or handicap stone
func (n *Node) Position() Position { return n.position }

// Comment returns the free-text comment
func (n *Node) Comment() string { return n.comment }

// Marks returns the annotated positions in row major order with their shapes
func (n *Node) Marks() ([]Position, []Mark) {
	ps := make([]Position, 0, len(n.marks))
	for p := range n.marks {
		ps = append(ps, p)
	}
	sort.Slice(ps, func(i, j int) bool {
		if ps[i].Y != ps[j].Y {
			return ps[i].Y < ps[j].Y
		}
		return ps[i].X < ps[j].X
	})
	ms := make([]Mark, len(ps))
	for i, p := range ps {
		ms[i] = n.marks[p]
	}
	return ps, ms
}

// Mark returns the mark at p, if any
func (n *Node) Mark(p Position) (Mark, bool) {
	m, ok := n.marks[p]
	return m, ok
}

// History is a linear edit log with a movable cursor.
// nodes[0] is the synthetic root so the first real action has something to rewind to.
type History struct {
	nodes  []*Node
	cursor int
}

// NewHistory returns a history holding only the root node
func NewHistory() *History {
	return &History{nodes: []*Node{{token: TokenRoot, cmd: &Composite{}}}}
}

// Append records n after the cursor, discarding anything that had been undone
func (h *History) Append(n *Node) {
	for i := h.cursor + 1; i < len(h.nodes); i++ {
		h.nodes[i] = nil
	}
	h.nodes = append(h.nodes[:h.cursor+1], n)
	h.cursor++
}

// Root returns the synthetic first node. It holds the comment and marks of the starting position.
func (h *History) Root() *Node {
	return h.nodes[0]
}

// Current returns the node at the cursor
func (h *History) Current() *Node {
	return h.nodes[h.cursor]
}

// Cursor returns how many actions are applied
func (h *History) Cursor() int {
	return h.cursor
}

// Len returns the number of recorded actions, applied or not, excluding the root
func (h *History) Len() int {
	return len(h.nodes) - 1
}

// CanStepBack reports whether an action can be undone
func (h *History) CanStepBack() bool {
	return h.cursor > 0
}

// CanStepForward reports whether an undone action can be redone
func (h *History) CanStepForward() bool {
	return h.cursor < len(h.nodes)-1
}

// StepBack undoes the current node and returns it
func (h *History) StepBack() (*Node, bool) {
	if !h.CanStepBack() {
		return nil, false
	}
	n := h.nodes[h.cursor]
	n.cmd.Undo()
	h.cursor--
	return n, true
}

// StepForward redoes the next node and returns it
func (h *History) StepForward() (*Node, bool) {
	if !h.CanStepForward() {
		return nil, false
	}
	h.cursor++
	n := h.nodes[h.cursor]
	n.cmd.Execute()
	return n, true
}

// Walk visits recorded nodes oldest first, skipping the root, until fn returns false
func (h *History) Walk(fn func(i int, n *Node) bool) {
	for i := 1; i < len(h.nodes); i++ {
		if !fn(i, h.nodes[i]) {
			return
		}
	}
}

// WalkBackward visits recorded nodes newest first, skipping the root, until fn returns false
func (h *History) WalkBackward(fn func(i int, n *Node) bool) {
	for i := len(h.nodes) - 1; i >= 1; i-- {
		if !fn(i, h.nodes[i]) {
			return
		}
	}
}

// Nodes returns the recorded nodes oldest first, skipping the root
func (h *History) Nodes() []*Node {
	return append([]*Node(nil), h.nodes[1:]...)
}
