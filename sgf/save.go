package sgf

import (
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/dodgebc/goban/weiqi"
)

// Application is written to the AP property
const Application = "goban:1"

type property struct {
	id     string
	values []string
}

// sgfNode keeps properties in insertion order and collects repeated identifiers
type sgfNode struct {
	props   []property
	touched map[weiqi.Position]bool // setup points, so a node never sets one point twice
}

func (n *sgfNode) add(id string, values ...string) {
	for i := range n.props {
		if n.props[i].id == id {
			n.props[i].values = append(n.props[i].values, values...)
			return
		}
	}
	n.props = append(n.props, property{id, values})
}

func (n *sgfNode) has(id string) bool {
	for _, p := range n.props {
		if p.id == id {
			return true
		}
	}
	return false
}

func (n *sgfNode) setup(color weiqi.StoneColor, p weiqi.Position) {
	id := "AE"
	switch color {
	case weiqi.Black:
		id = "AB"
	case weiqi.White:
		id = "AW"
	}
	n.add(id, p.String())
	if n.touched == nil {
		n.touched = make(map[weiqi.Position]bool)
	}
	n.touched[p] = true
}

// annotate copies the comment and marks of h
func (n *sgfNode) annotate(h *weiqi.Node) {
	if c := h.Comment(); c != "" {
		n.add("C", c)
	}
	ps, ms := h.Marks()
	for i, p := range ps {
		switch ms[i] {
		case weiqi.MarkCircle:
			n.add("CR", p.String())
		case weiqi.MarkSquare:
			n.add("SQ", p.String())
		case weiqi.MarkTriangle:
			n.add("TR", p.String())
		}
	}
}

func annotated(h *weiqi.Node) bool {
	ps, _ := h.Marks()
	return h.Comment() != "" || len(ps) > 0
}

func (n *sgfNode) annotated() bool {
	return n.has("C") || n.has("CR") || n.has("SQ") || n.has("TR")
}

func (n *sgfNode) writeTo(sb *strings.Builder) {
	sb.WriteString(";")
	for _, p := range n.props {
		sb.WriteString(p.id)
		for _, v := range p.values {
			sb.WriteString("[" + escapeText(v) + "]")
		}
	}
}

// Serialize renders the applied part of g's history as an SGF collection holding one game
func Serialize(g *weiqi.Game, info Info) string {
	root := &sgfNode{}
	root.add("GM", "1")
	root.add("FF", "4")
	root.add("CA", "UTF-8")
	root.add("AP", Application)
	root.add("SZ", strconv.Itoa(g.Size()))
	root.add("RU", weiqi.RulesLabel(g.Rules()))
	root.add("KM", strconv.FormatFloat(g.Komi(), 'f', -1, 64))
	if g.Handicap() > 0 {
		root.add("HA", strconv.Itoa(g.Handicap()))
	}
	props := make(map[string]string)
	info.write(props)
	if res := g.Result(); res != nil {
		props["RE"] = res.String()
	}
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		root.add(k, props[k])
	}

	h := g.History()
	var applied []*weiqi.Node
	h.Walk(func(i int, n *weiqi.Node) bool {
		if i > h.Cursor() {
			return false
		}
		applied = append(applied, n)
		return true
	})

	// Leading handicap and setup stones belong to the root
	last := h.Root()
	for len(applied) > 0 {
		n := applied[0]
		if t := n.Token(); t != weiqi.TokenHandicap && t != weiqi.TokenSetup {
			break
		}
		if root.touched[n.Position()] || annotated(last) {
			break
		}
		root.setup(n.Color(), n.Position())
		last = n
		applied = applied[1:]
	}
	root.annotate(last)

	nodes := []*sgfNode{root}
	var prev *sgfNode // open setup node
	for _, n := range applied {
		switch n.Token() {
		case weiqi.TokenResign, weiqi.TokenEnd:
			continue
		case weiqi.TokenSetup, weiqi.TokenHandicap:
			if prev == nil || prev.annotated() || prev.touched[n.Position()] {
				prev = &sgfNode{}
				nodes = append(nodes, prev)
			}
			prev.setup(n.Color(), n.Position())
			prev.annotate(n)
			continue
		}
		prev = nil
		node := &sgfNode{}
		value := ""
		if n.Token() == weiqi.TokenMove {
			value = n.Position().String()
		}
		node.add(n.Color().String(), value)
		node.annotate(n)
		nodes = append(nodes, node)
	}

	var sb strings.Builder
	sb.WriteString("(")
	for i, n := range nodes {
		if i > 0 {
			sb.WriteString("\n")
		}
		n.writeTo(&sb)
	}
	sb.WriteString(")\n")
	return sb.String()
}

// Save writes the applied part of g's history to w
func Save(w io.Writer, g *weiqi.Game, info Info) error {
	_, err := io.WriteString(w, Serialize(g, info))
	return err
}
