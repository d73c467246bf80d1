/*
Package sgf reads and writes games in the Smart Game Format.

NewGameTree parses a collection into GameTrees, Load replays a single linear
game into a weiqi.Game and Save writes a weiqi.Game's history back out.*/
package sgf

// From the SGF FF[4] standard:
/*
Collection = GameTree { GameTree }
GameTree   = "(" Sequence { GameTree } ")"
Sequence   = Node { Node }
Node       = ";" { Property }
Property   = PropIdent PropValue { PropValue }
PropIdent  = UcLetter { UcLetter }
PropValue  = "[" CValueType "]"
CValueType = (ValueType | Compose)
ValueType  = (None | Number | Real | Double | Color | SimpleText | Text | Point  | Move | Stone)
*/

// Differences from the standard:

// Multiple identical identifiers in one node have all values collected
// The standard does not allow this (an error)

// Something like a(b)c will be parsed as ac(b)
// The standard does not allow this (an error)

// Lowercase letters in identifiers (FF[3] style "AddBlack") are dropped

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
)

// Pos is a place in SGF text. Line and Col start at 1.
type Pos struct {
	Line, Col int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// Node contains key/value(s) pairs
type Node map[string][]string

// GameTree is a sequence of nodes potentially followed by other GameTrees (per the SGF standard)
type GameTree struct {
	Nodes    []Node
	Children []*GameTree
	Start    Pos // opening parenthesis

	props []map[string]Pos // where each property of each node was first seen
}

// PropPos returns where property id of node i begins, or Start if unknown
func (gt *GameTree) PropPos(i int, id string) Pos {
	if i >= 0 && i < len(gt.props) {
		if p, ok := gt.props[i][id]; ok {
			return p
		}
	}
	return gt.Start
}

// treeParser holds the state of a single pass over SGF text
type treeParser struct {
	stack []*GameTree
	pos   Pos

	inValue  bool
	escaped  bool
	valueAt  Pos
	ident    strings.Builder
	identAt  Pos
	property string // identifier the next value belongs to
	value    strings.Builder
}

// NewGameTree parses text in SGF format. The returned root holds no nodes;
// its Children are the games of the collection.
func NewGameTree(sgfText string) (GameTree, error) {
	var root GameTree
	p := &treeParser{stack: []*GameTree{&root}, pos: Pos{1, 0}}
	for _, r := range sgfText {
		if r == '\n' {
			p.pos.Line++
			p.pos.Col = 0
		} else {
			p.pos.Col++
		}
		if err := p.step(r); err != nil {
			return GameTree{}, err
		}
	}
	if p.inValue {
		return GameTree{}, syntaxError("[", p.valueAt, "missing close bracket")
	}
	if len(p.stack) > 1 {
		top := p.stack[len(p.stack)-1]
		return GameTree{}, syntaxError("(", top.Start, "missing close parenthesis")
	}
	return root, nil
}

func (p *treeParser) top() *GameTree {
	return p.stack[len(p.stack)-1]
}

func (p *treeParser) step(r rune) error {
	if p.inValue {
		p.valueRune(r)
		return nil
	}
	if len(p.stack) == 1 && r != '(' && r != ')' {
		return nil // text between games
	}
	switch {
	case r == '(':
		add := &GameTree{Start: p.pos}
		p.top().Children = append(p.top().Children, add)
		p.stack = append(p.stack, add)
		p.resetProperty()
	case r == ')':
		if len(p.stack) == 1 {
			return syntaxError(")", p.pos, "missing open parenthesis")
		}
		if len(p.top().Nodes) == 0 {
			return syntaxError(")", p.pos, "game tree without nodes")
		}
		p.stack = p.stack[:len(p.stack)-1]
		p.resetProperty()
	case r == ';':
		gt := p.top()
		gt.Nodes = append(gt.Nodes, make(Node))
		gt.props = append(gt.props, make(map[string]Pos))
		p.resetProperty()
	case r == '[':
		if p.ident.Len() != 0 {
			p.property = p.ident.String()
			p.ident.Reset()
		}
		if p.property == "" {
			return syntaxError("[", p.pos, "value without property identifier")
		}
		if len(p.top().Nodes) == 0 {
			return syntaxError(p.property, p.identAt, "property outside node")
		}
		p.inValue = true
		p.valueAt = p.pos
	case r == ']':
		return syntaxError("]", p.pos, "missing open bracket")
	case unicode.IsUpper(r):
		if p.ident.Len() == 0 {
			p.identAt = p.pos
		}
		p.ident.WriteRune(r)
	case unicode.IsSpace(r), unicode.IsLower(r):
	default:
		return syntaxError(string(r), p.pos, "unexpected character")
	}
	return nil
}

func (p *treeParser) valueRune(r rune) {
	if p.escaped {
		p.escaped = false
		if r == '\n' || r == '\r' { // soft line break
			return
		}
		p.value.WriteRune(r)
		return
	}
	switch {
	case r == '\\':
		p.escaped = true
	case r == ']':
		p.inValue = false
		gt := p.top()
		i := len(gt.Nodes) - 1
		id := p.property
		if _, ok := gt.props[i][id]; !ok {
			gt.props[i][id] = p.identAt
		}
		gt.Nodes[i][id] = append(gt.Nodes[i][id], p.value.String())
		p.value.Reset()
	case r == '\r':
	case r != '\n' && unicode.IsSpace(r):
		p.value.WriteRune(' ')
	default:
		p.value.WriteRune(r)
	}
}

func (p *treeParser) resetProperty() {
	p.ident.Reset()
	p.property = ""
}

// Equals checks GameTree equality recursively
func (gt *GameTree) Equals(gt2 *GameTree) bool {
	if len(gt.Nodes) != len(gt2.Nodes) {
		return false
	}
	for i := range gt.Nodes {
		if len(gt.Nodes[i]) != len(gt2.Nodes[i]) {
			return false
		}
		for k, values := range gt.Nodes[i] {
			values2, ok := gt2.Nodes[i][k]
			if !ok || len(values) != len(values2) {
				return false
			}
			for j := range values {
				if values[j] != values2[j] {
					return false
				}
			}
		}
	}
	if len(gt.Children) != len(gt2.Children) {
		return false
	}
	for i := range gt.Children {
		if !gt.Children[i].Equals(gt2.Children[i]) {
			return false
		}
	}
	return true
}

func (gt GameTree) String() string {
	var sb strings.Builder
	sb.WriteString("\n")
	for i := range gt.Nodes {
		keys := make([]string, 0, len(gt.Nodes[i]))
		for k := range gt.Nodes[i] {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			sb.WriteString(k)
			for _, v := range gt.Nodes[i][k] {
				sb.WriteString("{" + v + "}")
			}
			sb.WriteString(" ")
		}
		sb.WriteString("\n")
	}
	for i := range gt.Children {
		sb.WriteString(strings.Replace(gt.Children[i].String(), "\n", "\n  ", -1))
	}
	return sb.String()
}
