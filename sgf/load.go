package sgf

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/dodgebc/goban/weiqi"
)

// ErrInvalidFile means that the text is not a well formed game
var ErrInvalidFile = errors.New("invalid sgf file")

// ErrVariations means that the game tree branches
var ErrVariations = errors.New("variations are not supported")

// ErrUnsupported means that the game is valid SGF but not a square Go game of FF[1]-FF[4]
var ErrUnsupported = errors.New("unsupported sgf content")

// LoadError reports where loading stopped
type LoadError struct {
	Token string // offending property, value or character
	Line  int
	Col   int
	Msg   string
	Err   error // ErrInvalidFile, ErrVariations or ErrUnsupported
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s at %d:%d near %q: %s", e.Err, e.Line, e.Col, e.Token, e.Msg)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

func syntaxError(token string, at Pos, msg string) error {
	return &LoadError{Token: token, Line: at.Line, Col: at.Col, Msg: msg, Err: ErrInvalidFile}
}

// Load parses text holding exactly one game and replays it into a new Game
func Load(sgfText string, opts ...weiqi.Option) (*weiqi.Game, error) {
	root, err := NewGameTree(sgfText)
	if err != nil {
		return nil, err
	}
	switch len(root.Children) {
	case 0:
		return nil, &LoadError{Line: 1, Col: 1, Msg: "no game found", Err: ErrInvalidFile}
	case 1:
		return LoadTree(root.Children[0], opts...)
	}
	second := root.Children[1]
	return nil, &LoadError{Token: "(", Line: second.Start.Line, Col: second.Start.Col,
		Msg: fmt.Sprintf("collection of %d games", len(root.Children)), Err: ErrUnsupported}
}

// LoadAll replays every game of a collection
func LoadAll(sgfText string, opts ...weiqi.Option) ([]*weiqi.Game, error) {
	root, err := NewGameTree(sgfText)
	if err != nil {
		return nil, err
	}
	games := make([]*weiqi.Game, 0, len(root.Children))
	for _, gt := range root.Children {
		g, err := LoadTree(gt, opts...)
		if err != nil {
			return nil, err
		}
		games = append(games, g)
	}
	return games, nil
}

// LoadTree replays a single linear game tree
func LoadTree(gt *GameTree, opts ...weiqi.Option) (*weiqi.Game, error) {
	if len(gt.Children) > 0 {
		v := gt.Children[0]
		return nil, &LoadError{Token: "(", Line: v.Start.Line, Col: v.Start.Col, Msg: "game tree branches", Err: ErrVariations}
	}
	if len(gt.Nodes) == 0 {
		return nil, syntaxError("(", gt.Start, "game without nodes")
	}
	l := &loader{gt: gt}
	if err := l.start(opts); err != nil {
		return nil, err
	}
	for i := range gt.Nodes {
		if err := l.node(i); err != nil {
			return nil, err
		}
	}
	if err := l.finish(); err != nil {
		return nil, err
	}
	return l.g, nil
}

type loader struct {
	gt   *GameTree
	g    *weiqi.Game
	size int
}

func (l *loader) fail(sentinel error, i int, id string, msg string) error {
	at := l.gt.PropPos(i, id)
	token := id
	if vs := l.gt.Nodes[i][id]; len(vs) > 0 {
		token = id + "[" + vs[0] + "]"
	}
	return &LoadError{Token: token, Line: at.Line, Col: at.Col, Msg: msg, Err: sentinel}
}

func (l *loader) single(i int, id string) (string, bool, error) {
	vs, ok := l.gt.Nodes[i][id]
	if !ok {
		return "", false, nil
	}
	if len(vs) != 1 {
		return "", false, l.fail(ErrInvalidFile, i, id, fmt.Sprintf("%d values", len(vs)))
	}
	return vs[0], true, nil
}

// start reads the root properties that shape the game and creates it
func (l *loader) start(opts []weiqi.Option) error {
	if v, ok, err := l.single(0, "GM"); err != nil {
		return err
	} else if ok {
		gm, err := ParseNumber("GM", v)
		if err != nil {
			return l.fail(ErrInvalidFile, 0, "GM", err.Error())
		}
		if gm != 1 {
			return l.fail(ErrUnsupported, 0, "GM", "not a game of Go")
		}
	}
	if v, ok, err := l.single(0, "FF"); err != nil {
		return err
	} else if ok {
		ff, err := ParseNumber("FF", v)
		if err != nil {
			return l.fail(ErrInvalidFile, 0, "FF", err.Error())
		}
		if ff < 1 || ff > 4 {
			return l.fail(ErrUnsupported, 0, "FF", fmt.Sprintf("file format %d", ff))
		}
	}

	l.size = 19
	if v, ok, err := l.single(0, "SZ"); err != nil {
		return err
	} else if ok {
		cols, rows, err := ParseSize(v)
		if err != nil {
			return l.fail(ErrInvalidFile, 0, "SZ", err.Error())
		}
		if cols != rows {
			return l.fail(ErrUnsupported, 0, "SZ", "rectangular board")
		}
		if cols > weiqi.MaxSize {
			return l.fail(ErrInvalidFile, 0, "SZ", "board too large")
		}
		l.size = cols
	}

	handicap := 0
	if v, ok, err := l.single(0, "HA"); err != nil {
		return err
	} else if ok {
		handicap, err = ParseHandicap(v)
		if err != nil || handicap > 9 {
			return l.fail(ErrInvalidFile, 0, "HA", "handicap out of range")
		}
	}

	// Rule sets the engine does not know (AGA, Korean, ...) are played as Japanese
	var rules weiqi.Ruleset = weiqi.NewJapanese()
	if v, ok, err := l.single(0, "RU"); err != nil {
		return err
	} else if ok {
		r, err := weiqi.RulesetByName(v)
		switch {
		case err == nil:
			rules = r
		case !errors.Is(err, weiqi.ErrUnknownRuleset):
			return l.fail(ErrInvalidFile, 0, "RU", err.Error())
		}
	}
	if v, ok, err := l.single(0, "KM"); err != nil {
		return err
	} else if ok {
		komi, err := ParseKomi(v)
		if err != nil {
			return l.fail(ErrInvalidFile, 0, "KM", err.Error())
		}
		if komi != rules.Komi() {
			rules = weiqi.WithKomi(rules, komi)
		}
	}
	if handicap >= 2 {
		rules = weiqi.WithFreeHandicap(rules)
	}

	g, err := weiqi.NewGame(l.size, handicap, rules, opts...)
	if err != nil {
		return l.fail(ErrInvalidFile, 0, "SZ", err.Error())
	}
	l.g = g
	return nil
}

// node applies the setup, move and annotation properties of node i
func (l *loader) node(i int) error {
	node := l.gt.Nodes[i]
	for _, id := range []string{"AB", "AW", "AE"} {
		if _, ok := node[id]; !ok {
			continue
		}
		points, err := ParsePointList(id, node[id], l.size)
		if err != nil {
			return l.fail(ErrInvalidFile, i, id, err.Error())
		}
		color := map[string]weiqi.StoneColor{"AB": weiqi.Black, "AW": weiqi.White, "AE": weiqi.Empty}[id]
		for _, p := range points {
			if err := l.setup(p, color); err != nil {
				return l.fail(ErrInvalidFile, i, id, err.Error())
			}
		}
	}
	if i == 0 && l.g.State() == weiqi.StateHandicap {
		return l.fail(ErrInvalidFile, 0, "HA", fmt.Sprintf("%d handicap stones missing", l.g.HandicapLeft()))
	}

	_, black := node["B"]
	_, white := node["W"]
	if black && white {
		return l.fail(ErrInvalidFile, i, "W", "two moves in one node")
	}
	for _, id := range []string{"B", "W"} {
		v, ok, err := l.single(i, id)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		color := weiqi.Black
		if id == "W" {
			color = weiqi.White
		}
		p, pass, err := ParsePoint(id, v, l.size)
		if err != nil {
			return l.fail(ErrInvalidFile, i, id, err.Error())
		}
		m := weiqi.NewMovePass(color)
		if !pass {
			m = weiqi.NewMove(color, p.X, p.Y)
		}
		if err := l.g.Play(m); err != nil {
			return l.fail(ErrInvalidFile, i, id, err.Error())
		}
	}

	if vs, ok := node["C"]; ok {
		comment := strings.Join(vs, "\n")
		if old := l.g.History().Current().Comment(); old != "" {
			comment = old + "\n" + comment
		}
		l.g.SetComment(comment)
	}
	for id, mark := range map[string]weiqi.Mark{"CR": weiqi.MarkCircle, "SQ": weiqi.MarkSquare, "TR": weiqi.MarkTriangle} {
		if _, ok := node[id]; !ok {
			continue
		}
		points, err := ParsePointList(id, node[id], l.size)
		if err != nil {
			return l.fail(ErrInvalidFile, i, id, err.Error())
		}
		for _, p := range points {
			if err := l.g.SetMark(p.X, p.Y, mark); err != nil {
				return l.fail(ErrInvalidFile, i, id, err.Error())
			}
		}
	}
	return nil
}

// setup places a stone, using it as a handicap stone while the game still waits for one
func (l *loader) setup(p weiqi.Position, color weiqi.StoneColor) error {
	if color == l.g.Beginner() && l.g.State() == weiqi.StateHandicap {
		ok, err := l.g.PlaceHandicapStone(p.X, p.Y)
		if err != nil {
			return err
		}
		if !ok {
			return errors.Errorf("handicap stone %s placed twice", p)
		}
		return nil
	}
	return l.g.SetupStone(p.X, p.Y, color)
}

// finish ends the game when the file records a resignation.
// Other results are left to the caller (see ReadInfo); the engine does not know which stones were dead.
func (l *loader) finish() error {
	v, ok, err := l.single(0, "RE")
	if err != nil || !ok {
		return err
	}
	winner, _, end, err := ParseResult(v)
	if err != nil {
		return l.fail(ErrInvalidFile, 0, "RE", err.Error())
	}
	if end == EndResign && l.g.State() != weiqi.StateOver {
		if err := l.g.Resign(winner.Opposite()); err != nil {
			return l.fail(ErrInvalidFile, 0, "RE", err.Error())
		}
	}
	return nil
}
