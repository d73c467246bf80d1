package weiqi

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Ruleset supplies komi, ko, suicide, handicap and scoring policy to a Game
type Ruleset interface {
	Name() string
	Komi() float64
	KoAmount() int

	// IsKo compares the board after a move against the recent positions.
	// The returned command has already pushed the position into the window.
	IsKo(g *Game) (Command, bool)

	// ScoreGame scores the current position
	ScoreGame(g *Game) *GameResult

	// SetHandicapStones places n stones for beginner. It returns false when
	// placement is left to the players.
	SetHandicapStones(g *Game, beginner StoneColor, n int) (bool, error)

	// Suicide allows or forbids a move that leaves its own group without liberties
	Suicide(existing, added *StoneGroup) bool

	// Reset clears the ko bookkeeping for a new game
	Reset()
}

// Ruleset names accepted by RulesetByName
const (
	NameJapanese   = "japanese"
	NameChinese    = "chinese"
	NameNewZealand = "nz"
)

// RulesetByName builds a predefined ruleset ("japanese", "chinese" or "nz", case-insensitive),
// or a Custom ruleset from a label written by RulesLabel
func RulesetByName(name string) (Ruleset, error) {
	if isCustomLabel(name) {
		cfg, err := ParseCustomRules(name)
		if err != nil {
			return nil, err
		}
		return NewCustom(cfg), nil
	}
	switch strings.ToLower(name) {
	case NameJapanese, "jp", "":
		return NewJapanese(), nil
	case NameChinese, "cn":
		return NewChinese(), nil
	case NameNewZealand, "new zealand", "newzealand":
		return NewNewZealand(), nil
	}
	return nil, errors.WithMessagef(ErrUnknownRuleset, "%q", name)
}

// koWindow remembers the hashes of the last few positions
type koWindow struct {
	amount int
	hashes []uint64
}

func (w *koWindow) KoAmount() int {
	return w.amount
}

func (w *koWindow) IsKo(g *Game) (Command, bool) {
	h := g.Board().Hash()
	ko := false
	for _, old := range w.hashes {
		if old == h {
			ko = true
			break
		}
	}
	return w.push(h), ko
}

func (w *koWindow) push(h uint64) Command {
	old := w.hashes
	next := append(append(make([]uint64, 0, len(old)+1), old...), h)
	if len(next) > w.amount {
		next = next[len(next)-w.amount:]
	}
	return apply(func() { w.hashes = next }, func() { w.hashes = old })
}

func (w *koWindow) Reset() {
	w.hashes = nil
}

// Japanese rules: territory plus captures, fixed handicap, no suicide
type Japanese struct {
	koWindow
	komi float64
}

// NewJapanese returns Japanese rules with 6.5 komi
func NewJapanese() *Japanese {
	return &Japanese{koWindow: koWindow{amount: 2}, komi: 6.5}
}

func (r *Japanese) Name() string  { return NameJapanese }
func (r *Japanese) Komi() float64 { return r.komi }

func (r *Japanese) ScoreGame(g *Game) *GameResult {
	return scoreGame(g, false)
}

func (r *Japanese) SetHandicapStones(g *Game, beginner StoneColor, n int) (bool, error) {
	return fixedHandicap(g, beginner, n)
}

func (r *Japanese) Suicide(existing, added *StoneGroup) bool { return false }

// Chinese rules in the ancient style: stones on the board plus territory
type Chinese struct {
	koWindow
	komi float64
}

// NewChinese returns area-scoring rules with 7.5 komi
func NewChinese() *Chinese {
	return &Chinese{koWindow: koWindow{amount: 4}, komi: 7.5}
}

func (r *Chinese) Name() string  { return NameChinese }
func (r *Chinese) Komi() float64 { return r.komi }

func (r *Chinese) ScoreGame(g *Game) *GameResult {
	return scoreGame(g, true)
}

func (r *Chinese) SetHandicapStones(g *Game, beginner StoneColor, n int) (bool, error) {
	return fixedHandicap(g, beginner, n)
}

func (r *Chinese) Suicide(existing, added *StoneGroup) bool { return false }

// NewZealand rules: area scoring, free handicap placement, suicide allowed
type NewZealand struct {
	koWindow
	komi float64
}

// NewNewZealand returns New Zealand rules with 7 komi
func NewNewZealand() *NewZealand {
	return &NewZealand{koWindow: koWindow{amount: 8}, komi: 7}
}

func (r *NewZealand) Name() string  { return NameNewZealand }
func (r *NewZealand) Komi() float64 { return r.komi }

func (r *NewZealand) ScoreGame(g *Game) *GameResult {
	return scoreGame(g, true)
}

func (r *NewZealand) SetHandicapStones(g *Game, beginner StoneColor, n int) (bool, error) {
	if n < 2 {
		return true, nil
	}
	return false, nil
}

// Suicide is allowed unless the placed stone dies alone
func (r *NewZealand) Suicide(existing, added *StoneGroup) bool {
	return existing.Size() > 1
}

// CustomRules configures a user-defined ruleset
type CustomRules struct {
	Name         string
	Komi         float64
	KoAmount     int
	Suicide      bool
	AreaScoring  bool
	FreeHandicap bool
}

// Custom is a user-defined ruleset
type Custom struct {
	koWindow
	cfg CustomRules
}

// NewCustom builds a ruleset from cfg. A KoAmount below 1 becomes 2.
func NewCustom(cfg CustomRules) *Custom {
	if cfg.KoAmount < 1 {
		cfg.KoAmount = 2
	}
	if cfg.Name == "" {
		cfg.Name = "custom"
	}
	return &Custom{koWindow: koWindow{amount: cfg.KoAmount}, cfg: cfg}
}

func (r *Custom) Name() string  { return r.cfg.Name }
func (r *Custom) Komi() float64 { return r.cfg.Komi }

func (r *Custom) ScoreGame(g *Game) *GameResult {
	return scoreGame(g, r.cfg.AreaScoring)
}

func (r *Custom) SetHandicapStones(g *Game, beginner StoneColor, n int) (bool, error) {
	if r.cfg.FreeHandicap && n >= 2 {
		return false, nil
	}
	return fixedHandicap(g, beginner, n)
}

func (r *Custom) Suicide(existing, added *StoneGroup) bool { return r.cfg.Suicide }

// Config returns the settings r was built from
func (r *Custom) Config() CustomRules { return r.cfg }

const customLabel = "custom"

func isCustomLabel(s string) bool {
	head := strings.ToLower(strings.SplitN(s, ";", 2)[0])
	return head == customLabel || strings.HasPrefix(head, customLabel+":")
}

// String encodes the settings as "custom[:name];komi=K;ko=N" followed by the
// flags suicide, area and free, in that order
func (c CustomRules) String() string {
	var sb strings.Builder
	sb.WriteString(customLabel)
	if c.Name != "" && c.Name != customLabel {
		sb.WriteString(":" + c.Name)
	}
	sb.WriteString(";komi=" + strconv.FormatFloat(c.Komi, 'f', -1, 64))
	sb.WriteString(";ko=" + strconv.Itoa(c.KoAmount))
	for _, f := range []struct {
		on   bool
		flag string
	}{{c.Suicide, "suicide"}, {c.AreaScoring, "area"}, {c.FreeHandicap, "free"}} {
		if f.on {
			sb.WriteString(";" + f.flag)
		}
	}
	return sb.String()
}

// ParseCustomRules reads settings written by CustomRules.String
func ParseCustomRules(s string) (CustomRules, error) {
	var cfg CustomRules
	fields := strings.Split(s, ";")
	if !isCustomLabel(fields[0]) {
		return cfg, errors.Errorf("not a custom ruleset: %q", s)
	}
	cfg.Name = customLabel
	if i := strings.IndexByte(fields[0], ':'); i >= 0 && i+1 < len(fields[0]) {
		cfg.Name = fields[0][i+1:]
	}
	for _, f := range fields[1:] {
		key, value, _ := strings.Cut(strings.TrimSpace(f), "=")
		var err error
		switch strings.ToLower(key) {
		case "komi":
			cfg.Komi, err = strconv.ParseFloat(value, 64)
		case "ko":
			cfg.KoAmount, err = strconv.Atoi(value)
		case "suicide":
			cfg.Suicide = true
		case "area":
			cfg.AreaScoring = true
		case "free":
			cfg.FreeHandicap = true
		case "":
		default:
			return cfg, errors.Errorf("custom ruleset %q: unknown setting %q", s, key)
		}
		if err != nil {
			return cfg, errors.Errorf("custom ruleset %q: bad %s value %q", s, key, value)
		}
	}
	return cfg, nil
}

// RulesLabel names r so that RulesetByName can rebuild it. Custom rules,
// also behind WithKomi or WithFreeHandicap, carry their settings.
func RulesLabel(r Ruleset) string {
	for {
		switch v := r.(type) {
		case *Custom:
			cfg := v.Config()
			cfg.KoAmount = v.KoAmount()
			return cfg.String()
		case interface{ Unwrap() Ruleset }:
			r = v.Unwrap()
			continue
		}
		return r.Name()
	}
}

type komiRules struct {
	Ruleset
	komi float64
}

func (r komiRules) Komi() float64 { return r.komi }

func (r komiRules) Unwrap() Ruleset { return r.Ruleset }

// WithKomi returns rules that behave like r but with a different komi
func WithKomi(r Ruleset, komi float64) Ruleset {
	return komiRules{Ruleset: r, komi: komi}
}

type freeHandicapRules struct {
	Ruleset
}

func (r freeHandicapRules) Unwrap() Ruleset { return r.Ruleset }

func (r freeHandicapRules) SetHandicapStones(g *Game, beginner StoneColor, n int) (bool, error) {
	return n < 2, nil
}

// WithFreeHandicap returns rules that behave like r but leave handicap placement to the players
func WithFreeHandicap(r Ruleset) Ruleset {
	return freeHandicapRules{Ruleset: r}
}

// HandicapPoints returns the star points used for n handicap stones.
// It reports false when the board has no fixed layout (even or smaller than 7).
func HandicapPoints(size, n int) ([]Position, bool) {
	if n < 2 {
		return nil, true
	}
	if size < 7 || size%2 == 0 || n > 9 {
		return nil, false
	}
	low := 2 + size/10
	high := size - 1 - low
	mid := size / 2

	corners := []Position{{high, low}, {low, high}, {high, high}, {low, low}}
	sides := []Position{{low, mid}, {high, mid}, {mid, low}, {mid, high}}
	center := Position{mid, mid}

	switch n {
	case 2, 3, 4:
		return corners[:n], true
	case 5:
		return append(corners[:4:4], center), true
	case 6:
		return append(corners[:4:4], sides[:2]...), true
	case 7:
		return append(append(corners[:4:4], sides[:2]...), center), true
	case 8:
		return append(corners[:4:4], sides...), true
	}
	return append(append(corners[:4:4], sides...), center), true
}

func fixedHandicap(g *Game, beginner StoneColor, n int) (bool, error) {
	points, ok := HandicapPoints(g.Board().Size(), n)
	if !ok {
		return false, nil
	}
	for _, p := range points {
		if _, err := g.placeHandicapStone(beginner, p); err != nil {
			return false, err
		}
	}
	return true, nil
}

// scoreGame credits territory and either captures (territory scoring)
// or stones on the board (area scoring), then handicap and the game's komi
func scoreGame(g *Game, area bool) *GameResult {
	res := newGameResult()
	b := g.Board()
	territory := Territory(b)
	for _, c := range []StoneColor{Black, White} {
		res.Add(c, PointTerritory, float64(territory[c.index()]))
		if area {
			res.Add(c, PointStonesOnBoard, float64(b.Stones(c)))
		} else {
			res.Add(c, PointCapturedStones, float64(g.Captures(c)))
		}
	}
	beginner := g.Beginner()
	res.Add(beginner, PointHandicap, float64(g.Handicap()))
	res.Add(beginner.Opposite(), PointKomi, g.Komi())
	res.decide()
	return res
}

// Territory counts empty intersections owned by each color, indexed Black then White.
// For each color every empty region is flooded; a region that never touches an opposing
// stone is claimed. A region claimed by both colors (it touches no stone at all) is neutral.
func Territory(b *Board) [2]int {
	n := b.size * b.size
	var claimed [2][]bool
	for _, c := range []StoneColor{Black, White} {
		claim := make([]bool, n)
		visited := make([]bool, n)
		for i := 0; i < n; i++ {
			if visited[i] || b.cells[i] != nil {
				continue
			}
			region, blocked := b.flood(Position{i % b.size, i / b.size}, c.Opposite(), visited)
			if !blocked {
				for _, p := range region {
					claim[p.Y*b.size+p.X] = true
				}
			}
		}
		claimed[c.index()] = claim
	}
	var counts [2]int
	for i := 0; i < n; i++ {
		black, white := claimed[0][i], claimed[1][i]
		switch {
		case black && !white:
			counts[0]++
		case white && !black:
			counts[1]++
		}
	}
	return counts
}

// flood collects the empty region around start and reports whether it touches a stone of color
func (b *Board) flood(start Position, color StoneColor, visited []bool) ([]Position, bool) {
	var region []Position
	touched := false
	visited[start.Y*b.size+start.X] = true
	stack := []Position{start}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		region = append(region, cur)
		for _, adj := range cur.adjacent() {
			if !b.exists(adj) {
				continue
			}
			i := adj.Y*b.size + adj.X
			ptr := b.cells[i]
			switch {
			case ptr == nil && !visited[i]:
				visited[i] = true
				stack = append(stack, adj)
			case ptr != nil && ptr.group.color == color:
				touched = true
			}
		}
	}
	return region, touched
}
