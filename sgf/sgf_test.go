package sgf

import (
	"bytes"
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/dodgebc/goban/weiqi"
)

func TestNewGameTree(t *testing.T) {
	root, err := NewGameTree("junk (;GM[1]SZ[9]C[a\\]b\\\\c\\\nd\ne\tf];B[aa];W[bb](;B[cc])(;B[dd]AB[ee][ff])) more")
	if err != nil {
		t.Fatal(err)
	}
	if len(root.Children) != 1 {
		t.Fatalf("found %d games", len(root.Children))
	}
	gt := root.Children[0]
	if len(gt.Nodes) != 3 || len(gt.Children) != 2 {
		t.Fatalf("found %d nodes and %d variations", len(gt.Nodes), len(gt.Children))
	}
	if c := gt.Nodes[0]["C"][0]; c != "a]b\\cd\ne f" {
		t.Fatalf("comment %q", c)
	}
	if v := gt.Children[1].Nodes[0]["AB"]; len(v) != 2 || v[1] != "ff" {
		t.Fatalf("AB values %v", v)
	}
	if p := gt.PropPos(1, "B"); p != (Pos{3, 6}) {
		t.Fatalf("B found at %s", p)
	}
	again, err := NewGameTree("(;GM[1]SZ[9]C[a\\]b\\\\cd\ne f];B[aa];W[bb](;B[cc])(;B[dd]AB[ee][ff]))")
	if err != nil {
		t.Fatal(err)
	}
	if !root.Equals(&again) {
		t.Fatalf("trees differ:%s\n%s", root, again)
	}
}

func TestSyntaxErrors(t *testing.T) {
	tests := []struct {
		text      string
		line, col int
		token     string
	}{
		{"(;B[aa]", 1, 1, "("},
		{";B[aa])", 1, 7, ")"},
		{"(;B[aa)", 1, 4, "["},
		{"(;\nB[aa]])", 2, 6, "]"},
		{"()", 1, 2, ")"},
		{"(;[aa])", 1, 3, "["},
		{"(B[aa])", 1, 2, "B"},
		{"(;B[aa]1)", 1, 8, "1"},
	}
	for _, tt := range tests {
		_, err := NewGameTree(tt.text)
		var le *LoadError
		if !errors.As(err, &le) {
			t.Fatalf("%q: expected LoadError, got %v", tt.text, err)
		}
		if !errors.Is(err, ErrInvalidFile) {
			t.Fatalf("%q: expected ErrInvalidFile, got %v", tt.text, err)
		}
		if le.Line != tt.line || le.Col != tt.col || le.Token != tt.token {
			t.Fatalf("%q: error at %d:%d near %q, expected %d:%d near %q", tt.text, le.Line, le.Col, le.Token, tt.line, tt.col, tt.token)
		}
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		text string
		want error
	}{
		{"", ErrInvalidFile},
		{"(;GM[1](;B[aa])(;B[bb]))", ErrVariations},
		{"(;GM[2])", ErrUnsupported},
		{"(;GM[x])", ErrInvalidFile},
		{"(;FF[5])", ErrUnsupported},
		{"(;SZ[9:13])", ErrUnsupported},
		{"(;SZ[60])", ErrInvalidFile},
		{"(;SZ[9]HA[12])", ErrInvalidFile},
		{"(;SZ[9]HA[2];B[aa])", ErrInvalidFile},
		{"(;SZ[9]HA[2]AB[aa][aa])", ErrInvalidFile},
		{"(;SZ[9]KM[lots])", ErrInvalidFile},
		{"(;SZ[9];B[aa];B[bb])", ErrInvalidFile},
		{"(;SZ[9];B[aa]W[bb])", ErrInvalidFile},
		{"(;SZ[9];B[zz])", ErrInvalidFile},
		{"(;SZ[9];B[aa];W[aa])", ErrInvalidFile},
		{"(;SZ[9]AB[aa][bb])(;SZ[9])", ErrUnsupported},
		{"(;SZ[9]RU[japanese][chinese])", ErrInvalidFile},
		{"(;SZ[9]RU[custom;ko=x])", ErrInvalidFile},
		{"(;SZ[9]RE[B+lots];B[aa])", ErrInvalidFile},
		{"(;SZ[9]RE[B+R][W+R])", ErrInvalidFile},
	}
	for _, tt := range tests {
		_, err := Load(tt.text)
		if !errors.Is(err, tt.want) {
			t.Fatalf("%q: expected %v, got %v", tt.text, tt.want, err)
		}
	}
}

func TestLoadErrorPosition(t *testing.T) {
	_, err := Load("(;SZ[9]\n;B[aa]\n;B[bb])")
	var le *LoadError
	if !errors.As(err, &le) {
		t.Fatalf("expected LoadError, got %v", err)
	}
	if le.Line != 3 || le.Col != 2 || le.Token != "B[bb]" {
		t.Fatalf("error at %d:%d near %q", le.Line, le.Col, le.Token)
	}
	if !errors.Is(err, ErrInvalidFile) {
		t.Fatalf("expected ErrInvalidFile, got %v", err)
	}
}

func TestLoadGame(t *testing.T) {
	text := `(;GM[1]FF[4]SZ[9]KM[5.5]RU[Chinese]C[start]
;B[ee];W[ef]C[hello]TR[ef];B[df];W[aa];B[ff];W[bb];B[eg]C[captured])`
	g, err := Load(text)
	if err != nil {
		t.Fatal(err)
	}
	if g.Size() != 9 || g.MoveNumber() != 7 || g.Turn() != weiqi.White {
		t.Fatalf("size %d, move %d, turn %s", g.Size(), g.MoveNumber(), g.Turn())
	}
	if g.Rules().Name() != weiqi.NameChinese || g.Komi() != 5.5 {
		t.Fatalf("rules %s, komi %v", g.Rules().Name(), g.Komi())
	}
	if g.Captures(weiqi.Black) != 1 {
		t.Fatalf("black captured %d", g.Captures(weiqi.Black))
	}
	if c, _ := g.ColorAt(4, 5); c != weiqi.Empty {
		t.Fatal("captured stone still on the board")
	}
	if g.History().Root().Comment() != "start" {
		t.Fatalf("root comment %q", g.History().Root().Comment())
	}
	nodes := g.History().Nodes()
	if nodes[1].Comment() != "hello" || nodes[6].Comment() != "captured" {
		t.Fatalf("comments %q %q", nodes[1].Comment(), nodes[6].Comment())
	}
	if m, ok := nodes[1].Mark(weiqi.Position{X: 4, Y: 5}); !ok || m != weiqi.MarkTriangle {
		t.Fatal("triangle mark missing")
	}
}

func TestLoadDefaults(t *testing.T) {
	g, err := Load("(;RU[unknown];B[pd])")
	if err != nil {
		t.Fatal(err)
	}
	if g.Size() != 19 || g.Rules().Name() != weiqi.NameJapanese || g.Komi() != 6.5 {
		t.Fatalf("size %d, rules %s, komi %v", g.Size(), g.Rules().Name(), g.Komi())
	}
	if c, _ := g.ColorAt(15, 3); c != weiqi.Black {
		t.Fatal("move not replayed")
	}
}

func TestLoadHandicap(t *testing.T) {
	g, err := Load("(;SZ[9]HA[2]AB[cc][gg];W[ee])")
	if err != nil {
		t.Fatal(err)
	}
	if g.Handicap() != 2 || g.HandicapLeft() != 0 || g.State() != weiqi.StatePlaying {
		t.Fatalf("handicap %d, left %d, state %s", g.Handicap(), g.HandicapLeft(), g.State())
	}
	for _, p := range []weiqi.Position{{X: 2, Y: 2}, {X: 6, Y: 6}} {
		if c, _ := g.ColorAt(p.X, p.Y); c != weiqi.Black {
			t.Fatalf("no handicap stone at %s", p)
		}
	}
	if g.Turn() != weiqi.Black || g.MoveNumber() != 1 {
		t.Fatalf("turn %s after move %d", g.Turn(), g.MoveNumber())
	}
	if g.History().Nodes()[0].Token() != weiqi.TokenHandicap {
		t.Fatal("first node is not a handicap stone")
	}
}

func TestLoadSetup(t *testing.T) {
	g, err := Load("(;SZ[5]AB[aa:bb]AW[ee];AE[ab]B[cc])")
	if err != nil {
		t.Fatal(err)
	}
	want := "" +
		"  a b c d e\n" +
		"a X X . . .\n" +
		"b . X . . .\n" +
		"c . . X . .\n" +
		"d . . . . .\n" +
		"e . . . . O\n"
	if g.Board().String() != want {
		t.Fatalf("board\n%s", g.Board())
	}
	if g.Turn() != weiqi.White {
		t.Fatalf("turn %s", g.Turn())
	}
}

func TestLoadKoAfterSetup(t *testing.T) {
	_, err := Load("(;SZ[9]AB[ba][ab][bc]AW[ca][db][cc][bb]\n;B[cb];W[bb])")
	var le *LoadError
	if !errors.As(err, &le) {
		t.Fatalf("expected LoadError, got %v", err)
	}
	if le.Token != "W[bb]" || le.Line != 2 || !strings.Contains(le.Msg, "ko") {
		t.Fatalf("error at line %d near %q: %s", le.Line, le.Token, le.Msg)
	}
}

func TestLoadResult(t *testing.T) {
	g, err := Load("(;SZ[9]RE[W+R];B[ee])")
	if err != nil {
		t.Fatal(err)
	}
	if g.State() != weiqi.StateOver || g.Result().String() != "W+R" {
		t.Fatalf("state %s", g.State())
	}

	// Scored results are left to the caller
	g, err = Load("(;SZ[9]RE[B+3.5];B[ee])")
	if err != nil {
		t.Fatal(err)
	}
	if g.State() != weiqi.StatePlaying || g.Result() != nil {
		t.Fatalf("state %s", g.State())
	}
}

func TestLoadAll(t *testing.T) {
	games, err := LoadAll("(;SZ[9];B[aa])\n(;SZ[13];B[bb];W[cc])")
	if err != nil {
		t.Fatal(err)
	}
	if len(games) != 2 || games[0].Size() != 9 || games[1].MoveNumber() != 2 {
		t.Fatalf("loaded %d games", len(games))
	}
}

func TestReadInfo(t *testing.T) {
	root, err := NewGameTree("(;PB[Lee Sedol]PW[AlphaGo]BR[9p]WR[P7d]DT[2016-03-09]TM[2h]RE[W+Resign]EV[Match])")
	if err != nil {
		t.Fatal(err)
	}
	info, err := ReadInfo(root.Children[0].Nodes[0])
	if err != nil {
		t.Fatal(err)
	}
	want := Info{
		BlackPlayer: "Lee Sedol",
		WhitePlayer: "AlphaGo",
		BlackRank:   "9p",
		WhiteRank:   "7p",
		Year:        2016,
		Date:        "2016-03-09",
		Time:        7200,
		Event:       "Match",
		Result:      "W+Resign",
		Winner:      weiqi.White,
		End:         EndResign,
	}
	if info != want {
		t.Fatalf("got %+v, expected %+v", info, want)
	}

	if _, err := ReadInfo(Node{"PB": {"a", "b"}}); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
	if _, err := ReadInfo(Node{"RE": {"Black wins"}}); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestParseResult(t *testing.T) {
	tests := []struct {
		v      string
		winner weiqi.StoneColor
		score  float64
		end    string
	}{
		{"B+3.5", weiqi.Black, 3.5, EndScored},
		{"W+", weiqi.White, 0, EndScored},
		{"W+T", weiqi.White, 0, EndTime},
		{"B+Forfeit", weiqi.Black, 0, EndForfeit},
		{"0", weiqi.Empty, 0, EndDraw},
		{"Draw", weiqi.Empty, 0, EndDraw},
	}
	for _, tt := range tests {
		winner, score, end, err := ParseResult(tt.v)
		if err != nil {
			t.Fatal(err)
		}
		if winner != tt.winner || score != tt.score || end != tt.end {
			t.Fatalf("%s: got %s %v %s", tt.v, winner, score, end)
		}
	}
	if _, _, _, err := ParseResult("X+1"); err == nil {
		t.Fatal("expected error")
	}
}

func TestParseProperties(t *testing.T) {
	if k, err := ParseKomi("650"); err != nil || k != 6.5 {
		t.Fatalf("komi %v, %v", k, err)
	}
	if cols, rows, err := ParseSize("9:13"); err != nil || cols != 9 || rows != 13 {
		t.Fatalf("size %d:%d, %v", cols, rows, err)
	}
	if _, _, err := ParseSize("0"); err == nil {
		t.Fatal("expected size error")
	}
	if r, err := ParseRank("BR", "3段"); err != nil || r != "3d" {
		t.Fatalf("rank %q, %v", r, err)
	}
	if s, err := ParseTime("90m"); err != nil || s != 5400 {
		t.Fatalf("time %d, %v", s, err)
	}
	if _, pass, err := ParsePoint("B", "tt", 19); err != nil || !pass {
		t.Fatal("tt is a pass on 19x19")
	}
	if _, _, err := ParsePoint("B", "tt", 13); err == nil {
		t.Fatal("tt is off a 13x13 board")
	}
	ps, err := ParsePointList("AB", []string{"cc:aa", "ee"}, 9)
	if err != nil || len(ps) != 10 {
		t.Fatalf("expanded to %d points, %v", len(ps), err)
	}
	if ps[0] != (weiqi.Position{X: 0, Y: 0}) || ps[9] != (weiqi.Position{X: 4, Y: 4}) {
		t.Fatalf("points %v", ps)
	}
}

func roundTrip(t *testing.T, g *weiqi.Game, info Info) (*weiqi.Game, string) {
	t.Helper()
	var buf bytes.Buffer
	if err := Save(&buf, g, info); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(buf.String())
	if err != nil {
		t.Fatalf("%v\n%s", err, buf.String())
	}
	if !loaded.Board().Equals(g.Board()) {
		t.Fatalf("boards differ\n%s\n%s", g.Board(), loaded.Board())
	}
	if loaded.MoveNumber() != g.MoveNumber() || loaded.Turn() != g.Turn() {
		t.Fatalf("move %d turn %s, expected move %d turn %s", loaded.MoveNumber(), loaded.Turn(), g.MoveNumber(), g.Turn())
	}
	for _, c := range []weiqi.StoneColor{weiqi.Black, weiqi.White} {
		if loaded.Captures(c) != g.Captures(c) {
			t.Fatalf("%s captured %d, expected %d", c, loaded.Captures(c), g.Captures(c))
		}
	}
	if loaded.Komi() != g.Komi() || loaded.Rules().Name() != g.Rules().Name() {
		t.Fatalf("komi %v rules %s", loaded.Komi(), loaded.Rules().Name())
	}
	return loaded, buf.String()
}

func TestSaveRoundTrip(t *testing.T) {
	g, err := weiqi.NewGame(9, 0, weiqi.NewJapanese())
	if err != nil {
		t.Fatal(err)
	}
	if err := g.SetupStone(0, 0, weiqi.White); err != nil {
		t.Fatal(err)
	}
	g.SetComment("setup")
	for _, m := range []string{"Bee", "Wef"} {
		move, _ := weiqi.ParseMove(m)
		if err := g.Play(move); err != nil {
			t.Fatal(err)
		}
	}
	g.SetComment(`tricky ] and \ text`)
	if err := g.SetMark(4, 5, weiqi.MarkTriangle); err != nil {
		t.Fatal(err)
	}
	if ok, err := g.PlayMove(3, 5); !ok || err != nil {
		t.Fatal("B[df] rejected")
	}
	if err := g.Pass(); err != nil {
		t.Fatal(err)
	}
	for _, p := range []weiqi.Position{{X: 5, Y: 5}, {X: 8, Y: 8}, {X: 4, Y: 6}, {X: 7, Y: 7}} {
		if ok, err := g.PlayMove(p.X, p.Y); !ok || err != nil {
			t.Fatalf("%s rejected", p)
		}
	}
	g.Undo()

	info := Info{BlackPlayer: "Black", WhitePlayer: "White", Event: "Test"}
	loaded, text := roundTrip(t, g, info)
	if strings.Contains(text, "W[hh]") {
		t.Fatalf("undone move saved\n%s", text)
	}
	if !strings.Contains(text, "AW[aa]") || !strings.Contains(text, "PB[Black]") {
		t.Fatalf("root properties missing\n%s", text)
	}
	nodes := loaded.History().Nodes()
	if nodes[0].Token() != weiqi.TokenSetup || nodes[0].Comment() != "setup" {
		t.Fatalf("setup node %s %q", nodes[0].Token(), nodes[0].Comment())
	}
	if nodes[2].Comment() != `tricky ] and \ text` {
		t.Fatalf("comment %q", nodes[2].Comment())
	}
	if m, ok := nodes[2].Mark(weiqi.Position{X: 4, Y: 5}); !ok || m != weiqi.MarkTriangle {
		t.Fatal("mark lost")
	}
	if nodes[4].Token() != weiqi.TokenPass {
		t.Fatalf("expected pass, got %s", nodes[4].Token())
	}

	root, _ := NewGameTree(text)
	read, err := ReadInfo(root.Children[0].Nodes[0])
	if err != nil {
		t.Fatal(err)
	}
	if read.BlackPlayer != "Black" || read.Event != "Test" || read.Rules != weiqi.NameJapanese {
		t.Fatalf("info %+v", read)
	}
}

func TestSaveHandicap(t *testing.T) {
	g, err := weiqi.NewGame(9, 2, weiqi.NewJapanese())
	if err != nil {
		t.Fatal(err)
	}
	if ok, err := g.PlayMove(4, 4); !ok || err != nil {
		t.Fatal("white move rejected")
	}
	loaded, text := roundTrip(t, g, Info{})
	if !strings.Contains(text, "HA[2]") || !strings.Contains(text, "AB[gc][cg]") {
		t.Fatalf("handicap missing\n%s", text)
	}
	if loaded.Handicap() != 2 {
		t.Fatalf("handicap %d", loaded.Handicap())
	}
}

func TestSaveCustomRules(t *testing.T) {
	cfg := weiqi.CustomRules{Name: "custom", Komi: 0.5, KoAmount: 3, Suicide: true, AreaScoring: true}
	g, err := weiqi.NewGame(9, 0, weiqi.NewCustom(cfg))
	if err != nil {
		t.Fatal(err)
	}
	g.SetupStone(0, 0, weiqi.Black)
	for _, p := range []weiqi.Position{{X: 0, Y: 1}, {X: 1, Y: 1}, {X: 2, Y: 0}} {
		g.SetupStone(p.X, p.Y, weiqi.White)
	}
	// black kills its own two stones
	if ok, err := g.PlayMove(1, 0); !ok || err != nil {
		t.Fatal("suicide refused")
	}
	loaded, text := roundTrip(t, g, Info{})
	if !strings.Contains(text, "RU[custom;komi=0.5;ko=3;suicide;area]") {
		t.Fatalf("rules not saved\n%s", text)
	}
	custom, ok := loaded.Rules().(*weiqi.Custom)
	if !ok || custom.Config() != cfg {
		t.Fatalf("rules %#v", loaded.Rules())
	}
	if loaded.Captures(weiqi.White) != 2 {
		t.Fatalf("white credited with %d captures", loaded.Captures(weiqi.White))
	}
}

func TestSaveResignation(t *testing.T) {
	g, err := weiqi.NewGame(9, 0, weiqi.NewChinese())
	if err != nil {
		t.Fatal(err)
	}
	g.PlayMove(4, 4)
	if err := g.Resign(weiqi.White); err != nil {
		t.Fatal(err)
	}
	loaded, text := roundTrip(t, g, Info{})
	if !strings.Contains(text, "RE[B+R]") {
		t.Fatalf("result missing\n%s", text)
	}
	if loaded.State() != weiqi.StateOver || loaded.Result().Winner != weiqi.Black {
		t.Fatalf("state %s", loaded.State())
	}
}

func randomGame(seed int64, size, attempts int) *weiqi.Game {
	g, _ := weiqi.NewGame(size, 0, weiqi.NewNewZealand())
	r := rand.New(rand.NewSource(seed))
	for i := 0; i < attempts; i++ {
		g.PlayMove(r.Intn(size), r.Intn(size))
	}
	return g
}

func TestSaveRandomGames(t *testing.T) {
	for seed := int64(0); seed < 10; seed++ {
		roundTrip(t, randomGame(seed, 9, 150), Info{})
	}
}

func BenchmarkReplay(b *testing.B) {
	text := Serialize(randomGame(1, 19, 400), Info{})
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Load(text); err != nil {
			b.Fatal(err)
		}
	}
}
