package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dodgebc/goban/weiqi"
)

func writeConfig(t *testing.T, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "goban.yaml")
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaults(t *testing.T) {
	cfg, err := Setup("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.BoardSize != 19 || cfg.Ruleset != weiqi.NameJapanese || cfg.Workers != 1 || cfg.MongoDatabase != "goban" {
		t.Fatalf("config %+v", cfg)
	}
	rules, err := cfg.Rules()
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := rules.(*weiqi.Japanese); !ok {
		t.Fatalf("rules %T", rules)
	}
}

func TestFileAndEnvironment(t *testing.T) {
	path := writeConfig(t, "board_size: 9\nruleset: chinese\nworkers: 4\nlog_level: debug\n")
	t.Setenv("GOBAN_WORKERS", "8")
	t.Setenv("GOBAN_HANDICAP", "3")
	cfg, err := Setup(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.BoardSize != 9 || cfg.Workers != 8 || cfg.Handicap != 3 || cfg.LogLevel != "debug" {
		t.Fatalf("config %+v", cfg)
	}
	g, err := cfg.NewGame()
	if err != nil {
		t.Fatal(err)
	}
	if g.Size() != 9 || g.Handicap() != 3 || g.Rules().Name() != weiqi.NameChinese {
		t.Fatalf("game %dx%d handicap %d rules %s", g.Size(), g.Size(), g.Handicap(), g.Rules().Name())
	}
	if g.State() != weiqi.StatePlaying {
		t.Fatalf("fixed handicap left state %s", g.State())
	}
	if _, err := cfg.Logger(); err != nil {
		t.Fatal(err)
	}
}

func TestOverrides(t *testing.T) {
	path := writeConfig(t, "ruleset: nz\nkomi: 0.5\nsuicide: forbid\nko_amount: 3\n")
	cfg, err := Setup(path)
	if err != nil {
		t.Fatal(err)
	}
	rules, err := cfg.Rules()
	if err != nil {
		t.Fatal(err)
	}
	if rules.Name() != "custom" || rules.Komi() != 0.5 || rules.KoAmount() != 3 {
		t.Fatalf("rules %s komi %v ko %d", rules.Name(), rules.Komi(), rules.KoAmount())
	}
	if rules.Suicide(nil, nil) {
		t.Fatal("suicide allowed")
	}

	// Area scoring and free handicap carry over from New Zealand rules
	g, err := weiqi.NewGame(9, 2, rules)
	if err != nil {
		t.Fatal(err)
	}
	if g.State() != weiqi.StateHandicap {
		t.Fatalf("state %s", g.State())
	}
}

func TestKomiFromEnvironment(t *testing.T) {
	t.Setenv("GOBAN_KOMI", "0")
	cfg, err := Setup("")
	if err != nil {
		t.Fatal(err)
	}
	rules, err := cfg.Rules()
	if err != nil {
		t.Fatal(err)
	}
	if rules.Komi() != 0 || rules.Name() != "custom" {
		t.Fatalf("rules %s komi %v", rules.Name(), rules.Komi())
	}
}

func TestInvalid(t *testing.T) {
	tests := []struct {
		text string
		want error
	}{
		{"board_size: 60\n", weiqi.ErrInvalidSize},
		{"handicap: 10\n", weiqi.ErrInvalidHandicap},
		{"ruleset: ing\n", nil},
		{"suicide: sometimes\n", nil},
		{"scoring: stones\n", nil},
		{"workers: 0\n", nil},
		{"log_level: loud\n", nil},
	}
	for _, tt := range tests {
		_, err := Setup(writeConfig(t, tt.text))
		if err == nil {
			t.Fatalf("%q: expected error", tt.text)
		}
		if tt.want != nil && !errors.Is(err, tt.want) {
			t.Fatalf("%q: expected %v, got %v", tt.text, tt.want, err)
		}
	}
	if _, err := Setup(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
