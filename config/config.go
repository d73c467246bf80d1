// Package config reads engine and tool settings with viper.
package config

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dodgebc/goban/weiqi"
)

// EnvPrefix is prepended to every key when reading the environment
const EnvPrefix = "GOBAN"

// Scoring methods
const (
	ScoringTerritory = "territory"
	ScoringArea      = "area"
)

// Suicide settings
const (
	SuicideAllow  = "allow"
	SuicideForbid = "forbid"
)

// Config holds the settings read by Setup
type Config struct {
	BoardSize     int     `mapstructure:"board_size"`
	Handicap      int     `mapstructure:"handicap"`
	Ruleset       string  `mapstructure:"ruleset"`
	Komi          float64 `mapstructure:"komi"`
	KoAmount      int     `mapstructure:"ko_amount"`
	Suicide       string  `mapstructure:"suicide"`
	Scoring       string  `mapstructure:"scoring"`
	FreeHandicap  bool    `mapstructure:"free_handicap"`
	LogLevel      string  `mapstructure:"log_level"`
	RedisURL      string  `mapstructure:"redis_url"`
	MongoURI      string  `mapstructure:"mongo_uri"`
	MongoDatabase string  `mapstructure:"mongo_database"`
	Workers       int     `mapstructure:"workers"`

	komiSet bool
}

var defaults = map[string]interface{}{
	"board_size":     weiqi.DefaultSize,
	"handicap":       0,
	"ruleset":        weiqi.NameJapanese,
	"ko_amount":      0,
	"suicide":        "",
	"scoring":        "",
	"free_handicap":  false,
	"log_level":      "info",
	"redis_url":      "",
	"mongo_uri":      "",
	"mongo_database": "goban",
	"workers":        1,
}

// Setup reads the file at cfgPath, if any, then the GOBAN_* environment
func Setup(cfgPath string) (*Config, error) {
	v := viper.New()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	if err := v.BindEnv("komi"); err != nil {
		return nil, err
	}

	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrap(err, "failed to read config")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to decode config")
	}
	cfg.komiSet = v.IsSet("komi")
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values viper cannot
func (c *Config) Validate() error {
	if c.BoardSize < 1 || c.BoardSize > weiqi.MaxSize {
		return errors.WithMessagef(weiqi.ErrInvalidSize, "board_size %d", c.BoardSize)
	}
	if c.Handicap < 0 || c.Handicap > 9 {
		return errors.WithMessagef(weiqi.ErrInvalidHandicap, "handicap %d", c.Handicap)
	}
	if _, err := weiqi.RulesetByName(c.Ruleset); err != nil {
		return err
	}
	switch strings.ToLower(c.Suicide) {
	case "", SuicideAllow, SuicideForbid:
	default:
		return errors.Errorf("suicide must be %q or %q, not %q", SuicideAllow, SuicideForbid, c.Suicide)
	}
	switch strings.ToLower(c.Scoring) {
	case "", ScoringTerritory, ScoringArea:
	default:
		return errors.Errorf("scoring must be %q or %q, not %q", ScoringTerritory, ScoringArea, c.Scoring)
	}
	if c.KoAmount < 0 {
		return errors.Errorf("ko_amount %d is negative", c.KoAmount)
	}
	if c.Workers < 1 {
		return errors.New("workers must be at least 1")
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrap(err, "log_level")
	}
	return nil
}

// SetKomi overrides the ruleset's komi
func (c *Config) SetKomi(komi float64) {
	c.Komi = komi
	c.komiSet = true
}

func (c *Config) overridden() bool {
	return c.komiSet || c.KoAmount > 0 || c.Suicide != "" || c.Scoring != "" || c.FreeHandicap
}

// Rules builds the configured ruleset. Any override turns the named
// ruleset into a custom one that starts from the named ruleset's settings.
func (c *Config) Rules() (weiqi.Ruleset, error) {
	base, err := weiqi.RulesetByName(c.Ruleset)
	if err != nil {
		return nil, err
	}
	if !c.overridden() {
		return base, nil
	}
	custom := weiqi.CustomRules{
		Name:         "custom",
		Komi:         base.Komi(),
		KoAmount:     base.KoAmount(),
		Suicide:      base.Name() == weiqi.NameNewZealand,
		AreaScoring:  base.Name() != weiqi.NameJapanese,
		FreeHandicap: c.FreeHandicap || base.Name() == weiqi.NameNewZealand,
	}
	if c.komiSet {
		custom.Komi = c.Komi
	}
	if c.KoAmount > 0 {
		custom.KoAmount = c.KoAmount
	}
	if c.Suicide != "" {
		custom.Suicide = strings.EqualFold(c.Suicide, SuicideAllow)
	}
	if c.Scoring != "" {
		custom.AreaScoring = strings.EqualFold(c.Scoring, ScoringArea)
	}
	return weiqi.NewCustom(custom), nil
}

// Logger builds a production logger at the configured level
func (c *Config) Logger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

// NewGame starts a game with the configured size, handicap and rules
func (c *Config) NewGame(opts ...weiqi.Option) (*weiqi.Game, error) {
	rules, err := c.Rules()
	if err != nil {
		return nil, err
	}
	return weiqi.NewGame(c.BoardSize, c.Handicap, rules, opts...)
}
