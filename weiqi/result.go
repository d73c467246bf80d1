package weiqi

import (
	"fmt"
	"strconv"
)

// PointType names one contribution to a color's score
type PointType int

const (
	PointHandicap PointType = iota
	PointKomi
	PointCapturedStones
	PointTerritory
	PointStonesOnBoard
)

var pointTypes = []PointType{PointHandicap, PointKomi, PointCapturedStones, PointTerritory, PointStonesOnBoard}

func (t PointType) String() string {
	switch t {
	case PointHandicap:
		return "handicap"
	case PointKomi:
		return "komi"
	case PointCapturedStones:
		return "captured stones"
	case PointTerritory:
		return "territory"
	case PointStonesOnBoard:
		return "stones on board"
	}
	return "PointType(" + strconv.Itoa(int(t)) + ")"
}

// GameResult holds per-color score contributions and the outcome
type GameResult struct {
	points       [2]map[PointType]float64
	Winner       StoneColor // Empty for a draw
	Resigned     bool
	Descriptions []string
}

func newGameResult() *GameResult {
	return &GameResult{points: [2]map[PointType]float64{{}, {}}}
}

// resignation is the result of color giving up
func resignation(color StoneColor) *GameResult {
	r := newGameResult()
	r.Winner = color.Opposite()
	r.Resigned = true
	r.Descriptions = append(r.Descriptions, fmt.Sprintf("%s resigned", color))
	return r
}

// Add credits v points of type t to color
func (r *GameResult) Add(color StoneColor, t PointType, v float64) {
	r.points[color.index()][t] += v
}

// Points returns one contribution of color
func (r *GameResult) Points(color StoneColor, t PointType) float64 {
	return r.points[color.index()][t]
}

// Score sums every contribution of color
func (r *GameResult) Score(color StoneColor) float64 {
	total := 0.0
	for _, v := range r.points[color.index()] {
		total += v
	}
	return total
}

// decide picks the higher total as winner and describes the totals
func (r *GameResult) decide() {
	black, white := r.Score(Black), r.Score(White)
	switch {
	case black > white:
		r.Winner = Black
	case white > black:
		r.Winner = White
	default:
		r.Winner = Empty
	}
	for _, c := range []StoneColor{Black, White} {
		desc := fmt.Sprintf("%s %.1f:", c, r.Score(c))
		for _, t := range pointTypes {
			if v, ok := r.points[c.index()][t]; ok && v != 0 {
				desc += fmt.Sprintf(" %s %.1f", t, v)
			}
		}
		r.Descriptions = append(r.Descriptions, desc)
	}
}

// Margin returns how many points the winner is ahead by
func (r *GameResult) Margin() float64 {
	d := r.Score(Black) - r.Score(White)
	if d < 0 {
		return -d
	}
	return d
}

// String formats the result as an SGF RE value: "B+R", "W+3.5" or "0" for a draw
func (r *GameResult) String() string {
	if r.Resigned {
		return r.Winner.String() + "+R"
	}
	if r.Winner == Empty {
		return "0"
	}
	return r.Winner.String() + "+" + strconv.FormatFloat(r.Margin(), 'f', -1, 64)
}
