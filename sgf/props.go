package sgf

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/dodgebc/goban/weiqi"
)

// Pre-compile regular expressions for parsing
var reSquare, reRect, reResult, reRanks, reDate *regexp.Regexp

func init() {
	reSquare = regexp.MustCompile("^[0-9]{1,2}$")
	reRect = regexp.MustCompile("^[0-9]{1,2}:[0-9]{1,2}$")
	reResult = regexp.MustCompile("^([BW])\\+([0-9]*(?:\\.[0-9]*)?|R|Resign|T|Time|F|Forfeit)$") // Just "W+" is accomodated by the score expression
	reRanks = regexp.MustCompile("^[0-9]{1,2}[kdp]")                                             // Just check start to accomodate e.g. "9p, Kisei"
	reDate = regexp.MustCompile("^[0-9]{4}")                                                     // Just get the year at the start
}

// ErrParse means that a property was not able to be parsed
type ErrParse struct {
	Identifier string
	Value      string
}

func (e ErrParse) Error() string {
	return fmt.Sprintf("property parse error: %s[%s]", e.Identifier, e.Value)
}

// ParseSize parses board columns and rows. A single number is a square board.
func ParseSize(v string) (cols, rows int, err error) {
	switch {
	case reSquare.MatchString(v):
		size, _ := strconv.Atoi(v)
		if size >= 1 {
			return size, size, nil
		}
	case reRect.MatchString(v):
		dims := strings.Split(v, ":")
		cols, _ = strconv.Atoi(dims[0])
		rows, _ = strconv.Atoi(dims[1])
		if (cols >= 1) && (rows >= 1) {
			return cols, rows, nil
		}
	}
	return 0, 0, ErrParse{"SZ", v}
}

// ParseKomi parses komi
func ParseKomi(v string) (float64, error) {
	vFloat, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0.0, ErrParse{"KM", v}
	}
	weirdKomis := []float64{150, 250, 350, 450, 550, 650, 750} // Some games write, for example, 650 instead of 6.5
	for _, wk := range weirdKomis {
		if vFloat == wk {
			vFloat = wk / 100
		}
	}
	if math.IsNaN(vFloat) || math.IsInf(vFloat, 0) {
		return 0.0, ErrParse{"KM", v}
	}
	return vFloat, nil
}

// ParseHandicap parses handicap
func ParseHandicap(v string) (int, error) {
	vInt, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || vInt < 0 {
		return 0, ErrParse{"HA", v}
	}
	return vInt, nil
}

// ParseNumber parses a plain SGF number such as FF or GM
func ParseNumber(id, v string) (int, error) {
	vInt, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, ErrParse{id, v}
	}
	return vInt, nil
}

// Result ends
const (
	EndScored  = "Scored"
	EndResign  = "Resign"
	EndTime    = "Time"
	EndForfeit = "Forfeit"
	EndDraw    = "Draw"
)

// ParseResult parses result into winner, score, and how the game ended.
// A draw ("0" or "Draw") has winner Empty.
func ParseResult(v string) (weiqi.StoneColor, float64, string, error) {
	if v == "0" || v == "Draw" {
		return weiqi.Empty, 0, EndDraw, nil
	}
	findResult := reResult.FindStringSubmatch(v)
	if len(findResult) != 3 {
		return weiqi.Empty, 0.0, "", ErrParse{"RE", v}
	}
	winner := weiqi.Black
	if findResult[1] == "W" {
		winner = weiqi.White
	}
	switch findResult[2] {
	case "R", "Resign":
		return winner, 0.0, EndResign, nil
	case "T", "Time":
		return winner, 0.0, EndTime, nil
	case "F", "Forfeit":
		return winner, 0.0, EndForfeit, nil
	case "":
		return winner, 0.0, EndScored, nil
	}

	// Should be float now
	vFloat, err := strconv.ParseFloat(findResult[2], 64)
	if (err != nil) || (math.IsNaN(vFloat)) || (math.IsInf(vFloat, 0)) {
		return winner, 0.0, "", ErrParse{"RE", v}
	}
	return winner, vFloat, EndScored, nil
}

// ParseRank parses player rank, id is "BR" or "WR"
func ParseRank(id, v string) (string, error) {
	replacements := map[string]string{ // Specifically for foxwq
		"级": "k", "段": "d", "a": "p",
		"-": "", "零": "0", "一": "1", "二": "2", "三": "3", "四": "4", "五": "5", "六": "6", "七": "7", "八": "8", "九": "9",
	}
	for s1, s2 := range replacements {
		v = strings.Replace(v, s1, s2, -1)
	}
	if strings.Contains(v, "P") { // Noticed that some games have P7d to mean 7p
		v = strings.Replace(v, "P", "", -1)
		v = strings.Replace(v, "d", "p", -1)
	}
	leftMatch := reRanks.FindString(v)
	if leftMatch == "" {
		return "", ErrParse{id, v}
	}
	return leftMatch, nil
}

// ParseTime parses time limit in seconds
func ParseTime(v string) (int, error) {
	multiplier := 1
	if len(v) == 0 {
		return 0, nil
	}
	orig := v
	switch v[len(v)-1] {
	case 's':
		v = v[:len(v)-1]
	case 'm':
		multiplier = 60
		v = v[:len(v)-1]
	case 'h':
		multiplier = 3600
		v = v[:len(v)-1]
	}
	vInt, err := strconv.Atoi(v)
	if err != nil || vInt < 0 {
		return 0, ErrParse{"TM", orig}
	}
	return vInt * multiplier, nil
}

// ParseDate parses the year from game date
func ParseDate(v string) (int, error) {
	leftMatch := reDate.FindString(v)
	if leftMatch == "" {
		return 0, ErrParse{"DT", v}
	}
	yearInt, _ := strconv.Atoi(leftMatch)
	return yearInt, nil
}

// ParsePoint parses a point or move value for a board of the given size.
// An empty value, or "tt" on boards up to 19x19, is a pass.
func ParsePoint(id, v string, size int) (p weiqi.Position, pass bool, err error) {
	if v == "" || (v == "tt" && size <= 19) {
		return weiqi.Position{}, true, nil
	}
	p, err = weiqi.ParsePosition(v)
	if err != nil || p.X >= size || p.Y >= size {
		return weiqi.Position{}, false, ErrParse{id, v}
	}
	return p, false, nil
}

// ParsePointList parses a list of points, expanding compressed "aa:cc" rectangles
func ParsePointList(id string, values []string, size int) ([]weiqi.Position, error) {
	var points []weiqi.Position
	for _, v := range values {
		corners := strings.Split(v, ":")
		switch len(corners) {
		case 1:
			p, pass, err := ParsePoint(id, v, size)
			if err != nil || pass {
				return nil, ErrParse{id, v}
			}
			points = append(points, p)
		case 2:
			a, passA, errA := ParsePoint(id, corners[0], size)
			b, passB, errB := ParsePoint(id, corners[1], size)
			if errA != nil || errB != nil || passA || passB {
				return nil, ErrParse{id, v}
			}
			for y := min(a.Y, b.Y); y <= max(a.Y, b.Y); y++ {
				for x := min(a.X, b.X); x <= max(a.X, b.X); x++ {
					points = append(points, weiqi.Position{X: x, Y: y})
				}
			}
		default:
			return nil, ErrParse{id, v}
		}
	}
	return points, nil
}

// escapeText escapes a Text or SimpleText value
func escapeText(v string) string {
	v = strings.Replace(v, "\\", "\\\\", -1)
	return strings.Replace(v, "]", "\\]", -1)
}
