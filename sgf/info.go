package sgf

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/dodgebc/goban/weiqi"
)

// ErrAlreadyExists means that a property was already recorded for the game
var ErrAlreadyExists = errors.New("property already exists")

// Info stores the descriptive root properties the engine does not model
type Info struct {
	BlackPlayer string
	WhitePlayer string
	BlackRank   string // [0-9]{1,2}[kdp]
	WhiteRank   string // [0-9]{1,2}[kdp]
	Year        int
	Date        string
	Time        int // seconds
	Overtime    string
	Rules       string
	Event       string

	// Result is the raw RE value. Winner is Empty without a result or for a draw,
	// End is one of the End constants.
	Result string
	Winner weiqi.StoneColor
	Score  float64
	End    string
}

var infoProperties = []string{"PB", "PW", "BR", "WR", "DT", "TM", "OT", "RU", "EV", "RE"}

// ReadInfo collects the game information from a root node. Malformed
// descriptive values are skipped; only a malformed RE is reported.
func ReadInfo(root Node) (Info, error) {
	var info Info
	for _, id := range infoProperties {
		values := root[id]
		if len(values) == 0 {
			continue
		}
		if len(values) > 1 {
			return info, errors.Wrap(ErrAlreadyExists, fmt.Sprintf("%s has %d values", id, len(values)))
		}
		if err := info.addProperty(id, values[0]); err != nil {
			if id == "RE" {
				return info, err
			}
		}
	}
	return info, nil
}

func (info *Info) addProperty(id, value string) error {
	switch id {
	case "PB":
		info.BlackPlayer = value
	case "PW":
		info.WhitePlayer = value
	case "BR", "WR":
		rank, err := ParseRank(id, value)
		if err != nil {
			return err
		}
		if id == "BR" {
			info.BlackRank = rank
		} else {
			info.WhiteRank = rank
		}
	case "DT":
		info.Date = value
		year, err := ParseDate(value)
		if err != nil {
			return err
		}
		info.Year = year
	case "TM":
		t, err := ParseTime(value)
		if err != nil {
			return err
		}
		info.Time = t
	case "OT":
		info.Overtime = value
	case "RU":
		info.Rules = value
	case "EV":
		info.Event = value
	case "RE":
		winner, score, end, err := ParseResult(value)
		if err != nil {
			return err
		}
		info.Result = value
		info.Winner, info.Score, info.End = winner, score, end
	}
	return nil
}

// write adds the non-empty fields as root properties
func (info Info) write(props map[string]string) {
	set := func(id, v string) {
		if v != "" {
			props[id] = v
		}
	}
	set("PB", info.BlackPlayer)
	set("PW", info.WhitePlayer)
	set("BR", info.BlackRank)
	set("WR", info.WhiteRank)
	set("DT", info.Date)
	set("OT", info.Overtime)
	set("EV", info.Event)
	set("RE", info.Result)
	if info.Time > 0 {
		props["TM"] = fmt.Sprint(info.Time)
	}
}
