/*
Package archive turns replayed games into flat records and moves them in bulk:
gzipped JSON lines datasets on disk, and Redis or MongoDB stores.*/
package archive

import (
	"strings"

	"github.com/google/uuid"

	"github.com/dodgebc/goban/sgf"
	"github.com/dodgebc/goban/weiqi"
)

// Record stores the important data of one replayed game
type Record struct {
	ID          string   `json:"id" bson:"_id"`
	Source      string   `json:"source,omitempty" bson:"source,omitempty"`
	Size        int      `json:"size" bson:"size"`
	Rules       string   `json:"rules" bson:"rules"`
	Komi        float64  `json:"komi" bson:"komi"`
	Handicap    int      `json:"handicap" bson:"handicap"`
	Winner      string   `json:"winner" bson:"winner"`   // "B", "W", or "" (no result or draw)
	Score       float64  `json:"score" bson:"score"`     // margin of a scored game
	Special     string   `json:"special" bson:"special"` // "" (scored), "Resign", "Time", "Forfeit", "Draw" or "None"
	Result      string   `json:"result" bson:"result"`   // RE notation
	BlackRank   string   `json:"black_rank,omitempty" bson:"black_rank,omitempty"`
	WhiteRank   string   `json:"white_rank,omitempty" bson:"white_rank,omitempty"`
	BlackPlayer string   `json:"black_player,omitempty" bson:"black_player,omitempty"`
	WhitePlayer string   `json:"white_player,omitempty" bson:"white_player,omitempty"`
	Date        string   `json:"date,omitempty" bson:"date,omitempty"`
	Moves       []string `json:"moves" bson:"moves"` // ([BW][a-z]{2})?
	Setup       []string `json:"setup" bson:"setup"` // handicap and setup stones, [BWE][a-z]{2}
	Captures    [2]int   `json:"captures" bson:"captures"`
	SGF         string   `json:"sgf,omitempty" bson:"sgf,omitempty"`
}

// NewRecord flattens the applied history of g. The game result wins over the
// one in info; a game still being played keeps info's result, or "None".
func NewRecord(g *weiqi.Game, info sgf.Info, source string) Record {
	r := Record{
		ID:          uuid.New().String(),
		Source:      source,
		Size:        g.Size(),
		Rules:       weiqi.RulesLabel(g.Rules()),
		Komi:        g.Komi(),
		Handicap:    g.Handicap(),
		BlackRank:   info.BlackRank,
		WhiteRank:   info.WhiteRank,
		BlackPlayer: info.BlackPlayer,
		WhitePlayer: info.WhitePlayer,
		Date:        info.Date,
		Moves:       []string{},
		Setup:       []string{},
		Captures:    [2]int{g.Captures(weiqi.Black), g.Captures(weiqi.White)},
		SGF:         sgf.Serialize(g, info),
	}

	h := g.History()
	h.Walk(func(i int, n *weiqi.Node) bool {
		if i > h.Cursor() {
			return false
		}
		switch n.Token() {
		case weiqi.TokenMove:
			r.Moves = append(r.Moves, weiqi.Move{Color: n.Color(), Position: n.Position()}.String())
		case weiqi.TokenPass:
			r.Moves = append(r.Moves, weiqi.NewMovePass(n.Color()).String())
		case weiqi.TokenHandicap, weiqi.TokenSetup:
			c := "E"
			if n.Color() != weiqi.Empty {
				c = n.Color().String()
			}
			r.Setup = append(r.Setup, c+n.Position().String())
		}
		return true
	})

	switch res := g.Result(); {
	case res != nil:
		r.Result = res.String()
		if res.Winner != weiqi.Empty {
			r.Winner = res.Winner.String()
		}
		switch {
		case res.Resigned:
			r.Special = sgf.EndResign
		case res.Winner == weiqi.Empty:
			r.Special = sgf.EndDraw
		default:
			r.Score = res.Margin()
		}
	case info.Result != "":
		r.Result = info.Result
		if info.Winner != weiqi.Empty {
			r.Winner = info.Winner.String()
		}
		r.Score = info.Score
		if info.End != sgf.EndScored {
			r.Special = info.End
		}
	default:
		r.Special = "None"
	}
	return r
}

// Game replays the record's SGF text
func (r Record) Game(opts ...weiqi.Option) (*weiqi.Game, error) {
	return sgf.Load(r.SGF, opts...)
}

// Key returns the storage key of the record under prefix
func (r Record) Key(prefix string) string {
	return strings.TrimSuffix(prefix, ":") + ":game:" + r.ID
}
