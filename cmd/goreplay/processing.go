package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/dodgebc/goban/archive"
	"github.com/dodgebc/goban/sgf"
	"github.com/dodgebc/goban/weiqi"
)

// replayer turns SGF files into records and sends them to the dataset and stores
type replayer struct {
	log     *zap.SugaredLogger
	engine  *zap.Logger // handed to every game
	checker *CheckManager
	writer  *archive.Writer
	stores  []archive.Store
	score   bool
}

// replay loads every game of f. Broken games are counted and skipped;
// only write and store errors are returned.
func (rp *replayer) replay(ctx context.Context, f sgfFile) error {
	root, err := sgf.NewGameTree(f.text)
	if err != nil {
		rp.checker.AddFailed(1)
		rp.log.Debugw("skipped file", "file", f.name, "error", err)
		return nil
	}
	for i, gt := range root.Children {
		g, err := sgf.LoadTree(gt, weiqi.WithLogger(rp.engine))
		if err != nil {
			rp.checker.AddFailed(1)
			rp.log.Debugw("skipped game", "file", f.name, "game", i, "error", err)
			continue
		}
		info, err := sgf.ReadInfo(gt.Nodes[0])
		if err != nil {
			rp.log.Debugw("ignored game info", "file", f.name, "game", i, "error", err)
		}
		if rp.score && g.State() == weiqi.StatePlaying && info.Result == "" {
			if _, err := g.ScoreGame(); err == nil {
				rp.checker.AddScored()
			}
		}

		r := archive.NewRecord(g, info, f.source)
		if err := rp.checker.Check(r); err != nil {
			rp.log.Debugw("skipped game", "file", f.name, "game", i, "reason", err)
			continue
		}
		if err := rp.writer.Write(r); err != nil {
			return err
		}
		for _, s := range rp.stores {
			if err := s.Put(ctx, r); err != nil {
				return err
			}
		}
		rp.checker.AddWritten()
	}
	return nil
}
