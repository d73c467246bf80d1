// goreplay replays SGF games through the rules engine and writes them to a .jsonl.gz dataset
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dodgebc/goban/archive"
	"github.com/dodgebc/goban/config"
)

func main() {
	var args arguments
	args.parse()
	if err := args.check(); err != nil {
		NewLogger(false).Fatal(err)
	}

	cfg, err := config.Setup(args.configFile)
	if err != nil {
		NewLogger(false).Fatalw("Failed to setup configuration", "error", err)
	}
	if args.workers > 0 {
		cfg.Workers = args.workers
	}
	engine, err := cfg.Logger()
	if err != nil || args.verbose {
		engine = NewLogger(true).Desugar()
	}
	logger := engine.Sugar()
	defer logger.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Open .jsonl.gz output file stream
	fout, err := os.Create(args.outFile)
	if err != nil {
		logger.Fatalw("Failed to create output file", "error", err)
	}
	defer fout.Close()
	writer := archive.NewWriter(fout, cfg.Workers)

	stores := initStores(ctx, logger, cfg, args)
	defer func() {
		for _, s := range stores {
			s.Close(context.Background())
		}
	}()

	checker := NewCheckManager(args.minLength, args.deduplicate)
	rp := &replayer{
		log:     logger,
		engine:  engine,
		checker: checker,
		writer:  writer,
		stores:  stores,
		score:   args.score,
	}

	// Single loader, many replayers
	eg, ctx := errgroup.WithContext(ctx)
	files := make(chan sgfFile)
	eg.Go(func() error {
		defer close(files)
		return loader(ctx, args.inputs, args.source, files)
	})
	for i := 0; i < cfg.Workers; i++ {
		eg.Go(func() error {
			for f := range files {
				if err := rp.replay(ctx, f); err != nil {
					return err
				}
			}
			return nil
		})
	}

	progress := NewProgressUpdate(os.Stderr, "goreplay", checker.Counts)
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(500 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				progress.Update()
			case <-done:
				return
			}
		}
	}()

	err = eg.Wait()
	close(done)
	progress.Close()
	if cerr := writer.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		logger.Fatalw("Replay failed", "error", err)
	}
	logger.Infow("Replay finished", "written", writer.Count(), "counts", checker.Counts())
}

// NewLogger builds a production logger, or a development one logging at debug level
func NewLogger(development bool) *zap.SugaredLogger {
	build := zap.NewProduction
	if development {
		build = zap.NewDevelopment
	}
	logger, err := build()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	return logger.Sugar()
}

func initStores(ctx context.Context, logger *zap.SugaredLogger, cfg *config.Config, args arguments) []archive.Store {
	var stores []archive.Store
	if args.redis {
		s, err := archive.NewRedisStore(ctx, cfg.RedisURL, "goban")
		if err != nil {
			logger.Fatalw("Failed to connect to redis", "addr", cfg.RedisURL, "error", err)
		}
		logger.Infow("Connected to redis", "addr", cfg.RedisURL)
		stores = append(stores, s)
	}
	if args.mongo {
		s, err := archive.NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			logger.Fatalw("Failed to connect to mongodb", "error", err)
		}
		logger.Infow("Connected to mongodb", "database", cfg.MongoDatabase)
		stores = append(stores, s)
	}
	return stores
}
