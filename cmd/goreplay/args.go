package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
)

type arguments struct {
	outFile     string
	configFile  string
	source      string
	inputs      []string
	workers     int
	minLength   int
	deduplicate bool
	score       bool
	redis       bool
	mongo       bool
	force       bool
	verbose     bool
}

func (a *arguments) parse() {

	// Assign variables
	flag.StringVar(&a.outFile, "out", "", "output filepath for .jsonl.gz dataset")
	flag.StringVar(&a.configFile, "config", "", "config file (yaml, json or toml), GOBAN_* environment variables override it")
	flag.StringVar(&a.source, "source", "", "source name stored with every record, otherwise use the input name")
	flag.IntVar(&a.workers, "workers", 0, "number of concurrent replay workers, overrides the config")
	flag.IntVar(&a.minLength, "minlength", 0, "discard games with fewer than this many moves")
	flag.BoolVar(&a.deduplicate, "deduplicate", false, "discard games with duplicate move sequences")
	flag.BoolVar(&a.score, "score", false, "score games that have no result, counting every stone as alive")
	flag.BoolVar(&a.redis, "redis", false, "also store records in redis (redis_url)")
	flag.BoolVar(&a.mongo, "mongo", false, "also store records in mongodb (mongo_uri)")
	flag.BoolVar(&a.force, "force", false, "overwrite the output file without asking")
	flag.BoolVar(&a.verbose, "verbose", false, "log every skipped game")

	// Usage and parse
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: goreplay [options] -out outfile [input1 input2 ... inputN]\n\n")
		fmt.Fprintf(flag.CommandLine.Output(), "Inputs are .sgf files, directories searched for .sgf files, or .tgz archives.\n\n")
		fmt.Fprintf(flag.CommandLine.Output(), "Options:\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	a.inputs = flag.Args()
}

func (a *arguments) check() error {
	if a.workers < 0 {
		return errors.New("workers must be at least 1")
	}
	if a.minLength < 0 {
		return errors.New("minlength must not be negative")
	}
	if len(a.inputs) == 0 {
		return errors.New("no inputs provided")
	}
	if a.outFile == "" {
		return errors.New("no output file provided")
	}
	if _, err := os.Stat(a.outFile); !a.force && ((err == nil) || os.IsExist(err)) {
		fmt.Print("output file already exists, overwrite? (y/n) ")
		r := bufio.NewReader(os.Stdin)
		overwrite, _ := r.ReadString('\n')
		if strings.TrimSpace(overwrite) != "y" {
			return errors.New("did not overwrite file")
		}
	}
	return nil
}
