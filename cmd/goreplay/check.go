package main

import (
	"errors"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/dodgebc/goban/archive"
)

// CheckManager handles length checks, deduplication and the counters shown in progress
type CheckManager struct {

	// configuration
	MinLength   int
	Deduplicate bool

	// counters
	NumGames     int
	NumFailed    int
	NumDuplicate int
	NumShort     int
	NumScored    int
	NumWritten   int

	// hashing for duplicates
	hashTable map[uint64]bool
	mux       sync.Mutex
}

// NewCheckManager properly initializes a CheckManager
func NewCheckManager(minLength int, deduplicate bool) *CheckManager {
	checker := &CheckManager{
		MinLength:   minLength,
		Deduplicate: deduplicate,
	}
	if deduplicate {
		checker.hashTable = make(map[uint64]bool)
	}
	return checker
}

// Check evaluates a record and returns whether it should be included (nil means yes)
func (checker *CheckManager) Check(r archive.Record) error {
	checker.mux.Lock()
	defer checker.mux.Unlock()
	checker.NumGames++
	if len(r.Moves) < checker.MinLength {
		checker.NumShort++
		return errors.New("too short")
	}
	if checker.Deduplicate {
		sum := movesHash(r)
		if checker.hashTable[sum] {
			checker.NumDuplicate++
			return errors.New("duplicate")
		}
		checker.hashTable[sum] = true
	}
	return nil
}

// AddFailed records games that could not be replayed
func (checker *CheckManager) AddFailed(n int) {
	checker.mux.Lock()
	defer checker.mux.Unlock()
	checker.NumGames += n
	checker.NumFailed += n
}

// AddScored records a game scored by the engine
func (checker *CheckManager) AddScored() {
	checker.mux.Lock()
	defer checker.mux.Unlock()
	checker.NumScored++
}

// AddWritten records a game saved to the dataset
func (checker *CheckManager) AddWritten() {
	checker.mux.Lock()
	defer checker.mux.Unlock()
	checker.NumWritten++
}

// Counts returns a copy of the counters, for progress reports
func (checker *CheckManager) Counts() map[string]int {
	checker.mux.Lock()
	defer checker.mux.Unlock()
	counts := map[string]int{
		"games":   checker.NumGames,
		"failed":  checker.NumFailed,
		"written": checker.NumWritten,
		"scored":  checker.NumScored,
	}
	if checker.MinLength > 0 {
		counts["short"] = checker.NumShort
	}
	if checker.Deduplicate {
		counts["duplicate"] = checker.NumDuplicate
	}
	return counts
}

// movesHash hashes the board size, setup and move sequence
func movesHash(r archive.Record) uint64 {
	d := xxhash.New()
	d.WriteString(string(rune('a' + r.Size)))
	for _, s := range r.Setup {
		d.WriteString(s)
	}
	d.WriteString(";")
	for _, m := range r.Moves {
		d.WriteString(m)
	}
	return d.Sum64()
}
