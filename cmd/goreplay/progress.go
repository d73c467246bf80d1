package main

import (
	"fmt"
	"io"
	"sort"
	"time"
)

// ProgressUpdate prints a real-time record of progress
type ProgressUpdate struct {
	w           io.Writer
	startTime   time.Time
	lastUpdate  time.Time
	lastCount   int
	description string
	counts      func() map[string]int
}

// NewProgressUpdate starts a progress update reading its counters from counts.
// The "games" counter drives the rate.
func NewProgressUpdate(w io.Writer, description string, counts func() map[string]int) *ProgressUpdate {
	return &ProgressUpdate{
		w:           w,
		startTime:   time.Now(),
		lastUpdate:  time.Now(),
		description: description,
		counts:      counts,
	}
}

// Update prints the counters if enough time has gone by
func (pu *ProgressUpdate) Update() {
	elapsed := time.Since(pu.lastUpdate).Seconds()
	if elapsed <= 0.5 {
		return
	}
	counts := pu.counts()
	pu.print(counts, float64(counts["games"]-pu.lastCount)/elapsed, "\t\r")
	pu.lastUpdate = time.Now()
	pu.lastCount = counts["games"]
}

// Close ends the progress line with the overall rate
func (pu *ProgressUpdate) Close() {
	counts := pu.counts()
	pu.print(counts, float64(counts["games"])/time.Since(pu.startTime).Seconds(), "\t\r\n")
}

func (pu *ProgressUpdate) print(counts map[string]int, rate float64, end string) {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		if k != "games" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	fmt.Fprintf(pu.w, "%s: %d games\t%.0f games/s", pu.description, counts["games"], rate)
	for _, k := range keys {
		fmt.Fprintf(pu.w, "\t%s: %d", k, counts[k])
	}
	fmt.Fprint(pu.w, end)
}
