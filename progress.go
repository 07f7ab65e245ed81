package extsort

import (
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Stats describes the work a Sorter has done so far.
type Stats struct {
	Added        int64 // items passed to Add
	Runs         int64 // runs handed to the background pipeline
	SpilledRuns  int64 // runs written to the temp file
	SpilledItems int64 // items written to the temp file
	Blocks       int64 // blocks written to the temp file
	RawBytes     int64 // serialized bytes before block compression
	StoredBytes  int64 // bytes in the temp file
	Merged       int64 // items delivered by the merge phase
}

// progress counts pipeline work. Counters are updated by the pipeline
// goroutines and read by the caller, so all fields are atomic.
type progress struct {
	log      *zap.Logger
	interval time.Duration
	lastLog  atomic.Int64

	runs         atomic.Int64
	spilledRuns  atomic.Int64
	spilledItems atomic.Int64
	blocks       atomic.Int64
	rawBytes     atomic.Int64
	storedBytes  atomic.Int64
	merged       atomic.Int64
}

func newProgress(log *zap.Logger, interval time.Duration) *progress {
	p := &progress{log: log, interval: interval}
	p.lastLog.Store(time.Now().UnixNano())
	return p
}

// tick writes a progress line if the last one is at least interval old.
func (p *progress) tick(stage string) {
	now := time.Now().UnixNano()
	last := p.lastLog.Load()
	if time.Duration(now-last) < p.interval || !p.lastLog.CompareAndSwap(last, now) {
		return
	}
	p.log.Info("sort progress",
		zap.String("stage", stage),
		zap.Int64("runs", p.runs.Load()),
		zap.Int64("spilledRuns", p.spilledRuns.Load()),
		zap.Int64("spilledItems", p.spilledItems.Load()),
		zap.Int64("storedBytes", p.storedBytes.Load()),
		zap.Int64("merged", p.merged.Load()),
	)
}

func (p *progress) stats() Stats {
	return Stats{
		Runs:         p.runs.Load(),
		SpilledRuns:  p.spilledRuns.Load(),
		SpilledItems: p.spilledItems.Load(),
		Blocks:       p.blocks.Load(),
		RawBytes:     p.rawBytes.Load(),
		StoredBytes:  p.storedBytes.Load(),
		Merged:       p.merged.Load(),
	}
}
