// Package stats tracks pipeline throughput and outcome counts.
//
// The aggregator is an injected object rather than package state, so each
// pipeline instance (and each test) gets its own counters. Counters are
// atomic; the aggregator is the only state shared between partition workers.
package stats

import (
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Aggregator accumulates processing outcomes and emits a report every
// reportEvery successfully processed claims.
type Aggregator struct {
	logger      *zap.SugaredLogger
	reportEvery int64
	startTime   time.Time

	processed  atomic.Int64
	verified   atomic.Int64
	unverified atomic.Int64
	errors     atomic.Int64
}

// New creates an aggregator. reportEvery <= 0 disables periodic reports;
// a nil logger silences them.
func New(logger *zap.SugaredLogger, reportEvery int) *Aggregator {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Aggregator{
		logger:      logger,
		reportEvery: int64(reportEvery),
		startTime:   time.Now(),
	}
}

// RecordVerified counts one successfully processed, verified claim.
func (a *Aggregator) RecordVerified() {
	a.verified.Add(1)
	a.recordProcessed()
}

// RecordUnverified counts one successfully processed, unverified claim.
func (a *Aggregator) RecordUnverified() {
	a.unverified.Add(1)
	a.recordProcessed()
}

// RecordError counts a claim that failed processing (decode failure or
// permanent sink rejection). Errors are excluded from the processed count.
func (a *Aggregator) RecordError() {
	a.errors.Add(1)
}

func (a *Aggregator) recordProcessed() {
	n := a.processed.Add(1)
	if a.reportEvery > 0 && n%a.reportEvery == 0 {
		a.emit("consumer statistics")
	}
}

// ReportFinal emits one last report, used during graceful shutdown.
func (a *Aggregator) ReportFinal() {
	a.emit("final consumer statistics")
}

func (a *Aggregator) emit(msg string) {
	r := a.Report()
	a.logger.Infow(msg,
		"processed", r.Processed,
		"verified", fmt.Sprintf("%d (%.1f%%)", r.Verified, r.VerifiedPct),
		"unverified", fmt.Sprintf("%d (%.1f%%)", r.Unverified, r.UnverifiedPct),
		"errors", r.Errors,
		"runtime", r.Elapsed.Round(time.Second).String(),
		"rate", fmt.Sprintf("%.2f claims/sec", r.Rate),
	)
}

// Report is a point-in-time snapshot of the counters.
type Report struct {
	Processed     int64
	Verified      int64
	Unverified    int64
	Errors        int64
	VerifiedPct   float64
	UnverifiedPct float64
	Elapsed       time.Duration
	Rate          float64 // processed claims per second
}

// Report snapshots the counters. Percentages and the rate guard division by
// zero when nothing has been processed yet.
func (a *Aggregator) Report() Report {
	r := Report{
		Processed:  a.processed.Load(),
		Verified:   a.verified.Load(),
		Unverified: a.unverified.Load(),
		Errors:     a.errors.Load(),
		Elapsed:    time.Since(a.startTime),
	}
	if r.Processed > 0 {
		r.VerifiedPct = float64(r.Verified) / float64(r.Processed) * 100
		r.UnverifiedPct = float64(r.Unverified) / float64(r.Processed) * 100
	}
	if secs := r.Elapsed.Seconds(); secs > 0 {
		r.Rate = float64(r.Processed) / secs
	}
	return r
}
