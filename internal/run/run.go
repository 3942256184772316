// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package run

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/catctl/catctl/internal/delta"
	"github.com/catctl/catctl/internal/fetch"
	"github.com/catctl/catctl/internal/ledger"
	"github.com/catctl/catctl/internal/log"
	"github.com/catctl/catctl/internal/report"
	"github.com/catctl/catctl/internal/snapshot"
)

// Recorder keeps the history of runs.
type Recorder interface {
	Record(ctx context.Context, e ledger.Entry) error
}

// Runner performs one fetch, snapshot and delta cycle.
type Runner struct {
	Source fetch.Source
	Store  snapshot.Store
	Writer report.Writer
	// Ledger is optional.
	Ledger Recorder
	// Clock defaults to a fresh MonotonicClock.
	Clock snapshot.Clock
}

// Result describes a completed run. It is returned alongside a report error
// since the snapshot is durable by then.
type Result struct {
	RunID    string
	Handle   snapshot.Handle
	Snapshot *snapshot.Snapshot
	// Previous is set unless FirstRun.
	Previous snapshot.Handle
	FirstRun bool
	Deltas   []delta.Delta
}

// Counts sums the deltas.
func (r *Result) Counts() delta.Counts {
	return delta.Total(r.Deltas)
}

// Run executes the cycle. Ingestion and write failures abort with nothing
// persisted. A report failure returns the Result and a *report.SerializationError.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	if r.Source == nil || r.Store == nil {
		return nil, errors.New("runner needs a source and a store")
	}
	clock := r.Clock
	if clock == nil {
		clock = snapshot.NewClock()
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to allocate run id: %w", err)
	}
	runID := id.String()
	log.Infof("run %s: fetching from %s", runID, r.Source)

	payload, err := r.Source.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch failed: %w", err)
	}

	pending, err := snapshot.Ingest(runID, payload.Raw, payload.Rows)
	if err != nil {
		return nil, fmt.Errorf("ingestion failed: %w", err)
	}

	h, snap, err := r.Store.WriteNext(ctx, pending, clock)
	if err != nil {
		return nil, fmt.Errorf("failed to write snapshot: %w", err)
	}
	log.Infof("run %s: wrote snapshot %s to %s", runID, h, r.Store)

	result := &Result{RunID: runID, Handle: h, Snapshot: snap}

	prev, ok, err := r.Store.Previous(ctx, h)
	if err != nil {
		return result, fmt.Errorf("failed to find previous snapshot: %w", err)
	}

	if !ok {
		result.FirstRun = true
		log.Infof("run %s: no previous snapshot, skipping delta", runID)
	} else {
		result.Previous = prev
		prevSnap, err := r.Store.Read(ctx, prev)
		if err != nil {
			return result, fmt.Errorf("failed to read previous snapshot %s: %w", prev, err)
		}
		result.Deltas = delta.ComputeAll(prevSnap, snap)
		for _, d := range result.Deltas {
			c := d.Counts()
			log.Debugf("run %s: %s added=%d removed=%d changed=%d", runID, d.Kind, c.Added, c.Removed, c.Changed)
		}
	}

	var reportErr error
	if r.Writer != nil {
		reportErr = r.Writer.Write(ctx, r.Store.Sink(h), snap, result.Deltas)
		if reportErr != nil {
			var se *report.SerializationError
			if !errors.As(reportErr, &se) {
				reportErr = &report.SerializationError{Err: reportErr}
			}
			log.WithError(reportErr).Errorf("run %s: report failed, snapshot %s kept", runID, h)
		}
	}

	r.record(ctx, result, reportErr)

	return result, reportErr
}

func (r *Runner) record(ctx context.Context, result *Result, reportErr error) {
	if r.Ledger == nil {
		return
	}

	c := result.Counts()
	e := ledger.Entry{
		RunID:   result.RunID,
		Stamp:   result.Handle.Name,
		Status:  ledger.StatusOK,
		Store:   r.Store.String(),
		Added:   c.Added,
		Removed: c.Removed,
		Changed: c.Changed,
	}
	if result.FirstRun {
		e.Status = ledger.StatusFirstRun
	} else {
		e.Previous = result.Previous.Name
	}
	if reportErr != nil {
		e.Status = ledger.StatusReportFailed
		e.Error = reportErr.Error()
	}

	if err := r.Ledger.Record(ctx, e); err != nil {
		log.WithError(err).Warnf("run %s: ledger not updated", result.RunID)
	}
}

// Compare reads a and b from store and returns the deltas going from a to b.
func Compare(ctx context.Context, store snapshot.Store, a, b snapshot.Handle) ([]delta.Delta, error) {
	prev, err := store.Read(ctx, a)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", a, err)
	}
	curr, err := store.Read(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", b, err)
	}
	return delta.ComputeAll(prev, curr), nil
}
