package convert

import (
	"context"
	"sync/atomic"

	"github.com/san-kum/asciimate/internal/anim"
	"github.com/san-kum/asciimate/internal/raster"
)

// Result is one converted frame. Grid is an owned copy.
type Result struct {
	Seq  uint64
	Grid anim.Grid
	Rows int
	Err  error
}

// Worker runs a Converter on its own goroutine with a single pending
// slot. Submissions made while a frame is queued or in flight are
// dropped and counted.
type Worker struct {
	conv    *Converter
	jobs    chan job
	results chan Result
	busy    atomic.Bool
	dropped atomic.Uint64
	seq     atomic.Uint64
}

type job struct {
	seq uint64
	r   raster.Raster
}

func NewWorker(conv *Converter) *Worker {
	return &Worker{
		conv:    conv,
		jobs:    make(chan job, 1),
		results: make(chan Result, 1),
	}
}

// Run processes submissions until ctx is done, then closes Results.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.results)
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-w.jobs:
			g, rows, err := w.conv.Convert(j.r)
			res := Result{Seq: j.seq, Rows: rows, Err: err}
			if err == nil {
				res.Grid = g.Clone()
			}
			select {
			case w.results <- res:
			case <-ctx.Done():
				w.busy.Store(false)
				return
			}
			w.busy.Store(false)
		}
	}
}

// Submit queues a raster for conversion. It returns false, and counts a
// drop, if the worker is already busy.
func (w *Worker) Submit(r raster.Raster) bool {
	if !w.busy.CompareAndSwap(false, true) {
		w.dropped.Add(1)
		return false
	}
	w.jobs <- job{seq: w.seq.Add(1), r: r}
	return true
}

func (w *Worker) Results() <-chan Result { return w.results }

// Pending reports whether a submitted raster has not been delivered yet.
func (w *Worker) Pending() bool { return w.busy.Load() }

func (w *Worker) Dropped() uint64 { return w.dropped.Load() }
