package cli

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/agbru/coinsim/internal/orchestration"
	"github.com/agbru/coinsim/internal/store"
)

// OneShotChunk is the number of coins flipped per command in a one-shot
// run. Large runs are split so progress can be reported and cancellation
// is honored between chunks.
const OneShotChunk = 100_000

// Session is the part of orchestration.Session the command line drives.
type Session interface {
	ID() string
	Probability() float64
	BatchSize() int
	Snapshot() orchestration.Snapshot
	Execute(ctx context.Context, cmd orchestration.Command) (orchestration.Snapshot, error)
	History(ctx context.Context, limit int) ([]store.Command, error)
}

var _ Session = (*orchestration.Session)(nil)

// PartialRunError reports a chunked run that stopped after some chunks were
// committed.
type PartialRunError struct {
	Committed int
	Requested int
	Err       error
}

func (e *PartialRunError) Error() string {
	return fmt.Sprintf("stopped after %d of %d flips (kept in the tally): %v", e.Committed, e.Requested, e.Err)
}

func (e *PartialRunError) Unwrap() error { return e.Err }

// RunOneShot flips n coins on sess, reporting progress through reporter,
// and returns a snapshot whose Heads and Tails cover the whole run.
//
// Each chunk is its own command: when ctx ends mid-run the chunks already
// flipped stay in the tally (and in the store), and the returned
// *PartialRunError says how many.
func RunOneShot(ctx context.Context, sess Session, n int, reporter orchestration.ProgressReporter, out io.Writer) (orchestration.Snapshot, error) {
	if n <= OneShotChunk {
		return sess.Execute(ctx, orchestration.FlipN(n))
	}
	if reporter == nil {
		reporter = orchestration.NullProgressReporter{}
	}

	progressChan := make(chan orchestration.ProgressUpdate, orchestration.ProgressBufferMultiplier)
	var wg sync.WaitGroup
	wg.Add(1)
	go reporter.DisplayProgress(&wg, progressChan, 1, out)
	defer func() {
		close(progressChan)
		wg.Wait()
	}()

	var last orchestration.Snapshot
	var heads, tails uint64
	for done := 0; done < n; {
		chunk := min(OneShotChunk, n-done)
		snap, err := sess.Execute(ctx, orchestration.FlipN(chunk))
		if err != nil {
			if done == 0 {
				return orchestration.Snapshot{}, err
			}
			return orchestration.Snapshot{}, &PartialRunError{Committed: done, Requested: n, Err: err}
		}
		heads += snap.Heads
		tails += snap.Tails
		done += chunk
		last = snap

		update := orchestration.ProgressUpdate{Value: float64(done) / float64(n)}
		if done == n {
			progressChan <- update
			continue
		}
		select {
		case progressChan <- update:
		default:
		}
	}

	last.Heads, last.Tails = heads, tails
	last.Outcomes = nil
	return last, nil
}
