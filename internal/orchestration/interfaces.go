package orchestration

//go:generate mockgen -destination=mocks/mock_interfaces.go -package=mocks github.com/agbru/coinsim/internal/orchestration StateStore,Observer

import (
	"context"
	"io"
	"sync"

	"github.com/agbru/coinsim/internal/coin"
	"github.com/agbru/coinsim/internal/store"
)

// StateStore persists the tally of a session. Load returns store.ErrNotFound
// for unknown ids.
type StateStore interface {
	Load(ctx context.Context, id string) (*coin.State, error)
	Save(ctx context.Context, id string, state *coin.State) error
	Delete(ctx context.Context, id string) error
}

// CommandLogger is implemented by stores that keep a command history.
type CommandLogger interface {
	LogCommand(ctx context.Context, rec store.Command) error
}

// HistoryReader is implemented by stores that can return the history.
type HistoryReader interface {
	History(ctx context.Context, id string, limit int) ([]store.Command, error)
}

// Observer is notified after every successful command with the number of
// heads and tails it produced.
type Observer interface {
	ObserveCommand(name string, heads, tails uint64)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(name string, heads, tails uint64)

// ObserveCommand calls f.
func (f ObserverFunc) ObserveCommand(name string, heads, tails uint64) { f(name, heads, tails) }

// ProgressUpdate reports how far one experiment worker has come.
type ProgressUpdate struct {
	// WorkerIndex identifies the worker in [0, workers).
	WorkerIndex int
	// Value is the fraction of the worker's runs completed, in [0, 1].
	Value float64
}

// ProgressReporter displays experiment progress. DisplayProgress runs in
// its own goroutine until progressChan is closed and then calls wg.Done.
type ProgressReporter interface {
	DisplayProgress(wg *sync.WaitGroup, progressChan <-chan ProgressUpdate, numWorkers int, out io.Writer)
}

// ProgressReporterFunc is a function adapter that implements ProgressReporter.
type ProgressReporterFunc func(wg *sync.WaitGroup, progressChan <-chan ProgressUpdate, numWorkers int, out io.Writer)

// DisplayProgress calls the underlying function.
func (f ProgressReporterFunc) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan ProgressUpdate, numWorkers int, out io.Writer) {
	f(wg, progressChan, numWorkers, out)
}

// NullProgressReporter drains the progress channel without displaying
// anything. Used in quiet mode and in tests.
type NullProgressReporter struct{}

// DisplayProgress drains the channel without output.
func (NullProgressReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan ProgressUpdate, _ int, _ io.Writer) {
	defer wg.Done()
	for range progressChan {
	}
}
