package cli

import (
	"testing"

	"github.com/agbru/coinsim/internal/coin"
	"github.com/agbru/coinsim/internal/orchestration"
	"github.com/agbru/coinsim/internal/store"
)

// newTestSession returns a session backed by a memory store. p of 1 or 0
// makes every outcome predictable.
func newTestSession(t *testing.T, p float64) *orchestration.Session {
	t.Helper()
	sess, err := orchestration.NewSession(
		orchestration.WithID("cli-test"),
		orchestration.WithProbability(p),
		orchestration.WithBatchSize(10),
		orchestration.WithSource(coin.NewSeededSource(3)),
		orchestration.WithStore(store.NewMemoryStore()),
	)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return sess
}
