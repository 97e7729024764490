package orchestration

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/golang/mock/gomock"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/agbru/coinsim/internal/coin"
	"github.com/agbru/coinsim/internal/orchestration/mocks"
	"github.com/agbru/coinsim/internal/store"
)

func constSource(u float64) coin.Source {
	return coin.SourceFunc(func() float64 { return u })
}

func newTestSession(t *testing.T, opts ...SessionOption) *Session {
	t.Helper()
	s, err := NewSession(append([]SessionOption{WithID("test")}, opts...)...)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return s
}

func TestSession_Commands(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		draw      float64
		cmds      []Command
		wantHeads uint64
		wantTails uint64
		wantLast  coin.Outcome
	}{
		{"flip once heads", 0.3, []Command{FlipOnce()}, 1, 0, coin.Heads},
		{"batch of tails", 0.5, []Command{FlipBatch()}, 0, 100, coin.Tails},
		{"flip n", 0.1, []Command{FlipN(7)}, 7, 0, coin.Heads},
		{"flip zero is a no-op", 0.1, []Command{FlipN(0)}, 0, 0, coin.Tails},
		{"reset after flips", 0.1, []Command{FlipN(50), Reset()}, 0, 0, coin.Tails},
		{"reset twice", 0.1, []Command{FlipN(3), Reset(), Reset()}, 0, 0, coin.Tails},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := newTestSession(t, WithSource(constSource(tt.draw)))
			var snap Snapshot
			var err error
			for _, cmd := range tt.cmds {
				if snap, err = s.Execute(context.Background(), cmd); err != nil {
					t.Fatalf("Execute(%s): %v", cmd.Name(), err)
				}
			}
			st := snap.State
			if st.HeadsCount != tt.wantHeads || st.TailsCount != tt.wantTails || st.LastOutcome != tt.wantLast {
				t.Errorf("state = %+v, want (%d, %d, %v)", st, tt.wantHeads, tt.wantTails, tt.wantLast)
			}
			if snap.Summary.Total != tt.wantHeads+tt.wantTails {
				t.Errorf("summary total = %d", snap.Summary.Total)
			}
		})
	}
}

func TestSession_SnapshotOutcomes(t *testing.T) {
	t.Parallel()
	s := newTestSession(t, WithSource(constSource(0.2)))

	snap, err := s.Execute(context.Background(), FlipN(3))
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Outcomes) != 3 || snap.Heads != 3 || snap.Tails != 0 || snap.Command != "flip_n" {
		t.Errorf("unexpected snapshot %+v", snap)
	}

	snap, err = s.Execute(context.Background(), FlipN(MaxSnapshotOutcomes+1))
	if err != nil {
		t.Fatal(err)
	}
	if snap.Outcomes != nil {
		t.Errorf("large commands should not keep outcomes, got %d", len(snap.Outcomes))
	}
	if snap.Flipped() != MaxSnapshotOutcomes+1 {
		t.Errorf("Flipped() = %d", snap.Flipped())
	}
	if snap.State.TotalFlips() != MaxSnapshotOutcomes+4 {
		t.Errorf("total = %d", snap.State.TotalFlips())
	}
}

func TestSession_InvalidFlipLeavesStateUntouched(t *testing.T) {
	t.Parallel()
	s := newTestSession(t, WithSource(constSource(0.2)))
	if _, err := s.Execute(context.Background(), FlipN(4)); err != nil {
		t.Fatal(err)
	}

	_, err := s.Execute(context.Background(), FlipN(-1))
	if !errors.Is(err, coin.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if got := s.Snapshot().State; got.HeadsCount != 4 {
		t.Errorf("state changed after failed command: %+v", got)
	}
}

func TestSession_CanceledContext(t *testing.T) {
	t.Parallel()
	s := newTestSession(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.Execute(ctx, FlipOnce()); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if st := s.Snapshot().State; st.TotalFlips() != 0 {
		t.Error("canceled command must not flip")
	}
}

func TestNewSession_Validation(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		opts []SessionOption
	}{
		{"probability too high", []SessionOption{WithProbability(1.2)}},
		{"zero batch", []SessionOption{WithBatchSize(0)}},
		{"bad id", []SessionOption{WithID("no spaces allowed")}},
	}
	for _, tt := range tests {
		if _, err := NewSession(tt.opts...); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}

	s, err := NewSession()
	if err != nil {
		t.Fatal(err)
	}
	if !store.ValidSessionID(s.ID()) || s.BatchSize() != DefaultBatchSize || s.Probability() != coin.FairProbability {
		t.Errorf("unexpected defaults: id=%q batch=%d p=%v", s.ID(), s.BatchSize(), s.Probability())
	}
}

func TestSession_PersistsThroughStore(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	st := mocks.NewMockStateStore(ctrl)
	obs := mocks.NewMockObserver(ctrl)

	gomock.InOrder(
		st.EXPECT().Save(gomock.Any(), "test", &coin.State{HeadsCount: 1, LastOutcome: coin.Heads}).Return(nil),
		obs.EXPECT().ObserveCommand("flip", uint64(1), uint64(0)),
		st.EXPECT().Save(gomock.Any(), "test", coin.NewState()).Return(nil),
		obs.EXPECT().ObserveCommand("reset", uint64(0), uint64(0)),
	)

	s := newTestSession(t, WithSource(constSource(0.3)), WithStore(st), WithObserver(obs))
	if _, err := s.Execute(context.Background(), FlipOnce()); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Execute(context.Background(), Reset()); err != nil {
		t.Fatal(err)
	}
}

func TestSession_SaveFailureIsAtomic(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	st := mocks.NewMockStateStore(ctrl)
	obs := mocks.NewMockObserver(ctrl)
	boom := errors.New("disk full")

	st.EXPECT().Save(gomock.Any(), "test", gomock.Any()).Return(boom)
	obs.EXPECT().ObserveCommand(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	s := newTestSession(t, WithSource(constSource(0.3)), WithStore(st), WithObserver(obs))
	_, err := s.Execute(context.Background(), FlipBatch())
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
	if st := s.Snapshot().State; st.TotalFlips() != 0 {
		t.Error("failed save must not change the tally")
	}
}

func TestOpenSession(t *testing.T) {
	t.Parallel()

	t.Run("resumes stored tally", func(t *testing.T) {
		t.Parallel()
		ctrl := gomock.NewController(t)
		st := mocks.NewMockStateStore(ctrl)
		st.EXPECT().Load(gomock.Any(), "alpha").Return(&coin.State{HeadsCount: 3, TailsCount: 7}, nil)

		s, err := OpenSession(context.Background(), WithID("alpha"), WithStore(st))
		if err != nil {
			t.Fatal(err)
		}
		if got := s.Snapshot().Summary; got.PHeads != 0.3 || got.PTails != 0.7 {
			t.Errorf("proportions = (%v, %v)", got.PHeads, got.PTails)
		}
	})

	t.Run("unknown id starts fresh", func(t *testing.T) {
		t.Parallel()
		ctrl := gomock.NewController(t)
		st := mocks.NewMockStateStore(ctrl)
		st.EXPECT().Load(gomock.Any(), "beta").Return(nil, store.ErrNotFound)

		s, err := OpenSession(context.Background(), WithID("beta"), WithStore(st))
		if err != nil {
			t.Fatal(err)
		}
		if st := s.Snapshot().State; st.TotalFlips() != 0 {
			t.Error("expected empty tally")
		}
	})

	t.Run("load failure", func(t *testing.T) {
		t.Parallel()
		ctrl := gomock.NewController(t)
		st := mocks.NewMockStateStore(ctrl)
		st.EXPECT().Load(gomock.Any(), "gamma").Return(nil, errors.New("locked"))

		if _, err := OpenSession(context.Background(), WithID("gamma"), WithStore(st)); err == nil {
			t.Error("expected error")
		}
	})
}

func TestSession_HistoryAndDelete(t *testing.T) {
	t.Parallel()
	mem := store.NewMemoryStore()
	s := newTestSession(t, WithSource(constSource(0.9)), WithStore(mem))
	ctx := context.Background()

	for _, cmd := range []Command{FlipOnce(), FlipBatch(), Reset()} {
		if _, err := s.Execute(ctx, cmd); err != nil {
			t.Fatal(err)
		}
	}
	history, err := s.History(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 3 || history[0].Name != "reset" || history[1].Tails != 100 {
		t.Errorf("unexpected history %+v", history)
	}

	if err := s.Delete(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := mem.Load(ctx, "test"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected deleted session, got %v", err)
	}
	if _, err := s.Execute(ctx, FlipOnce()); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Execute after Delete = %v, want ErrNotFound", err)
	}
	if _, err := mem.Load(ctx, "test"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("deleted session was saved again: %v", err)
	}

	noStore := newTestSession(t)
	if h, err := noStore.History(ctx, 10); h != nil || err != nil {
		t.Errorf("History without store = %v, %v", h, err)
	}
}

func TestSession_ConcurrentExecute(t *testing.T) {
	t.Parallel()
	s := newTestSession(t, WithSource(coin.NewSeededSource(1)))
	// The seeded source is not safe for concurrent use; the session lock
	// is what keeps this race-free.
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 25 {
				if _, err := s.Execute(context.Background(), FlipN(4)); err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}
	wg.Wait()
	if st := s.Snapshot().State; st.TotalFlips() != 8*25*4 {
		t.Errorf("total = %d, want %d", st.TotalFlips(), 8*25*4)
	}
}

func TestSession_SeededReproducible(t *testing.T) {
	t.Parallel()
	run := func() coin.State {
		s := newTestSession(t, WithSource(coin.NewSeededSource(99)))
		snap, err := s.Execute(context.Background(), FlipN(500))
		if err != nil {
			t.Fatal(err)
		}
		return snap.State
	}
	if a, b := run(), run(); a != b {
		t.Errorf("seeded sessions diverged: %+v vs %+v", a, b)
	}
}

func TestCommand_Name(t *testing.T) {
	t.Parallel()
	names := map[string]Command{
		"flip":   FlipOnce(),
		"batch":  FlipBatch(),
		"flip_n": FlipN(3),
		"reset":  Reset(),
	}
	for want, cmd := range names {
		if got := cmd.Name(); got != want {
			t.Errorf("Name() = %q, want %q", got, want)
		}
	}
	if got := (Command{Kind: 42}).Name(); got != "unknown(42)" {
		t.Errorf("unknown kind name = %q", got)
	}
	if _, err := newTestSession(t).Execute(context.Background(), Command{Kind: 42}); err == nil {
		t.Error("unknown command should fail")
	}
}

func TestObserverFunc(t *testing.T) {
	t.Parallel()
	var got string
	var h, tl uint64
	s := newTestSession(t, WithSource(constSource(0.99)), WithObserver(ObserverFunc(func(name string, heads, tails uint64) {
		got, h, tl = name, heads, tails
	})))
	if _, err := s.Execute(context.Background(), FlipN(5)); err != nil {
		t.Fatal(err)
	}
	if got != "flip_n" || h != 0 || tl != 5 {
		t.Errorf("observer saw (%q, %d, %d)", got, h, tl)
	}
}

func TestSession_Tracing(t *testing.T) {
	t.Parallel()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	s := newTestSession(t, WithSource(constSource(0.2)), WithTracer(tp.Tracer("session-test")))
	ctx := context.Background()

	if _, err := s.Execute(ctx, FlipN(3)); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Execute(ctx, FlipN(-1)); err == nil {
		t.Fatal("expected error for negative count")
	}

	spans := recorder.Ended()
	if len(spans) != 2 {
		t.Fatalf("recorded %d spans, want 2", len(spans))
	}

	ok := spans[0]
	if ok.Name() != "coinsim.session.flip_n" {
		t.Errorf("span name = %q", ok.Name())
	}
	attrs := map[attribute.Key]attribute.Value{}
	for _, kv := range ok.Attributes() {
		attrs[kv.Key] = kv.Value
	}
	want := map[attribute.Key]int64{"coinsim.n": 3, "coinsim.heads": 3, "coinsim.tails": 0}
	for k, v := range want {
		if got, found := attrs[k]; !found || got.AsInt64() != v {
			t.Errorf("attribute %s = %v, want %d", k, got.Emit(), v)
		}
	}
	if attrs["coinsim.session_id"].AsString() != "test" {
		t.Errorf("session id attribute = %q", attrs["coinsim.session_id"].AsString())
	}
	if ok.Status().Code == codes.Error {
		t.Error("successful command marked as error")
	}

	failed := spans[1]
	if failed.Status().Code != codes.Error {
		t.Errorf("failed command status = %v, want Error", failed.Status().Code)
	}
	if len(failed.Events()) == 0 {
		t.Error("failed command should record the error event")
	}
}
