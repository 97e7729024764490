package orchestration

import (
	"context"
	"errors"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/agbru/coinsim/internal/coin"
	apperrors "github.com/agbru/coinsim/internal/errors"
	"github.com/agbru/coinsim/internal/logging"
	"github.com/agbru/coinsim/internal/stats"
	"github.com/agbru/coinsim/internal/store"
)

// DefaultBatchSize is the number of flips of a FlipBatch command.
const DefaultBatchSize = 100

// cancelCheckInterval is how many draws run between context checks.
const cancelCheckInterval = 1 << 16

const tracerName = "github.com/agbru/coinsim/internal/orchestration"

// Session owns one tally and applies commands to it. Commands on the same
// Session are serialized; a Session is safe for concurrent use.
type Session struct {
	mu         sync.Mutex
	id         string
	state      *coin.State
	gen        *coin.Generator
	p          float64
	batch      int
	confidence float64
	store      StateStore
	observer   Observer
	logger     logging.Logger
	tracer     trace.Tracer
	deleted    bool
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithID sets the session id. Without it a random UUID is used.
func WithID(id string) SessionOption { return func(s *Session) { s.id = id } }

// WithSource sets the randomness source of the generator.
func WithSource(src coin.Source) SessionOption {
	return func(s *Session) { s.gen = coin.NewGenerator(src) }
}

// WithProbability sets the heads probability.
func WithProbability(p float64) SessionOption { return func(s *Session) { s.p = p } }

// WithBatchSize sets the size of FlipBatch.
func WithBatchSize(n int) SessionOption { return func(s *Session) { s.batch = n } }

// WithConfidence sets the confidence level used in summaries.
func WithConfidence(c float64) SessionOption { return func(s *Session) { s.confidence = c } }

// WithStore persists the tally after every command.
func WithStore(st StateStore) SessionOption { return func(s *Session) { s.store = st } }

// WithObserver registers an observer notified after every command.
func WithObserver(o Observer) SessionOption { return func(s *Session) { s.observer = o } }

// WithLogger sets the session logger.
func WithLogger(l logging.Logger) SessionOption { return func(s *Session) { s.logger = l } }

// WithTracer overrides the tracer taken from the global provider.
func WithTracer(t trace.Tracer) SessionOption { return func(s *Session) { s.tracer = t } }

// NewSession creates a session with an empty tally.
func NewSession(opts ...SessionOption) (*Session, error) {
	s := &Session{
		state:      coin.NewState(),
		p:          coin.FairProbability,
		batch:      DefaultBatchSize,
		confidence: stats.DefaultConfidence,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.id == "" {
		s.id = store.NewSessionID()
	}
	if s.gen == nil {
		s.gen = coin.NewGenerator(nil)
	}
	if s.logger == nil {
		s.logger = logging.Nop()
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer(tracerName)
	}

	if err := coin.Validate(0, s.p); err != nil {
		return nil, err
	}
	if s.batch < 1 {
		return nil, apperrors.ValidationError{Field: "batch", Message: "must be positive", Cause: coin.ErrInvalidArgument}
	}
	if !store.ValidSessionID(s.id) {
		return nil, apperrors.ValidationError{Field: "session", Message: "invalid session id " + s.id}
	}
	return s, nil
}

// OpenSession creates a session and restores its tally from the configured
// store. An id the store does not know starts from an empty tally.
func OpenSession(ctx context.Context, opts ...SessionOption) (*Session, error) {
	s, err := NewSession(opts...)
	if err != nil {
		return nil, err
	}
	if s.store == nil {
		return s, nil
	}
	state, err := s.store.Load(ctx, s.id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		s.logger.Debug("starting new session", logging.String("session", s.id))
	case err != nil:
		return nil, apperrors.WrapError(err, "load session %s", s.id)
	default:
		s.state = state
		s.logger.Debug("resumed session",
			logging.String("session", s.id),
			logging.Uint64("total", state.TotalFlips()))
	}
	return s, nil
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Probability returns the heads probability.
func (s *Session) Probability() float64 { return s.p }

// BatchSize returns the size of FlipBatch.
func (s *Session) BatchSize() int { return s.batch }

// Snapshot returns the current view without running a command.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked("", nil, 0, 0)
}

// Execute applies cmd and returns the resulting snapshot. A failed command
// leaves the tally untouched.
func (s *Session) Execute(ctx context.Context, cmd Command) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}

	ctx, span := s.tracer.Start(ctx, "coinsim.session."+cmd.Name(),
		trace.WithAttributes(attribute.String("coinsim.session_id", s.id)))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.executeLocked(ctx, cmd)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.Debug("command failed", logging.String("session", s.id), logging.String("command", cmd.Name()), logging.Err(err))
		return Snapshot{}, err
	}

	span.SetAttributes(
		attribute.Int64("coinsim.n", int64(snap.Flipped())),
		attribute.Int64("coinsim.heads", int64(snap.Heads)),
		attribute.Int64("coinsim.tails", int64(snap.Tails)),
	)
	s.logger.Debug("command executed",
		logging.String("session", s.id),
		logging.String("command", cmd.Name()),
		logging.Uint64("heads", snap.Heads),
		logging.Uint64("tails", snap.Tails),
		logging.Uint64("total", snap.State.TotalFlips()))
	if s.observer != nil {
		s.observer.ObserveCommand(cmd.Name(), snap.Heads, snap.Tails)
	}
	return snap, nil
}

func (s *Session) executeLocked(ctx context.Context, cmd Command) (Snapshot, error) {
	if s.deleted {
		return Snapshot{}, apperrors.WrapError(store.ErrNotFound, "session %s was deleted", s.id)
	}
	next := s.state.Clone()
	var outcomes []coin.Outcome
	var heads, tails uint64

	switch cmd.Kind {
	case KindReset:
		next.Reset()
	case KindFlipOnce, KindFlipBatch, KindFlipN:
		n := s.flipCount(cmd)
		var err error
		outcomes, heads, tails, err = s.flip(ctx, next, n)
		if err != nil {
			return Snapshot{}, err
		}
	default:
		return Snapshot{}, apperrors.ValidationError{Field: "command", Message: "unknown command " + cmd.Name()}
	}

	if err := s.persist(ctx, cmd, next, heads, tails); err != nil {
		return Snapshot{}, err
	}
	s.state = next
	return s.snapshotLocked(cmd.Name(), outcomes, heads, tails), nil
}

func (s *Session) flipCount(cmd Command) int {
	switch cmd.Kind {
	case KindFlipOnce:
		return 1
	case KindFlipBatch:
		return s.batch
	default:
		return cmd.N
	}
}

// flip draws n outcomes into next. Individual outcomes are kept only for
// small commands.
func (s *Session) flip(ctx context.Context, next *coin.State, n int) ([]coin.Outcome, uint64, uint64, error) {
	trials, err := s.gen.Trials(n, s.p)
	if err != nil {
		return nil, 0, 0, err
	}

	var outcomes []coin.Outcome
	if n <= MaxSnapshotOutcomes {
		outcomes = make([]coin.Outcome, 0, n)
	}
	var heads, tails uint64
	i := 0
	for o := range trials {
		if i%cancelCheckInterval == cancelCheckInterval-1 {
			if err := ctx.Err(); err != nil {
				return nil, 0, 0, err
			}
		}
		i++
		if o == coin.Heads {
			heads++
		} else {
			tails++
		}
		next.LastOutcome = o
		if outcomes != nil {
			outcomes = append(outcomes, o)
		}
	}
	next.HeadsCount += heads
	next.TailsCount += tails
	return outcomes, heads, tails, nil
}

func (s *Session) persist(ctx context.Context, cmd Command, next *coin.State, heads, tails uint64) error {
	if s.store == nil {
		return nil
	}
	if err := s.store.Save(ctx, s.id, next); err != nil {
		return apperrors.WrapError(err, "save session %s", s.id)
	}
	if l, ok := s.store.(CommandLogger); ok {
		rec := store.Command{SessionID: s.id, Name: cmd.Name(), Heads: heads, Tails: tails}
		if err := l.LogCommand(ctx, rec); err != nil {
			// History is best effort once the tally is saved.
			s.logger.Warn("failed to record command history", logging.String("session", s.id), logging.Err(err))
		}
	}
	return nil
}

func (s *Session) snapshotLocked(command string, outcomes []coin.Outcome, heads, tails uint64) Snapshot {
	return Snapshot{
		SessionID: s.id,
		Command:   command,
		State:     *s.state,
		Outcomes:  outcomes,
		Heads:     heads,
		Tails:     tails,
		Summary:   stats.Summarize(s.state, s.p, s.confidence),
	}
}

// History returns the latest commands of the session, newest first, when
// the store keeps a history. Otherwise it returns nil.
func (s *Session) History(ctx context.Context, limit int) ([]store.Command, error) {
	h, ok := s.store.(HistoryReader)
	if !ok {
		return nil, nil
	}
	return h.History(ctx, s.id, limit)
}

// Delete removes the persisted tally and resets the in-memory one. Commands
// executed on the session afterwards fail with store.ErrNotFound.
func (s *Session) Delete(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store != nil {
		if err := s.store.Delete(ctx, s.id); err != nil && !errors.Is(err, store.ErrNotFound) {
			return apperrors.WrapError(err, "delete session %s", s.id)
		}
	}
	s.state.Reset()
	s.deleted = true
	return nil
}
