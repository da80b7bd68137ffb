// Package autosave debounces document persistence: a document is written once
// its content has been quiet for a fixed period, and only the latest content
// is ever sent.
package autosave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultQuietPeriod is the wait after the last change before saving.
	DefaultQuietPeriod = 2 * time.Second
	// DefaultMaxTries bounds attempts per save, including the first.
	DefaultMaxTries = 3

	shutdownParallelism = 4
)

// ErrClosed is returned by Flush once the Saver is closed.
var ErrClosed = errors.New("autosave closed")

// PersistFunc writes a document's serialized content.
type PersistFunc func(ctx context.Context, docID string, content []byte) error

// Options configures a Saver.
type Options struct {
	QuietPeriod  time.Duration
	MaxTries     uint
	RetryInitial time.Duration
	RetryMax     time.Duration
	Clock        clockwork.Clock
	Logger       *slog.Logger
	// OnResult, if set, is called after every save attempt sequence
	// completes, with nil on success.
	OnResult func(docID string, err error)
}

// Status is the save indicator for one document.
type Status struct {
	Pending     bool      `json:"pending"`
	InFlight    bool      `json:"in_flight"`
	LastSavedAt time.Time `json:"last_saved_at,omitempty"`
	LastError   string    `json:"last_error,omitempty"`
	Failures    int       `json:"failures"`
}

type document struct {
	timer   clockwork.Timer
	gen     uint64
	content []byte
	pending bool
	running bool
	// done is closed when the running save finishes.
	done    chan struct{}
	lastErr error
	status  Status
}

// Saver schedules debounced saves per document.
type Saver struct {
	persist PersistFunc
	opts    Options

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	docs   map[string]*document
	closed bool

	inflight sync.WaitGroup
}

// New creates a Saver that writes through persist.
func New(persist PersistFunc, opts Options) *Saver {
	if opts.QuietPeriod <= 0 {
		opts.QuietPeriod = DefaultQuietPeriod
	}
	if opts.MaxTries == 0 {
		opts.MaxTries = DefaultMaxTries
	}
	if opts.RetryInitial <= 0 {
		opts.RetryInitial = 250 * time.Millisecond
	}
	if opts.RetryMax <= 0 {
		opts.RetryMax = 5 * time.Second
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Saver{
		persist: persist,
		opts:    opts,
		ctx:     ctx,
		cancel:  cancel,
		docs:    make(map[string]*document),
	}
}

// Schedule records content as the latest state of docID and restarts its
// quiet period, replacing any save that has not started yet.
func (s *Saver) Schedule(docID string, content []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	d := s.doc(docID)
	d.content = content
	d.pending = true
	d.status.Pending = true
	s.arm(docID, d)
}

// Flush saves docID's latest content now. A save already running is waited
// for first; Flush returns its error when nothing was left to save.
func (s *Saver) Flush(ctx context.Context, docID string) error {
	s.mu.Lock()
	waited := false
	for {
		if s.closed {
			s.mu.Unlock()
			return ErrClosed
		}
		d, ok := s.docs[docID]
		if !ok {
			s.mu.Unlock()
			return nil
		}
		if d.running {
			done := d.done
			s.mu.Unlock()
			select {
			case <-done:
			case <-ctx.Done():
				return ctx.Err()
			}
			waited = true
			s.mu.Lock()
			continue
		}
		if !d.pending {
			var err error
			if waited {
				err = d.lastErr
			}
			s.mu.Unlock()
			return err
		}

		s.disarm(d)
		content := s.begin(d)
		s.mu.Unlock()

		err := s.save(ctx, docID, content)
		s.finish(docID, err)
		return err
	}
}

// Shutdown flushes every document with unsaved content, then closes the
// Saver. Errors from individual flushes are joined.
func (s *Saver) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	ids := make([]string, 0, len(s.docs))
	for id := range s.docs {
		ids = append(ids, id)
	}
	s.mu.Unlock()

	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
	)
	g.SetLimit(shutdownParallelism)
	for _, id := range ids {
		g.Go(func() error {
			if err := s.Flush(ctx, id); err != nil && !errors.Is(err, ErrClosed) {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	s.Close()
	return errors.Join(errs...)
}

// Cancel drops any unsaved content for docID and stops its timer.
func (s *Saver) Cancel(docID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.docs[docID]
	if !ok {
		return
	}
	s.disarm(d)
	d.pending = false
	d.content = nil
	d.status.Pending = false
	if !d.running {
		delete(s.docs, docID)
	}
}

// Status returns the save indicator for docID.
func (s *Saver) Status(docID string) Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d, ok := s.docs[docID]; ok {
		return d.status
	}
	return Status{}
}

// Close stops every pending timer, cancels the context of in-flight saves
// and waits for them to return. Unsaved content is dropped; use Shutdown to
// keep it.
func (s *Saver) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	for _, d := range s.docs {
		s.disarm(d)
	}
	s.cancel()
	s.mu.Unlock()

	s.inflight.Wait()
}

func (s *Saver) doc(docID string) *document {
	d, ok := s.docs[docID]
	if !ok {
		d = &document{}
		s.docs[docID] = d
	}
	return d
}

// arm replaces the document's timer. Callers hold s.mu.
func (s *Saver) arm(docID string, d *document) {
	s.disarm(d)
	gen := d.gen
	d.timer = s.opts.Clock.AfterFunc(s.opts.QuietPeriod, func() {
		s.fire(docID, gen)
	})
}

// disarm stops the timer; bumping gen invalidates a callback that already
// started. Callers hold s.mu.
func (s *Saver) disarm(d *document) {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
}

// begin marks a save as running. Callers hold s.mu.
func (s *Saver) begin(d *document) []byte {
	s.inflight.Add(1)
	content := d.content
	d.pending = false
	d.running = true
	d.done = make(chan struct{})
	d.status.Pending = false
	d.status.InFlight = true
	return content
}

func (s *Saver) fire(docID string, gen uint64) {
	s.mu.Lock()
	d, ok := s.docs[docID]
	if !ok || s.closed || d.gen != gen {
		s.mu.Unlock()
		return
	}
	d.timer = nil
	if d.running || !d.pending {
		// The in-flight save re-arms on completion.
		s.mu.Unlock()
		return
	}
	content := s.begin(d)
	s.mu.Unlock()

	err := s.save(s.ctx, docID, content)
	s.finish(docID, err)
}

func (s *Saver) finish(docID string, err error) {
	defer s.inflight.Done()

	s.mu.Lock()
	d, ok := s.docs[docID]
	if ok {
		s.record(docID, d, err)
	}
	s.mu.Unlock()

	if ok && s.opts.OnResult != nil {
		s.opts.OnResult(docID, err)
	}
}

// record updates status after a save and re-arms when content arrived while
// the save was running. Callers hold s.mu.
func (s *Saver) record(docID string, d *document, err error) {
	d.running = false
	d.status.InFlight = false
	d.lastErr = err
	close(d.done)
	if err != nil {
		d.status.Failures++
		d.status.LastError = err.Error()
		if s.opts.Logger != nil {
			s.opts.Logger.Warn("document save failed", "doc_id", docID, "error", err)
		}
	} else {
		d.status.LastSavedAt = s.opts.Clock.Now()
		d.status.LastError = ""
		d.status.Failures = 0
	}

	if !s.closed && d.pending && d.timer == nil {
		s.arm(docID, d)
	}
}

func (s *Saver) save(ctx context.Context, docID string, content []byte) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.opts.RetryInitial
	b.MaxInterval = s.opts.RetryMax

	attempt := 0
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attempt++
		if err := s.persist(ctx, docID, content); err != nil {
			if ctx.Err() != nil {
				return struct{}{}, backoff.Permanent(err)
			}
			return struct{}{}, err
		}
		return struct{}{}, nil
	}, backoff.WithBackOff(b), backoff.WithMaxTries(s.opts.MaxTries))
	if err != nil {
		return fmt.Errorf("saving %s after %d attempts: %w", docID, attempt, err)
	}
	if s.opts.Logger != nil {
		s.opts.Logger.Debug("document saved", "doc_id", docID, "bytes", len(content), "attempts", attempt)
	}
	return nil
}
