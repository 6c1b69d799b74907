// Package persist provides the asynchronous write-behind writer and an
// in-memory table implementation.
package persist

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"maintledger/internal/core/apperror"
	"maintledger/internal/core/persist"
	"maintledger/pkg/logger"
)

var tracer = otel.Tracer("maintledger/persist")

// Compile-time check that Writer implements persist.Submitter.
var _ persist.Submitter = (*Writer)(nil)

// ErrClosed is returned for writes submitted after Close.
var ErrClosed = errors.New("persistence writer closed")

// Observer receives write outcomes, typically for metrics.
type Observer interface {
	ObserveWrite(table string, err error, elapsed time.Duration)
	ObserveCoalesced(table string)
}

type nopObserver struct{}

func (nopObserver) ObserveWrite(string, error, time.Duration) {}
func (nopObserver) ObserveCoalesced(string)                   {}

// WriterConfig configures the write-behind writer.
type WriterConfig struct {
	// CoalesceWindow is the quiet interval after the last submit for a key
	// before the write runs. Zero writes immediately.
	CoalesceWindow time.Duration

	// WriteTimeout bounds a single store call.
	WriteTimeout time.Duration
}

// DefaultWriterConfig returns the defaults used by the server.
func DefaultWriterConfig() WriterConfig {
	return WriterConfig{
		CoalesceWindow: 500 * time.Millisecond,
		WriteTimeout:   10 * time.Second,
	}
}

type pendingWrite struct {
	table string
	id    string
	ctx   context.Context
	exec  func(ctx context.Context) error
	ack   *persist.Ack
	timer *time.Timer
	gen   uint64
}

// Writer runs store writes in the background.
//
// Submits for the same table/id within the coalesce window collapse into a
// single write of the latest version (last write wins); every submitter of
// that key receives the same Ack. Writes for one key never overlap. A failed
// write is logged and reported through its Ack; nothing is rolled back.
type Writer struct {
	cfg      WriterConfig
	observer Observer

	mu       sync.Mutex
	pending  map[string]*pendingWrite
	inflight map[string]chan struct{}
	closed   bool
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithObserver sets the write observer.
func WithObserver(o Observer) WriterOption {
	return func(w *Writer) { w.observer = o }
}

// NewWriter creates a writer.
func NewWriter(cfg WriterConfig, opts ...WriterOption) *Writer {
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = DefaultWriterConfig().WriteTimeout
	}
	w := &Writer{
		cfg:      cfg,
		observer: nopObserver{},
		pending:  make(map[string]*pendingWrite),
		inflight: make(map[string]chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Submit schedules exec as the write for table/id, replacing any write for
// the same key that has not started yet.
func (w *Writer) Submit(ctx context.Context, table, id string, exec func(ctx context.Context) error) *persist.Ack {
	key := table + "/" + id

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return persist.Resolved(key, apperror.NewDatabase(ErrClosed))
	}

	p, ok := w.pending[key]
	if ok {
		p.timer.Stop()
		p.gen++
		w.observer.ObserveCoalesced(table)
		logger.Debug(ctx, "coalesced pending write", "table", table, "id", id)
	} else {
		p = &pendingWrite{table: table, id: id, ack: persist.NewAck(key)}
		w.pending[key] = p
	}
	p.ctx = context.WithoutCancel(ctx)
	p.exec = exec

	gen := p.gen
	p.timer = time.AfterFunc(w.cfg.CoalesceWindow, func() { w.fire(key, gen) })
	return p.ack
}

// Pending returns the number of writes waiting for their window to pass.
func (w *Writer) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending)
}

func (w *Writer) fire(key string, gen uint64) {
	w.mu.Lock()
	p, ok := w.pending[key]
	if !ok || p.gen != gen {
		w.mu.Unlock()
		return
	}
	w.startLocked(key, p)
	w.mu.Unlock()
}

// startLocked moves p from pending to running. w.mu must be held.
func (w *Writer) startLocked(key string, p *pendingWrite) {
	delete(w.pending, key)

	prev := w.inflight[key]
	done := make(chan struct{})
	w.inflight[key] = done

	go func() {
		if prev != nil {
			<-prev
		}

		err := w.run(p)
		p.ack.Resolve(err)

		close(done)
		w.mu.Lock()
		if w.inflight[key] == done {
			delete(w.inflight, key)
		}
		w.mu.Unlock()
	}()
}

func (w *Writer) run(p *pendingWrite) error {
	ctx, cancel := context.WithTimeout(p.ctx, w.cfg.WriteTimeout)
	defer cancel()

	ctx, span := tracer.Start(ctx, "persist.write",
		trace.WithAttributes(
			attribute.String("table", p.table),
			attribute.String("record.id", p.id),
		))
	defer span.End()

	started := time.Now()
	err := p.exec(ctx)
	w.observer.ObserveWrite(p.table, err, time.Since(started))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Error(ctx, "persistence write failed, local state kept",
			"table", p.table,
			"id", p.id,
			"error", err,
		)
		if apperror.IsAppError(err) {
			return err
		}
		return apperror.NewDatabase(err).WithDetail("table", p.table).WithDetail("id", p.id)
	}

	logger.Debug(ctx, "persisted record", "table", p.table, "id", p.id)
	return nil
}

// Flush starts every pending write now and waits until the writes running
// at that point have finished. Writes submitted during the wait are left to
// their own window.
func (w *Writer) Flush(ctx context.Context) error {
	w.mu.Lock()
	for key, p := range w.pending {
		p.timer.Stop()
		w.startLocked(key, p)
	}
	running := make([]chan struct{}, 0, len(w.inflight))
	for _, done := range w.inflight {
		running = append(running, done)
	}
	w.mu.Unlock()

	// The last write of a key waits for the earlier ones before it closes.
	for _, done := range running {
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Close rejects further submits and flushes what is pending.
func (w *Writer) Close(ctx context.Context) error {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
	return w.Flush(ctx)
}
