// Package persist defines the contract between the in-memory ledger and the
// external record store. Domain code depends on these types only; the
// writer and the table implementations live in infrastructure.
package persist

import (
	"context"
	"errors"
	"sync"
)

// Table is the persistence collaborator for one entity table.
// It offers opaque read/write-by-key operations only.
type Table[T any] interface {
	// Name is the table name, used for logs and metrics.
	Name() string

	// List returns records ordered by id, paginated by offset/limit.
	List(ctx context.Context, offset, limit int) ([]T, error)

	// Upsert inserts or replaces the record stored under id.
	Upsert(ctx context.Context, id string, record T) error

	// Delete removes the record stored under id. Missing ids are not an error.
	Delete(ctx context.Context, id string) error
}

// Submitter schedules a write and returns its acknowledgement.
type Submitter interface {
	Submit(ctx context.Context, table, id string, exec func(ctx context.Context) error) *Ack
}

// Ack is the future result of an asynchronous write. Writes coalesced under
// the same key share one Ack, resolved by the write that finally ran.
type Ack struct {
	key  string
	done chan struct{}
	once sync.Once
	err  error
}

// NewAck creates an unresolved acknowledgement.
func NewAck(key string) *Ack {
	return &Ack{key: key, done: make(chan struct{})}
}

// Resolved returns an acknowledgement that is already complete.
func Resolved(key string, err error) *Ack {
	a := NewAck(key)
	a.Resolve(err)
	return a
}

// Resolve completes the acknowledgement. Only the first call has effect.
func (a *Ack) Resolve(err error) {
	a.once.Do(func() {
		a.err = err
		close(a.done)
	})
}

// Key identifies the written record as "table/id".
func (a *Ack) Key() string { return a.key }

// Done is closed once the write has finished.
func (a *Ack) Done() <-chan struct{} { return a.done }

// Err returns the write error; nil while still pending.
func (a *Ack) Err() error {
	select {
	case <-a.done:
		return a.err
	default:
		return nil
	}
}

// Wait blocks until the write has finished or ctx is done.
func (a *Ack) Wait(ctx context.Context) error {
	select {
	case <-a.done:
		return a.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Join returns an Ack resolved when all acks are, carrying their joined errors.
func Join(acks ...*Ack) *Ack {
	joined := NewAck("")
	go func() {
		var errs []error
		for _, a := range acks {
			if a == nil {
				continue
			}
			<-a.done
			if a.err != nil {
				errs = append(errs, a.err)
			}
		}
		joined.Resolve(errors.Join(errs...))
	}()
	return joined
}
