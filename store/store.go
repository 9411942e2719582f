// Package store is the durable key-value layer under every storefront
// collection. Each key holds one independently-serialized collection and
// every write replaces the whole value, so the most recent writer wins
// across concurrent handles. A change signal tells every handle except the
// writer that a key moved underneath it.
package store

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"kirana/errs"
)

// Collection keys. One key per persisted collection.
const (
	KeyProducts = "products"
	KeyCart     = "cart"
	KeyOrders   = "orders"
	KeyRole     = "role"
)

// Change describes a completed write. Origin identifies the handle that
// performed it so subscribers can ignore their own writes.
type Change struct {
	Key    string `json:"key"`
	Origin string `json:"origin"`
}

// Store is one handle onto a shared profile, the equivalent of a single
// browser tab. Handles on the same profile see each other's writes through
// Subscribe; a handle is never notified of its own.
type Store interface {
	// Read returns the stored value for key, or nil if the key is absent.
	Read(ctx context.Context, key string) ([]byte, error)
	// Write atomically replaces the value for key and notifies the other
	// handles on the same profile.
	Write(ctx context.Context, key string, data []byte) error
	// Subscribe registers fn for changes made by other handles. The
	// returned func unsubscribes.
	Subscribe(fn func(Change)) func()
	// Origin is the unique id of this handle.
	Origin() string
	Close() error
}

// broker fans out changes to the subscribers of every handle on a profile.
type broker struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]subscription
}

type subscription struct {
	origin string
	fn     func(Change)
}

func newBroker() *broker {
	return &broker{subs: make(map[int]subscription)}
}

func (b *broker) subscribe(origin string, fn func(Change)) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = subscription{origin: origin, fn: fn}
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

// publish delivers ch to every subscriber whose handle did not write it.
// Delivery is asynchronous, like a storage event arriving in another tab:
// the writer must never block on, or deadlock against, an observer
// re-reading its collection.
func (b *broker) publish(ch Change) {
	b.mu.Lock()
	fns := make([]func(Change), 0, len(b.subs))
	for _, s := range b.subs {
		if s.origin == ch.Origin {
			continue
		}
		fns = append(fns, s.fn)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		go fn(ch)
	}
}

// Load reads key into v. A missing key leaves v at its zero value; an
// unparseable value is logged and treated as empty, never surfaced.
func Load(ctx context.Context, s Store, key string, v any) error {
	data, err := s.Read(ctx, key)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		log.Printf("store: %v for %q, treating as empty: %v", errs.ErrCorrupt, key, err)
		return nil
	}
	return nil
}

// Save marshals v and writes it under key.
func Save(ctx context.Context, s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.Write(ctx, key, data)
}
