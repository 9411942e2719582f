// Package cart owns the cart collection for the current profile. Line
// items are unique per product id and carry the product's display fields
// as they looked at add time; they are not re-synced if the product later
// changes.
package cart

import (
	"context"
	"log"
	"sync"
	"time"

	"kirana/models"
	"kirana/store"
)

type Aggregate struct {
	mu    sync.Mutex
	store store.Store
	items []models.CartItem
	unsub func()
}

func NewAggregate(ctx context.Context, s store.Store) (*Aggregate, error) {
	a := &Aggregate{store: s}
	if err := a.reload(ctx); err != nil {
		return nil, err
	}
	a.unsub = s.Subscribe(func(ch store.Change) {
		if ch.Key != store.KeyCart {
			return
		}
		if err := a.reload(context.Background()); err != nil {
			log.Println("cart: reload after external write failed:", err)
		}
	})
	return a, nil
}

func (a *Aggregate) Close() {
	if a.unsub != nil {
		a.unsub()
	}
}

func (a *Aggregate) reload(ctx context.Context) error {
	var items []models.CartItem
	if err := store.Load(ctx, a.store, store.KeyCart, &items); err != nil {
		return err
	}
	a.mu.Lock()
	a.items = items
	a.mu.Unlock()
	return nil
}

// Items returns a copy of the current line items.
func (a *Aggregate) Items(ctx context.Context) []models.CartItem {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]models.CartItem, len(a.items))
	copy(out, a.items)
	return out
}

// AddItem merges by product id: an existing line gains one unit, otherwise
// a new line starts at qty 1 with the product's display snapshot.
func (a *Aggregate) AddItem(ctx context.Context, p models.ProductSnapshot) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	next := make([]models.CartItem, len(a.items))
	copy(next, a.items)

	found := false
	for i, item := range next {
		if item.ProductID == p.ProductID {
			next[i].Qty++
			found = true
			break
		}
	}
	if !found {
		next = append(next, models.CartItem{
			ProductID: p.ProductID,
			Title:     p.Title,
			Price:     p.Price,
			Thumbnail: p.Thumbnail,
			Qty:       1,
			AddedAt:   time.Now(),
		})
	}

	if err := store.Save(ctx, a.store, store.KeyCart, next); err != nil {
		return err
	}
	a.items = next
	return nil
}

// RemoveItem deletes the line for productID. Removing an absent line is a
// no-op.
func (a *Aggregate) RemoveItem(ctx context.Context, productID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.removeLocked(ctx, productID)
}

func (a *Aggregate) removeLocked(ctx context.Context, productID string) error {
	next := make([]models.CartItem, 0, len(a.items))
	found := false
	for _, item := range a.items {
		if item.ProductID == productID {
			found = true
			continue
		}
		next = append(next, item)
	}
	if !found {
		return nil
	}
	if err := store.Save(ctx, a.store, store.KeyCart, next); err != nil {
		return err
	}
	a.items = next
	return nil
}

// SetQuantity sets the absolute quantity for productID. A quantity of zero
// or less removes the line; qty <= 0 is never stored.
func (a *Aggregate) SetQuantity(ctx context.Context, productID string, qty int) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if qty <= 0 {
		return a.removeLocked(ctx, productID)
	}

	next := make([]models.CartItem, len(a.items))
	copy(next, a.items)
	for i, item := range next {
		if item.ProductID == productID {
			next[i].Qty = qty
			if err := store.Save(ctx, a.store, store.KeyCart, next); err != nil {
				return err
			}
			a.items = next
			return nil
		}
	}
	return nil
}

// Clear empties the cart. Called after a full-cart checkout, never after a
// buy-now purchase.
func (a *Aggregate) Clear(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	next := []models.CartItem{}
	if err := store.Save(ctx, a.store, store.KeyCart, next); err != nil {
		return err
	}
	a.items = next
	return nil
}

// TotalItems is the sum of line quantities, recomputed on every call.
func (a *Aggregate) TotalItems(ctx context.Context) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	sum := 0
	for _, item := range a.items {
		sum += item.Qty
	}
	return sum
}

// TotalAmount is the sum of price times quantity, recomputed on every
// call; it is never persisted, so it cannot drift from the line items.
func (a *Aggregate) TotalAmount(ctx context.Context) float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	sum := 0.0
	for _, item := range a.items {
		sum += item.Price * float64(item.Qty)
	}
	return sum
}
