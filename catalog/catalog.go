// Package catalog owns the admin-managed products collection.
package catalog

import (
	"context"
	"log"
	"math"
	"sync"
	"time"

	"kirana/errs"
	"kirana/models"
	"kirana/store"
	"kirana/utils"
)

// Repository holds the in-memory products collection and persists the
// whole collection on every mutation. A change signal from another handle
// triggers a reload, so a stale copy is replaced before the next read.
type Repository struct {
	mu    sync.Mutex
	store store.Store
	items []models.Product
	unsub func()
}

func NewRepository(ctx context.Context, s store.Store) (*Repository, error) {
	r := &Repository{store: s}
	if err := r.reload(ctx); err != nil {
		return nil, err
	}
	r.unsub = s.Subscribe(func(ch store.Change) {
		if ch.Key != store.KeyProducts {
			return
		}
		if err := r.reload(context.Background()); err != nil {
			log.Println("catalog: reload after external write failed:", err)
		}
	})
	return r, nil
}

func (r *Repository) Close() {
	if r.unsub != nil {
		r.unsub()
	}
}

func (r *Repository) reload(ctx context.Context) error {
	var items []models.Product
	if err := store.Load(ctx, r.store, store.KeyProducts, &items); err != nil {
		return err
	}
	r.mu.Lock()
	r.items = items
	r.mu.Unlock()
	return nil
}

// List returns the full collection in insertion order.
func (r *Repository) List(ctx context.Context) []models.Product {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Product, len(r.items))
	copy(out, r.items)
	return out
}

// Get returns the product with the given id.
func (r *Repository) Get(ctx context.Context, id string) (models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.items {
		if p.ID == id {
			return p, nil
		}
	}
	return models.Product{}, errs.NotFound("product", id)
}

// FinalPrice derives the at-rest discounted price.
func FinalPrice(price, discountPercent float64) float64 {
	return math.Round(price - price*discountPercent/100)
}

func validateDraft(d models.Product) error {
	if d.Name == "" {
		return errs.Validation("name", "must not be empty")
	}
	if d.Price < 0 || math.IsNaN(d.Price) || math.IsInf(d.Price, 0) {
		return errs.Validation("price", "must be a non-negative number")
	}
	if d.Stock < 0 {
		return errs.Validation("stock", "must be a non-negative integer")
	}
	if d.DiscountPercent < 0 || d.DiscountPercent > 100 {
		return errs.Validation("discountPercent", "must be between 0 and 100")
	}
	return nil
}

// Create assigns a fresh id, derives FinalPrice and the display thumbnail,
// persists, and returns the stored record.
func (r *Repository) Create(ctx context.Context, draft models.Product) (models.Product, error) {
	if err := validateDraft(draft); err != nil {
		return models.Product{}, err
	}

	p := draft
	p.ID = utils.GenerateID(14)
	p.FinalPrice = FinalPrice(p.Price, p.DiscountPercent)
	p.Thumbnail = DeriveThumbnail(p.Image)
	p.UpdatedAt = time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	next := append(append([]models.Product{}, r.items...), p)
	if err := store.Save(ctx, r.store, store.KeyProducts, next); err != nil {
		return models.Product{}, err
	}
	r.items = next
	return p, nil
}

// Update merges the patch into the record matching id. FinalPrice is
// recomputed whenever price or discount is among the changed fields; the
// id itself is immutable.
func (r *Repository) Update(ctx context.Context, id string, patch models.ProductPatch) (models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := -1
	for i, p := range r.items {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return models.Product{}, errs.NotFound("product", id)
	}

	p := r.items[idx]
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.DiscountPercent != nil {
		p.DiscountPercent = *patch.DiscountPercent
	}
	if patch.Stock != nil {
		p.Stock = *patch.Stock
	}
	if patch.IsActive != nil {
		p.IsActive = *patch.IsActive
	}
	if patch.Image != nil {
		p.Image = *patch.Image
		p.Thumbnail = DeriveThumbnail(p.Image)
	}
	if err := validateDraft(p); err != nil {
		return models.Product{}, err
	}
	if patch.Price != nil || patch.DiscountPercent != nil {
		p.FinalPrice = FinalPrice(p.Price, p.DiscountPercent)
	}
	p.UpdatedAt = time.Now()

	next := make([]models.Product, len(r.items))
	copy(next, r.items)
	next[idx] = p
	if err := store.Save(ctx, r.store, store.KeyProducts, next); err != nil {
		return models.Product{}, err
	}
	r.items = next
	return p, nil
}

// Delete removes the record. An absent id returns NotFoundError and leaves
// the collection untouched; the UI is expected to confirm before calling.
func (r *Repository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := make([]models.Product, 0, len(r.items))
	found := false
	for _, p := range r.items {
		if p.ID == id {
			found = true
			continue
		}
		next = append(next, p)
	}
	if !found {
		return errs.NotFound("product", id)
	}
	if err := store.Save(ctx, r.store, store.KeyProducts, next); err != nil {
		return err
	}
	r.items = next
	return nil
}
