// Package orders owns the append-only order ledger. Both the shopper's
// order history and the admin order table read from this one collection.
package orders

import (
	"context"
	"log"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"kirana/errs"
	"kirana/models"
	"kirana/store"
)

type Ledger struct {
	mu     sync.Mutex
	store  store.Store
	orders []models.Order
	lastID int64 // millis of the last generated order id
	unsub  func()
}

func NewLedger(ctx context.Context, s store.Store) (*Ledger, error) {
	l := &Ledger{store: s}
	if err := l.reload(ctx); err != nil {
		return nil, err
	}
	l.unsub = s.Subscribe(func(ch store.Change) {
		if ch.Key != store.KeyOrders {
			return
		}
		if err := l.reload(context.Background()); err != nil {
			log.Println("orders: reload after external write failed:", err)
		}
	})
	return l, nil
}

func (l *Ledger) Close() {
	if l.unsub != nil {
		l.unsub()
	}
}

func (l *Ledger) reload(ctx context.Context) error {
	var orders []models.Order
	if err := store.Load(ctx, l.store, store.KeyOrders, &orders); err != nil {
		return err
	}
	l.mu.Lock()
	l.orders = orders
	for _, o := range orders {
		if ms := idMillis(o.OrderID); ms > l.lastID {
			l.lastID = ms
		}
	}
	l.mu.Unlock()
	return nil
}

func idMillis(orderID string) int64 {
	ms, err := strconv.ParseInt(strings.TrimPrefix(orderID, "ORD_"), 10, 64)
	if err != nil {
		return 0
	}
	return ms
}

// nextOrderID generates a time-derived id that stays strictly increasing
// even when two orders land within the same millisecond.
func (l *Ledger) nextOrderID() string {
	ms := time.Now().UnixMilli()
	if ms <= l.lastID {
		ms = l.lastID + 1
	}
	l.lastID = ms
	return "ORD_" + strconv.FormatInt(ms, 10)
}

// PlaceInput is everything the checkout flow supplies.
type PlaceInput struct {
	Items           []models.OrderItem
	ShippingAddress models.ShippingAddress
	PaymentMethod   string
	UserID          string
	UserName        string
}

func validatePlace(in PlaceInput) error {
	if in.UserName == "" {
		return errs.Validation("name", "must not be empty")
	}
	if in.ShippingAddress.Address == "" {
		return errs.Validation("address", "must not be empty")
	}
	if in.ShippingAddress.City == "" {
		return errs.Validation("city", "must not be empty")
	}
	if in.ShippingAddress.Pincode == "" {
		return errs.Validation("pincode", "must not be empty")
	}
	if !models.ValidPaymentMethod(in.PaymentMethod) {
		return errs.Validation("paymentMethod", "must be one of COD, CARD, UPI")
	}
	if len(in.Items) == 0 {
		return errs.Validation("items", "must not be empty")
	}
	for _, item := range in.Items {
		if item.Qty <= 0 {
			return errs.Validation("items", "quantity must be positive")
		}
	}
	return nil
}

// Place appends a new order. Items are deep-copied so later cart or
// catalog changes cannot reach into the ledger, and TotalAmount is fixed
// from that snapshot once, at creation.
func (l *Ledger) Place(ctx context.Context, in PlaceInput) (models.Order, error) {
	if err := validatePlace(in); err != nil {
		return models.Order{}, err
	}

	items := make([]models.OrderItem, len(in.Items))
	copy(items, in.Items)

	total := 0.0
	for _, item := range items {
		total += item.Price * float64(item.Qty)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	o := models.Order{
		OrderID:         l.nextOrderID(),
		UserID:          in.UserID,
		UserName:        in.UserName,
		Items:           items,
		ShippingAddress: in.ShippingAddress,
		TotalAmount:     total,
		PaymentMethod:   in.PaymentMethod,
		Status:          models.StatusPlaced,
		CreatedAt:       time.Now(),
	}

	next := append(append([]models.Order{}, l.orders...), o)
	if err := store.Save(ctx, l.store, store.KeyOrders, next); err != nil {
		return models.Order{}, err
	}
	l.orders = next
	return o, nil
}

func newestFirst(orders []models.Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		if !orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].CreatedAt.After(orders[j].CreatedAt)
		}
		return idMillis(orders[i].OrderID) > idMillis(orders[j].OrderID)
	})
}

// ListAll returns every order, most recently created first.
func (l *Ledger) ListAll(ctx context.Context) []models.Order {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]models.Order, len(l.orders))
	copy(out, l.orders)
	newestFirst(out)
	return out
}

// ListForUser returns the given user's orders, newest first.
func (l *Ledger) ListForUser(ctx context.Context, userID string) []models.Order {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]models.Order, 0)
	for _, o := range l.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	newestFirst(out)
	return out
}

// Get returns a single order by id.
func (l *Ledger) Get(ctx context.Context, orderID string) (models.Order, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, o := range l.orders {
		if o.OrderID == orderID {
			return o, nil
		}
	}
	return models.Order{}, errs.NotFound("order", orderID)
}

// UpdateStatus replaces only the status field. Any status may move to any
// other status, including away from DELIVERED or CANCELLED; there is no
// downstream process depending on terminality.
func (l *Ledger) UpdateStatus(ctx context.Context, orderID, newStatus string) (models.Order, error) {
	if !models.ValidOrderStatus(newStatus) {
		return models.Order{}, errs.Validation("status", "unknown order status")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	idx := -1
	for i, o := range l.orders {
		if o.OrderID == orderID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return models.Order{}, errs.NotFound("order", orderID)
	}

	next := make([]models.Order, len(l.orders))
	copy(next, l.orders)
	next[idx].Status = newStatus
	if err := store.Save(ctx, l.store, store.KeyOrders, next); err != nil {
		return models.Order{}, err
	}
	l.orders = next
	return next[idx], nil
}
