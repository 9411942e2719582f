package orders

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"kirana/errs"
	"kirana/models"
	"kirana/store"
)

func newTestLedger(t *testing.T) (*Ledger, *store.MemProfile) {
	t.Helper()
	profile := store.NewMemProfile()
	l, err := NewLedger(context.Background(), profile.Open())
	require.NoError(t, err)
	t.Cleanup(l.Close)
	return l, profile
}

func placeInput() PlaceInput {
	return PlaceInput{
		Items: []models.OrderItem{
			{ProductID: "P", Name: "Shoe", Price: 900, Qty: 2},
		},
		ShippingAddress: models.ShippingAddress{Address: "12 Lane", City: "Pune", Pincode: "411001"},
		PaymentMethod:   models.PaymentCOD,
		UserID:          "USR_101",
		UserName:        "Asha",
	}
}

func TestPlaceComputesTotalAndStatus(t *testing.T) {
	l, _ := newTestLedger(t)

	o, err := l.Place(context.Background(), placeInput())
	require.NoError(t, err)
	require.Equal(t, float64(1800), o.TotalAmount)
	require.Equal(t, models.StatusPlaced, o.Status)
	require.True(t, len(o.OrderID) > 4 && o.OrderID[:4] == "ORD_")
	require.False(t, o.CreatedAt.IsZero())
}

func TestPlaceValidation(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*PlaceInput)
	}{
		{"empty name", func(in *PlaceInput) { in.UserName = "" }},
		{"empty address", func(in *PlaceInput) { in.ShippingAddress.Address = "" }},
		{"empty city", func(in *PlaceInput) { in.ShippingAddress.City = "" }},
		{"empty pincode", func(in *PlaceInput) { in.ShippingAddress.Pincode = "" }},
		{"unknown payment", func(in *PlaceInput) { in.PaymentMethod = "CHEQUE" }},
		{"no items", func(in *PlaceInput) { in.Items = nil }},
		{"zero qty", func(in *PlaceInput) { in.Items[0].Qty = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := placeInput()
			tc.mutate(&in)
			_, err := l.Place(ctx, in)
			require.True(t, errs.IsValidation(err), "expected ValidationError")
		})
	}

	require.Empty(t, l.ListAll(ctx), "failed places must not touch the ledger")
}

func TestPlacedOrderIsImmuneToInputMutation(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	in := placeInput()
	o, err := l.Place(ctx, in)
	require.NoError(t, err)

	// mutating the caller's slice must not reach the ledger snapshot
	in.Items[0].Price = 1
	in.Items[0].Qty = 99

	got, err := l.Get(ctx, o.OrderID)
	require.NoError(t, err)
	require.Equal(t, float64(900), got.Items[0].Price)
	require.Equal(t, 2, got.Items[0].Qty)
	require.Equal(t, float64(1800), got.TotalAmount)
}

func TestUpdateStatusOnlyTouchesStatus(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	o, err := l.Place(ctx, placeInput())
	require.NoError(t, err)

	got, err := l.UpdateStatus(ctx, o.OrderID, models.StatusShipped)
	require.NoError(t, err)
	require.Equal(t, models.StatusShipped, got.Status)
	require.Equal(t, o.OrderID, got.OrderID)
	require.Equal(t, o.TotalAmount, got.TotalAmount)
	require.True(t, o.CreatedAt.Equal(got.CreatedAt))
	require.Equal(t, o.Items, got.Items)
}

func TestStatusTransitionsAreUnrestricted(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	o, err := l.Place(ctx, placeInput())
	require.NoError(t, err)

	_, err = l.UpdateStatus(ctx, o.OrderID, models.StatusDelivered)
	require.NoError(t, err)

	// backward transition out of a "terminal" state is allowed
	got, err := l.UpdateStatus(ctx, o.OrderID, models.StatusPlaced)
	require.NoError(t, err)
	require.Equal(t, models.StatusPlaced, got.Status)
}

func TestUpdateStatusErrors(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	o, err := l.Place(ctx, placeInput())
	require.NoError(t, err)

	_, err = l.UpdateStatus(ctx, o.OrderID, "LOST")
	require.True(t, errs.IsValidation(err))

	_, err = l.UpdateStatus(ctx, "ORD_0", models.StatusShipped)
	require.True(t, errs.IsNotFound(err))

	got, err := l.Get(ctx, o.OrderID)
	require.NoError(t, err)
	require.Equal(t, models.StatusPlaced, got.Status, "failed updates must leave status alone")
}

func TestOrderIDsAreUniqueAndIncreasing(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	seen := map[string]bool{}
	prev := int64(0)
	for i := 0; i < 50; i++ {
		o, err := l.Place(ctx, placeInput())
		require.NoError(t, err)
		require.False(t, seen[o.OrderID], "order id reused: %s", o.OrderID)
		seen[o.OrderID] = true

		ms := idMillis(o.OrderID)
		require.Greater(t, ms, prev)
		prev = ms
	}
}

func TestListAllNewestFirst(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	first, err := l.Place(ctx, placeInput())
	require.NoError(t, err)
	second, err := l.Place(ctx, placeInput())
	require.NoError(t, err)

	all := l.ListAll(ctx)
	require.Len(t, all, 2)
	require.Equal(t, second.OrderID, all[0].OrderID)
	require.Equal(t, first.OrderID, all[1].OrderID)
}

func TestListForUserFiltersAndSorts(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	mine := placeInput()
	theirs := placeInput()
	theirs.UserID = "USR_202"

	_, err := l.Place(ctx, theirs)
	require.NoError(t, err)
	a, err := l.Place(ctx, mine)
	require.NoError(t, err)
	b, err := l.Place(ctx, mine)
	require.NoError(t, err)

	got := l.ListForUser(ctx, "USR_101")
	require.Len(t, got, 2)
	require.Equal(t, b.OrderID, got[0].OrderID)
	require.Equal(t, a.OrderID, got[1].OrderID)
}

// A ledger that stopped listening for change signals writes through its
// stale copy and silently drops the other tab's order. Documented
// last-writer-wins behavior.
func TestStaleTabLosesConcurrentOrder(t *testing.T) {
	profile := store.NewMemProfile()
	ctx := context.Background()

	tabA, err := NewLedger(ctx, profile.Open())
	require.NoError(t, err)
	defer tabA.Close()

	tabB, err := NewLedger(ctx, profile.Open())
	require.NoError(t, err)
	tabB.Close() // stops observing changes

	x, err := tabA.Place(ctx, placeInput())
	require.NoError(t, err)

	// tab B never saw X, so its id counter is behind; step past X's
	// millisecond so the two orders get distinct ids
	time.Sleep(2 * time.Millisecond)
	y, err := tabB.Place(ctx, placeInput())
	require.NoError(t, err)

	fresh, err := NewLedger(ctx, profile.Open())
	require.NoError(t, err)
	defer fresh.Close()

	all := fresh.ListAll(ctx)
	require.Len(t, all, 1, "stale tab's whole-collection write overwrote the other order")
	require.Equal(t, y.OrderID, all[0].OrderID)
	_, err = fresh.Get(ctx, x.OrderID)
	require.True(t, errs.IsNotFound(err))
}

func TestLedgerRoundTrip(t *testing.T) {
	l, profile := newTestLedger(t)
	ctx := context.Background()

	o, err := l.Place(ctx, placeInput())
	require.NoError(t, err)

	fresh, err := NewLedger(ctx, profile.Open())
	require.NoError(t, err)
	defer fresh.Close()

	got, err := fresh.Get(ctx, o.OrderID)
	require.NoError(t, err)
	require.Equal(t, o.OrderID, got.OrderID)
	require.Equal(t, o.TotalAmount, got.TotalAmount)
	require.Equal(t, o.Items, got.Items)
	require.True(t, o.CreatedAt.Equal(got.CreatedAt))
}

func TestInvoiceQRPayloadIsSigned(t *testing.T) {
	now := time.Now().Unix()
	p1 := invoiceQRPayload("ORD_1", now)
	p2 := invoiceQRPayload("ORD_2", now)
	require.NotEqual(t, p1, p2)
	require.Contains(t, p1, "ORD_1|")
}
