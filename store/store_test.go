package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestReadMissingKeyIsEmpty(t *testing.T) {
	s := NewMemProfile().Open()

	data, err := s.Read(context.Background(), KeyProducts)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if data != nil {
		t.Fatalf("expected nil for missing key, got %q", data)
	}

	var items []string
	if err := Load(context.Background(), s, KeyProducts, &items); err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty collection, got %v", items)
	}
}

func TestFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	a, err := OpenFile(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := Save(ctx, a, KeyCart, []string{"one", "two"}); err != nil {
		t.Fatalf("save: %v", err)
	}

	// a fresh handle must see exactly what was persisted
	b, err := OpenFile(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	var got []string
	if err := Load(ctx, b, KeyCart, &got); err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 2 || got[0] != "one" || got[1] != "two" {
		t.Fatalf("unexpected round trip: %v", got)
	}
}

func TestCorruptValueTreatedAsEmpty(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, KeyOrders+".json"), []byte("{not json"), 0644); err != nil {
		t.Fatalf("seed corrupt file: %v", err)
	}

	s, err := OpenFile(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	var orders []string
	if err := Load(context.Background(), s, KeyOrders, &orders); err != nil {
		t.Fatalf("corrupt value must be recovered, got %v", err)
	}
	if len(orders) != 0 {
		t.Fatalf("expected empty collection, got %v", orders)
	}
}

func TestWriterIsNotNotified(t *testing.T) {
	profile := NewMemProfile()
	a := profile.Open()
	b := profile.Open()
	ctx := context.Background()

	aSeen := make(chan Change, 4)
	a.Subscribe(func(ch Change) { aSeen <- ch })

	// a's own write must not come back to a
	if err := a.Write(ctx, KeyCart, []byte(`[]`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	select {
	case ch := <-aSeen:
		t.Fatalf("writer notified of its own write: %+v", ch)
	case <-time.After(100 * time.Millisecond):
	}

	// b's write must reach a
	if err := b.Write(ctx, KeyCart, []byte(`[1]`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	select {
	case ch := <-aSeen:
		if ch.Key != KeyCart {
			t.Fatalf("expected change for %q, got %+v", KeyCart, ch)
		}
		if ch.Origin != b.Origin() {
			t.Fatalf("expected origin %q, got %q", b.Origin(), ch.Origin)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for change signal")
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	profile := NewMemProfile()
	a := profile.Open()
	b := profile.Open()

	seen := make(chan Change, 1)
	unsub := a.Subscribe(func(ch Change) { seen <- ch })
	unsub()

	if err := b.Write(context.Background(), KeyRole, []byte(`"ADMIN"`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	select {
	case ch := <-seen:
		t.Fatalf("unsubscribed observer notified: %+v", ch)
	case <-time.After(100 * time.Millisecond):
	}
}

// Two handles holding stale copies overwrite each other wholesale: the
// second write wins and the first is silently lost. This is the documented
// concurrency model, not a bug.
func TestLastWriterWinsAcrossHandles(t *testing.T) {
	profile := NewMemProfile()
	a := profile.Open()
	b := profile.Open()
	ctx := context.Background()

	var aCopy, bCopy []string
	if err := Load(ctx, a, KeyOrders, &aCopy); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := Load(ctx, b, KeyOrders, &bCopy); err != nil {
		t.Fatalf("load: %v", err)
	}

	if err := Save(ctx, a, KeyOrders, append(aCopy, "X")); err != nil {
		t.Fatalf("save: %v", err)
	}
	// b never reloaded, so its write is based on the stale copy
	if err := Save(ctx, b, KeyOrders, append(bCopy, "Y")); err != nil {
		t.Fatalf("save: %v", err)
	}

	var got []string
	if err := Load(ctx, profile.Open(), KeyOrders, &got); err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 1 || got[0] != "Y" {
		t.Fatalf("expected last writer to win with [Y], got %v", got)
	}
}
