package dummyjson

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const pageFixture = `{
	"products": [
		{"id": 1, "title": "iPhone 9", "price": 549, "thumbnail": "t1.jpg", "category": "smartphones", "stock": 94, "discountPercentage": 12.96},
		{"id": 2, "title": "iPhone X", "price": 899, "thumbnail": "t2.jpg", "category": "smartphones", "stock": 34, "discountPercentage": 17.94}
	],
	"total": 100, "skip": 0, "limit": 2
}`

func TestListParsesPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/products" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("limit"); got != "2" {
			t.Errorf("expected limit=2, got %s", got)
		}
		if got := r.URL.Query().Get("skip"); got != "4" {
			t.Errorf("expected skip=4, got %s", got)
		}
		w.Write([]byte(pageFixture))
	}))
	defer srv.Close()

	page := NewClient(srv.URL).List(context.Background(), 2, 4)
	if len(page.Products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(page.Products))
	}
	if page.Products[0].Title != "iPhone 9" || page.Products[0].Price != 549 {
		t.Fatalf("unexpected first product: %+v", page.Products[0])
	}
	if page.Total != 100 {
		t.Fatalf("expected total 100, got %d", page.Total)
	}
}

func TestSearchSendsQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/products/search" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("q"); got != "phone case" {
			t.Errorf("expected q=%q, got %q", "phone case", got)
		}
		w.Write([]byte(pageFixture))
	}))
	defer srv.Close()

	page := NewClient(srv.URL).Search(context.Background(), "phone case", 10, 0)
	if len(page.Products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(page.Products))
	}
}

func TestFetchFailureDegradesToEmptyPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	page := NewClient(srv.URL).List(context.Background(), 10, 0)
	if page.Products == nil || len(page.Products) != 0 {
		t.Fatalf("expected empty page, got %+v", page)
	}

	// unreachable host degrades the same way
	srv.Close()
	page = NewClient(srv.URL).List(context.Background(), 10, 0)
	if len(page.Products) != 0 {
		t.Fatalf("expected empty page, got %+v", page)
	}
}

func TestGetReturnsErrorOnMissingProduct(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	if _, err := NewClient(srv.URL).Get(context.Background(), 404); err == nil {
		t.Fatal("expected error for missing product")
	}
}
