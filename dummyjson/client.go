// Package dummyjson fetches the shopper-facing product catalog from a
// dummyjson-compatible API. The engine only reads from it; records feed
// cart and order snapshots as opaque inputs.
package dummyjson

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"kirana/models"
)

const DefaultBaseURL = "https://dummyjson.com"

type Client struct {
	base string
	http *http.Client
}

func NewClient(base string) *Client {
	if base == "" {
		base = DefaultBaseURL
	}
	return &Client{
		base: base,
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) fetchPage(ctx context.Context, u string) models.CatalogPage {
	empty := models.CatalogPage{Products: []models.CatalogProduct{}}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		log.Println("dummyjson: bad request:", err)
		return empty
	}
	resp, err := c.http.Do(req)
	if err != nil {
		log.Println("dummyjson: fetch failed:", err)
		return empty
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Println("dummyjson: unexpected status:", resp.Status)
		return empty
	}

	var page models.CatalogPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		log.Println("dummyjson: decode failed:", err)
		return empty
	}
	if page.Products == nil {
		page.Products = []models.CatalogProduct{}
	}
	return page
}

// List returns one page of the catalog. Failures degrade to an empty page
// so the shopper view renders instead of crashing.
func (c *Client) List(ctx context.Context, limit, skip int) models.CatalogPage {
	u := fmt.Sprintf("%s/products?limit=%d&skip=%d", c.base, limit, skip)
	return c.fetchPage(ctx, u)
}

// Search returns one page of free-text search results.
func (c *Client) Search(ctx context.Context, query string, limit, skip int) models.CatalogPage {
	u := fmt.Sprintf("%s/products/search?q=%s&limit=%d&skip=%d",
		c.base, url.QueryEscape(query), limit, skip)
	return c.fetchPage(ctx, u)
}

// Get returns a single catalog record.
func (c *Client) Get(ctx context.Context, id int) (models.CatalogProduct, error) {
	u := c.base + "/products/" + strconv.Itoa(id)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return models.CatalogProduct{}, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return models.CatalogProduct{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.CatalogProduct{}, fmt.Errorf("catalog fetch: %s", resp.Status)
	}

	var p models.CatalogProduct
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return models.CatalogProduct{}, err
	}
	return p, nil
}
