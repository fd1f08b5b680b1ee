// ABOUTME: HTTP client for the remote catalog store REST API
// ABOUTME: Paginated listing plus create/update/delete for products and category terms
package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
)

const apiBase = "/wp-json/wc/v3"

// Client talks to the remote catalog store. Every call carries a fixed
// request timeout; any 2xx status is success.
type Client struct {
	baseURL        string
	consumerKey    string
	consumerSecret string
	http           *http.Client
}

// NewClient creates a store client. baseURL is the site root without a
// trailing slash.
func NewClient(baseURL, consumerKey, consumerSecret string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:        baseURL,
		consumerKey:    consumerKey,
		consumerSecret: consumerSecret,
		http:           &http.Client{Timeout: timeout},
	}
}

// ListProducts returns one page of catalog entries. filters may be nil.
func (c *Client) ListProducts(page, perPage int, filters map[string]string) ([]Product, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(perPage))
	for k, v := range filters {
		q.Set(k, v)
	}

	var products []Product
	if err := c.do(http.MethodGet, "/products?"+q.Encode(), nil, &products); err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// CreateProduct creates a catalog entry and returns it with its id.
func (c *Client) CreateProduct(input ProductInput) (*Product, error) {
	var product Product
	if err := c.do(http.MethodPost, "/products", input, &product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return &product, nil
}

// UpdateProduct applies a partial update to a catalog entry.
func (c *Client) UpdateProduct(id int64, input ProductInput) (*Product, error) {
	var product Product
	path := fmt.Sprintf("/products/%d", id)
	if err := c.do(http.MethodPut, path, input, &product); err != nil {
		return nil, fmt.Errorf("failed to update product %d: %w", id, err)
	}
	return &product, nil
}

// DeleteProduct removes a catalog entry. force skips the trash bin.
func (c *Client) DeleteProduct(id int64, force bool) error {
	path := fmt.Sprintf("/products/%d?force=%t", id, force)
	if err := c.do(http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("failed to delete product %d: %w", id, err)
	}
	return nil
}

// ListCategories returns one page of category terms.
func (c *Client) ListCategories(page, perPage int) ([]Category, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(perPage))

	var categories []Category
	if err := c.do(http.MethodGet, "/products/categories?"+q.Encode(), nil, &categories); err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// CreateCategory creates a category term.
func (c *Client) CreateCategory(input CategoryInput) (*Category, error) {
	var category Category
	if err := c.do(http.MethodPost, "/products/categories", input, &category); err != nil {
		return nil, fmt.Errorf("failed to create category %q: %w", input.Name, err)
	}
	return &category, nil
}

// UpdateCategory applies a partial update to a category term.
func (c *Client) UpdateCategory(id int64, input CategoryInput) (*Category, error) {
	var category Category
	path := fmt.Sprintf("/products/categories/%d", id)
	if err := c.do(http.MethodPut, path, input, &category); err != nil {
		return nil, fmt.Errorf("failed to update category %d: %w", id, err)
	}
	return &category, nil
}

// do performs one request against the store API. A non-2xx status is an
// error; the body (if any) is decoded into out.
func (c *Client) do(method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+apiBase+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.SetBasicAuth(c.consumerKey, c.consumerSecret)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Read a little of the body for the error message, then drop it.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("store returned %d: %s", resp.StatusCode, string(snippet))
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
