package store

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "ck_test", "cs_test", 5*time.Second)
}

func TestListProductsSendsAuthAndPagination(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		require.True(t, ok, "expected basic auth")
		assert.Equal(t, "ck_test", user)
		assert.Equal(t, "cs_test", pass)
		assert.Equal(t, "/wp-json/wc/v3/products", r.URL.Path)
		assert.Equal(t, "3", r.URL.Query().Get("page"))
		assert.Equal(t, "100", r.URL.Query().Get("per_page"))
		assert.Equal(t, "date", r.URL.Query().Get("orderby"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))

		_ = json.NewEncoder(w).Encode([]Product{{ID: 7, Name: "Xiaomi 17"}})
	})

	products, err := client.ListProducts(3, 100, map[string]string{"orderby": "date"})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, int64(7), products[0].ID)
	assert.Equal(t, "Xiaomi 17", products[0].Name)
}

func TestCreateProductPostsJSON(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/wp-json/wc/v3/products", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var input ProductInput
		require.NoError(t, json.NewDecoder(r.Body).Decode(&input))
		assert.Equal(t, "Vivo IQ90 5G", input.Name)
		assert.Equal(t, "external", input.Type)

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(Product{ID: 42, Name: input.Name, Permalink: "https://tienda.example.com/producto/vivo-iq90-5g"})
	})

	product, err := client.CreateProduct(ProductInput{Name: "Vivo IQ90 5G", Type: "external"})
	require.NoError(t, err)
	assert.Equal(t, int64(42), product.ID)
	assert.NotEmpty(t, product.Permalink)
}

func TestUpdateProductHitsEntryPath(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/wp-json/wc/v3/products/42", r.URL.Path)
		_ = json.NewEncoder(w).Encode(Product{ID: 42, SalePrice: "749"})
	})

	product, err := client.UpdateProduct(42, ProductInput{SalePrice: "749"})
	require.NoError(t, err)
	assert.Equal(t, "749", product.SalePrice)
}

func TestDeleteProductForce(t *testing.T) {
	called := false
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/wp-json/wc/v3/products/42", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("force"))
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, client.DeleteProduct(42, true))
	assert.True(t, called)
}

func TestNon2xxIsError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"code":"woocommerce_rest_cannot_view"}`, http.StatusInternalServerError)
	})

	_, err := client.ListProducts(1, 100, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestCategoriesRoundTrip(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet:
			assert.Equal(t, "/wp-json/wc/v3/products/categories", r.URL.Path)
			_ = json.NewEncoder(w).Encode([]Category{{ID: 1, Name: "Xiaomi"}})
		case r.Method == http.MethodPost:
			var input CategoryInput
			require.NoError(t, json.NewDecoder(r.Body).Decode(&input))
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(Category{ID: 9, Name: input.Name, Parent: input.Parent})
		}
	})

	categories, err := client.ListCategories(1, 100)
	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Equal(t, "Xiaomi", categories[0].Name)

	created, err := client.CreateCategory(CategoryInput{Name: "Xiaomi 17 Pro Max", Parent: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(9), created.ID)
	assert.Equal(t, int64(1), created.Parent)
}

func TestProductMetaValue(t *testing.T) {
	p := Product{MetaData: []Meta{
		{Key: "_fuente", Value: "Amazon"},
		{Key: "_ram", Value: "12GB"},
	}}

	assert.Equal(t, "Amazon", p.MetaValue("_fuente"))
	assert.Equal(t, "", p.MetaValue("_cupon"))
}
