// ABOUTME: Remote store contract consumed by the reconciliation core
// ABOUTME: Narrow interface over the catalog client so tests can fake it
package catalog

import "github.com/harperreed/chollosync/store"

// Store is the slice of the remote catalog API the reconciliation core
// needs. *store.Client satisfies it.
type Store interface {
	ListProducts(page, perPage int, filters map[string]string) ([]store.Product, error)
	CreateProduct(input store.ProductInput) (*store.Product, error)
	UpdateProduct(id int64, input store.ProductInput) (*store.Product, error)
	DeleteProduct(id int64, force bool) error
	ListCategories(page, perPage int) ([]store.Category, error)
	CreateCategory(input store.CategoryInput) (*store.Category, error)
	UpdateCategory(id int64, input store.CategoryInput) (*store.Category, error)
}
