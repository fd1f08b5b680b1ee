package catalog

import (
	"errors"
	"fmt"

	"github.com/harperreed/chollosync/store"
)

type fakeStore struct {
	products   []store.Product
	categories []store.Category

	created           []store.ProductInput
	updated           map[int64][]store.ProductInput
	deleted           []int64
	createdCategories []store.CategoryInput
	updatedCategories map[int64][]store.CategoryInput

	// createFailures makes the first N CreateProduct calls fail.
	createFailures int
	updateErr      error
	deleteErr      error
	listErr        error

	productCalls  int
	categoryCalls int
	createCalls   int

	nextProductID  int64
	nextCategoryID int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		updated:           make(map[int64][]store.ProductInput),
		updatedCategories: make(map[int64][]store.CategoryInput),
		nextProductID:     1000,
		nextCategoryID:    100,
	}
}

func (f *fakeStore) ListProducts(page, perPage int, filters map[string]string) ([]store.Product, error) {
	f.productCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return paginate(f.products, page, perPage), nil
}

func (f *fakeStore) CreateProduct(input store.ProductInput) (*store.Product, error) {
	f.createCalls++
	if f.createFailures > 0 {
		f.createFailures--
		return nil, errors.New("store returned 500")
	}
	f.created = append(f.created, input)
	f.nextProductID++
	return &store.Product{
		ID:        f.nextProductID,
		Name:      input.Name,
		Permalink: fmt.Sprintf("https://store.example.com/producto/%d", f.nextProductID),
	}, nil
}

func (f *fakeStore) UpdateProduct(id int64, input store.ProductInput) (*store.Product, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	f.updated[id] = append(f.updated[id], input)
	return &store.Product{ID: id}, nil
}

func (f *fakeStore) DeleteProduct(id int64, force bool) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeStore) ListCategories(page, perPage int) ([]store.Category, error) {
	f.categoryCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return paginate(f.categories, page, perPage), nil
}

func (f *fakeStore) CreateCategory(input store.CategoryInput) (*store.Category, error) {
	f.createdCategories = append(f.createdCategories, input)
	f.nextCategoryID++
	c := store.Category{
		ID:     f.nextCategoryID,
		Name:   input.Name,
		Parent: input.Parent,
		Image:  input.Image,
	}
	f.categories = append(f.categories, c)
	return &c, nil
}

func (f *fakeStore) UpdateCategory(id int64, input store.CategoryInput) (*store.Category, error) {
	f.updatedCategories[id] = append(f.updatedCategories[id], input)
	return &store.Category{ID: id}, nil
}

func (f *fakeStore) updateCount() int {
	n := 0
	for _, inputs := range f.updated {
		n += len(inputs)
	}
	return n
}

func paginate[T any](items []T, page, perPage int) []T {
	start := (page - 1) * perPage
	if start >= len(items) {
		return nil
	}
	end := start + perPage
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
