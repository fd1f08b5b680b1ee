// ABOUTME: Wire types for the remote catalog store REST API
// ABOUTME: Products, categories and metadata entries as serialized on the wire
package store

// Meta is one metadata entry attached to a product. The key/value schema
// is read by storefront tooling and must be preserved field for field.
type Meta struct {
	ID    int64  `json:"id,omitempty"`
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Image is a product or category image reference.
type Image struct {
	ID  int64  `json:"id,omitempty"`
	Src string `json:"src"`
}

// CategoryRef links a product to a category term.
type CategoryRef struct {
	ID int64 `json:"id"`
}

// Product is a catalog entry as returned by the store. Prices travel as
// strings on the wire.
type Product struct {
	ID           int64         `json:"id"`
	Name         string        `json:"name"`
	Type         string        `json:"type,omitempty"`
	Permalink    string        `json:"permalink,omitempty"`
	RegularPrice string        `json:"regular_price,omitempty"`
	SalePrice    string        `json:"sale_price,omitempty"`
	ExternalURL  string        `json:"external_url,omitempty"`
	ButtonText   string        `json:"button_text,omitempty"`
	DateCreated  string        `json:"date_created,omitempty"`
	Categories   []CategoryRef `json:"categories,omitempty"`
	Images       []Image       `json:"images,omitempty"`
	MetaData     []Meta        `json:"meta_data,omitempty"`
}

// MetaValue returns the value for a metadata key, or "" when absent.
func (p *Product) MetaValue(key string) string {
	for _, m := range p.MetaData {
		if m.Key == key {
			return m.Value
		}
	}
	return ""
}

// ProductInput carries the writable fields for create/update calls.
// Nil-able pointers distinguish "leave alone" from "set empty".
type ProductInput struct {
	Name         string        `json:"name,omitempty"`
	Type         string        `json:"type,omitempty"`
	RegularPrice string        `json:"regular_price,omitempty"`
	SalePrice    string        `json:"sale_price,omitempty"`
	ExternalURL  string        `json:"external_url,omitempty"`
	ButtonText   string        `json:"button_text,omitempty"`
	Categories   []CategoryRef `json:"categories,omitempty"`
	Images       []Image       `json:"images,omitempty"`
	MetaData     []Meta        `json:"meta_data,omitempty"`
}

// Category is a category term as returned by the store.
type Category struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Parent int64  `json:"parent"`
	Image  *Image `json:"image,omitempty"`
	Count  int    `json:"count,omitempty"`
}

// CategoryInput carries the writable fields for category mutations.
type CategoryInput struct {
	Name   string `json:"name,omitempty"`
	Parent int64  `json:"parent,omitempty"`
	Image  *Image `json:"image,omitempty"`
}
