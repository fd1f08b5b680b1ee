// ABOUTME: Data models for the offer catalog sync engine
// ABOUTME: Defines RawOffer, Offer, LocalEntry, MatchKey, CategoryNode and run summaries
package models

import (
	"fmt"
	"strings"
	"time"
)

// RawOffer is one scraped listing as delivered by the feed. It lives only
// until canonicalization; nothing persists it.
type RawOffer struct {
	Name       string `json:"name"`
	RAM        string `json:"ram,omitempty"`
	Storage    string `json:"storage,omitempty"`
	PriceText  string `json:"price,omitempty"`
	StrikeText string `json:"strike_price,omitempty"`
	Source     string `json:"source,omitempty"`
	Link       string `json:"link"`
	ImageURL   string `json:"image,omitempty"`
	Body       string `json:"body,omitempty"`
}

// Offer is a canonicalized offer: normalized name, resolved source,
// stable canonical/affiliate URLs and integer-unit prices. It lives for
// the duration of one reconciliation pass.
type Offer struct {
	Name           string
	Brand          string
	Source         string
	RAM            string
	Storage        string
	Price          float64
	ListPrice      float64
	ShippingOrigin string
	Coupon         string
	RawLink        string
	ExpandedURL    string
	CanonicalURL   string
	AffiliateURL   string
	ShortURL       string
	ImageURL       string
}

// LocalEntry is a catalog record read back from the remote store,
// projected down to the fields the reconciler needs.
type LocalEntry struct {
	ID             int64
	Name           string
	Price          float64
	ListPrice      float64
	Source         string
	RAM            string
	Storage        string
	ShippingOrigin string
	Coupon         string
	RawLink        string
	ExpandedURL    string
	CanonicalURL   string
	AffiliateURL   string
	ShortURL       string
	Permalink      string
	CreatedAt      time.Time
}

// MatchKey pairs an Offer with a LocalEntry. Case-insensitive and
// whitespace-normalized; at most one entry and one offer may be matched
// to each other per pass.
type MatchKey struct {
	Name    string
	Source  string
	RAM     string
	Storage string
}

// NewMatchKey builds a normalized MatchKey.
func NewMatchKey(name, source, ram, storage string) MatchKey {
	return MatchKey{
		Name:    normalizeKeyPart(name),
		Source:  normalizeKeyPart(source),
		RAM:     normalizeKeyPart(ram),
		Storage: normalizeKeyPart(storage),
	}
}

// Key returns the offer's MatchKey.
func (o *Offer) Key() MatchKey {
	return NewMatchKey(o.Name, o.Source, o.RAM, o.Storage)
}

// Key returns the entry's MatchKey.
func (e *LocalEntry) Key() MatchKey {
	return NewMatchKey(e.Name, e.Source, e.RAM, e.Storage)
}

func normalizeKeyPart(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// CategoryNode is one node of the two-level brand/model category tree.
// Brand nodes have Parent == 0. The engine never deletes categories.
type CategoryNode struct {
	ID       int64
	Name     string
	Parent   int64
	ImageURL string
}

// Shipping origin codes. The set is fixed; Unknown means no rule matched.
const (
	OriginSpain   = "es"
	OriginChina   = "cn"
	OriginEurope  = "eu"
	OriginUnknown = "unknown"
)

// OriginLabel returns the storefront-facing label for an origin code.
func OriginLabel(code string) string {
	switch code {
	case OriginSpain:
		return "España"
	case OriginChina:
		return "China"
	case OriginEurope:
		return "Europa"
	default:
		return "—"
	}
}

// Source labels as resolved after URL expansion.
const (
	SourceAmazon     = "Amazon"
	SourceAliExpress = "AliExpress"
	SourceMiravia    = "Miravia"
	SourceMediaMarkt = "MediaMarkt"
)

// Metadata keys persisted on every catalog entry. Storefront tooling
// reads these; the schema must be preserved field for field.
const (
	MetaProvenance   = "_chollosync_origin"
	MetaSource       = "_fuente"
	MetaRAM          = "_ram"
	MetaStorage      = "_almacenamiento"
	MetaOrigin       = "_envio"
	MetaOriginLabel  = "_envio_label"
	MetaRawURL       = "_url_original"
	MetaExpandedURL  = "_url_expandida"
	MetaCanonicalURL = "_url_canonica"
	MetaAffiliateURL = "_url_afiliado"
	MetaShortURL     = "_url_corta"
	MetaCoupon       = "_cupon"
	MetaCreatedDate  = "_fecha_alta"

	// MetaEntryShortURL is a shortened link to the entry's own catalog
	// page, distinct from the shortened affiliate link.
	MetaEntryShortURL = "_permalink_corto"
)

// ProvenanceValue marks entries created by this engine.
const ProvenanceValue = "chollosync"

// CouponNone is stored when no coupon code could be extracted.
const CouponNone = "No necesario"

// Change records one applied update, with a human-readable diff.
type Change struct {
	EntryID int64
	Name    string
	Diff    string
}

// Summary is the structured result of one reconciliation pass. It is
// returned by the reconciler, not accumulated in globals.
type Summary struct {
	PassID    string
	StartedAt time.Time
	Duration  time.Duration
	DryRun    bool

	Created  []string
	Updated  []Change
	Existing int
	Failed   int

	// Deleted and DeletedIDs travel in step: names for reporting, IDs
	// for exact bookkeeping (names are not unique across memory specs).
	Deleted    []string
	DeletedIDs []int64

	// SnapshotEmpty is set when the remote offer list was empty and the
	// pass degraded to no-destructive-action mode.
	SnapshotEmpty bool
}

// Counts returns (created, updated, existing, deleted) for quick logging.
func (s *Summary) Counts() (int, int, int, int) {
	return len(s.Created), len(s.Updated), s.Existing, len(s.Deleted)
}

// String renders a one-line digest of the pass.
func (s *Summary) String() string {
	c, u, e, d := s.Counts()
	return fmt.Sprintf("pass=%s created=%d updated=%d existing=%d deleted=%d failed=%d duration=%s",
		s.PassID, c, u, e, d, s.Failed, s.Duration.Round(time.Millisecond))
}

// BackfillSummary is the result of the fill-only secondary pass.
type BackfillSummary struct {
	Checked int
	Filled  []string
	Errors  int
}
