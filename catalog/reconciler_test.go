package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/chollosync/models"
)

type stubShortener struct {
	short string
	calls []string
}

func (s *stubShortener) Shorten(longURL string) string {
	s.calls = append(s.calls, longURL)
	return s.short
}

func newTestReconciler(st Store, opts Options) *Reconciler {
	p := NewProvisioner(st, nil, 100, 1, 0)
	_ = p.Load()
	return NewReconciler(st, p, nil, opts)
}

func testOffer(name string, price, list float64) models.Offer {
	return models.Offer{
		Name:           name,
		Brand:          "Xiaomi",
		Source:         models.SourceAmazon,
		RAM:            "12GB",
		Storage:        "512GB",
		Price:          price,
		ListPrice:      list,
		ShippingOrigin: models.OriginSpain,
		Coupon:         models.CouponNone,
		CanonicalURL:   "https://www.amazon.es/dp/B0TEST1234",
		AffiliateURL:   "https://www.amazon.es/dp/B0TEST1234?tag=chollo-21",
		ImageURL:       "https://cdn.example.com/x.jpg",
	}
}

func testEntry(id int64, name string, price, list float64) models.LocalEntry {
	return models.LocalEntry{
		ID:      id,
		Name:    name,
		Source:  models.SourceAmazon,
		RAM:     "12GB",
		Storage: "512GB",
		Price:   price, ListPrice: list,
	}
}

func TestReconcileExistingWithinTolerance(t *testing.T) {
	st := newFakeStore()
	r := newTestReconciler(st, Options{})

	summary := r.Reconcile(
		[]models.Offer{testOffer("Xiaomi 17", 799, 959)},
		[]models.LocalEntry{testEntry(1, "Xiaomi 17", 799.004, 959)},
	)

	assert.Equal(t, 1, summary.Existing)
	assert.Empty(t, summary.Updated)
	assert.Empty(t, st.deleted)
	assert.Zero(t, st.updateCount(), "matching entries issue no remote calls")
}

func TestReconcileUpdatesDriftedPrices(t *testing.T) {
	st := newFakeStore()
	r := newTestReconciler(st, Options{})

	summary := r.Reconcile(
		[]models.Offer{testOffer("Xiaomi 17", 749, 959)},
		[]models.LocalEntry{testEntry(1, "Xiaomi 17", 799, 959)},
	)

	require.Len(t, summary.Updated, 1)
	assert.Contains(t, summary.Updated[0].Diff, "799 → 749")
	require.Len(t, st.updated[1], 1)
	assert.Equal(t, "749", st.updated[1][0].SalePrice)
	assert.Equal(t, "959", st.updated[1][0].RegularPrice)
}

func TestReconcileDeletesUnmatched(t *testing.T) {
	st := newFakeStore()
	r := newTestReconciler(st, Options{})

	summary := r.Reconcile(
		[]models.Offer{testOffer("Xiaomi 17", 799, 959)},
		[]models.LocalEntry{
			testEntry(1, "Xiaomi 17", 799, 959),
			testEntry(2, "Vivo X200", 649, 779),
		},
	)

	assert.Equal(t, []string{"Vivo X200"}, summary.Deleted)
	assert.Equal(t, []int64{2}, summary.DeletedIDs)
	assert.Equal(t, []int64{2}, st.deleted)
}

func TestReconcileRepeatedOfferCreatesOnce(t *testing.T) {
	st := newFakeStore()
	r := newTestReconciler(st, Options{})

	offer := testOffer("Xiaomi 17", 799, 959)
	summary := r.Reconcile([]models.Offer{offer, offer}, nil)

	assert.Equal(t, []string{"Xiaomi 17"}, summary.Created)
	require.Len(t, st.created, 1, "a twice-scraped offer yields one entry")
	assert.Equal(t, 1, summary.Existing)
}

func TestReconcileGraceProtectsYoungEntries(t *testing.T) {
	st := newFakeStore()
	r := newTestReconciler(st, Options{DeleteGraceDays: 5})

	young := testEntry(2, "Vivo X200", 649, 779)
	young.CreatedAt = time.Now().Add(-24 * time.Hour)
	old := testEntry(3, "Poco F7", 349, 419)
	old.CreatedAt = time.Now().Add(-10 * 24 * time.Hour)

	summary := r.Reconcile(
		[]models.Offer{testOffer("Xiaomi 17", 799, 959)},
		[]models.LocalEntry{testEntry(1, "Xiaomi 17", 799, 959), young, old},
	)

	assert.Equal(t, []string{"Poco F7"}, summary.Deleted)
	assert.Equal(t, []int64{3}, st.deleted, "entries inside the grace window survive")
}

func TestReconcileEmptyOfferListSkipsDestruction(t *testing.T) {
	st := newFakeStore()
	r := newTestReconciler(st, Options{})

	summary := r.Reconcile(nil, []models.LocalEntry{
		testEntry(1, "Xiaomi 17", 799, 959),
		testEntry(2, "Vivo X200", 649, 779),
	})

	assert.True(t, summary.SnapshotEmpty)
	assert.Empty(t, st.deleted)
	assert.Zero(t, st.updateCount())
	created, updated, existing, deleted := summary.Counts()
	assert.Zero(t, created+updated+existing+deleted)
}

func TestReconcileCreatesUnmatchedOffer(t *testing.T) {
	st := newFakeStore()
	r := newTestReconciler(st, Options{})

	summary := r.Reconcile([]models.Offer{testOffer("Xiaomi 17", 799, 959)}, nil)

	assert.Equal(t, []string{"Xiaomi 17"}, summary.Created)
	require.Len(t, st.created, 1)

	input := st.created[0]
	assert.Equal(t, "external", input.Type)
	assert.Equal(t, "959", input.RegularPrice)
	assert.Equal(t, "799", input.SalePrice)
	assert.Equal(t, "https://www.amazon.es/dp/B0TEST1234?tag=chollo-21", input.ExternalURL)
	require.Len(t, input.Categories, 2, "brand and model categories attached")
	require.Len(t, st.createdCategories, 2)

	meta := map[string]string{}
	for _, m := range input.MetaData {
		meta[m.Key] = m.Value
	}
	assert.Equal(t, models.ProvenanceValue, meta[models.MetaProvenance])
	assert.Equal(t, models.SourceAmazon, meta[models.MetaSource])
	assert.Equal(t, "España", meta[models.MetaOriginLabel])
	assert.Equal(t, "12GB", meta[models.MetaRAM])
}

func TestReconcileCreateRetriesTransientFailures(t *testing.T) {
	st := newFakeStore()
	st.createFailures = 2
	r := newTestReconciler(st, Options{CreateAttempts: 5})

	summary := r.Reconcile([]models.Offer{testOffer("Xiaomi 17", 799, 959)}, nil)

	assert.Equal(t, 3, st.createCalls, "two failures then success")
	assert.Equal(t, []string{"Xiaomi 17"}, summary.Created)
	assert.Zero(t, summary.Failed)
}

func TestReconcileCreateExhaustionDropsOffer(t *testing.T) {
	st := newFakeStore()
	st.createFailures = 99
	r := newTestReconciler(st, Options{CreateAttempts: 3})

	summary := r.Reconcile([]models.Offer{testOffer("Xiaomi 17", 799, 959)}, nil)

	assert.Equal(t, 3, st.createCalls)
	assert.Empty(t, summary.Created)
	assert.Equal(t, 1, summary.Failed)
}

func TestReconcileShortensEntryPermalink(t *testing.T) {
	st := newFakeStore()
	short := &stubShortener{short: "https://corto.es/p1"}
	p := NewProvisioner(st, nil, 100, 1, 0)
	require.NoError(t, p.Load())
	r := NewReconciler(st, p, short, Options{})

	r.Reconcile([]models.Offer{testOffer("Xiaomi 17", 799, 959)}, nil)

	require.Len(t, short.calls, 1)
	assert.Contains(t, short.calls[0], "store.example.com/producto/")

	var persisted bool
	for _, inputs := range st.updated {
		for _, input := range inputs {
			for _, m := range input.MetaData {
				if m.Key == models.MetaEntryShortURL && m.Value == "https://corto.es/p1" {
					persisted = true
				}
			}
		}
	}
	assert.True(t, persisted, "short entry link stored as metadata")
}

func TestReconcileSlugCorrectionAvoidsDuplicate(t *testing.T) {
	st := newFakeStore()
	r := newTestReconciler(st, Options{})

	matching := testOffer("Xiaomi 17", 799, 959)
	matching.Source = models.SourceAliExpress

	duplicate := testOffer("Xiaomi 17 Oferta", 799, 959)
	duplicate.Source = models.SourceAliExpress
	duplicate.ExpandedURL = "https://es.aliexpress.com/item/Xiaomi-17/1005001234.html"

	entry := testEntry(1, "Xiaomi 17", 799, 959)
	entry.Source = models.SourceAliExpress

	summary := r.Reconcile([]models.Offer{matching, duplicate}, []models.LocalEntry{entry})

	// The duplicate's raw name matches nothing, but its slug-corrected
	// name collides with the existing entry: no second create.
	assert.Empty(t, summary.Created)
	assert.Empty(t, st.created)
	assert.Empty(t, st.deleted)
	assert.Equal(t, 2, summary.Existing)
}

func TestReconcileAtMostOneMatchPerEntry(t *testing.T) {
	st := newFakeStore()
	r := newTestReconciler(st, Options{})

	summary := r.Reconcile(
		[]models.Offer{testOffer("Xiaomi 17", 799, 959)},
		[]models.LocalEntry{
			testEntry(1, "Xiaomi 17", 799, 959),
			testEntry(2, "Xiaomi 17", 799, 959),
		},
	)

	assert.Equal(t, 1, summary.Existing, "one offer matches at most one entry")
	assert.Equal(t, []int64{2}, st.deleted)
}

func TestReconcileDryRunMutatesNothing(t *testing.T) {
	st := newFakeStore()
	r := newTestReconciler(st, Options{DryRun: true})

	summary := r.Reconcile(
		[]models.Offer{
			testOffer("Xiaomi 17", 749, 959),
			testOffer("Poco F7", 349, 419),
		},
		[]models.LocalEntry{
			testEntry(1, "Xiaomi 17", 799, 959),
			testEntry(2, "Vivo X200", 649, 779),
		},
	)

	assert.True(t, summary.DryRun)
	assert.Len(t, summary.Updated, 1)
	assert.Len(t, summary.Deleted, 1)
	assert.Len(t, summary.Created, 1)

	assert.Empty(t, st.created)
	assert.Empty(t, st.deleted)
	assert.Zero(t, st.updateCount())
	assert.Empty(t, st.createdCategories, "dry run provisions no categories")
}

func TestReconcilePassIDIsStamped(t *testing.T) {
	st := newFakeStore()
	r := newTestReconciler(st, Options{})

	s1 := r.Reconcile([]models.Offer{testOffer("Xiaomi 17", 799, 959)}, nil)
	s2 := r.Reconcile([]models.Offer{testOffer("Xiaomi 17", 799, 959)}, nil)

	assert.NotEmpty(t, s1.PassID)
	assert.NotEqual(t, s1.PassID, s2.PassID)
}
