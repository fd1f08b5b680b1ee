package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/chollosync/store"
)

type fakeImages struct {
	hosted   string
	failures int
	calls    int
}

func (f *fakeImages) Rehost(srcURL string) string {
	f.calls++
	if f.failures > 0 {
		f.failures--
		return ""
	}
	return f.hosted
}

func newTestProvisioner(st Store, images ImageHoster) *Provisioner {
	return NewProvisioner(st, images, 100, 3, 0)
}

func TestProvisionCreatesBrandAndModel(t *testing.T) {
	st := newFakeStore()
	images := &fakeImages{hosted: "https://img.example.com/h.jpg"}
	p := newTestProvisioner(st, images)
	require.NoError(t, p.Load())

	parentID, childID, imageURL, err := p.Provision("Xiaomi", "Xiaomi 17 Pro Max", "https://cdn.example.com/x.jpg")
	require.NoError(t, err)

	require.Len(t, st.createdCategories, 2)
	assert.Equal(t, "Xiaomi", st.createdCategories[0].Name)
	assert.Zero(t, st.createdCategories[0].Parent, "brand nodes live at the root")
	assert.Equal(t, "Xiaomi 17 Pro Max", st.createdCategories[1].Name)
	assert.Equal(t, parentID, st.createdCategories[1].Parent)
	assert.NotZero(t, childID)
	assert.Equal(t, "https://img.example.com/h.jpg", imageURL)
}

func TestProvisionCacheConsistency(t *testing.T) {
	st := newFakeStore()
	p := newTestProvisioner(st, &fakeImages{hosted: "https://img.example.com/h.jpg"})
	require.NoError(t, p.Load())

	p1, c1, _, err := p.Provision("Xiaomi", "Xiaomi 17", "https://cdn.example.com/x.jpg")
	require.NoError(t, err)
	p2, c2, _, err := p.Provision("Xiaomi", "Xiaomi 17", "https://cdn.example.com/x.jpg")
	require.NoError(t, err)

	assert.Equal(t, p1, p2)
	assert.Equal(t, c1, c2)
	assert.Len(t, st.createdCategories, 2, "repeat provisioning must not create again")
}

func TestProvisionReusesExistingImage(t *testing.T) {
	st := newFakeStore()
	st.categories = []store.Category{
		{ID: 10, Name: "Xiaomi", Parent: 0},
		{ID: 11, Name: "xiaomi 17", Parent: 10, Image: &store.Image{Src: "https://img.example.com/old.jpg"}},
	}
	images := &fakeImages{hosted: "https://img.example.com/new.jpg"}
	p := newTestProvisioner(st, images)
	require.NoError(t, p.Load())

	parentID, childID, imageURL, err := p.Provision("XIAOMI", "Xiaomi 17", "https://cdn.example.com/x.jpg")
	require.NoError(t, err)

	assert.Equal(t, int64(10), parentID, "lookup is case-insensitive")
	assert.Equal(t, int64(11), childID)
	assert.Equal(t, "https://img.example.com/old.jpg", imageURL, "existing images are never re-uploaded")
	assert.Zero(t, images.calls)
	assert.Empty(t, st.createdCategories)
}

func TestProvisionBackfillsMissingImage(t *testing.T) {
	st := newFakeStore()
	st.categories = []store.Category{
		{ID: 10, Name: "Xiaomi", Parent: 0},
		{ID: 11, Name: "Xiaomi 17", Parent: 10},
	}
	p := newTestProvisioner(st, &fakeImages{hosted: "https://img.example.com/h.jpg"})
	require.NoError(t, p.Load())

	_, _, imageURL, err := p.Provision("Xiaomi", "Xiaomi 17", "https://cdn.example.com/x.jpg")
	require.NoError(t, err)

	assert.Equal(t, "https://img.example.com/h.jpg", imageURL)
	require.Len(t, st.updatedCategories[11], 1)
	assert.Equal(t, "https://img.example.com/h.jpg", st.updatedCategories[11][0].Image.Src)
}

func TestProvisionImageRetryThenSuccess(t *testing.T) {
	st := newFakeStore()
	images := &fakeImages{hosted: "https://img.example.com/h.jpg", failures: 2}
	p := newTestProvisioner(st, images)
	require.NoError(t, p.Load())

	_, _, imageURL, err := p.Provision("Xiaomi", "Xiaomi 17", "https://cdn.example.com/x.jpg")
	require.NoError(t, err)

	assert.Equal(t, "https://img.example.com/h.jpg", imageURL)
	assert.Equal(t, 3, images.calls)
}

func TestProvisionImageExhaustionDegrades(t *testing.T) {
	st := newFakeStore()
	images := &fakeImages{failures: 99}
	p := newTestProvisioner(st, images)
	require.NoError(t, p.Load())

	_, _, imageURL, err := p.Provision("Xiaomi", "Xiaomi 17", "https://cdn.example.com/x.jpg")
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.example.com/x.jpg", imageURL,
		"exhausted re-hosting degrades to the source URL")
	assert.Equal(t, 3, images.calls)
}

func TestProvisionLoadPaginates(t *testing.T) {
	st := newFakeStore()
	st.categories = []store.Category{
		{ID: 1, Name: "Xiaomi"}, {ID: 2, Name: "Samsung"}, {ID: 3, Name: "Google"},
	}
	p := NewProvisioner(st, nil, 2, 3, 0)
	require.NoError(t, p.Load())

	assert.Equal(t, 2, st.categoryCalls)
	_, _, _, err := p.Provision("Google", "Google Pixel 10", "")
	require.NoError(t, err)
	require.Len(t, st.createdCategories, 1, "brand already cached from page two")
	assert.Equal(t, "Google Pixel 10", st.createdCategories[0].Name)
}
