// ABOUTME: Category provisioner for the two-level brand/model tree
// ABOUTME: Cache-first get-or-create with a bounded image re-hosting retry loop
package catalog

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/harperreed/chollosync/models"
	"github.com/harperreed/chollosync/store"
)

// ImageHoster re-hosts a source image URL. "" means the attempt failed.
type ImageHoster interface {
	Rehost(srcURL string) string
}

// Provisioner resolves (brand, model) pairs to category ids, creating
// tree nodes and backfilling images as needed. The cache is loaded once
// per pass and mutated only by this type; lookups never hit the store
// after a node is cached. Categories are never deleted.
type Provisioner struct {
	store  Store
	images ImageHoster

	pageSize      int
	imageAttempts int
	imageDelay    time.Duration

	// cache keys are "<parentID>/<lowercase name>".
	cache map[string]*models.CategoryNode
}

// NewProvisioner creates a category provisioner. images may be nil.
func NewProvisioner(st Store, images ImageHoster, pageSize, imageAttempts int, imageDelay time.Duration) *Provisioner {
	if pageSize <= 0 {
		pageSize = 100
	}
	if imageAttempts <= 0 {
		imageAttempts = 5
	}
	return &Provisioner{
		store:         st,
		images:        images,
		pageSize:      pageSize,
		imageAttempts: imageAttempts,
		imageDelay:    imageDelay,
		cache:         make(map[string]*models.CategoryNode),
	}
}

// Load paginates the remote category list into the cache. Must run once
// before the first Provision call of a pass.
func (p *Provisioner) Load() error {
	for page := 1; ; page++ {
		categories, err := p.store.ListCategories(page, p.pageSize)
		if err != nil {
			return fmt.Errorf("failed to load categories page %d: %w", page, err)
		}

		for i := range categories {
			p.cacheCategory(&categories[i])
		}

		if len(categories) < p.pageSize {
			return nil
		}
	}
}

// Provision returns the brand (parent) and model (child) category ids
// for an offer, creating nodes that do not exist yet. The returned image
// URL is the child's image: an existing one is reused, otherwise the
// hint is re-hosted with bounded retries and degrades to the hint
// itself.
func (p *Provisioner) Provision(brand, fullName, imageHint string) (parentID, childID int64, imageURL string, err error) {
	parent, err := p.getOrCreate(brand, 0, "")
	if err != nil {
		return 0, 0, "", fmt.Errorf("failed to provision brand %q: %w", brand, err)
	}

	child := p.lookup(fullName, parent.ID)
	if child != nil && child.ImageURL != "" {
		return parent.ID, child.ID, child.ImageURL, nil
	}

	hosted := p.provisionImage(imageHint)

	if child == nil {
		child, err = p.getOrCreate(fullName, parent.ID, hosted)
		if err != nil {
			return 0, 0, "", fmt.Errorf("failed to provision model %q: %w", fullName, err)
		}
		return parent.ID, child.ID, child.ImageURL, nil
	}

	// Existing child without an image: backfill it in place.
	if hosted != "" {
		_, err := p.store.UpdateCategory(child.ID, store.CategoryInput{
			Image: &store.Image{Src: hosted},
		})
		if err != nil {
			log.Printf("category image backfill failed for %q: %v", fullName, err)
		} else {
			child.ImageURL = hosted
		}
	}
	return parent.ID, child.ID, child.ImageURL, nil
}

// getOrCreate returns the cached node for (name, parent), creating it
// remotely on a miss. The cache is updated before returning so repeat
// lookups in the same pass stay local.
func (p *Provisioner) getOrCreate(name string, parent int64, imageURL string) (*models.CategoryNode, error) {
	if node := p.lookup(name, parent); node != nil {
		return node, nil
	}

	input := store.CategoryInput{Name: name, Parent: parent}
	if imageURL != "" {
		input.Image = &store.Image{Src: imageURL}
	}
	created, err := p.store.CreateCategory(input)
	if err != nil {
		return nil, err
	}
	fmt.Printf("✓ Created category: %s\n", name)

	return p.cacheCategory(created), nil
}

// lookup is a case-insensitive exact-name match under one parent.
func (p *Provisioner) lookup(name string, parent int64) *models.CategoryNode {
	return p.cache[cacheKey(name, parent)]
}

func (p *Provisioner) cacheCategory(c *store.Category) *models.CategoryNode {
	node := &models.CategoryNode{
		ID:     c.ID,
		Name:   c.Name,
		Parent: c.Parent,
	}
	if c.Image != nil {
		node.ImageURL = c.Image.Src
	}
	p.cache[cacheKey(c.Name, c.Parent)] = node
	return node
}

func cacheKey(name string, parent int64) string {
	return fmt.Sprintf("%d/%s", parent, strings.ToLower(strings.TrimSpace(name)))
}

// provisionImage re-hosts the hint with bounded retries, sleeping
// between failed attempts. Exhaustion degrades to the unhosted hint
// rather than failing the pass.
func (p *Provisioner) provisionImage(hint string) string {
	if hint == "" {
		return ""
	}
	if p.images == nil {
		return hint
	}

	for attempt := 1; attempt <= p.imageAttempts; attempt++ {
		if hosted := p.images.Rehost(hint); hosted != "" {
			return hosted
		}
		if attempt < p.imageAttempts {
			log.Printf("image re-host attempt %d/%d failed for %s", attempt, p.imageAttempts, hint)
			time.Sleep(p.imageDelay)
		}
	}

	log.Printf("image re-hosting exhausted, keeping source URL %s", hint)
	return hint
}
