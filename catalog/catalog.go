// Package catalog holds the model catalog shown during model selection and
// the search/tag/license filter applied to it.
package catalog

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"

	"github.com/okailora/okailora/pkg/sdk"
)

const (
	// AllLicenses disables the license filter.
	AllLicenses = "all"

	deploymentLicense   = "Proprietary"
	deploymentDownloads = "-"
	customTag           = "custom"
)

var ErrModelNotFound = errors.New("model not found")

type Model struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Downloads   string   `json:"downloads"`
	Tags        []string `json:"tags"`
	License     string   `json:"license"`
	IsOurs      bool     `json:"is_ours"`
}

// Lister is the part of the API client the catalog refreshes from.
type Lister interface {
	ListDeployments(ctx context.Context) ([]sdk.Deployment, error)
}

// Catalog is safe for concurrent use. Models it returns must not be mutated.
type Catalog struct {
	mu     sync.RWMutex
	ours   []Model
	others []Model
}

func New() *Catalog {
	return &Catalog{
		ours:   OurModels(),
		others: HuggingFaceModels(),
	}
}

// Refresh replaces the first-party models with the remote deployments.
// On error, or when the listing is empty, the current list is kept and the
// error (if any) is returned for the caller to log.
func (c *Catalog) Refresh(ctx context.Context, l Lister) error {
	ds, err := l.ListDeployments(ctx)
	if err != nil {
		return err
	}
	if len(ds) == 0 {
		return nil
	}

	models := make([]Model, 0, len(ds))
	for _, d := range ds {
		if d.ID == "" {
			continue
		}
		models = append(models, FromDeployment(d))
	}
	if len(models) == 0 {
		return nil
	}

	c.mu.Lock()
	c.ours = models
	c.mu.Unlock()

	return nil
}

// FromDeployment maps a platform deployment onto a catalog entry.
func FromDeployment(d sdk.Deployment) Model {
	desc := d.Description
	if desc == "" {
		desc = d.Type + " deployment"
	}

	tags := []string{customTag}
	if d.Type != "" {
		tags = []string{d.Type, customTag}
	}

	return Model{
		ID:          d.ID,
		Name:        d.ID,
		Description: desc,
		Downloads:   deploymentDownloads,
		Tags:        tags,
		License:     deploymentLicense,
		IsOurs:      true,
	}
}

// Models returns first-party models followed by third-party ones.
func (c *Catalog) Models() []Model {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return slices.Concat(c.ours, c.others)
}

func (c *Catalog) Get(id string) (Model, error) {
	for _, m := range c.Models() {
		if m.ID == id {
			return m, nil
		}
	}

	return Model{}, ErrModelNotFound
}

// Filter returns the models matching f, in catalog order.
func (c *Catalog) Filter(f Filter) []Model {
	var res []Model
	for _, m := range c.Models() {
		if f.Match(m) {
			res = append(res, m)
		}
	}

	return res
}

// Tags returns the sorted set of tags across the catalog.
func (c *Catalog) Tags() []string {
	return TagsOf(c.Models())
}

// Licenses returns the sorted set of licenses across the catalog.
func (c *Catalog) Licenses() []string {
	return LicensesOf(c.Models())
}

func TagsOf(models []Model) []string {
	var tags []string
	for _, m := range models {
		tags = append(tags, m.Tags...)
	}
	slices.Sort(tags)

	return slices.Compact(tags)
}

func LicensesOf(models []Model) []string {
	var licenses []string
	for _, m := range models {
		licenses = append(licenses, m.License)
	}
	slices.Sort(licenses)

	return slices.Compact(licenses)
}

type Filter struct {
	Search  string   `json:"search,omitempty"`
	Tags    []string `json:"tags,omitempty"`
	License string   `json:"license,omitempty"`
}

// Match reports whether m passes all three predicates: case-insensitive
// substring search over name, description and tags; any-of tag
// intersection; exact license.
func (f Filter) Match(m Model) bool {
	return f.matchSearch(m) && f.matchTags(m) && f.matchLicense(m)
}

func (f Filter) matchSearch(m Model) bool {
	q := strings.ToLower(f.Search)
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(m.Name), q) || strings.Contains(strings.ToLower(m.Description), q) {
		return true
	}

	return slices.ContainsFunc(m.Tags, func(t string) bool {
		return strings.Contains(strings.ToLower(t), q)
	})
}

func (f Filter) matchTags(m Model) bool {
	if len(f.Tags) == 0 {
		return true
	}

	return slices.ContainsFunc(f.Tags, func(t string) bool {
		return slices.Contains(m.Tags, t)
	})
}

func (f Filter) matchLicense(m Model) bool {
	if f.License == "" || f.License == AllLicenses {
		return true
	}

	return m.License == f.License
}

// ModelTypeFor derives the training task type from a model's tags and name.
func ModelTypeFor(m Model) sdk.ModelType {
	name := strings.ToLower(m.Name)
	switch {
	case slices.Contains(m.Tags, "bert"), slices.Contains(m.Tags, "classification"), strings.Contains(name, "clinical"):
		return sdk.Classification
	case slices.Contains(m.Tags, "segmentation"), strings.Contains(name, "segment"):
		return sdk.Segmentation
	case slices.Contains(m.Tags, "bbox"), strings.Contains(name, "detection"):
		return sdk.BBox
	default:
		return sdk.Generation
	}
}
