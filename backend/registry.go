package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	pkgerrors "github.com/okailora/okailora/pkg/errors"
	"github.com/okailora/okailora/pkg/sdk"
	"github.com/okailora/okailora/pkg/storage"
	"gopkg.in/yaml.v3"
)

// Registry keeps the known deployments. When it has a file path, the file
// seeds the registry and is rewritten on every change.
type Registry struct {
	mu    sync.Mutex
	store storage.Storage
	path  string
}

func NewRegistry(ctx context.Context, store storage.Storage, path string) (*Registry, error) {
	r := &Registry{
		store: store,
		path:  path,
	}
	if path == "" {
		return r, nil
	}

	f, err := os.Open(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return r, nil
	case err != nil:
		return nil, err
	}
	defer f.Close()

	ds, err := LoadDeployments(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load deployments from %s: %w", path, err)
	}
	for _, d := range ds {
		if err := r.put(ctx, d); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// LoadDeployments decodes a YAML list of deployments. Entries with an
// unknown type are rejected.
func LoadDeployments(r io.Reader) ([]Deployment, error) {
	var ds []Deployment
	if err := yaml.NewDecoder(r).Decode(&ds); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}

		return nil, err
	}
	for _, d := range ds {
		if d.ID == "" {
			return nil, pkgerrors.ErrEmptyKey
		}
		if _, err := sdk.ParseModelType(d.Type); err != nil {
			return nil, err
		}
	}

	return ds, nil
}

func (r *Registry) Get(ctx context.Context, id string) (Deployment, error) {
	v, err := r.store.Get(ctx, id)
	if err != nil {
		return Deployment{}, err
	}
	d, ok := v.(Deployment)
	if !ok {
		return Deployment{}, pkgerrors.ErrInvalidData
	}

	return d, nil
}

func (r *Registry) All(ctx context.Context) ([]Deployment, error) {
	_, total, err := r.store.List(ctx, 0, 0)
	if err != nil {
		return nil, err
	}
	vs, _, err := r.store.List(ctx, 0, total)
	if err != nil {
		return nil, err
	}

	ds := make([]Deployment, 0, len(vs))
	for _, v := range vs {
		d, ok := v.(Deployment)
		if !ok {
			return nil, pkgerrors.ErrInvalidData
		}
		ds = append(ds, d)
	}

	return ds, nil
}

// Put adds or replaces a deployment.
func (r *Registry) Put(ctx context.Context, d Deployment) error {
	if err := r.put(ctx, d); err != nil {
		return err
	}
	if r.path == "" {
		return nil
	}

	return r.save(ctx)
}

func (r *Registry) put(ctx context.Context, d Deployment) error {
	err := r.store.Create(ctx, d.ID, d)
	if errors.Is(err, pkgerrors.ErrEntityExists) {
		return r.store.Update(ctx, d.ID, d)
	}

	return err
}

func (r *Registry) save(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ds, err := r.All(ctx)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(ds)
	if err != nil {
		return err
	}

	return os.WriteFile(r.path, data, 0o644)
}
