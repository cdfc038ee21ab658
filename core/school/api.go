package school

import (
	"context"

	"github.com/trezcool/masomo-portal/core/listing"
)

// API is the school REST API: uniform collections addressed by path.
// Implementations map failures onto core.ValidationError, core.NotFoundError
// and core.NetworkError.
type API interface {
	List(ctx context.Context, path string, page, limit int, out interface{}) error
	Create(ctx context.Context, path string, in, out interface{}) error
	Update(ctx context.Context, path, id string, in, out interface{}) error
	Delete(ctx context.Context, path, id string) error
	ToggleStatus(ctx context.Context, path, id string, active bool) error
}

// resource is the listing.Client of one entity over the API.
type resource[T any] struct {
	api    API
	entity listing.Entity[T]
}

var _ listing.Client[Subject] = resource[Subject]{}

func (r resource[T]) List(ctx context.Context, page, limit int) (listing.Page[T], error) {
	var p listing.Page[T]
	err := r.api.List(ctx, r.entity.Path, page, limit, &p)
	return p, err
}

func (r resource[T]) Create(ctx context.Context, rec T) (T, error) {
	var created T
	err := r.api.Create(ctx, r.entity.Path, rec, &created)
	return created, err
}

func (r resource[T]) Update(ctx context.Context, id string, rec T) (T, error) {
	var updated T
	err := r.api.Update(ctx, r.entity.Path, id, rec, &updated)
	return updated, err
}

func (r resource[T]) Delete(ctx context.Context, id string) error {
	return r.api.Delete(ctx, r.entity.Path, id)
}

// SetActive uses the entity's toggle endpoint, or a partial update of isActive.
func (r resource[T]) SetActive(ctx context.Context, id string, active bool) error {
	if r.entity.Toggle == listing.ToggleEndpoint {
		return r.api.ToggleStatus(ctx, r.entity.Path, id, active)
	}
	return r.api.Update(ctx, r.entity.Path, id, map[string]bool{"isActive": active}, nil)
}
