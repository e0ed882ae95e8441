package service

import (
	"context"
	"errors"
	"fmt"

	"fittrack/workout-api/internal/domain"
	"fittrack/workout-api/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ResourceService is the CRUD surface shared by every owned resource.
// V is the read model returned to callers, D the creation draft and P the
// partial update.
type ResourceService[V, D, P any] interface {
	List(ctx context.Context, filter repository.Filter) ([]V, error)
	Get(ctx context.Context, id primitive.ObjectID) (*V, error)
	Create(ctx context.Context, principal primitive.ObjectID, draft D) (*V, error)
	Update(ctx context.Context, principal, id primitive.ObjectID, patch P) (*V, error)
	Delete(ctx context.Context, principal, id primitive.ObjectID) error
}

// ownedStore runs the resolve → authorize → mutate sequence once for every
// entity type.
type ownedStore[T any, PT interface {
	*T
	domain.Owned
}] struct {
	store repository.Store[T]
	kind  string
}

// resolve loads a record, mapping a missing one to ErrNotFound.
func (o ownedStore[T, PT]) resolve(ctx context.Context, id primitive.ObjectID) (*T, error) {
	record, err := o.store.GetByID(ctx, id)
	if err != nil {
		return nil, o.translate(id, err)
	}
	return record, nil
}

// authorize resolves the record and then applies the ownership policy.
func (o ownedStore[T, PT]) authorize(ctx context.Context, principal, id primitive.ObjectID) (*T, error) {
	record, err := o.resolve(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := CheckOwnership(principal, PT(record)); err != nil {
		return nil, err
	}
	return record, nil
}

// create stores a record whose owner is already stamped and reads it back.
func (o ownedStore[T, PT]) create(ctx context.Context, record *T) (*T, error) {
	id, err := o.store.Create(ctx, record)
	if err != nil {
		return nil, err
	}
	return o.resolve(ctx, id)
}

// update applies the fields after the ownership check and returns the stored
// record as it is after the write.
func (o ownedStore[T, PT]) update(ctx context.Context, principal, id primitive.ObjectID, validate func(*T) error, fields repository.Fields) (*T, error) {
	current, err := o.authorize(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	if err := validate(current); err != nil {
		return nil, err
	}
	if len(fields) > 0 {
		if err := o.store.Update(ctx, id, fields); err != nil {
			return nil, o.translate(id, err)
		}
	}
	return o.resolve(ctx, id)
}

// delete removes the record after the ownership check and returns what was
// removed. References held by other records are left untouched.
func (o ownedStore[T, PT]) delete(ctx context.Context, principal, id primitive.ObjectID) (*T, error) {
	record, err := o.authorize(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	if err := o.store.Delete(ctx, id); err != nil {
		return nil, o.translate(id, err)
	}
	return record, nil
}

func (o ownedStore[T, PT]) translate(id primitive.ObjectID, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%s %s: %w", o.kind, id.Hex(), ErrNotFound)
	}
	return err
}
