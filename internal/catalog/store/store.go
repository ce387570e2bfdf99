// Package store provides an interface for catalog persistence operations.
package store

import (
	"context"

	"github.com/gocatalog/catalog/internal/catalog"
)

// ProductCursor is an incrementally consumable stream of product documents.
// *mongo.Cursor satisfies it directly; the in-memory store provides its own.
// A slow consumer never forces the producer to materialize the collection.
type ProductCursor interface {
	// Next advances to the next document, returning false when the stream is
	// exhausted or the context is cancelled.
	Next(ctx context.Context) bool

	// Decode unmarshals the current document into v.
	Decode(v any) error

	// Err reports the error, if any, that terminated iteration.
	Err() error

	// Close releases the resources held by the cursor.
	Close(ctx context.Context) error
}

// Store is an interface for catalog storage operations over the products and
// categories collections. It abstracts the underlying document store, allowing
// for different implementations (e.g., in-memory, MongoDB).
type Store interface {
	// FindAll returns a fresh cursor over all products in the store's natural order.
	FindAll(ctx context.Context) (ProductCursor, error)

	// FindByID retrieves a single product by its identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id string) (*catalog.Product, error)

	// FindByName retrieves a single product by its name.
	// Returns ErrProductNotFound if no product carries the given name.
	FindByName(ctx context.Context, name string) (*catalog.Product, error)

	// Save upserts a product. A product without an ID is assigned one; the
	// persisted entity is returned.
	Save(ctx context.Context, p *catalog.Product) (*catalog.Product, error)

	// Delete removes a product by its ID.
	// Returns ErrProductNotFound if no product exists with the given ID.
	Delete(ctx context.Context, id string) error

	// FindAllCategories returns all categories in the store's natural order.
	FindAllCategories(ctx context.Context) ([]catalog.Category, error)

	// FindCategoryByID retrieves a single category by its identifier.
	// Returns ErrCategoryNotFound if no category exists with the given ID.
	FindCategoryByID(ctx context.Context, id string) (*catalog.Category, error)

	// FindCategoryByName retrieves a single category by its name.
	// Returns ErrCategoryNotFound if no category carries the given name.
	FindCategoryByName(ctx context.Context, name string) (*catalog.Category, error)

	// SaveCategory upserts a category, assigning an ID when absent.
	SaveCategory(ctx context.Context, c *catalog.Category) (*catalog.Category, error)
}
