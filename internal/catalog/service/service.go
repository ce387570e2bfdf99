// Package service implements the product read and write pipelines.
package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/gocatalog/catalog/internal/catalog"
	"github.com/gocatalog/catalog/internal/catalog/store"
	"github.com/gocatalog/catalog/internal/catalog/upload"
)

// CatalogService defines the operations on the product and category resources.
// It abstracts the underlying business logic and data access.
type CatalogService interface {
	// FindAll returns a fresh cursor over all products; the caller consumes it
	// incrementally and must close it.
	FindAll(ctx context.Context) (store.ProductCursor, error)

	// FindByID retrieves a single product by its identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id string) (*catalog.Product, error)

	// Create persists a new product, defaulting CreatedAt when the inbound
	// entity did not supply one. The persisted entity carries the assigned ID.
	Create(ctx context.Context, p catalog.Product) (*catalog.Product, error)

	// Update merges name, price and category from incoming into the stored
	// product; id, createdAt and photo are preserved untouched.
	// Returns ErrProductNotFound if no product exists with the given ID.
	Update(ctx context.Context, id string, incoming catalog.Product) (*catalog.Product, error)

	// Delete removes a product by its ID. The stored photo file, if any, is
	// left on disk.
	// Returns ErrProductNotFound if no product exists with the given ID.
	Delete(ctx context.Context, id string) error

	// AttachPhoto ingests the file stream and attaches the stored filename to
	// an existing product. The lookup happens before ingestion, so no file is
	// written when the product does not exist.
	// Returns ErrProductNotFound if no product exists with the given ID.
	AttachPhoto(ctx context.Context, id, filename string, stream io.Reader) (*catalog.Product, error)

	// CreateWithPhoto persists a new product assembled from form fields, with
	// the file stream ingested and attached before the save.
	CreateWithPhoto(ctx context.Context, p catalog.Product, filename string, stream io.Reader) (*catalog.Product, error)

	// Categories returns all categories.
	Categories(ctx context.Context) ([]catalog.Category, error)

	// CategoryByID retrieves a single category by its identifier.
	// Returns ErrCategoryNotFound if no category exists with the given ID.
	CategoryByID(ctx context.Context, id string) (*catalog.Category, error)

	// CreateCategory persists a new category and returns it with its assigned ID.
	CreateCategory(ctx context.Context, c catalog.Category) (*catalog.Category, error)
}

// Service implements CatalogService on top of a document store and an upload
// saver.
type Service struct {
	store   store.Store
	uploads *upload.Saver
}

// NewService creates a new instance of CatalogService with the provided store
// and upload saver.
func NewService(st store.Store, uploads *upload.Saver) *Service {
	return &Service{
		store:   st,
		uploads: uploads,
	}
}

// FindAll streams the full collection from the store in its natural order.
func (s *Service) FindAll(ctx context.Context) (store.ProductCursor, error) {
	cursor, err := s.store.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	return cursor, nil
}

// FindByID retrieves a product by its ID.
// Returns ErrProductNotFound if no product exists with the given ID.
func (s *Service) FindByID(ctx context.Context, id string) (*catalog.Product, error) {
	product, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product by ID %s: %w", id, err)
	}
	return product, nil
}

// Create persists a new product. CreatedAt is defaulted to the current time
// only when the inbound entity did not supply one; a pre-set value passes
// through unchanged.
func (s *Service) Create(ctx context.Context, p catalog.Product) (*catalog.Product, error) {
	if p.CreatedAt == nil {
		now := time.Now()
		p.CreatedAt = &now
	}
	saved, err := s.store.Save(ctx, &p)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return saved, nil
}

// Update performs the narrow field-level merge: exactly name, price and
// category are overwritten from the incoming payload, regardless of what else
// it contains.
func (s *Service) Update(ctx context.Context, id string, incoming catalog.Product) (*catalog.Product, error) {
	stored, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product by ID %s: %w", id, err)
	}
	stored.Name = incoming.Name
	stored.Price = incoming.Price
	stored.Category = incoming.Category

	saved, err := s.store.Save(ctx, stored)
	if err != nil {
		return nil, fmt.Errorf("failed to update product with ID %s: %w", id, err)
	}
	return saved, nil
}

// Delete removes a product by its ID.
// Returns ErrProductNotFound if no product exists with the given ID.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.store.FindByID(ctx, id); err != nil {
		return fmt.Errorf("failed to fetch product by ID %s: %w", id, err)
	}
	return s.store.Delete(ctx, id)
}

// AttachPhoto mutates an existing product: only the photo field changes. The
// product is looked up first so a missing ID never leaves a file on disk.
func (s *Service) AttachPhoto(ctx context.Context, id, filename string, stream io.Reader) (*catalog.Product, error) {
	stored, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product by ID %s: %w", id, err)
	}
	storedName, err := s.uploads.Save(filename, stream)
	if err != nil {
		return nil, fmt.Errorf("failed to ingest photo for product %s: %w", id, err)
	}
	stored.Photo = storedName

	saved, err := s.store.Save(ctx, stored)
	if err != nil {
		return nil, fmt.Errorf("failed to update product with ID %s: %w", id, err)
	}
	return saved, nil
}

// CreateWithPhoto ingests the file before persistence and attaches the stored
// filename to the candidate prior to the save.
func (s *Service) CreateWithPhoto(ctx context.Context, p catalog.Product, filename string, stream io.Reader) (*catalog.Product, error) {
	if p.CreatedAt == nil {
		now := time.Now()
		p.CreatedAt = &now
	}
	storedName, err := s.uploads.Save(filename, stream)
	if err != nil {
		return nil, fmt.Errorf("failed to ingest photo: %w", err)
	}
	p.Photo = storedName

	saved, err := s.store.Save(ctx, &p)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return saved, nil
}

// Categories returns all categories.
func (s *Service) Categories(ctx context.Context) ([]catalog.Category, error) {
	categories, err := s.store.FindAllCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}
	return categories, nil
}

// CategoryByID retrieves a category by its ID.
// Returns ErrCategoryNotFound if no category exists with the given ID.
func (s *Service) CategoryByID(ctx context.Context, id string) (*catalog.Category, error) {
	category, err := s.store.FindCategoryByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch category by ID %s: %w", id, err)
	}
	return category, nil
}

// CreateCategory persists a new category.
func (s *Service) CreateCategory(ctx context.Context, c catalog.Category) (*catalog.Category, error) {
	saved, err := s.store.SaveCategory(ctx, &c)
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return saved, nil
}
