package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/gocatalog/catalog/internal/catalog"
	cerrors "github.com/gocatalog/catalog/internal/catalog/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	productsCollection   = "products"
	categoriesCollection = "categories"
)

// MongoStore implements Store using MongoDB as the document store.
type MongoStore struct {
	products   *mongo.Collection
	categories *mongo.Collection
}

// NewMongoStore creates a new instance of Store backed by the given database.
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		products:   db.Collection(productsCollection),
		categories: db.Collection(categoriesCollection),
	}
}

// FindAll returns a cursor over the products collection in natural order.
func (s *MongoStore) FindAll(ctx context.Context) (ProductCursor, error) {
	cursor, err := s.products.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("failed to find all products: %w", err)
	}
	return cursor, nil
}

// FindByID retrieves a product by its identifier.
// Returns ErrProductNotFound if no product exists with the given ID.
func (s *MongoStore) FindByID(ctx context.Context, id string) (*catalog.Product, error) {
	var product catalog.Product
	err := s.products.FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, cerrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}
	return &product, nil
}

// FindByName retrieves a product by its name.
// Returns ErrProductNotFound if no product carries the given name.
func (s *MongoStore) FindByName(ctx context.Context, name string) (*catalog.Product, error) {
	var product catalog.Product
	err := s.products.FindOne(ctx, bson.M{"name": name}).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, cerrors.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by name: %w", err)
	}
	return &product, nil
}

// Save upserts a product, assigning a fresh ObjectID hex when the product has
// no identity yet. The persisted entity is returned.
func (s *MongoStore) Save(ctx context.Context, p *catalog.Product) (*catalog.Product, error) {
	if p.ID == "" {
		p.ID = primitive.NewObjectID().Hex()
	}
	_, err := s.products.ReplaceOne(ctx, bson.M{"_id": p.ID}, p, options.Replace().SetUpsert(true))
	if err != nil {
		return nil, fmt.Errorf("failed to save product: %w", err)
	}
	return p, nil
}

// Delete removes a product by its ID.
// Returns ErrProductNotFound if no product exists with the given ID.
func (s *MongoStore) Delete(ctx context.Context, id string) error {
	result, err := s.products.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete product by ID: %w", err)
	}
	if result.DeletedCount == 0 {
		return cerrors.ErrProductNotFound
	}
	return nil
}

// FindAllCategories retrieves all categories in natural order.
func (s *MongoStore) FindAllCategories(ctx context.Context) ([]catalog.Category, error) {
	cursor, err := s.categories.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("failed to find all categories: %w", err)
	}
	var categories []catalog.Category
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, fmt.Errorf("failed to decode categories: %w", err)
	}
	return categories, nil
}

// FindCategoryByID retrieves a category by its identifier.
// Returns ErrCategoryNotFound if no category exists with the given ID.
func (s *MongoStore) FindCategoryByID(ctx context.Context, id string) (*catalog.Category, error) {
	var category catalog.Category
	err := s.categories.FindOne(ctx, bson.M{"_id": id}).Decode(&category)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, cerrors.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to find category by ID: %w", err)
	}
	return &category, nil
}

// FindCategoryByName retrieves a category by its name.
// Returns ErrCategoryNotFound if no category carries the given name.
func (s *MongoStore) FindCategoryByName(ctx context.Context, name string) (*catalog.Category, error) {
	var category catalog.Category
	err := s.categories.FindOne(ctx, bson.M{"name": name}).Decode(&category)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, cerrors.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to find category by name: %w", err)
	}
	return &category, nil
}

// SaveCategory upserts a category, assigning an ID when absent.
func (s *MongoStore) SaveCategory(ctx context.Context, c *catalog.Category) (*catalog.Category, error) {
	if c.ID == "" {
		c.ID = primitive.NewObjectID().Hex()
	}
	_, err := s.categories.ReplaceOne(ctx, bson.M{"_id": c.ID}, c, options.Replace().SetUpsert(true))
	if err != nil {
		return nil, fmt.Errorf("failed to save category: %w", err)
	}
	return c, nil
}
