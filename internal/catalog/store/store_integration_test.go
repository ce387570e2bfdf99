package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/gocatalog/catalog/internal/catalog"
	cerrors "github.com/gocatalog/catalog/internal/catalog/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const skipIntegrationTests = "CATALOG_SKIP_INTEGRATION_TESTS"

// MongoStoreSuite is a test suite for the MongoDB Store implementation.
type MongoStoreSuite struct {
	suite.Suite
	container *mongodb.MongoDBContainer // MongoDB container for integration tests
	client    *mongo.Client             // MongoDB client connected to the container
	db        *mongo.Database           // Database used by the suite
	store     *MongoStore               //
	ctx       context.Context           // Context for the test suite, used for cancellation and timeouts
}

// SetupSuite starts a MongoDB container and connects a client to it.
func (s *MongoStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	var err error

	s.container, err = mongodb.Run(s.ctx, "mongo:7")
	require.NoError(s.T(), err, "Failed to run MongoDB container")

	uri, err := s.container.ConnectionString(s.ctx)
	require.NoError(s.T(), err, "Failed to get connection string from container")

	s.client, err = mongo.Connect(s.ctx, options.Client().ApplyURI(uri))
	require.NoError(s.T(), err, "Failed to create mongo client")

	for i := range 10 {
		err = s.client.Ping(s.ctx, readpref.Primary())
		if err == nil {
			break
		}
		s.T().Logf("Pinging MongoDB, attempt %d", i+1)
		time.Sleep(time.Second * 2)
	}
	require.NoError(s.T(), err, "Failed to connect to MongoDB after retries")

	s.db = s.client.Database("catalog_test")
	s.store = NewMongoStore(s.db)
}

// TearDownSuite disconnects the client and terminates the container.
func (s *MongoStoreSuite) TearDownSuite() {
	if s.client != nil {
		_ = s.client.Disconnect(s.ctx)
	}
	if s.container != nil {
		_ = s.container.Terminate(s.ctx)
	}
}

// SetupTest isolates each test by dropping both collections.
func (s *MongoStoreSuite) SetupTest() {
	require.NoError(s.T(), s.db.Collection(productsCollection).Drop(s.ctx))
	require.NoError(s.T(), s.db.Collection(categoriesCollection).Drop(s.ctx))
}

func (s *MongoStoreSuite) TestSaveAssignsIDAndRoundTrips() {
	now := time.Date(2023, 6, 1, 10, 0, 0, 0, time.UTC)
	product := &catalog.Product{
		Name:      "TV Panasonic",
		Price:     456.89,
		Category:  catalog.Category{ID: "c1", Name: "Electronics"},
		CreatedAt: &now,
	}

	saved, err := s.store.Save(s.ctx, product)
	require.NoError(s.T(), err)
	require.NotEmpty(s.T(), saved.ID)

	found, err := s.store.FindByID(s.ctx, saved.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "TV Panasonic", found.Name)
	assert.Equal(s.T(), 456.89, found.Price)
	assert.Equal(s.T(), catalog.Category{ID: "c1", Name: "Electronics"}, found.Category)
	require.NotNil(s.T(), found.CreatedAt)
	assert.True(s.T(), now.Equal(found.CreatedAt.UTC()))
}

func (s *MongoStoreSuite) TestSaveUpsertsExistingDocument() {
	saved, err := s.store.Save(s.ctx, &catalog.Product{Name: "Mouse", Price: 9.99})
	require.NoError(s.T(), err)

	saved.Price = 12.5
	again, err := s.store.Save(s.ctx, saved)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), saved.ID, again.ID)

	found, err := s.store.FindByID(s.ctx, saved.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 12.5, found.Price)

	cursor, err := s.store.FindAll(s.ctx)
	require.NoError(s.T(), err)
	defer func() { _ = cursor.Close(s.ctx) }()
	count := 0
	for cursor.Next(s.ctx) {
		count++
	}
	require.NoError(s.T(), cursor.Err())
	assert.Equal(s.T(), 1, count, "upsert must not create a second document")
}

func (s *MongoStoreSuite) TestFindByIDNotFound() {
	_, err := s.store.FindByID(s.ctx, "64b7f3a1e4b0c2d3e4f5a6b7")
	assert.ErrorIs(s.T(), err, cerrors.ErrProductNotFound)
}

func (s *MongoStoreSuite) TestFindByName() {
	_, err := s.store.Save(s.ctx, &catalog.Product{Name: "Apple iPod", Price: 120})
	require.NoError(s.T(), err)

	found, err := s.store.FindByName(s.ctx, "Apple iPod")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Apple iPod", found.Name)

	_, err = s.store.FindByName(s.ctx, "Sony Walkman")
	assert.ErrorIs(s.T(), err, cerrors.ErrProductNotFound)
}

func (s *MongoStoreSuite) TestFindAllStreamsInInsertionOrder() {
	names := []string{"first", "second", "third"}
	for _, name := range names {
		_, err := s.store.Save(s.ctx, &catalog.Product{Name: name, Price: 1})
		require.NoError(s.T(), err)
	}

	cursor, err := s.store.FindAll(s.ctx)
	require.NoError(s.T(), err)
	defer func() { _ = cursor.Close(s.ctx) }()

	var got []string
	for cursor.Next(s.ctx) {
		var p catalog.Product
		require.NoError(s.T(), cursor.Decode(&p))
		got = append(got, p.Name)
	}
	require.NoError(s.T(), cursor.Err())
	assert.Equal(s.T(), names, got)
}

func (s *MongoStoreSuite) TestDelete() {
	saved, err := s.store.Save(s.ctx, &catalog.Product{Name: "Mouse", Price: 9.99})
	require.NoError(s.T(), err)

	require.NoError(s.T(), s.store.Delete(s.ctx, saved.ID))

	_, err = s.store.FindByID(s.ctx, saved.ID)
	assert.ErrorIs(s.T(), err, cerrors.ErrProductNotFound)

	assert.ErrorIs(s.T(), s.store.Delete(s.ctx, saved.ID), cerrors.ErrProductNotFound)
}

func (s *MongoStoreSuite) TestCategoryOperations() {
	saved, err := s.store.SaveCategory(s.ctx, &catalog.Category{Name: "Electronics"})
	require.NoError(s.T(), err)
	require.NotEmpty(s.T(), saved.ID)

	found, err := s.store.FindCategoryByID(s.ctx, saved.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Electronics", found.Name)

	byName, err := s.store.FindCategoryByName(s.ctx, "Electronics")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), saved.ID, byName.ID)

	all, err := s.store.FindAllCategories(s.ctx)
	require.NoError(s.T(), err)
	assert.Len(s.T(), all, 1)

	_, err = s.store.FindCategoryByID(s.ctx, "64b7f3a1e4b0c2d3e4f5a6b7")
	assert.ErrorIs(s.T(), err, cerrors.ErrCategoryNotFound)
}

func TestMongoStoreSuite(t *testing.T) {
	if os.Getenv(skipIntegrationTests) != "" {
		t.Skipf("Skipping integration tests because %s is set", skipIntegrationTests)
	}
	suite.Run(t, new(MongoStoreSuite))
}
