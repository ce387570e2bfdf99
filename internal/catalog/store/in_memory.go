package store

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"github.com/gocatalog/catalog/internal/catalog"
	cerrors "github.com/gocatalog/catalog/internal/catalog/errors"
)

// inMemory implements Store using maps guarded by a mutex. Iteration order is
// insertion order, mirroring the stable natural order of the real store.
type inMemory struct {
	mu         sync.RWMutex
	products   map[string]catalog.Product
	productIDs []string
	categories map[string]catalog.Category
	catIDs     []string
	nextID     int
}

// NewInMemoryStore creates a new instance of Store
func NewInMemoryStore() Store {
	return &inMemory{
		products:   make(map[string]catalog.Product),
		categories: make(map[string]catalog.Category),
		nextID:     1,
	}
}

func (s *inMemory) FindAll(_ context.Context) (ProductCursor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]catalog.Product, 0, len(s.productIDs))
	for _, id := range s.productIDs {
		list = append(list, s.products[id])
	}
	return &sliceCursor{products: list, pos: -1}, nil
}

func (s *inMemory) FindByID(_ context.Context, id string) (*catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, cerrors.ErrProductNotFound
	}
	return &p, nil
}

func (s *inMemory) FindByName(_ context.Context, name string) (*catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, id := range s.productIDs {
		if p := s.products[id]; p.Name == name {
			return &p, nil
		}
	}
	return nil, cerrors.ErrProductNotFound
}

func (s *inMemory) Save(_ context.Context, p *catalog.Product) (*catalog.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" {
		p.ID = strconv.Itoa(s.nextID)
		s.nextID++
	}
	if _, exists := s.products[p.ID]; !exists {
		s.productIDs = append(s.productIDs, p.ID)
	}
	s.products[p.ID] = *p
	return p, nil
}

func (s *inMemory) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.products[id]; !exists {
		return cerrors.ErrProductNotFound
	}
	delete(s.products, id)
	for i, pid := range s.productIDs {
		if pid == id {
			s.productIDs = append(s.productIDs[:i], s.productIDs[i+1:]...)
			break
		}
	}
	return nil
}

func (s *inMemory) FindAllCategories(_ context.Context) ([]catalog.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]catalog.Category, 0, len(s.catIDs))
	for _, id := range s.catIDs {
		list = append(list, s.categories[id])
	}
	return list, nil
}

func (s *inMemory) FindCategoryByID(_ context.Context, id string) (*catalog.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.categories[id]
	if !ok {
		return nil, cerrors.ErrCategoryNotFound
	}
	return &c, nil
}

func (s *inMemory) FindCategoryByName(_ context.Context, name string) (*catalog.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, id := range s.catIDs {
		if c := s.categories[id]; c.Name == name {
			return &c, nil
		}
	}
	return nil, cerrors.ErrCategoryNotFound
}

func (s *inMemory) SaveCategory(_ context.Context, c *catalog.Category) (*catalog.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID == "" {
		c.ID = strconv.Itoa(s.nextID)
		s.nextID++
	}
	if _, exists := s.categories[c.ID]; !exists {
		s.catIDs = append(s.catIDs, c.ID)
	}
	s.categories[c.ID] = *c
	return c, nil
}

// sliceCursor adapts a snapshot slice to the ProductCursor interface.
type sliceCursor struct {
	products []catalog.Product
	pos      int
}

func (c *sliceCursor) Next(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}
	c.pos++
	return c.pos < len(c.products)
}

func (c *sliceCursor) Decode(v any) error {
	p, ok := v.(*catalog.Product)
	if !ok {
		return errors.New("decode target must be *catalog.Product")
	}
	*p = c.products[c.pos]
	return nil
}

func (c *sliceCursor) Err() error { return nil }

func (c *sliceCursor) Close(_ context.Context) error { return nil }
