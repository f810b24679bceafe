package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"MongoDbWithGo/internal/filter"
	"MongoDbWithGo/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryStore keeps everything in memory. Data is lost on restart.
// Records keep insertion order. Safe for concurrent use.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string][]models.Employee
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string][]models.Employee)}
}

func (m *MemoryStore) indexOf(collection string, id primitive.ObjectID) int {
	for i, e := range m.collections[collection] {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func (m *MemoryStore) insert(collection string, e *models.Employee) error {
	if e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	if m.indexOf(collection, e.ID) >= 0 {
		return fmt.Errorf("%w: duplicate id %s", ErrConflict, e.ID.Hex())
	}
	m.collections[collection] = append(m.collections[collection], cloneEmployee(*e))
	return nil
}

func (m *MemoryStore) InsertOne(ctx context.Context, collection string, e *models.Employee) error {
	if err := validateCollectionName(collection); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insert(collection, e)
}

// InsertMany stops at the first failure; records before it stay inserted.
func (m *MemoryStore) InsertMany(ctx context.Context, collection string, es []models.Employee) error {
	if err := validateCollectionName(collection); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range es {
		if err := m.insert(collection, &es[i]); err != nil {
			return err
		}
	}
	return nil
}

func (m *MemoryStore) Find(ctx context.Context, collection string, f filter.Filter) ([]models.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]models.Employee, 0)
	for _, e := range m.collections[collection] {
		if f.Match(e) {
			result = append(result, cloneEmployee(e))
		}
	}
	return result, nil
}

func (m *MemoryStore) FindByID(ctx context.Context, collection string, id primitive.ObjectID) (*models.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i := m.indexOf(collection, id)
	if i < 0 {
		return nil, nil
	}
	e := cloneEmployee(m.collections[collection][i])
	return &e, nil
}

func (m *MemoryStore) ReplaceOne(ctx context.Context, collection string, id primitive.ObjectID, e models.Employee) (models.UpdateResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexOf(collection, id)
	if i < 0 {
		return models.UpdateResult{Acknowledged: true}, nil
	}
	e.ID = id
	return m.update(collection, i, cloneEmployee(e)), nil
}

func (m *MemoryStore) SetField(ctx context.Context, collection string, id primitive.ObjectID, field string, value any) (models.UpdateResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexOf(collection, id)
	if i < 0 {
		return models.UpdateResult{Acknowledged: true}, nil
	}
	next := cloneEmployee(m.collections[collection][i])
	if err := setField(&next, field, value); err != nil {
		return models.UpdateResult{}, err
	}
	return m.update(collection, i, next), nil
}

func (m *MemoryStore) update(collection string, i int, next models.Employee) models.UpdateResult {
	result := models.UpdateResult{Acknowledged: true, MatchedCount: 1}
	if !sameDocument(m.collections[collection][i], next) {
		m.collections[collection][i] = next
		result.ModifiedCount = 1
	}
	return result
}

func (m *MemoryStore) DeleteOne(ctx context.Context, collection string, id primitive.ObjectID) (models.DeleteResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexOf(collection, id)
	if i < 0 {
		return models.DeleteResult{Acknowledged: true}, nil
	}
	docs := m.collections[collection]
	m.collections[collection] = append(docs[:i:i], docs[i+1:]...)
	return models.DeleteResult{Acknowledged: true, DeletedCount: 1}, nil
}

func (m *MemoryStore) EstimatedDocumentCount(ctx context.Context, collection string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.collections[collection])), nil
}

func (m *MemoryStore) CountDocuments(ctx context.Context, collection string, f filter.Filter) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var n int64
	for _, e := range m.collections[collection] {
		if f.Match(e) {
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) CreateCollection(ctx context.Context, name string) error {
	if err := validateCollectionName(name); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.collections[name]; ok {
		return fmt.Errorf("%w: collection %q already exists", ErrConflict, name)
	}
	m.collections[name] = []models.Employee{}
	return nil
}

func (m *MemoryStore) DropCollection(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.collections, name)
	return nil
}

func (m *MemoryStore) ListCollections(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.collections))
	for name := range m.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (m *MemoryStore) RenameCollection(ctx context.Context, from, to string) error {
	if err := validateCollectionName(to); err != nil {
		return err
	}
	if from == to {
		return fmt.Errorf("%w: cannot rename a collection to itself", ErrInvalidArgument)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	docs, ok := m.collections[from]
	if !ok {
		return fmt.Errorf("%w: collection %q", ErrNotFound, from)
	}
	if _, exists := m.collections[to]; exists {
		return fmt.Errorf("%w: collection %q already exists", ErrConflict, to)
	}
	m.collections[to] = docs
	delete(m.collections, from)
	return nil
}

func (m *MemoryStore) CollectionExists(ctx context.Context, name string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.collections[name]
	return ok, nil
}

func (m *MemoryStore) Ping(ctx context.Context) error { return nil }

func (m *MemoryStore) Close(ctx context.Context) error { return nil }
