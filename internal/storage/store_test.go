package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"MongoDbWithGo/internal/filter"
	"MongoDbWithGo/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testCollection = "Employees"

// runStoreTests exercises every Store operation against one backend.
func runStoreTests(t *testing.T, s Store) {
	ctx := context.Background()

	t.Run("InsertAndFindByID", func(t *testing.T) {
		dob := time.Date(1990, 5, 1, 0, 0, 0, 0, time.UTC)
		e := models.Employee{Name: "John", Age: 30, Designation: "SSE", Salary: 1500.5, DateOfBirth: &dob, Skills: []string{"go"}}
		require.NoError(t, s.InsertOne(ctx, testCollection, &e))
		require.False(t, e.ID.IsZero(), "InsertOne should assign an id")

		got, err := s.FindByID(ctx, testCollection, e.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, e.ID, got.ID)
		assert.Equal(t, "John", got.Name)
		assert.Equal(t, 30, got.Age)
		assert.Equal(t, "SSE", got.Designation)
		assert.Equal(t, 1500.5, got.Salary)
		assert.Equal(t, []string{"go"}, got.Skills)
		require.NotNil(t, got.DateOfBirth)
		assert.True(t, dob.Equal(*got.DateOfBirth))
	})

	t.Run("RoundTripNormalizedDate", func(t *testing.T) {
		dob := time.Date(1990, 5, 1, 10, 20, 30, 123456789, time.FixedZone("CEST", 2*60*60))
		e := models.Employee{Name: "Ann", Age: 34, DateOfBirth: &dob}
		e.Normalize()
		require.NoError(t, s.InsertOne(ctx, testCollection, &e))

		got, err := s.FindByID(ctx, testCollection, e.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		require.NotNil(t, got.DateOfBirth)
		assert.Equal(t, e.DateOfBirth.Format(time.RFC3339Nano), got.DateOfBirth.Format(time.RFC3339Nano))
		assert.Equal(t, "1990-05-01T08:20:30.123Z", got.DateOfBirth.Format(time.RFC3339Nano))
		assert.Equal(t, time.UTC, got.DateOfBirth.Location())
	})

	t.Run("FindByIDMissing", func(t *testing.T) {
		got, err := s.FindByID(ctx, testCollection, primitive.NewObjectID())
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("DuplicateID", func(t *testing.T) {
		e := models.Employee{Name: "Dup", Age: 20}
		require.NoError(t, s.InsertOne(ctx, "dups", &e))

		again := models.Employee{ID: e.ID, Name: "Dup again", Age: 21}
		err := s.InsertOne(ctx, "dups", &again)
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("InvalidCollectionName", func(t *testing.T) {
		e := models.Employee{Name: "Bad", Age: 1}
		assert.ErrorIs(t, s.InsertOne(ctx, "bad$name", &e), ErrInvalidArgument)
		assert.ErrorIs(t, s.CreateCollection(ctx, ""), ErrInvalidArgument)
		assert.ErrorIs(t, s.CreateCollection(ctx, "system.users"), ErrInvalidArgument)
	})

	t.Run("InsertManyAndFind", func(t *testing.T) {
		es := models.SampleEmployees()
		require.NoError(t, s.InsertMany(ctx, "many", es))
		for _, e := range es {
			assert.False(t, e.ID.IsZero())
		}

		all, err := s.Find(ctx, "many", filter.Empty())
		require.NoError(t, err)
		require.Len(t, all, 4)
		for i, e := range all {
			assert.Equal(t, es[i].ID, e.ID, "records keep insertion order")
		}

		older, err := s.Find(ctx, "many", filter.Gt(models.FieldAge, 30))
		require.NoError(t, err)
		assert.Len(t, older, 3)

		none, err := s.Find(ctx, "many", filter.Eq(models.FieldName, "Nobody"))
		require.NoError(t, err)
		assert.NotNil(t, none)
		assert.Empty(t, none)
	})

	t.Run("FindUnknownCollection", func(t *testing.T) {
		got, err := s.Find(ctx, "does-not-exist", filter.Empty())
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("ReplaceOne", func(t *testing.T) {
		e := models.Employee{Name: "Before", Age: 22, Designation: "Dev"}
		require.NoError(t, s.InsertOne(ctx, "replace", &e))

		res, err := s.ReplaceOne(ctx, "replace", e.ID, models.SampleReplacement())
		require.NoError(t, err)
		assert.True(t, res.Acknowledged)
		assert.EqualValues(t, 1, res.MatchedCount)
		assert.EqualValues(t, 1, res.ModifiedCount)

		got, err := s.FindByID(ctx, "replace", e.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "Updated Name", got.Name)
		assert.Equal(t, 40, got.Age)
		assert.Empty(t, got.Designation, "replace drops fields missing from the replacement")

		res, err = s.ReplaceOne(ctx, "replace", e.ID, models.SampleReplacement())
		require.NoError(t, err)
		assert.EqualValues(t, 1, res.MatchedCount)
		assert.EqualValues(t, 0, res.ModifiedCount)

		res, err = s.ReplaceOne(ctx, "replace", primitive.NewObjectID(), models.SampleReplacement())
		require.NoError(t, err)
		assert.EqualValues(t, 0, res.MatchedCount)
		assert.EqualValues(t, 0, res.ModifiedCount)
	})

	t.Run("SetField", func(t *testing.T) {
		e := models.Employee{Name: "Old", Age: 50}
		require.NoError(t, s.InsertOne(ctx, "update", &e))

		res, err := s.SetField(ctx, "update", e.ID, models.FieldName, models.SampleUpdatedName)
		require.NoError(t, err)
		assert.EqualValues(t, 1, res.MatchedCount)
		assert.EqualValues(t, 1, res.ModifiedCount)

		res, err = s.SetField(ctx, "update", e.ID, models.FieldName, models.SampleUpdatedName)
		require.NoError(t, err)
		assert.EqualValues(t, 1, res.MatchedCount)
		assert.EqualValues(t, 0, res.ModifiedCount, "setting the same value modifies nothing")

		got, err := s.FindByID(ctx, "update", e.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, models.SampleUpdatedName, got.Name)
		assert.Equal(t, 50, got.Age)

		res, err = s.SetField(ctx, "update", primitive.NewObjectID(), models.FieldName, "x")
		require.NoError(t, err)
		assert.EqualValues(t, 0, res.MatchedCount)

		_, err = s.SetField(ctx, "update", e.ID, models.FieldAge, "not a number")
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("DeleteOne", func(t *testing.T) {
		e := models.Employee{Name: "Gone", Age: 33}
		require.NoError(t, s.InsertOne(ctx, "delete", &e))

		res, err := s.DeleteOne(ctx, "delete", e.ID)
		require.NoError(t, err)
		assert.True(t, res.Acknowledged)
		assert.EqualValues(t, 1, res.DeletedCount)

		res, err = s.DeleteOne(ctx, "delete", e.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 0, res.DeletedCount)

		got, err := s.FindByID(ctx, "delete", e.ID)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("Counts", func(t *testing.T) {
		require.NoError(t, s.InsertMany(ctx, "counts", []models.Employee{
			{Name: "A", Age: 20}, {Name: "B", Age: 30}, {Name: "C", Age: 40},
		}))

		n, err := s.EstimatedDocumentCount(ctx, "counts")
		require.NoError(t, err)
		assert.EqualValues(t, 3, n)

		n, err = s.CountDocuments(ctx, "counts", filter.Empty())
		require.NoError(t, err)
		assert.EqualValues(t, 3, n)

		n, err = s.CountDocuments(ctx, "counts", filter.Gt(models.FieldAge, 25))
		require.NoError(t, err)
		assert.EqualValues(t, 2, n)

		n, err = s.EstimatedDocumentCount(ctx, "empty-counts")
		require.NoError(t, err)
		assert.EqualValues(t, 0, n)
	})

	t.Run("Collections", func(t *testing.T) {
		require.NoError(t, s.CreateCollection(ctx, "alpha"))
		assert.ErrorIs(t, s.CreateCollection(ctx, "alpha"), ErrConflict)

		exists, err := s.CollectionExists(ctx, "alpha")
		require.NoError(t, err)
		assert.True(t, exists)

		names, err := s.ListCollections(ctx)
		require.NoError(t, err)
		assert.Contains(t, names, "alpha")
		assert.Contains(t, names, testCollection, "inserting creates the collection")

		e := models.Employee{Name: "Mover", Age: 28}
		require.NoError(t, s.InsertOne(ctx, "alpha", &e))

		require.NoError(t, s.RenameCollection(ctx, "alpha", "beta"))
		exists, err = s.CollectionExists(ctx, "alpha")
		require.NoError(t, err)
		assert.False(t, exists)
		got, err := s.FindByID(ctx, "beta", e.ID)
		require.NoError(t, err)
		require.NotNil(t, got, "records follow a renamed collection")

		assert.ErrorIs(t, s.RenameCollection(ctx, "alpha", "gamma"), ErrNotFound)
		require.NoError(t, s.CreateCollection(ctx, "gamma"))
		assert.ErrorIs(t, s.RenameCollection(ctx, "beta", "gamma"), ErrConflict)
		assert.ErrorIs(t, s.RenameCollection(ctx, "beta", "beta"), ErrInvalidArgument)
		assert.ErrorIs(t, s.RenameCollection(ctx, "beta", "bad$"), ErrInvalidArgument)

		require.NoError(t, s.DropCollection(ctx, "beta"))
		require.NoError(t, s.DropCollection(ctx, "beta"), "dropping a missing collection succeeds")
		exists, err = s.CollectionExists(ctx, "beta")
		require.NoError(t, err)
		assert.False(t, exists)

		n, err := s.EstimatedDocumentCount(ctx, "beta")
		require.NoError(t, err)
		assert.EqualValues(t, 0, n, "dropping removes the records")
	})

	t.Run("Ping", func(t *testing.T) {
		assert.NoError(t, s.Ping(ctx))
	})
}

func TestMemoryStore(t *testing.T) {
	runStoreTests(t, NewMemoryStore())
}

func TestSQLiteStore(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"), 5*time.Second)
	require.NoError(t, err)
	defer s.Close(context.Background())

	runStoreTests(t, s)
}

func TestSQLiteStoreInsertManyIsAtomic(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "atomic.db"), 5*time.Second)
	require.NoError(t, err)
	defer s.Close(context.Background())
	ctx := context.Background()

	id := primitive.NewObjectID()
	err = s.InsertMany(ctx, testCollection, []models.Employee{
		{ID: id, Name: "First", Age: 1},
		{ID: id, Name: "Second", Age: 2},
	})
	assert.ErrorIs(t, err, ErrConflict)

	n, err := s.EstimatedDocumentCount(ctx, testCollection)
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)
}

func TestSQLiteStorePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persist.db")
	ctx := context.Background()

	s, err := NewSQLiteStore(path, 0)
	require.NoError(t, err)
	e := models.SampleEmployee()
	require.NoError(t, s.InsertOne(ctx, testCollection, &e))
	require.NoError(t, s.Close(ctx))

	reopened, err := NewSQLiteStore(path, 0)
	require.NoError(t, err)
	defer reopened.Close(ctx)

	got, err := reopened.FindByID(ctx, testCollection, e.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "John Doe", got.Name)
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	e := models.Employee{Name: "Orig", Age: 10, Skills: []string{"go"}}
	require.NoError(t, s.InsertOne(ctx, testCollection, &e))

	got, err := s.FindByID(ctx, testCollection, e.ID)
	require.NoError(t, err)
	got.Skills[0] = "changed"

	again, err := s.FindByID(ctx, testCollection, e.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"go"}, again.Skills)
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	s, err := New(ctx, Options{Backend: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = New(ctx, Options{Backend: "sqlite", SQLitePath: filepath.Join(t.TempDir(), "factory.db")})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, s.Close(ctx))

	_, err = New(ctx, Options{Backend: "cassandra"})
	assert.Error(t, err)
}
