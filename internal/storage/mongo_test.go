package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"MongoDbWithGo/internal/filter"
	"MongoDbWithGo/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

const mockDatabase = "EmployeeDb"

func newMockStore(mt *mtest.T) *MongoStore {
	return NewMongoStoreFromClient(mt.Client, mockDatabase, time.Second)
}

func TestMongoStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()
	ns := mockDatabase + "." + testCollection

	mt.Run("InsertOneAssignsID", func(mt *mtest.T) {
		s := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		e := models.SampleEmployee()
		require.NoError(mt, s.InsertOne(ctx, testCollection, &e))
		assert.False(mt, e.ID.IsZero())
	})

	mt.Run("InsertOneDuplicateKey", func(mt *mtest.T) {
		s := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error",
		}))

		e := models.SampleEmployee()
		err := s.InsertOne(ctx, testCollection, &e)
		assert.ErrorIs(mt, err, ErrConflict)
	})

	mt.Run("InsertMany", func(mt *mtest.T) {
		s := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: int32(4)}))

		es := models.SampleEmployees()
		require.NoError(mt, s.InsertMany(ctx, testCollection, es))
		for _, e := range es {
			assert.False(mt, e.ID.IsZero())
		}
	})

	mt.Run("Find", func(mt *mtest.T) {
		s := newMockStore(mt)
		john, jane := primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: john}, {Key: "Name", Value: "John"}, {Key: "Age", Value: int32(30)}},
			bson.D{{Key: "_id", Value: jane}, {Key: "Name", Value: "Jane"}, {Key: "Age", Value: int32(25)}, {Key: "Skills", Value: bson.A{"go"}}},
		))

		got, err := s.Find(ctx, testCollection, filter.Gt(models.FieldAge, 20))
		require.NoError(mt, err)
		require.Len(mt, got, 2)
		assert.Equal(mt, john, got[0].ID)
		assert.Equal(mt, "John", got[0].Name)
		assert.Equal(mt, 30, got[0].Age)
		assert.Equal(mt, []string{"go"}, got[1].Skills)
	})

	mt.Run("FindEmpty", func(mt *mtest.T) {
		s := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		got, err := s.Find(ctx, testCollection, filter.Empty())
		require.NoError(mt, err)
		assert.NotNil(mt, got)
		assert.Empty(mt, got)
	})

	mt.Run("FindByIDMissing", func(mt *mtest.T) {
		s := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		got, err := s.FindByID(ctx, testCollection, primitive.NewObjectID())
		require.NoError(mt, err)
		assert.Nil(mt, got)
	})

	mt.Run("SetField", func(mt *mtest.T) {
		s := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: int32(1)},
			bson.E{Key: "nModified", Value: int32(0)},
		))

		res, err := s.SetField(ctx, testCollection, primitive.NewObjectID(), models.FieldName, models.SampleUpdatedName)
		require.NoError(mt, err)
		assert.True(mt, res.Acknowledged)
		assert.EqualValues(mt, 1, res.MatchedCount)
		assert.EqualValues(mt, 0, res.ModifiedCount)
	})

	mt.Run("DeleteMissing", func(mt *mtest.T) {
		s := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: int32(0)}))

		res, err := s.DeleteOne(ctx, testCollection, primitive.NewObjectID())
		require.NoError(mt, err)
		assert.EqualValues(mt, 0, res.DeletedCount)
	})

	mt.Run("CountDocuments", func(mt *mtest.T) {
		s := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{{Key: "n", Value: int32(3)}},
		))

		n, err := s.CountDocuments(ctx, testCollection, filter.Gt(models.FieldAge, 25))
		require.NoError(mt, err)
		assert.EqualValues(mt, 3, n)
	})

	mt.Run("ListCollections", func(mt *mtest.T) {
		s := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, mockDatabase+".$cmd.listCollections", mtest.FirstBatch,
			bson.D{{Key: "name", Value: "Employees"}, {Key: "type", Value: "collection"}},
			bson.D{{Key: "name", Value: "Archive"}, {Key: "type", Value: "collection"}},
		))

		names, err := s.ListCollections(ctx)
		require.NoError(mt, err)
		assert.ElementsMatch(mt, []string{"Employees", "Archive"}, names)
	})

	mt.Run("CollectionExists", func(mt *mtest.T) {
		s := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, mockDatabase+".$cmd.listCollections", mtest.FirstBatch))

		exists, err := s.CollectionExists(ctx, "Missing")
		require.NoError(mt, err)
		assert.False(mt, exists)
	})

	mt.Run("CreateCollectionExists", func(mt *mtest.T) {
		s := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    mongoNamespaceExists,
			Name:    "NamespaceExists",
			Message: "Collection already exists",
		}))

		assert.ErrorIs(mt, s.CreateCollection(ctx, testCollection), ErrConflict)
	})

	mt.Run("RenameMissingSource", func(mt *mtest.T) {
		s := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    mongoNamespaceNotFound,
			Name:    "NamespaceNotFound",
			Message: "source namespace does not exist",
		}))

		assert.ErrorIs(mt, s.RenameCollection(ctx, "Missing", "Other"), ErrNotFound)
	})

	mt.Run("RenameInvalidTarget", func(mt *mtest.T) {
		s := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    mongoIllegalOperation,
			Name:    "IllegalOperation",
			Message: "Can't rename a collection to itself",
		}))

		assert.ErrorIs(mt, s.RenameCollection(ctx, testCollection, testCollection), ErrInvalidArgument)
	})

	mt.Run("DropCollection", func(mt *mtest.T) {
		s := newMockStore(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		assert.NoError(mt, s.DropCollection(ctx, testCollection))
	})
}

func TestMapMongoError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"deadline", context.DeadlineExceeded, ErrUnavailable},
		{"disconnected", mongo.ErrClientDisconnected, ErrUnavailable},
		{"namespace not found", mongo.CommandError{Code: mongoNamespaceNotFound}, ErrNotFound},
		{"namespace exists", mongo.CommandError{Code: mongoNamespaceExists}, ErrConflict},
		{"invalid namespace", mongo.CommandError{Code: mongoInvalidNamespace}, ErrInvalidArgument},
		{"empty slice", mongo.ErrEmptySlice, ErrInvalidArgument},
		{"duplicate key", mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000}}}, ErrConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, mapMongoError(tt.err), tt.want)
		})
	}

	assert.NoError(t, mapMongoError(nil))

	other := errors.New("boom")
	got := mapMongoError(other)
	assert.Equal(t, other, got)
	for _, kind := range []error{ErrNotFound, ErrConflict, ErrInvalidArgument, ErrUnavailable} {
		assert.NotErrorIs(t, got, kind)
	}
}
