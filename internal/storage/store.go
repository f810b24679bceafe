// Package storage defines the document store the handlers talk to and its backends.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"MongoDbWithGo/internal/filter"
	"MongoDbWithGo/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store is implemented by every backend. A Store is shared by all requests and
// must be safe for concurrent use.
type Store interface {
	// InsertOne stores e, assigning a new id when e.ID is zero.
	InsertOne(ctx context.Context, collection string, e *models.Employee) error
	// InsertMany stores es in order, assigning ids in place.
	InsertMany(ctx context.Context, collection string, es []models.Employee) error
	Find(ctx context.Context, collection string, f filter.Filter) ([]models.Employee, error)
	// FindByID returns nil without error when no record has the id.
	FindByID(ctx context.Context, collection string, id primitive.ObjectID) (*models.Employee, error)
	ReplaceOne(ctx context.Context, collection string, id primitive.ObjectID, e models.Employee) (models.UpdateResult, error)
	SetField(ctx context.Context, collection string, id primitive.ObjectID, field string, value any) (models.UpdateResult, error)
	DeleteOne(ctx context.Context, collection string, id primitive.ObjectID) (models.DeleteResult, error)
	EstimatedDocumentCount(ctx context.Context, collection string) (int64, error)
	CountDocuments(ctx context.Context, collection string, f filter.Filter) (int64, error)

	CreateCollection(ctx context.Context, name string) error
	// DropCollection succeeds when the collection does not exist.
	DropCollection(ctx context.Context, name string) error
	ListCollections(ctx context.Context) ([]string, error)
	RenameCollection(ctx context.Context, from, to string) error
	CollectionExists(ctx context.Context, name string) (bool, error)

	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// sameDocument reports whether two records encode to the same BSON document,
// which is how MongoDB decides whether an update modified anything.
func sameDocument(a, b models.Employee) bool {
	x, errA := bson.Marshal(a)
	y, errB := bson.Marshal(b)
	return errA == nil && errB == nil && bytes.Equal(x, y)
}

// setField applies a $set of one field to e for the embedded backends.
func setField(e *models.Employee, field string, value any) error {
	var ok bool
	switch field {
	case models.FieldName:
		e.Name, ok = value.(string)
	case models.FieldDesignation:
		e.Designation, ok = value.(string)
	case models.FieldAge:
		e.Age, ok = value.(int)
	case models.FieldSalary:
		e.Salary, ok = value.(float64)
	case models.FieldSkills:
		e.Skills, ok = value.([]string)
	case models.FieldDateOfBirth:
		var t time.Time
		if t, ok = value.(time.Time); ok {
			e.DateOfBirth = &t
		}
	default:
		return fmt.Errorf("%w: field %q cannot be updated", ErrInvalidArgument, field)
	}
	if !ok {
		return fmt.Errorf("%w: unexpected %T value for field %q", ErrInvalidArgument, value, field)
	}
	return nil
}

func cloneEmployee(e models.Employee) models.Employee {
	if e.Skills != nil {
		e.Skills = append([]string(nil), e.Skills...)
	}
	if e.DateOfBirth != nil {
		t := *e.DateOfBirth
		e.DateOfBirth = &t
	}
	return e
}
