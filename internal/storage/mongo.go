package storage

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"MongoDbWithGo/internal/filter"
	"MongoDbWithGo/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Server error codes the service distinguishes.
const (
	mongoIllegalOperation  = 20
	mongoNamespaceNotFound = 26
	mongoNamespaceExists   = 48
	mongoInvalidNamespace  = 73
)

const mongoConnectTimeout = 10 * time.Second

// MongoStore is the production backend. The client is created once at startup
// and shared by every request.
type MongoStore struct {
	client  *mongo.Client
	db      *mongo.Database
	timeout time.Duration
}

// NewMongoStore connects and pings the deployment behind uri. minTLSVersion is
// applied when the connection string enables TLS (always the case for mongodb+srv).
func NewMongoStore(ctx context.Context, uri, database string, minTLSVersion uint16, timeout time.Duration) (*MongoStore, error) {
	opts := options.Client().ApplyURI(uri)
	if opts.TLSConfig != nil && minTLSVersion != 0 {
		opts.TLSConfig.MinVersion = minTLSVersion
	}

	connectCtx, cancel := context.WithTimeout(ctx, mongoConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, mapMongoError(err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		client.Disconnect(context.Background())
		return nil, mapMongoError(err)
	}
	log.Printf("NewMongoStore(): connected to MongoDB (database %s)", database)
	return NewMongoStoreFromClient(client, database, timeout), nil
}

// NewMongoStoreFromClient wraps an already connected client.
func NewMongoStoreFromClient(client *mongo.Client, database string, timeout time.Duration) *MongoStore {
	return &MongoStore{client: client, db: client.Database(database), timeout: timeout}
}

func mapMongoError(err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %w", ErrConflict, err)
	}
	if mongo.IsTimeout(err) || mongo.IsNetworkError(err) ||
		errors.Is(err, context.DeadlineExceeded) || errors.Is(err, mongo.ErrClientDisconnected) {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		switch cmdErr.Code {
		case mongoNamespaceNotFound:
			return fmt.Errorf("%w: %w", ErrNotFound, err)
		case mongoNamespaceExists:
			return fmt.Errorf("%w: %w", ErrConflict, err)
		case mongoInvalidNamespace, mongoIllegalOperation:
			return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
		}
	}
	if errors.Is(err, mongo.ErrEmptySlice) || errors.Is(err, mongo.ErrNilDocument) {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	return err
}

func byID(id primitive.ObjectID) bson.D {
	return bson.D{{Key: models.FieldID, Value: id}}
}

func (s *MongoStore) InsertOne(ctx context.Context, collection string, e *models.Employee) error {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	if e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	_, err := s.db.Collection(collection).InsertOne(ctx, e)
	return mapMongoError(err)
}

func (s *MongoStore) InsertMany(ctx context.Context, collection string, es []models.Employee) error {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	docs := make([]interface{}, len(es))
	for i := range es {
		if es[i].ID.IsZero() {
			es[i].ID = primitive.NewObjectID()
		}
		docs[i] = es[i]
	}
	_, err := s.db.Collection(collection).InsertMany(ctx, docs)
	return mapMongoError(err)
}

func (s *MongoStore) Find(ctx context.Context, collection string, f filter.Filter) ([]models.Employee, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	cursor, err := s.db.Collection(collection).Find(ctx, f.BSON())
	if err != nil {
		return nil, mapMongoError(err)
	}
	defer cursor.Close(ctx)

	employees := make([]models.Employee, 0)
	if err := cursor.All(ctx, &employees); err != nil {
		return nil, mapMongoError(err)
	}
	return employees, nil
}

func (s *MongoStore) FindByID(ctx context.Context, collection string, id primitive.ObjectID) (*models.Employee, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	var e models.Employee
	err := s.db.Collection(collection).FindOne(ctx, byID(id)).Decode(&e)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, mapMongoError(err)
	}
	return &e, nil
}

func toUpdateResult(res *mongo.UpdateResult) models.UpdateResult {
	return models.UpdateResult{
		Acknowledged:  true,
		MatchedCount:  res.MatchedCount,
		ModifiedCount: res.ModifiedCount,
		UpsertedID:    res.UpsertedID,
	}
}

func (s *MongoStore) ReplaceOne(ctx context.Context, collection string, id primitive.ObjectID, e models.Employee) (models.UpdateResult, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	e.ID = id
	res, err := s.db.Collection(collection).ReplaceOne(ctx, byID(id), e)
	if err != nil {
		return models.UpdateResult{}, mapMongoError(err)
	}
	return toUpdateResult(res), nil
}

func (s *MongoStore) SetField(ctx context.Context, collection string, id primitive.ObjectID, field string, value any) (models.UpdateResult, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	update := bson.D{{Key: "$set", Value: bson.D{{Key: field, Value: value}}}}
	res, err := s.db.Collection(collection).UpdateOne(ctx, byID(id), update)
	if err != nil {
		return models.UpdateResult{}, mapMongoError(err)
	}
	return toUpdateResult(res), nil
}

func (s *MongoStore) DeleteOne(ctx context.Context, collection string, id primitive.ObjectID) (models.DeleteResult, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	res, err := s.db.Collection(collection).DeleteOne(ctx, byID(id))
	if err != nil {
		return models.DeleteResult{}, mapMongoError(err)
	}
	return models.DeleteResult{Acknowledged: true, DeletedCount: res.DeletedCount}, nil
}

// EstimatedDocumentCount reads collection metadata and may lag behind recent writes.
func (s *MongoStore) EstimatedDocumentCount(ctx context.Context, collection string) (int64, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	n, err := s.db.Collection(collection).EstimatedDocumentCount(ctx)
	return n, mapMongoError(err)
}

func (s *MongoStore) CountDocuments(ctx context.Context, collection string, f filter.Filter) (int64, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	n, err := s.db.Collection(collection).CountDocuments(ctx, f.BSON())
	return n, mapMongoError(err)
}

func (s *MongoStore) CreateCollection(ctx context.Context, name string) error {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	return mapMongoError(s.db.CreateCollection(ctx, name))
}

func (s *MongoStore) DropCollection(ctx context.Context, name string) error {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	return mapMongoError(s.db.Collection(name).Drop(ctx))
}

func (s *MongoStore) ListCollections(ctx context.Context) ([]string, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	names, err := s.db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return nil, mapMongoError(err)
	}
	return names, nil
}

// RenameCollection runs renameCollection against the admin database, which is
// where the server accepts it.
func (s *MongoStore) RenameCollection(ctx context.Context, from, to string) error {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	dbName := s.db.Name()
	cmd := bson.D{
		{Key: "renameCollection", Value: dbName + "." + from},
		{Key: "to", Value: dbName + "." + to},
	}
	return mapMongoError(s.client.Database("admin").RunCommand(ctx, cmd).Err())
}

func (s *MongoStore) CollectionExists(ctx context.Context, name string) (bool, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	names, err := s.db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return false, mapMongoError(err)
	}
	return len(names) > 0, nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	return mapMongoError(s.client.Ping(ctx, readpref.Primary()))
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
