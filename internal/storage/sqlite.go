package storage

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"MongoDbWithGo/internal/filter"
	"MongoDbWithGo/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"modernc.org/sqlite"
)

// Extended result codes returned by modernc.org/sqlite on constraint violations.
const (
	sqliteConstraintPrimaryKey = 1555
	sqliteConstraintUnique     = 2067
)

// SQLiteStore keeps each record as a BSON blob in a single documents table, so the
// service can run as a self-contained demo without a MongoDB deployment.
type SQLiteStore struct {
	db      *sql.DB
	timeout time.Duration
}

func NewSQLiteStore(path string, timeout time.Duration) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("NewSQLiteStore(): failed to open database: %w", err)
	}
	// A single connection serialises writers and keeps ":memory:" databases shared.
	db.SetMaxOpenConns(1)
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("NewSQLiteStore(): failed to connect to database: %w", err)
	}

	createCollectionsTable := `
	CREATE TABLE IF NOT EXISTS collections (
			"name" TEXT PRIMARY KEY,
			"created_at" DATETIME NOT NULL
	);`
	createDocumentsTable := `
	CREATE TABLE IF NOT EXISTS documents (
			"seq" INTEGER PRIMARY KEY AUTOINCREMENT,
			"collection" TEXT NOT NULL,
			"id" TEXT NOT NULL,
			"body" BLOB NOT NULL,
			UNIQUE(collection, id)
	)`

	if _, err := db.Exec(createCollectionsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("NewSQLiteStore(): failed to create collections table: %w", err)
	}
	if _, err := db.Exec(createDocumentsTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("NewSQLiteStore(): failed to create documents table: %w", err)
	}
	log.Printf("NewSQLiteStore(): opened %s", path)
	return &SQLiteStore{db: db, timeout: timeout}, nil
}

func mapSQLiteError(err error) error {
	if err == nil {
		return nil
	}
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqliteConstraintUnique, sqliteConstraintPrimaryKey:
			return fmt.Errorf("%w: %w", ErrConflict, err)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, sql.ErrConnDone) {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return err
}

func (s *SQLiteStore) ensureCollection(ctx context.Context, tx *sql.Tx, name string) error {
	_, err := tx.ExecContext(ctx, "INSERT OR IGNORE INTO collections(name, created_at) VALUES(?, ?)", name, time.Now())
	return err
}

func (s *SQLiteStore) insert(ctx context.Context, tx *sql.Tx, collection string, e *models.Employee) error {
	if e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	body, err := bson.Marshal(e)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, "INSERT INTO documents(collection, id, body) VALUES(?, ?, ?)", collection, e.ID.Hex(), body)
	return mapSQLiteError(err)
}

// inTx runs fn in a transaction, committing only when fn succeeds.
func (s *SQLiteStore) inTx(ctx context.Context, fn func(ctx context.Context, tx *sql.Tx) error) error {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return mapSQLiteError(err)
	}
	if err := fn(ctx, tx); err != nil {
		tx.Rollback()
		return err
	}
	return mapSQLiteError(tx.Commit())
}

func (s *SQLiteStore) InsertOne(ctx context.Context, collection string, e *models.Employee) error {
	if err := validateCollectionName(collection); err != nil {
		return err
	}
	return s.inTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.ensureCollection(ctx, tx, collection); err != nil {
			return mapSQLiteError(err)
		}
		return s.insert(ctx, tx, collection, e)
	})
}

// InsertMany is all-or-nothing on this backend.
func (s *SQLiteStore) InsertMany(ctx context.Context, collection string, es []models.Employee) error {
	if err := validateCollectionName(collection); err != nil {
		return err
	}
	return s.inTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.ensureCollection(ctx, tx, collection); err != nil {
			return mapSQLiteError(err)
		}
		for i := range es {
			if err := s.insert(ctx, tx, collection, &es[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *SQLiteStore) Find(ctx context.Context, collection string, f filter.Filter) ([]models.Employee, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, "SELECT body FROM documents WHERE collection = ? ORDER BY seq", collection)
	if err != nil {
		return nil, mapSQLiteError(err)
	}
	defer rows.Close()

	employees := make([]models.Employee, 0)
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, mapSQLiteError(err)
		}
		var e models.Employee
		if err := bson.Unmarshal(body, &e); err != nil {
			return nil, err
		}
		if f.Match(e) {
			employees = append(employees, e)
		}
	}
	return employees, mapSQLiteError(rows.Err())
}

func (s *SQLiteStore) load(ctx context.Context, q interface {
	QueryRowContext(context.Context, string, ...any) *sql.Row
}, collection string, id primitive.ObjectID) (*models.Employee, error) {
	var body []byte
	err := q.QueryRowContext(ctx, "SELECT body FROM documents WHERE collection = ? AND id = ?", collection, id.Hex()).Scan(&body)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, mapSQLiteError(err)
	}
	var e models.Employee
	if err := bson.Unmarshal(body, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *SQLiteStore) FindByID(ctx context.Context, collection string, id primitive.ObjectID) (*models.Employee, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	return s.load(ctx, s.db, collection, id)
}

func (s *SQLiteStore) ReplaceOne(ctx context.Context, collection string, id primitive.ObjectID, e models.Employee) (models.UpdateResult, error) {
	e.ID = id
	return s.update(ctx, collection, id, func(*models.Employee) (models.Employee, error) { return e, nil })
}

func (s *SQLiteStore) SetField(ctx context.Context, collection string, id primitive.ObjectID, field string, value any) (models.UpdateResult, error) {
	return s.update(ctx, collection, id, func(current *models.Employee) (models.Employee, error) {
		next := cloneEmployee(*current)
		err := setField(&next, field, value)
		return next, err
	})
}

func (s *SQLiteStore) update(ctx context.Context, collection string, id primitive.ObjectID, change func(*models.Employee) (models.Employee, error)) (models.UpdateResult, error) {
	result := models.UpdateResult{Acknowledged: true}
	err := s.inTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		current, err := s.load(ctx, tx, collection, id)
		if err != nil || current == nil {
			return err
		}
		result.MatchedCount = 1

		next, err := change(current)
		if err != nil {
			return err
		}
		before, err := bson.Marshal(current)
		if err != nil {
			return err
		}
		after, err := bson.Marshal(next)
		if err != nil {
			return err
		}
		if bytes.Equal(before, after) {
			return nil
		}
		if _, err := tx.ExecContext(ctx, "UPDATE documents SET body = ? WHERE collection = ? AND id = ?", after, collection, id.Hex()); err != nil {
			return mapSQLiteError(err)
		}
		result.ModifiedCount = 1
		return nil
	})
	if err != nil {
		return models.UpdateResult{}, err
	}
	return result, nil
}

func (s *SQLiteStore) DeleteOne(ctx context.Context, collection string, id primitive.ObjectID) (models.DeleteResult, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	res, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE collection = ? AND id = ?", collection, id.Hex())
	if err != nil {
		return models.DeleteResult{}, mapSQLiteError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return models.DeleteResult{}, mapSQLiteError(err)
	}
	return models.DeleteResult{Acknowledged: true, DeletedCount: n}, nil
}

// EstimatedDocumentCount is exact on this backend.
func (s *SQLiteStore) EstimatedDocumentCount(ctx context.Context, collection string) (int64, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	var n int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents WHERE collection = ?", collection).Scan(&n)
	return n, mapSQLiteError(err)
}

func (s *SQLiteStore) CountDocuments(ctx context.Context, collection string, f filter.Filter) (int64, error) {
	if f.Op == filter.OpEmpty {
		return s.EstimatedDocumentCount(ctx, collection)
	}
	employees, err := s.Find(ctx, collection, f)
	if err != nil {
		return 0, err
	}
	return int64(len(employees)), nil
}

func (s *SQLiteStore) CreateCollection(ctx context.Context, name string) error {
	if err := validateCollectionName(name); err != nil {
		return err
	}
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.db.ExecContext(ctx, "INSERT INTO collections(name, created_at) VALUES(?, ?)", name, time.Now())
	return mapSQLiteError(err)
}

func (s *SQLiteStore) DropCollection(ctx context.Context, name string) error {
	return s.inTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM documents WHERE collection = ?", name); err != nil {
			return mapSQLiteError(err)
		}
		_, err := tx.ExecContext(ctx, "DELETE FROM collections WHERE name = ?", name)
		return mapSQLiteError(err)
	})
}

func (s *SQLiteStore) ListCollections(ctx context.Context) ([]string, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, "SELECT name FROM collections ORDER BY name")
	if err != nil {
		return nil, mapSQLiteError(err)
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, mapSQLiteError(err)
		}
		names = append(names, name)
	}
	return names, mapSQLiteError(rows.Err())
}

func (s *SQLiteStore) RenameCollection(ctx context.Context, from, to string) error {
	if err := validateCollectionName(to); err != nil {
		return err
	}
	if from == to {
		return fmt.Errorf("%w: cannot rename a collection to itself", ErrInvalidArgument)
	}
	return s.inTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "UPDATE collections SET name = ? WHERE name = ?", to, from)
		if err != nil {
			return mapSQLiteError(err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return mapSQLiteError(err)
		} else if n == 0 {
			return fmt.Errorf("%w: collection %q", ErrNotFound, from)
		}
		_, err = tx.ExecContext(ctx, "UPDATE documents SET collection = ? WHERE collection = ?", to, from)
		return mapSQLiteError(err)
	})
}

func (s *SQLiteStore) CollectionExists(ctx context.Context, name string) (bool, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM collections WHERE name = ?", name).Scan(&n)
	return n > 0, mapSQLiteError(err)
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return mapSQLiteError(s.db.PingContext(ctx))
}

func (s *SQLiteStore) Close(ctx context.Context) error {
	return s.db.Close()
}
