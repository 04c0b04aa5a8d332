// Package mongostore persists users and notes as MongoDB documents.
//
// Username and title uniqueness is enforced by unique indexes built with a
// strength-1 "en" collation, which ignores both letter case and accents.
// Every lookup by name passes the same collation so it can use the index.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/technotes/apiserver/config"
	"github.com/technotes/apiserver/internal/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	usersCollection = "users"
	notesCollection = "notes"

	defaultConnectTimeout = 10 * time.Second
)

var nameCollation = &options.Collation{Locale: "en", Strength: 1}

// Store owns the client connection shared by both repositories.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect dials MongoDB and verifies the primary is reachable.
func Connect(ctx context.Context, cfg config.MongoConfig) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	return &Store{client: client, db: client.Database(cfg.Database)}, nil
}

// EnsureIndexes creates the unique name indexes and the note owner index.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	uniqueName := func(field string) mongo.IndexModel {
		return mongo.IndexModel{
			Keys: bson.D{{Key: field, Value: 1}},
			Options: options.Index().
				SetName(field + "_ci_unique").
				SetUnique(true).
				SetCollation(nameCollation),
		}
	}

	if _, err := s.db.Collection(usersCollection).Indexes().CreateOne(ctx, uniqueName("username")); err != nil {
		return fmt.Errorf("create users index: %w", err)
	}
	if _, err := s.db.Collection(notesCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		uniqueName("title"),
		{Keys: bson.D{{Key: "user", Value: 1}}, Options: options.Index().SetName("user_1")},
	}); err != nil {
		return fmt.Errorf("create notes indexes: %w", err)
	}
	return nil
}

func (s *Store) Users() *UserRepository {
	return &UserRepository{coll: s.db.Collection(usersCollection)}
}

func (s *Store) Notes() *NoteRepository {
	return &NoteRepository{coll: s.db.Collection(notesCollection)}
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// objectID parses a hex id. Malformed ids cannot name a document, so they
// are reported as not found.
func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, store.ErrNotFound
	}
	return oid, nil
}

func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return store.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return store.ErrDuplicate
	default:
		return err
	}
}

var createdOrder = options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
