package mongostore

import (
	"context"
	"fmt"
	"time"

	"github.com/technotes/apiserver/internal/store"
	"github.com/technotes/apiserver/types"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type noteDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	User      any                `bson:"user"`
	Title     string             `bson:"title"`
	Text      string             `bson:"text"`
	Completed bool               `bson:"completed"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (d noteDocument) note() types.Note {
	return types.Note{
		ID:        d.ID.Hex(),
		User:      refString(d.User),
		Title:     d.Title,
		Text:      d.Text,
		Completed: d.Completed,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// userRef stores owner ids that look like ObjectIDs as ObjectIDs so they
// match documents written by other clients; anything else is kept verbatim.
func userRef(id string) any {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return oid
	}
	return id
}

func refString(v any) string {
	switch ref := v.(type) {
	case primitive.ObjectID:
		return ref.Hex()
	case string:
		return ref
	case nil:
		return ""
	default:
		return fmt.Sprint(ref)
	}
}

// NoteRepository stores notes in the "notes" collection.
type NoteRepository struct {
	coll *mongo.Collection
}

func (r *NoteRepository) List(ctx context.Context) ([]types.Note, error) {
	cursor, err := r.coll.Find(ctx, bson.D{}, createdOrder)
	if err != nil {
		return nil, err
	}
	var docs []noteDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	notes := make([]types.Note, 0, len(docs))
	for _, doc := range docs {
		notes = append(notes, doc.note())
	}
	return notes, nil
}

func (r *NoteRepository) GetByID(ctx context.Context, id string) (types.Note, error) {
	oid, err := objectID(id)
	if err != nil {
		return types.Note{}, err
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *NoteRepository) GetByTitle(ctx context.Context, title string) (types.Note, error) {
	return r.findOne(ctx, bson.M{"title": title}, options.FindOne().SetCollation(nameCollation))
}

func (r *NoteRepository) GetByUser(ctx context.Context, userID string) (types.Note, error) {
	return r.findOne(ctx, bson.M{"user": userRef(userID)})
}

func (r *NoteRepository) Create(ctx context.Context, note types.Note) (types.Note, error) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	doc := noteDocument{
		ID:        primitive.NewObjectID(),
		User:      userRef(note.User),
		Title:     note.Title,
		Text:      note.Text,
		Completed: note.Completed,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return types.Note{}, translateError(err)
	}
	return doc.note(), nil
}

func (r *NoteRepository) Update(ctx context.Context, note types.Note) (types.Note, error) {
	oid, err := objectID(note.ID)
	if err != nil {
		return types.Note{}, err
	}

	note.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.coll.UpdateByID(ctx, oid, bson.M{"$set": bson.M{
		"user":      userRef(note.User),
		"title":     note.Title,
		"text":      note.Text,
		"completed": note.Completed,
		"updatedAt": note.UpdatedAt,
	}})
	if err != nil {
		return types.Note{}, translateError(err)
	}
	if result.MatchedCount == 0 {
		return types.Note{}, store.ErrNotFound
	}
	return note, nil
}

func (r *NoteRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *NoteRepository) findOne(ctx context.Context, filter bson.M, opts ...*options.FindOneOptions) (types.Note, error) {
	var doc noteDocument
	if err := r.coll.FindOne(ctx, filter, opts...).Decode(&doc); err != nil {
		return types.Note{}, translateError(err)
	}
	return doc.note(), nil
}
