package mongostore

import (
	"context"
	"time"

	"github.com/technotes/apiserver/internal/store"
	"github.com/technotes/apiserver/types"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type userDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Username  string             `bson:"username"`
	Password  string             `bson:"password"`
	Roles     []string           `bson:"roles"`
	Active    bool               `bson:"active"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (d userDocument) user() types.User {
	return types.User{
		ID:           d.ID.Hex(),
		Username:     d.Username,
		PasswordHash: d.Password,
		Roles:        types.Roles(d.Roles),
		Active:       d.Active,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

// UserRepository stores users in the "users" collection.
type UserRepository struct {
	coll *mongo.Collection
}

func (r *UserRepository) List(ctx context.Context) ([]types.User, error) {
	cursor, err := r.coll.Find(ctx, bson.D{}, createdOrder)
	if err != nil {
		return nil, err
	}
	var docs []userDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	users := make([]types.User, 0, len(docs))
	for _, doc := range docs {
		users = append(users, doc.user())
	}
	return users, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (types.User, error) {
	oid, err := objectID(id)
	if err != nil {
		return types.User{}, err
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (types.User, error) {
	return r.findOne(ctx, bson.M{"username": username}, options.FindOne().SetCollation(nameCollation))
}

func (r *UserRepository) Create(ctx context.Context, user types.User) (types.User, error) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	doc := userDocument{
		ID:        primitive.NewObjectID(),
		Username:  user.Username,
		Password:  user.PasswordHash,
		Roles:     []string(user.Roles),
		Active:    user.Active,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return types.User{}, translateError(err)
	}
	return doc.user(), nil
}

func (r *UserRepository) Update(ctx context.Context, user types.User) (types.User, error) {
	oid, err := objectID(user.ID)
	if err != nil {
		return types.User{}, err
	}

	user.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.coll.UpdateByID(ctx, oid, bson.M{"$set": bson.M{
		"username":  user.Username,
		"password":  user.PasswordHash,
		"roles":     []string(user.Roles),
		"active":    user.Active,
		"updatedAt": user.UpdatedAt,
	}})
	if err != nil {
		return types.User{}, translateError(err)
	}
	if result.MatchedCount == 0 {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
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

func (r *UserRepository) findOne(ctx context.Context, filter bson.M, opts ...*options.FindOneOptions) (types.User, error) {
	var doc userDocument
	if err := r.coll.FindOne(ctx, filter, opts...).Decode(&doc); err != nil {
		return types.User{}, translateError(err)
	}
	return doc.user(), nil
}
