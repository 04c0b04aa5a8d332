package mongostore

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/technotes/apiserver/internal/store"
	"github.com/technotes/apiserver/types"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestObjectID_MalformedIsNotFound(t *testing.T) {
	_, err := objectID("not-an-object-id")
	assert.ErrorIs(t, err, store.ErrNotFound)

	oid := primitive.NewObjectID()
	got, err := objectID(oid.Hex())
	require.NoError(t, err)
	assert.Equal(t, oid, got)
}

func TestTranslateError(t *testing.T) {
	assert.NoError(t, translateError(nil))
	assert.ErrorIs(t, translateError(mongo.ErrNoDocuments), store.ErrNotFound)

	dup := mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "E11000 duplicate key"}}}
	assert.ErrorIs(t, translateError(dup), store.ErrDuplicate)

	other := errors.New("connection reset")
	assert.Equal(t, other, translateError(other))
}

func TestUserRef_RoundTrip(t *testing.T) {
	oid := primitive.NewObjectID()

	assert.Equal(t, oid, userRef(oid.Hex()))
	assert.Equal(t, "legacy-user", userRef("legacy-user"))

	assert.Equal(t, oid.Hex(), refString(oid))
	assert.Equal(t, "legacy-user", refString("legacy-user"))
	assert.Equal(t, "", refString(nil))
}

func TestUserDocument_ToUser(t *testing.T) {
	now := time.Now()
	doc := userDocument{
		ID:        primitive.NewObjectID(),
		Username:  "alice",
		Password:  "$2a$10$hash",
		Roles:     []string{"Employee"},
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	user := doc.user()
	assert.Equal(t, doc.ID.Hex(), user.ID)
	assert.Equal(t, "$2a$10$hash", user.PasswordHash)
	assert.Equal(t, types.Roles{"Employee"}, user.Roles)
}
