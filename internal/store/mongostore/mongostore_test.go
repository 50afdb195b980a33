package mongostore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"foreverhome/internal/store"
)

func TestToBSON(t *testing.T) {
	oid := primitive.NewObjectID()

	tests := []struct {
		name   string
		filter store.Filter
		want   bson.M
		ok     bool
	}{
		{
			name:   "empty filter",
			filter: nil,
			want:   bson.M{},
			ok:     true,
		},
		{
			name:   "plain field",
			filter: store.ByField("email", "a@example.com"),
			want:   bson.M{"email": "a@example.com"},
			ok:     true,
		},
		{
			name:   "hex id",
			filter: store.ByID(oid.Hex()),
			want:   bson.M{"_id": oid},
			ok:     true,
		},
		{
			name:   "object id passes through",
			filter: store.Filter{store.IDField: oid},
			want:   bson.M{"_id": oid},
			ok:     true,
		},
		{
			name:   "malformed id matches nothing",
			filter: store.ByID("not-an-object-id"),
			ok:     false,
		},
		{
			name:   "non string id matches nothing",
			filter: store.Filter{store.IDField: 42},
			ok:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := toBSON(tt.filter)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	oid := primitive.NewObjectID()
	doc := normalize(bson.M{"_id": oid, "name": "Milo"})

	assert.Equal(t, oid.Hex(), doc[store.IDField])
	assert.Equal(t, "Milo", doc["name"])
}

func TestIDString(t *testing.T) {
	oid := primitive.NewObjectID()
	assert.Equal(t, oid.Hex(), idString(oid))
	assert.Equal(t, "abc", idString("abc"))
	assert.Equal(t, "7", idString(7))
}
