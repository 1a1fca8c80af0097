package mongo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/storinews/courier"
)

// fakeCollection answers the store's collection calls from an in-memory
// fixture and records the filter and update of the last mutation.
type fakeCollection struct {
	docs []*courier.Newsletter

	insertedDoc interface{}
	insertErr   error

	modifiedCount int64
	updateErr     error
	updateFilter  interface{}
	updateDoc     interface{}
}

func (f *fakeCollection) InsertOne(_ context.Context, document interface{}, _ ...options.Lister[options.InsertOneOptions]) (*mongo.InsertOneResult, error) {
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	f.insertedDoc = document
	return &mongo.InsertOneResult{InsertedID: document.(*courier.Newsletter).ID}, nil
}

func (f *fakeCollection) FindOne(_ context.Context, _ interface{}, _ ...options.Lister[options.FindOneOptions]) *mongo.SingleResult {
	if len(f.docs) == 0 {
		return mongo.NewSingleResultFromDocument(bson.D{}, mongo.ErrNoDocuments, nil)
	}
	return mongo.NewSingleResultFromDocument(f.docs[0], nil, nil)
}

func (f *fakeCollection) Find(_ context.Context, _ interface{}, _ ...options.Lister[options.FindOptions]) (*mongo.Cursor, error) {
	docs := make([]interface{}, 0, len(f.docs))
	for _, d := range f.docs {
		docs = append(docs, d)
	}
	return mongo.NewCursorFromDocuments(docs, nil, nil)
}

func (f *fakeCollection) UpdateOne(_ context.Context, filter interface{}, update interface{}, _ ...options.Lister[options.UpdateOneOptions]) (*mongo.UpdateResult, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	f.updateFilter = filter
	f.updateDoc = update
	return &mongo.UpdateResult{MatchedCount: f.modifiedCount, ModifiedCount: f.modifiedCount}, nil
}

func newWeekly(recipients ...string) *courier.Newsletter {
	n := courier.NewNewsletter("weekly", recipients, "attachments/report.pdf", "Weekly digest", "News of the week.")
	n.ID = "8b29ba1e-9df6-4e05-a9f0-3c0a1e4fbc21"
	return n
}

func TestCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns id and timestamp", func(t *testing.T) {
		coll := &fakeCollection{}
		store := &newsletterStore{coll: coll}

		n := courier.NewNewsletter("weekly", []string{"a@example.com"}, "attachments/report.pdf", "Weekly digest", "News of the week.")
		require.NoError(t, store.Create(ctx, n))
		assert.NotEmpty(t, n.ID)
		assert.False(t, n.CreatedAt.IsZero())
		assert.Same(t, n, coll.insertedDoc)
	})

	t.Run("rejects invalid newsletter", func(t *testing.T) {
		coll := &fakeCollection{}
		store := &newsletterStore{coll: coll}

		err := store.Create(ctx, courier.NewNewsletter("", nil, "", "s", "t"))
		assert.Equal(t, courier.ErrInvalid, courier.ErrorCode(err))
		assert.Nil(t, coll.insertedDoc)
	})
}

func TestFindByName(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		store := &newsletterStore{coll: &fakeCollection{docs: []*courier.Newsletter{newWeekly("a@example.com", "b@example.com")}}}

		n, err := store.FindByName(ctx, "weekly")
		require.NoError(t, err)
		assert.Equal(t, "weekly", n.Name)
		assert.Equal(t, []string{"a@example.com", "b@example.com"}, n.RecipientList)
		assert.Equal(t, "attachments/report.pdf", n.AttachmentPath)
	})

	t.Run("unknown name", func(t *testing.T) {
		store := &newsletterStore{coll: &fakeCollection{}}

		_, err := store.FindByName(ctx, "missing")
		assert.Equal(t, courier.ErrNotFound, courier.ErrorCode(err))
	})
}

func TestAddEmail(t *testing.T) {
	ctx := context.Background()

	t.Run("guards the push against duplicates", func(t *testing.T) {
		coll := &fakeCollection{docs: []*courier.Newsletter{newWeekly("a@example.com")}, modifiedCount: 1}
		store := &newsletterStore{coll: coll}

		require.NoError(t, store.AddEmail(ctx, "weekly", "b@example.com"))
		assert.Equal(t, bson.M{
			"_id":           "8b29ba1e-9df6-4e05-a9f0-3c0a1e4fbc21",
			"recipientList": bson.M{"$ne": "b@example.com"},
		}, coll.updateFilter)
		assert.Equal(t, bson.M{"$push": bson.M{"recipientList": "b@example.com"}}, coll.updateDoc)
	})

	t.Run("already present", func(t *testing.T) {
		store := &newsletterStore{coll: &fakeCollection{docs: []*courier.Newsletter{newWeekly("a@example.com")}, modifiedCount: 0}}

		err := store.AddEmail(ctx, "weekly", "a@example.com")
		assert.Equal(t, courier.ErrConflict, courier.ErrorCode(err))
	})

	t.Run("unknown newsletter", func(t *testing.T) {
		store := &newsletterStore{coll: &fakeCollection{}}

		err := store.AddEmail(ctx, "missing", "a@example.com")
		assert.Equal(t, courier.ErrNotFound, courier.ErrorCode(err))
	})
}

func TestRemoveEmail(t *testing.T) {
	ctx := context.Background()

	t.Run("pulls and counts in one update", func(t *testing.T) {
		coll := &fakeCollection{docs: []*courier.Newsletter{newWeekly("a@example.com", "b@example.com")}, modifiedCount: 1}
		store := &newsletterStore{coll: coll}

		require.NoError(t, store.RemoveEmail(ctx, "weekly", "a@example.com"))
		assert.Equal(t, bson.M{
			"_id":           "8b29ba1e-9df6-4e05-a9f0-3c0a1e4fbc21",
			"recipientList": "a@example.com",
		}, coll.updateFilter)
		assert.Equal(t, bson.M{
			"$pull": bson.M{"recipientList": "a@example.com"},
			"$inc":  bson.M{"unsubscribeCount": 1},
		}, coll.updateDoc)
	})

	t.Run("absent email", func(t *testing.T) {
		store := &newsletterStore{coll: &fakeCollection{docs: []*courier.Newsletter{newWeekly("a@example.com")}, modifiedCount: 0}}

		err := store.RemoveEmail(ctx, "weekly", "ghost@example.com")
		assert.Equal(t, courier.ErrNotFound, courier.ErrorCode(err))
	})
}

func TestIncrementSentCount(t *testing.T) {
	ctx := context.Background()

	coll := &fakeCollection{docs: []*courier.Newsletter{newWeekly("a@example.com")}, modifiedCount: 1}
	store := &newsletterStore{coll: coll}

	require.NoError(t, store.IncrementSentCount(ctx, "weekly", 3))
	assert.Equal(t, bson.M{"_id": "8b29ba1e-9df6-4e05-a9f0-3c0a1e4fbc21"}, coll.updateFilter)
	assert.Equal(t, bson.M{"$inc": bson.M{"sentEmailsCount": 3}}, coll.updateDoc)
}

func TestSummaries(t *testing.T) {
	ctx := context.Background()

	weekly := newWeekly("a@example.com", "b@example.com")
	weekly.SentEmailsCount = 4
	weekly.UnsubscribeCount = 1
	store := &newsletterStore{coll: &fakeCollection{docs: []*courier.Newsletter{weekly}}}

	summaries, err := store.Summaries(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "weekly", summaries[0].Name)
	assert.Equal(t, 2, summaries[0].Recipients)
	assert.Equal(t, 4, summaries[0].EmailsSent)
	assert.Equal(t, "attachments/report.pdf", summaries[0].FileName)
	assert.Equal(t, 1, summaries[0].UnsubscribeCount)
}
