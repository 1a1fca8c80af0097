package mongo

import (
	"context"
	"time"

	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/storinews/courier"
)

const newslettersCollection = "newsletters"

// collection is the slice of *mongo.Collection the store needs.
type collection interface {
	InsertOne(ctx context.Context, document interface{}, opts ...options.Lister[options.InsertOneOptions]) (*mongo.InsertOneResult, error)
	FindOne(ctx context.Context, filter interface{}, opts ...options.Lister[options.FindOneOptions]) *mongo.SingleResult
	Find(ctx context.Context, filter interface{}, opts ...options.Lister[options.FindOptions]) (*mongo.Cursor, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...options.Lister[options.UpdateOneOptions]) (*mongo.UpdateResult, error)
}

type newsletterStore struct {
	coll collection
}

// NewNewsletterStore returns a NewsletterStore backed by the newsletters
// collection of an opened database. All mutations are single-document atomic
// updates, so concurrent calls against the same newsletter cannot lose each
// other's writes.
func NewNewsletterStore(db *DB) courier.NewsletterStore {
	return &newsletterStore{
		coll: db.database.Collection(newslettersCollection),
	}
}

// Create persists a new newsletter with a server-assigned identifier and
// creation timestamp. No uniqueness check is made on the name.
func (s *newsletterStore) Create(ctx context.Context, n *courier.Newsletter) error {
	if err := n.Validate(); err != nil {
		return err
	}

	n.ID = uuid.NewV4().String()
	n.CreatedAt = time.Now().UTC()

	if _, err := s.coll.InsertOne(ctx, n); err != nil {
		return errors.Wrap(err, "failed to insert newsletter")
	}

	return nil
}

// FindByName returns the oldest newsletter with the given name. Names are not
// unique in the collection; the first match is authoritative.
func (s *newsletterStore) FindByName(ctx context.Context, name string) (*courier.Newsletter, error) {
	var n courier.Newsletter
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	if err := s.coll.FindOne(ctx, bson.M{"name": name}, opts).Decode(&n); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, courier.Errorf(courier.ErrNotFound, "mongo.FindByName", "no newsletter named %s", name)
		}
		return nil, errors.Wrap(err, "failed to find newsletter")
	}

	return &n, nil
}

// Summaries returns one row per newsletter document.
func (s *newsletterStore) Summaries(ctx context.Context) ([]courier.Summary, error) {
	cur, err := s.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list newsletters")
	}
	defer cur.Close(ctx)

	summaries := make([]courier.Summary, 0)
	for cur.Next(ctx) {
		var n courier.Newsletter
		if err := cur.Decode(&n); err != nil {
			return nil, errors.Wrap(err, "failed to decode newsletter")
		}
		summaries = append(summaries, n.Summary())
	}
	if err := cur.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to list newsletters")
	}

	return summaries, nil
}

// AddEmail appends email to the recipient list of the first newsletter matching
// name. The push is guarded by a non-membership filter so a duplicate can never
// be inserted, even under concurrent calls.
func (s *newsletterStore) AddEmail(ctx context.Context, name, email string) error {
	n, err := s.FindByName(ctx, name)
	if err != nil {
		return err
	}

	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": n.ID, "recipientList": bson.M{"$ne": email}},
		bson.M{"$push": bson.M{"recipientList": email}},
	)
	if err != nil {
		return errors.Wrap(err, "failed to add recipient")
	}
	if res.ModifiedCount == 0 {
		return courier.Errorf(courier.ErrConflict, "mongo.AddEmail", "%s is already on the list", email)
	}

	return nil
}

// RemoveEmail pulls email from the recipient list and bumps the unsubscribe
// counter in the same update, so the two fields can never drift apart.
func (s *newsletterStore) RemoveEmail(ctx context.Context, name, email string) error {
	n, err := s.FindByName(ctx, name)
	if err != nil {
		return err
	}

	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": n.ID, "recipientList": email},
		bson.M{
			"$pull": bson.M{"recipientList": email},
			"$inc":  bson.M{"unsubscribeCount": 1},
		},
	)
	if err != nil {
		return errors.Wrap(err, "failed to remove recipient")
	}
	if res.ModifiedCount == 0 {
		return courier.Errorf(courier.ErrNotFound, "mongo.RemoveEmail", "%s is not on the list", email)
	}

	return nil
}

// IncrementSentCount adds by to the cumulative sent counter of the first
// newsletter matching name.
func (s *newsletterStore) IncrementSentCount(ctx context.Context, name string, by int) error {
	n, err := s.FindByName(ctx, name)
	if err != nil {
		return err
	}

	if _, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": n.ID},
		bson.M{"$inc": bson.M{"sentEmailsCount": by}},
	); err != nil {
		return errors.Wrap(err, "failed to increment sent counter")
	}

	return nil
}
