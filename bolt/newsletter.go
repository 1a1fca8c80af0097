package bolt

import (
	"context"
	"time"

	"github.com/asdine/storm/v3"
	"github.com/asdine/storm/v3/index"
	"github.com/go-errors/errors"
	uuid "github.com/satori/go.uuid"

	"github.com/storinews/courier"
)

// finder is the slice of the storm API shared by the database handle and an
// open transaction.
type finder interface {
	Find(fieldName string, value interface{}, to interface{}, options ...func(q *index.Options)) error
}

type newsletterStore struct {
	db *DB
}

// NewNewsletterStore returns a NewsletterStore backed by the embedded storm
// database. Mutations run inside a write transaction; bolt allows a single
// writer, so read-modify-write sequences are serialized.
func NewNewsletterStore(db *DB) courier.NewsletterStore {
	return &newsletterStore{
		db: db,
	}
}

// Create persists a new newsletter with a fresh identifier and creation
// timestamp. No uniqueness check is made on the name.
func (s *newsletterStore) Create(ctx context.Context, n *courier.Newsletter) error {
	if err := n.Validate(); err != nil {
		return err
	}

	n.ID = uuid.NewV4().String()
	n.CreatedAt = time.Now().UTC()

	if err := s.db.stormDB.Save(n); err != nil {
		return errors.Errorf("failed to save newsletter: %v", err)
	}

	return nil
}

// FindByName returns the first newsletter matching name.
func (s *newsletterStore) FindByName(ctx context.Context, name string) (*courier.Newsletter, error) {
	return findByName(s.db.stormDB, name)
}

func findByName(node finder, name string) (*courier.Newsletter, error) {
	var ns []courier.Newsletter
	if err := node.Find("Name", name, &ns, storm.Limit(1)); err != nil {
		if errors.Is(err, storm.ErrNotFound) {
			return nil, courier.Errorf(courier.ErrNotFound, "bolt.FindByName", "no newsletter named %s", name)
		}
		return nil, errors.Errorf("failed to find newsletter: %v", err)
	}

	return &ns[0], nil
}

// Summaries returns one row per stored newsletter.
func (s *newsletterStore) Summaries(ctx context.Context) ([]courier.Summary, error) {
	var ns []courier.Newsletter
	if err := s.db.stormDB.All(&ns); err != nil {
		return nil, errors.Errorf("failed to list newsletters: %v", err)
	}

	summaries := make([]courier.Summary, 0, len(ns))
	for _, n := range ns {
		summaries = append(summaries, n.Summary())
	}

	return summaries, nil
}

// AddEmail appends email to the recipient list of the first newsletter
// matching name.
func (s *newsletterStore) AddEmail(ctx context.Context, name, email string) error {
	tx, err := s.db.stormDB.Begin(true)
	if err != nil {
		return errors.Errorf("failed to begin transaction: %v", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	n, err := findByName(tx, name)
	if err != nil {
		return err
	}

	for _, r := range n.RecipientList {
		if r == email {
			return courier.Errorf(courier.ErrConflict, "bolt.AddEmail", "%s is already on the list", email)
		}
	}

	n.RecipientList = append(n.RecipientList, email)
	if err := tx.Save(n); err != nil {
		return errors.Errorf("failed to save newsletter: %v", err)
	}

	return tx.Commit()
}

// RemoveEmail removes email from the recipient list and bumps the unsubscribe
// counter in the same transaction.
func (s *newsletterStore) RemoveEmail(ctx context.Context, name, email string) error {
	tx, err := s.db.stormDB.Begin(true)
	if err != nil {
		return errors.Errorf("failed to begin transaction: %v", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	n, err := findByName(tx, name)
	if err != nil {
		return err
	}

	at := -1
	for i, r := range n.RecipientList {
		if r == email {
			at = i
			break
		}
	}
	if at < 0 {
		return courier.Errorf(courier.ErrNotFound, "bolt.RemoveEmail", "%s is not on the list", email)
	}

	n.RecipientList = append(n.RecipientList[:at], n.RecipientList[at+1:]...)
	n.UnsubscribeCount++
	if err := tx.Save(n); err != nil {
		return errors.Errorf("failed to save newsletter: %v", err)
	}

	return tx.Commit()
}

// IncrementSentCount adds by to the cumulative sent counter of the first
// newsletter matching name.
func (s *newsletterStore) IncrementSentCount(ctx context.Context, name string, by int) error {
	tx, err := s.db.stormDB.Begin(true)
	if err != nil {
		return errors.Errorf("failed to begin transaction: %v", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	n, err := findByName(tx, name)
	if err != nil {
		return err
	}

	n.SentEmailsCount += by
	if err := tx.Save(n); err != nil {
		return errors.Errorf("failed to save newsletter: %v", err)
	}

	return tx.Commit()
}
