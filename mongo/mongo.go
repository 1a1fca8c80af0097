package mongo

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	connectTimeout    = 10 * time.Second
	disconnectTimeout = 5 * time.Second
	retryAttempts     = 3
	retryInterval     = 5 * time.Second
)

// DB represents a connection to the mongo database holding the newsletters.
type DB struct {
	url  string
	name string

	client   *mongo.Client
	database *mongo.Database
}

// NewDB returns a new, unopened database handle.
func NewDB(url, name string) *DB {
	return &DB{
		url:  url,
		name: name,
	}
}

// Open connects and pings, retrying a few times to ride out transient failures
// of the managed cluster.
func (db *DB) Open() error {
	var lastErr error
	for attempt := 0; attempt < retryAttempts; attempt++ {
		if attempt > 0 {
			time.Sleep(retryInterval)
		}

		client, err := mongo.Connect(
			options.Client().
				ApplyURI(db.url).
				SetConnectTimeout(connectTimeout).
				SetRetryWrites(true).
				SetRetryReads(true),
		)
		if err != nil {
			lastErr = err
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		err = client.Ping(ctx, nil)
		cancel()
		if err != nil {
			lastErr = err
			continue
		}

		db.client = client
		db.database = client.Database(db.name)
		return nil
	}

	return errors.Wrap(lastErr, "failed to connect to mongo")
}

// Close disconnects from the cluster.
func (db *DB) Close() error {
	if db.client == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), disconnectTimeout)
	defer cancel()
	return db.client.Disconnect(ctx)
}
