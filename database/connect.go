package database

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/imagineserve/imagine-serve/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// ErrMissingURI is returned when the connection string is not configured.
var ErrMissingURI = errors.New("MONGODB_URI not set")

const defaultDatabaseName = "imagineserve"

type dialFunc func(ctx context.Context, uri string) (*mongo.Client, error)

// Mongo owns the one client handle for the process. Connect memoizes: the
// first caller dials, concurrent callers block on the same attempt, and
// every later call returns the cached handle (or the cached dial error)
// without a new attempt.
type Mongo struct {
	uri  string
	name string
	dial dialFunc

	once   sync.Once
	client *mongo.Client
	err    error
}

// New builds a connector for the given connection string. An empty uri is
// accepted here and surfaces as ErrMissingURI from Connect, so the caller
// decides how a configuration error is reported.
func New(uri string) *Mongo {
	return &Mongo{
		uri:  uri,
		name: defaultDatabaseName,
		dial: dialMongo,
	}
}

// NewFromEnv builds a connector from the MONGODB_URI environment value.
func NewFromEnv() *Mongo {
	uri, _ := config.Lookup("MONGODB_URI")
	return New(uri)
}

func dialMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("ping: %w", err)
	}

	return client, nil
}

// Connect returns the live client handle, dialing on first use.
func (m *Mongo) Connect(ctx context.Context) (*mongo.Client, error) {
	m.once.Do(func() {
		if m.uri == "" {
			m.err = ErrMissingURI
			return
		}
		m.client, m.err = m.dial(ctx, m.uri)
	})
	return m.client, m.err
}

// Database returns the application database, connecting if needed.
func (m *Mongo) Database(ctx context.Context) (*mongo.Database, error) {
	client, err := m.Connect(ctx)
	if err != nil {
		return nil, err
	}
	return client.Database(m.name), nil
}

// Close tears down the client. Safe to call when Connect never succeeded.
func (m *Mongo) Close(ctx context.Context) error {
	if m.client == nil {
		return nil
	}
	return m.client.Disconnect(ctx)
}
