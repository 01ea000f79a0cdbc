package arangodb

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/arangodb/go-driver/v2/arangodb"
	"github.com/arangodb/go-driver/v2/arangodb/shared"
	"github.com/arangodb/go-driver/v2/connection"
)

// Client wraps a single ArangoDB connection scoped to one database.
// EnsureDatabase must be called before Database or Collection.
type Client interface {
	EnsureDatabase(ctx context.Context) error
	EnsureCollection(ctx context.Context, name string) error
	Database() arangodb.Database
	Collection(ctx context.Context, name string) (arangodb.Collection, error)
	Ping(ctx context.Context) error
	Close() error
}

type Config struct {
	URL      string
	Username string
	Password string
	Database string
}

func (c Config) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("arangodb URL is required")
	}
	if c.Username == "" {
		return fmt.Errorf("arangodb username is required")
	}
	if c.Database == "" {
		return fmt.Errorf("arangodb database name is required")
	}
	return nil
}

type client struct {
	conn         connection.Connection
	arangoClient arangodb.Client
	db           arangodb.Database
	cfg          Config
}

func New(ctx context.Context, cfg Config) (Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("arangodb config: %w", err)
	}

	endpoint := connection.NewRoundRobinEndpoints([]string{cfg.URL}) // round robins from the urls. we just have one for now
	conn := connection.NewHttp2Connection(connection.DefaultHTTP2ConfigurationWrapper(endpoint, true))

	auth := connection.NewBasicAuth(cfg.Username, cfg.Password)
	if err := conn.SetAuthentication(auth); err != nil {
		return nil, fmt.Errorf("arangodb auth: %w", err)
	}

	arangoClient := arangodb.NewClient(conn)

	c := &client{
		conn:         conn,
		arangoClient: arangoClient,
		cfg:          cfg,
	}

	return c, nil
}

func (c *client) Close() error {
	return nil
}

func (c *client) EnsureDatabase(ctx context.Context) error {
	start := time.Now()

	exists, err := c.arangoClient.DatabaseExists(ctx, c.cfg.Database)
	if err != nil {
		return fmt.Errorf("check database exists: %w", err)
	}

	if !exists {
		_, err = c.arangoClient.CreateDatabase(ctx, c.cfg.Database, nil)
		if err != nil {
			return fmt.Errorf("create database: %w", err)
		}
		slog.InfoContext(ctx, "arangodb database created",
			"database", c.cfg.Database,
			"duration_ms", time.Since(start).Milliseconds())
	}

	db, err := c.arangoClient.GetDatabase(ctx, c.cfg.Database, nil)
	if err != nil {
		return fmt.Errorf("get database: %w", err)
	}
	c.db = db

	return nil
}

func (c *client) EnsureCollection(ctx context.Context, name string) error {
	if c.db == nil {
		return fmt.Errorf("database not initialized, call EnsureDatabase first")
	}

	exists, err := c.db.CollectionExists(ctx, name)
	if err != nil {
		return fmt.Errorf("check collection %s exists: %w", name, err)
	}

	if !exists {
		colType := arangodb.CollectionTypeDocument
		props := &arangodb.CreateCollectionPropertiesV2{Type: &colType}

		_, err = c.db.CreateCollectionV2(ctx, name, props)
		if err != nil {
			return fmt.Errorf("create collection %s: %w", name, err)
		}
		slog.InfoContext(ctx, "arangodb collection created", "collection", name)
	}

	return nil
}

func (c *client) Database() arangodb.Database {
	return c.db
}

func (c *client) Collection(ctx context.Context, name string) (arangodb.Collection, error) {
	if c.db == nil {
		return nil, fmt.Errorf("database not initialized, call EnsureDatabase first")
	}

	col, err := c.db.GetCollection(ctx, name, nil)
	if err != nil {
		return nil, fmt.Errorf("get collection %s: %w", name, err)
	}
	return col, nil
}

// Ping verifies the server is reachable and the database still exists.
func (c *client) Ping(ctx context.Context) error {
	exists, err := c.arangoClient.DatabaseExists(ctx, c.cfg.Database)
	if err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	if !exists {
		return fmt.Errorf("database %s does not exist", c.cfg.Database)
	}
	return nil
}

// IsNotFound reports whether err means a document lookup found nothing.
// Illegal document keys surface from the server as 400; on a lookup by
// caller-supplied key both cases mean the same thing: no such document.
func IsNotFound(err error) bool {
	return shared.IsArangoErrorWithCode(err, http.StatusNotFound) ||
		shared.IsArangoErrorWithCode(err, http.StatusBadRequest)
}

// IsConflict reports whether err is a unique-constraint violation, e.g.
// inserting a document whose _key already exists.
func IsConflict(err error) bool {
	return shared.IsArangoErrorWithCode(err, http.StatusConflict)
}
