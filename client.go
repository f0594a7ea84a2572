// Package richdex is an embedded client for schema-driven secondary
// indexing over a Valkey/Redis substrate. Declare collections with
// typed fields and filter views, then insert and query documents
// without running the HTTP server.
package richdex

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/richdex/internal/chunk"
	"github.com/kailas-cloud/richdex/internal/config"
	"github.com/kailas-cloud/richdex/internal/db"
	dbRedis "github.com/kailas-cloud/richdex/internal/db/redis"
	"github.com/kailas-cloud/richdex/internal/domain/collection"
	counterrepo "github.com/kailas-cloud/richdex/internal/repository/counter"
	filterrepo "github.com/kailas-cloud/richdex/internal/repository/filterview"
	indexrepo "github.com/kailas-cloud/richdex/internal/repository/index"
	recordrepo "github.com/kailas-cloud/richdex/internal/repository/record"
	"github.com/kailas-cloud/richdex/internal/schema"
	documentuc "github.com/kailas-cloud/richdex/internal/usecase/document"
)

const defaultReadinessTimeout = 10 * time.Second

// ErrUnknownCollection is returned for collections the client was not
// configured with.
var ErrUnknownCollection = errors.New("richdex: unknown collection")

// Client is the richdex SDK entry point.
type Client struct {
	store     db.Store
	documents map[string]*documentuc.Service
}

// New creates a richdex Client, connects to the database and compiles
// the declared collection schemas.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("richdex: database address required (use WithValkey or WithRedis)")
	}
	if len(cfg.collections) == 0 {
		return nil, errors.New("richdex: at least one collection required (use WithCollection)")
	}

	store, err := createStore(cfg)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("richdex: database not ready: %w", err)
	}

	client, err := wireClient(store, cfg)
	if err != nil {
		store.Close()
		return nil, err
	}
	return client, nil
}

func createStore(cfg *clientConfig) (db.Store, error) {
	switch cfg.driver {
	case "valkey", "redis":
		// Both speak RESP, one rueidis-backed store serves both.
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.addrs,
			Username: cfg.username,
			Password: cfg.password,
			DB:       cfg.db,
		})
		if err != nil {
			return nil, fmt.Errorf("richdex: create %s store: %w", cfg.driver, err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("richdex: unknown driver %q", cfg.driver)
	}
}

func wireClient(store db.Store, cfg *clientConfig) (*Client, error) {
	cols := make(map[string]config.CollectionConfig, len(cfg.collections))
	var decls []collection.Declaration
	for _, dc := range cfg.collections {
		var cc config.CollectionConfig
		for _, o := range dc.opts {
			o(&cc)
		}
		if dc.sample == nil {
			cols[dc.name] = cc
			continue
		}
		sample, err := sampleRecord(dc.sample)
		if err != nil {
			return nil, fmt.Errorf("richdex: collection %s sample: %w", dc.name, err)
		}
		decl, err := schema.BuildFromSample(dc.name, sample, dc.indexed, cc)
		if err != nil {
			return nil, fmt.Errorf("richdex: %w", err)
		}
		decls = append(decls, decl)
	}

	built, err := schema.Build(cols)
	if err != nil {
		return nil, fmt.Errorf("richdex: %w", err)
	}
	decls = append(decls, built...)

	chunker := chunk.New(cfg.chunkSize)
	documents := make(map[string]*documentuc.Service, len(decls))
	for _, decl := range decls {
		documents[decl.Name()] = documentuc.New(decl,
			recordrepo.New(store, decl, chunker),
			indexrepo.New(store, decl, chunker),
			filterrepo.New(store, decl, chunker),
			counterrepo.New(store, decl.Name()),
		)
	}

	return &Client{store: store, documents: documents}, nil
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Collection returns the document API for a declared collection.
func (c *Client) Collection(name string) (*Collection, error) {
	svc, ok := c.documents[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCollection, name)
	}
	return &Collection{name: name, svc: svc}, nil
}
