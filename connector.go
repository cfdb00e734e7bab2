package main

import (
	"context"
	"sync"

	"github.com/aws/aws-sdk-go/service/secretsmanager/secretsmanageriface"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type connectFunc func(ctx context.Context, uri string) (database, error)

// Connector holds at most one open database per process. Concurrent callers
// that miss the cache share a single in-flight connection attempt; a failed
// attempt is not remembered.
type Connector struct {
	secrets  secretsmanageriface.SecretsManagerAPI
	secretID string
	connect  connectFunc
	logger   *zap.Logger

	group singleflight.Group
	mu    sync.RWMutex
	db    database
}

// NewConnector ...
func NewConnector(client secretsmanageriface.SecretsManagerAPI, secretID string, connect connectFunc, logger *zap.Logger) *Connector {
	return &Connector{
		secrets:  client,
		secretID: secretID,
		connect:  connect,
		logger:   logger,
	}
}

// GetConnection returns the cached database, resolving credentials and
// connecting on the first call.
func (c *Connector) GetConnection(ctx context.Context) (database, error) {
	if db := c.cached(); db != nil {
		c.logger.Debug("Using cached connection")
		return db, nil
	}

	v, err, _ := c.group.Do("connect", func() (interface{}, error) {
		// Another flight may have filled the cache between the read above
		// and this one starting.
		if db := c.cached(); db != nil {
			return db, nil
		}

		c.logger.Info("Getting Secret", zap.String("secretId", c.secretID))
		creds, err := getCredentials(ctx, c.secrets, c.secretID)
		if err != nil {
			return nil, err
		}

		c.logger.Info("Connecting to database", zap.String("database", databaseName))
		db, err := c.connect(ctx, creds.URI())
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.db = db
		c.mu.Unlock()
		return db, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(database), nil
}

func (c *Connector) cached() database {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.db
}
