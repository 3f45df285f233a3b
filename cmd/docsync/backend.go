package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/openmined/docsync/internal/config"
	"github.com/openmined/docsync/internal/filestore"
	"github.com/openmined/docsync/internal/gemini"
	"github.com/openmined/docsync/internal/inventory"
	"github.com/openmined/docsync/internal/retry"
	docsync "github.com/openmined/docsync/internal/sync"
)

var errStoreNotFound = errors.New("store not found")

// openBackend connects to the configured remote. The returned func releases
// the connection.
func (a *app) openBackend(ctx context.Context) (filestore.Backend, func(), error) {
	switch a.cfg.Backend {
	case config.BackendS3:
		s3cfg := a.cfg.S3
		backend, err := filestore.NewS3Backend(ctx, &filestore.S3Config{
			Bucket:    s3cfg.Bucket,
			Region:    s3cfg.Region,
			Endpoint:  s3cfg.Endpoint,
			AccessKey: s3cfg.AccessKey,
			SecretKey: s3cfg.SecretKey,
		})
		if err != nil {
			return nil, nil, err
		}
		return backend, func() {}, nil

	default:
		g := a.cfg.Gemini
		sdk, err := gemini.New(&gemini.Config{
			BaseURL: g.BaseURL,
			APIKey:  g.APIKey,
			Model:   g.Model,
			Timeout: g.Timeout,
		})
		if err != nil {
			return nil, nil, err
		}
		return filestore.NewGeminiBackend(sdk), sdk.Close, nil
	}
}

// requireStore finds the configured store or fails with errStoreNotFound.
func (a *app) requireStore(ctx context.Context, backend filestore.Backend) (*filestore.Store, error) {
	store, err := backend.FindStore(ctx, a.cfg.Store)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, fmt.Errorf("%w: %q (run `docsync upsert` first)", errStoreNotFound, a.cfg.Store)
	}
	return store, nil
}

func (a *app) newBuilder() *inventory.Builder {
	builder := inventory.NewBuilder()
	if len(a.cfg.Extensions) > 0 {
		builder.Extensions = inventory.NewExtensionSet(a.cfg.Extensions)
	}
	builder.IgnoreLines = a.cfg.Ignore
	return builder
}

func (a *app) executorConfig() docsync.ExecutorConfig {
	s := a.cfg.Sync
	policy := retry.DefaultPolicy()
	policy.MaxAttempts = s.MaxAttempts
	policy.BaseDelay = s.BaseDelay
	return docsync.ExecutorConfig{
		Concurrency:  s.Concurrency,
		Retry:        policy,
		PollInterval: s.PollInterval,
		PollTimeout:  s.PollTimeout,
	}
}
