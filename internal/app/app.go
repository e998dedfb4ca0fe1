// Package app assembles engines and processors from a loaded configuration.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/tsawler/reviewsense"
	"github.com/tsawler/reviewsense/data"
	"github.com/tsawler/reviewsense/internal/blob"
	"github.com/tsawler/reviewsense/internal/config"
	"github.com/tsawler/reviewsense/internal/handler"
	"github.com/tsawler/reviewsense/internal/store"
)

// OpenSource opens the configured corpus source. The returned close function
// releases it and is never nil.
func OpenSource(cfg config.StorageConfig) (reviewsense.Source, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Backend {
	case config.BackendFile:
		return reviewsense.NewFileSource(cfg.StopwordsPath, cfg.CorpusPath), noop, nil
	case config.BackendSQLite:
		db, err := store.Open(cfg.DatabasePath)
		if err != nil {
			return nil, noop, err
		}
		return db, db.Close, nil
	case config.BackendEmbedded:
		return data.Source(), noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// NewEngine opens the configured source and builds an engine on it.
func NewEngine(cfg *config.Config, logger *zap.Logger) (*reviewsense.Engine, func() error, error) {
	src, closeFn, err := OpenSource(cfg.Storage)
	if err != nil {
		return nil, closeFn, err
	}
	engine := reviewsense.New(src,
		reviewsense.WithConfig(cfg.Engine.Options()),
		reviewsense.WithLogger(logger.Named("engine")))
	return engine, closeFn, nil
}

// HandlerOptions converts the s3 section into processor naming.
func HandlerOptions(cfg config.S3Config) handler.Options {
	return handler.Options{
		DestinationSuffix: cfg.DestinationSuffix,
		OutputPrefix:      cfg.OutputPrefix,
		AppendPrefix:      cfg.AppendPrefix,
	}
}

// NewS3Processor builds a processor that reads and writes S3.
func NewS3Processor(ctx context.Context, cfg *config.Config, engine *reviewsense.Engine, logger *zap.Logger) (*handler.Processor, error) {
	s3, err := blob.NewS3(ctx, cfg.S3.Region, cfg.S3.Endpoint)
	if err != nil {
		return nil, err
	}
	return handler.New(engine, s3, HandlerOptions(cfg.S3), logger.Named("handler")), nil
}

// NewDirProcessor builds a processor that reads and writes bucket
// directories under root.
func NewDirProcessor(root string, cfg *config.Config, engine *reviewsense.Engine, logger *zap.Logger) *handler.Processor {
	return handler.New(engine, blob.NewDir(root), HandlerOptions(cfg.S3), logger.Named("handler"))
}
