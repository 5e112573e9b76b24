package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/roach88/socialgraph/internal/engine"
	"github.com/roach88/socialgraph/internal/store"
)

// Host is an engine assembled from a Config together with the resources it
// holds open.
type Host struct {
	Engine *engine.Engine

	// Events is the SQLite store the event log writes to. Nil unless
	// events.log is set.
	Events *store.Store

	// Publisher is non-nil when events.publish is set.
	Publisher *store.Publisher

	redis   *redis.Client
	closers []func() error
}

// Open builds a Host. extra sinks receive every event after the configured
// ones.
func Open(ctx context.Context, cfg Config, logger *slog.Logger, extra ...engine.EventSink) (*Host, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	h := &Host{}

	backend, err := h.openBackend(ctx, cfg)
	if err != nil {
		h.Close()
		return nil, err
	}

	var sinks engine.MultiSink
	if cfg.Events.Log {
		if h.Events == nil {
			if h.Events, err = h.openSQLite(cfg.SQLite.Path); err != nil {
				h.Close()
				return nil, err
			}
		}
		eventLog, err := store.NewEventLog(ctx, h.Events, logger)
		if err != nil {
			h.Close()
			return nil, fmt.Errorf("open event log: %w", err)
		}
		sinks = append(sinks, eventLog)
	}
	if cfg.Events.Publish {
		client, err := h.redisClient(ctx, cfg.Redis)
		if err != nil {
			h.Close()
			return nil, err
		}
		h.Publisher = store.NewPublisher(client, cfg.Redis.Prefix, logger)
		sinks = append(sinks, h.Publisher)
	}
	sinks = append(sinks, extra...)

	var last int64
	if cfg.Clock == "logical" {
		// Resume after the newest stamp already in the store.
		if last, err = engine.NewState(backend).LastTimestamp(ctx); err != nil {
			h.Close()
			return nil, fmt.Errorf("seed logical clock: %w", err)
		}
	}

	h.Engine = engine.New(backend,
		engine.WithClock(NewClock(cfg.Clock, last)),
		engine.WithSink(sinks),
		engine.WithLogger(logger),
	)
	return h, nil
}

func (h *Host) openBackend(ctx context.Context, cfg Config) (store.Backend, error) {
	switch cfg.Backend {
	case "memory":
		return store.NewMemory(), nil
	case "sqlite":
		s, err := h.openSQLite(cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		h.Events = s
		return s, nil
	case "redis":
		client, err := h.redisClient(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		return store.NewRedis(client, cfg.Redis.Prefix), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

func (h *Host) openSQLite(path string) (*store.Store, error) {
	s, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	h.closers = append(h.closers, s.Close)
	return s, nil
}

// redisClient connects once and shares the client between backend and
// publisher.
func (h *Host) redisClient(ctx context.Context, rc RedisConfig) (*redis.Client, error) {
	if h.redis != nil {
		return h.redis, nil
	}
	client := redis.NewClient(&redis.Options{Addr: rc.Addr, DB: rc.DB})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", rc.Addr, err)
	}
	h.redis = client
	h.closers = append(h.closers, client.Close)
	return client, nil
}

// Close releases everything Open acquired.
func (h *Host) Close() error {
	var errs []error
	for i := len(h.closers) - 1; i >= 0; i-- {
		if err := h.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	h.closers = nil
	return errors.Join(errs...)
}

// NewClock returns the clock named by kind: "logical" or anything else for
// wall time. A logical clock resumes after last.
func NewClock(kind string, last int64) engine.Clock {
	if kind == "logical" {
		return engine.NewLogicalClockAt(last)
	}
	return engine.WallClock{}
}
