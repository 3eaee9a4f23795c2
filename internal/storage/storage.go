// Package storage provides the durable string key-value backends that hold
// completion state and settings.
package storage

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get when the key has never been written
var ErrNotFound = errors.New("key not found")

// Store is a string-keyed blob store. Writes to a single key are atomic.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

// UpdateFunc returns the new value of a key from its current one.
// found is false when the key has never been written.
type UpdateFunc func(current string, found bool) (string, error)

// Updater is implemented by backends that apply an UpdateFunc atomically,
// including against other processes sharing the backend
type Updater interface {
	Update(ctx context.Context, key string, fn UpdateFunc) error
}

// Update applies fn to key. Backends implementing Updater do it atomically;
// any other Store gets a plain Get followed by Set.
func Update(ctx context.Context, s Store, key string, fn UpdateFunc) error {
	if u, ok := s.(Updater); ok {
		return u.Update(ctx, key, fn)
	}
	current, err := s.Get(ctx, key)
	found := err == nil
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	next, err := fn(current, found)
	if err != nil {
		return err
	}
	return s.Set(ctx, key, next)
}

// Backend names accepted by Open
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Options selects and configures a backend
type Options struct {
	Backend     string
	Dir         string // sqlite backend, holds dashboard.db
	RedisURL    string // redis backend
	DatabaseURL string // postgres backend
	Namespace   string // prefixes every key, like a browser origin
}

// Open creates the backend named in opts, wrapped in the namespace
func Open(opts Options) (Store, error) {
	var (
		s   Store
		err error
	)
	switch opts.Backend {
	case BackendMemory:
		s = NewMemory()
	case BackendSQLite, "":
		s, err = NewSQLite(opts.Dir)
	case BackendRedis:
		s, err = NewRedis(opts.RedisURL)
	case BackendPostgres:
		s, err = NewPostgres(opts.DatabaseURL)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
	if err != nil {
		return nil, err
	}
	return WithNamespace(s, opts.Namespace), nil
}

type namespaced struct {
	Store
	prefix string
}

// WithNamespace returns a Store that prefixes every key with ns + ":".
// An empty namespace returns s unchanged.
func WithNamespace(s Store, ns string) Store {
	if ns == "" {
		return s
	}
	return &namespaced{Store: s, prefix: ns + ":"}
}

func (n *namespaced) Get(ctx context.Context, key string) (string, error) {
	return n.Store.Get(ctx, n.prefix+key)
}

func (n *namespaced) Set(ctx context.Context, key, value string) error {
	return n.Store.Set(ctx, n.prefix+key, value)
}

func (n *namespaced) Delete(ctx context.Context, key string) error {
	return n.Store.Delete(ctx, n.prefix+key)
}

func (n *namespaced) Update(ctx context.Context, key string, fn UpdateFunc) error {
	return Update(ctx, n.Store, n.prefix+key, fn)
}
