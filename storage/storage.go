// Package storage binds a byte provider, a codec and the entry framing into
// the typed store the stages read from and write to. The same type serves as
// the in-memory data container and as the persistent store.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/unkn0wn-root/gridchain"
	"github.com/unkn0wn-root/gridchain/codec"
	"github.com/unkn0wn-root/gridchain/genstore"
	"github.com/unkn0wn-root/gridchain/internal/wire"
	"github.com/unkn0wn-root/gridchain/provider"
)

// ErrValueType is returned when a value handed to Save is not the store's V.
var ErrValueType = errors.New("storage: value has the wrong type")

// CostFunc computes the admission cost of a framed entry. Defaults to its size.
type CostFunc func(key string, framed []byte) int64

type Options[V any] struct {
	// Namespace prefixes every provider key ("<ns>:<key>"). Required.
	Namespace string
	Provider  provider.Provider
	Codec     codec.Codec[V]

	// Gens, when set, rejects stored entries framed with a version older than
	// the key's current generation. A key the GenStore has forgotten (0)
	// accepts any version.
	Gens genstore.GenStore

	DefaultTTL time.Duration // used when an entry carries no lifespan
	Cost       CostFunc
	Logger     gridchain.Logger
}

type Store[V any] struct {
	ns    string
	p     provider.Provider
	codec codec.Codec[V]
	gens  genstore.GenStore
	ttl   time.Duration
	cost  CostFunc
	log   gridchain.Logger
}

func New[V any](opts Options[V]) (*Store[V], error) {
	if opts.Provider == nil {
		return nil, fmt.Errorf("storage: provider is required")
	}
	if opts.Codec == nil {
		return nil, fmt.Errorf("storage: codec is required")
	}
	if opts.Namespace == "" {
		return nil, fmt.Errorf("storage: namespace is required")
	}
	s := &Store[V]{
		ns:    opts.Namespace,
		p:     opts.Provider,
		codec: opts.Codec,
		gens:  opts.Gens,
		ttl:   opts.DefaultTTL,
		cost:  opts.Cost,
		log:   gridchain.LoggerOr(opts.Logger),
	}
	if s.cost == nil {
		s.cost = func(_ string, b []byte) int64 { return int64(len(b)) }
	}
	return s, nil
}

func (s *Store[V]) key(k string) string { return s.ns + ":" + k }

// Get returns the typed value of key. Corrupt or stale entries are deleted
// and reported as a miss.
func (s *Store[V]) Get(ctx context.Context, key string) (V, gridchain.Metadata, bool, error) {
	var zero V
	k := s.key(key)
	raw, ok, err := s.p.Get(ctx, k)
	if err != nil || !ok {
		return zero, gridchain.Metadata{}, false, err
	}
	rec, err := wire.Decode(raw)
	if err != nil {
		s.heal(ctx, k, "corrupt frame")
		return zero, gridchain.Metadata{}, false, nil
	}
	if s.gens != nil {
		cur, err := s.gens.Current(ctx, key)
		if err != nil {
			return zero, gridchain.Metadata{}, false, err
		}
		if rec.Version < cur {
			s.heal(ctx, k, "stale version")
			return zero, gridchain.Metadata{}, false, nil
		}
	}
	v, err := s.codec.Decode(rec.Payload)
	if err != nil {
		s.heal(ctx, k, "undecodable payload")
		return zero, gridchain.Metadata{}, false, nil
	}
	return v, gridchain.Metadata{Version: rec.Version, Lifespan: rec.Lifespan}, true, nil
}

// Set frames v with meta and writes it. A write rejected by the provider
// under pressure is not an error.
func (s *Store[V]) Set(ctx context.Context, key string, v V, meta gridchain.Metadata) error {
	payload, err := s.codec.Encode(v)
	if err != nil {
		return fmt.Errorf("storage: encode %q: %w", key, err)
	}
	framed := wire.Encode(wire.Record{Version: meta.Version, Lifespan: meta.Lifespan, Payload: payload})
	ttl := meta.Lifespan
	if ttl <= 0 {
		ttl = s.ttl
	}
	k := s.key(key)
	ok, err := s.p.Set(ctx, k, framed, s.cost(k, framed), ttl)
	if err != nil {
		return err
	}
	if !ok {
		s.log.Debug("provider rejected write", gridchain.Fields{"key": k})
	}
	return nil
}

func (s *Store[V]) Del(ctx context.Context, key string) error {
	return s.p.Del(ctx, s.key(key))
}

func (s *Store[V]) Close(ctx context.Context) error { return s.p.Close(ctx) }

// Load is Get for stages that work with untyped values.
func (s *Store[V]) Load(ctx context.Context, key string) (any, gridchain.Metadata, bool, error) {
	v, meta, ok, err := s.Get(ctx, key)
	if !ok {
		return nil, meta, ok, err
	}
	return v, meta, true, nil
}

// Save is Set for stages that work with untyped values.
func (s *Store[V]) Save(ctx context.Context, key string, v any, meta gridchain.Metadata) error {
	tv, ok := v.(V)
	if !ok {
		return fmt.Errorf("%w: %q holds %T", ErrValueType, key, v)
	}
	return s.Set(ctx, key, tv, meta)
}

// Delete is Del under the name stages use.
func (s *Store[V]) Delete(ctx context.Context, key string) error { return s.Del(ctx, key) }

func (s *Store[V]) heal(ctx context.Context, k, reason string) {
	s.log.Warn("dropping stored entry", gridchain.Fields{"key": k, "reason": reason})
	_ = s.p.Del(ctx, k)
}
