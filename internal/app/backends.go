package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/unkn0wn-root/gridchain"
	"github.com/unkn0wn-root/gridchain/codec"
	"github.com/unkn0wn-root/gridchain/genstore"
	"github.com/unkn0wn-root/gridchain/provider"
	"github.com/unkn0wn-root/gridchain/provider/bigcache"
	"github.com/unkn0wn-root/gridchain/provider/redis"
	"github.com/unkn0wn-root/gridchain/provider/ristretto"
	"github.com/unkn0wn-root/gridchain/provider/sqlite"
	"github.com/unkn0wn-root/gridchain/storage"
)

// backends are the stores one run of the CLI works against.
type backends struct {
	container *storage.Store[string]
	store     *storage.Store[string]
	gens      genstore.GenStore
}

func (b *backends) Close(ctx context.Context) {
	if b.container != nil {
		_ = b.container.Close(ctx)
	}
	if b.store != nil {
		_ = b.store.Close(ctx)
	}
	if b.gens != nil {
		_ = b.gens.Close(ctx)
	}
}

func openBackends(ctx context.Context, cfg Config, log gridchain.Logger) (_ *backends, err error) {
	c, err := codec.ByName[string](cfg.Codec)
	if err != nil {
		return nil, err
	}

	b := &backends{}
	defer func() {
		if err != nil {
			b.Close(ctx)
		}
	}()

	var persistent provider.Provider
	switch cfg.Store {
	case "sqlite":
		if dir := filepath.Dir(cfg.DBPath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create storage dir: %w", err)
			}
		}
		db, err := sqlite.Open(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		if n, err := db.Sweep(ctx); err != nil {
			log.Warn("sweep expired entries", gridchain.Fields{"err": err})
		} else if n > 0 {
			log.Debug("swept expired entries", gridchain.Fields{"count": n})
		}
		persistent = db
		b.gens = genstore.NewLocal(time.Minute, time.Hour)
	case "redis":
		client := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		// genstore.Redis owns the client and closes it.
		b.gens = genstore.NewRedis(client, cfg.Namespace, 0)
		persistent, err = redis.New(redis.Config{Client: client, Prefix: "grid:"})
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store)
	}

	b.store, err = storage.New(storage.Options[string]{
		Namespace: cfg.Namespace,
		Provider:  persistent,
		Codec:     c,
		Gens:      b.gens,
		Logger:    log,
	})
	if err != nil {
		_ = persistent.Close(ctx)
		return nil, err
	}

	var memory provider.Provider
	switch cfg.Container {
	case "ristretto":
		memory, err = ristretto.New(ristretto.DefaultConfig())
	case "bigcache":
		memory, err = bigcache.New(ctx, bigcache.Config{LifeWindow: 10 * time.Minute})
	default:
		err = fmt.Errorf("unknown container backend %q", cfg.Container)
	}
	if err != nil {
		return nil, err
	}

	b.container, err = storage.New(storage.Options[string]{
		Namespace: cfg.Namespace,
		Provider:  memory,
		Codec:     c,
		Gens:      b.gens,
		Logger:    log,
	})
	if err != nil {
		_ = memory.Close(ctx)
		return nil, err
	}
	return b, nil
}
