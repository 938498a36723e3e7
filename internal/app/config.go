package app

import (
	"flag"
	"time"

	"github.com/unkn0wn-root/gridchain/internal/config"
)

// Config holds the CLI settings. Environment variables are read first and
// flags override them.
type Config struct {
	Store     string        `env:"GRIDCHAIN_STORE" envDefault:"sqlite"`
	DBPath    string        `env:"GRIDCHAIN_DB_PATH" envDefault:"data/gridchain.db"`
	RedisAddr string        `env:"GRIDCHAIN_REDIS_ADDR" envDefault:"localhost:6379"`
	Container string        `env:"GRIDCHAIN_CONTAINER" envDefault:"ristretto"`
	Codec     string        `env:"GRIDCHAIN_CODEC" envDefault:"json"`
	Namespace string        `env:"GRIDCHAIN_NAMESPACE" envDefault:"grid"`
	Lifespan  time.Duration `env:"GRIDCHAIN_LIFESPAN" envDefault:"0s"`
	Timeout   time.Duration `env:"GRIDCHAIN_TIMEOUT" envDefault:"5s"`

	LogFormat    string `env:"GRIDCHAIN_LOG_FORMAT" envDefault:"zap"`
	LogLevel     string `env:"GRIDCHAIN_LOG_LEVEL" envDefault:"info"`
	OtelEndpoint string `env:"GRIDCHAIN_OTEL_ENDPOINT"`

	AsyncLoad  bool `env:"GRIDCHAIN_ASYNC_LOAD" envDefault:"false"`
	AsyncStore bool `env:"GRIDCHAIN_ASYNC_STORE" envDefault:"false"`
	SkipLoad   bool `env:"GRIDCHAIN_SKIP_LOAD" envDefault:"false"`
	SkipStore  bool `env:"GRIDCHAIN_SKIP_STORE" envDefault:"false"`

	// Args is the command line left after flags: <op> key [value...].
	Args []string
}

// ParseConfig parses the CLI configuration from the environment and flags.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.Store, "store", cfg.Store, "persistent store backend: sqlite or redis")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "sqlite database path")
	fs.StringVar(&cfg.RedisAddr, "redis-addr", cfg.RedisAddr, "redis address")
	fs.StringVar(&cfg.Container, "container", cfg.Container, "data container backend: ristretto or bigcache")
	fs.StringVar(&cfg.Codec, "codec", cfg.Codec, "value codec: json, msgpack or cbor")
	fs.StringVar(&cfg.Namespace, "namespace", cfg.Namespace, "key namespace")
	fs.DurationVar(&cfg.Lifespan, "lifespan", cfg.Lifespan, "lifespan of written entries (0 = store default)")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "command timeout")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "logger: zap, logrus or slog")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.OtelEndpoint, "otel-endpoint", cfg.OtelEndpoint, "OTLP/HTTP trace endpoint URL")
	fs.BoolVar(&cfg.AsyncLoad, "async-load", cfg.AsyncLoad, "load from the store off the calling goroutine")
	fs.BoolVar(&cfg.AsyncStore, "async-store", cfg.AsyncStore, "write through off the calling goroutine")
	fs.BoolVar(&cfg.SkipLoad, "skip-load", cfg.SkipLoad, "do not consult the persistent store")
	fs.BoolVar(&cfg.SkipStore, "skip-store", cfg.SkipStore, "do not write through to the persistent store")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	cfg.Args = fs.Args()
	return cfg, nil
}
