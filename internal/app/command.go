package app

import (
	"errors"
	"fmt"

	"github.com/unkn0wn-root/gridchain"
	"github.com/unkn0wn-root/gridchain/commands"
)

// ErrUsage is returned for a command line that names no valid operation.
var ErrUsage = errors.New("usage: gridchain [flags] <get|put|remove|replace|invalidate> key [value...]")

// parseCommand maps the positional arguments onto a command.
func parseCommand(cfg Config) (gridchain.Command, error) {
	if len(cfg.Args) < 2 {
		return nil, ErrUsage
	}
	var flags gridchain.Flags
	if cfg.SkipLoad {
		flags |= gridchain.SkipCacheLoad
	}
	if cfg.SkipStore {
		flags |= gridchain.SkipCacheStore
	}

	op, rest := cfg.Args[0], cfg.Args[1:]
	switch op {
	case "get":
		if len(rest) == 1 {
			return commands.Get{Key: rest[0], Flag: flags}, nil
		}
		return commands.GetAll{KeyList: rest, Flag: flags}, nil
	case "put":
		if len(rest) != 2 {
			return nil, fmt.Errorf("put takes a key and a value: %w", ErrUsage)
		}
		return commands.Put{Key: rest[0], Value: rest[1], Lifespan: cfg.Lifespan, ReturnPrevious: true, Flag: flags}, nil
	case "remove":
		if len(rest) != 1 {
			return nil, fmt.Errorf("remove takes one key: %w", ErrUsage)
		}
		return commands.Remove{Key: rest[0], Flag: flags}, nil
	case "replace":
		if len(rest) != 3 {
			return nil, fmt.Errorf("replace takes a key, the expected value and a value: %w", ErrUsage)
		}
		return commands.Replace{Key: rest[0], Expected: rest[1], Value: rest[2], Flag: flags}, nil
	case "invalidate":
		return commands.Invalidate{KeyList: rest, Flag: flags}, nil
	default:
		return nil, fmt.Errorf("unknown operation %q: %w", op, ErrUsage)
	}
}
