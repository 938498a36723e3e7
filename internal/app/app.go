// Package app wires the gridchain CLI: backends, stages and one command run.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/unkn0wn-root/gridchain"
	asynchook "github.com/unkn0wn-root/gridchain/hooks/async"
	"github.com/unkn0wn-root/gridchain/internal/telemetry"
	"github.com/unkn0wn-root/gridchain/sloghooks"
	"github.com/unkn0wn-root/gridchain/stages/loader"
	"github.com/unkn0wn-root/gridchain/stages/stats"
	"github.com/unkn0wn-root/gridchain/stages/tracing"
	"github.com/unkn0wn-root/gridchain/stages/versioning"
	"github.com/unkn0wn-root/gridchain/stages/wrapping"
	"github.com/unkn0wn-root/gridchain/stages/writer"
)

const serviceName = "gridchain"

// Report is what one run prints to stdout.
type Report struct {
	Command string         `json:"command"`
	Keys    []string       `json:"keys"`
	Result  any            `json:"result"`
	Error   string         `json:"error,omitempty"`
	Stats   stats.Snapshot `json:"stats"`
	Loads   int64          `json:"loads"`
	Misses  int64          `json:"misses"`
	Writes  int64          `json:"writes"`
}

// Run executes the command named by cfg.Args against the configured backends
// and writes a JSON Report to stdout. Logs and hook events go to stderr.
// A failed command is reported, not returned; the error return covers setup.
func Run(ctx context.Context, cfg Config, stdout, stderr io.Writer) error {
	cmd, err := parseCommand(cfg)
	if err != nil {
		return err
	}

	log, flush, err := newLogger(cfg.LogFormat, cfg.LogLevel, stderr)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer flush()

	shutdown, err := telemetry.Setup(ctx, serviceName, cfg.OtelEndpoint)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		if err := shutdown(context.WithoutCancel(ctx)); err != nil {
			log.Warn("telemetry shutdown", gridchain.Fields{"err": err})
		}
	}()

	hooks := asynchook.New(sloghooks.New(slog.New(slog.NewJSONHandler(stderr, nil)), sloghooks.Options{
		SuspendedEvery: 100,
	}), 1, 256)
	defer hooks.Close()

	b, err := openBackends(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer b.Close(context.WithoutCancel(ctx))

	st := stats.New()
	wrap, err := wrapping.New(wrapping.Options{Container: b.container, Logger: log})
	if err != nil {
		return err
	}
	wr, err := writer.New(writer.Options{Store: b.store, Async: cfg.AsyncStore, Logger: log, Hooks: hooks})
	if err != nil {
		return err
	}
	ver, err := versioning.New(versioning.Options{Gens: b.gens, Async: cfg.AsyncStore})
	if err != nil {
		return err
	}
	ld, err := loader.New(loader.Options{
		Store:       b.store,
		Coalesce:    true,
		LoadTimeout: cfg.Timeout,
		Async:       cfg.AsyncLoad,
		Logger:      log,
		Hooks:       hooks,
	})
	if err != nil {
		return err
	}

	p, err := gridchain.New(gridchain.Options{
		Stages: []gridchain.Stage{tracing.New(nil), st, wrap, wr, ver, ld},
		Logger: log,
		Hooks:  hooks,
	})
	if err != nil {
		return err
	}

	runCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	res, cmdErr := p.Execute(runCtx, cmd, nil)
	rep := Report{
		Command: gridchain.NameOf(cmd),
		Keys:    gridchain.KeysOf(cmd),
		Result:  res,
		Stats:   st.Snapshot(),
		Loads:   ld.Loads(),
		Misses:  ld.Misses(),
		Writes:  wr.Stores() + wr.Removes(),
	}
	if cmdErr != nil {
		rep.Error = cmdErr.Error()
		log.Error("command failed", gridchain.Fields{"command": rep.Command, "err": cmdErr})
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}
