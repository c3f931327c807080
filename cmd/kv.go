package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"

	"github.com/veilhq/veil/internal/config"
	"github.com/veilhq/veil/internal/kvstore"
)

// runKV handles `veil kv get|set|del`.
func runKV(ctx context.Context, cfg *config.Config, logger *slog.Logger, args []string) error {
	if len(args) < 1 {
		printHelp()
		return fmt.Errorf("kv: missing subcommand")
	}

	// Correlation id ties together the logs of one invocation.
	logger = logger.With("request_id", uuid.NewString())

	kv, closeAll, err := openKV(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeAll()

	tracer := otel.Tracer("veil/cmd")

	switch args[0] {
	case "get":
		fs := flag.NewFlagSet("kv get", flag.ContinueOnError)
		refresh := fs.Bool("refresh", false, "bypass the cache tier and repopulate it")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if fs.NArg() != 1 {
			return fmt.Errorf("kv get: expected exactly one key")
		}
		key := fs.Arg(0)

		ctx, span := tracer.Start(ctx, "kv.get")
		defer span.End()

		var opts []kvstore.LoadOption
		if *refresh {
			opts = append(opts, kvstore.WithRefresh())
		}
		value, err := kv.Load(ctx, key, opts...)
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, string(value))
		return nil

	case "set":
		if len(args) != 3 {
			return fmt.Errorf("kv set: expected <key> <json>")
		}
		key, raw := args[1], args[2]

		ctx, span := tracer.Start(ctx, "kv.set")
		defer span.End()

		var value json.RawMessage
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			return fmt.Errorf("kv set: value is not valid JSON: %w", err)
		}
		return kv.Store(ctx, key, value)

	case "del":
		if len(args) != 2 {
			return fmt.Errorf("kv del: expected exactly one key")
		}

		ctx, span := tracer.Start(ctx, "kv.delete")
		defer span.End()

		return kv.Delete(ctx, args[1])

	default:
		return fmt.Errorf("kv: unknown subcommand %q", args[0])
	}
}
