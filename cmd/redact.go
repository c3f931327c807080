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
	"golang.org/x/time/rate"

	"github.com/veilhq/veil/internal/config"
	"github.com/veilhq/veil/internal/redact"
)

// runRedact handles `veil redact`: it reads a JSON array of chunks from
// stdin, filters it against the access map in --access, and writes the
// result to stdout. Intended for pipeline debugging and offline audits.
func runRedact(ctx context.Context, cfg *config.Config, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("redact", flag.ContinueOnError)
	accessPath := fs.String("access", "", "JSON file mapping object id -> bool")
	identity := fs.String("identity", "", "identity to resolve access for")
	includeUnlinked := fs.Bool("include-unlinked", false,
		"pass through chunks that have no source links")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *accessPath == "" {
		return fmt.Errorf("redact: --access is required")
	}

	logger = logger.With("request_id", uuid.NewString())

	accessData, err := os.ReadFile(*accessPath)
	if err != nil {
		return fmt.Errorf("failed to read access map: %w", err)
	}
	var access redact.AccessMap
	if err := json.Unmarshal(accessData, &access); err != nil {
		return fmt.Errorf("failed to parse access map: %w", err)
	}

	var chunks []redact.Chunk
	if err := json.NewDecoder(os.Stdin).Decode(&chunks); err != nil {
		return fmt.Errorf("failed to parse chunks from stdin: %w", err)
	}

	// The static resolver stands in for an external permission API here,
	// throttled the same way a real one would be.
	resolver := redact.NewRateLimitedResolver(
		redact.NewStaticResolver(access),
		rate.Limit(cfg.ResolverRPS),
		cfg.ResolverBurst,
	)
	redactor := redact.New(resolver, logger.With("component", "redactor"))

	ctx, span := otel.Tracer("veil/cmd").Start(ctx, "redact")
	defer span.End()

	linked, unlinked := redact.SplitLinked(chunks)
	filtered, err := redactor.Redact(ctx, linked, *identity, nil)
	if err != nil {
		return err
	}
	if *includeUnlinked {
		filtered = append(filtered, unlinked...)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(filtered); err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	return nil
}
