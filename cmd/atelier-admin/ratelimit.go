package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

// Rate-limit counters live under a per-endpoint-class prefix so submission
// windows never mix with read windows. The commands below operate on any
// counter under the shared top-level prefix.
const rateLimitKeyPattern = "ratelimit:*"

type rateLimitClearOptions struct {
	Pattern string
	DryRun  bool
	Yes     bool
}

func runListRateLimitKeys(cmdCtx *commandContext, _ []string) error {
	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, 2*time.Minute)
	defer cancel()

	db, redisClient, err := connectInfraWithOptions(&connectInfraOptions{
		Logger:    cmdCtx.Logger,
		Config:    &cmdCtx.Config,
		WantRedis: true,
	})
	if err != nil {
		return err
	}
	if redisClient == nil {
		if writeErr := writeln(os.Stderr, "Redis client is not available"); writeErr != nil {
			return fmt.Errorf("print redis availability: %w", writeErr)
		}
		return nil
	}
	defer func() {
		if closeErr := closeInfra(db, redisClient); closeErr != nil {
			cmdCtx.Logger.Warn("close infra failed", "error", closeErr)
		}
	}()

	cmdCtx.Logger.Info("scanning redis", "pattern", rateLimitKeyPattern)

	if headerErr := writef(os.Stdout, "\nRate-Limit Counter Keys in Redis\n"); headerErr != nil {
		return fmt.Errorf("print rate-limit header: %w", headerErr)
	}

	total, iterErr := writeRateLimitKeys(rateLimitScanInput{
		Ctx:    ctx,
		Iter:   redisClient.Scan(ctx, 0, rateLimitKeyPattern, 100).Iterator(),
		Client: redisClient,
		Logger: cmdCtx.Logger,
	})
	if iterErr != nil {
		return iterErr
	}

	if total == 0 {
		if nonePrintErr := writeln(os.Stdout, "(no keys found)"); nonePrintErr != nil {
			return fmt.Errorf("print rate-limit none: %w", nonePrintErr)
		}
		return nil
	}

	if totalPrintErr := writef(os.Stdout, "\nTotal keys: %d\n", total); totalPrintErr != nil {
		return fmt.Errorf("print rate-limit total: %w", totalPrintErr)
	}
	return nil
}

type rateLimitScanInput struct {
	Ctx    context.Context
	Iter   *redis.ScanIterator
	Client redis.UniversalClient
	Logger *slog.Logger
}

func writeRateLimitKeys(input rateLimitScanInput) (int, error) {
	if input.Iter == nil {
		return 0, errors.New("redis scan: nil iterator")
	}

	total := 0
	for input.Iter.Next(input.Ctx) {
		key := input.Iter.Val()
		total++

		if err := printRateLimitKey(input, key); err != nil {
			return 0, err
		}
	}

	if err := input.Iter.Err(); err != nil {
		return 0, fmt.Errorf("redis scan: %w", err)
	}

	return total, nil
}

func printRateLimitKey(input rateLimitScanInput, key string) error {
	count, countErr := input.Client.Get(input.Ctx, key).Result()
	if countErr != nil {
		count = "?"
	}

	ttl, ttlErr := input.Client.TTL(input.Ctx, key).Result()
	if ttlErr != nil {
		if input.Logger != nil {
			input.Logger.ErrorContext(input.Ctx, "failed to fetch TTL", "key", key, "error", ttlErr)
		}
		if printErr := writef(os.Stdout, "  %s = %s (TTL: error: %v)\n", key, count, ttlErr); printErr != nil {
			return fmt.Errorf("print rate-limit key ttl error: %w", printErr)
		}
		return nil
	}

	if printErr := writef(os.Stdout, "  %s = %s (TTL: %s)\n", key, count, renderTTL(ttl)); printErr != nil {
		return fmt.Errorf("print rate-limit key ttl: %w", printErr)
	}
	return nil
}

func runClearRateLimitKeys(cmdCtx *commandContext, args []string) error {
	opts, err := parseRateLimitClearFlags(args)
	if err != nil {
		return err
	}
	if confirmErr := confirmAction(confirmOptions{
		yes:    opts.Yes,
		dryRun: opts.DryRun,
		target: fmt.Sprintf("redis keys matching %q", opts.Pattern),
	}, "clear rate-limit counters"); confirmErr != nil {
		return confirmErr
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, 2*time.Minute)
	defer cancel()

	db, redisClient, err := connectInfraWithOptions(&connectInfraOptions{
		Logger:    cmdCtx.Logger,
		Config:    &cmdCtx.Config,
		WantRedis: true,
	})
	if err != nil {
		return err
	}
	if redisClient == nil {
		if writeErr := writeln(os.Stderr, "Redis client is not available"); writeErr != nil {
			return fmt.Errorf("print redis availability: %w", writeErr)
		}
		return nil
	}
	defer func() {
		if closeErr := closeInfra(db, redisClient); closeErr != nil {
			cmdCtx.Logger.Warn("close infra failed", "error", closeErr)
		}
	}()

	stats, err := deleteRateLimitKeys(&rateLimitDeleteRequest{
		Ctx:      ctx,
		Logger:   cmdCtx.Logger,
		Redis:    redisClient,
		Options:  opts,
		BatchCap: 1000,
	})
	if err != nil {
		return err
	}

	if stats.total == 0 {
		if writeErr := writeln(os.Stdout, "No rate-limit keys found in Redis"); writeErr != nil {
			return fmt.Errorf("print rate-limit summary: %w", writeErr)
		}
		return nil
	}

	if opts.DryRun {
		if writeErr := writef(os.Stdout, "Dry-run: would delete %d/%d keys\n", stats.deleted, stats.total); writeErr != nil {
			return fmt.Errorf("print rate-limit dry run: %w", writeErr)
		}
		return nil
	}

	return printRateLimitClearSummary(stats)
}

type rateLimitDeleteRequest struct {
	Ctx      context.Context
	Logger   *slog.Logger
	Redis    redis.UniversalClient
	Options  rateLimitClearOptions
	BatchCap int
}

type rateLimitDeleteStats struct {
	total    int
	deleted  int
	failures int
}

func deleteRateLimitKeys(req *rateLimitDeleteRequest) (rateLimitDeleteStats, error) {
	var stats rateLimitDeleteStats

	iter := req.Redis.Scan(req.Ctx, 0, req.Options.Pattern, 100).Iterator()
	batch := make([]string, 0, req.BatchCap)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		if req.Options.DryRun {
			stats.deleted += len(batch)
		} else if delErr := req.Redis.Del(req.Ctx, batch...).Err(); delErr != nil {
			stats.failures++
			req.Logger.ErrorContext(req.Ctx, "failed to delete key batch", "count", len(batch), "error", delErr)
		} else {
			stats.deleted += len(batch)
		}
		batch = batch[:0]
	}

	for iter.Next(req.Ctx) {
		stats.total++
		batch = append(batch, iter.Val())
		if len(batch) >= req.BatchCap {
			flush()
		}
	}
	if err := iter.Err(); err != nil {
		return stats, fmt.Errorf("redis scan: %w", err)
	}
	flush()

	return stats, nil
}

func printRateLimitClearSummary(stats rateLimitDeleteStats) error {
	if err := writef(os.Stdout, "Processed %d rate-limit keys\n", stats.total); err != nil {
		return fmt.Errorf("print rate-limit processed: %w", err)
	}
	if err := writef(os.Stdout, "Deleted %d/%d keys\n", stats.deleted, stats.total); err != nil {
		return fmt.Errorf("print rate-limit deleted: %w", err)
	}
	if stats.failures == 0 {
		return nil
	}
	if err := writef(os.Stdout, "Failed batches: %d\n", stats.failures); err != nil {
		return fmt.Errorf("print rate-limit failures: %w", err)
	}
	return nil
}

func parseRateLimitClearFlags(args []string) (rateLimitClearOptions, error) {
	fs := flag.NewFlagSet("clear-ratelimit-keys", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := rateLimitClearOptions{
		Pattern: rateLimitKeyPattern,
	}

	fs.StringVar(&opts.Pattern, "pattern", rateLimitKeyPattern, "Key pattern to clear")
	fs.BoolVar(&opts.DryRun, "dry-run", false, "Report what would be deleted without deleting")
	fs.BoolVar(&opts.Yes, "yes", false, "Skip confirmation prompt")

	if err := fs.Parse(args); err != nil {
		return rateLimitClearOptions{}, err
	}

	if opts.Pattern == "" {
		return rateLimitClearOptions{}, errors.New("--pattern must not be empty")
	}

	return opts, nil
}

func renderTTL(d time.Duration) string {
	switch {
	case d == -1*time.Second:
		return "no expiry"
	case d == -2*time.Second:
		return "key missing"
	default:
		return d.String()
	}
}
