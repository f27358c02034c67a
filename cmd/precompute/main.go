package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"rainbow/internal/config"
	"rainbow/internal/logging"
	"rainbow/internal/precompute"
	"rainbow/internal/store"
)

func main() {
	// Define command-line flags
	dbPath := flag.String("sqlite", config.DBPath(), "Path to the SQLite table file")
	start := flag.Int64("start", 0, "First integer of a literal range")
	end := flag.Int64("end", 0, "Last integer of a literal range (inclusive)")
	prefix := flag.Int64("prefix", 0, "Prefix of the literal range")
	globalPrefix := flag.Int64("global-prefix", 0, "Prefix applied to every range of this run")
	sep := flag.String("sep", ",", "Field separator of range files (one byte)")
	logLevel := flag.String("log-level", config.LogLevel(), "Log level: debug, info, warn, error")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] [range-file ...]\n\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	level, err := logging.ParseLevel(*logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
		flag.Usage()
		os.Exit(2)
	}
	logger := logging.New(level)

	literal := isFlagSet("start") || isFlagSet("end")
	ranges, err := collectRanges(flag.Args(), *sep, *globalPrefix, literal,
		precompute.Range{Start: *start, End: *end, Prefix: *prefix, GlobalPrefix: *globalPrefix}, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if len(ranges) == 0 {
		fmt.Fprintf(os.Stderr, "Error: no ranges given, use -start/-end or range files\n\n")
		flag.Usage()
		os.Exit(2)
	}

	fmt.Printf("Rainbow Table Generator\n")
	fmt.Printf("=======================\n\n")
	fmt.Printf("Database: %s\n", *dbPath)
	fmt.Printf("Ranges: %d\n", len(ranges))
	fmt.Println()

	db, err := store.InitDB(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Track start time for elapsed time reporting
	programStart := time.Now()

	// Progress callback that shows elapsed time
	progressCallback := func(msg string) {
		elapsed := time.Since(programStart)
		fmt.Printf("[%s] %s\n", formatElapsed(elapsed), msg)
	}

	g := &precompute.Generator{
		DB:       db,
		Logger:   logger,
		Progress: progressCallback,
	}

	summary, err := g.Run(ctx, ranges)
	if err != nil {
		fmt.Fprintf(os.Stderr, "\nError: %v\n", err)
		if summary.Ranges > 0 {
			fmt.Fprintf(os.Stderr, "  %d range(s) with %d records were committed before the failure\n",
				summary.Ranges, summary.Records)
		}
		os.Exit(1)
	}

	// Summary
	fmt.Printf("\n✓ Success!\n")
	fmt.Printf("  Run: %s\n", summary.RunID)
	fmt.Printf("  Ranges written: %d\n", summary.Ranges)
	fmt.Printf("  Records written: %d\n", summary.Records)
	fmt.Printf("  Processing time: %s\n", time.Since(programStart).Round(time.Second))
	fmt.Println()
}

// collectRanges gathers the ranges of every range file followed by the literal range, if any.
func collectRanges(paths []string, sep string, globalPrefix int64, literal bool, lit precompute.Range, logger *slog.Logger) ([]precompute.Range, error) {
	var ranges []precompute.Range

	if len(paths) > 0 {
		delim, err := precompute.ParseSeparator(sep)
		if err != nil {
			return nil, err
		}
		fromFiles, err := precompute.LoadRangeFiles(paths, delim, globalPrefix, logger)
		if err != nil {
			if errors.Is(err, precompute.ErrNoSuchFile) {
				return nil, fmt.Errorf("range file missing: %w", err)
			}
			return nil, err
		}
		ranges = append(ranges, fromFiles...)
	}

	if literal {
		ranges = append(ranges, lit)
	}

	return ranges, nil
}

func isFlagSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

// formatElapsed formats a duration into a human-readable elapsed time string
func formatElapsed(d time.Duration) string {
	d = d.Round(time.Second)
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60

	if minutes > 0 {
		return fmt.Sprintf("%dm%02ds", minutes, seconds)
	}
	return fmt.Sprintf("%ds", seconds)
}
