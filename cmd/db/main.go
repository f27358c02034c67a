package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"time"

	"rainbow/internal/config"
	"rainbow/internal/logging"
	"rainbow/internal/store"
)

type stats struct {
	Records  int64
	HasIndex bool
}

func main() {
	dbPath := flag.String("sqlite", config.DBPath(), "Path to the SQLite table file")
	reindex := flag.Bool("reindex", false, "Drop and rebuild the digest index")
	dropIndex := flag.Bool("drop-index", false, "Drop the digest index before a bulk load")
	logLevel := flag.String("log-level", config.LogLevel(), "Log level: debug, info, warn, error")
	flag.Parse()

	level, err := logging.ParseLevel(*logLevel)
	if err != nil {
		log.Fatalf("Invalid log level: %v", err)
	}
	logger := logging.New(level)

	if *reindex && *dropIndex {
		log.Fatalf("-reindex and -drop-index are mutually exclusive")
	}

	logger.Info("setting up database", "path", *dbPath)

	db, err := store.InitDB(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	start := time.Now()
	st, err := maintain(ctx, db, *reindex, *dropIndex)
	if err != nil {
		log.Fatalf("Maintenance failed: %v", err)
	}
	logger.Info("database ready", "took", time.Since(start).Round(time.Millisecond))

	fmt.Println("\nTable data:")
	fmt.Printf("- %d records\n", st.Records)
	if st.HasIndex {
		fmt.Println("- digest index present")
	} else {
		fmt.Println("- digest index absent")
	}
}

// maintain makes sure the table exists, applies the requested index operation and reports
// the resulting state of the store.
func maintain(ctx context.Context, db *sql.DB, reindex, dropIndex bool) (stats, error) {
	var st stats

	if err := store.EnsureSchema(ctx, db); err != nil {
		return st, err
	}

	switch {
	case dropIndex:
		if err := store.DropLookupIndex(ctx, db); err != nil {
			return st, err
		}
	case reindex:
		if err := store.DropLookupIndex(ctx, db); err != nil {
			return st, err
		}
		if err := store.BuildLookupIndex(ctx, db); err != nil {
			return st, err
		}
	}

	n, err := store.Count(ctx, db)
	if err != nil {
		return st, err
	}
	st.Records = n

	st.HasIndex, err = store.HasLookupIndex(ctx, db)
	if err != nil {
		return st, err
	}

	return st, nil
}
