package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

// Removes flow journal entries older than the retention window. Meant to
// run from cron on deployments that keep the journal enabled for months.
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	var (
		dbPath = flag.String("db", "data/journal.db", "path to journal sqlite db")
		days   = flag.Int("days", 90, "retention window in days")
	)
	flag.Parse()

	if *days <= 0 {
		return fmt.Errorf("days must be positive")
	}

	db, err := sql.Open("sqlite3", *dbPath)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer db.Close()

	cutoff := time.Now().AddDate(0, 0, -*days)
	res, err := db.Exec(`DELETE FROM flow_journal WHERE at < ?`, cutoff)
	if err != nil {
		return fmt.Errorf("prune journal: %w", err)
	}

	deleted, _ := res.RowsAffected()
	logger.Info().
		Int64("deleted", deleted).
		Str("cutoff", cutoff.Format("2006-01-02")).
		Msg("journal pruned")
	return nil
}
