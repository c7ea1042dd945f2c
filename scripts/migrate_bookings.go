package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"carhive/internal/store"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Backfills user_id on legacy bookings that were created before account
// login existed and carry only a customer email. The mapping file pairs
// each email with the account id it now belongs to.
type UserMapping struct {
	Users map[string]string `yaml:"users"` // email -> user id
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	var (
		mappingPath = flag.String("mapping", "configs/users.yaml", "path to email->user_id mapping yaml")
		dbPath      = flag.String("db", "./data/carhive.db", "path to sqlite db")
		dryRun      = flag.Bool("dry-run", false, "report what would change without writing")
	)
	flag.Parse()

	data, err := os.ReadFile(*mappingPath)
	if err != nil {
		return fmt.Errorf("read mapping: %w", err)
	}
	var mapping UserMapping
	if err = yaml.Unmarshal(data, &mapping); err != nil {
		return fmt.Errorf("parse mapping: %w", err)
	}
	if len(mapping.Users) == 0 {
		return fmt.Errorf("no users in mapping yaml")
	}

	db, err := store.NewDB(*dbPath, &logger)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	bookings, err := db.AllBookings(ctx)
	if err != nil {
		return fmt.Errorf("load bookings: %w", err)
	}

	migrated := 0
	skipped := 0
	for _, b := range bookings {
		if b.UserID != "" {
			continue
		}
		userID, ok := mapping.Users[b.CustomerEmail]
		if !ok || userID == "" {
			skipped++
			continue
		}
		if *dryRun {
			fmt.Printf("would assign %s -> booking %s\n", userID, b.ID)
			migrated++
			continue
		}
		if err = db.UpdateField(ctx, "bookings", b.ID, map[string]any{"user_id": userID}); err != nil {
			return fmt.Errorf("update booking %s: %w", b.ID, err)
		}
		migrated++
	}

	fmt.Printf("done: migrated=%d skipped=%d\n", migrated, skipped)
	return nil
}
