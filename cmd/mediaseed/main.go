// media-service/cmd/mediaseed/main.go
//
// mediaseed добавляет стартовый набор записей в настроенную базу.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"media-service/internal/config"
	"media-service/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fatalf("load config: %v", err)
	}
	logger := cfg.NewLogger()

	mediaStorage, err := store.NewMediaStore(context.Background(), cfg, logger)
	if err != nil {
		fatalf("open store: %v", err)
	}
	defer mediaStorage.Close()

	if err := seed(context.Background(), mediaStorage, os.Stdout, logger); err != nil {
		mediaStorage.Close()
		fatalf("seed: %v", err)
	}
}

func seed(ctx context.Context, s store.MediaStore, out io.Writer, logger *slog.Logger) error {
	created, err := store.Seed(ctx, s, store.SampleMedia())
	for _, m := range created {
		logger.Info("Seeded media", slog.String("mediaID", m.ID), slog.String("title", m.Title))
		fmt.Fprintf(out, "Created %s: %s (%s)\n", m.ID, m.Title, m.Type)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Seeded %d media records\n", len(created))
	return nil
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
