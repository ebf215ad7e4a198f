// media-service/cmd/mediadbcheck/main.go
//
// mediadbcheck подключается к настроенной базе и выводит число записей.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"media-service/internal/config"
	"media-service/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	mediaStorage, err := store.NewMediaStore(ctx, cfg, cfg.NewLogger())
	if err != nil {
		fatalf("Database connection failed: %v", err)
	}
	defer mediaStorage.Close()

	if err := check(ctx, mediaStorage, os.Stdout); err != nil {
		mediaStorage.Close()
		fatalf("Database check failed: %v", err)
	}
}

func check(ctx context.Context, s store.MediaStore, out io.Writer) error {
	if err := s.Ping(ctx); err != nil {
		return err
	}
	count, err := s.Count(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "Database connection successful")
	fmt.Fprintf(out, "Found %d media records\n", count)
	return nil
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
