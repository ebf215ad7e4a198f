// media-service/cmd/mediactl/main.go
//
// mediactl обращается к gRPC сервису MediaLookup.
//
//	mediactl -addr localhost:9092 get <id>
//	mediactl -addr localhost:9092 exists <id>
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"media-service/internal/clients"
)

const usage = "usage: mediactl [-addr host:port] [-timeout 5s] get|exists <id>"

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("mediactl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	addr := fs.String("addr", "localhost:9092", "MediaLookup gRPC address")
	timeout := fs.Duration("timeout", 5*time.Second, "overall timeout")
	verbose := fs.Bool("v", false, "log gRPC calls to stderr")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return errors.New(usage)
	}
	command, mediaID := fs.Arg(0), fs.Arg(1)

	level := slog.LevelError
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	client, err := clients.NewMediaServiceGRPCClient(*addr, logger)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	switch command {
	case "get":
		media, err := client.GetMedia(ctx, mediaID)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(media)
	case "exists":
		exists, err := client.CheckMediaExists(ctx, mediaID)
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, exists)
		return nil
	default:
		return fmt.Errorf("unknown command %q\n%s", command, usage)
	}
}
