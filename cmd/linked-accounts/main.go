package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Black-And-White-Club/discord-osu-bot/app/accounts/linkstore"
)

func main() {
	var (
		path   = flag.String("file", "linkedAccounts.json", "Linked accounts file")
		user   = flag.String("user", "", "Discord user ID to look up")
		remove = flag.Bool("remove", false, "Remove the link of -user")
		dryRun = flag.Bool("dry-run", false, "Show what would be done")
	)
	flag.Parse()

	store := linkstore.NewFileStore(*path, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err := run(context.Background(), os.Stdout, store, *user, *remove, *dryRun); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, out io.Writer, store linkstore.Store, user string, remove, dryRun bool) error {
	if user == "" {
		if remove {
			return fmt.Errorf("-remove needs -user")
		}
		n, err := store.Count(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%d linked accounts\n", n)
		return nil
	}

	name, ok, err := store.Get(ctx, user)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintf(out, "%s is not linked\n", user)
		return nil
	}
	if !remove {
		fmt.Fprintf(out, "%s -> %s\n", user, name)
		return nil
	}
	if dryRun {
		fmt.Fprintf(out, "Dry run: would unlink %s (%s)\n", user, name)
		return nil
	}
	if _, err := store.Remove(ctx, user); err != nil {
		return err
	}
	fmt.Fprintf(out, "Unlinked %s (%s)\n", user, name)
	return nil
}
