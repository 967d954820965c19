package linkstore

import (
	"context"
	"strings"
)

// Resolve picks the osu! username a command should act on. Explicit
// arguments always win over the author's linked account.
func Resolve(ctx context.Context, store Store, authorID string, args []string) (string, error) {
	if username := strings.TrimSpace(strings.Join(args, " ")); username != "" {
		return username, nil
	}

	username, ok, err := store.Get(ctx, authorID)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", &MissingInputError{UserID: authorID}
	}
	return username, nil
}
