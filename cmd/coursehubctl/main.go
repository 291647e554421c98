package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/coursehub/coursehub-gateway/internal/gwerrors"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, gwerrors.ErrSessionLost) {
			fmt.Fprintln(os.Stderr, "your session has expired, sign in again with: coursehubctl login --email <email>")
		}
		os.Exit(1)
	}
}
