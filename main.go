package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/ardnew/lent/cli"
	"github.com/ardnew/lent/log"
)

func main() {
	if err := cli.Run(context.Background(), os.Exit, os.Args[1:]...); err != nil {
		// Command errors carry LogValue attrs that render here.
		log.Error("run failed", slog.Any("error", err))
		os.Exit(1)
	}
}
