package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/ardnew/fns/cli"
	"github.com/ardnew/fns/log"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	err := cli.Run(ctx, os.Exit, os.Args[1:]...)

	stop()

	if err != nil {
		// Source errors are shown to the user with the offending line.
		var src interface{ Report() string }
		if errors.As(err, &src) {
			fmt.Fprint(os.Stderr, strings.TrimRight(src.Report(), "\n")+"\n")
		} else {
			log.Error("run failed", slog.Any("error", err))
		}

		os.Exit(1)
	}
}
