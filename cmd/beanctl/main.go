// Command beanctl validates a bean manifest and prints its canonical dependency graph.
//
// Usage:
//
//	beanctl [-config beanctl.yaml] [-format text|json] manifest.yaml
//
// Settings are read from the optional config file and BEANCTL_* environment variables.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/andriiyaremenko/tinyioc/internal/app"
	"github.com/andriiyaremenko/tinyioc/internal/config"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "path to beanctl config file")
	format := flag.String("format", "", "output format: text or json")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] manifest.yaml\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if *format != "" {
		cfg.Format = *format
		if err := cfg.Validate(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, cleanup, err := app.InitializeApp(ctx, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer cleanup()

	if err := a.Run(ctx, flag.Arg(0)); err != nil {
		a.Logger.Error("manifest is invalid", "manifest", flag.Arg(0), "error", err)
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	return 0
}
