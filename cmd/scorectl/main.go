// Command scorectl exports, imports and inspects admitcalc data over HTTP.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/admitcalc/internal/scorectl"
)

const defaultTimeout = 10 * time.Second

func main() {
	var (
		baseURL = flag.String("url", "http://localhost:9080", "Base URL of the service")
		format  = flag.String("format", "", "Output format: json or yaml")
		timeout = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		verbose = flag.Bool("verbose", false, "Enable debug logging")
		help    = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help || flag.NArg() == 0 {
		scorectl.ShowHelp(os.Stdout)
		return
	}

	if err := scorectl.SetupLogging(*verbose); err != nil {
		_, _ = os.Stderr.WriteString("failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	f, err := scorectl.ParseFormat(*format)
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := &scorectl.Config{
		BaseURL: *baseURL,
		Timeout: *timeout,
		Command: flag.Arg(0),
		File:    flag.Arg(1),
		Format:  f,
		Verbose: *verbose,
	}
	if err := scorectl.Run(ctx, cfg, os.Stdout); err != nil {
		_, _ = os.Stderr.WriteString("scorectl: " + err.Error() + "\n")
		os.Exit(1)
	}
}
