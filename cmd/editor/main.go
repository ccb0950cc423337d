package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"github.com/kass/geofencer/pkg/app"
	"github.com/kass/geofencer/pkg/config"
	"github.com/kass/geofencer/pkg/editor"
	"github.com/kass/geofencer/pkg/logging"
	"github.com/kass/geofencer/pkg/region"
)

func main() {
	configFile := flag.String("config", "", "Config file path")
	shareFile := flag.String("share", "regions.json", "File written by the share action")
	location := flag.String("location", "", "Current location as lat,lng")
	logFile := flag.String("log", "", "Write logs to this file")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// The terminal belongs to the UI, so logs go to a file or nowhere
	logger := logging.Discard()
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			log.Fatalf("Failed to open log file: %v", err)
		}
		defer f.Close()
		logger = logging.New(f, cfg.Log.Level, cfg.Log.Format)
	}
	slog.SetDefault(logger)

	b := &board{}
	opts := []app.Option{app.WithDisplay(b)}
	if *location != "" {
		c, err := region.ParsePoint(*location)
		if err != nil {
			log.Fatalf("Invalid --location: %v", err)
		}
		opts = append(opts, app.WithLocation(editor.FixedLocation(c)))
	}

	ctx := context.Background()
	open := func() (*app.App, error) {
		return app.Open(ctx, cfg, logger, opts...)
	}

	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		if err := printList(os.Stdout, open); err != nil {
			log.Fatal(err)
		}
		return
	}

	final, err := tea.NewProgram(newModel(b, *shareFile, open)).Run()
	if err != nil {
		log.Fatal(err)
	}
	if m, ok := final.(model); ok {
		if m.app != nil {
			m.app.Close()
		}
		if m.failed && m.mode == modeLoading {
			fmt.Fprintln(os.Stderr, m.status)
			os.Exit(1)
		}
	}
}

// printList is the non-interactive fallback: dump the list as JSON
func printList(w io.Writer, open func() (*app.App, error)) error {
	a, err := open()
	if err != nil {
		return err
	}
	defer a.Close()

	out, err := a.Manager.ExportAll()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, out)
	return err
}
