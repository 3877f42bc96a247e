package main

import (
	"flag"
	"fmt"
	"strings"
)

type cliConfig struct {
	Mode  string
	Query string
	Pages int
	Stats bool
}

func parseFlags() cliConfig {
	cfg := cliConfig{}

	flag.StringVar(&cfg.Mode, "mode", "web", "Run mode: web, tui, or query")
	flag.StringVar(&cfg.Query, "q", "", "Query to search for (required in query mode, optional initial query in tui mode)")
	flag.IntVar(&cfg.Pages, "pages", 1, "Number of pages to fetch in query mode")
	flag.BoolVar(&cfg.Stats, "stats", false, "Print request latency summary after query mode")

	flag.Parse()
	return cfg
}

func (c cliConfig) validate() error {
	switch c.Mode {
	case "web", "tui":
	case "query":
		if strings.TrimSpace(c.Query) == "" {
			return fmt.Errorf("query mode requires -q")
		}
		if c.Pages < 1 {
			return fmt.Errorf("pages must be positive, got %d", c.Pages)
		}
	default:
		return fmt.Errorf("unknown mode %q", c.Mode)
	}
	return nil
}
