// Package main provides the nova CLI for ingesting and searching events
// from the command line.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	nova "github.com/sodle/nova-go"
	"github.com/sodle/nova-go/internal/cli/config"
)

const (
	version = "1.0.0"
	timeout = 30 * time.Second
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "ingest":
		err = runIngest(ctx, os.Args[2:])
	case "search":
		err = runSearch(ctx, os.Args[2:])
	case "health":
		err = runHealth(ctx)
	case "version", "--version", "-v":
		fmt.Printf("nova version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newClient() (*nova.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return cfg.NewClient()
}

// runIngest reads a JSON array of events from a file (or stdin when no
// file is given) and sends it as one batch.
func runIngest(ctx context.Context, args []string) error {
	var reader io.Reader = os.Stdin
	if len(args) > 0 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		reader = f
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	var events []nova.Event
	if err := json.Unmarshal(data, &events); err != nil {
		return fmt.Errorf("input must be a JSON array of events: %w", err)
	}

	client, err := newClient()
	if err != nil {
		return err
	}

	result, err := client.Ingest(ctx, events)
	if err != nil {
		return err
	}

	fmt.Printf("ingested %d events\n", len(events))
	if result.Message != "" {
		fmt.Println(result.Message)
	}
	return nil
}

// evalFlags collects repeated --eval field=expression flags.
type evalFlags []string

func (e *evalFlags) String() string {
	return strings.Join(*e, ", ")
}

func (e *evalFlags) Set(value string) error {
	if !strings.Contains(value, "=") {
		return fmt.Errorf("eval must be field=expression, got %q", value)
	}
	*e = append(*e, value)
	return nil
}

func runSearch(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("search", flag.ContinueOnError)

	var evals evalFlags
	fs.Var(&evals, "eval", "computed field as field=expression (repeatable)")
	stats := fs.String("stats", "", "aggregate with a stats command")
	timechart := fs.String("timechart", "", "aggregate with a timechart command")
	earliest := fs.String("earliest", "", "earliest time bound (e.g. -7d)")
	latest := fs.String("latest", "", "latest time bound")
	index := fs.Int("index", 0, "offset of the first event")
	count := fs.Int("count", 10, "number of events to return")
	iterate := fs.Bool("iter", false, "stream all matching events")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() < 1 {
		return fmt.Errorf("usage: nova search [flags] <terms>")
	}
	terms := strings.Join(fs.Args(), " ")

	if *stats != "" && *timechart != "" {
		return fmt.Errorf("--stats and --timechart are mutually exclusive")
	}

	client, err := newClient()
	if err != nil {
		return err
	}

	search := client.Search(terms)
	if *earliest != "" {
		search = search.Earliest(*earliest)
	}
	if *latest != "" {
		search = search.Latest(*latest)
	}
	for _, e := range evals {
		field, expr, _ := strings.Cut(e, "=")
		search = search.Eval(field, expr)
	}

	out := json.NewEncoder(os.Stdout)

	switch {
	case *stats != "":
		rows, err := search.Stats(ctx, *stats)
		if err != nil {
			return err
		}
		return out.Encode(rows)

	case *timechart != "":
		rows, err := search.Timechart(ctx, *timechart)
		if err != nil {
			return err
		}
		return out.Encode(rows)

	case *iterate:
		it := search.IterEvents()
		for it.Next(ctx) {
			if err := out.Encode(it.Event()); err != nil {
				return err
			}
		}
		return it.Err()

	default:
		page, err := search.Events(ctx, *index, *count)
		if err != nil {
			return err
		}
		for _, ev := range page.Records {
			if err := out.Encode(ev); err != nil {
				return err
			}
		}
		return nil
	}
}

func runHealth(ctx context.Context) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	status, err := client.Health(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("status: %s", status.Status)
	if status.Version != "" {
		fmt.Printf(" (version %s)", status.Version)
	}
	fmt.Println()
	return nil
}

func printUsage() {
	fmt.Println(`nova - command line client for the Splunk Nova events API

Usage:
  nova <command> [arguments]

Commands:
  ingest [file]         Ingest a JSON array of events from a file or stdin
  search [flags] <terms>
                        Search events; see "nova search -h" for flags
  health                Probe service connectivity and credentials
  version               Print version information
  help                  Show this help message

Environment Variables:
  NOVA_CLIENT_ID        API client ID
  NOVA_CLIENT_SECRET    API client secret
  NOVA_BASE_URL         Override the API base URL
  NOVA_DEBUG            Set to "true" to enable debug logging

Configuration:
  Create .nova.yaml in the working directory or your home directory.
  Environment variables override file values.`)
}
