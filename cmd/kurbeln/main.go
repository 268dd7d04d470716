// Command kurbeln finds pilots who circled in the same thermal and keeps
// the pairwise results of a contest in SQLite.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/banshee-data/kurbeln/internal/config"
	"github.com/banshee-data/kurbeln/internal/kurbeln"
	"github.com/banshee-data/kurbeln/internal/monitoring"
	"github.com/banshee-data/kurbeln/internal/version"
)

// errUsage marks a command line the subcommand already complained about.
var errUsage = errors.New("usage error")

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	monitoring.SetLogger(func(format string, v ...interface{}) {
		fmt.Fprintf(stderr, format+"\n", v...)
	})
	kurbeln.SetLogWriters(stderr, nil, nil)

	if len(args) < 1 {
		printUsage(stderr)
		return 2
	}

	command, rest := args[0], args[1:]
	var err error
	switch command {
	case "compare":
		err = handleCompare(rest, stdout, stderr)
	case "check":
		err = handleCheck(rest, stdout, stderr)
	case "update":
		err = handleUpdate(rest, stdout, stderr)
	case "report":
		err = handleReport(rest, stdout, stderr)
	case "serve":
		err = handleServe(rest, stdout, stderr)
	case "version":
		fmt.Fprintln(stdout, version.String())
	case "help", "-h", "--help":
		printUsage(stdout)
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n\n", command)
		printUsage(stderr)
		return 2
	}

	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage), errors.Is(err, flag.ErrHelp):
		return 2
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `kurbeln - find pilots who circled together

Usage: kurbeln <command> [options]

Commands:
  compare    Compare two IGC logs and print the shared thermal as JSON
  check      Count which IGC logs are regular enough to compare
  update     Compute all new or changed pairs of a contest into the database
  report     Render HTML and PNG charts for one pair
  serve      Serve stored results and the debug console over HTTP
  version    Show version information
  help       Show this help message

Common Flags:
  --config <file>    Tuning config JSON (built-in defaults otherwise)

Examples:
  kurbeln compare -v 4711.igc.gz 4712.igc.gz
  kurbeln check _flights/*.igc.gz
  kurbeln update --flights _tmp/flights.json --tracks _flights --db kurbeln.db
  kurbeln report --tracks _flights --flights _tmp/flights.json --out _out 4711 4712
  kurbeln serve --db kurbeln.db --listen localhost:8080`)
}

// newFlagSet returns a FlagSet that reports errors instead of exiting.
func newFlagSet(name string, stderr io.Writer) *flag.FlagSet {
	fset := flag.NewFlagSet(name, flag.ContinueOnError)
	fset.SetOutput(stderr)
	return fset
}

// loadTuning reads path, or returns the built-in defaults for "".
func loadTuning(path string) (*config.TuningConfig, error) {
	if path == "" {
		return config.EmptyTuningConfig(), nil
	}
	return config.LoadTuningConfig(path)
}

// parseFlags parses args, reporting malformed flags as usage errors. The
// FlagSet has already printed the problem.
func parseFlags(fset *flag.FlagSet, args []string) error {
	err := fset.Parse(args)
	if err != nil && !errors.Is(err, flag.ErrHelp) {
		return errUsage
	}
	return err
}
