package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/banshee-data/kurbeln/internal/igc"
	"github.com/banshee-data/kurbeln/internal/kurbeln"
)

func handleCompare(args []string, stdout, stderr io.Writer) error {
	fset := newFlagSet("compare", stderr)
	configPath := fset.String("config", "", "Tuning config JSON")
	verbose := fset.Bool("v", false, "Print diagnostics to stderr")
	trace := fset.Bool("trace", false, "Print per-window trace to stderr (implies -v)")
	fset.Usage = func() {
		fmt.Fprintln(stderr, "Usage: kurbeln compare [options] <track1.igc[.gz]> <track2.igc[.gz]>")
		fset.PrintDefaults()
	}
	if err := parseFlags(fset, args); err != nil {
		return err
	}
	if fset.NArg() != 2 {
		fset.Usage()
		return errUsage
	}

	tuning, err := loadTuning(*configPath)
	if err != nil {
		return err
	}

	switch {
	case *trace:
		kurbeln.SetLegacyLogger(stderr)
	case *verbose:
		kurbeln.SetLogWriters(stderr, stderr, nil)
	}

	f1, err := igc.Open(fset.Arg(0))
	if err != nil {
		return err
	}
	f2, err := igc.Open(fset.Arg(1))
	if err != nil {
		return err
	}

	res, err := kurbeln.Kurbeln(f1.Track(), f2.Track(), kurbeln.ConfigFromTuning(tuning))
	if err != nil {
		return err
	}
	if *verbose || *trace {
		fmt.Fprintf(stderr, "outcome: %s (segments=%d runs=%d)\n", res.Outcome, res.Segments, res.Runs)
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(res.Match)
}

func handleCheck(args []string, stdout, stderr io.Writer) error {
	fset := newFlagSet("check", stderr)
	configPath := fset.String("config", "", "Tuning config JSON")
	fset.Usage = func() {
		fmt.Fprintln(stderr, "Usage: kurbeln check [options] <track.igc[.gz]>...")
		fset.PrintDefaults()
	}
	if err := parseFlags(fset, args); err != nil {
		return err
	}
	if fset.NArg() == 0 {
		fset.Usage()
		return errUsage
	}

	tuning, err := loadTuning(*configPath)
	if err != nil {
		return err
	}
	maxIrregular := tuning.GetMaxIrregularFraction()

	valid, invalid := 0, 0
	for _, path := range fset.Args() {
		f, err := igc.Open(path)
		if err != nil {
			fmt.Fprintf(stdout, "File %s is not readable: %v\n", path, err)
			invalid++
			continue
		}
		if t := f.Track(); !kurbeln.IsContiguous(t, maxIrregular) {
			fmt.Fprintf(stdout, "File %s is not valid (%.1f%% irregular steps)\n", path, 100*kurbeln.IrregularFraction(t))
			invalid++
			continue
		}
		valid++
	}

	fmt.Fprintf(stdout, "Valid: %d\n", valid)
	fmt.Fprintf(stdout, "Invalid: %d\n", invalid)
	fmt.Fprintf(stdout, "Percentage: %.1f%%\n", 100*float64(valid)/float64(valid+invalid))
	return nil
}
