package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/basket-splitter/internal/catalog"
	"github.com/eugenenazirov/basket-splitter/internal/logging"
	"github.com/eugenenazirov/basket-splitter/internal/report"
	"github.com/eugenenazirov/basket-splitter/internal/splitter"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "basket-split: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	eligibility string
	baskets     []string
	format      string
	verify      bool
	maxStale    int
	logLevel    string
}

func parseArgs(args []string, stderr io.Writer) (options, error) {
	var opts options

	app := kingpin.New("basket-split", "Split basket files into delivery groups")
	app.UsageWriter(stderr)
	app.ErrorWriter(stderr)
	app.Flag("eligibility", "Path to the item eligibility JSON file").Short('e').Required().StringVar(&opts.eligibility)
	app.Flag("format", "Output format").Default("text").EnumVar(&opts.format, "text", "json")
	app.Flag("verify", "Check every group against the eligibility file before printing").BoolVar(&opts.verify)
	app.Flag("max-stale-iterations", "Iterations without improvement before the search stops").
		Default(fmt.Sprint(splitter.DefaultMaxStaleIterations)).IntVar(&opts.maxStale)
	app.Flag("log-level", "Log level (debug, info, warn, error)").Default("warn").StringVar(&opts.logLevel)
	app.Arg("basket", "Basket JSON files").Required().ExistingFilesVar(&opts.baskets)

	if _, err := app.Parse(args); err != nil {
		return options{}, err
	}
	return opts, nil
}

func run(args []string, stdout, stderr io.Writer) error {
	opts, err := parseArgs(args, stderr)
	if err != nil {
		return err
	}

	logger, err := logging.NewConsole(stderr, opts.logLevel)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	eligibility, err := catalog.LoadEligibility(opts.eligibility)
	if err != nil {
		return err
	}
	index := splitter.NewEligibilityIndex(eligibility)
	split := splitter.New(
		splitter.WithMaxStaleIterations(opts.maxStale),
		splitter.WithLogger(logger),
	)

	for i, path := range opts.baskets {
		basket, err := catalog.LoadBasket(path)
		if err != nil {
			return err
		}

		result, err := split.Split(basket, index)
		if err != nil {
			return fmt.Errorf("split %s: %w", path, err)
		}
		if opts.verify {
			if err := result.Deliveries.Validate(index); err != nil {
				return fmt.Errorf("verify %s: %w", path, err)
			}
			logger.Info("basket verified", zap.String("basket", path), zap.Int("groups", result.Deliveries.Size()))
		}

		if err := write(stdout, opts.format, path, i, len(opts.baskets), result); err != nil {
			return err
		}
	}
	return nil
}

func write(w io.Writer, format, path string, i, total int, result splitter.Result) error {
	if format == "json" {
		return report.WriteJSON(w, result)
	}
	if total > 1 {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "# %s\n\n", path); err != nil {
			return err
		}
	}
	return report.WriteText(w, result)
}
