package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/mcasillasm/RFManalisis/internal/generator"
	"github.com/mcasillasm/RFManalisis/internal/store"
)

func main() {
	cfg := generator.DefaultConfig()
	var (
		customers   = flag.Int("customers", cfg.Customers, "number of customers to generate")
		seed        = flag.Int64("seed", cfg.Seed, "random seed for deterministic generation")
		today       = flag.String("today", cfg.Today.Format("2006-01-02"), "most recent possible purchase day (YYYY-MM-DD)")
		output      = flag.String("output", "data/transactions.csv", "path of the CSV file to write")
		writeStdout = flag.Bool("stdout", false, "write the dataset to stdout instead of a file")
	)
	flag.Parse()

	todayDate, err := time.Parse("2006-01-02", *today)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid -today value %q: %v\n", *today, err)
		os.Exit(1)
	}

	genCfg := generator.Config{
		Customers: *customers,
		Seed:      *seed,
		Today:     todayDate,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	gen := generator.New(genCfg)
	txs, err := gen.Generate(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generation failed: %v\n", err)
		os.Exit(1)
	}

	if *writeStdout {
		if err := store.WriteTransactions(os.Stdout, txs); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write dataset to stdout: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := generator.WriteDataset(txs, *output); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write dataset: %v\n", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stdout, "Generated %d transactions for %d customers into %s\n", len(txs), *customers, *output)
	fmt.Fprintf(os.Stdout, "Suggested reference date: %s\n", gen.ReferenceDate().Format("2006-01-02"))
}
