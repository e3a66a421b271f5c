package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/mcasillasm/RFManalisis/internal/config"
	"github.com/mcasillasm/RFManalisis/internal/domain"
	"github.com/mcasillasm/RFManalisis/internal/logging"
	"github.com/mcasillasm/RFManalisis/internal/report"
	"github.com/mcasillasm/RFManalisis/internal/rfm"
	"github.com/mcasillasm/RFManalisis/internal/store"
)

func main() {
	var (
		input        = flag.String("input", "", "path of the transactions CSV file (required)")
		referenceStr = flag.String("reference-date", "", "scoring reference date, YYYY-MM-DD (default: day after the latest purchase)")
		output       = flag.String("output", "", "optional path for the scored customers CSV")
		topN         = flag.Int("top", 10, "number of top spenders to print")
		workers      = flag.Int("workers", 4, "number of concurrent aggregation workers")
		segmentsCSV  = flag.String("segments", "", "comma-separated segment names to keep")
		recencyMin   = flag.Int("recency-min", -1, "minimum recency in days (inclusive)")
		recencyMax   = flag.Int("recency-max", -1, "maximum recency in days (inclusive)")
		monetaryMin  = flag.Float64("monetary-min", -1, "minimum monetary total (inclusive)")
		monetaryMax  = flag.Float64("monetary-max", -1, "maximum monetary total (inclusive)")
	)
	flag.Parse()

	if *input == "" {
		fmt.Fprintln(os.Stderr, "usage: score -input transactions.csv [flags]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging).With("component", "score")

	filter, err := buildFilter(*segmentsCSV, *recencyMin, *recencyMax, *monetaryMin, *monetaryMax)
	if err != nil {
		logger.Error("invalid filter", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	start := time.Now()
	steps := int64(2)
	if *output != "" {
		steps++
	}
	bar := progressbar.Default(steps, "loading transactions")

	txs, err := store.NewCSVSource(*input).Transactions(ctx)
	if err != nil {
		logger.Error("failed to load transactions", "error", err, "path", *input)
		os.Exit(1)
	}
	_ = bar.Add(1)

	reference, err := resolveReference(*referenceStr, txs)
	if err != nil {
		logger.Error("invalid reference date", "error", err)
		os.Exit(1)
	}

	bar.Describe("scoring customers")
	engine := rfm.New(rfm.WithWorkers(*workers))
	scored, err := engine.Score(ctx, txs, reference)
	if err != nil {
		logger.Error("scoring failed", "error", err)
		os.Exit(1)
	}
	_ = bar.Add(1)

	filtered := filter.Apply(scored)

	if *output != "" {
		bar.Describe("writing scored csv")
		if err := writeScoredFile(*output, filtered); err != nil {
			logger.Error("failed to write scored csv", "error", err, "path", *output)
			os.Exit(1)
		}
		_ = bar.Add(1)
	}

	printReport(os.Stdout, reference, filtered, *topN)
	logger.Info("scoring complete",
		"transactions", len(txs),
		"customers", len(scored),
		"matched", len(filtered),
		"duration", time.Since(start).String(),
	)
}

func buildFilter(segmentsCSV string, recencyMin, recencyMax int, monetaryMin, monetaryMax float64) (report.Filter, error) {
	var f report.Filter
	if segmentsCSV != "" {
		for _, name := range strings.Split(segmentsCSV, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			seg, ok := domain.ParseSegment(name)
			if !ok {
				return report.Filter{}, fmt.Errorf("unknown segment %q", name)
			}
			f.Segments = append(f.Segments, seg)
		}
	}
	if recencyMin >= 0 {
		f.RecencyMin = &recencyMin
	}
	if recencyMax >= 0 {
		f.RecencyMax = &recencyMax
	}
	if monetaryMin >= 0 {
		f.MonetaryMin = &monetaryMin
	}
	if monetaryMax >= 0 {
		f.MonetaryMax = &monetaryMax
	}
	return f, nil
}

// resolveReference parses the flag value, or derives the reference date from
// the data as the day after the latest purchase.
func resolveReference(value string, txs []domain.Transaction) (time.Time, error) {
	if value != "" {
		if t, err := time.Parse("2006-01-02", value); err == nil {
			return t, nil
		}
		t, err := time.Parse(time.RFC3339, value)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid reference date %q", value)
		}
		return t, nil
	}

	var latest time.Time
	for _, tx := range txs {
		if tx.PurchaseDate.After(latest) {
			latest = tx.PurchaseDate
		}
	}
	if latest.IsZero() {
		return time.Now().UTC(), nil
	}
	return latest.AddDate(0, 0, 1), nil
}

func writeScoredFile(path string, customers []domain.ScoredCustomer) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer f.Close()
	return store.WriteScored(f, customers)
}

func printReport(w io.Writer, reference time.Time, customers []domain.ScoredCustomer, topN int) {
	summary := report.Summarize(customers)

	fmt.Fprintf(w, "\nReference date: %s\n", reference.UTC().Format("2006-01-02"))
	fmt.Fprintf(w, "Customers:      %d\n", summary.Customers)
	fmt.Fprintf(w, "Total revenue:  %.2f\n", summary.TotalRevenue)
	fmt.Fprintf(w, "Avg monetary:   %.2f\n", summary.AvgMonetary)
	fmt.Fprintf(w, "Avg recency:    %.1f days\n", summary.AvgRecency)

	fmt.Fprintln(w, "\nSegment distribution:")
	for _, sc := range report.SegmentDistribution(customers) {
		fmt.Fprintf(w, "  %-18s %d\n", sc.Segment, sc.Count)
	}

	top := report.TopByMonetary(customers, topN)
	if len(top) == 0 {
		return
	}
	fmt.Fprintf(w, "\nTop %d customers by spend:\n", len(top))
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CUSTOMER\tRECENCY\tFREQ\tMONETARY\tRFM\tSEGMENT")
	for _, c := range top {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%.2f\t%d\t%s\n",
			c.CustomerID, c.Recency, c.Frequency, c.Monetary, c.Code, c.Segment)
	}
	_ = tw.Flush()
}
