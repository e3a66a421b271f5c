package store

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mcasillasm/RFManalisis/internal/domain"
)

const (
	colCustomerID   = "customer_id"
	colPurchaseDate = "purchase_date"
	colAmount       = "amount"
)

// dateLayouts are the accepted purchase date formats, tried in order.
var dateLayouts = []string{time.RFC3339, "2006-01-02"}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid purchase date %q", s)
}

// ReadTransactions parses transactions from CSV data. The header row must
// name the customer_id, purchase_date and amount columns in any order;
// extra columns are ignored. Parsing stops at the first malformed row.
func ReadTransactions(r io.Reader) ([]domain.Transaction, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("csv: missing header row")
	}
	if err != nil {
		return nil, fmt.Errorf("csv: read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{colCustomerID, colPurchaseDate, colAmount} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("csv: missing required column %q", required)
		}
	}

	var txs []domain.Transaction
	line := 1
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv: %w", err)
		}
		line++

		date, err := parseDate(strings.TrimSpace(record[cols[colPurchaseDate]]))
		if err != nil {
			return nil, fmt.Errorf("csv: line %d: %w", line, err)
		}
		amount, err := strconv.ParseFloat(strings.TrimSpace(record[cols[colAmount]]), 64)
		if err != nil {
			return nil, fmt.Errorf("csv: line %d: invalid amount %q", line, record[cols[colAmount]])
		}
		txs = append(txs, domain.Transaction{
			CustomerID:   strings.TrimSpace(record[cols[colCustomerID]]),
			PurchaseDate: date,
			Amount:       amount,
		})
	}
	return txs, nil
}

// WriteTransactions writes transactions as CSV with a header row. Dates are
// formatted as RFC 3339 in UTC so the output round-trips through
// ReadTransactions exactly.
func WriteTransactions(w io.Writer, txs []domain.Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{colCustomerID, colPurchaseDate, colAmount}); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}
	for _, tx := range txs {
		record := []string{
			tx.CustomerID,
			tx.PurchaseDate.UTC().Format(time.RFC3339),
			strconv.FormatFloat(tx.Amount, 'f', 2, 64),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("csv: write record: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

var scoredHeader = []string{
	"customer_id", "recency_days", "frequency", "monetary",
	"r_score", "f_score", "m_score", "rfm_code", "segment",
}

// WriteScored writes scored customers as CSV, one row per customer, with
// monetary amounts rounded to two decimals.
func WriteScored(w io.Writer, customers []domain.ScoredCustomer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(scoredHeader); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}
	for _, c := range customers {
		record := []string{
			c.CustomerID,
			strconv.Itoa(c.Recency),
			strconv.Itoa(c.Frequency),
			strconv.FormatFloat(c.Monetary, 'f', 2, 64),
			strconv.Itoa(c.RScore),
			strconv.Itoa(c.FScore),
			strconv.Itoa(c.MScore),
			strconv.Itoa(c.Code),
			string(c.Segment),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("csv: write record: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// CSVSource reads transactions from a CSV file. The file is re-read on every
// call, so changes on disk are picked up by the next scoring run.
type CSVSource struct {
	path string
}

// NewCSVSource creates a Source backed by the CSV file at path.
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{path: path}
}

// Transactions loads and parses the whole file.
func (s *CSVSource) Transactions(ctx context.Context) ([]domain.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open transactions file: %w", err)
	}
	defer f.Close()
	return ReadTransactions(f)
}

// Ping reports whether the backing file is reachable without reading it.
func (s *CSVSource) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := os.Stat(s.path); err != nil {
		return fmt.Errorf("transactions file unavailable: %w", err)
	}
	return nil
}
