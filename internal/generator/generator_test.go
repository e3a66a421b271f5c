package generator

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestGenerateDeterministic(t *testing.T) {
	cfg := Config{Customers: 20, Seed: 42}
	first, err := New(cfg).Generate(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := New(cfg).Generate(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatal("same seed produced different datasets")
	}
}

func TestGenerateCoversEveryCustomer(t *testing.T) {
	gen := New(Config{Customers: 10, Seed: 7})
	txs, err := gen.Generate(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	counts := make(map[string]int)
	for _, tx := range txs {
		counts[tx.CustomerID]++
	}
	if len(counts) != 10 {
		t.Fatalf("expected 10 distinct customers, got %d", len(counts))
	}
	for id, n := range counts {
		if !strings.HasPrefix(id, "C") {
			t.Errorf("unexpected customer id %q", id)
		}
		if n < 1 {
			t.Errorf("customer %s has no purchases", id)
		}
	}
}

func TestGenerateBounds(t *testing.T) {
	gen := New(Config{Customers: 50, Seed: 11})
	txs, err := gen.Generate(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	today := DefaultConfig().Today
	reference := gen.ReferenceDate()
	oldest := today.AddDate(0, 0, -364)
	for _, tx := range txs {
		if tx.Amount < 100 {
			t.Fatalf("amount %v below the 100 floor", tx.Amount)
		}
		if tx.PurchaseDate.After(reference) {
			t.Fatalf("purchase date %v is after the reference date %v", tx.PurchaseDate, reference)
		}
		if tx.PurchaseDate.Before(oldest) {
			t.Fatalf("purchase date %v is older than a year", tx.PurchaseDate)
		}
	}
}

func TestGenerateContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New(Config{Customers: 5, Seed: 1}).Generate(ctx); err == nil {
		t.Fatal("expected an error for a canceled context")
	}
}

func TestReferenceDate(t *testing.T) {
	today := time.Date(2025, time.November, 6, 0, 0, 0, 0, time.UTC)
	gen := New(Config{Customers: 5, Seed: 1, Today: today})
	want := time.Date(2025, time.November, 7, 0, 0, 0, 0, time.UTC)
	if got := gen.ReferenceDate(); !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestWriteDataset(t *testing.T) {
	gen := New(Config{Customers: 5, Seed: 3})
	txs, err := gen.Generate(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	path := filepath.Join(t.TempDir(), "data", "transactions.csv")
	if err := WriteDataset(txs, path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if lines[0] != "customer_id,purchase_date,amount" {
		t.Fatalf("unexpected header %q", lines[0])
	}
	if len(lines) != len(txs)+1 {
		t.Fatalf("expected %d lines, got %d", len(txs)+1, len(lines))
	}
}
