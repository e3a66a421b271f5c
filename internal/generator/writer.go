package generator

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mcasillasm/RFManalisis/internal/domain"
	"github.com/mcasillasm/RFManalisis/internal/store"
)

// WriteDataset serializes the transactions as CSV at the provided path,
// creating parent directories as needed.
func WriteDataset(txs []domain.Transaction, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	if err := store.WriteTransactions(file, txs); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
