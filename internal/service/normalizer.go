package service

import (
	"regexp"
	"strings"

	"github.com/mcasillasm/RFManalisis/internal/domain"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// sanitizeString collapses whitespace runs and trims the result.
func sanitizeString(value string) string {
	value = whitespaceRegex.ReplaceAllString(value, " ")
	return strings.TrimSpace(value)
}

// sanitizeTransactions normalizes customer ids so records differing only in
// surrounding whitespace aggregate to the same customer. The input slice is
// left untouched.
func sanitizeTransactions(txs []domain.Transaction) []domain.Transaction {
	out := make([]domain.Transaction, len(txs))
	for i, tx := range txs {
		tx.CustomerID = sanitizeString(tx.CustomerID)
		out[i] = tx
	}
	return out
}
