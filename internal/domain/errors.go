package domain

import (
	"errors"
	"fmt"
)

// MinPopulation is the smallest number of distinct customers that quintile
// scoring can split into five groups.
const MinPopulation = 5

var (
	// ErrEmptyInput is returned when scoring is attempted with no transactions.
	ErrEmptyInput = errors.New("no transactions supplied")

	// ErrInsufficientPopulation is returned when fewer than MinPopulation
	// distinct customers are present in the input.
	ErrInsufficientPopulation = errors.New("fewer than 5 distinct customers")
)

// RecordError describes one invalid transaction record.
type RecordError struct {
	Index      int
	CustomerID string
	Reason     string
}

func (e RecordError) Error() string {
	if e.CustomerID == "" {
		return fmt.Sprintf("record %d: %s", e.Index, e.Reason)
	}
	return fmt.Sprintf("record %d (customer %q): %s", e.Index, e.CustomerID, e.Reason)
}

// RecordErrors accumulates every invalid record found during validation so
// callers can report all failures in a single pass.
type RecordErrors struct {
	Records []RecordError
}

func (e *RecordErrors) Error() string {
	if len(e.Records) == 0 {
		return "no record errors"
	}
	if len(e.Records) == 1 {
		return e.Records[0].Error()
	}
	msg := fmt.Sprintf("%d invalid records:", len(e.Records))
	for _, rec := range e.Records {
		msg += " " + rec.Error() + ";"
	}
	return msg
}

// Append adds a record error to the collection.
func (e *RecordErrors) Append(rec RecordError) {
	e.Records = append(e.Records, rec)
}

// AsError returns the collection as an error, or nil when empty.
func (e *RecordErrors) AsError() error {
	if len(e.Records) == 0 {
		return nil
	}
	return e
}
