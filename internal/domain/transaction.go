package domain

import "time"

// Transaction models a single dated purchase attributed to a customer.
type Transaction struct {
	CustomerID   string
	PurchaseDate time.Time
	Amount       float64
}
