package domain

// CustomerMetrics aggregates the purchase history of one customer
// relative to a reference date.
type CustomerMetrics struct {
	CustomerID string
	Recency    int
	Frequency  int
	Monetary   float64
}

// ScoredCustomer extends CustomerMetrics with quintile scores and the
// segment assigned to the customer.
type ScoredCustomer struct {
	CustomerMetrics
	RScore  int
	FScore  int
	MScore  int
	Code    int
	Segment Segment
}
