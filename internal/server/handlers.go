package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mcasillasm/RFManalisis/internal/domain"
	"github.com/mcasillasm/RFManalisis/internal/report"
	"github.com/mcasillasm/RFManalisis/internal/service"
	"github.com/mcasillasm/RFManalisis/internal/store"
)

// APIHandlers exposes HTTP handlers for the REST API.
type APIHandlers struct {
	logger  *slog.Logger
	service *service.SegmentationService
}

// NewAPIHandlers constructs an APIHandlers instance.
func NewAPIHandlers(logger *slog.Logger, svc *service.SegmentationService) *APIHandlers {
	return &APIHandlers{
		logger:  logger,
		service: svc,
	}
}

// handleScore scores inline transactions when the body carries any, and
// otherwise re-scores the configured source, replacing the served snapshot.
func (h *APIHandlers) handleScore(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var payload scoreRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var reference time.Time
	if payload.ReferenceDate != "" {
		ref, err := parseDateParam(payload.ReferenceDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid referenceDate")
			return
		}
		reference = ref
	}

	if len(payload.Transactions) > 0 {
		h.scoreInline(w, r, payload.Transactions, reference)
		return
	}

	snap, err := h.service.Run(r.Context(), reference)
	if err != nil {
		h.respondRunError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, scoreResponse{
		RunID:         snap.RunID.String(),
		ReferenceDate: formatTime(snap.ReferenceDate),
		ScoredAt:      formatTime(snap.ScoredAt),
		Summary:       summaryBody(snap.Summary),
		Customers:     customerResponses(snap.Customers),
	})
}

// scoreInline runs a one-shot scoring over the submitted transactions without
// touching the stored snapshot.
func (h *APIHandlers) scoreInline(w http.ResponseWriter, r *http.Request, inputs []transactionInput, reference time.Time) {
	txs := make([]domain.Transaction, 0, len(inputs))
	for i, in := range inputs {
		date, err := parseDateParam(in.PurchaseDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("transaction %d: invalid purchaseDate", i))
			return
		}
		txs = append(txs, domain.Transaction{
			CustomerID:   in.CustomerID,
			PurchaseDate: date,
			Amount:       in.Amount,
		})
	}

	scored, err := h.service.Score(r.Context(), txs, reference)
	if err != nil {
		h.respondRunError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, scoreResponse{
		ReferenceDate: formatTime(reference),
		Summary:       summaryBody(report.Summarize(scored)),
		Customers:     customerResponses(scored),
	})
}

func (h *APIHandlers) handleCustomers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	query := r.URL.Query()
	filter, err := filterFromQuery(query)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	page, err := h.service.ListCustomers(service.ListParams{
		Page:     parseInt(query.Get("page"), 1),
		PageSize: parseInt(query.Get("pageSize"), 50),
		Filter:   filter,
	})
	if err != nil {
		h.respondQueryError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, listCustomersResponse{
		Items:      customerResponses(page.Items),
		Pagination: paginationResponse(page.Pagination),
	})
}

func (h *APIHandlers) handleTopCustomers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	query := r.URL.Query()
	filter, err := filterFromQuery(query)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	top, err := h.service.TopCustomers(parseInt(query.Get("n"), 10), filter)
	if err != nil {
		h.respondQueryError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, topCustomersResponse{Items: customerResponses(top)})
}

func (h *APIHandlers) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	filter, err := filterFromQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	view, err := h.service.Summary(filter)
	if err != nil {
		h.respondQueryError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, summaryResponse{
		RunID:         view.RunID.String(),
		ReferenceDate: formatTime(view.ReferenceDate),
		ScoredAt:      formatTime(view.ScoredAt),
		Customers:     view.Summary.Customers,
		TotalRevenue:  view.Summary.TotalRevenue,
		AvgMonetary:   view.Summary.AvgMonetary,
		AvgRecency:    view.Summary.AvgRecency,
	})
}

func (h *APIHandlers) handleSegments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	filter, err := filterFromQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	dist, err := h.service.Distribution(filter)
	if err != nil {
		h.respondQueryError(w, err)
		return
	}

	resp := segmentsResponse{Segments: make([]segmentCountResponse, 0, len(dist))}
	for _, sc := range dist {
		resp.Segments = append(resp.Segments, segmentCountResponse{
			Segment: string(sc.Segment),
			Count:   sc.Count,
		})
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *APIHandlers) handleMatrix(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	filter, err := filterFromQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	matrix, err := h.service.Matrix(filter)
	if err != nil {
		h.respondQueryError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, matrixResponse{Matrix: matrix})
}

func (h *APIHandlers) handleExportCustomers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	filter, err := filterFromQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	customers, err := h.service.FilteredCustomers(filter)
	if err != nil {
		h.respondQueryError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="rfm_customers_filtered.csv"`)
	w.WriteHeader(http.StatusOK)
	if err := store.WriteScored(w, customers); err != nil {
		h.logger.Error("failed to stream csv export", "error", err)
	}
}

func (h *APIHandlers) respondRunError(w http.ResponseWriter, err error) {
	var recErrs *domain.RecordErrors
	switch {
	case errors.Is(err, domain.ErrEmptyInput),
		errors.Is(err, domain.ErrInsufficientPopulation),
		errors.As(err, &recErrs):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("scoring run failed", "error", err)
		writeError(w, http.StatusInternalServerError, "scoring run failed")
	}
}

func (h *APIHandlers) respondQueryError(w http.ResponseWriter, err error) {
	if errors.Is(err, service.ErrNoSnapshot) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	h.logger.Error("query failed", "error", err)
	writeError(w, http.StatusInternalServerError, "query failed")
}

// --- Request & Response DTOs ---

type scoreRequest struct {
	ReferenceDate string             `json:"referenceDate"`
	Transactions  []transactionInput `json:"transactions"`
}

type transactionInput struct {
	CustomerID   string  `json:"customerId"`
	PurchaseDate string  `json:"purchaseDate"`
	Amount       float64 `json:"amount"`
}

type scoreResponse struct {
	RunID         string                   `json:"runId,omitempty"`
	ReferenceDate string                   `json:"referenceDate,omitempty"`
	ScoredAt      string                   `json:"scoredAt,omitempty"`
	Summary       summaryBody              `json:"summary"`
	Customers     []scoredCustomerResponse `json:"customers"`
}

type summaryBody struct {
	Customers    int     `json:"customers"`
	TotalRevenue float64 `json:"totalRevenue"`
	AvgMonetary  float64 `json:"avgMonetary"`
	AvgRecency   float64 `json:"avgRecency"`
}

type scoredCustomerResponse struct {
	CustomerID string  `json:"customerId"`
	Recency    int     `json:"recencyDays"`
	Frequency  int     `json:"frequency"`
	Monetary   float64 `json:"monetary"`
	RScore     int     `json:"rScore"`
	FScore     int     `json:"fScore"`
	MScore     int     `json:"mScore"`
	Code       int     `json:"rfmCode"`
	Segment    string  `json:"segment"`
}

type paginationResponse struct {
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
}

type listCustomersResponse struct {
	Items      []scoredCustomerResponse `json:"items"`
	Pagination paginationResponse       `json:"pagination"`
}

type topCustomersResponse struct {
	Items []scoredCustomerResponse `json:"items"`
}

type summaryResponse struct {
	RunID         string  `json:"runId"`
	ReferenceDate string  `json:"referenceDate"`
	ScoredAt      string  `json:"scoredAt"`
	Customers     int     `json:"customers"`
	TotalRevenue  float64 `json:"totalRevenue"`
	AvgMonetary   float64 `json:"avgMonetary"`
	AvgRecency    float64 `json:"avgRecency"`
}

type segmentCountResponse struct {
	Segment string `json:"segment"`
	Count   int    `json:"count"`
}

type segmentsResponse struct {
	Segments []segmentCountResponse `json:"segments"`
}

type matrixResponse struct {
	Matrix [5][5]int `json:"matrix"`
}

// --- Helpers ---

func customerResponse(c domain.ScoredCustomer) scoredCustomerResponse {
	return scoredCustomerResponse{
		CustomerID: c.CustomerID,
		Recency:    c.Recency,
		Frequency:  c.Frequency,
		Monetary:   c.Monetary,
		RScore:     c.RScore,
		FScore:     c.FScore,
		MScore:     c.MScore,
		Code:       c.Code,
		Segment:    string(c.Segment),
	}
}

func customerResponses(customers []domain.ScoredCustomer) []scoredCustomerResponse {
	out := make([]scoredCustomerResponse, 0, len(customers))
	for _, c := range customers {
		out = append(out, customerResponse(c))
	}
	return out
}

// filterFromQuery builds a report.Filter from the shared query parameters of
// the listing and export endpoints.
func filterFromQuery(query url.Values) (report.Filter, error) {
	var f report.Filter
	for _, raw := range query["segment"] {
		for _, name := range strings.Split(raw, ",") {
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

	if v := query.Get("recencyMin"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return report.Filter{}, errors.New("invalid recencyMin")
		}
		f.RecencyMin = &n
	}
	if v := query.Get("recencyMax"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return report.Filter{}, errors.New("invalid recencyMax")
		}
		f.RecencyMax = &n
	}
	if v := query.Get("monetaryMin"); v != "" {
		val, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return report.Filter{}, errors.New("invalid monetaryMin")
		}
		f.MonetaryMin = &val
	}
	if v := query.Get("monetaryMax"); v != "" {
		val, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return report.Filter{}, errors.New("invalid monetaryMax")
		}
		f.MonetaryMax = &val
	}
	return f, nil
}

// parseDateParam accepts a plain date or a full RFC 3339 timestamp.
func parseDateParam(v string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", v); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, v)
}

// decodeJSON decodes a request body, tolerating an absent or empty body so
// callers can fall back to defaults.
func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	return nil
}

func parseInt(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	if v, err := strconv.Atoi(value); err == nil {
		return v
	}
	return fallback
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{
		"error": msg,
	})
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}
