package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"carhive/internal/catalog"
	"carhive/internal/config"
	"carhive/internal/domain"
	"carhive/internal/metrics"
	"carhive/internal/models"
	"carhive/internal/store"

	"github.com/rs/zerolog"
)

// HTTPServer exposes the storefront API: catalog browsing, booking
// lifecycle and the dashboard stats.
type HTTPServer struct {
	cfg      config.APIConfig
	fleet    *catalog.Catalog
	bookings domain.BookingService
	stats    domain.StatsService
	drafts   domain.DraftService
	server   *http.Server
	auth     *HTTPAuth
	logger   *zerolog.Logger
}

func NewHTTPServer(cfg config.APIConfig, fleet *catalog.Catalog, bookings domain.BookingService, stats domain.StatsService, drafts domain.DraftService, logger *zerolog.Logger) *HTTPServer {
	mux := http.NewServeMux()
	srv := &HTTPServer{cfg: cfg, fleet: fleet, bookings: bookings, stats: stats, drafts: drafts, logger: logger}
	srv.auth = NewHTTPAuth(cfg)

	mux.HandleFunc("/api/v1/cars/models", srv.handleCarModels)
	mux.HandleFunc("/api/v1/cars", srv.handleCars)
	mux.HandleFunc("/api/v1/bookings", srv.handleBookings)
	mux.HandleFunc("/api/v1/bookings/", srv.handleBookingStatus)
	mux.HandleFunc("/api/v1/drafts", srv.handleDrafts)
	mux.HandleFunc("/api/v1/stats", srv.handleStats)

	handler := srv.loggingMiddleware(srv.auth.Wrap(mux))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	return srv
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler returns the assembled handler chain, primarily for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) handleCars(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	metrics.IncHTTP("cars")
	metrics.IncFleetSearch()

	q := r.URL.Query()
	criteria := catalog.Criteria{
		Manufacturer: strings.TrimSpace(q.Get("manufacturer")),
		Model:        strings.TrimSpace(q.Get("model")),
		Fuel:         strings.TrimSpace(q.Get("fuel")),
		Transmission: strings.TrimSpace(q.Get("transmission")),
		PriceRange:   strings.TrimSpace(q.Get("price_range")),
		Seats:        strings.TrimSpace(q.Get("seats")),
	}

	if raw := strings.TrimSpace(q.Get("year")); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid year")
			return
		}
		criteria.Year = year
	}
	if raw := strings.TrimSpace(q.Get("page")); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid page")
			return
		}
		criteria.Page = page
	}
	if raw := strings.TrimSpace(q.Get("page_size")); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid page_size")
			return
		}
		criteria.PageSize = size
	}

	// model selection survives only within its manufacturer's model list
	criteria.Model = s.fleet.ResetModel(criteria.Manufacturer, criteria.Model)

	page := s.fleet.Filter(criteria)
	writeJSON(w, http.StatusOK, map[string]any{
		"cars":          page.Cars,
		"total_matched": page.TotalMatched,
		"total_pages":   page.TotalPages,
	})
}

func (s *HTTPServer) handleCarModels(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	metrics.IncHTTP("car_models")

	manufacturer := strings.TrimSpace(r.URL.Query().Get("make"))
	if manufacturer == "" {
		writeError(w, http.StatusBadRequest, "make is required")
		return
	}

	modelNames := s.fleet.ModelsFor(manufacturer)
	if modelNames == nil {
		modelNames = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"models": modelNames})
}

func (s *HTTPServer) handleBookings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.createBooking(w, r)
	case http.MethodGet:
		s.listBookings(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

type bookingRequest struct {
	CarID         string `json:"car_id"`
	UserID        string `json:"user_id"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone"`
	PickupDate    string `json:"pickup_date"`
	ReturnDate    string `json:"return_date"`
}

func (s *HTTPServer) createBooking(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("bookings_create")

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	var body bookingRequest
	if err := decoder.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	booking, err := s.bookings.CreateBooking(r.Context(), &models.Booking{
		CarID:         body.CarID,
		UserID:        body.UserID,
		CustomerName:  body.CustomerName,
		CustomerEmail: body.CustomerEmail,
		CustomerPhone: body.CustomerPhone,
		PickupDate:    body.PickupDate,
		ReturnDate:    body.ReturnDate,
	})
	if err != nil {
		writeBookingError(w, err)
		return
	}

	metrics.IncBooking(booking.Status)
	writeJSON(w, http.StatusCreated, booking)
}

func (s *HTTPServer) listBookings(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("bookings_list")

	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	bookings, err := s.bookings.BookingsForUser(r.Context(), userID, email)
	if err != nil {
		writeBookingError(w, err)
		return
	}
	if bookings == nil {
		bookings = []models.Booking{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": bookings})
}

func (s *HTTPServer) handleBookingStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	metrics.IncHTTP("bookings_status")

	const prefix = "/api/v1/bookings/"
	rest := strings.TrimPrefix(r.URL.Path, prefix)
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] != "status" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	bookingID := parts[0]

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(body.Status) == "" {
		writeError(w, http.StatusBadRequest, "status is required")
		return
	}

	booking, err := s.bookings.TransitionBooking(r.Context(), bookingID, body.Status)
	if err != nil {
		writeBookingError(w, err)
		return
	}

	metrics.IncBooking(booking.Status)
	writeJSON(w, http.StatusOK, booking)
}

// handleDrafts holds a booking request while the visitor authenticates.
// Drafts are keyed by an opaque session id and live in the draft repository
// with a TTL; they never reach the booking store.
func (s *HTTPServer) handleDrafts(w http.ResponseWriter, r *http.Request) {
	if s.drafts == nil {
		writeError(w, http.StatusNotFound, "drafts are not enabled")
		return
	}
	switch r.Method {
	case http.MethodPost:
		s.holdDraft(w, r)
	case http.MethodGet:
		s.resumeDraft(w, r)
	case http.MethodDelete:
		s.discardDraft(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) holdDraft(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("drafts_hold")

	var draft models.BookingDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(draft.SessionID) == "" {
		writeError(w, http.StatusBadRequest, "session_id is required")
		return
	}

	allowed, err := s.drafts.CheckRateLimit(r.Context(), draft.SessionID, models.RateLimitRequests, models.RateLimitWindow*time.Second)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !allowed {
		writeError(w, http.StatusTooManyRequests, "too many draft requests")
		return
	}

	if err := s.drafts.HoldDraft(r.Context(), &draft); err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, draft)
}

func (s *HTTPServer) resumeDraft(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("drafts_resume")

	sessionID := strings.TrimSpace(r.URL.Query().Get("session_id"))
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "session_id is required")
		return
	}

	draft, err := s.drafts.ResumeDraft(r.Context(), sessionID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if draft == nil {
		writeError(w, http.StatusNotFound, "draft not found")
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

func (s *HTTPServer) discardDraft(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("drafts_discard")

	sessionID := strings.TrimSpace(r.URL.Query().Get("session_id"))
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "session_id is required")
		return
	}
	if err := s.drafts.DiscardDraft(r.Context(), sessionID); err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *HTTPServer) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	metrics.IncHTTP("stats")

	stats, err := s.stats.Snapshot(r.Context())
	if err != nil {
		writeBookingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// writeBookingError maps core errors onto HTTP statuses. Validation problems
// are the caller's fault; permission trouble means the store policy is
// misconfigured and must not masquerade as a generic failure.
func writeBookingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrAuthRequired):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, store.ErrBadDate),
		errors.Is(err, store.ErrPastPickup),
		errors.Is(err, store.ErrReturnNotAfterPickup),
		errors.Is(err, store.ErrUnknownCar):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrInvalidTransition):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrPermissionDenied):
		writeError(w, http.StatusForbidden, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *HTTPServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
