// Package rest provides HTTP handlers for sweet inventory operations.
package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	shoperrors "github.com/rmehra/sweetshop/internal/errors"
	"github.com/rmehra/sweetshop/internal/service"
	"github.com/rmehra/sweetshop/internal/store"
	"github.com/rmehra/sweetshop/internal/sweet"
	"github.com/rmehra/sweetshop/pkg/web"
)

type Handler struct {
	service  service.SweetService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler creates a new instance of the sweets API with the provided service.
func NewHandler(service service.SweetService, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
		logger:   logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes for the sweet shop service.
func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/sweets", func(r chi.Router) {
		r.Get("/", h.FindAll)
		r.Post("/", h.Create)
		r.Post("/units", h.CreateWithUnits)
		r.Get("/stats", h.Stats)
		r.Get("/low-stock", h.LowStock)
		r.Get("/search", h.Search)
		r.Get("/sort", h.Sort)
		r.Get("/category/{category}", h.ByCategory)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.FindByID)
			r.Put("/", h.Update)
			r.Delete("/", h.DeleteByID)
			r.Post("/purchase", h.Purchase)
			r.Post("/restock", h.Restock)
		})
	})

	r.Get("/healthz", h.HealthCheck)
}

// quantityDto carries the body of purchase and restock requests.
type quantityDto struct {
	Quantity *int64 `json:"quantity" validate:"required,gt=0"`
}

// Create handles the creation of a new sweet.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	var createDto service.SweetCreateDto
	if !h.decodeAndValidate(w, r, mLogger, &createDto) {
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to create sweet", "sweet", createDto)

	added, err := h.service.Add(r.Context(), createDto)
	if err != nil {
		h.respondDomainError(w, r, mLogger, err, "Failed to create sweet")
		return
	}
	mLogger.InfoContext(r.Context(), "Sweet created successfully", "ID", added.ID, "Name", added.Name)
	web.RespondJSON(w, mLogger, http.StatusCreated, added)
}

// CreateWithUnits handles the create variant whose quantity and weight accept
// numbers or named presets and which requires a measurement unit.
func (h *Handler) CreateWithUnits(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	var createDto service.SweetUnitsCreateDto
	if !h.decodeAndValidate(w, r, mLogger, &createDto) {
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to create sweet with units", "sweet", createDto)

	added, err := h.service.AddWithUnits(r.Context(), createDto)
	if err != nil {
		h.respondDomainError(w, r, mLogger, err, "Failed to create sweet")
		return
	}
	mLogger.InfoContext(r.Context(), "Sweet created successfully", "ID", added.ID, "Name", added.Name)
	web.RespondJSON(w, mLogger, http.StatusCreated, added)
}

// FindAll retrieves a list of all sweets.
func (h *Handler) FindAll(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	mLogger.DebugContext(r.Context(), "Received request to find all sweets")
	list, err := h.service.FindAll(r.Context())
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error retrieving sweet list", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch sweets")
		return
	}
	mLogger.DebugContext(r.Context(), "Successfully retrieved sweet list", "count", len(list))
	web.RespondJSON(w, mLogger, http.StatusOK, list)
}

// FindByID retrieves a sweet by its ID.
func (h *Handler) FindByID(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to find sweet by ID", "ID", id)
	found, err := h.service.FindByID(r.Context(), id)
	if err != nil {
		h.respondDomainError(w, r, mLogger, err, fmt.Sprintf("Failed to retrieve sweet with ID %d", id))
		return
	}
	mLogger.DebugContext(r.Context(), "Successfully retrieved sweet", "ID", found.ID, "Name", found.Name)
	web.RespondJSON(w, mLogger, http.StatusOK, found)
}

// Update applies a partial update to an existing sweet.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	var updateDto service.SweetUpdateDto
	if err := json.NewDecoder(r.Body).Decode(&updateDto); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to update sweet", "ID", id)

	updated, err := h.service.Update(r.Context(), id, updateDto)
	if err != nil {
		h.respondDomainError(w, r, mLogger, err, fmt.Sprintf("Failed to update sweet with ID %d", id))
		return
	}
	mLogger.InfoContext(r.Context(), "Sweet updated successfully", "ID", updated.ID, "Name", updated.Name)
	web.RespondJSON(w, mLogger, http.StatusOK, updated)
}

// DeleteByID deletes a sweet by its ID.
func (h *Handler) DeleteByID(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to delete sweet", "ID", id)
	if err := h.service.DeleteByID(r.Context(), id); err != nil {
		h.respondDomainError(w, r, mLogger, err, fmt.Sprintf("Failed to delete sweet with ID %d", id))
		return
	}
	mLogger.InfoContext(r.Context(), "Sweet deleted successfully", "ID", id)
	w.WriteHeader(http.StatusNoContent)
}

// Search filters sweets by name substring, category, and price bounds.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	var criteria store.Criteria
	if name := r.URL.Query().Get("name"); name != "" {
		criteria.Name = &name
	}
	if category := r.URL.Query().Get("category"); category != "" {
		criteria.Category = &category
	}
	minPrice, ok := web.ParseOptionalFloat(r, w, mLogger, "minPrice")
	if !ok {
		return
	}
	maxPrice, ok := web.ParseOptionalFloat(r, w, mLogger, "maxPrice")
	if !ok {
		return
	}
	criteria.MinPrice = minPrice
	criteria.MaxPrice = maxPrice

	mLogger.DebugContext(r.Context(), "Received request to search sweets")
	list, err := h.service.Search(r.Context(), criteria)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error searching sweets", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to search sweets")
		return
	}
	mLogger.DebugContext(r.Context(), "Search completed", "count", len(list))
	web.RespondJSON(w, mLogger, http.StatusOK, list)
}

// Sort returns the sweets ordered by the requested field, name by default.
func (h *Handler) Sort(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	by := r.URL.Query().Get("by")
	if by == "" {
		by = string(store.SortByName)
	}
	field := store.SortField(by)
	switch field {
	case store.SortByName, store.SortByCategory, store.SortByPrice, store.SortByQuantity:
	default:
		mLogger.WarnContext(r.Context(), "Invalid sort field", "by", by)
		web.RespondError(w, mLogger, http.StatusBadRequest,
			"Invalid sort field. Valid fields: name, category, price, quantity")
		return
	}

	list, err := h.service.SortBy(r.Context(), field)
	if err != nil {
		h.respondDomainError(w, r, mLogger, err, "Failed to sort sweets")
		return
	}
	mLogger.DebugContext(r.Context(), "Sweets sorted", "by", by, "count", len(list))
	web.RespondJSON(w, mLogger, http.StatusOK, list)
}

// Purchase decrements stock for a sweet and reports the transaction.
func (h *Handler) Purchase(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	var body quantityDto
	if !h.decodeAndValidate(w, r, mLogger, &body) {
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to purchase sweet", "ID", id, "quantity", *body.Quantity)

	result, err := h.service.Purchase(r.Context(), id, *body.Quantity)
	if err != nil {
		h.respondDomainError(w, r, mLogger, err, fmt.Sprintf("Failed to purchase sweet with ID %d", id))
		return
	}
	mLogger.InfoContext(r.Context(), "Purchase completed", "ID", id,
		"quantity", result.QuantityPurchased, "remaining", result.RemainingQuantity)
	web.RespondJSON(w, mLogger, http.StatusOK, result)
}

// Restock increments stock for a sweet and reports the transaction.
func (h *Handler) Restock(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	var body quantityDto
	if !h.decodeAndValidate(w, r, mLogger, &body) {
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to restock sweet", "ID", id, "quantity", *body.Quantity)

	result, err := h.service.Restock(r.Context(), id, *body.Quantity)
	if err != nil {
		h.respondDomainError(w, r, mLogger, err, fmt.Sprintf("Failed to restock sweet with ID %d", id))
		return
	}
	mLogger.InfoContext(r.Context(), "Restock completed", "ID", id,
		"quantity", result.QuantityAdded, "new_quantity", result.NewQuantity)
	web.RespondJSON(w, mLogger, http.StatusOK, result)
}

// LowStock returns the sweets at or below the stock threshold, 5 by default.
func (h *Handler) LowStock(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	threshold, ok := web.ParseOptionalGte(r, w, mLogger, "threshold", sweet.DefaultLowStockThreshold, 0)
	if !ok {
		return
	}
	mLogger.DebugContext(r.Context(), "Received request for low stock sweets", "threshold", threshold)
	list, err := h.service.LowStock(r.Context(), threshold)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error retrieving low stock sweets", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch low stock sweets")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, list)
}

// ByCategory returns the sweets of one category.
func (h *Handler) ByCategory(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	category := r.PathValue("category")
	mLogger.DebugContext(r.Context(), "Received request for sweets by category", "category", category)
	list, err := h.service.ByCategory(r.Context(), category)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error retrieving sweets by category", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch sweets by category")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, list)
}

// Stats returns the aggregate inventory snapshot.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	mLogger.DebugContext(r.Context(), "Received request for inventory statistics")
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error computing inventory statistics", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to compute statistics")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, stats)
}

// HealthCheck is a simple health check endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// decodeAndValidate decodes the JSON body into dto and runs struct validation,
// responding with a field-level error map on failure.
func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request, mLogger *slog.Logger, dto any) bool {
	if err := json.NewDecoder(r.Body).Decode(dto); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := h.validate.Struct(dto); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			errorResponse := make(map[string]string)
			for _, fieldErr := range validationErrors {
				// fieldErr.Tag() returns "required", "gt", etc.
				errorResponse[fieldErr.Field()] = "failed on rule: " + fieldErr.Tag()
			}
			mLogger.WarnContext(r.Context(), "Validation errors occurred", "errors", errorResponse)
			web.RespondJSON(w, mLogger, http.StatusBadRequest, map[string]any{"validation_errors": errorResponse})
			return false
		}
		mLogger.ErrorContext(r.Context(), "Error validating request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// respondDomainError maps a domain error kind to its HTTP status: validation
// and invalid-argument failures to 400, unknown IDs to 404, ID collisions and
// stock insufficiency to 409, anything else to 500.
func (h *Handler) respondDomainError(w http.ResponseWriter, r *http.Request, mLogger *slog.Logger, err error, fallback string) {
	switch {
	case errors.Is(err, shoperrors.ErrSweetNotFound):
		mLogger.WarnContext(r.Context(), "Sweet not found", "error", err)
		web.RespondError(w, mLogger, http.StatusNotFound, "Sweet not found")
	case errors.Is(err, shoperrors.ErrDuplicateID):
		mLogger.WarnContext(r.Context(), "Duplicate sweet ID", "error", err)
		web.RespondError(w, mLogger, http.StatusConflict, "Sweet with this ID already exists")
	case errors.Is(err, shoperrors.ErrInsufficientStock):
		mLogger.WarnContext(r.Context(), "Insufficient stock", "error", err)
		web.RespondError(w, mLogger, http.StatusConflict, "Insufficient stock")
	case errors.Is(err, shoperrors.ErrInvalidQuantity):
		mLogger.WarnContext(r.Context(), "Invalid quantity", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Quantity must be greater than 0")
	case errors.Is(err, shoperrors.ErrValidation),
		errors.Is(err, shoperrors.ErrInvalidAmount),
		errors.Is(err, shoperrors.ErrInvalidUnit),
		errors.Is(err, shoperrors.ErrInvalidSortField):
		mLogger.WarnContext(r.Context(), "Invalid request", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, err.Error())
	default:
		mLogger.ErrorContext(r.Context(), fallback, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fallback)
	}
}

// loggerWithReqID creates a logger with the request ID from the context.
func (h *Handler) loggerWithReqID(r *http.Request) *slog.Logger {
	reqID := middleware.GetReqID(r.Context())
	return h.logger.With("request_id", reqID)
}
