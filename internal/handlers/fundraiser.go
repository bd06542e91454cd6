package handlers

import (
	"log"
	"net/http"
	"strconv"

	"school-fundraiser-platform/internal/middleware"
	"school-fundraiser-platform/internal/models"
	"school-fundraiser-platform/internal/repositories"

	"github.com/go-chi/chi/v5"
)

// FundraiserReader is the fundraiser read surface the handler needs
type FundraiserReader interface {
	GetByID(id int) (*models.Fundraiser, error)
	ListActive(limit, offset int) ([]*models.Fundraiser, error)
}

// PurchaseReader is the purchase read surface used by dashboards
type PurchaseReader interface {
	ListByFundraiser(fundraiserID int, limit, offset int) ([]*models.TicketPurchase, int, error)
	ListByStudent(studentID int, limit, offset int) ([]*models.TicketPurchase, int, error)
	GetStudentSalesTotals(studentID int) (*repositories.StudentSalesTotals, error)
}

// FundraiserHandler serves fundraiser and purchase read endpoints
type FundraiserHandler struct {
	fundraisers FundraiserReader
	purchases   PurchaseReader
}

// NewFundraiserHandler creates a new fundraiser handler
func NewFundraiserHandler(fundraisers FundraiserReader, purchases PurchaseReader) *FundraiserHandler {
	return &FundraiserHandler{
		fundraisers: fundraisers,
		purchases:   purchases,
	}
}

// ListFundraisers returns active fundraisers
func (h *FundraiserHandler) ListFundraisers(w http.ResponseWriter, r *http.Request) {
	limit, offset := paginationParams(r)

	fundraisers, err := h.fundraisers.ListActive(limit, offset)
	if err != nil {
		log.Printf("Failed to list fundraisers: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to list fundraisers")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"fundraisers": fundraisers})
}

// GetFundraiser returns one fundraiser by ID
func (h *FundraiserHandler) GetFundraiser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid fundraiser ID")
		return
	}

	fundraiser, err := h.fundraisers.GetByID(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "Fundraiser not found")
		return
	}

	writeJSON(w, http.StatusOK, fundraiser)
}

// ListPurchases returns the recorded purchases for a fundraiser
func (h *FundraiserHandler) ListPurchases(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid fundraiser ID")
		return
	}

	if _, err := h.fundraisers.GetByID(id); err != nil {
		writeError(w, http.StatusNotFound, "Fundraiser not found")
		return
	}

	limit, offset := paginationParams(r)

	purchases, total, err := h.purchases.ListByFundraiser(id, limit, offset)
	if err != nil {
		log.Printf("Failed to list purchases for fundraiser %d: %v", id, err)
		writeError(w, http.StatusInternalServerError, "Failed to list purchases")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"purchases": purchases,
		"total":     total,
	})
}

// MySales returns the authenticated student's credited sales with totals
func (h *FundraiserHandler) MySales(w http.ResponseWriter, r *http.Request) {
	student := middleware.GetStudentFromContext(r.Context())
	if student == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	limit, offset := paginationParams(r)

	purchases, total, err := h.purchases.ListByStudent(student.ID, limit, offset)
	if err != nil {
		log.Printf("Failed to list sales for student %d: %v", student.ID, err)
		writeError(w, http.StatusInternalServerError, "Failed to list sales")
		return
	}

	totals, err := h.purchases.GetStudentSalesTotals(student.ID)
	if err != nil {
		log.Printf("Failed to load sales totals for student %d: %v", student.ID, err)
		writeError(w, http.StatusInternalServerError, "Failed to load sales totals")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"purchases": purchases,
		"total":     total,
		"totals":    totals,
	})
}

// HealthCheck is the liveness endpoint
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// paginationParams reads limit/offset query parameters with sane defaults
func paginationParams(r *http.Request) (int, int) {
	limit := 20
	offset := 0

	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 && l <= 100 {
		limit = l
	}
	if o, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && o >= 0 {
		offset = o
	}

	return limit, offset
}
