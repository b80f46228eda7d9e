package expense

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/adhamsal/splitkit/internal/expense/split"
	"github.com/adhamsal/splitkit/internal/group"
	"github.com/adhamsal/splitkit/pkg/response"
)

// Handler handles HTTP requests for expense operations
type Handler struct {
	service *Service
}

// NewHandler creates a new expense handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for expense endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/group/{groupId}", h.ListByGroup)

	return r
}

// Create handles POST /expenses
// @Summary      Create a new expense
// @Description  Record an expense, compute its split and apply it to the group ledger
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        request body CreateExpenseRequest true "Expense creation request"
// @Success      201 {object} response.APIResponse{data=ExpenseResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Failure      422 {object} response.APIResponse
// @Router       /expenses [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	expense, err := h.service.Create(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, group.ErrGroupNotFound):
			response.NotFound(w, err.Error())
		case errors.Is(err, ErrInvalidParticipant):
			response.UnprocessableEntity(w, "INVALID_PARTICIPANT", err.Error())
		case errors.Is(err, ErrCurrencyMismatch):
			response.UnprocessableEntity(w, "CURRENCY_MISMATCH", err.Error())
		case errors.Is(err, split.ErrSplitMismatch),
			errors.Is(err, split.ErrMissingAmount),
			errors.Is(err, split.ErrMissingPercentage),
			errors.Is(err, split.ErrPercentageOutOfRange),
			errors.Is(err, split.ErrDuplicateParticipant):
			response.UnprocessableEntity(w, "SPLIT_INVALID", err.Error())
		case errors.Is(err, split.ErrNoParticipants),
			errors.Is(err, split.ErrNonPositiveAmount),
			errors.Is(err, ErrValidation):
			response.BadRequest(w, err.Error())
		default:
			response.InternalError(w, "Failed to create expense")
		}
		return
	}

	response.JSON(w, http.StatusCreated, expense.ToResponse())
}

// ListByGroup handles GET /expenses/group/{groupId}
// @Summary      List group expenses
// @Description  Get the expense history for a group, oldest first
// @Tags         expenses
// @Produce      json
// @Param        groupId path string true "Group ID"
// @Success      200 {object} response.APIResponse{data=[]ExpenseResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /expenses/group/{groupId} [get]
func (h *Handler) ListByGroup(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupId")

	expenses, err := h.service.ListByGroup(r.Context(), groupID)
	if err != nil {
		if errors.Is(err, group.ErrGroupNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to list expenses")
		return
	}

	expenseResponses := make([]*ExpenseResponse, len(expenses))
	for i, e := range expenses {
		expenseResponses[i] = e.ToResponse()
	}

	response.JSON(w, http.StatusOK, expenseResponses)
}
