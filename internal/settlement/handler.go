package settlement

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/adhamsal/splitkit/internal/group"
	"github.com/adhamsal/splitkit/internal/ledger"
	"github.com/adhamsal/splitkit/pkg/response"
)

// Handler handles HTTP requests for settlement operations
type Handler struct {
	service *Service
}

// NewHandler creates a new settlement handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for settlement endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/group/{groupId}", h.ListByGroup)

	return r
}

// Create handles POST /settlements
// @Summary      Record a settlement
// @Description  Record a direct payment between two members and apply it to the ledger
// @Tags         settlements
// @Accept       json
// @Produce      json
// @Param        request body CreateSettlementRequest true "Settlement request"
// @Success      201 {object} response.APIResponse{data=SettlementResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Failure      422 {object} response.APIResponse
// @Router       /settlements [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateSettlementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	stl, err := h.service.Create(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, group.ErrGroupNotFound):
			response.NotFound(w, err.Error())
		case errors.Is(err, ledger.ErrUnknownMember):
			response.UnprocessableEntity(w, "UNKNOWN_MEMBER", err.Error())
		case errors.Is(err, ErrSelfSettlement),
			errors.Is(err, ledger.ErrNonPositiveAmount),
			errors.Is(err, ErrValidation):
			response.BadRequest(w, err.Error())
		default:
			response.InternalError(w, "Failed to record settlement")
		}
		return
	}

	response.JSON(w, http.StatusCreated, stl.ToResponse())
}

// ListByGroup handles GET /settlements/group/{groupId}
// @Summary      List group settlements
// @Description  Get the settlement history for a group, oldest first
// @Tags         settlements
// @Produce      json
// @Param        groupId path string true "Group ID"
// @Success      200 {object} response.APIResponse{data=[]SettlementResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /settlements/group/{groupId} [get]
func (h *Handler) ListByGroup(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupId")

	settlements, err := h.service.ListByGroup(r.Context(), groupID)
	if err != nil {
		if errors.Is(err, group.ErrGroupNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to list settlements")
		return
	}

	settlementResponses := make([]*SettlementResponse, len(settlements))
	for i, s := range settlements {
		settlementResponses[i] = s.ToResponse()
	}

	response.JSON(w, http.StatusOK, settlementResponses)
}
