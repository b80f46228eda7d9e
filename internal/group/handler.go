package group

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/adhamsal/splitkit/internal/ledger"
	"github.com/adhamsal/splitkit/pkg/response"
)

// Handler handles HTTP requests for group operations
type Handler struct {
	service *Service
}

// NewHandler creates a new group handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for group endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.GetByID)
	r.Delete("/{id}", h.Delete)

	// Member management
	r.Post("/{id}/members", h.AddMember)
	r.Get("/{id}/members", h.GetMembers)
	r.Delete("/{id}/members/{memberId}", h.RemoveMember)

	// Ledger views
	r.Get("/{id}/balances", h.GetBalances)
	r.Post("/{id}/simplify", h.SimplifyDebts)
	r.Get("/{id}/summary", h.GetSummary)
	r.Get("/{id}/members/{memberId}/debts", h.GetMemberDebts)

	return r
}

// Create handles POST /groups
// @Summary      Create a new group
// @Description  Create a group with a currency and its initial members
// @Tags         groups
// @Accept       json
// @Produce      json
// @Param        request body CreateGroupRequest true "Group creation request"
// @Success      201 {object} response.APIResponse{data=GroupResponse}
// @Failure      400 {object} response.APIResponse
// @Router       /groups [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	group, err := h.service.Create(r.Context(), &req)
	if err != nil {
		if errors.Is(err, ErrValidation) {
			response.BadRequest(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to create group")
		return
	}

	response.JSON(w, http.StatusCreated, group.ToResponse())
}

// List handles GET /groups
// @Summary      List groups
// @Tags         groups
// @Produce      json
// @Success      200 {object} response.APIResponse{data=[]GroupResponse}
// @Router       /groups [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	groups, err := h.service.List(r.Context())
	if err != nil {
		response.InternalError(w, "Failed to list groups")
		return
	}

	groupResponses := make([]*GroupResponse, len(groups))
	for i, group := range groups {
		groupResponses[i] = group.ToResponse()
	}

	response.JSON(w, http.StatusOK, groupResponses)
}

// GetByID handles GET /groups/{id}
// @Summary      Get group by ID
// @Tags         groups
// @Produce      json
// @Param        id path string true "Group ID"
// @Success      200 {object} response.APIResponse{data=GroupResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /groups/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	group, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrGroupNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to get group")
		return
	}

	response.JSON(w, http.StatusOK, group.ToResponse())
}

// Delete handles DELETE /groups/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, ErrGroupNotFound):
			response.NotFound(w, err.Error())
		case errors.Is(err, ErrGroupHasBalances):
			response.Conflict(w, "GROUP_HAS_BALANCES", err.Error())
		default:
			response.InternalError(w, "Failed to delete group")
		}
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Group deleted successfully"})
}

// AddMember handles POST /groups/{id}/members
// @Summary      Add member to group
// @Description  Add a member to the group with a zero starting balance
// @Tags         groups
// @Accept       json
// @Produce      json
// @Param        id path string true "Group ID"
// @Param        request body AddMemberRequest true "Member to add"
// @Success      201 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /groups/{id}/members [post]
func (h *Handler) AddMember(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "id")

	var req AddMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.service.AddMember(r.Context(), groupID, req.MemberID); err != nil {
		switch {
		case errors.Is(err, ErrGroupNotFound):
			response.NotFound(w, err.Error())
		case errors.Is(err, ErrMemberAlreadyExists):
			response.Conflict(w, "MEMBER_EXISTS", err.Error())
		case errors.Is(err, ErrValidation):
			response.BadRequest(w, err.Error())
		default:
			response.InternalError(w, "Failed to add member")
		}
		return
	}

	response.JSON(w, http.StatusCreated, map[string]string{"member_id": req.MemberID})
}

// GetMembers handles GET /groups/{id}/members
func (h *Handler) GetMembers(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "id")

	members, err := h.service.Members(r.Context(), groupID)
	if err != nil {
		if errors.Is(err, ErrGroupNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to get members")
		return
	}

	response.JSON(w, http.StatusOK, members)
}

// RemoveMember handles DELETE /groups/{id}/members/{memberId}
// @Summary      Remove member from group
// @Description  Remove a fully settled member from the group
// @Tags         groups
// @Produce      json
// @Param        id path string true "Group ID"
// @Param        memberId path string true "Member ID"
// @Success      200 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /groups/{id}/members/{memberId} [delete]
func (h *Handler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "id")
	memberID := chi.URLParam(r, "memberId")

	if err := h.service.RemoveMember(r.Context(), groupID, memberID); err != nil {
		switch {
		case errors.Is(err, ErrGroupNotFound):
			response.NotFound(w, err.Error())
		case errors.Is(err, ledger.ErrUnknownMember):
			response.NotFound(w, err.Error())
		case errors.Is(err, ledger.ErrMemberHasBalance):
			response.Conflict(w, "OUTSTANDING_BALANCE", err.Error())
		default:
			response.InternalError(w, "Failed to remove member")
		}
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Member removed successfully"})
}

// GetBalances handles GET /groups/{id}/balances
// @Summary      Get group balances
// @Description  Get every member's net position. Positive means the member owes the group, negative means the group owes them.
// @Tags         groups
// @Produce      json
// @Param        id path string true "Group ID"
// @Success      200 {object} response.APIResponse{data=[]BalanceResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /groups/{id}/balances [get]
func (h *Handler) GetBalances(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "id")

	balances, err := h.service.Balances(r.Context(), groupID)
	if err != nil {
		if errors.Is(err, ErrGroupNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to get balances")
		return
	}

	response.JSON(w, http.StatusOK, toBalanceResponses(balances))
}

// GetSummary handles GET /groups/{id}/summary
// @Summary      Get group summary
// @Description  Get the group record, all balances, the settle plan and expense totals in one view
// @Tags         groups
// @Produce      json
// @Param        id path string true "Group ID"
// @Success      200 {object} response.APIResponse{data=GroupSummaryResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /groups/{id}/summary [get]
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "id")

	summary, err := h.service.Summary(r.Context(), groupID)
	if err != nil {
		if errors.Is(err, ErrGroupNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to get group summary")
		return
	}

	response.JSON(w, http.StatusOK, summary.ToResponse())
}

// GetMemberDebts handles GET /groups/{id}/members/{memberId}/debts
// @Summary      Get member debt summary
// @Description  Get what one member owes and is owed under the current settle plan
// @Tags         groups
// @Produce      json
// @Param        id path string true "Group ID"
// @Param        memberId path string true "Member ID"
// @Success      200 {object} response.APIResponse{data=DebtSummaryResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /groups/{id}/members/{memberId}/debts [get]
func (h *Handler) GetMemberDebts(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "id")
	memberID := chi.URLParam(r, "memberId")

	debts, err := h.service.MemberDebtSummary(r.Context(), groupID, memberID)
	if err != nil {
		switch {
		case errors.Is(err, ErrGroupNotFound), errors.Is(err, ledger.ErrUnknownMember):
			response.NotFound(w, err.Error())
		default:
			response.InternalError(w, "Failed to get debt summary")
		}
		return
	}

	response.JSON(w, http.StatusOK, debts.ToResponse())
}

// SimplifyDebts handles POST /groups/{id}/simplify
// @Summary      Simplify group debts
// @Description  Compute a settlement plan that clears all balances with at most n-1 payments
// @Tags         groups
// @Produce      json
// @Param        id path string true "Group ID"
// @Success      200 {object} response.APIResponse{data=[]TransactionResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /groups/{id}/simplify [post]
func (h *Handler) SimplifyDebts(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "id")

	plan, err := h.service.SimplifyDebts(r.Context(), groupID)
	if err != nil {
		if errors.Is(err, ErrGroupNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to simplify debts")
		return
	}

	response.JSON(w, http.StatusOK, toTransactionResponses(plan))
}
