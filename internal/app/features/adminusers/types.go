// internal/app/features/adminusers/types.go
package adminusers

import (
	"encoding/json"
	"net/http"

	"github.com/tripdesk/tripdesk/internal/app/policy/userpolicy"
	"github.com/tripdesk/tripdesk/internal/domain/models"
)

// updateRequest is the PATCH body: a subset of the mutable fields.
// Nil means "leave unchanged".
type updateRequest struct {
	Role     *string       `json:"role"`
	Category *string       `json:"category"`
	IsActive *bool         `json:"isActive"`
	Profile  *profileInput `json:"profile"`
}

// profileInput merges field-by-field; omitted fields stay untouched.
type profileInput struct {
	FirstName   *string `json:"firstName"`
	LastName    *string `json:"lastName"`
	Gender      *string `json:"gender"`
	DateOfBirth *string `json:"dateOfBirth"`
	Mobile      *string `json:"mobile"`
	Avatar      *string `json:"avatar"`
}

type usersResponse struct {
	Users []models.User `json:"users"`
}

type okResponse struct {
	Ok bool `json:"ok"`
}

// errorResponse carries the operator-facing message plus a stable
// machine-readable reason for policy denials.
type errorResponse struct {
	Error   string `json:"error"`
	Reason  string `json:"reason,omitempty"`
	Details string `json:"details,omitempty"`
}

// Validation reasons for 400s that are not policy denials.
const (
	reasonInvalidRole     = "InvalidRole"
	reasonInvalidCategory = "InvalidCategory"
	reasonEmptyUpdate     = "EmptyUpdate"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg, reason string) {
	writeJSON(w, status, errorResponse{Error: msg, Reason: reason})
}

// writeDenial maps a policy decision to the wire: Forbidden is a 403,
// every other denial is a 400 carrying the reason.
func writeDenial(w http.ResponseWriter, d userpolicy.Decision) {
	status := http.StatusBadRequest
	if d.Reason == userpolicy.ReasonForbidden {
		status = http.StatusForbidden
	}
	writeJSON(w, status, errorResponse{Error: d.Reason.Message(), Reason: string(d.Reason)})
}

// writeStoreError surfaces an upstream failure once, with diagnostic
// detail only outside production.
func (h *Handler) writeStoreError(w http.ResponseWriter, msg string, err error) {
	resp := errorResponse{Error: msg}
	if h.Dev && err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, http.StatusInternalServerError, resp)
}
