/*
auth.go - Caller identity and authorization helpers

PURPOSE:
  Resolves the caller from the X-User-Id header and implements the two
  authorization checks the endpoints need: admin, and self-or-admin.

FIRST-USER RULE:
  Until a second user exists, the sole user is treated as an admin
  regardless of role. This is a pure function of the current user count at
  call time, so bootstrap works without seeding an admin by hand.
*/
package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/zhuk18/OfficeCal/calendar"
	"github.com/zhuk18/OfficeCal/store/sqlite"
)

// UserIDHeader carries the caller's numeric user id.
const UserIDHeader = "X-User-Id"

var (
	errMissingIdentity = errors.New("missing " + UserIDHeader + " header")
	errUnknownUser     = errors.New("unknown user")
)

// currentUser resolves the caller from the request header.
func (h *Handler) currentUser(r *http.Request) (*sqlite.User, error) {
	raw := r.Header.Get(UserIDHeader)
	if raw == "" {
		return nil, errMissingIdentity
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, errUnknownUser
	}

	user, err := h.Store.GetUser(r.Context(), id)
	if err != nil {
		if errors.Is(err, sqlite.ErrNotFound) {
			return nil, errUnknownUser
		}
		return nil, err
	}
	return user, nil
}

// isAdmin reports whether the user may perform admin actions.
func (h *Handler) isAdmin(r *http.Request, user *sqlite.User) bool {
	if user.Role == calendar.RoleAdmin {
		return true
	}

	// Bootstrap: the first and only user acts as admin.
	count, err := h.Store.CountUsers(r.Context())
	if err != nil {
		return false
	}
	return count <= 1
}

// requireUser writes a 401 and returns nil when the caller cannot be resolved.
func (h *Handler) requireUser(w http.ResponseWriter, r *http.Request) *sqlite.User {
	user, err := h.currentUser(r)
	if err != nil {
		if errors.Is(err, errMissingIdentity) || errors.Is(err, errUnknownUser) {
			writeError(w, http.StatusUnauthorized, err.Error(), nil)
		} else {
			writeError(w, http.StatusInternalServerError, "Failed to resolve user", err)
		}
		return nil
	}
	return user
}

// requireAdmin writes a 401/403 and returns nil unless the caller is an admin.
func (h *Handler) requireAdmin(w http.ResponseWriter, r *http.Request) *sqlite.User {
	user := h.requireUser(w, r)
	if user == nil {
		return nil
	}
	if !h.isAdmin(r, user) {
		writeError(w, http.StatusForbidden, "Admin only", nil)
		return nil
	}
	return user
}

// requireSelfOrAdmin authorizes access to the target user's resources.
func (h *Handler) requireSelfOrAdmin(w http.ResponseWriter, r *http.Request, targetID int64) *sqlite.User {
	user := h.requireUser(w, r)
	if user == nil {
		return nil
	}
	if user.ID != targetID && !h.isAdmin(r, user) {
		writeError(w, http.StatusForbidden, "Access denied", nil)
		return nil
	}
	return user
}
