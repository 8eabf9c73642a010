package server

import (
	"net/http"
	"strconv"

	"github.com/jonathan/ats-assistant/internal/db"
	"github.com/jonathan/ats-assistant/internal/types"
)

const (
	defaultAuditLimit = 100
	maxAuditLimit     = 1000
)

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.store.ListUsers(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"users": users, "count": len(users)})
}

func (s *Server) handleUpdateRole(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "user")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req types.RoleUpdateRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	ok, err := s.store.UpdateUserRole(r.Context(), id, req.Role)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !ok {
		s.writeError(w, r, &ErrNotFound{Entity: "user", ID: id.String()})
		return
	}
	s.audit(r, db.ActionRoleChanged, "profile", id, map[string]any{"role": req.Role})
	s.jsonResponse(w, http.StatusOK, map[string]any{"id": id, "role": req.Role})
}

func (s *Server) handleAuditLog(w http.ResponseWriter, r *http.Request) {
	limit := defaultAuditLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			s.writeError(w, r, &ErrValidation{Field: "limit", Message: "must be a positive integer"})
			return
		}
		limit = min(n, maxAuditLimit)
	}
	entries, err := s.store.ListAuditLog(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"entries": entries, "count": len(entries)})
}
