package api

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strconv"

	repository "github.com/okian/roster/internal/adapters/repository"
	service "github.com/okian/roster/internal/app"
	"github.com/okian/roster/internal/domain/validation"
	"github.com/okian/roster/pkg/logger"
)

const (
	msgMemberNotFound = "Member not found."
	msgIDMin          = "Must be greater than or equal to 1."
	msgUnavailable    = "Roster is not ready."
)

// MembersHandler serves the /members routes.
type MembersHandler struct {
	deps         Dependencies
	maxBodyBytes int64
}

// NewMembersHandler creates a new members handler.
func NewMembersHandler(deps Dependencies) *MembersHandler {
	return &MembersHandler{deps: deps, maxBodyBytes: defaultMaxBodyBytes}
}

// HandleList handles GET /members.
func (h *MembersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_members"
	members, err := h.deps.List(r.Context())
	if err != nil {
		h.fail(w, r, classify(op, err))
		return
	}
	writeJSON(w, http.StatusOK, members)
}

// HandleGet handles GET /members/{id}.
func (h *MembersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_member"
	id, ok := pathID(r)
	if !ok {
		h.fail(w, r, NewKind(op, ErrNotFound))
		return
	}
	m, err := h.deps.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, classify(op, err))
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// HandleCreate handles POST /members.
func (h *MembersHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_member"
	p, verrs, ok := h.decode(w, r)
	if !ok {
		return
	}
	if verrs != nil {
		writeJSON(w, http.StatusBadRequest, verrs)
		return
	}
	m, err := h.deps.Create(r.Context(), p)
	if err != nil {
		h.fail(w, r, classify(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

// HandleReplace handles PUT /members/{id}. It answers 201 when the id was
// new and 200 when an existing member was overwritten.
func (h *MembersHandler) HandleReplace(w http.ResponseWriter, r *http.Request) {
	const op = "api.replace_member"
	id, ok := pathID(r)
	if !ok {
		h.fail(w, r, NewKind(op, ErrNotFound))
		return
	}
	p, verrs, ok := h.decode(w, r)
	if !ok {
		return
	}
	if verrs != nil {
		writeJSON(w, http.StatusBadRequest, verrs)
		return
	}
	m, created, err := h.deps.Replace(r.Context(), id, p)
	if err != nil {
		h.fail(w, r, classify(op, err))
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, m)
}

// HandlePatch handles PATCH /members/{id}.
func (h *MembersHandler) HandlePatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.patch_member"
	id, ok := pathID(r)
	if !ok {
		h.fail(w, r, NewKind(op, ErrNotFound))
		return
	}
	p, verrs, ok := h.decode(w, r)
	if !ok {
		return
	}
	if verrs != nil {
		// An unknown id still answers 404, matching the lookup-first order.
		if _, err := h.deps.Get(r.Context(), id); err != nil {
			h.fail(w, r, classify(op, err))
			return
		}
		writeJSON(w, http.StatusBadRequest, verrs)
		return
	}
	m, err := h.deps.Patch(r.Context(), id, p)
	if err != nil {
		h.fail(w, r, classify(op, err))
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// HandleDelete handles DELETE /members/{id}. The answer is 204 whether or
// not the member existed.
func (h *MembersHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	const op = "api.delete_member"
	id, ok := pathID(r)
	if !ok {
		h.fail(w, r, NewKind(op, ErrNotFound))
		return
	}
	if err := h.deps.Delete(r.Context(), id); err != nil {
		h.fail(w, r, classify(op, err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// decode reads the capped body and parses it. ok is false once a response
// has been written.
func (h *MembersHandler) decode(w http.ResponseWriter, r *http.Request) (validation.Payload, validation.Errors, bool) {
	// The server only closes the connection after an oversized body when the
	// reader is handed its own writer.
	data, err := io.ReadAll(http.MaxBytesReader(baseWriter(w), r.Body, h.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			w.Header().Set("Connection", "close")
			writeError(w, http.StatusRequestEntityTooLarge, "payload_too_large", "")
			return nil, nil, false
		}
		return nil, validation.Errors{validation.SchemaKey: {validation.MsgInvalidInput}}, true
	}
	p, verrs := validation.Decode(bytes.NewReader(data))
	return p, verrs, true
}

// classify tags err with the API kind that decides its status. Errors
// already carrying a kind keep it.
func classify(op string, err error) error {
	var (
		verrs validation.Errors
		kerr  *KindError
	)
	switch {
	case err == nil:
		return nil
	case errors.As(err, &kerr):
		return err
	case errors.As(err, &verrs), errors.Is(err, repository.ErrInvalidID):
		return WrapKind(op, ErrBadRequest, err)
	case errors.Is(err, repository.ErrNotFound):
		return WrapKind(op, ErrNotFound, err)
	case errors.Is(err, service.ErrNotStarted):
		return WrapKind(op, ErrUnavailable, err)
	}
	return WrapKind(op, ErrInternal, err)
}

// fail renders err by its kind. Unclassified errors are treated as internal.
func (h *MembersHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrBadRequest):
		var verrs validation.Errors
		if !errors.As(err, &verrs) {
			verrs = validation.Errors{"id": {msgIDMin}}
		}
		writeJSON(w, http.StatusBadRequest, verrs)
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", msgMemberNotFound)
	case errors.Is(err, ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, "unavailable", msgUnavailable)
	default:
		logger.Get().Error(r.Context(), "request failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", "")
	}
}

// pathID parses {id} as a non-negative decimal integer. Signs, spaces and
// anything non-numeric do not name a member.
func pathID(r *http.Request) (int, bool) {
	raw := r.PathValue("id")
	if raw == "" {
		return 0, false
	}
	for i := 0; i < len(raw); i++ {
		if raw[i] < '0' || raw[i] > '9' {
			return 0, false
		}
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return id, true
}
