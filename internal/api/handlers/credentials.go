package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/voicelab/voiceprobe/internal/credentials"
	"github.com/voicelab/voiceprobe/internal/session"
)

type CredentialsHandler struct {
	resolver *credentials.Resolver
	sessions session.Store
}

func NewCredentialsHandler(resolver *credentials.Resolver, sessions session.Store) *CredentialsHandler {
	return &CredentialsHandler{resolver: resolver, sessions: sessions}
}

type loadFileRequest struct {
	Path string `json:"path"`
}

type credentialResponse struct {
	SessionID   string `json:"session_id"`
	ProjectID   string `json:"project_id"`
	ClientEmail string `json:"client_email"`
	Source      string `json:"source"`
}

// LoadFromFile resolves a credential from the environment or a JSON file
// on disk and binds it to the caller's session.
func (h *CredentialsHandler) LoadFromFile(w http.ResponseWriter, r *http.Request) {
	var req loadFileRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeWarning(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	cred, err := h.resolver.Resolve(req.Path)
	if err != nil {
		if errors.Is(err, credentials.ErrNoCredential) {
			writeWarning(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	h.save(w, r, cred, "file")
}

// SaveManual assembles a credential from manually entered fields and
// binds it to the caller's session. Field contents are not validated
// beyond presence; a malformed private key fails at API-call time.
func (h *CredentialsHandler) SaveManual(w http.ResponseWriter, r *http.Request) {
	var fields credentials.ManualFields
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeWarning(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cred, err := h.resolver.FromManual(fields)
	if err != nil {
		if errors.Is(err, credentials.ErrNoCredential) {
			writeWarning(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	h.save(w, r, cred, "manual")
}

// Status reports the non-secret identity of the session's credential.
func (h *CredentialsHandler) Status(w http.ResponseWriter, r *http.Request) {
	sid := sessionID(r)
	if sid == "" {
		writeWarning(w, http.StatusBadRequest, "missing "+SessionHeader+" header")
		return
	}

	cred, err := h.sessions.Credential(r.Context(), sid)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			writeWarning(w, http.StatusNotFound, "no credentials set up for this session")
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, credentialResponse{
		SessionID:   sid,
		ProjectID:   cred.Account.ProjectID,
		ClientEmail: cred.Account.ClientEmail,
	})
}

// save binds the credential under the caller's session, minting a new
// session ID when none was supplied. Overwrites any previous credential.
func (h *CredentialsHandler) save(w http.ResponseWriter, r *http.Request, cred *credentials.Credential, source string) {
	sid := sessionID(r)
	if sid == "" {
		sid = uuid.NewString()
	}

	if err := h.sessions.SaveCredential(r.Context(), sid, cred); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, credentialResponse{
		SessionID:   sid,
		ProjectID:   cred.Account.ProjectID,
		ClientEmail: cred.Account.ClientEmail,
		Source:      source,
	})
}
