package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/localeforge/localeforge/internal/core"
	"github.com/localeforge/localeforge/internal/domain"
	"github.com/localeforge/localeforge/internal/logging"
)

// handleImport ingests a CSV file upload. Multipart fields:
//
//	file          the CSV content (required)
//	policy        "overwrite" or "fill-missing" (default fill-missing)
//	preview       "true" to plan without writing
//	columnMapping JSON column mapping; omitted means the legacy fixed format
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)
	if err := r.ParseMultipartForm(s.maxBody); err != nil {
		writeText(w, http.StatusBadRequest, "File too large or malformed form")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		writeText(w, http.StatusBadRequest, "CSV file is required")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		writeText(w, http.StatusBadRequest, "Failed to read uploaded file")
		return
	}

	policy, err := core.ParsePolicy(r.FormValue("policy"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	var mapping *core.ColumnMapping
	if raw := r.FormValue("columnMapping"); raw != "" {
		mapping, err = core.ParseColumnMapping([]byte(raw))
		if err != nil {
			respondServiceError(w, r, err)
			return
		}
	}

	opts := core.ImportOptions{
		Policy:  policy,
		Preview: r.FormValue("preview") == "true",
		Mapping: mapping,
	}

	workspaceID := workspaceIDFromContext(r.Context())
	result, err := s.service.Import(r.Context(), workspaceID, string(content), opts)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("import completed",
		"workspace_id", workspaceID,
		"preview", opts.Preview,
		"keys_to_create", result.KeysToCreate,
		"keys_to_update", result.KeysToUpdate,
		"translations_to_upsert", result.TranslationsToUpsert,
		"rows_skipped", result.RowsSkipped)

	writeJSON(w, http.StatusOK, result)
}

// handleExport streams the workspace's translation matrix as a CSV download.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	workspaceID := workspaceIDFromContext(r.Context())

	content, filename, err := s.service.Export(r.Context(), workspaceID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(content))
}

type syncKeysRequest struct {
	Keys        []core.SyncKeyInput `json:"keys"`
	OverwriteEn bool                `json:"overwrite_en"`
}

// handleSyncKeys upserts keys pushed by code scanners or CI.
func (s *Server) handleSyncKeys(w http.ResponseWriter, r *http.Request) {
	var req syncKeysRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBody)).Decode(&req); err != nil {
		writeText(w, http.StatusBadRequest, "Malformed JSON body")
		return
	}

	workspaceID := workspaceIDFromContext(r.Context())
	result, err := s.service.SyncKeys(r.Context(), workspaceID, req.Keys, req.OverwriteEn)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleMessages serves the key -> value map for one locale. The locale
// comes from the query string, falling back to the locale cookie, then "en".
// Errors are JSON here: the consumer is a client-side i18n runtime, not a
// person with curl.
func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	locale := r.URL.Query().Get("locale")
	if locale == "" {
		if c, err := r.Cookie(localeCookie); err == nil {
			locale = c.Value
		}
	}
	if locale == "" {
		locale = "en"
	}

	workspaceID := workspaceIDFromContext(r.Context())
	messages, err := s.service.Messages(r.Context(), workspaceID, locale)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrUnavailable) {
			status = http.StatusServiceUnavailable
		}
		logging.FromContext(r.Context()).Error("messages lookup failed", "locale", locale, "error", err)
		writeJSON(w, status, map[string]string{"error": "Failed to load messages"})
		return
	}

	// Messages change with every import; never let intermediaries cache them.
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, messagesResponse{Messages: messages, Locale: locale})
}

type messagesResponse struct {
	Messages map[string]string `json:"messages"`
	Locale   string            `json:"locale"`
}

type localeRequest struct {
	Locale string `json:"locale"`
}

// handleLocale persists the user's locale choice in a cookie after checking
// it is one of the workspace's languages.
func (s *Server) handleLocale(w http.ResponseWriter, r *http.Request) {
	var req localeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Locale == "" {
		writeText(w, http.StatusBadRequest, "Malformed JSON body")
		return
	}

	workspaceID := workspaceIDFromContext(r.Context())
	if err := s.service.ValidateLocale(r.Context(), workspaceID, req.Locale); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeText(w, http.StatusBadRequest, "Unknown locale")
			return
		}
		respondServiceError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     localeCookie,
		Value:    req.Locale,
		Path:     "/",
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
		HttpOnly: true,
		Secure:   s.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type workspaceSetRequest struct {
	WorkspaceID string `json:"workspace_id"`
}

// handleWorkspaceSet selects the active workspace for subsequent requests.
// Membership is checked before the cookie is issued.
func (s *Server) handleWorkspaceSet(w http.ResponseWriter, r *http.Request) {
	var req workspaceSetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeText(w, http.StatusBadRequest, "Malformed JSON body")
		return
	}

	workspaceID, err := uuid.Parse(req.WorkspaceID)
	if err != nil {
		writeText(w, http.StatusBadRequest, "Invalid workspace id")
		return
	}

	userID := userIDFromContext(r.Context())
	if err := s.service.ValidateMembership(r.Context(), workspaceID, userID); err != nil {
		switch {
		case errors.Is(err, core.ErrNoWorkspace):
			writeText(w, http.StatusBadRequest, "Invalid workspace id")
		case errors.Is(err, core.ErrNotMember):
			writeText(w, http.StatusForbidden, "Forbidden")
		default:
			respondServiceError(w, r, err)
		}
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     workspaceCookie,
		Value:    workspaceID.String(),
		Path:     "/",
		MaxAge:   int((30 * 24 * time.Hour).Seconds()),
		HttpOnly: true,
		Secure:   s.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
