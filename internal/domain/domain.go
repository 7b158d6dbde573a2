// Package domain defines the entities shared across the service and the
// sentinel errors persistence adapters map into.
package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Sentinel errors returned by repositories and services.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrValidation    = errors.New("validation failed")
	ErrUnavailable   = errors.New("store unavailable")
)

// Member roles within a workspace.
const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// Translation statuses. Import and key sync always write StatusDraft;
// review and approval happen elsewhere.
const (
	StatusDraft    = "draft"
	StatusReview   = "review"
	StatusApproved = "approved"
)

// Defaults applied to key classification fields when an import row
// supplies no value. Both columns are NOT NULL in the schema.
const (
	DefaultModule = "common"
	DefaultType   = "text"
)

// Workspace is the tenant boundary. Every other entity belongs to exactly one.
type Workspace struct {
	ID        uuid.UUID
	Name      string
	OwnerID   uuid.UUID
	CreatedAt time.Time
}

// Member links a user to a workspace with a role.
type Member struct {
	WorkspaceID uuid.UUID
	UserID      uuid.UUID
	Role        string
	CreatedAt   time.Time
}

// Language is a workspace-scoped locale. Identity is (workspace_id, code).
type Language struct {
	ID          uuid.UUID
	WorkspaceID uuid.UUID
	Code        string
	Name        string
	IsRTL       bool
	CreatedAt   time.Time
}

// Key is a workspace-unique localization string identifier plus
// classification metadata. Identity is (workspace_id, key).
type Key struct {
	ID            uuid.UUID
	WorkspaceID   uuid.UUID
	Key           string
	Module        string
	Type          string
	Screen        *string
	Context       *string
	ScreenshotRef *string
	MaxChars      *int
	CreatedAt     time.Time
}

// Translation is the value of one Key in one Language.
// Identity is (key_id, language_id), enforced by upsert-on-conflict.
type Translation struct {
	ID          uuid.UUID
	WorkspaceID uuid.UUID
	KeyID       uuid.UUID
	LanguageID  uuid.UUID
	Value       string
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// rtlCodes is the fixed set of language codes written right-to-left.
// Checked once at language creation; never re-derived afterwards.
var rtlCodes = map[string]bool{
	"ar": true,
	"he": true,
	"fa": true,
	"ur": true,
	"yi": true,
	"ji": true,
}

// IsRTLCode reports whether code belongs to the known right-to-left set.
func IsRTLCode(code string) bool {
	return rtlCodes[strings.ToLower(code)]
}

// NewLanguage builds a language for implicit creation during import or sync:
// the display name is the upper-cased code and the RTL flag is derived from
// the fixed code set.
func NewLanguage(workspaceID uuid.UUID, code string) Language {
	return Language{
		ID:          uuid.New(),
		WorkspaceID: workspaceID,
		Code:        code,
		Name:        strings.ToUpper(code),
		IsRTL:       IsRTLCode(code),
	}
}
