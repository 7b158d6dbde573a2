package core

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localeforge/localeforge/internal/domain"
)

func TestValidateMembership(t *testing.T) {
	f := newFakeStore()
	svc := newTestService(f)

	owner := uuid.New()
	member := uuid.New()
	outsider := uuid.New()
	ws := f.addWorkspace(owner)
	f.addMember(ws, member, domain.RoleMember)

	ctx := context.Background()

	assert.NoError(t, svc.ValidateMembership(ctx, ws, owner))
	assert.NoError(t, svc.ValidateMembership(ctx, ws, member))
	assert.ErrorIs(t, svc.ValidateMembership(ctx, ws, outsider), ErrNotMember)
	assert.ErrorIs(t, svc.ValidateMembership(ctx, uuid.Nil, owner), ErrNoWorkspace)
	assert.ErrorIs(t, svc.ValidateMembership(ctx, uuid.New(), owner), ErrNotMember)
}

func TestIsOwnerOrAdmin(t *testing.T) {
	f := newFakeStore()
	svc := newTestService(f)

	owner := uuid.New()
	admin := uuid.New()
	member := uuid.New()
	ws := f.addWorkspace(owner)
	f.addMember(ws, admin, domain.RoleAdmin)
	f.addMember(ws, member, domain.RoleMember)

	ctx := context.Background()

	for _, tt := range []struct {
		name string
		user uuid.UUID
		want bool
	}{
		{"owner", owner, true},
		{"admin member", admin, true},
		{"plain member", member, false},
		{"outsider", uuid.New(), false},
	} {
		got, err := svc.IsOwnerOrAdmin(ctx, ws, tt.user)
		require.NoError(t, err, tt.name)
		assert.Equal(t, tt.want, got, tt.name)
	}

	got, err := svc.IsOwnerOrAdmin(ctx, uuid.Nil, owner)
	require.NoError(t, err)
	assert.False(t, got)
}

func TestMessages(t *testing.T) {
	f := newFakeStore()
	svc := newTestService(f)
	ws := f.addWorkspace(uuid.New())
	en := f.addLanguage(ws, "en")

	title := f.addKey(ws, "home.title", "common", "text")
	blank := f.addKey(ws, "home.blank", "common", "text")
	f.addTranslation(ws, title.ID, en.ID, "Hello")
	f.addTranslation(ws, blank.ID, en.ID, "   ")

	ctx := context.Background()

	messages, err := svc.Messages(ctx, ws, "en")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"home.title": "Hello"}, messages, "blank values are dropped")

	messages, err = svc.Messages(ctx, ws, "de")
	require.NoError(t, err)
	assert.Empty(t, messages, "unknown locale yields an empty map, not an error")
}

func TestValidateLocale(t *testing.T) {
	f := newFakeStore()
	svc := newTestService(f)
	ws := f.addWorkspace(uuid.New())
	f.addLanguage(ws, "en")

	ctx := context.Background()

	assert.NoError(t, svc.ValidateLocale(ctx, ws, "en"))
	assert.ErrorIs(t, svc.ValidateLocale(ctx, ws, "de"), domain.ErrNotFound)
}
