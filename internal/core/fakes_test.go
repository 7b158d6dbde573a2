package core

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/localeforge/localeforge/internal/domain"
)

// fakeStore holds in-memory state shared by the per-interface wrappers
// below. The wrappers mirror the ordering contracts of the Postgres stores:
// languages by code, keys by module then key.
type fakeStore struct {
	workspaces map[uuid.UUID]domain.Workspace
	members    map[uuid.UUID]map[uuid.UUID]domain.Member

	languages    []domain.Language
	keys         []domain.Key
	translations []domain.Translation

	createdLanguages   []domain.Language
	bulkInserts        [][]domain.Key
	keyUpdates         []domain.Key
	keyUpserts         [][]domain.Key
	translationUpserts []domain.Translation
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		workspaces: make(map[uuid.UUID]domain.Workspace),
		members:    make(map[uuid.UUID]map[uuid.UUID]domain.Member),
	}
}

func (f *fakeStore) addWorkspace(ownerID uuid.UUID) uuid.UUID {
	id := uuid.New()
	f.workspaces[id] = domain.Workspace{ID: id, Name: "test", OwnerID: ownerID}
	return id
}

func (f *fakeStore) addMember(workspaceID, userID uuid.UUID, role string) {
	if f.members[workspaceID] == nil {
		f.members[workspaceID] = make(map[uuid.UUID]domain.Member)
	}
	f.members[workspaceID][userID] = domain.Member{WorkspaceID: workspaceID, UserID: userID, Role: role}
}

func (f *fakeStore) addLanguage(workspaceID uuid.UUID, code string) domain.Language {
	lang := domain.NewLanguage(workspaceID, code)
	f.languages = append(f.languages, lang)
	return lang
}

func (f *fakeStore) addKey(workspaceID uuid.UUID, name, module, typ string) domain.Key {
	k := domain.Key{ID: uuid.New(), WorkspaceID: workspaceID, Key: name, Module: module, Type: typ}
	f.keys = append(f.keys, k)
	return k
}

func (f *fakeStore) addTranslation(workspaceID, keyID, languageID uuid.UUID, value string) {
	f.translations = append(f.translations, domain.Translation{
		ID:          uuid.New(),
		WorkspaceID: workspaceID,
		KeyID:       keyID,
		LanguageID:  languageID,
		Value:       value,
		Status:      domain.StatusDraft,
	})
}

// value reads the stored translation for (key, language), or "".
func (f *fakeStore) value(keyID, languageID uuid.UUID) string {
	for _, tr := range f.translations {
		if tr.KeyID == keyID && tr.LanguageID == languageID {
			return tr.Value
		}
	}
	return ""
}

func (f *fakeStore) keyByName(name string) (domain.Key, bool) {
	for _, k := range f.keys {
		if k.Key == name {
			return k, true
		}
	}
	return domain.Key{}, false
}

// --- WorkspaceStore ---

type fakeWorkspaces struct{ *fakeStore }

func (f fakeWorkspaces) Get(_ context.Context, id uuid.UUID) (*domain.Workspace, error) {
	ws, ok := f.workspaces[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &ws, nil
}

func (f fakeWorkspaces) GetMember(_ context.Context, workspaceID, userID uuid.UUID) (*domain.Member, error) {
	m, ok := f.members[workspaceID][userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &m, nil
}

// --- LanguageStore ---

type fakeLanguages struct{ *fakeStore }

func (f fakeLanguages) ListByWorkspace(_ context.Context, workspaceID uuid.UUID) ([]domain.Language, error) {
	var out []domain.Language
	for _, lang := range f.languages {
		if lang.WorkspaceID == workspaceID {
			out = append(out, lang)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (f fakeLanguages) GetByCode(_ context.Context, workspaceID uuid.UUID, code string) (*domain.Language, error) {
	for _, lang := range f.languages {
		if lang.WorkspaceID == workspaceID && lang.Code == code {
			found := lang
			return &found, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f fakeLanguages) Create(_ context.Context, lang domain.Language) error {
	f.fakeStore.languages = append(f.fakeStore.languages, lang)
	f.fakeStore.createdLanguages = append(f.fakeStore.createdLanguages, lang)
	return nil
}

// --- KeyStore ---

type fakeKeys struct{ *fakeStore }

func (f fakeKeys) ListByWorkspace(_ context.Context, workspaceID uuid.UUID) ([]domain.Key, error) {
	var out []domain.Key
	for _, k := range f.keys {
		if k.WorkspaceID == workspaceID {
			out = append(out, k)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Module != out[j].Module {
			return out[i].Module < out[j].Module
		}
		return out[i].Key < out[j].Key
	})
	return out, nil
}

func (f fakeKeys) ListByNames(_ context.Context, workspaceID uuid.UUID, names []string) ([]domain.Key, error) {
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}
	var out []domain.Key
	for _, k := range f.keys {
		if k.WorkspaceID == workspaceID && wanted[k.Key] {
			out = append(out, k)
		}
	}
	return out, nil
}

func (f fakeKeys) BulkInsert(_ context.Context, keys []domain.Key) error {
	f.fakeStore.bulkInserts = append(f.fakeStore.bulkInserts, keys)
	f.fakeStore.keys = append(f.fakeStore.keys, keys...)
	return nil
}

func (f fakeKeys) Update(_ context.Context, key domain.Key) error {
	f.fakeStore.keyUpdates = append(f.fakeStore.keyUpdates, key)
	for i, k := range f.fakeStore.keys {
		if k.ID == key.ID {
			f.fakeStore.keys[i] = key
			return nil
		}
	}
	return domain.ErrNotFound
}

func (f fakeKeys) UpsertBatch(_ context.Context, keys []domain.Key) error {
	f.fakeStore.keyUpserts = append(f.fakeStore.keyUpserts, keys)
	for _, key := range keys {
		replaced := false
		for i, k := range f.fakeStore.keys {
			if k.WorkspaceID == key.WorkspaceID && k.Key == key.Key {
				// Conflicting rows keep their original id, like the
				// ON CONFLICT DO UPDATE the real store runs.
				key.ID = k.ID
				f.fakeStore.keys[i] = key
				replaced = true
				break
			}
		}
		if !replaced {
			f.fakeStore.keys = append(f.fakeStore.keys, key)
		}
	}
	return nil
}

// --- TranslationStore ---

type fakeTranslations struct{ *fakeStore }

func (f fakeTranslations) ListByKeyIDs(_ context.Context, workspaceID uuid.UUID, keyIDs []uuid.UUID) ([]domain.Translation, error) {
	wanted := make(map[uuid.UUID]bool, len(keyIDs))
	for _, id := range keyIDs {
		wanted[id] = true
	}
	var out []domain.Translation
	for _, tr := range f.translations {
		if tr.WorkspaceID == workspaceID && wanted[tr.KeyID] {
			out = append(out, tr)
		}
	}
	return out, nil
}

func (f fakeTranslations) ListByLanguage(_ context.Context, workspaceID, languageID uuid.UUID) ([]domain.Translation, error) {
	var out []domain.Translation
	for _, tr := range f.translations {
		if tr.WorkspaceID == workspaceID && tr.LanguageID == languageID {
			out = append(out, tr)
		}
	}
	return out, nil
}

func (f fakeTranslations) Upsert(_ context.Context, tr domain.Translation) error {
	f.fakeStore.translationUpserts = append(f.fakeStore.translationUpserts, tr)
	for i, existing := range f.fakeStore.translations {
		if existing.KeyID == tr.KeyID && existing.LanguageID == tr.LanguageID {
			tr.ID = existing.ID
			f.fakeStore.translations[i] = tr
			return nil
		}
	}
	f.fakeStore.translations = append(f.fakeStore.translations, tr)
	return nil
}

func newTestService(f *fakeStore) *Service {
	return NewService(fakeWorkspaces{f}, fakeLanguages{f}, fakeKeys{f}, fakeTranslations{f})
}

// csvLines joins rows with \n, keeping test fixtures readable.
func csvLines(lines ...string) string {
	return strings.Join(lines, "\n")
}
