package core

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/localeforge/localeforge/internal/domain"
	"github.com/localeforge/localeforge/internal/logging"
)

// applyPlan performs the queued writes in strict order: pending languages,
// bulk key creation, per-key updates, translation upserts. Language and bulk
// key failures abort the apply; individual update and upsert failures are
// logged and skipped so one bad row cannot invalidate thousands of others.
func (s *Service) applyPlan(ctx context.Context, state *workspaceState, plan *importPlan) error {
	log := logging.FromContext(ctx).With("workspace_id", state.workspaceID)

	for _, lang := range plan.newLanguages {
		if err := s.languages.Create(ctx, lang); err != nil {
			return fmt.Errorf("create language %q: %w", lang.Code, err)
		}
	}

	if len(plan.createKeys) > 0 {
		if err := s.keys.BulkInsert(ctx, plan.createKeys); err != nil {
			return fmt.Errorf("create keys: %w", err)
		}
		// Merge the new ids into the lookup so translation writes against
		// just-created keys resolve below.
		for _, k := range plan.createKeys {
			state.keysByName[k.Key] = k
		}
	}

	for _, k := range plan.updateKeys {
		if err := s.keys.Update(ctx, k); err != nil {
			log.Error("key update failed", "key", k.Key, "error", err)
		}
	}

	for _, w := range plan.writes {
		key, ok := state.keysByName[w.keyName]
		if !ok {
			// Should not happen after the merge above; tolerate it rather
			// than fail the batch.
			log.Warn("translation write dropped, key not found", "key", w.keyName)
			continue
		}

		tr := domain.Translation{
			ID:          uuid.New(),
			WorkspaceID: state.workspaceID,
			KeyID:       key.ID,
			LanguageID:  w.languageID,
			Value:       w.value,
			Status:      domain.StatusDraft,
		}
		if err := s.translations.Upsert(ctx, tr); err != nil {
			log.Error("translation upsert failed", "key", w.keyName, "error", err)
		}
	}

	return nil
}
