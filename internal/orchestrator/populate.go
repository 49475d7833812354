package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mrlokans/eventsync/internal/entities"
	"github.com/mrlokans/eventsync/internal/importers"
	"github.com/mrlokans/eventsync/internal/logger"
)

// populateMissing walks the stored entries of the run's source and fills
// every empty field from the matching feed record.
func (o *Orchestrator[T]) populateMissing(ctx context.Context, groups *importers.Groups[T], stats *Stats) error {
	stored, err := o.entries.ListWithIdentifier(ctx, o.transformer.Source())
	if err != nil {
		return fmt.Errorf("list stored entries: %w", err)
	}

	for i := range stored {
		entry := &stored[i]
		stats.Total++
		identifier := entry.IdentifierValue()
		itemCtx := logger.Ctx(ctx, slog.String("identifier", identifier))

		result, err := o.safely(identifier, func() (outcome, error) {
			return o.populateEntry(itemCtx, entry, groups, stats)
		})
		o.fold(itemCtx, stats, result, err)
	}
	return nil
}

func (o *Orchestrator[T]) populateEntry(ctx context.Context, entry *entities.Entry, groups *importers.Groups[T], stats *Stats) (outcome, error) {
	identifier := entry.IdentifierValue()
	g, ok := groups.Get(o.transformer.BareID(identifier))
	if !ok {
		return outcomeNotFound, nil
	}

	fields, err := o.transformer.Transform(ctx, g)
	if err != nil {
		return 0, newItemError(identifier, "transform", err)
	}

	updates := make(map[string]any)
	counters := make(map[string]int)
	fill := func(column, counter, stored, candidate string) {
		if strings.TrimSpace(stored) == "" && strings.TrimSpace(candidate) != "" {
			updates[column] = candidate
			counters[counter]++
		}
	}

	fill(importers.ColDescription, CounterDescriptions, entry.Description, fields.Description)
	fill(importers.ColPlace, CounterPlaces, entry.Place, fields.Place)
	fill(importers.ColURL, CounterURLs, entry.URL, fields.URL)
	if entry.CountryID == nil && fields.CountryID != nil {
		updates[importers.ColCountryID] = fields.CountryID
		counters[CounterCountries]++
	}
	fill(importers.ColTheme, CounterThemes, entry.Theme, fields.Theme)
	fill(importers.ColTarget, CounterTargets, entry.Target, fields.Target)
	fill(importers.ColContact, CounterContacts, entry.Contact, fields.Contact)
	fill(importers.ColEmail, CounterEmails, entry.Email, fields.Email)
	fill(importers.ColInstitution, CounterInstitutions, entry.Institution, fields.Institution)
	fill(importers.ColFormat, CounterFormats, entry.Format, fields.Format)

	sideEffects := false
	if added, err := o.ensureImage(ctx, entry.ID, fields); err != nil {
		o.sideEffectFailed(ctx, stats, err)
	} else if added {
		counters[CounterImages]++
		sideEffects = true
	}
	if attached, err := o.attachDefaultCategory(ctx, entry.ID); err != nil {
		o.sideEffectFailed(ctx, stats, err)
	} else if attached {
		counters[CounterCategories]++
		sideEffects = true
	}

	if len(updates) == 0 && !sideEffects {
		return outcomeSkipped, nil
	}

	if len(updates) > 0 {
		updates["updated_at"] = o.now()
		if err := o.entries.Update(ctx, entry.ID, updates); err != nil {
			return 0, newItemError(identifier, "update", err)
		}
	}

	for k, v := range counters {
		stats.Fields[k] += v
	}
	slog.DebugContext(ctx, "populated missing fields", "fields", len(updates))
	return outcomeUpdated, nil
}
