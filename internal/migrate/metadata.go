package migrate

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/cdzombak/plex-meta-migrator/internal/logging"
	"github.com/cdzombak/plex-meta-migrator/internal/match"
	"github.com/cdzombak/plex-meta-migrator/internal/services/plex"
)

// Migrator copies locked metadata from matched source items to their
// destination counterparts.
type Migrator struct {
	source         *plex.ServerClient
	dest           *plex.ServerClient
	destSectionKey string
	logger         *slog.Logger
}

// NewMigrator wires a migrator between two servers. destSectionKey identifies
// the destination library section the edits run against.
func NewMigrator(source, dest *plex.ServerClient, destSectionKey string, logger *slog.Logger) *Migrator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Migrator{
		source:         source,
		dest:           dest,
		destSectionKey: destSectionKey,
		logger:         logging.WithComponent(logger, "migrate"),
	}
}

// ItemPlan is everything needed to copy one matched item's locked fields.
type ItemPlan struct {
	Pair   match.Pair
	Fields []FieldValue
}

// BuildPlans fetches full details for every matched source item and keeps the
// pairs that have locked fields to copy.
func (m *Migrator) BuildPlans(ctx context.Context, pairs []match.Pair) ([]ItemPlan, error) {
	plans := make([]ItemPlan, 0, len(pairs))
	for _, pair := range pairs {
		details, err := m.source.ItemDetails(ctx, pair.Source.RatingKey)
		if err != nil {
			return nil, fmt.Errorf("source item %s: %w", pair.Source.DisplayName(), err)
		}
		fields := LockedFields(*details)
		if len(fields) == 0 {
			continue
		}
		plans = append(plans, ItemPlan{Pair: pair, Fields: fields})
	}
	return plans, nil
}

// Preview summarizes what a dry run would copy.
type Preview struct {
	MatchedItems         int
	ItemsWithLockedField int
	FieldsToCopy         int
}

// Summarize computes preview totals over the plans.
func Summarize(matched int, plans []ItemPlan) Preview {
	preview := Preview{MatchedItems: matched, ItemsWithLockedField: len(plans)}
	for _, plan := range plans {
		preview.FieldsToCopy += len(plan.Fields)
	}
	return preview
}

// FieldError records a field copy failure within an item.
type FieldError struct {
	Field string
	Err   error
}

// ItemOutcome reports one item's apply result.
type ItemOutcome struct {
	FieldsCopied int
	Errors       []FieldError
}

// ApplyItem copies every planned field to the destination item. Failures are
// collected per field; remaining fields still run.
func (m *Migrator) ApplyItem(ctx context.Context, plan ItemPlan) ItemOutcome {
	var outcome ItemOutcome
	destKey := plan.Pair.Destination.RatingKey
	typeID := plan.Pair.Destination.TypeID()

	for _, field := range plan.Fields {
		if err := m.copyField(ctx, destKey, typeID, field); err != nil {
			m.logger.Warn("field copy failed",
				slog.String("item", plan.Pair.Source.DisplayName()),
				slog.String("field", field.Name),
				slog.String("error", err.Error()))
			outcome.Errors = append(outcome.Errors, FieldError{Field: field.Name, Err: err})
			continue
		}
		m.logger.Debug("field copied",
			slog.String("item", plan.Pair.Source.DisplayName()),
			slog.String("field", field.Name))
		outcome.FieldsCopied++
	}
	return outcome
}

func (m *Migrator) copyField(ctx context.Context, destKey string, typeID int, field FieldValue) error {
	switch field.Kind {
	case KindImage:
		return m.copyImage(ctx, destKey, typeID, field)
	case KindTags:
		return m.copyTags(ctx, destKey, typeID, field)
	default:
		params := url.Values{}
		params.Set(field.Name+".value", field.Scalar)
		params.Set(field.Name+".locked", "1")
		return m.dest.EditItemFields(ctx, m.destSectionKey, typeID, destKey, params)
	}
}

func (m *Migrator) copyImage(ctx context.Context, destKey string, typeID int, field FieldValue) error {
	if field.ImagePath == "" {
		return fmt.Errorf("no %s image on source item", field.Name)
	}
	sourceURL := m.source.ImageURL(field.ImagePath)

	var err error
	if field.Name == "art" {
		err = m.dest.UploadArt(ctx, destKey, sourceURL)
	} else {
		err = m.dest.UploadPoster(ctx, destKey, sourceURL)
	}
	if err != nil {
		return err
	}

	params := url.Values{}
	params.Set(field.Name+".locked", "1")
	return m.dest.EditItemFields(ctx, m.destSectionKey, typeID, destKey, params)
}

func (m *Migrator) copyTags(ctx context.Context, destKey string, typeID int, field FieldValue) error {
	if len(field.Tags) == 0 {
		return nil
	}
	params := url.Values{}
	for i, tag := range field.Tags {
		params.Set(fmt.Sprintf("%s[%d].tag.tag", field.Name, i), tag)
	}
	params.Set(field.Name+".locked", "1")
	return m.dest.EditItemFields(ctx, m.destSectionKey, typeID, destKey, params)
}

// Summary aggregates an apply run.
type Summary struct {
	ItemsMigrated int
	FieldsCopied  int
	Errors        int
}

// Accumulate folds one item outcome into the summary. An item with any field
// error does not count as migrated.
func (s *Summary) Accumulate(outcome ItemOutcome) {
	s.FieldsCopied += outcome.FieldsCopied
	s.Errors += len(outcome.Errors)
	if len(outcome.Errors) == 0 {
		s.ItemsMigrated++
	}
}
