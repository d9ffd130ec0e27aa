package feeds

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mamadbah2/dairyfeed/internal/domain/models"
)

// Store is the slice of the feed repository the loader needs.
type Store interface {
	FindStandardByIDs(ctx context.Context, ids []string) ([]models.RawFeedDocument, error)
	FindCustomByIDs(ctx context.Context, orgID string, ids []string) ([]models.RawFeedDocument, error)
}

// Loader resolves feed identifiers against the standard and custom stores and
// normalizes the results for the calculation pipeline.
type Loader struct {
	store  Store
	logger *zap.Logger
}

// NewLoader wires a feed loader instance.
func NewLoader(store Store, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{store: store, logger: logger}
}

// Load retrieves the nutrient profiles for the requested identifiers. The
// standard catalog is queried first, then the organization's custom feeds;
// matches are concatenated standard-then-custom with no further ordering
// guarantee. An empty combined result is a NotFoundError carrying the
// requested identifiers.
func (l *Loader) Load(ctx context.Context, orgID string, ids []string) ([]models.FeedRecord, error) {
	if len(ids) == 0 {
		return nil, &models.ValidationError{Field: "feed_ids", Reason: "at least one feed must be selected"}
	}

	standard, err := l.store.FindStandardByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("query standard feeds: %w", err)
	}

	custom, err := l.store.FindCustomByIDs(ctx, orgID, ids)
	if err != nil {
		return nil, fmt.Errorf("query custom feeds: %w", err)
	}

	if len(standard)+len(custom) == 0 {
		return nil, &models.NotFoundError{Resource: "feeds", IDs: ids}
	}

	records := make([]models.FeedRecord, 0, len(standard)+len(custom))
	for _, doc := range standard {
		records = append(records, doc.Normalize())
	}
	for _, doc := range custom {
		records = append(records, doc.Normalize())
	}

	l.logger.Debug("feeds loaded",
		zap.Int("requested", len(ids)),
		zap.Int("standard", len(standard)),
		zap.Int("custom", len(custom)))

	return records, nil
}

// LoadByOrder resolves identifiers and returns records aligned with the
// request order, so per-feed amounts keep their pairing. Identifiers that
// resolved nothing are reported together in one NotFoundError.
func (l *Loader) LoadByOrder(ctx context.Context, orgID string, ids []string) ([]models.FeedRecord, error) {
	records, err := l.Load(ctx, orgID, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]models.FeedRecord, len(records))
	for _, rec := range records {
		byID[rec.ID] = rec
	}

	ordered := make([]models.FeedRecord, 0, len(ids))
	var missing []string
	for _, id := range ids {
		rec, ok := byID[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		ordered = append(ordered, rec)
	}

	if len(missing) > 0 {
		return nil, &models.NotFoundError{Resource: "feeds", IDs: missing}
	}

	return ordered, nil
}
