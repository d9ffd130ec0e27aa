package feeds

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/dairyfeed/internal/domain/models"
	"github.com/mamadbah2/dairyfeed/internal/repository/sheets"
)

// importColumns is the fixed sheet layout: code, name, category, type, then
// the sixteen nutrient fractions in catalog order.
const importColumns = 20

// CustomStore is the slice of the feed repository the importer writes to.
type CustomStore interface {
	UpsertCustomByCode(ctx context.Context, doc models.RawFeedDocument) error
}

// ImportLogStore persists the outcome of an import run.
type ImportLogStore interface {
	SaveImportLog(ctx context.Context, log models.ImportLog) error
}

// Importer bulk-loads custom feed rows from a spreadsheet into the custom
// feed store.
type Importer struct {
	source sheets.Repository
	store  CustomStore
	logs   ImportLogStore
	logger *zap.Logger
}

// NewImporter wires a bulk feed importer.
func NewImporter(source sheets.Repository, store CustomStore, logs ImportLogStore, logger *zap.Logger) *Importer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Importer{source: source, store: store, logs: logs, logger: logger}
}

// Run reads the configured range, upserts every well-formed row as a custom
// feed for the organization and records an import log. Invalid rows are
// skipped and counted, never fatal.
func (i *Importer) Run(ctx context.Context, orgID, sheetRange string) (*models.ImportLog, error) {
	started := time.Now()

	rows, err := i.source.ReadRange(ctx, sheetRange)
	if err != nil {
		return nil, fmt.Errorf("load import range: %w", err)
	}

	log := models.ImportLog{
		RunID:      uuid.NewString(),
		OrgID:      orgID,
		SheetRange: sheetRange,
		StartedAt:  started,
	}

	for idx, row := range rows {
		doc, ok := parseFeedRow(orgID, row)
		if !ok {
			i.logger.Debug("skip malformed import row", zap.Int("row", idx))
			log.Skipped++
			continue
		}

		if err := i.store.UpsertCustomByCode(ctx, doc); err != nil {
			return nil, fmt.Errorf("import row %d (code %s): %w", idx, doc.Code, err)
		}
		log.Imported++
	}

	log.Duration = time.Since(started)

	if err := i.logs.SaveImportLog(ctx, log); err != nil {
		return nil, fmt.Errorf("record import log: %w", err)
	}

	i.logger.Info("feed import completed",
		zap.String("run_id", log.RunID),
		zap.String("org_id", orgID),
		zap.Int("imported", log.Imported),
		zap.Int("skipped", log.Skipped))

	return &log, nil
}

// parseFeedRow maps one sheet row onto a raw feed document. Rows without a
// code and name are rejected; nutrient cells stay raw strings and get
// normalized at evaluation time like any other custom feed.
func parseFeedRow(orgID string, row []interface{}) (models.RawFeedDocument, bool) {
	cells := make([]string, importColumns)
	for idx := 0; idx < importColumns && idx < len(row); idx++ {
		cells[idx] = strings.TrimSpace(fmt.Sprintf("%v", row[idx]))
	}

	if cells[0] == "" || cells[1] == "" {
		return models.RawFeedDocument{}, false
	}

	return models.RawFeedDocument{
		ID:       uuid.NewString(),
		OrgID:    orgID,
		Code:     cells[0],
		Name:     cells[1],
		Category: strings.ToLower(cells[2]),
		Type:     cells[3],
		Source:   models.FeedSourceCustom,

		DryMatterPct:  cells[4],
		Ash:           cells[5],
		CrudeProtein:  cells[6],
		EtherExtract:  cells[7],
		CrudeFiber:    cells[8],
		NFE:           cells[9],
		Starch:        cells[10],
		NDF:           cells[11],
		Hemicellulose: cells[12],
		ADF:           cells[13],
		Cellulose:     cells[14],
		Lignin:        cells[15],
		NDIN:          cells[16],
		ADIN:          cells[17],
		Calcium:       cells[18],
		Phosphorus:    cells[19],
	}, true
}
