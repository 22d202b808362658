package usecase

import (
	"context"
	"fmt"

	slogctx "github.com/veqryn/slog-context"
	"refdocs/internal/domain"
	"refdocs/internal/port"
)

const exportBatchSize = 256

// ExportUseCase writes resolved records and diagnostics to a record store.
type ExportUseCase struct {
	catalog *Catalog
	store   port.RecordStore
}

// NewExportUseCase creates a new export use case.
func NewExportUseCase(catalog *Catalog, store port.RecordStore) *ExportUseCase {
	return &ExportUseCase{
		catalog: catalog,
		store:   store,
	}
}

// ExportResult contains the results of an export.
type ExportResult struct {
	Records  int
	Empty    int
	Warnings int
	Errors   int
}

// Export resolves every cataloged identifier and stores the records in
// identifier order. progress, if non-nil, is called after each record.
func (u *ExportUseCase) Export(ctx context.Context, progress func(done, total int, id string)) (*ExportResult, error) {
	records, err := u.catalog.ResolveAll(ctx)
	if err != nil {
		return nil, err
	}

	result := &ExportResult{}
	ids := u.catalog.IDs()
	batch := make([]port.StoredRecord, 0, exportBatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := u.store.PutRecords(batch); err != nil {
			return fmt.Errorf("failed to store records: %w", err)
		}
		batch = batch[:0]
		return nil
	}

	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec := records[id]
		if rec.IsEmpty() {
			result.Empty++
		}
		batch = append(batch, port.StoredRecord{ID: id, Record: rec})
		result.Records++
		if len(batch) == exportBatchSize {
			if err := flush(); err != nil {
				return nil, err
			}
		}
		if progress != nil {
			progress(i+1, len(ids), id)
		}
	}
	if err := flush(); err != nil {
		return nil, err
	}

	reports, err := u.catalog.Diagnostics(ctx)
	if err != nil {
		return nil, err
	}
	for _, r := range reports {
		if err := u.store.PutDiagnostics(r.ID, r.Diagnostics); err != nil {
			return nil, fmt.Errorf("failed to store diagnostics: %w", err)
		}
		for _, d := range r.Diagnostics {
			switch d.Severity {
			case domain.SeverityWarning:
				result.Warnings++
			case domain.SeverityError:
				result.Errors++
			}
		}
	}

	slogctx.Info(ctx, "export complete",
		"records", result.Records, "empty", result.Empty,
		"warnings", result.Warnings, "errors", result.Errors)
	return result, nil
}
