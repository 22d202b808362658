package port

import "refdocs/internal/domain"

type RecordStore interface {
	PutRecords(records []StoredRecord) error

	GetRecord(id string) (domain.Record, error)

	ListIDs() ([]string, error)

	PutDiagnostics(id string, diags []domain.Diagnostic) error

	GetDiagnostics(id string) ([]domain.Diagnostic, error)

	Close() error
}

type StoredRecord struct {
	ID     string
	Record domain.Record
}
