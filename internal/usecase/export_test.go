package usecase

import (
	"context"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"refdocs/internal/domain"
	"refdocs/internal/port"
)

type memRecordStore struct {
	records map[string]domain.Record
	diags   map[string][]domain.Diagnostic
	batches int
}

func newMemRecordStore() *memRecordStore {
	return &memRecordStore{
		records: make(map[string]domain.Record),
		diags:   make(map[string][]domain.Diagnostic),
	}
}

func (s *memRecordStore) PutRecords(records []port.StoredRecord) error {
	s.batches++
	for _, r := range records {
		s.records[r.ID] = r.Record
	}
	return nil
}

func (s *memRecordStore) GetRecord(id string) (domain.Record, error) {
	return s.records[id], nil
}

func (s *memRecordStore) ListIDs() ([]string, error) {
	ids := make([]string, 0, len(s.records))
	for id := range s.records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *memRecordStore) PutDiagnostics(id string, diags []domain.Diagnostic) error {
	s.diags[id] = diags
	return nil
}

func (s *memRecordStore) GetDiagnostics(id string) ([]domain.Diagnostic, error) {
	return s.diags[id], nil
}

func (s *memRecordStore) Close() error { return nil }

func TestExport(t *testing.T) {
	l := newLib()
	bar := l.typ("Bar", "<summary>Bar</summary>")
	foo := l.typ("Foo", "<inheritdoc/>")
	l.svc.SetBase(foo, bar, false)
	l.typ("Lost", `<inheritdoc cref="T:Lib.Nowhere"/>`)
	l.typ("Odd", "<summary>odd</summary><custom/>")

	c, err := BuildCatalog(context.Background(), l.svc, l.svc.Root(), Options{
		Policy: domain.Policy{domain.DiagUnrecognizedMainElement: domain.SeverityWarning},
	})
	if err != nil {
		t.Fatalf("BuildCatalog() error = %v", err)
	}

	st := newMemRecordStore()
	var progressed []string
	result, err := NewExportUseCase(c, st).Export(context.Background(), func(done, total int, id string) {
		if total != 4 {
			t.Errorf("progress total = %d, want 4", total)
		}
		progressed = append(progressed, id)
	})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	wantResult := &ExportResult{Records: 4, Empty: 1, Warnings: 2}
	if diff := cmp.Diff(wantResult, result); diff != "" {
		t.Errorf("Export() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(c.IDs(), progressed); diff != "" {
		t.Errorf("progress order mismatch (-want +got):\n%s", diff)
	}
	if st.batches != 1 {
		t.Errorf("batches = %d, want 1", st.batches)
	}

	if got := st.records["T:Lib.Foo"].Summary.PlainText(); got != "Bar" {
		t.Errorf("stored Foo summary = %q, want %q", got, "Bar")
	}
	ids, _ := st.ListIDs()
	if diff := cmp.Diff([]string{"T:Lib.Bar", "T:Lib.Foo", "T:Lib.Lost", "T:Lib.Odd"}, ids); diff != "" {
		t.Errorf("stored ids mismatch (-want +got):\n%s", diff)
	}
	if got := st.diags["T:Lib.Lost"]; len(got) != 1 || got[0].Kind != domain.DiagMissingReferenceTarget {
		t.Errorf("Lost diagnostics = %v, want one missing_reference_target", got)
	}
}
