package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"go.etcd.io/bbolt"
	"refdocs/internal/domain"
	"refdocs/internal/port"
)

// ErrRecordNotFound is returned by GetRecord for unknown identifiers.
var ErrRecordNotFound = errors.New("record not found")

var (
	bucketRecords     = []byte("records")
	bucketDiagnostics = []byte("diagnostics")
	bucketMeta        = []byte("meta")
)

var _ port.RecordStore = (*BoltStore)(nil)

type BoltStore struct {
	db *bbolt.DB
}

func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketRecords, bucketDiagnostics, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

// PutRecords stores a batch of records in one transaction.
func (s *BoltStore) PutRecords(records []port.StoredRecord) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketRecords)
		for _, r := range records {
			data, err := json.Marshal(r.Record)
			if err != nil {
				return fmt.Errorf("failed to encode record %s: %w", r.ID, err)
			}
			if err := b.Put([]byte(r.ID), data); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *BoltStore) GetRecord(id string) (domain.Record, error) {
	var rec domain.Record
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketRecords).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("%w: %s", ErrRecordNotFound, id)
		}
		return json.Unmarshal(data, &rec)
	})
	return rec, err
}

// ListIDs returns stored record identifiers in key order.
func (s *BoltStore) ListIDs() ([]string, error) {
	var ids []string
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketRecords).ForEach(func(k, _ []byte) error {
			ids = append(ids, string(k))
			return nil
		})
	})
	return ids, err
}

// PutDiagnostics replaces the diagnostics of id. An empty list deletes them.
func (s *BoltStore) PutDiagnostics(id string, diags []domain.Diagnostic) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketDiagnostics)
		if len(diags) == 0 {
			return b.Delete([]byte(id))
		}
		data, err := json.Marshal(diags)
		if err != nil {
			return err
		}
		return b.Put([]byte(id), data)
	})
}

func (s *BoltStore) GetDiagnostics(id string) ([]domain.Diagnostic, error) {
	var diags []domain.Diagnostic
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketDiagnostics).Get([]byte(id))
		if data == nil {
			return nil
		}
		return json.Unmarshal(data, &diags)
	})
	return diags, err
}

// Stats counts stored records and identifiers with diagnostics.
func (s *BoltStore) Stats() (records, diagnostics int, err error) {
	err = s.db.View(func(tx *bbolt.Tx) error {
		records = tx.Bucket(bucketRecords).Stats().KeyN
		diagnostics = tx.Bucket(bucketDiagnostics).Stats().KeyN
		return nil
	})
	return records, diagnostics, err
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
