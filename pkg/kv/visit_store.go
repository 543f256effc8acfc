package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const visitKeyPrefix = "visit/"

// VisitStore persists segment-visit timestamps per h3 cell in badger. It
// backs the crowd-density tracker: visits are appended as travelers report
// their position, and the tracker periodically counts visits inside its
// rolling window.
type VisitStore struct {
	db *badger.DB
}

func NewVisitStore(db *badger.DB) *VisitStore {
	return &VisitStore{db: db}
}

func (s *VisitStore) Close() error {
	return s.db.Close()
}

func visitKey(cell string) []byte {
	return []byte(visitKeyPrefix + cell)
}

// RecordVisit appends t to the visit history of a cell.
func (s *VisitStore) RecordVisit(ctx context.Context, cell string, t time.Time) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("context cancelled")
	default:
	}

	return s.db.Update(func(txn *badger.Txn) error {
		var timestamps []int64

		item, err := txn.Get(visitKey(cell))
		if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if err == nil {
			err = item.Value(func(val []byte) error {
				timestamps, err = decodeTimestamps(val)
				return err
			})
			if err != nil {
				return err
			}
		}

		timestamps = append(timestamps, t.Unix())
		encoded, err := encodeTimestamps(timestamps)
		if err != nil {
			return err
		}
		return txn.Set(visitKey(cell), encoded)
	})
}

// CountVisitsSince returns, per cell, the number of visits at or after
// cutoff.
func (s *VisitStore) CountVisitsSince(ctx context.Context, cutoff time.Time) (map[string]int, error) {
	counts := make(map[string]int)
	cutoffUnix := cutoff.Unix()

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(visitKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled")
			default:
			}

			item := it.Item()
			cell := string(item.Key()[len(visitKeyPrefix):])
			err := item.Value(func(val []byte) error {
				timestamps, err := decodeTimestamps(val)
				if err != nil {
					return err
				}
				for _, ts := range timestamps {
					if ts >= cutoffUnix {
						counts[cell]++
					}
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return counts, nil
}

// PruneBefore drops visit timestamps older than cutoff and deletes cells
// left empty, keeping the store bounded by the rolling window.
func (s *VisitStore) PruneBefore(ctx context.Context, cutoff time.Time) error {
	cutoffUnix := cutoff.Unix()

	type cellUpdate struct {
		cell string
		kept []int64
	}
	updates := make([]cellUpdate, 0)

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(visitKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled")
			default:
			}

			item := it.Item()
			cell := string(item.Key()[len(visitKeyPrefix):])
			err := item.Value(func(val []byte) error {
				timestamps, err := decodeTimestamps(val)
				if err != nil {
					return err
				}
				kept := timestamps[:0]
				for _, ts := range timestamps {
					if ts >= cutoffUnix {
						kept = append(kept, ts)
					}
				}
				if len(kept) < len(timestamps) {
					updates = append(updates, cellUpdate{cell: cell, kept: append([]int64(nil), kept...)})
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	batch := s.db.NewWriteBatch()
	defer batch.Cancel()
	for _, u := range updates {
		if len(u.kept) == 0 {
			if err := batch.Delete(visitKey(u.cell)); err != nil {
				return err
			}
			continue
		}
		encoded, err := encodeTimestamps(u.kept)
		if err != nil {
			return err
		}
		if err := batch.Set(visitKey(u.cell), encoded); err != nil {
			return err
		}
	}
	return batch.Flush()
}
