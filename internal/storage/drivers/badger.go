package drivers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/karthikdoguparthi/KisaanGrow/internal/models"
)

const (
	tablePrefix = "tables/"
	rowPrefix   = "rows/"
	seqPrefix   = "seq/"

	seqBandwidth = 64
)

// BadgerStorage keeps tables in an embedded badger database. Each row is a
// JSON object stored under rows/<table>/<sequence>, so prefix iteration
// yields insertion order.
type BadgerStorage struct {
	db   *badger.DB
	mu   sync.Mutex
	seqs map[string]*badger.Sequence
}

func NewBadgerStorage(db *badger.DB) *BadgerStorage {
	return &BadgerStorage{db: db, seqs: make(map[string]*badger.Sequence)}
}

// OpenBadger opens a badger database at path, or an in-memory one when path is empty.
func OpenBadger(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}
	return db, nil
}

func tableKey(name string) []byte {
	return []byte(tablePrefix + name)
}

func rowsPrefix(name string) []byte {
	return []byte(rowPrefix + name + "/")
}

func rowKey(name string, seq uint64) []byte {
	return []byte(fmt.Sprintf("%s%s/%020d", rowPrefix, name, seq))
}

func (s *BadgerStorage) sequence(name string) (*badger.Sequence, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq, ok := s.seqs[name]; ok {
		return seq, nil
	}
	seq, err := s.db.GetSequence([]byte(seqPrefix+name), seqBandwidth)
	if err != nil {
		return nil, err
	}
	s.seqs[name] = seq
	return seq, nil
}

func (s *BadgerStorage) ReadTable(ctx context.Context, table models.Table) ([]models.Row, error) {
	var rows []models.Row
	err := s.db.View(func(txn *badger.Txn) error {
		if _, err := txn.Get(tableKey(table.Name)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrTableNotFound
			}
			return err
		}

		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := rowsPrefix(table.Name)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var row models.Row
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &row)
			}); err != nil {
				return fmt.Errorf("failed to decode row %s: %w", it.Item().Key(), err)
			}
			rows = append(rows, row)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *BadgerStorage) AppendRow(ctx context.Context, table models.Table, row models.Row) error {
	seq, err := s.sequence(table.Name)
	if err != nil {
		return fmt.Errorf("failed to get sequence: %w", err)
	}
	n, err := seq.Next()
	if err != nil {
		return fmt.Errorf("failed to get next sequence: %w", err)
	}

	record := make(models.Row, len(table.Columns))
	for _, h := range table.Header() {
		record[h] = row[h]
	}
	val, err := json.Marshal(record)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(tableKey(table.Name)); errors.Is(err, badger.ErrKeyNotFound) {
			header, err := json.Marshal(table.Header())
			if err != nil {
				return err
			}
			if err := txn.Set(tableKey(table.Name), header); err != nil {
				return err
			}
		} else if err != nil {
			return err
		}
		return txn.Set(rowKey(table.Name, n), val)
	})
}

func (s *BadgerStorage) UpdateByKey(ctx context.Context, table models.Table, key, column, value string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		var (
			target []byte
			row    models.Row
		)

		it := txn.NewIterator(badger.DefaultIteratorOptions)
		prefix := rowsPrefix(table.Name)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var candidate models.Row
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &candidate)
			}); err != nil {
				it.Close()
				return err
			}
			if candidate[table.Key] == key {
				target = it.Item().KeyCopy(nil)
				row = candidate
				break
			}
		}
		it.Close()

		if target == nil {
			return ErrNotFound
		}

		row[column] = value
		val, err := json.Marshal(row)
		if err != nil {
			return err
		}
		return txn.Set(target, val)
	})
}

func (s *BadgerStorage) Close() error {
	s.mu.Lock()
	for name, seq := range s.seqs {
		_ = seq.Release()
		delete(s.seqs, name)
	}
	s.mu.Unlock()
	return s.db.Close()
}
