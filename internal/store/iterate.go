package store

import (
	"encoding/json/v2"

	"github.com/dgraph-io/badger/v4"
)

// iterate walks every record under prefix and calls fn with each
// decoded value. Index keys live under their own "idx:" namespace and
// are never visited.
func iterate[T any](tx *Tx, prefix string, fn func(*T) error) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(prefix)

	it := tx.txn.NewIterator(opts)
	defer it.Close()

	for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
		var record T
		err := it.Item().Value(func(val []byte) error {
			return json.Unmarshal(val, &record)
		})
		if err != nil {
			return err
		}
		if err := fn(&record); err != nil {
			return err
		}
	}
	return nil
}
