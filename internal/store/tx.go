package store

import (
	"encoding/json/v2"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// Tx exposes typed record operations inside one Badger transaction.
// Obtain one through Store.Update or Store.View; never retain it after
// the enclosing function returns.
type Tx struct {
	txn *badger.Txn
}

// get unmarshals the value at key into dest.
// Returns badger.ErrKeyNotFound if the key does not exist.
func (tx *Tx) get(key string, dest any) error {
	item, err := tx.txn.Get([]byte(key))
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		if err := json.Unmarshal(val, dest); err != nil {
			return fmt.Errorf("unmarshal %s: %w", key, err)
		}
		return nil
	})
}

// set marshals value and stores it at key.
func (tx *Tx) set(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return tx.txn.Set([]byte(key), data)
}

// exists reports whether key is present.
func (tx *Tx) exists(key string) (bool, error) {
	_, err := tx.txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// delete removes key. Deleting a missing key is not an error.
func (tx *Tx) delete(key string) error {
	return tx.txn.Delete([]byte(key))
}
