package store

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/shelfkeep/shelfkeep-server/internal/domain"
)

// Key prefix for member storage.
const memberPrefix = "member:"

// CreateMember stores a new member.
func (tx *Tx) CreateMember(m *domain.Member) error {
	return tx.set(memberPrefix+m.ID, m)
}

// GetMember retrieves a member by ID.
func (tx *Tx) GetMember(id string) (*domain.Member, error) {
	var m domain.Member
	err := tx.get(memberPrefix+id, &m)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrMemberNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// PutMember rewrites an existing member record.
func (tx *Tx) PutMember(m *domain.Member) error {
	m.Touch()
	return tx.set(memberPrefix+m.ID, m)
}

// DeleteMember removes a member.
// Returns ErrMemberNotFound if the member does not exist.
func (tx *Tx) DeleteMember(id string) error {
	found, err := tx.exists(memberPrefix + id)
	if err != nil {
		return err
	}
	if !found {
		return ErrMemberNotFound
	}
	return tx.delete(memberPrefix + id)
}

// ListMembers returns all members visible to the transaction.
func (tx *Tx) ListMembers() ([]*domain.Member, error) {
	members := make([]*domain.Member, 0)
	err := iterate(tx, memberPrefix, func(m *domain.Member) error {
		members = append(members, m)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return members, nil
}

// ListMembers returns all members in the directory.
func (s *Store) ListMembers(ctx context.Context) ([]*domain.Member, error) {
	var members []*domain.Member
	err := s.View(ctx, func(tx *Tx) error {
		var err error
		members, err = tx.ListMembers()
		return err
	})
	if err != nil {
		return nil, err
	}
	return members, nil
}
