package service

import (
	"context"
	"log/slog"

	"github.com/shelfkeep/shelfkeep-server/internal/domain"
	"github.com/shelfkeep/shelfkeep-server/internal/errors"
	"github.com/shelfkeep/shelfkeep-server/internal/id"
	"github.com/shelfkeep/shelfkeep-server/internal/openlibrary"
	"github.com/shelfkeep/shelfkeep-server/internal/store"
)

// populateFetchLimit caps how many works one populate request pulls
// from the metadata source.
const populateFetchLimit = 10

// Subjects is the slice of the metadata source the import service
// needs: candidate works for a subject.
type Subjects interface {
	Subjects(ctx context.Context, subject string, limit int) ([]openlibrary.Work, error)
}

// ImportService bulk-imports catalog records from the external
// metadata source. Failures of the source never corrupt the catalog;
// they surface as upstream errors.
type ImportService struct {
	store    *store.Store
	metadata Subjects
	logger   *slog.Logger
}

// NewImportService creates a new import service.
func NewImportService(store *store.Store, metadata Subjects, logger *slog.Logger) *ImportService {
	return &ImportService{
		store:    store,
		metadata: metadata,
		logger:   logger,
	}
}

// Populate imports books for a genre, skipping titles already in the
// catalog. Returns how many books were added.
func (s *ImportService) Populate(ctx context.Context, genre string) (int, error) {
	if genre == "" {
		return 0, errors.Validation("genre is required")
	}

	works, err := s.metadata.Subjects(ctx, genre, populateFetchLimit)
	if err != nil {
		return 0, errors.Wrap(err, errors.CodeUpstream, "Failed to fetch from external API")
	}

	added := 0
	for _, work := range works {
		if work.Title == "" {
			continue
		}

		bookID, err := id.Generate("book")
		if err != nil {
			return added, errors.Wrap(err, errors.CodeInternal, "failed to generate book ID")
		}

		book := &domain.Book{
			ID:         bookID,
			Title:      work.Title,
			Author:     work.Author(),
			Tags:       []string{genre, "imported"},
			Status:     domain.StatusAvailable,
			Waitlist:   []string{},
			CoverImage: work.CoverURL(),
		}
		book.InitTimestamps()

		err = s.store.Update(ctx, func(tx *store.Tx) error {
			return tx.CreateBook(book)
		})
		if errors.Is(err, store.ErrBookExists) {
			continue
		}
		if err != nil {
			return added, errors.Wrap(err, errors.CodeInternal, "failed to create book")
		}
		added++
	}

	s.logger.Info("populate finished", "genre", genre, "added", added, "fetched", len(works))
	return added, nil
}
