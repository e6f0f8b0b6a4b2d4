package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/shelfkeep/shelfkeep-server/internal/domain"
	"github.com/shelfkeep/shelfkeep-server/internal/dto"
	"github.com/shelfkeep/shelfkeep-server/internal/errors"
	"github.com/shelfkeep/shelfkeep-server/internal/id"
	"github.com/shelfkeep/shelfkeep-server/internal/store"
	"github.com/shelfkeep/shelfkeep-server/internal/validation"
)

// LendOutcome tags which branch a lend request took.
type LendOutcome string

// Lend outcomes.
const (
	OutcomeBorrowed   LendOutcome = "BORROWED"
	OutcomeWaitlisted LendOutcome = "WAITLISTED"
)

// ReturnAction tags which branch a return took.
type ReturnAction string

// Return actions.
const (
	ActionAssignedToWaitlist ReturnAction = "ASSIGNED_TO_WAITLIST"
	ActionMadeAvailable      ReturnAction = "MADE_AVAILABLE"
)

// LendResult describes the outcome of a lend request.
type LendResult struct {
	Outcome LendOutcome  `json:"outcome"`
	Message string       `json:"message"`
	Loan    *domain.Loan `json:"loan,omitempty"`
}

// ReturnResult describes the outcome of a return.
type ReturnResult struct {
	Action  ReturnAction `json:"action"`
	Message string       `json:"message"`
	Loan    *domain.Loan `json:"loan,omitempty"`
}

// LendingService orchestrates state transitions across the catalog,
// member directory, and loan ledger. Every operation runs inside one
// store transaction so the book/loan/member invariants hold even when
// storage fails partway.
type LendingService struct {
	store     *store.Store
	logger    *slog.Logger
	validator *validation.Validator
}

// NewLendingService creates a new lending service.
func NewLendingService(store *store.Store, logger *slog.Logger) *LendingService {
	return &LendingService{
		store:     store,
		logger:    logger,
		validator: validation.New(),
	}
}

// Lend loans a book to a member, or queues the member on the book's
// waitlist when the book is already out.
func (s *LendingService) Lend(ctx context.Context, bookID, memberID string) (*LendResult, error) {
	var result *LendResult

	err := s.store.Update(ctx, func(tx *store.Tx) error {
		book, err := tx.GetBook(bookID)
		if err != nil {
			return errors.NotFound("Book or Member not found").WithCause(err)
		}
		member, err := tx.GetMember(memberID)
		if err != nil {
			return errors.NotFound("Book or Member not found").WithCause(err)
		}

		switch book.Status {
		case domain.StatusAvailable:
			loan, err := s.openLoan(tx, book, member, time.Now())
			if err != nil {
				return err
			}
			result = &LendResult{
				Outcome: OutcomeBorrowed,
				Message: "Book borrowed successfully",
				Loan:    loan,
			}
			return nil

		case domain.StatusBorrowed:
			if book.InWaitlist(memberID) {
				return errors.Conflict("Member already in waitlist")
			}
			book.PushWaitlist(memberID)
			if err := tx.PutBook(book); err != nil {
				return errors.Wrap(err, errors.CodeInternal, "failed to update waitlist")
			}
			result = &LendResult{
				Outcome: OutcomeWaitlisted,
				Message: "Book is currently borrowed. Member added to waitlist.",
			}
			return nil

		default:
			return errors.Internalf("book %s has invalid status %q", book.ID, book.Status)
		}
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("lend processed",
		"book_id", bookID,
		"member_id", memberID,
		"outcome", result.Outcome,
	)
	return result, nil
}

// Return closes a book's active loan. If members are waitlisted the
// book changes hands immediately: a fresh loan is opened for the
// earliest-joined member and the book stays borrowed. Otherwise the
// book becomes available again.
//
// A return with no active loan is tolerated: loan closing is skipped
// and the waitlist/availability logic still runs.
func (s *LendingService) Return(ctx context.Context, bookID string) (*ReturnResult, error) {
	var result *ReturnResult

	err := s.store.Update(ctx, func(tx *store.Tx) error {
		book, err := tx.GetBook(bookID)
		if err != nil {
			return errors.NotFound("Book not found").WithCause(err)
		}

		if err := s.closeLoan(tx, book); err != nil {
			return err
		}

		next, err := s.nextWaitlisted(tx, book)
		if err != nil {
			return err
		}

		if next != nil {
			loan, err := s.openLoan(tx, book, next, time.Now())
			if err != nil {
				return err
			}
			result = &ReturnResult{
				Action:  ActionAssignedToWaitlist,
				Message: "Returned early! Automatically assigned to next in waitlist: " + next.FullName(),
				Loan:    loan,
			}
			return nil
		}

		book.Status = domain.StatusAvailable
		if err := tx.PutBook(book); err != nil {
			return errors.Wrap(err, errors.CodeInternal, "failed to update book")
		}
		result = &ReturnResult{
			Action:  ActionMadeAvailable,
			Message: "Book returned early and added back to the library.",
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("return processed", "book_id", bookID, "action", result.Action)
	return result, nil
}

// openLoan creates a loan and applies the coupled book/member updates:
// book marked borrowed with its checkout count bumped, loan attached to
// the member. Called with the enclosing transaction for both fresh
// lends and waitlist auto-assignment.
func (s *LendingService) openLoan(tx *store.Tx, book *domain.Book, member *domain.Member, now time.Time) (*domain.Loan, error) {
	loanID, err := id.Generate("loan")
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to generate loan ID")
	}

	loan := &domain.Loan{
		ID:       loanID,
		BookID:   book.ID,
		MemberID: member.ID,
		DueDate:  now.Add(domain.LoanPeriod),
	}
	loan.InitTimestamps()

	if err := tx.CreateLoan(loan); err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to create loan")
	}

	book.Status = domain.StatusBorrowed
	book.CheckoutCount++
	if err := tx.PutBook(book); err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to update book")
	}

	member.AddLoan(loan.ID)
	if err := tx.PutMember(member); err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to update member")
	}

	return loan, nil
}

// closeLoan removes the book's active loan, if any, and detaches it
// from the owning member.
func (s *LendingService) closeLoan(tx *store.Tx, book *domain.Book) error {
	loan, err := tx.ActiveLoanForBook(book.ID)
	if errors.Is(err, store.ErrLoanNotFound) {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "failed to look up active loan")
	}

	member, err := tx.GetMember(loan.MemberID)
	if err == nil {
		member.RemoveLoan(loan.ID)
		if err := tx.PutMember(member); err != nil {
			return errors.Wrap(err, errors.CodeInternal, "failed to update member")
		}
	} else if !errors.Is(err, store.ErrMemberNotFound) {
		return errors.Wrap(err, errors.CodeInternal, "failed to look up member")
	}

	if err := tx.DeleteLoan(loan.ID); err != nil {
		return errors.Wrap(err, errors.CodeInternal, "failed to delete loan")
	}
	return nil
}

// nextWaitlisted pops waitlist entries until one resolves to an
// existing member. Members may be deleted while queued; stale entries
// are discarded rather than blocking the queue.
func (s *LendingService) nextWaitlisted(tx *store.Tx, book *domain.Book) (*domain.Member, error) {
	for len(book.Waitlist) > 0 {
		memberID := book.PopWaitlist()

		member, err := tx.GetMember(memberID)
		if errors.Is(err, store.ErrMemberNotFound) {
			s.logger.Warn("dropping deleted member from waitlist",
				"book_id", book.ID,
				"member_id", memberID,
			)
			continue
		}
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInternal, "failed to look up waitlisted member")
		}
		return member, nil
	}
	return nil, nil
}

// AddBookRequest contains fields for adding a book.
type AddBookRequest struct {
	Title      string   `json:"title" validate:"required,max=500"`
	Author     string   `json:"author"`
	Tags       []string `json:"tags"`
	CoverImage string   `json:"coverImage"`
}

// AddBook adds a book to the catalog. Titles are unique across the
// catalog, compared case-insensitively.
func (s *LendingService) AddBook(ctx context.Context, req AddBookRequest) (*domain.Book, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	bookID, err := id.Generate("book")
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to generate book ID")
	}

	book := &domain.Book{
		ID:         bookID,
		Title:      req.Title,
		Author:     req.Author,
		Tags:       req.Tags,
		Status:     domain.StatusAvailable,
		Waitlist:   []string{},
		CoverImage: req.CoverImage,
	}
	if book.Tags == nil {
		book.Tags = []string{}
	}
	book.InitTimestamps()

	err = s.store.Update(ctx, func(tx *store.Tx) error {
		if err := tx.CreateBook(book); err != nil {
			if errors.Is(err, store.ErrBookExists) {
				return errors.Conflict("Book with this title already exists.")
			}
			return errors.Wrap(err, errors.CodeInternal, "failed to create book")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("book added", "book_id", book.ID, "title", book.Title)
	return book, nil
}

// DeleteBook removes a book. A borrowed book cannot be deleted; any
// stray loans referencing the book are purged on the way out.
func (s *LendingService) DeleteBook(ctx context.Context, bookID string) error {
	err := s.store.Update(ctx, func(tx *store.Tx) error {
		book, err := tx.GetBook(bookID)
		if err != nil {
			return errors.NotFound("Book not found").WithCause(err)
		}
		if book.Status == domain.StatusBorrowed {
			return errors.Conflict("Cannot delete a borrowed book.")
		}

		purged, err := tx.DeleteLoansForBook(bookID)
		if err != nil {
			return errors.Wrap(err, errors.CodeInternal, "failed to purge loans")
		}
		if purged > 0 {
			s.logger.Warn("purged stray loans for available book", "book_id", bookID, "count", purged)
		}

		if err := tx.DeleteBook(bookID); err != nil {
			return errors.Wrap(err, errors.CodeInternal, "failed to delete book")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("book deleted", "book_id", bookID)
	return nil
}

// ListBooks returns the full catalog.
func (s *LendingService) ListBooks(ctx context.Context) ([]*domain.Book, error) {
	books, err := s.store.ListBooks(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to list books")
	}
	return books, nil
}

// AddMemberRequest contains fields for adding a member.
type AddMemberRequest struct {
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
}

// AddMember adds a member to the directory.
func (s *LendingService) AddMember(ctx context.Context, req AddMemberRequest) (*domain.Member, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	memberID, err := id.Generate("mem")
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to generate member ID")
	}

	member := &domain.Member{
		ID:          memberID,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		ActiveLoans: []string{},
	}
	member.InitTimestamps()

	err = s.store.Update(ctx, func(tx *store.Tx) error {
		return tx.CreateMember(member)
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to create member")
	}

	s.logger.Info("member added", "member_id", member.ID)
	return member, nil
}

// DeleteMember removes a member. Members with active loans cannot be
// deleted.
func (s *LendingService) DeleteMember(ctx context.Context, memberID string) error {
	err := s.store.Update(ctx, func(tx *store.Tx) error {
		member, err := tx.GetMember(memberID)
		if err != nil {
			return errors.NotFound("Member not found").WithCause(err)
		}
		if member.HasActiveLoans() {
			return errors.Conflict("Cannot delete member with active loans.")
		}
		if err := tx.DeleteMember(memberID); err != nil {
			return errors.Wrap(err, errors.CodeInternal, "failed to delete member")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("member deleted", "member_id", memberID)
	return nil
}

// ListMembers returns all members with their active loans populated
// with book titles for display.
func (s *LendingService) ListMembers(ctx context.Context) ([]dto.Member, error) {
	members := make([]dto.Member, 0)

	err := s.store.View(ctx, func(tx *store.Tx) error {
		raw, err := tx.ListMembers()
		if err != nil {
			return err
		}

		for _, m := range raw {
			entry := dto.NewMember(m)
			for _, loanID := range m.ActiveLoans {
				loan, err := tx.GetLoan(loanID)
				if err != nil {
					continue
				}
				populated := dto.MemberLoan{
					LoanID:  loan.ID,
					BookID:  loan.BookID,
					DueDate: loan.DueDate,
				}
				if book, err := tx.GetBook(loan.BookID); err == nil {
					populated.BookTitle = book.Title
				}
				entry.ActiveLoans = append(entry.ActiveLoans, populated)
			}
			members = append(members, entry)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to list members")
	}

	return members, nil
}
