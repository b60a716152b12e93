package services

import (
	"context"
	"fmt"
	"io"
	"os"

	"forest/internal/core"
	"forest/internal/log"
	"forest/internal/storage"
	"forest/internal/uploads"
)

// ReceiptUpload is an incoming receipt file, typically a multipart part.
type ReceiptUpload struct {
	Reader   io.Reader
	Filename string
}

// ExpenseService orchestrates expense operations across SQLite and the
// receipt file store.
type ExpenseService struct {
	storage *storage.SQLiteRepository
	files   *uploads.Store
	logger  *log.Logger
}

func NewExpenseService(repo *storage.SQLiteRepository, files *uploads.Store, logger *log.Logger) *ExpenseService {
	return &ExpenseService{
		storage: repo,
		files:   files,
		logger:  logger.WithComponent(log.ComponentExpense),
	}
}

// CreateExpense validates, stores the row and attaches any receipts.
// Pointing at a category that does not exist is a not-found error, matching
// how the list and detail endpoints treat missing resources.
func (s *ExpenseService) CreateExpense(ctx context.Context, e core.Expense, receipts []ReceiptUpload) (*core.Expense, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.storage.GetCategory(ctx, e.CategoryID); err != nil {
		return nil, err
	}

	created, err := s.storage.CreateExpense(ctx, e)
	if err != nil {
		return nil, fmt.Errorf("save expense: %w", err)
	}

	if err := s.attachReceipts(ctx, created, receipts); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "expense created",
		log.FieldUserID, created.UserID,
		log.FieldExpenseID, created.ID,
		log.FieldAmountCents, created.Amount.Cents,
		log.FieldOperation, log.OpCreate)

	return s.storage.GetExpense(ctx, created.UserID, created.ID)
}

// GetExpense returns one expense with its receipts, scoped to the user.
func (s *ExpenseService) GetExpense(ctx context.Context, userID, id int64) (*core.Expense, error) {
	return s.storage.GetExpense(ctx, userID, id)
}

// ListExpenses returns the user's expenses under the given filter.
func (s *ExpenseService) ListExpenses(ctx context.Context, userID int64, f storage.ExpenseFilter) ([]core.Expense, error) {
	return s.storage.ListExpenses(ctx, userID, f)
}

// UpdateExpense replaces the stored row and attaches any new receipts.
func (s *ExpenseService) UpdateExpense(ctx context.Context, e core.Expense, receipts []ReceiptUpload) (*core.Expense, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.storage.GetCategory(ctx, e.CategoryID); err != nil {
		return nil, err
	}

	updated, err := s.storage.UpdateExpense(ctx, e)
	if err != nil {
		return nil, err
	}

	if err := s.attachReceipts(ctx, updated, receipts); err != nil {
		return nil, err
	}

	return s.storage.GetExpense(ctx, updated.UserID, updated.ID)
}

// DeleteExpense removes the expense and its receipt rows, then cleans up
// the files. A file that cannot be removed is logged and skipped; the
// delete itself already succeeded.
func (s *ExpenseService) DeleteExpense(ctx context.Context, userID, id int64) error {
	filenames, err := s.storage.DeleteExpense(ctx, userID, id)
	if err != nil {
		return err
	}

	for _, name := range filenames {
		if err := s.files.Remove(name); err != nil {
			s.logger.WarnContext(ctx, "failed to remove receipt file",
				log.FieldFilename, name,
				log.FieldError, err.Error())
		}
	}

	s.logger.InfoContext(ctx, "expense deleted",
		log.FieldUserID, userID,
		log.FieldExpenseID, id,
		log.FieldOperation, log.OpDelete)

	return nil
}

// DeleteReceipt detaches one receipt from its expense and removes the file.
func (s *ExpenseService) DeleteReceipt(ctx context.Context, userID, receiptID int64) error {
	rec, err := s.storage.GetReceipt(ctx, userID, receiptID)
	if err != nil {
		return err
	}

	if err := s.storage.DeleteReceipt(ctx, rec.ID); err != nil {
		return err
	}

	if err := s.files.Remove(rec.Filename); err != nil {
		s.logger.WarnContext(ctx, "failed to remove receipt file",
			log.FieldFilename, rec.Filename,
			log.FieldError, err.Error())
	}

	return nil
}

// OpenReceipt resolves a stored filename to the owning user's receipt and
// opens the file for download. The caller closes the file.
func (s *ExpenseService) OpenReceipt(ctx context.Context, userID int64, filename string) (*core.Receipt, *os.File, error) {
	rec, err := s.storage.GetReceiptByFilename(ctx, userID, filename)
	if err != nil {
		return nil, nil, err
	}

	f, err := s.files.Open(rec.Filename)
	if err != nil {
		return nil, nil, fmt.Errorf("open receipt file: %w", err)
	}

	return rec, f, nil
}

func (s *ExpenseService) attachReceipts(ctx context.Context, e *core.Expense, receipts []ReceiptUpload) error {
	for _, up := range receipts {
		stored, err := s.files.Save(up.Reader, up.Filename)
		if err != nil {
			return fmt.Errorf("store receipt: %w", err)
		}

		_, err = s.storage.AddReceipt(ctx, core.Receipt{
			Filename:         stored,
			OriginalFilename: up.Filename,
			UploadDate:       core.Today(),
			ExpenseID:        e.ID,
		})
		if err != nil {
			// Keep files and rows consistent if the insert fails.
			if rmErr := s.files.Remove(stored); rmErr != nil {
				s.logger.WarnContext(ctx, "failed to remove orphaned receipt file",
					log.FieldFilename, stored,
					log.FieldError, rmErr.Error())
			}
			return fmt.Errorf("record receipt: %w", err)
		}

		s.logger.InfoContext(ctx, "receipt stored",
			log.FieldExpenseID, e.ID,
			log.FieldFilename, stored,
			log.FieldOperation, log.OpUpload)
	}
	return nil
}
