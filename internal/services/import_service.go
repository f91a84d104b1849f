package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	apperrors "github.com/gnzdotmx/okane-track-sub000/internal/errors"
	"github.com/gnzdotmx/okane-track-sub000/internal/importer"
	"github.com/gnzdotmx/okane-track-sub000/internal/ledger"
	"github.com/gnzdotmx/okane-track-sub000/internal/logger"
	"github.com/gnzdotmx/okane-track-sub000/internal/models"
	"github.com/gnzdotmx/okane-track-sub000/internal/pagination"
	"github.com/gnzdotmx/okane-track-sub000/internal/repository"
	"github.com/gnzdotmx/okane-track-sub000/internal/uuid"
)

// Row error field names.
const (
	FieldAmount          = "amount"
	FieldDate            = "date"
	FieldTransactionType = "transactionType"
	FieldCategory        = "category"
	FieldExpenseType     = "expenseType"
	FieldAccount         = "account"
	FieldCurrency        = "currency"
	FieldRow             = "row"
	FieldFile            = "file"
)

// importService handles bulk CSV imports.
type importService struct {
	store *repository.Store
	rules *importer.Rules
	reconciler
	now func() time.Time
}

// NewImportService creates a new ImportServicer. A nil rules value uses the
// built-in import rules.
func NewImportService(store *repository.Store, rules *importer.Rules, balances BalanceServicer, budgets BudgetServicer) ImportServicer {
	if rules == nil {
		rules = importer.DefaultRules()
	}
	return &importService{
		store:      store,
		rules:      rules,
		reconciler: reconciler{balances: balances, budgets: budgets},
		now:        time.Now,
	}
}

// rowError is a validation failure of a single field.
type rowError struct {
	field string
	msg   string
}

func (e *rowError) Error() string { return e.msg }

func fieldErr(field, format string, args ...interface{}) *rowError {
	return &rowError{field: field, msg: fmt.Sprintf(format, args...)}
}

// importBatch carries the per-call lookup caches and the staged rows.
type importBatch struct {
	userID       string
	fixedAccount *models.Account
	doc          *importer.Document

	types        map[string]*models.TransactionType
	categories   map[string]*models.BudgetCategory
	expenseTypes map[string]*models.ExpenseType
	accounts     map[string]*models.Account
	currencies   map[string]*models.Currency
	occurrences  map[string]int

	staged []models.Transaction
	errors []importer.RowError
}

// ImportTransactions parses a CSV upload, stores every valid row and
// reconciles the touched accounts and budgets. Invalid rows are reported in
// the result and never abort the batch. An ImportHistory row is written for
// every parsed upload.
func (s *importService) ImportTransactions(ctx context.Context, req ImportRequest) (*ImportResult, error) {
	doc, err := importer.Parse(bytes.NewReader(req.Content))
	if err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
	}

	batch := &importBatch{
		userID:      req.UserID,
		doc:         doc,
		accounts:    make(map[string]*models.Account),
		currencies:  make(map[string]*models.Currency),
		types:       make(map[string]*models.TransactionType),
		occurrences: make(map[string]int),
	}

	if req.AccountID != "" {
		batch.fixedAccount, err = findOwnedAccount(ctx, s.store, req.UserID, req.AccountID)
		if err != nil {
			return nil, s.rejectUpload(ctx, req, "", len(doc.Records), err)
		}
	} else if !doc.HasAccountInfo() {
		return nil, s.rejectUpload(ctx, req, "", len(doc.Records), apperrors.ErrAccountInfoRequired)
	}

	if len(doc.Records) == 0 {
		return nil, s.rejectUpload(ctx, req, req.AccountID, 0, apperrors.ErrEmptyImport)
	}

	if err := s.loadReferenceData(ctx, batch); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	for _, rec := range doc.Records {
		s.processRow(ctx, batch, rec)
	}

	result := &ImportResult{
		TotalRecords: len(doc.Records),
		SuccessCount: len(batch.staged),
		ErrorCount:   len(batch.errors),
		Errors:       batch.errors,
	}
	if result.Errors == nil {
		result.Errors = []importer.RowError{}
	}
	result.Success = result.ErrorCount == 0

	var insertErr error
	if len(batch.staged) > 0 {
		result.InsertedCount, insertErr = s.insert(ctx, batch)
	}

	result.ImportID = s.recordHistory(ctx, req, req.AccountID, result)

	if insertErr != nil {
		return nil, apperrors.Wrap(apperrors.ErrImportFailed, insertErr)
	}
	return result, nil
}

// insert settles the touched accounts, stores the staged rows and
// reconciles balances.
func (s *importService) insert(ctx context.Context, batch *importBatch) (int, error) {
	accountIDs := make([]string, 0, len(batch.accounts))
	budgets := make([]budgetKey, 0, len(batch.staged))
	seen := make(map[string]bool)
	for _, tx := range batch.staged {
		if !seen[tx.AccountID] {
			seen[tx.AccountID] = true
			accountIDs = append(accountIDs, tx.AccountID)
		}
		budgets = append(budgets, budgetKey{tx.BudgetCategoryID, tx.Date.Year()})
	}

	pinned, err := s.settle(ctx, batch.userID, accountIDs...)
	if err != nil {
		return 0, err
	}

	inserted, err := s.store.Transactions.BulkInsert(ctx, batch.staged)
	if err != nil {
		return 0, err
	}

	if err := s.reconcile(ctx, batch.userID, pinned, budgets); err != nil {
		logger.Get().Errorw("failed to reconcile balances after import",
			"user_id", batch.userID,
			"error", err,
		)
	}
	return int(inserted), nil
}

// rejectUpload records a history row with no imported records for an upload
// refused as a whole and returns err unchanged. accountID is empty when the
// upload is not tied to a known account.
func (s *importService) rejectUpload(ctx context.Context, req ImportRequest, accountID string, total int, err error) error {
	s.recordHistory(ctx, req, accountID, &ImportResult{
		TotalRecords: total,
		Errors:       []importer.RowError{{Field: FieldFile, Message: err.Error()}},
	})
	return err
}

func (s *importService) recordHistory(ctx context.Context, req ImportRequest, accountID string, result *ImportResult) string {
	errorsJSON, err := json.Marshal(result.Errors)
	if err != nil {
		errorsJSON = []byte("[]")
	}

	history := &models.ImportHistory{
		UserID:        req.UserID,
		FileName:      req.FileName,
		TotalRecords:  result.TotalRecords,
		SuccessCount:  result.SuccessCount,
		ErrorCount:    result.ErrorCount,
		InsertedCount: result.InsertedCount,
		Errors:        string(errorsJSON),
		ImportedAt:    s.now().UTC(),
	}
	if accountID != "" {
		history.AccountID = &accountID
	}

	if err := s.store.Imports.Create(ctx, history); err != nil {
		logger.Get().Errorw("failed to record import history",
			"user_id", req.UserID,
			"file_name", req.FileName,
			"error", err,
		)
		return ""
	}
	return history.ID
}

func (s *importService) loadReferenceData(ctx context.Context, batch *importBatch) error {
	categories, err := s.store.Lookups.Categories(ctx)
	if err != nil {
		return err
	}
	batch.categories = make(map[string]*models.BudgetCategory, len(categories))
	for i := range categories {
		batch.categories[ledger.Fold(categories[i].Name)] = &categories[i]
	}

	expenseTypes, err := s.store.Lookups.ExpenseTypes(ctx)
	if err != nil {
		return err
	}
	batch.expenseTypes = make(map[string]*models.ExpenseType, len(expenseTypes))
	for i := range expenseTypes {
		batch.expenseTypes[ledger.Fold(expenseTypes[i].Name)] = &expenseTypes[i]
	}
	return nil
}

// processRow stages one record or records its first error. A panic while
// processing is recorded as a row error.
func (s *importService) processRow(ctx context.Context, batch *importBatch, rec importer.Record) {
	defer func() {
		if r := recover(); r != nil {
			logger.Get().Errorw("panic while importing row", "row", rec.Line, "panic", r)
			batch.errors = append(batch.errors, importer.RowError{
				Row:     rec.Line,
				Field:   FieldRow,
				Message: fmt.Sprintf("unexpected error: %v", r),
			})
		}
	}()

	tx, err := s.stageRow(ctx, batch, rec)
	if err != nil {
		field := FieldRow
		var re *rowError
		if errors.As(err, &re) {
			field = re.field
		}
		batch.errors = append(batch.errors, importer.RowError{Row: rec.Line, Field: field, Message: err.Error()})
		return
	}
	batch.staged = append(batch.staged, *tx)
}

func (s *importService) stageRow(ctx context.Context, batch *importBatch, rec importer.Record) (*models.Transaction, error) {
	description := rec.Get(importer.ColDescription)

	amount, err := importer.ParseAmount(rec.Get(importer.ColAmount))
	if err != nil {
		return nil, fieldErr(FieldAmount, "%v", err)
	}

	date, err := importer.ParseDate(rec.Get(importer.ColDate))
	if err != nil {
		return nil, fieldErr(FieldDate, "%v", err)
	}

	typeName := s.rules.GuessType(description)
	if raw := rec.Get(importer.ColTransactionType); raw != "" {
		name, ok := s.rules.ExplicitType(raw)
		if !ok {
			name, ok = s.rules.MatchType(raw)
		}
		if !ok {
			name, ok = s.rules.MatchType(description)
		}
		if !ok {
			return nil, fieldErr(FieldTransactionType, "unrecognised transaction type %q", raw)
		}
		typeName = name
	}
	typ, err := s.transactionType(ctx, batch, typeName)
	if err != nil {
		return nil, err
	}

	categoryName := rec.Get(importer.ColCategory)
	if categoryName == "" {
		categoryName = s.rules.Categorize(typeName, description, amount)
	}
	category, ok := batch.categories[ledger.Fold(categoryName)]
	if !ok {
		return nil, fieldErr(FieldCategory, "unknown category %q", categoryName)
	}

	var expenseTypeID *string
	if raw := rec.Get(importer.ColExpenseType); raw != "" {
		et, ok := batch.expenseTypes[ledger.Fold(raw)]
		if !ok {
			return nil, fieldErr(FieldExpenseType, "unknown expense type %q", raw)
		}
		expenseTypeID = &et.ID
	}

	account := batch.fixedAccount
	if account == nil {
		account, err = s.rowAccount(ctx, batch, rec.Get(importer.ColAccountID), rec.Get(importer.ColAccountName))
		if err != nil {
			return nil, err
		}
	}

	currencyID := account.CurrencyID
	if code := rec.Get(importer.ColCurrency); code != "" {
		currency, err := s.currency(ctx, batch, code)
		if err != nil {
			return nil, err
		}
		currencyID = currency.ID
	}

	reimbursable := s.rules.IsReimbursable(description)
	if batch.doc.Has(importer.ColReimbursable) {
		reimbursable = importer.ParseYesNo(rec.Get(importer.ColReimbursable))
	}

	var reimbursementID *string
	if reimbursable {
		id := rec.Get(importer.ColReimbursementID)
		if id == "" {
			id = uuid.NewFromName(account.ID, date.Format(time.RFC3339), amount.String(), description)
		}
		reimbursementID = &id
	}

	fingerprint := s.fingerprint(batch, account.ID, date, amount, typeName, description)

	return &models.Transaction{
		UserID:            batch.userID,
		AccountID:         account.ID,
		CurrencyID:        currencyID,
		TransactionTypeID: typ.ID,
		ExpenseTypeID:     expenseTypeID,
		BudgetCategoryID:  category.ID,
		Amount:            amount,
		Date:              date,
		Description:       description,
		Notes:             rec.Get(importer.ColNotes),
		IsReimbursable:    reimbursable,
		ReimbursementID:   reimbursementID,
		Fingerprint:       &fingerprint,
	}, nil
}

// fingerprint identifies a row by its content and by how many identical rows
// preceded it in the file, so repeated rows in one file are all kept while a
// re-import of the file inserts nothing.
func (s *importService) fingerprint(batch *importBatch, accountID string, date time.Time, amount decimal.Decimal, typeName, description string) string {
	key := importer.Fingerprint(accountID, date.Format(time.RFC3339), amount.String(), typeName, description)
	n := batch.occurrences[key]
	batch.occurrences[key] = n + 1
	return importer.Fingerprint(key, strconv.Itoa(n))
}

func (s *importService) transactionType(ctx context.Context, batch *importBatch, name string) (*models.TransactionType, error) {
	if t, ok := batch.types[name]; ok {
		return t, nil
	}
	t, err := s.store.Lookups.TransactionTypeByName(ctx, name)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fieldErr(FieldTransactionType, "transaction type %s is not configured", name)
		}
		return nil, err
	}
	batch.types[name] = t
	return t, nil
}

func (s *importService) currency(ctx context.Context, batch *importBatch, code string) (*models.Currency, error) {
	if c, ok := batch.currencies[code]; ok {
		return c, nil
	}
	c, err := s.store.Currencies.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fieldErr(FieldCurrency, "unknown currency %q", code)
		}
		return nil, err
	}
	batch.currencies[code] = c
	return c, nil
}

// rowAccount resolves a row's account by id, then by exact name.
func (s *importService) rowAccount(ctx context.Context, batch *importBatch, id, name string) (*models.Account, error) {
	if id != "" {
		if a, ok := batch.accounts["id:"+id]; ok {
			return a, nil
		}
		if uuid.IsValid(id) {
			a, err := s.store.Accounts.FindOwned(ctx, batch.userID, id)
			if err == nil {
				batch.accounts["id:"+id] = a
				return a, nil
			}
			if !errors.Is(err, repository.ErrNotFound) {
				return nil, err
			}
		}
	}

	if name != "" {
		if a, ok := batch.accounts["name:"+name]; ok {
			return a, nil
		}
		a, err := s.store.Accounts.FindByName(ctx, batch.userID, name)
		if err == nil {
			batch.accounts["name:"+name] = a
			return a, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	}

	return nil, fieldErr(FieldAccount, "account not found (id %q, name %q)", id, name)
}

// GetImportHistory lists the user's past imports, newest first.
func (s *importService) GetImportHistory(ctx context.Context, userID string, page pagination.PageRequest) (*pagination.PageResponse[models.ImportHistory], error) {
	page.Defaults()

	rows, total, err := s.store.Imports.ListByUser(ctx, userID, page)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	result := pagination.NewPageResponse(rows, page.Page, page.PageSize, total)
	return &result, nil
}
