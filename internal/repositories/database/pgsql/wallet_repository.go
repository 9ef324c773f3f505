package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/courierly/wallet-backend/internal/apperrors"
	"github.com/courierly/wallet-backend/internal/core/domain"
	portsrepo "github.com/courierly/wallet-backend/internal/core/ports/repositories"
	"github.com/courierly/wallet-backend/internal/models"
	"github.com/courierly/wallet-backend/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PgxWalletRepository persists accounts and ledger entries. It is the only
// writer of the accounts.balance column; every balance change goes through
// ApplyEntry or ApplyTransfer so the cached balance always equals the sum of
// the account's signed entries.
type PgxWalletRepository struct {
	BaseRepository
}

// NewWalletRepository creates a new repository for wallet data.
func NewWalletRepository(pool *pgxpool.Pool) portsrepo.WalletRepositoryFacade {
	return &PgxWalletRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.WalletRepositoryFacade = (*PgxWalletRepository)(nil)

// SaveAccount inserts a new account.
func (r *PgxWalletRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	modelAcc := mapping.ToModelAccount(account)

	query := `
		INSERT INTO accounts (account_id, user_id, name, parent_account_id, is_active, balance, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	var parentID sql.NullString
	if modelAcc.ParentAccountID != "" {
		parentID = sql.NullString{String: modelAcc.ParentAccountID, Valid: true}
	}

	_, err := r.Pool.Exec(ctx, query,
		modelAcc.AccountID,
		modelAcc.UserID,
		modelAcc.Name,
		parentID,
		modelAcc.IsActive,
		modelAcc.Balance,
		modelAcc.CreatedAt,
		modelAcc.CreatedBy,
		modelAcc.LastUpdatedAt,
		modelAcc.LastUpdatedBy,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: account with ID %s already exists", apperrors.ErrDuplicate, modelAcc.AccountID)
		}
		return fmt.Errorf("failed to save account %s: %w", modelAcc.AccountID, err)
	}
	return nil
}

// FindAccountByID retrieves an account by its ID.
func (r *PgxWalletRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	query := `
		SELECT account_id, user_id, name, parent_account_id, is_active, balance, created_at, created_by, last_updated_at, last_updated_by
		FROM accounts
		WHERE account_id = $1;
	`
	modelAcc, err := scanAccountRow(r.Pool.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find account by ID %s: %w", accountID, err)
	}

	domainAcc := mapping.ToDomainAccount(*modelAcc)
	return &domainAcc, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccountRow(row rowScanner) (*models.Account, error) {
	var modelAcc models.Account
	var parentID sql.NullString

	err := row.Scan(
		&modelAcc.AccountID,
		&modelAcc.UserID,
		&modelAcc.Name,
		&parentID,
		&modelAcc.IsActive,
		&modelAcc.Balance,
		&modelAcc.CreatedAt,
		&modelAcc.CreatedBy,
		&modelAcc.LastUpdatedAt,
		&modelAcc.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	if parentID.Valid {
		modelAcc.ParentAccountID = parentID.String
	}
	return &modelAcc, nil
}

// ApplyEntry appends a signed ledger entry and adjusts the cached balance as
// one atomic unit. The account row is locked for the duration of the
// check-and-write; no external I/O happens inside the critical section.
func (r *PgxWalletRepository) ApplyEntry(ctx context.Context, entry domain.LedgerEntry) (decimal.Decimal, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	defer r.Rollback(ctx, tx)

	balance, err := lockAccountBalance(ctx, tx, entry.AccountID)
	if err != nil {
		return decimal.Zero, err
	}

	newBalance := balance.Add(entry.Amount)
	if newBalance.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: account %s balance %s, entry %s",
			apperrors.ErrInsufficientFunds, entry.AccountID, balance.String(), entry.Amount.String())
	}

	if err := insertLedgerEntry(ctx, tx, mapping.ToModelLedgerEntry(entry)); err != nil {
		return decimal.Zero, err
	}
	if err := updateAccountBalance(ctx, tx, entry.AccountID, newBalance, entry.CreatedBy, entry.CreatedAt); err != nil {
		return decimal.Zero, err
	}

	if err := r.Commit(ctx, tx); err != nil {
		return decimal.Zero, err
	}
	return newBalance, nil
}

// ApplyTransfer appends a debit entry and a credit entry on two different
// accounts as one atomic unit. Row locks are always taken in ascending
// account-ID order, regardless of which account is debited, so two concurrent
// transfers in opposite directions acquire locks in the same order and cannot
// deadlock.
func (r *PgxWalletRepository) ApplyTransfer(ctx context.Context, out domain.LedgerEntry, in domain.LedgerEntry) (decimal.Decimal, decimal.Decimal, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	defer r.Rollback(ctx, tx)

	firstID, secondID := out.AccountID, in.AccountID
	if firstID > secondID {
		firstID, secondID = secondID, firstID
	}

	balances := make(map[string]decimal.Decimal, 2)
	for _, accID := range []string{firstID, secondID} {
		bal, err := lockAccountBalance(ctx, tx, accID)
		if err != nil {
			return decimal.Zero, decimal.Zero, err
		}
		balances[accID] = bal
	}

	newFrom := balances[out.AccountID].Add(out.Amount)
	if newFrom.IsNegative() {
		return decimal.Zero, decimal.Zero, fmt.Errorf("%w: account %s balance %s, transfer %s",
			apperrors.ErrInsufficientFunds, out.AccountID, balances[out.AccountID].String(), out.Amount.Neg().String())
	}
	newTo := balances[in.AccountID].Add(in.Amount)

	batch := &pgx.Batch{}
	queueLedgerEntry(batch, mapping.ToModelLedgerEntry(out))
	queueLedgerEntry(batch, mapping.ToModelLedgerEntry(in))
	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return decimal.Zero, decimal.Zero, apperrors.NewAppError(500, "failed to insert transfer ledger entries", err)
	}

	if err := updateAccountBalance(ctx, tx, out.AccountID, newFrom, out.CreatedBy, out.CreatedAt); err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	if err := updateAccountBalance(ctx, tx, in.AccountID, newTo, in.CreatedBy, in.CreatedAt); err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	if err := r.Commit(ctx, tx); err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return newFrom, newTo, nil
}

// lockAccountBalance selects an account balance with a row lock inside tx.
func lockAccountBalance(ctx context.Context, tx pgx.Tx, accountID string) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := tx.QueryRow(ctx, `SELECT balance FROM accounts WHERE account_id = $1 AND is_active = TRUE FOR UPDATE`, accountID).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, accountID)
		}
		return decimal.Zero, fmt.Errorf("failed to lock account %s: %w", accountID, err)
	}
	return balance, nil
}

const insertEntryQuery = `
	INSERT INTO ledger_entries (entry_id, account_id, amount, kind, description, reference_type, reference_id, created_at, created_by)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
`

func insertLedgerEntry(ctx context.Context, tx pgx.Tx, e models.LedgerEntry) error {
	_, err := tx.Exec(ctx, insertEntryQuery,
		e.EntryID, e.AccountID, e.Amount, e.Kind, e.Description, e.ReferenceType, e.ReferenceID, e.CreatedAt, e.CreatedBy)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert ledger entry "+e.EntryID, err)
	}
	return nil
}

func queueLedgerEntry(batch *pgx.Batch, e models.LedgerEntry) {
	batch.Queue(insertEntryQuery,
		e.EntryID, e.AccountID, e.Amount, e.Kind, e.Description, e.ReferenceType, e.ReferenceID, e.CreatedAt, e.CreatedBy)
}

func updateAccountBalance(ctx context.Context, tx pgx.Tx, accountID string, newBalance decimal.Decimal, userID string, now time.Time) error {
	cmdTag, err := tx.Exec(ctx,
		`UPDATE accounts SET balance = $2, last_updated_at = $3, last_updated_by = $4 WHERE account_id = $1`,
		accountID, newBalance, now, userID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update balance for account "+accountID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: account %s not found during balance update", apperrors.ErrNotFound, accountID)
	}
	return nil
}

// ListEntriesByAccount retrieves a paginated list of ledger entries, newest first.
func (r *PgxWalletRepository) ListEntriesByAccount(ctx context.Context, accountID string, limit int, offset int) ([]domain.LedgerEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT entry_id, account_id, amount, kind, description, reference_type, reference_id, created_at, created_by
		FROM ledger_entries
		WHERE account_id = $1
		ORDER BY created_at DESC, entry_id DESC
		LIMIT $2 OFFSET $3;
	`
	rows, err := r.Pool.Query(ctx, query, accountID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger entries for account %s: %w", accountID, err)
	}
	defer rows.Close()

	entries := []models.LedgerEntry{}
	for rows.Next() {
		var e models.LedgerEntry
		err := rows.Scan(&e.EntryID, &e.AccountID, &e.Amount, &e.Kind, &e.Description, &e.ReferenceType, &e.ReferenceID, &e.CreatedAt, &e.CreatedBy)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry row for account %s: %w", accountID, err)
		}
		entries = append(entries, e)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating ledger entry rows for account %s: %w", accountID, rows.Err())
	}

	return mapping.ToDomainLedgerEntrySlice(entries), nil
}

// SumEntriesByAccount returns the sum of all signed entry amounts for an account.
func (r *PgxWalletRepository) SumEntriesByAccount(ctx context.Context, accountID string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.Pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM ledger_entries WHERE account_id = $1`, accountID).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum ledger entries for account %s: %w", accountID, err)
	}
	return sum, nil
}

// IsAncestorAccount walks the parent chain of accountID and reports whether
// ancestorID appears in it. The starting account itself does not count as its
// own ancestor.
func (r *PgxWalletRepository) IsAncestorAccount(ctx context.Context, ancestorID string, accountID string) (bool, error) {
	query := `
		WITH RECURSIVE chain AS (
			SELECT account_id, parent_account_id
			FROM accounts
			WHERE account_id = $2
			UNION ALL
			SELECT a.account_id, a.parent_account_id
			FROM accounts a
			JOIN chain c ON a.account_id = c.parent_account_id
		)
		SELECT EXISTS (
			SELECT 1 FROM chain WHERE account_id = $1 AND account_id <> $2
		);
	`
	var isAncestor bool
	if err := r.Pool.QueryRow(ctx, query, ancestorID, accountID).Scan(&isAncestor); err != nil {
		return false, fmt.Errorf("failed to resolve ancestry of account %s: %w", accountID, err)
	}
	return isAncestor, nil
}
