package service

import (
	"encoding/json"

	"taskpay/internal/domain"
	"taskpay/internal/models"

	"gorm.io/gorm"
)

// TxRunner runs a function inside one atomic unit of work. The gorm-backed
// implementation wraps db.Transaction; tests substitute a passthrough.
type TxRunner interface {
	Transact(fn func(tx *gorm.DB) error) error
}

type GormTxRunner struct {
	DB *gorm.DB
}

func (r GormTxRunner) Transact(fn func(tx *gorm.DB) error) error {
	return r.DB.Transaction(fn)
}

// AccountStore is the minimal ledger-account interface the services need.
type AccountStore interface {
	GetOrCreate(userID uint) (*models.LedgerAccount, error)
	GetForUpdate(tx *gorm.DB, userID uint) (*models.LedgerAccount, error)
	ApplyDelta(tx *gorm.DB, userID uint, points, amountCents int64) error
	AddTotals(tx *gorm.DB, userID uint, earningsCents, withdrawalsCents int64) error
}

// TransactionStore is the minimal transaction-log interface.
type TransactionStore interface {
	Create(tx *gorm.DB, t *models.Transaction) error
	UpdateStatusByReference(tx *gorm.DB, reference, from, to string) error
}

// Entry describes one balance mutation: signed deltas plus the audit fields
// of the transaction row that records it.
type Entry struct {
	UserID      uint
	Points      int64
	AmountCents int64
	Type        string
	Status      string // defaults to COMPLETED
	Description string
	Reference   string
	Metadata    map[string]interface{}
}

// LedgerService guards the two-part invariant of the ledger: every balance
// change is paired with exactly one transaction row, inside one database
// transaction, and balances never go negative.
type LedgerService struct {
	runner   TxRunner
	accounts AccountStore
	txlog    TransactionStore
}

func NewLedgerService(runner TxRunner, accounts AccountStore, txlog TransactionStore) *LedgerService {
	return &LedgerService{runner: runner, accounts: accounts, txlog: txlog}
}

// Apply performs one mutation inside the caller's transaction. The account
// row is locked for the duration, which serializes concurrent mutations for
// the same user. The account must already exist (accounts are created at
// registration).
func (s *LedgerService) Apply(tx *gorm.DB, e Entry) (*models.Transaction, error) {
	acc, err := s.accounts.GetForUpdate(tx, e.UserID)
	if err != nil {
		return nil, err
	}
	if acc.PointsBalance+e.Points < 0 || acc.CashBalanceCents+e.AmountCents < 0 {
		return nil, domain.ErrInsufficientBalance
	}
	status := e.Status
	if status == "" {
		status = domain.TxStatusCompleted
	}
	var metadata string
	if e.Metadata != nil {
		b, _ := json.Marshal(e.Metadata)
		metadata = string(b)
	}
	t := &models.Transaction{
		UserID:      e.UserID,
		Type:        e.Type,
		Status:      status,
		Points:      e.Points,
		AmountCents: e.AmountCents,
		Description: e.Description,
		Reference:   e.Reference,
		Metadata:    metadata,
	}
	if err := s.txlog.Create(tx, t); err != nil {
		return nil, err
	}
	if err := s.accounts.ApplyDelta(tx, e.UserID, e.Points, e.AmountCents); err != nil {
		return nil, err
	}
	if e.AmountCents > 0 {
		if err := s.accounts.AddTotals(tx, e.UserID, e.AmountCents, 0); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Credit records a balance mutation in its own unit of work.
func (s *LedgerService) Credit(e Entry) (*models.Transaction, error) {
	var t *models.Transaction
	err := s.runner.Transact(func(tx *gorm.DB) error {
		var err error
		t, err = s.Apply(tx, e)
		return err
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Debit is a credit with negated deltas.
func (s *LedgerService) Debit(e Entry) (*models.Transaction, error) {
	e.Points = -e.Points
	e.AmountCents = -e.AmountCents
	return s.Credit(e)
}

// AvailableBalance returns the points a user can still commit to a new
// withdrawal. Holds are materialized debits, so the held points of
// non-terminal withdrawals are already subtracted from the stored balance.
func (s *LedgerService) AvailableBalance(userID uint) (int64, error) {
	acc, err := s.accounts.GetOrCreate(userID)
	if err != nil {
		return 0, err
	}
	return acc.PointsBalance, nil
}

// ResolveReference transitions the PENDING transaction rows carrying the
// given reference (used when a withdrawal reaches a terminal state).
func (s *LedgerService) ResolveReference(tx *gorm.DB, reference, to string) error {
	return s.txlog.UpdateStatusByReference(tx, reference, domain.TxStatusPending, to)
}

// RecordWithdrawalTotal bumps the cumulative withdrawn counter on approval.
func (s *LedgerService) RecordWithdrawalTotal(tx *gorm.DB, userID uint, amountCents int64) error {
	return s.accounts.AddTotals(tx, userID, 0, amountCents)
}
