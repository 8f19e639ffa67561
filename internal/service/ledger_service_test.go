package service

import (
	"errors"
	"testing"

	"taskpay/internal/domain"
)

func newLedgerFixture(userIDs ...uint) (*LedgerService, *fakeAccounts, *fakeTxLog) {
	accounts := newFakeAccounts(userIDs...)
	txlog := newFakeTxLog()
	return NewLedgerService(fakeRunner{}, accounts, txlog), accounts, txlog
}

func TestLedgerCreditRecordsTransactionAndBalance(t *testing.T) {
	svc, accounts, txlog := newLedgerFixture(1)

	tr, err := svc.Credit(Entry{
		UserID:      1,
		Points:      500,
		Type:        domain.TxTypeTaskReward,
		Description: "task reward",
		Reference:   "task-1",
	})
	if err != nil {
		t.Fatalf("Credit: %v", err)
	}
	if tr.Status != domain.TxStatusCompleted {
		t.Errorf("status = %s, want COMPLETED", tr.Status)
	}
	if got := accounts.points(1); got != 500 {
		t.Errorf("points balance = %d, want 500", got)
	}
	if got := txlog.sumPoints(1); got != 500 {
		t.Errorf("transaction log sum = %d, want 500", got)
	}
}

func TestLedgerDebitNegatesDeltas(t *testing.T) {
	svc, accounts, _ := newLedgerFixture(1)
	accounts.setPoints(1, 1000)

	if _, err := svc.Debit(Entry{UserID: 1, Points: 300, Type: domain.TxTypeAdjustment, Description: "correction"}); err != nil {
		t.Fatalf("Debit: %v", err)
	}
	if got := accounts.points(1); got != 700 {
		t.Errorf("points balance = %d, want 700", got)
	}
}

func TestLedgerRejectsNegativeBalance(t *testing.T) {
	svc, accounts, txlog := newLedgerFixture(1)
	accounts.setPoints(1, 100)

	_, err := svc.Credit(Entry{UserID: 1, Points: -200, Type: domain.TxTypeAdjustment})
	if !errors.Is(err, domain.ErrInsufficientBalance) {
		t.Fatalf("err = %v, want ErrInsufficientBalance", err)
	}
	// No partial state: neither a transaction row nor a balance change.
	if got := accounts.points(1); got != 100 {
		t.Errorf("points balance = %d, want 100", got)
	}
	if got := txlog.sumPoints(1); got != 0 {
		t.Errorf("transaction log sum = %d, want 0", got)
	}
}

func TestLedgerBalanceEqualsSumOfDeltas(t *testing.T) {
	svc, accounts, txlog := newLedgerFixture(1)

	deltas := []int64{1000, -200, 50, -50, 700}
	for _, d := range deltas {
		if _, err := svc.Credit(Entry{UserID: 1, Points: d, Type: domain.TxTypeAdjustment, Description: "seq"}); err != nil {
			t.Fatalf("Credit(%d): %v", d, err)
		}
	}
	if accounts.points(1) != txlog.sumPoints(1) {
		t.Errorf("balance %d != sum of deltas %d", accounts.points(1), txlog.sumPoints(1))
	}
	if got := accounts.points(1); got != 1500 {
		t.Errorf("balance = %d, want 1500", got)
	}
}

func TestLedgerCashCreditsAccumulateEarnings(t *testing.T) {
	svc, accounts, _ := newLedgerFixture(1)

	if _, err := svc.Credit(Entry{UserID: 1, AmountCents: 2500, Type: domain.TxTypeBonus, Description: "cash bonus"}); err != nil {
		t.Fatalf("Credit: %v", err)
	}
	accounts.mu.Lock()
	earned := accounts.accounts[1].TotalEarningsCents
	cash := accounts.accounts[1].CashBalanceCents
	accounts.mu.Unlock()
	if cash != 2500 {
		t.Errorf("cash balance = %d, want 2500", cash)
	}
	if earned != 2500 {
		t.Errorf("total earnings = %d, want 2500", earned)
	}
}
