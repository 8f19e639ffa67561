package service

import (
	"errors"
	"sync"
	"time"

	"taskpay/internal/domain"
	"taskpay/internal/models"

	"gorm.io/gorm"
)

// ---------------------------------------------------------------------------
// In-memory fakes for the store interfaces. These let the tests drive the
// real service logic without a database.
// ---------------------------------------------------------------------------

// fakeRunner executes the unit of work directly. The fakes do not roll back,
// so tests assert on pre-mutation validation paths or on fully committed
// outcomes.
type fakeRunner struct{}

func (fakeRunner) Transact(fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

// ---

type fakeAccounts struct {
	mu       sync.Mutex
	accounts map[uint]*models.LedgerAccount
}

func newFakeAccounts(userIDs ...uint) *fakeAccounts {
	f := &fakeAccounts{accounts: make(map[uint]*models.LedgerAccount)}
	for _, id := range userIDs {
		f.accounts[id] = &models.LedgerAccount{UserID: id, Currency: "USD"}
	}
	return f
}

func (f *fakeAccounts) GetOrCreate(userID uint) (*models.LedgerAccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[userID]
	if !ok {
		a = &models.LedgerAccount{UserID: userID, Currency: "USD"}
		f.accounts[userID] = a
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAccounts) GetForUpdate(_ *gorm.DB, userID uint) (*models.LedgerAccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAccounts) ApplyDelta(_ *gorm.DB, userID uint, points, amountCents int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	a.PointsBalance += points
	a.CashBalanceCents += amountCents
	return nil
}

func (f *fakeAccounts) AddTotals(_ *gorm.DB, userID uint, earningsCents, withdrawalsCents int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	a.TotalEarningsCents += earningsCents
	a.TotalWithdrawalsCents += withdrawalsCents
	return nil
}

func (f *fakeAccounts) points(userID uint) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.accounts[userID].PointsBalance
}

func (f *fakeAccounts) setPoints(userID uint, points int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accounts[userID].PointsBalance = points
}

func (f *fakeAccounts) totalWithdrawals(userID uint) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.accounts[userID].TotalWithdrawalsCents
}

// ---

type fakeTxLog struct {
	mu      sync.Mutex
	nextID  uint
	entries []*models.Transaction
}

func newFakeTxLog() *fakeTxLog { return &fakeTxLog{} }

func (f *fakeTxLog) Create(_ *gorm.DB, t *models.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	t.ID = f.nextID
	t.CreatedAt = time.Now()
	cp := *t
	f.entries = append(f.entries, &cp)
	return nil
}

func (f *fakeTxLog) UpdateStatusByReference(_ *gorm.DB, reference, from, to string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.entries {
		if t.Reference == reference && t.Status == from {
			t.Status = to
		}
	}
	return nil
}

func (f *fakeTxLog) byReference(reference string) []*models.Transaction {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Transaction
	for _, t := range f.entries {
		if t.Reference == reference {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out
}

func (f *fakeTxLog) sumPoints(userID uint) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	var sum int64
	for _, t := range f.entries {
		if t.UserID == userID {
			sum += t.Points
		}
	}
	return sum
}

// ---

type fakeWithdrawals struct {
	mu     sync.Mutex
	nextID uint
	rows   map[uint]*models.Withdrawal
}

func newFakeWithdrawals() *fakeWithdrawals {
	return &fakeWithdrawals{rows: make(map[uint]*models.Withdrawal)}
}

func (f *fakeWithdrawals) Create(_ *gorm.DB, w *models.Withdrawal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	w.ID = f.nextID
	if w.CreatedAt.IsZero() {
		w.CreatedAt = time.Now()
	}
	cp := *w
	f.rows[w.ID] = &cp
	return nil
}

func (f *fakeWithdrawals) GetByID(id uint) (*models.Withdrawal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.rows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *w
	return &cp, nil
}

func (f *fakeWithdrawals) LastForCooldown(userID uint) (*models.Withdrawal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var last *models.Withdrawal
	for _, w := range f.rows {
		if w.UserID != userID {
			continue
		}
		switch w.Status {
		case domain.WithdrawalPending, domain.WithdrawalProcessing, domain.WithdrawalCompleted:
		default:
			continue
		}
		if last == nil || w.CreatedAt.After(last.CreatedAt) {
			last = w
		}
	}
	if last == nil {
		return nil, nil
	}
	cp := *last
	return &cp, nil
}

func (f *fakeWithdrawals) UpdateStatusIf(_ *gorm.DB, id uint, from []string, updates map[string]interface{}) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.rows[id]
	if !ok {
		return false, nil
	}
	eligible := false
	for _, s := range from {
		if w.Status == s {
			eligible = true
			break
		}
	}
	if !eligible {
		return false, nil
	}
	if v, ok := updates["status"]; ok {
		w.Status = v.(string)
	}
	if v, ok := updates["transaction_id"]; ok {
		w.TransactionID = v.(string)
	}
	if v, ok := updates["rejection_reason"]; ok {
		w.RejectionReason = v.(string)
	}
	if v, ok := updates["processed_at"]; ok {
		t := v.(time.Time)
		w.ProcessedAt = &t
	}
	return true, nil
}

func (f *fakeWithdrawals) seed(w *models.Withdrawal) *models.Withdrawal {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	w.ID = f.nextID
	cp := *w
	f.rows[w.ID] = &cp
	return w
}

// ---

type fakeUsers struct {
	mu    sync.Mutex
	users map[uint]*models.User
}

func newFakeUsers(users ...*models.User) *fakeUsers {
	f := &fakeUsers{users: make(map[uint]*models.User)}
	for _, u := range users {
		cp := *u
		f.users[u.ID] = &cp
	}
	return f
}

func (f *fakeUsers) GetByID(id uint) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) ReferrerOf(userID uint) (uint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok || u.ReferredByID == nil {
		return 0, nil
	}
	return *u.ReferredByID, nil
}

func (f *fakeUsers) SetReferrer(userID, referrerID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	rid := referrerID
	u.ReferredByID = &rid
	return nil
}

// ---

type fakePackages struct {
	pkgs map[uint]*models.Package
}

func newFakePackages(pkgs ...*models.Package) *fakePackages {
	f := &fakePackages{pkgs: make(map[uint]*models.Package)}
	for _, p := range pkgs {
		f.pkgs[p.ID] = p
	}
	return f
}

func (f *fakePackages) GetByID(id uint) (*models.Package, error) {
	p, ok := f.pkgs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

// ---

type fakeReferrals struct {
	mu       sync.Mutex
	levels   []models.ReferralLevel
	codes    map[string]*models.ReferralCode
	earnings []*models.ReferralEarning
}

func newFakeReferrals(levels ...models.ReferralLevel) *fakeReferrals {
	return &fakeReferrals{levels: levels, codes: make(map[string]*models.ReferralCode)}
}

func (f *fakeReferrals) Levels() ([]models.ReferralLevel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.ReferralLevel, len(f.levels))
	copy(out, f.levels)
	return out, nil
}

func (f *fakeReferrals) GetCodeOwner(code string) (*models.ReferralCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rc, ok := f.codes[code]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *rc
	return &cp, nil
}

func (f *fakeReferrals) EarningExists(sourceEventID string, level int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.earnings {
		if e.SourceEventID == sourceEventID && e.Level == level {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeReferrals) CreateEarning(_ *gorm.DB, e *models.ReferralEarning) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.earnings {
		if existing.SourceEventID == e.SourceEventID && existing.UserID == e.UserID && existing.Level == e.Level {
			return gorm.ErrDuplicatedKey
		}
	}
	cp := *e
	cp.ID = uint(len(f.earnings) + 1)
	f.earnings = append(f.earnings, &cp)
	return nil
}

func (f *fakeReferrals) earningCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.earnings)
}

// ---

type notifierEvent struct {
	UserID uint
	Type   string
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []notifierEvent
	fail   error
}

func (n *recordingNotifier) Notify(userID uint, notifType, _, _ string, _ map[string]interface{}) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail != nil {
		return n.fail
	}
	n.events = append(n.events, notifierEvent{UserID: userID, Type: notifType})
	return nil
}

func (n *recordingNotifier) typesFor(userID uint) []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []string
	for _, e := range n.events {
		if e.UserID == userID {
			out = append(out, e.Type)
		}
	}
	return out
}

var errBoom = errors.New("boom")
