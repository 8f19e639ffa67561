package service

import (
	"errors"
	"testing"

	"taskpay/config"
	"taskpay/internal/domain"
	"taskpay/internal/models"
)

type referralFixture struct {
	svc       *ReferralService
	accounts  *fakeAccounts
	txlog     *fakeTxLog
	referrals *fakeReferrals
	users     *fakeUsers
	notifier  *recordingNotifier
}

// newReferralFixture builds the chain u1 <- u2 <- u3: user 3 was recruited
// by user 2, who was recruited by user 1.
func newReferralFixture(levels ...models.ReferralLevel) *referralFixture {
	accounts := newFakeAccounts(1, 2, 3)
	txlog := newFakeTxLog()
	referrals := newFakeReferrals(levels...)
	users := newFakeUsers(
		&models.User{ID: 1},
		&models.User{ID: 2},
		&models.User{ID: 3},
	)
	users.SetReferrer(2, 1)
	users.SetReferrer(3, 2)
	notifier := &recordingNotifier{}
	ledger := NewLedgerService(fakeRunner{}, accounts, txlog)
	svc := NewReferralService(&config.ReferralConfig{MaxLevels: 10}, fakeRunner{}, ledger, referrals, users, notifier)
	return &referralFixture{svc: svc, accounts: accounts, txlog: txlog, referrals: referrals, users: users, notifier: notifier}
}

func percentLevel(level int, pct float64) models.ReferralLevel {
	return models.ReferralLevel{Level: level, CommissionType: domain.CommissionPercentage, CommissionValue: pct, IsActive: true}
}

func flatLevel(level int, points float64) models.ReferralLevel {
	return models.ReferralLevel{Level: level, CommissionType: domain.CommissionFlat, CommissionValue: points, IsActive: true}
}

func TestDistributeWalksAncestry(t *testing.T) {
	f := newReferralFixture(percentLevel(1, 10), flatLevel(2, 5))

	if err := f.svc.Distribute(3, "task-42", 1000, domain.SourceTaskReward); err != nil {
		t.Fatalf("Distribute: %v", err)
	}
	// Level 1 is user 3's direct referrer, level 2 their referrer.
	if got := f.accounts.points(2); got != 100 {
		t.Errorf("level 1 (user 2) points = %d, want 10%% of 1000 = 100", got)
	}
	if got := f.accounts.points(1); got != 5 {
		t.Errorf("level 2 (user 1) points = %d, want flat 5", got)
	}
	if got := f.accounts.points(3); got != 0 {
		t.Errorf("source user points = %d, want 0 (fan-out never credits the source)", got)
	}
	if n := f.referrals.earningCount(); n != 2 {
		t.Errorf("earning rows = %d, want 2", n)
	}
	if types := f.notifier.typesFor(2); len(types) != 1 || types[0] != "REFERRAL_CREDITED" {
		t.Errorf("user 2 notifications = %v, want [REFERRAL_CREDITED]", types)
	}
}

func TestDistributeIsIdempotent(t *testing.T) {
	f := newReferralFixture(percentLevel(1, 10), flatLevel(2, 5))

	if err := f.svc.Distribute(3, "task-42", 1000, domain.SourceTaskReward); err != nil {
		t.Fatalf("first Distribute: %v", err)
	}
	if err := f.svc.Distribute(3, "task-42", 1000, domain.SourceTaskReward); err != nil {
		t.Fatalf("second Distribute: %v", err)
	}
	if got := f.accounts.points(2); got != 100 {
		t.Errorf("user 2 points = %d, want 100 (credited once)", got)
	}
	if got := f.accounts.points(1); got != 5 {
		t.Errorf("user 1 points = %d, want 5 (credited once)", got)
	}
	if n := f.referrals.earningCount(); n != 2 {
		t.Errorf("earning rows = %d, want 2", n)
	}
}

func TestDistributeSkipsInactiveLevelWithoutTruncating(t *testing.T) {
	inactive := percentLevel(1, 10)
	inactive.IsActive = false
	f := newReferralFixture(inactive, percentLevel(2, 5))

	if err := f.svc.Distribute(3, "task-43", 1000, domain.SourceTaskReward); err != nil {
		t.Fatalf("Distribute: %v", err)
	}
	if got := f.accounts.points(2); got != 0 {
		t.Errorf("user 2 (inactive level) points = %d, want 0", got)
	}
	// The walk continues past the inactive slot to level 2.
	if got := f.accounts.points(1); got != 50 {
		t.Errorf("user 1 points = %d, want 5%% of 1000 = 50", got)
	}
}

func TestDistributeStopsAtRoot(t *testing.T) {
	f := newReferralFixture(percentLevel(1, 10), percentLevel(2, 5), percentLevel(3, 2))

	// User 2 has only one ancestor, so level 2 ends the walk at the root.
	if err := f.svc.Distribute(2, "task-44", 1000, domain.SourceTaskReward); err != nil {
		t.Fatalf("Distribute: %v", err)
	}
	if got := f.accounts.points(1); got != 100 {
		t.Errorf("user 1 points = %d, want 100", got)
	}
	if n := f.referrals.earningCount(); n != 1 {
		t.Errorf("earning rows = %d, want 1 (walk ends at root)", n)
	}
}

func TestDistributeHonorsMaxLevels(t *testing.T) {
	f := newReferralFixture(percentLevel(1, 10), percentLevel(2, 5))
	f.svc.cfg = &config.ReferralConfig{MaxLevels: 1}

	if err := f.svc.Distribute(3, "task-45", 1000, domain.SourceTaskReward); err != nil {
		t.Fatalf("Distribute: %v", err)
	}
	if got := f.accounts.points(2); got != 100 {
		t.Errorf("user 2 points = %d, want 100", got)
	}
	if got := f.accounts.points(1); got != 0 {
		t.Errorf("user 1 points = %d, want 0 (beyond the depth ceiling)", got)
	}
}

func TestDistributeSkipsZeroShares(t *testing.T) {
	f := newReferralFixture(percentLevel(1, 0))

	if err := f.svc.Distribute(3, "task-46", 1000, domain.SourceTaskReward); err != nil {
		t.Fatalf("Distribute: %v", err)
	}
	if n := f.referrals.earningCount(); n != 0 {
		t.Errorf("earning rows = %d, want 0 for a zero share", n)
	}

	// Non-positive source values are a no-op, not an error.
	if err := f.svc.Distribute(3, "task-47", 0, domain.SourceTaskReward); err != nil {
		t.Fatalf("zero value: %v", err)
	}
	if err := f.svc.Distribute(3, "", 1000, domain.SourceTaskReward); err == nil {
		t.Error("missing source event id should be rejected")
	}
}

func TestClaimCode(t *testing.T) {
	f := newReferralFixture(percentLevel(1, 10))
	f.referrals.codes["ALPHA111"] = &models.ReferralCode{UserID: 1, Code: "ALPHA111", IsActive: true}
	f.referrals.codes["GAMMA333"] = &models.ReferralCode{UserID: 3, Code: "GAMMA333", IsActive: true}
	f.users.users[4] = &models.User{ID: 4}

	var verr *domain.ValidationError
	if err := f.svc.ClaimCode("NOPE", 4); !errors.As(err, &verr) {
		t.Errorf("unknown code: err = %v, want ValidationError", err)
	}
	if err := f.svc.ClaimCode("ALPHA111", 1); !errors.As(err, &verr) {
		t.Errorf("own code: err = %v, want ValidationError", err)
	}
	// User 1 is already an ancestor of user 3; claiming user 3's code would
	// close the loop.
	if err := f.svc.ClaimCode("GAMMA333", 1); !errors.As(err, &verr) {
		t.Errorf("cycle: err = %v, want ValidationError", err)
	}

	if err := f.svc.ClaimCode("ALPHA111", 4); err != nil {
		t.Fatalf("ClaimCode: %v", err)
	}
	if ref, _ := f.users.ReferrerOf(4); ref != 1 {
		t.Errorf("referrer of 4 = %d, want 1", ref)
	}
}
