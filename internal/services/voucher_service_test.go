package services

import (
	"context"
	"errors"
	"storefront/internal/models"
	"testing"
	"time"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type voucherFixture struct {
	users    *fakeUserRepo
	vouchers *fakeVoucherRepo
	svc      *voucherService
}

func newVoucherFixture(vouchers ...*models.Voucher) *voucherFixture {
	users := newFakeUserRepo(
		&models.User{ID: 1, Name: "Alice", Email: "alice@example.com", Role: "user"},
		&models.User{ID: 2, Name: "Sam", Email: "sam@example.com", Role: "user", IsSubscriber: true},
	)
	repo := newFakeVoucherRepo(vouchers...)
	repo.users = users
	svc := NewVoucherService(repo, users).(*voucherService)
	svc.now = func() time.Time { return testNow }
	return &voucherFixture{users: users, vouchers: repo, svc: svc}
}

func (f *voucherFixture) assign(userID, voucherID uint, status models.UserVoucherStatus) {
	_ = f.users.AssignVoucher(context.Background(), &models.UserVoucher{UserID: userID, VoucherID: voucherID, Status: string(status)})
}

func save10() *models.Voucher {
	return &models.Voucher{
		ID:                 1,
		Code:               "SAVE10",
		DiscountPercentage: dec("10"),
		MaxDiscount:        dec("5000"),
		ExpiresAt:          testNow.Add(24 * time.Hour),
	}
}

func TestApplyVoucherCapsDiscount(t *testing.T) {
	f := newVoucherFixture(save10())
	f.assign(1, 1, models.VoucherAvailable)

	quote, err := f.svc.ApplyVoucher(context.Background(), 1, "save10", dec("100000"))
	if err != nil {
		t.Fatalf("ApplyVoucher() error = %v", err)
	}
	if !quote.Discount.Equal(dec("5000")) {
		t.Fatalf("discount = %s, want 5000", quote.Discount)
	}
	if !quote.Total.Equal(dec("95000")) {
		t.Fatalf("total = %s, want 95000", quote.Total)
	}
	if got := f.users.voucherStatus(1, 1); got != string(models.VoucherUsed) {
		t.Fatalf("user voucher status = %q, want used", got)
	}
	if !f.vouchers.vouchers[1].IsUsed {
		t.Fatal("voucher should be marked used")
	}
}

func TestApplyVoucherRejectsExpiredEvenIfUnused(t *testing.T) {
	v := save10()
	v.ExpiresAt = testNow.Add(-time.Minute)
	f := newVoucherFixture(v)
	f.assign(1, 1, models.VoucherAvailable)

	_, err := f.svc.ApplyVoucher(context.Background(), 1, "SAVE10", dec("100000"))
	if !errors.Is(err, errVoucherExpired) {
		t.Fatalf("error = %v, want %v", err, errVoucherExpired)
	}
	if got := f.users.voucherStatus(1, 1); got != string(models.VoucherExpired) {
		t.Fatalf("user voucher status = %q, want expired", got)
	}
	if f.vouchers.vouchers[1].IsUsed {
		t.Fatal("expired voucher must not be marked used")
	}
}

func TestQuoteDoesNotChangeState(t *testing.T) {
	v := save10()
	v.ExpiresAt = testNow
	f := newVoucherFixture(v)
	f.assign(1, 1, models.VoucherAvailable)
	user, _ := f.users.GetByID(context.Background(), 1)

	if _, err := f.svc.Quote(context.Background(), user, "SAVE10", dec("1000")); !errors.Is(err, errVoucherExpired) {
		t.Fatalf("error = %v, want expired", err)
	}
	if got := f.users.voucherStatus(1, 1); got != string(models.VoucherAvailable) {
		t.Fatalf("Quote changed user voucher status to %q", got)
	}
}

func TestApplyVoucherRejections(t *testing.T) {
	tests := []struct {
		name    string
		userID  uint
		code    string
		mutate  func(v *models.Voucher)
		assign  models.UserVoucherStatus
		wantErr error
	}{
		{name: "unknown code", userID: 1, code: "NOPE", assign: models.VoucherAvailable},
		{name: "already used", userID: 1, code: "SAVE10", mutate: func(v *models.Voucher) { v.IsUsed = true }, assign: models.VoucherAvailable, wantErr: errVoucherUsed},
		{name: "subscriber only", userID: 1, code: "SAVE10", mutate: func(v *models.Voucher) { v.SubscriberOnly = true }, assign: models.VoucherAvailable, wantErr: errVoucherSubscriber},
		{name: "not assigned", userID: 1, code: "SAVE10", wantErr: errVoucherNotAssigned},
		{name: "entry already used", userID: 1, code: "SAVE10", assign: models.VoucherUsed, wantErr: errVoucherUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := save10()
			if tt.mutate != nil {
				tt.mutate(v)
			}
			f := newVoucherFixture(v)
			if tt.assign != "" {
				f.assign(tt.userID, 1, tt.assign)
			}

			_, err := f.svc.ApplyVoucher(context.Background(), tt.userID, tt.code, dec("100"))
			if tt.wantErr == nil {
				var nf ErrNotFound
				if !errors.As(err, &nf) {
					t.Fatalf("error = %v, want ErrNotFound", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSubscriberOnlyVoucherForSubscriber(t *testing.T) {
	v := save10()
	v.SubscriberOnly = true
	f := newVoucherFixture(v)
	f.assign(2, 1, models.VoucherAvailable)

	if _, err := f.svc.ApplyVoucher(context.Background(), 2, "SAVE10", dec("20000")); err != nil {
		t.Fatalf("ApplyVoucher() error = %v", err)
	}
}

func TestApplyVoucherTwiceFails(t *testing.T) {
	f := newVoucherFixture(save10())
	f.assign(1, 1, models.VoucherAvailable)
	f.assign(2, 1, models.VoucherAvailable)

	if _, err := f.svc.ApplyVoucher(context.Background(), 1, "SAVE10", dec("100")); err != nil {
		t.Fatalf("first apply error = %v", err)
	}
	if _, err := f.svc.ApplyVoucher(context.Background(), 2, "SAVE10", dec("100")); !errors.Is(err, errVoucherUsed) {
		t.Fatalf("second apply error = %v, want %v", err, errVoucherUsed)
	}
}

func TestCreateVoucherValidation(t *testing.T) {
	f := newVoucherFixture(save10())
	valid := VoucherInput{Code: "summer", DiscountPercentage: dec("15"), MaxDiscount: dec("20000"), ExpiresAt: testNow.Add(time.Hour)}

	v, err := f.svc.CreateVoucher(context.Background(), valid)
	if err != nil {
		t.Fatalf("CreateVoucher() error = %v", err)
	}
	if v.Code != "SUMMER" {
		t.Fatalf("code = %q, want upper-cased", v.Code)
	}

	bad := []VoucherInput{
		{Code: "A", DiscountPercentage: dec("0"), MaxDiscount: dec("1"), ExpiresAt: testNow.Add(time.Hour)},
		{Code: "B", DiscountPercentage: dec("101"), MaxDiscount: dec("1"), ExpiresAt: testNow.Add(time.Hour)},
		{Code: "C", DiscountPercentage: dec("10"), MaxDiscount: dec("-1"), ExpiresAt: testNow.Add(time.Hour)},
		{Code: "D", DiscountPercentage: dec("10"), MaxDiscount: dec("1"), ExpiresAt: testNow},
	}
	for _, input := range bad {
		var br ErrBadRequest
		if _, err := f.svc.CreateVoucher(context.Background(), input); !errors.As(err, &br) {
			t.Errorf("CreateVoucher(%s) error = %v, want ErrBadRequest", input.Code, err)
		}
	}

	var conflict ErrConflict
	if _, err := f.svc.CreateVoucher(context.Background(), VoucherInput{Code: "save10", DiscountPercentage: dec("5"), MaxDiscount: dec("1"), ExpiresAt: testNow.Add(time.Hour)}); !errors.As(err, &conflict) {
		t.Fatalf("duplicate code error = %v, want ErrConflict", err)
	}
}

func TestAssignToUser(t *testing.T) {
	f := newVoucherFixture(save10())

	uv, err := f.svc.AssignToUser(context.Background(), 1, 1)
	if err != nil {
		t.Fatalf("AssignToUser() error = %v", err)
	}
	if uv.Status != string(models.VoucherAvailable) || uv.Voucher.Code != "SAVE10" {
		t.Fatalf("unexpected assignment %+v", uv)
	}

	var conflict ErrConflict
	if _, err := f.svc.AssignToUser(context.Background(), 1, 1); !errors.As(err, &conflict) {
		t.Fatalf("second assignment error = %v, want ErrConflict", err)
	}
	var nf ErrNotFound
	if _, err := f.svc.AssignToUser(context.Background(), 1, 99); !errors.As(err, &nf) {
		t.Fatalf("unknown user error = %v, want ErrNotFound", err)
	}
}

func TestApplyVoucherFailureLeavesVoucherUnused(t *testing.T) {
	f := newVoucherFixture(save10())
	f.assign(1, 1, models.VoucherAvailable)
	f.vouchers.redeemErr = errors.New("connection reset")

	if _, err := f.svc.ApplyVoucher(context.Background(), 1, "SAVE10", dec("100000")); err == nil {
		t.Fatal("ApplyVoucher() error = nil, want redeem failure")
	}
	if f.vouchers.vouchers[1].IsUsed {
		t.Fatal("voucher marked used after failed redemption")
	}
	if got := f.users.voucherStatus(1, 1); got != string(models.VoucherAvailable) {
		t.Fatalf("user voucher status = %q, want available", got)
	}

	f.vouchers.redeemErr = nil
	if _, err := f.svc.ApplyVoucher(context.Background(), 1, "SAVE10", dec("100000")); err != nil {
		t.Fatalf("retry ApplyVoucher() error = %v", err)
	}
	if !f.vouchers.vouchers[1].IsUsed {
		t.Fatal("voucher not marked used after retry")
	}
}
