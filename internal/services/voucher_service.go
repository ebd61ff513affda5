package services

import (
	"context"
	"errors"
	"log"
	"storefront/internal/models"
	"storefront/internal/repository"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	errVoucherUsed        = ErrBadRequest("voucher has already been used")
	errVoucherExpired     = ErrBadRequest("voucher has expired")
	errVoucherSubscriber  = ErrForbidden("voucher is only available to subscribers")
	errVoucherNotAssigned = ErrForbidden("voucher is not assigned to this user")
	errVoucherUnavailable = ErrBadRequest("voucher is no longer available")
)

type VoucherInput struct {
	Code               string          `json:"code" binding:"required"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
	MaxDiscount        decimal.Decimal `json:"max_discount"`
	SubscriberOnly     bool            `json:"subscriber_only"`
	ExpiresAt          time.Time       `json:"expires_at" binding:"required"`
}

// VoucherQuote is the outcome of checking a voucher against a subtotal.
type VoucherQuote struct {
	Voucher     *models.Voucher     `json:"voucher"`
	UserVoucher *models.UserVoucher `json:"-"`
	Subtotal    decimal.Decimal     `json:"subtotal"`
	Discount    decimal.Decimal     `json:"discount"`
	Total       decimal.Decimal     `json:"total"`
}

type VoucherService interface {
	CreateVoucher(ctx context.Context, input VoucherInput) (*models.Voucher, error)
	GetAllVouchers(ctx context.Context) ([]models.Voucher, error)
	GetVoucherByID(ctx context.Context, id uint) (*models.Voucher, error)
	DeleteVoucher(ctx context.Context, id uint) error
	AssignToUser(ctx context.Context, voucherID, userID uint) (*models.UserVoucher, error)

	// Quote validates code for user and computes the discount without
	// changing any state.
	Quote(ctx context.Context, user *models.User, code string, subtotal decimal.Decimal) (*VoucherQuote, error)
	// PrepareRedemption is Quote for a checkout that will redeem the voucher;
	// it records expiry on the holder's entry.
	PrepareRedemption(ctx context.Context, user *models.User, code string, subtotal decimal.Decimal) (*VoucherQuote, error)
	// ApplyVoucher validates code for the user and redeems it.
	ApplyVoucher(ctx context.Context, userID uint, code string, subtotal decimal.Decimal) (*VoucherQuote, error)
	// Redeem marks a quoted voucher as used by its holder.
	Redeem(ctx context.Context, quote *VoucherQuote) error
}

type voucherService struct {
	voucherRepo repository.VoucherRepository
	userRepo    repository.UserRepository
	now         func() time.Time
}

func NewVoucherService(voucherRepo repository.VoucherRepository, userRepo repository.UserRepository) VoucherService {
	return &voucherService{voucherRepo: voucherRepo, userRepo: userRepo, now: time.Now}
}

func (s *voucherService) CreateVoucher(ctx context.Context, input VoucherInput) (*models.Voucher, error) {
	code := strings.ToUpper(strings.TrimSpace(input.Code))
	if code == "" {
		return nil, ErrBadRequest("code is required")
	}
	if input.DiscountPercentage.LessThanOrEqual(decimal.Zero) || input.DiscountPercentage.GreaterThan(decimal.NewFromInt(100)) {
		return nil, ErrBadRequest("discount percentage must be between 0 and 100")
	}
	if input.MaxDiscount.IsNegative() {
		return nil, ErrBadRequest("max discount must not be negative")
	}
	if !input.ExpiresAt.After(s.now()) {
		return nil, ErrBadRequest("expiry must be in the future")
	}
	if _, err := s.voucherRepo.GetByCode(ctx, code); err == nil {
		return nil, ErrConflict("voucher code already exists")
	} else if !isNotFound(err) {
		return nil, err
	}

	voucher := &models.Voucher{
		Code:               code,
		DiscountPercentage: input.DiscountPercentage,
		MaxDiscount:        input.MaxDiscount,
		SubscriberOnly:     input.SubscriberOnly,
		ExpiresAt:          input.ExpiresAt,
	}
	if err := s.voucherRepo.Create(ctx, voucher); err != nil {
		return nil, err
	}
	return voucher, nil
}

func (s *voucherService) GetAllVouchers(ctx context.Context) ([]models.Voucher, error) {
	return s.voucherRepo.GetAll(ctx)
}

func (s *voucherService) GetVoucherByID(ctx context.Context, id uint) (*models.Voucher, error) {
	voucher, err := s.voucherRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "voucher")
	}
	return voucher, nil
}

func (s *voucherService) DeleteVoucher(ctx context.Context, id uint) error {
	if _, err := s.voucherRepo.GetByID(ctx, id); err != nil {
		return notFound(err, "voucher")
	}
	return s.voucherRepo.Delete(ctx, id)
}

func (s *voucherService) AssignToUser(ctx context.Context, voucherID, userID uint) (*models.UserVoucher, error) {
	voucher, err := s.voucherRepo.GetByID(ctx, voucherID)
	if err != nil {
		return nil, notFound(err, "voucher")
	}
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, notFound(err, "user")
	}
	if !voucher.Usable(s.now()) {
		return nil, ErrBadRequest("voucher is used or expired")
	}
	if _, err := s.userRepo.GetVoucher(ctx, userID, voucherID); err == nil {
		return nil, ErrConflict("voucher already assigned to this user")
	} else if !isNotFound(err) {
		return nil, err
	}

	uv := &models.UserVoucher{UserID: userID, VoucherID: voucherID, Status: string(models.VoucherAvailable)}
	if err := s.userRepo.AssignVoucher(ctx, uv); err != nil {
		return nil, err
	}
	uv.Voucher = *voucher
	return uv, nil
}

func (s *voucherService) Quote(ctx context.Context, user *models.User, code string, subtotal decimal.Decimal) (*VoucherQuote, error) {
	return s.check(ctx, user, code, subtotal, false)
}

func (s *voucherService) PrepareRedemption(ctx context.Context, user *models.User, code string, subtotal decimal.Decimal) (*VoucherQuote, error) {
	return s.check(ctx, user, code, subtotal, true)
}

func (s *voucherService) ApplyVoucher(ctx context.Context, userID uint, code string, subtotal decimal.Decimal) (*VoucherQuote, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, "user")
	}
	quote, err := s.PrepareRedemption(ctx, user, code, subtotal)
	if err != nil {
		return nil, err
	}
	if err := s.Redeem(ctx, quote); err != nil {
		return nil, err
	}
	return quote, nil
}

func (s *voucherService) Redeem(ctx context.Context, quote *VoucherQuote) error {
	if err := s.voucherRepo.Redeem(ctx, quote.Voucher.ID, quote.UserVoucher.ID); err != nil {
		if errors.Is(err, repository.ErrStatusChanged) {
			return errVoucherUsed
		}
		return err
	}
	quote.Voucher.IsUsed = true
	quote.UserVoucher.Status = string(models.VoucherUsed)
	return nil
}

// check runs the redemption rules in order: existence, used, expiry,
// subscriber restriction, assignment. An expired voucher is rejected even
// when it was never used; with markExpired the holder's entry is moved to
// expired as well.
func (s *voucherService) check(ctx context.Context, user *models.User, code string, subtotal decimal.Decimal, markExpired bool) (*VoucherQuote, error) {
	if subtotal.IsNegative() {
		return nil, ErrBadRequest("subtotal must not be negative")
	}
	now := s.now()

	voucher, err := s.voucherRepo.GetByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, notFound(err, "voucher")
	}
	if voucher.IsUsed {
		return nil, errVoucherUsed
	}

	uv, err := s.userRepo.GetVoucher(ctx, user.ID, voucher.ID)
	if err != nil && !isNotFound(err) {
		return nil, err
	}

	if voucher.Expired(now) {
		if markExpired && uv != nil && uv.Status == string(models.VoucherAvailable) {
			if err := s.userRepo.UpdateVoucherStatus(ctx, uv.ID, string(models.VoucherExpired)); err != nil {
				log.Printf("Warning: failed to mark voucher %d expired for user %d: %v", voucher.ID, user.ID, err)
			}
		}
		return nil, errVoucherExpired
	}
	if voucher.SubscriberOnly && !user.IsActiveSubscriber(now) {
		return nil, errVoucherSubscriber
	}
	if uv == nil {
		return nil, errVoucherNotAssigned
	}
	if uv.Status != string(models.VoucherAvailable) {
		return nil, errVoucherUnavailable
	}

	discount := voucher.DiscountFor(subtotal)
	return &VoucherQuote{
		Voucher:     voucher,
		UserVoucher: uv,
		Subtotal:    subtotal,
		Discount:    discount,
		Total:       subtotal.Sub(discount),
	}, nil
}
