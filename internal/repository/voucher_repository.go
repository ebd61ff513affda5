package repository

import (
	"context"
	"storefront/internal/models"
	"time"

	"gorm.io/gorm"
)

type VoucherRepository interface {
	Create(ctx context.Context, voucher *models.Voucher) error
	GetByID(ctx context.Context, id uint) (*models.Voucher, error)
	GetByCode(ctx context.Context, code string) (*models.Voucher, error)
	GetAll(ctx context.Context) ([]models.Voucher, error)
	Redeem(ctx context.Context, voucherID, userVoucherID uint) error
	Delete(ctx context.Context, id uint) error
}

type voucherRepository struct {
	db *gorm.DB
}

func NewVoucherRepository(db *gorm.DB) VoucherRepository {
	return &voucherRepository{db: db}
}

func (r *voucherRepository) Create(ctx context.Context, voucher *models.Voucher) error {
	return r.db.WithContext(ctx).Create(voucher).Error
}

func (r *voucherRepository) GetByID(ctx context.Context, id uint) (*models.Voucher, error) {
	var voucher models.Voucher
	if err := r.db.WithContext(ctx).First(&voucher, id).Error; err != nil {
		return nil, err
	}
	return &voucher, nil
}

func (r *voucherRepository) GetByCode(ctx context.Context, code string) (*models.Voucher, error) {
	var voucher models.Voucher
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&voucher).Error; err != nil {
		return nil, err
	}
	return &voucher, nil
}

func (r *voucherRepository) GetAll(ctx context.Context) ([]models.Voucher, error) {
	var vouchers []models.Voucher
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&vouchers).Error
	return vouchers, err
}

// Redeem flips the voucher's is_used flag and moves the holder's entry to
// used in one transaction. Both updates are conditional on the current
// state, so two concurrent redemptions cannot both succeed.
func (r *voucherRepository) Redeem(ctx context.Context, voucherID, userVoucherID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Voucher{}).
			Where("id = ? AND is_used = ?", voucherID, false).
			Update("is_used", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStatusChanged
		}

		res = tx.Model(&models.UserVoucher{}).
			Where("id = ? AND status = ?", userVoucherID, string(models.VoucherAvailable)).
			Updates(map[string]interface{}{
				"status":  string(models.VoucherUsed),
				"used_at": time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStatusChanged
		}
		return nil
	})
}

func (r *voucherRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Voucher{}, id).Error
}
