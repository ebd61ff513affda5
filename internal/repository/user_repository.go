package repository

import (
	"context"
	"storefront/internal/models"
	"time"

	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetAll(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error

	AssignVoucher(ctx context.Context, uv *models.UserVoucher) error
	GetVoucher(ctx context.Context, userID, voucherID uint) (*models.UserVoucher, error)
	GetVouchers(ctx context.Context, userID uint) ([]models.UserVoucher, error)
	UpdateVoucherStatus(ctx context.Context, id uint, status string) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetAll(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).Order("id").Find(&users).Error
	return users, err
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Omit("Vouchers").Save(user).Error
}

func (r *userRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.User{}, id).Error
}

func (r *userRepository) AssignVoucher(ctx context.Context, uv *models.UserVoucher) error {
	return r.db.WithContext(ctx).Omit("Voucher").Create(uv).Error
}

func (r *userRepository) GetVoucher(ctx context.Context, userID, voucherID uint) (*models.UserVoucher, error) {
	var uv models.UserVoucher
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND voucher_id = ?", userID, voucherID).
		First(&uv).Error
	if err != nil {
		return nil, err
	}
	return &uv, nil
}

func (r *userRepository) GetVouchers(ctx context.Context, userID uint) ([]models.UserVoucher, error) {
	var vouchers []models.UserVoucher
	err := r.db.WithContext(ctx).Preload("Voucher").Where("user_id = ?", userID).Find(&vouchers).Error
	return vouchers, err
}

func (r *userRepository) UpdateVoucherStatus(ctx context.Context, id uint, status string) error {
	updates := map[string]interface{}{"status": status}
	if status == string(models.VoucherUsed) {
		updates["used_at"] = time.Now()
	}
	return r.db.WithContext(ctx).Model(&models.UserVoucher{}).Where("id = ?", id).Updates(updates).Error
}
