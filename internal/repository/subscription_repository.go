package repository

import (
	"context"
	"storefront/internal/models"

	"gorm.io/gorm"
)

type SubscriptionRepository interface {
	Create(ctx context.Context, plan *models.Subscription) error
	GetByID(ctx context.Context, id uint) (*models.Subscription, error)
	GetAll(ctx context.Context, activeOnly bool) ([]models.Subscription, error)
	Update(ctx context.Context, plan *models.Subscription) error
	Delete(ctx context.Context, id uint) error

	CreateOrder(ctx context.Context, order *models.SubscriptionOrder) error
	GetOrderByID(ctx context.Context, id uint) (*models.SubscriptionOrder, error)
	GetOrdersByUser(ctx context.Context, userID uint) ([]models.SubscriptionOrder, error)
	GetAllOrders(ctx context.Context, status string) ([]models.SubscriptionOrder, error)
	UpdateOrderStatus(ctx context.Context, order *models.SubscriptionOrder, from string) error
}

type subscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) Create(ctx context.Context, plan *models.Subscription) error {
	return r.db.WithContext(ctx).Create(plan).Error
}

func (r *subscriptionRepository) GetByID(ctx context.Context, id uint) (*models.Subscription, error) {
	var plan models.Subscription
	if err := r.db.WithContext(ctx).First(&plan, id).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *subscriptionRepository) GetAll(ctx context.Context, activeOnly bool) ([]models.Subscription, error) {
	query := r.db.WithContext(ctx)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var plans []models.Subscription
	err := query.Order("price").Find(&plans).Error
	return plans, err
}

func (r *subscriptionRepository) Update(ctx context.Context, plan *models.Subscription) error {
	return r.db.WithContext(ctx).Save(plan).Error
}

func (r *subscriptionRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Subscription{}, id).Error
}

func (r *subscriptionRepository) CreateOrder(ctx context.Context, order *models.SubscriptionOrder) error {
	return r.db.WithContext(ctx).Omit("User", "Subscription").Create(order).Error
}

func (r *subscriptionRepository) GetOrderByID(ctx context.Context, id uint) (*models.SubscriptionOrder, error) {
	var order models.SubscriptionOrder
	if err := r.db.WithContext(ctx).Preload("Subscription").First(&order, id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *subscriptionRepository) GetOrdersByUser(ctx context.Context, userID uint) ([]models.SubscriptionOrder, error) {
	var orders []models.SubscriptionOrder
	err := r.db.WithContext(ctx).Preload("Subscription").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}

func (r *subscriptionRepository) GetAllOrders(ctx context.Context, status string) ([]models.SubscriptionOrder, error) {
	query := r.db.WithContext(ctx).Preload("Subscription").Preload("User")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var orders []models.SubscriptionOrder
	err := query.Order("created_at DESC").Find(&orders).Error
	return orders, err
}

// UpdateOrderStatus writes status and validity dates only if the stored row
// is still in status from.
func (r *subscriptionRepository) UpdateOrderStatus(ctx context.Context, order *models.SubscriptionOrder, from string) error {
	res := r.db.WithContext(ctx).Model(&models.SubscriptionOrder{}).
		Where("id = ? AND status = ?", order.ID, from).
		Updates(map[string]interface{}{
			"status":     order.Status,
			"starts_at":  order.StartsAt,
			"expires_at": order.ExpiresAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStatusChanged
	}
	return nil
}
