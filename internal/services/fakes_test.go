package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"storefront/internal/models"
	"storefront/internal/redis"
	"storefront/internal/repository"
	"storefront/pkg/gemini"
	"storefront/pkg/qrpay"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// In-memory repositories. Reads return copies so tests observe only what
// was written back through the interface.

type fakeUserRepo struct {
	users    map[uint]*models.User
	vouchers []*models.UserVoucher
	nextID   uint
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	r := &fakeUserRepo{users: map[uint]*models.User{}}
	for _, u := range users {
		_ = r.Create(context.Background(), u)
	}
	return r
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	if user.ID == 0 {
		r.nextID++
		user.ID = r.nextID
	}
	u := *user
	r.users[user.ID] = &u
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id uint) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c := *u
	return &c, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) GetAll(ctx context.Context) ([]models.User, error) {
	var users []models.User
	for _, u := range r.users {
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *models.User) error {
	u := *user
	r.users[user.ID] = &u
	return nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id uint) error {
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) AssignVoucher(ctx context.Context, uv *models.UserVoucher) error {
	uv.ID = uint(len(r.vouchers) + 1)
	c := *uv
	r.vouchers = append(r.vouchers, &c)
	return nil
}

func (r *fakeUserRepo) GetVoucher(ctx context.Context, userID, voucherID uint) (*models.UserVoucher, error) {
	for _, uv := range r.vouchers {
		if uv.UserID == userID && uv.VoucherID == voucherID {
			c := *uv
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) GetVouchers(ctx context.Context, userID uint) ([]models.UserVoucher, error) {
	var out []models.UserVoucher
	for _, uv := range r.vouchers {
		if uv.UserID == userID {
			out = append(out, *uv)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) UpdateVoucherStatus(ctx context.Context, id uint, status string) error {
	for _, uv := range r.vouchers {
		if uv.ID == id {
			uv.Status = status
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) voucherStatus(userID, voucherID uint) string {
	uv, err := r.GetVoucher(context.Background(), userID, voucherID)
	if err != nil {
		return ""
	}
	return uv.Status
}

type fakeVoucherRepo struct {
	vouchers map[uint]*models.Voucher
	users    *fakeUserRepo
	// redeemErr fails the holder's half of a redemption.
	redeemErr error
}

func newFakeVoucherRepo(vouchers ...*models.Voucher) *fakeVoucherRepo {
	r := &fakeVoucherRepo{vouchers: map[uint]*models.Voucher{}}
	for _, v := range vouchers {
		_ = r.Create(context.Background(), v)
	}
	return r
}

func (r *fakeVoucherRepo) Create(ctx context.Context, voucher *models.Voucher) error {
	if voucher.ID == 0 {
		voucher.ID = uint(len(r.vouchers) + 1)
	}
	c := *voucher
	r.vouchers[voucher.ID] = &c
	return nil
}

func (r *fakeVoucherRepo) GetByID(ctx context.Context, id uint) (*models.Voucher, error) {
	v, ok := r.vouchers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c := *v
	return &c, nil
}

func (r *fakeVoucherRepo) GetByCode(ctx context.Context, code string) (*models.Voucher, error) {
	for _, v := range r.vouchers {
		if v.Code == code {
			c := *v
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeVoucherRepo) GetAll(ctx context.Context) ([]models.Voucher, error) {
	var out []models.Voucher
	for _, v := range r.vouchers {
		out = append(out, *v)
	}
	return out, nil
}

func (r *fakeVoucherRepo) Redeem(ctx context.Context, voucherID, userVoucherID uint) error {
	v, ok := r.vouchers[voucherID]
	if !ok || v.IsUsed {
		return repository.ErrStatusChanged
	}
	var entry *models.UserVoucher
	for _, uv := range r.users.vouchers {
		if uv.ID == userVoucherID {
			entry = uv
		}
	}
	if entry == nil || entry.Status != string(models.VoucherAvailable) {
		return repository.ErrStatusChanged
	}
	if r.redeemErr != nil {
		return r.redeemErr
	}
	v.IsUsed = true
	entry.Status = string(models.VoucherUsed)
	return nil
}

func (r *fakeVoucherRepo) Delete(ctx context.Context, id uint) error {
	delete(r.vouchers, id)
	return nil
}

type fakeCategoryRepo struct {
	categories map[uint]*models.Category
}

func newFakeCategoryRepo(categories ...*models.Category) *fakeCategoryRepo {
	r := &fakeCategoryRepo{categories: map[uint]*models.Category{}}
	for _, c := range categories {
		_ = r.Create(context.Background(), c)
	}
	return r
}

func (r *fakeCategoryRepo) Create(ctx context.Context, category *models.Category) error {
	if category.ID == 0 {
		category.ID = uint(len(r.categories) + 1)
	}
	c := *category
	r.categories[category.ID] = &c
	return nil
}

func (r *fakeCategoryRepo) GetByID(ctx context.Context, id uint) (*models.Category, error) {
	c, ok := r.categories[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCategoryRepo) GetAll(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	for _, c := range r.categories {
		out = append(out, *c)
	}
	return out, nil
}

func (r *fakeCategoryRepo) Update(ctx context.Context, category *models.Category) error {
	c := *category
	r.categories[category.ID] = &c
	return nil
}

func (r *fakeCategoryRepo) Delete(ctx context.Context, id uint) error {
	delete(r.categories, id)
	return nil
}

type fakeProductRepo struct {
	products map[uint]*models.Product
	getCalls int
}

func newFakeProductRepo(products ...*models.Product) *fakeProductRepo {
	r := &fakeProductRepo{products: map[uint]*models.Product{}}
	for _, p := range products {
		_ = r.Create(context.Background(), p)
	}
	return r
}

func (r *fakeProductRepo) Create(ctx context.Context, product *models.Product) error {
	if product.ID == 0 {
		product.ID = uint(len(r.products) + 1)
	}
	c := *product
	r.products[product.ID] = &c
	return nil
}

func (r *fakeProductRepo) GetByID(ctx context.Context, id uint) (*models.Product, error) {
	r.getCalls++
	p, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c := *p
	return &c, nil
}

func (r *fakeProductRepo) List(ctx context.Context, filter repository.ProductFilter) ([]models.Product, int64, error) {
	var out []models.Product
	for _, p := range r.products {
		if filter.InStock && p.Stock <= 0 {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(filter.Search)) {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (r *fakeProductRepo) Update(ctx context.Context, product *models.Product) error {
	c := *product
	r.products[product.ID] = &c
	return nil
}

func (r *fakeProductRepo) Delete(ctx context.Context, id uint) error {
	delete(r.products, id)
	return nil
}

func (r *fakeProductRepo) UpdateRating(ctx context.Context, id uint, rating float64, count int) error {
	p, ok := r.products[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Rating = rating
	p.ReviewCount = count
	return nil
}

func (r *fakeProductRepo) RestoreStock(ctx context.Context, id uint, quantity int) error {
	p, ok := r.products[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Stock += quantity
	return nil
}

func (r *fakeProductRepo) stock(id uint) int {
	return r.products[id].Stock
}

func (r *fakeProductRepo) lookup(id uint) (*models.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c := *p
	return &c, nil
}

// fakeCartRepo runs the cart's stock guard on save, like the gorm hook does.
type fakeCartRepo struct {
	carts    map[uint]*models.Cart
	products *fakeProductRepo
}

func newFakeCartRepo(products *fakeProductRepo) *fakeCartRepo {
	return &fakeCartRepo{carts: map[uint]*models.Cart{}, products: products}
}

func (r *fakeCartRepo) GetByUserID(ctx context.Context, userID uint) (*models.Cart, error) {
	cart, ok := r.carts[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c := *cart
	c.Items = make([]models.CartItem, len(cart.Items))
	for i, item := range cart.Items {
		if p, err := r.products.lookup(item.ProductID); err == nil {
			item.Product = p
		}
		c.Items[i] = item
	}
	return &c, nil
}

func (r *fakeCartRepo) Save(ctx context.Context, cart *models.Cart) error {
	if err := cart.ValidateStock(r.products.lookup); err != nil {
		return err
	}
	if cart.ID == 0 {
		cart.ID = uint(len(r.carts) + 1)
	}
	c := *cart
	c.Items = append([]models.CartItem(nil), cart.Items...)
	r.carts[cart.UserID] = &c
	return nil
}

func (r *fakeCartRepo) Clear(ctx context.Context, userID uint) error {
	if cart, ok := r.carts[userID]; ok {
		cart.Items = nil
	}
	return nil
}

func (r *fakeCartRepo) put(userID uint, items ...models.CartItem) {
	r.carts[userID] = &models.Cart{ID: uint(len(r.carts) + 1), UserID: userID, Items: items}
}

func (r *fakeCartRepo) itemCount(userID uint) int {
	if cart, ok := r.carts[userID]; ok {
		return len(cart.Items)
	}
	return 0
}

type fakeOrderRepo struct {
	orders   map[uint]*models.Order
	products *fakeProductRepo
	// beforeUpdate runs ahead of the compare-and-set, to simulate a
	// concurrent writer.
	beforeUpdate func(order *models.Order)
	// updateErr fails the next UpdateStatus call, then clears.
	updateErr error
}

func newFakeOrderRepo(products *fakeProductRepo) *fakeOrderRepo {
	return &fakeOrderRepo{orders: map[uint]*models.Order{}, products: products}
}

func (r *fakeOrderRepo) CreateWithStock(ctx context.Context, order *models.Order) error {
	for _, item := range order.Items {
		p, ok := r.products.products[item.ProductID]
		if !ok || p.Stock < item.Quantity {
			return fmt.Errorf("%w: %s", repository.ErrInsufficientStock, item.Name)
		}
	}
	for _, item := range order.Items {
		r.products.products[item.ProductID].Stock -= item.Quantity
	}
	order.ID = uint(len(r.orders) + 1)
	r.orders[order.ID] = copyOrder(order)
	return nil
}

func copyOrder(o *models.Order) *models.Order {
	c := *o
	c.Items = append([]models.OrderItem(nil), o.Items...)
	return &c
}

func (r *fakeOrderRepo) GetByID(ctx context.Context, id uint) (*models.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return copyOrder(o), nil
}

func (r *fakeOrderRepo) GetByUserID(ctx context.Context, userID uint) ([]models.Order, error) {
	var out []models.Order
	for _, o := range r.orders {
		if o.UserID == userID {
			out = append(out, *copyOrder(o))
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) GetAll(ctx context.Context, status string) ([]models.Order, error) {
	var out []models.Order
	for _, o := range r.orders {
		if status == "" || o.Status == status {
			out = append(out, *copyOrder(o))
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) UpdateStatus(ctx context.Context, id uint, from, to string) error {
	o, ok := r.orders[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if r.updateErr != nil {
		err := r.updateErr
		r.updateErr = nil
		return err
	}
	if r.beforeUpdate != nil {
		r.beforeUpdate(o)
	}
	if o.Status != from {
		return repository.ErrStatusChanged
	}
	o.Status = to
	return nil
}

func (r *fakeOrderRepo) HasDeliveredProduct(ctx context.Context, userID, productID uint) (bool, error) {
	for _, o := range r.orders {
		if o.UserID != userID || o.Status != string(models.OrderDelivered) {
			continue
		}
		for _, item := range o.Items {
			if item.ProductID == productID {
				return true, nil
			}
		}
	}
	return false, nil
}

func (r *fakeOrderRepo) put(order *models.Order) *models.Order {
	order.ID = uint(len(r.orders) + 1)
	r.orders[order.ID] = copyOrder(order)
	return order
}

func (r *fakeOrderRepo) status(id uint) string {
	return r.orders[id].Status
}

type fakePaymentRepo struct {
	payments map[uint]*models.Payment
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{payments: map[uint]*models.Payment{}}
}

func (r *fakePaymentRepo) Create(ctx context.Context, payment *models.Payment) error {
	payment.ID = uint(len(r.payments) + 1)
	c := *payment
	r.payments[payment.ID] = &c
	return nil
}

func (r *fakePaymentRepo) GetByCode(ctx context.Context, code int64) (*models.Payment, error) {
	for _, p := range r.payments {
		if p.PaymentCode == code {
			c := *p
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakePaymentRepo) MarkPaid(ctx context.Context, id uint, paidAt time.Time) error {
	p := r.payments[id]
	p.Status = string(models.PaymentPaid)
	p.PaidAt = &paidAt
	return nil
}

func (r *fakePaymentRepo) UpdateStatus(ctx context.Context, id uint, status string) error {
	r.payments[id].Status = status
	return nil
}

type fakeSubscriptionRepo struct {
	plans  map[uint]*models.Subscription
	orders map[uint]*models.SubscriptionOrder
}

func newFakeSubscriptionRepo(plans ...*models.Subscription) *fakeSubscriptionRepo {
	r := &fakeSubscriptionRepo{plans: map[uint]*models.Subscription{}, orders: map[uint]*models.SubscriptionOrder{}}
	for _, p := range plans {
		_ = r.Create(context.Background(), p)
	}
	return r
}

func (r *fakeSubscriptionRepo) Create(ctx context.Context, plan *models.Subscription) error {
	if plan.ID == 0 {
		plan.ID = uint(len(r.plans) + 1)
	}
	c := *plan
	r.plans[plan.ID] = &c
	return nil
}

func (r *fakeSubscriptionRepo) GetByID(ctx context.Context, id uint) (*models.Subscription, error) {
	p, ok := r.plans[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c := *p
	return &c, nil
}

func (r *fakeSubscriptionRepo) GetAll(ctx context.Context, activeOnly bool) ([]models.Subscription, error) {
	var out []models.Subscription
	for _, p := range r.plans {
		if activeOnly && !p.IsActive {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (r *fakeSubscriptionRepo) Update(ctx context.Context, plan *models.Subscription) error {
	c := *plan
	r.plans[plan.ID] = &c
	return nil
}

func (r *fakeSubscriptionRepo) Delete(ctx context.Context, id uint) error {
	delete(r.plans, id)
	return nil
}

func (r *fakeSubscriptionRepo) CreateOrder(ctx context.Context, order *models.SubscriptionOrder) error {
	order.ID = uint(len(r.orders) + 1)
	c := *order
	c.Subscription = nil
	r.orders[order.ID] = &c
	return nil
}

func (r *fakeSubscriptionRepo) GetOrderByID(ctx context.Context, id uint) (*models.SubscriptionOrder, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c := *o
	if plan, ok := r.plans[o.SubscriptionID]; ok {
		p := *plan
		c.Subscription = &p
	}
	return &c, nil
}

func (r *fakeSubscriptionRepo) GetOrdersByUser(ctx context.Context, userID uint) ([]models.SubscriptionOrder, error) {
	var out []models.SubscriptionOrder
	for _, o := range r.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *fakeSubscriptionRepo) GetAllOrders(ctx context.Context, status string) ([]models.SubscriptionOrder, error) {
	var out []models.SubscriptionOrder
	for _, o := range r.orders {
		if status == "" || o.Status == status {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *fakeSubscriptionRepo) UpdateOrderStatus(ctx context.Context, order *models.SubscriptionOrder, from string) error {
	o, ok := r.orders[order.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if o.Status != from {
		return repository.ErrStatusChanged
	}
	o.Status = order.Status
	o.StartsAt = order.StartsAt
	o.ExpiresAt = order.ExpiresAt
	return nil
}

func (r *fakeSubscriptionRepo) putOrder(order *models.SubscriptionOrder) *models.SubscriptionOrder {
	order.ID = uint(len(r.orders) + 1)
	c := *order
	r.orders[order.ID] = &c
	return order
}

type fakeReviewRepo struct {
	reviews map[uint]*models.Review
	nextID  uint
}

func newFakeReviewRepo() *fakeReviewRepo {
	return &fakeReviewRepo{reviews: map[uint]*models.Review{}}
}

func (r *fakeReviewRepo) Create(ctx context.Context, review *models.Review) error {
	r.nextID++
	review.ID = r.nextID
	c := *review
	r.reviews[review.ID] = &c
	return nil
}

func (r *fakeReviewRepo) GetByID(ctx context.Context, id uint) (*models.Review, error) {
	rv, ok := r.reviews[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c := *rv
	return &c, nil
}

func (r *fakeReviewRepo) GetByProduct(ctx context.Context, productID uint) ([]models.Review, error) {
	var out []models.Review
	for _, rv := range r.reviews {
		if rv.ProductID == productID {
			out = append(out, *rv)
		}
	}
	return out, nil
}

func (r *fakeReviewRepo) ExistsForUser(ctx context.Context, userID, productID uint) (bool, error) {
	for _, rv := range r.reviews {
		if rv.UserID == userID && rv.ProductID == productID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeReviewRepo) Delete(ctx context.Context, id uint) error {
	delete(r.reviews, id)
	return nil
}

func (r *fakeReviewRepo) Stats(ctx context.Context, productID uint) (float64, int, error) {
	sum, count := 0, 0
	for _, rv := range r.reviews {
		if rv.ProductID == productID {
			sum += rv.Rating
			count++
		}
	}
	if count == 0 {
		return 0, 0, nil
	}
	return float64(sum) / float64(count), count, nil
}

type fakePromptRepo struct {
	categories map[uint]*models.PromptCategory
}

func newFakePromptRepo(categories ...*models.PromptCategory) *fakePromptRepo {
	r := &fakePromptRepo{categories: map[uint]*models.PromptCategory{}}
	for _, c := range categories {
		_ = r.Create(context.Background(), c)
	}
	return r
}

func (r *fakePromptRepo) Create(ctx context.Context, category *models.PromptCategory) error {
	if category.ID == 0 {
		category.ID = uint(len(r.categories) + 1)
	}
	c := *category
	r.categories[category.ID] = &c
	return nil
}

func (r *fakePromptRepo) GetByID(ctx context.Context, id uint) (*models.PromptCategory, error) {
	c, ok := r.categories[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakePromptRepo) GetByName(ctx context.Context, name string) (*models.PromptCategory, error) {
	for _, c := range r.categories {
		if c.Name == name {
			cp := *c
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakePromptRepo) GetAll(ctx context.Context) ([]models.PromptCategory, error) {
	var out []models.PromptCategory
	for _, c := range r.categories {
		out = append(out, *c)
	}
	return out, nil
}

func (r *fakePromptRepo) Update(ctx context.Context, category *models.PromptCategory) error {
	c := *category
	r.categories[category.ID] = &c
	return nil
}

func (r *fakePromptRepo) Delete(ctx context.Context, id uint) error {
	delete(r.categories, id)
	return nil
}

// Collaborators.

type fakeNotifier struct {
	placed        []string
	orderStatus   []string
	subscriptions []string
	err           error
}

func (n *fakeNotifier) OrderPlaced(user *models.User, order *models.Order) error {
	n.placed = append(n.placed, order.OrderNumber)
	return n.err
}

func (n *fakeNotifier) OrderStatusChanged(user *models.User, order *models.Order) error {
	n.orderStatus = append(n.orderStatus, order.Status)
	return n.err
}

func (n *fakeNotifier) SubscriptionStatusChanged(user *models.User, order *models.SubscriptionOrder) error {
	n.subscriptions = append(n.subscriptions, order.Status)
	return n.err
}

type fakeGateway struct {
	requests  []qrpay.PaymentRequest
	createErr error
	data      *qrpay.WebhookData
	verifyErr error
}

func (g *fakeGateway) CreatePaymentLink(ctx context.Context, req qrpay.PaymentRequest) (*qrpay.PaymentLink, error) {
	g.requests = append(g.requests, req)
	if g.createErr != nil {
		return nil, g.createErr
	}
	return &qrpay.PaymentLink{
		OrderCode:   req.OrderCode,
		Amount:      req.Amount,
		Status:      "PENDING",
		CheckoutURL: "https://pay.example/" + req.Description,
		QRCode:      "qr-data",
	}, nil
}

func (g *fakeGateway) VerifyWebhook(w *qrpay.Webhook) (*qrpay.WebhookData, error) {
	if g.verifyErr != nil {
		return nil, g.verifyErr
	}
	return g.data, nil
}

type fakeCache struct {
	entries map[string][]byte
	deletes int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string][]byte{}}
}

func (c *fakeCache) GetCached(ctx context.Context, key string, dest interface{}) error {
	data, ok := c.entries[key]
	if !ok {
		return redis.ErrNotFound
	}
	return json.Unmarshal(data, dest)
}

func (c *fakeCache) SetCached(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[key] = data
	return nil
}

func (c *fakeCache) DeleteCached(ctx context.Context, key string) error {
	c.deletes++
	delete(c.entries, key)
	return nil
}

type fakeBlobStore struct {
	objects map[string][]byte
}

func (b *fakeBlobStore) Put(ctx context.Context, key string, data []byte) (string, error) {
	if b.objects == nil {
		b.objects = map[string][]byte{}
	}
	b.objects[key] = data
	return "http://cdn.test/uploads/" + key, nil
}

func (b *fakeBlobStore) Delete(ctx context.Context, key string) error {
	delete(b.objects, key)
	return nil
}

type fakeSessionStore struct {
	sessions map[string]redis.ChatSession
	lastTTL  time.Duration
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: map[string]redis.ChatSession{}}
}

func (s *fakeSessionStore) SetChatSession(ctx context.Context, session *redis.ChatSession, ttl time.Duration) error {
	c := *session
	c.Messages = append([]redis.ChatMessage(nil), session.Messages...)
	s.sessions[session.ID] = c
	s.lastTTL = ttl
	return nil
}

func (s *fakeSessionStore) GetChatSession(ctx context.Context, sessionID string) (*redis.ChatSession, error) {
	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, redis.ErrNotFound
	}
	session.Messages = append([]redis.ChatMessage(nil), session.Messages...)
	return &session, nil
}

func (s *fakeSessionStore) DeleteChatSession(ctx context.Context, sessionID string) error {
	delete(s.sessions, sessionID)
	return nil
}

type fakeGenerator struct {
	reply        string
	err          error
	systemPrompt string
	history      []gemini.Content
}

func (g *fakeGenerator) Generate(ctx context.Context, systemPrompt string, history []gemini.Content) (string, error) {
	g.systemPrompt = systemPrompt
	g.history = history
	return g.reply, g.err
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
