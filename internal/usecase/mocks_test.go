package usecase

import (
	"context"
	"time"

	"oifit/internal/domain/model"
	"oifit/internal/infra/messaging"
	"oifit/internal/payment"
	repo "oifit/internal/repository"

	"github.com/stretchr/testify/mock"
)

// =====================
// TxManager / TxRepos mocks
// =====================

// TxManagerMock は WithinTx の中で渡す repos を固定して unit テストを回す
type TxManagerMock struct {
	mock.Mock
	Repos repo.TxRepos
}

func (m *TxManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	// 呼ばれた事実だけ記録（ctxの具体値は問わない）
	m.Called(ctx)
	return fn(m.Repos)
}

type TxReposMock struct {
	orders     repo.OrderRepository
	orderItems repo.OrderItemRepository
	inventory  repo.InventoryRepository
	products   repo.ProductRepository
	auditLogs  repo.AuditLogRepository
}

func (r *TxReposMock) Orders() repo.OrderRepository         { return r.orders }
func (r *TxReposMock) OrderItems() repo.OrderItemRepository { return r.orderItems }
func (r *TxReposMock) Inventory() repo.InventoryRepository  { return r.inventory }
func (r *TxReposMock) Products() repo.ProductRepository     { return r.products }
func (r *TxReposMock) AuditLogs() repo.AuditLogRepository   { return r.auditLogs }

// =====================
// Repository mocks
// =====================

type OrderRepoMock struct{ mock.Mock }

func (m *OrderRepoMock) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) ListByUserID(ctx context.Context, userID string, page int, limit int) ([]model.Order, int64, error) {
	args := m.Called(ctx, userID, page, limit)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Get(1).(int64), args.Error(2)
}

func (m *OrderRepoMock) Create(ctx context.Context, order model.Order) (int64, error) {
	args := m.Called(ctx, order)
	return args.Get(0).(int64), args.Error(1)
}

func (m *OrderRepoMock) UpdateStatus(ctx context.Context, orderID int64, from, to model.OrderStatus) (bool, error) {
	args := m.Called(ctx, orderID, from, to)
	return args.Bool(0), args.Error(1)
}

func (m *OrderRepoMock) MarkPaid(ctx context.Context, orderID int64, paidAt time.Time) (bool, error) {
	args := m.Called(ctx, orderID, paidAt)
	return args.Bool(0), args.Error(1)
}

func (m *OrderRepoMock) SetPaymentIntent(ctx context.Context, orderID int64, intentID string) error {
	return m.Called(ctx, orderID, intentID).Error(0)
}

func (m *OrderRepoMock) UpdateDelivery(ctx context.Context, orderID int64, delivery string) error {
	return m.Called(ctx, orderID, delivery).Error(0)
}

func (m *OrderRepoMock) FindByIdempotencyKey(ctx context.Context, userID string, key string) (model.Order, bool, error) {
	args := m.Called(ctx, userID, key)
	o, _ := args.Get(0).(model.Order)
	return o, args.Bool(1), args.Error(2)
}

func (m *OrderRepoMock) FindByPaymentIntentID(ctx context.Context, intentID string) (model.Order, error) {
	args := m.Called(ctx, intentID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]model.Order, int64, error) {
	args := m.Called(ctx, f)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Get(1).(int64), args.Error(2)
}

type OrderItemRepoMock struct{ mock.Mock }

func (m *OrderItemRepoMock) Insert(ctx context.Context, orderID int64, items []model.OrderItem) error {
	return m.Called(ctx, orderID, items).Error(0)
}

func (m *OrderItemRepoMock) ByOrder(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	args := m.Called(ctx, orderID)
	items, _ := args.Get(0).([]model.OrderItem)
	return items, args.Error(1)
}

func (m *OrderItemRepoMock) ByOrders(ctx context.Context, orderIDs []int64) (map[int64][]model.OrderItem, error) {
	args := m.Called(ctx, orderIDs)
	items, _ := args.Get(0).(map[int64][]model.OrderItem)
	return items, args.Error(1)
}

type InventoryRepoMock struct{ mock.Mock }

func (m *InventoryRepoMock) SetStock(ctx context.Context, productID int64, newStock int64) error {
	return m.Called(ctx, productID, newStock).Error(0)
}

func (m *InventoryRepoMock) Take(ctx context.Context, productID int64, qty int64) (bool, error) {
	args := m.Called(ctx, productID, qty)
	return args.Bool(0), args.Error(1)
}

func (m *InventoryRepoMock) Restock(ctx context.Context, productID int64, qty int64) error {
	return m.Called(ctx, productID, qty).Error(0)
}

func (m *InventoryRepoMock) Record(ctx context.Context, adjustment model.InventoryAdjustment) error {
	return m.Called(ctx, adjustment).Error(0)
}

type ProductRepoMock struct{ mock.Mock }

func (m *ProductRepoMock) ListPublic(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	args := m.Called(ctx, q)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *ProductRepoMock) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProductRepoMock) FindActiveByIDs(ctx context.Context, ids []int64) (map[int64]model.Product, error) {
	args := m.Called(ctx, ids)
	ps, _ := args.Get(0).(map[int64]model.Product)
	return ps, args.Error(1)
}

func (m *ProductRepoMock) Create(ctx context.Context, p model.Product) (model.Product, error) {
	args := m.Called(ctx, p)
	out, _ := args.Get(0).(model.Product)
	return out, args.Error(1)
}

func (m *ProductRepoMock) Update(ctx context.Context, p model.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *ProductRepoMock) SoftDelete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type CategoryRepoMock struct{ mock.Mock }

func (m *CategoryRepoMock) List(ctx context.Context) ([]model.Category, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]model.Category)
	return list, args.Error(1)
}

func (m *CategoryRepoMock) FindOrCreateByName(ctx context.Context, name string) (model.Category, error) {
	args := m.Called(ctx, name)
	c, _ := args.Get(0).(model.Category)
	return c, args.Error(1)
}

type AuditRepoMock struct{ mock.Mock }

func (m *AuditRepoMock) Create(ctx context.Context, log model.AuditLog) error {
	return m.Called(ctx, log).Error(0)
}

func (m *AuditRepoMock) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, int64, error) {
	args := m.Called(ctx, filter)
	logs, _ := args.Get(0).([]model.AuditLog)
	return logs, args.Get(1).(int64), args.Error(2)
}

type AddressRepoMock struct{ mock.Mock }

func (m *AddressRepoMock) Create(ctx context.Context, address model.Address) (model.Address, error) {
	args := m.Called(ctx, address)
	a, _ := args.Get(0).(model.Address)
	return a, args.Error(1)
}

func (m *AddressRepoMock) ListByUserID(ctx context.Context, userID string) ([]model.Address, error) {
	args := m.Called(ctx, userID)
	list, _ := args.Get(0).([]model.Address)
	return list, args.Error(1)
}

func (m *AddressRepoMock) FindByID(ctx context.Context, addressID int64) (model.Address, error) {
	args := m.Called(ctx, addressID)
	a, _ := args.Get(0).(model.Address)
	return a, args.Error(1)
}

func (m *AddressRepoMock) Delete(ctx context.Context, addressID int64) error {
	return m.Called(ctx, addressID).Error(0)
}

type UserRepoMock struct{ mock.Mock }

func (m *UserRepoMock) FindByID(ctx context.Context, userID string) (model.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) FindOrCreate(ctx context.Context, user model.User) (model.User, error) {
	args := m.Called(ctx, user)
	u, _ := args.Get(0).(model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) List(ctx context.Context, f repo.UserListFilter) ([]model.User, int64, error) {
	args := m.Called(ctx, f)
	users, _ := args.Get(0).([]model.User)
	return users, args.Get(1).(int64), args.Error(2)
}

func (m *UserRepoMock) SetActive(ctx context.Context, userID string, active bool) error {
	return m.Called(ctx, userID, active).Error(0)
}

func (m *UserRepoMock) SetRole(ctx context.Context, userID string, role model.Role) error {
	return m.Called(ctx, userID, role).Error(0)
}

func (m *UserRepoMock) UpdateProfile(ctx context.Context, userID string, name, phone *string) error {
	return m.Called(ctx, userID, name, phone).Error(0)
}

type SalesRepoMock struct{ mock.Mock }

func (m *SalesRepoMock) TotalsByStatus(ctx context.Context) ([]repo.StatusTotal, error) {
	args := m.Called(ctx)
	t, _ := args.Get(0).([]repo.StatusTotal)
	return t, args.Error(1)
}

func (m *SalesRepoMock) ItemsSold(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *SalesRepoMock) MonthlyRevenue(ctx context.Context, since time.Time) ([]repo.MonthlyRevenue, error) {
	args := m.Called(ctx, since)
	r, _ := args.Get(0).([]repo.MonthlyRevenue)
	return r, args.Error(1)
}

func (m *SalesRepoMock) Recent(ctx context.Context, limit int) ([]model.Order, error) {
	args := m.Called(ctx, limit)
	o, _ := args.Get(0).([]model.Order)
	return o, args.Error(1)
}

// =====================
// Port mocks
// =====================

type GatewayMock struct{ mock.Mock }

func (m *GatewayMock) CreateIntent(ctx context.Context, req payment.IntentRequest) (payment.Intent, error) {
	args := m.Called(ctx, req)
	i, _ := args.Get(0).(payment.Intent)
	return i, args.Error(1)
}

func (m *GatewayMock) GetIntent(ctx context.Context, id string) (payment.Intent, error) {
	args := m.Called(ctx, id)
	i, _ := args.Get(0).(payment.Intent)
	return i, args.Error(1)
}

func (m *GatewayMock) ParseWebhook(payload []byte, signature string) (payment.WebhookEvent, error) {
	args := m.Called(payload, signature)
	ev, _ := args.Get(0).(payment.WebhookEvent)
	return ev, args.Error(1)
}

func (m *GatewayMock) Balance(ctx context.Context, currency string) (payment.Balance, error) {
	args := m.Called(ctx, currency)
	b, _ := args.Get(0).(payment.Balance)
	return b, args.Error(1)
}

type CacheMock struct{ mock.Mock }

func (m *CacheMock) Lookup(ctx context.Context, userID, key string) (string, bool, error) {
	args := m.Called(ctx, userID, key)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *CacheMock) Remember(ctx context.Context, userID, key, value string) error {
	return m.Called(ctx, userID, key, value).Error(0)
}

type DeduperMock struct{ mock.Mock }

func (m *DeduperMock) FirstSeen(ctx context.Context, eventID string) (bool, error) {
	args := m.Called(ctx, eventID)
	return args.Bool(0), args.Error(1)
}

func (m *DeduperMock) Forget(ctx context.Context, eventID string) error {
	return m.Called(ctx, eventID).Error(0)
}

type PublisherMock struct{ mock.Mock }

func (m *PublisherMock) Publish(ctx context.Context, ev messaging.OrderEvent) error {
	return m.Called(ctx, ev).Error(0)
}

type CartClearerMock struct{ mock.Mock }

func (m *CartClearerMock) Clear(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

// テスト中は時刻を固定
func fixNow(t interface{ Cleanup(func()) }, at time.Time) {
	prev := now
	now = func() time.Time { return at }
	t.Cleanup(func() { now = prev })
}
