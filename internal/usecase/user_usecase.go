package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"oifit/internal/domain/model"
	repo "oifit/internal/repository"
	"oifit/internal/validator"
)

type UserUsecase struct {
	users     repo.UserRepository
	addresses repo.AddressRepository
	orders    repo.OrderRepository
	auditRepo repo.AuditLogRepository
}

func NewUserUsecase(users repo.UserRepository, addresses repo.AddressRepository, orders repo.OrderRepository, auditRepo repo.AuditLogRepository) *UserUsecase {
	return &UserUsecase{users: users, addresses: addresses, orders: orders, auditRepo: auditRepo}
}

// トークンから分かる本人情報
type Claims struct {
	UserID string
	Email  string
	Name   string
}

type MeOutput struct {
	User         model.User      `json:"user"`
	Addresses    []model.Address `json:"addresses"`
	RecentOrders []OrderOutput   `json:"recentOrders"`
}

type UserListOutput struct {
	Items []model.User `json:"items"`
	Total int64        `json:"total"`
	Page  int          `json:"page"`
	Limit int          `json:"limit"`
}

// Provision returns the local user row for a verified token, creating it on
// first sight.
func (u *UserUsecase) Provision(ctx context.Context, c Claims) (model.User, error) {
	if strings.TrimSpace(c.UserID) == "" {
		return model.User{}, errUnauthorized
	}
	user, err := u.users.FindOrCreate(ctx, model.User{
		ID:    c.UserID,
		Email: strings.ToLower(strings.TrimSpace(c.Email)),
		Name:  strings.TrimSpace(c.Name),
	})
	if err != nil {
		return model.User{}, errDB
	}
	return user, nil
}

func (u *UserUsecase) Me(ctx context.Context, userID string) (MeOutput, error) {
	if strings.TrimSpace(userID) == "" {
		return MeOutput{}, errUnauthorized
	}

	user, err := u.users.FindByID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return MeOutput{}, errNotFound
	}
	if err != nil {
		return MeOutput{}, errDB
	}

	addrs, err := u.addresses.ListByUserID(ctx, userID)
	if err != nil {
		return MeOutput{}, errDB
	}

	orders, _, err := u.orders.ListByUserID(ctx, userID, 1, 5)
	if err != nil {
		return MeOutput{}, errDB
	}
	recent := make([]OrderOutput, 0, len(orders))
	for _, o := range orders {
		recent = append(recent, toOrderOutput(o, nil))
	}

	return MeOutput{User: user, Addresses: addrs, RecentOrders: recent}, nil
}

func (u *UserUsecase) List(ctx context.Context, f repo.UserListFilter) (UserListOutput, error) {
	if f.Page < 1 {
		return UserListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if f.Limit < 1 || f.Limit > 100 {
		return UserListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if f.Role != "" {
		if _, ok := model.ParseRole(f.Role); !ok {
			return UserListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid role")
		}
	}

	users, total, err := u.users.List(ctx, f)
	if err != nil {
		return UserListOutput{}, errDB
	}
	return UserListOutput{Items: users, Total: total, Page: f.Page, Limit: f.Limit}, nil
}

// 管理者による編集。自分自身の無効化・降格はできない
func (u *UserUsecase) AdminUpdate(ctx context.Context, actorAdminUserID, userID string, form validator.UserEditForm) (model.User, error) {
	if strings.TrimSpace(actorAdminUserID) == "" {
		return model.User{}, errUnauthorized
	}
	if strings.TrimSpace(userID) == "" {
		return model.User{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := form.Validate(); err != nil {
		return model.User{}, validationError(err)
	}
	if actorAdminUserID == userID {
		if form.IsActive != nil && !*form.IsActive {
			return model.User{}, NewHTTPError(http.StatusBadRequest, "cannot deactivate yourself")
		}
		if form.Role != nil && *form.Role != string(model.RoleAdmin) {
			return model.User{}, NewHTTPError(http.StatusBadRequest, "cannot change your own role")
		}
	}

	before, err := u.users.FindByID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.User{}, errNotFound
	}
	if err != nil {
		return model.User{}, errDB
	}

	if form.Name != nil || form.Phone != nil {
		var name, phone *string
		if form.Name != nil {
			n := strings.TrimSpace(*form.Name)
			name = &n
		}
		if form.Phone != nil {
			p := strings.TrimSpace(*form.Phone)
			phone = &p
		}
		if err := u.users.UpdateProfile(ctx, userID, name, phone); err != nil {
			return model.User{}, mapUserErr(err)
		}
	}
	if form.Role != nil {
		role, _ := model.ParseRole(*form.Role)
		if err := u.users.SetRole(ctx, userID, role); err != nil {
			return model.User{}, mapUserErr(err)
		}
	}
	if form.IsActive != nil {
		if err := u.users.SetActive(ctx, userID, *form.IsActive); err != nil {
			return model.User{}, mapUserErr(err)
		}
	}

	after, err := u.users.FindByID(ctx, userID)
	if err != nil {
		return model.User{}, mapUserErr(err)
	}

	if err := u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  actorAdminUserID,
		Action:       model.AuditActionUpdateUser,
		ResourceType: model.AuditResourceUser,
		ResourceID:   userID,
		BeforeJSON:   userAuditJSON(before),
		AfterJSON:    userAuditJSON(after),
		CreatedAt:    now(),
	}); err != nil {
		return model.User{}, errDB
	}
	return after, nil
}

func mapUserErr(err error) error {
	if errors.Is(err, repo.ErrNotFound) {
		return errNotFound
	}
	return errDB
}

func userAuditJSON(u model.User) string {
	b, _ := json.Marshal(map[string]any{
		"name":     u.Name,
		"phone":    u.Phone,
		"role":     u.Role,
		"isActive": u.IsActive,
	})
	return string(b)
}
