package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"oifit/internal/domain/model"
	"oifit/internal/domain/pricing"
	repo "oifit/internal/repository"
	"oifit/internal/validator"

	"github.com/shopspring/decimal"
)

type ProductUsecase struct {
	tx           repo.TransactionManager
	productRepo  repo.ProductRepository
	categoryRepo repo.CategoryRepository
	auditRepo    repo.AuditLogRepository
}

// DI
func NewProductUsecase(
	tx repo.TransactionManager,
	productRepo repo.ProductRepository,
	categoryRepo repo.CategoryRepository,
	auditRepo repo.AuditLogRepository,
) *ProductUsecase {
	return &ProductUsecase{
		tx:           tx,
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		auditRepo:    auditRepo,
	}
}

// GET /productsの入力DTO
type ListProductsInput struct {
	Page     int
	Limit    int
	Q        string
	Category string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Sort     string
}

type ProductListOutput struct {
	Items []ProductOutput `json:"items"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

// 表示用。割引後の価格も返す
type ProductOutput struct {
	model.Product
	CategoryName string          `json:"categoryName"`
	FinalPrice   decimal.Decimal `json:"finalPrice"`
}

func toProductOutput(p model.Product) ProductOutput {
	return ProductOutput{
		Product:      p,
		CategoryName: p.CategoryName(),
		FinalPrice:   pricing.EffectivePrice(p.Price, p.Discount).Round(2),
	}
}

func (u *ProductUsecase) ListPublicProducts(ctx context.Context, in ListProductsInput) (ProductListOutput, error) {
	if in.Page < 1 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if len(in.Q) > 100 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "q too long")
	}
	if in.MinPrice != nil && in.MinPrice.IsNegative() {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "min_price must be >= 0")
	}
	if in.MaxPrice != nil && in.MaxPrice.IsNegative() {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "max_price must be >= 0")
	}
	if in.MinPrice != nil && in.MaxPrice != nil && in.MinPrice.GreaterThan(*in.MaxPrice) {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "min_price must be <= max_price")
	}
	switch in.Sort {
	case "", "new", "price_asc", "price_desc", "name":
	default:
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid sort")
	}

	items, total, err := u.productRepo.ListPublic(ctx, repo.ProductListQuery{
		Page:     in.Page,
		Limit:    in.Limit,
		Q:        strings.TrimSpace(in.Q),
		Category: strings.TrimSpace(in.Category),
		MinPrice: in.MinPrice,
		MaxPrice: in.MaxPrice,
		Sort:     in.Sort,
	})
	if err != nil {
		return ProductListOutput{}, errDB
	}

	outs := make([]ProductOutput, 0, len(items))
	for _, p := range items {
		outs = append(outs, toProductOutput(p))
	}
	return ProductListOutput{
		Items: outs,
		Total: total,
		Page:  in.Page,
		Limit: in.Limit,
	}, nil
}

func (u *ProductUsecase) GetProductDetail(ctx context.Context, productID int64) (ProductOutput, error) {
	if productID <= 0 {
		return ProductOutput{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return ProductOutput{}, errNotFound
	}
	if err != nil {
		return ProductOutput{}, errDB
	}

	if !p.IsActive {
		return ProductOutput{}, errNotFound
	}
	return toProductOutput(p), nil
}

func (u *ProductUsecase) ListCategories(ctx context.Context) ([]model.Category, error) {
	list, err := u.categoryRepo.List(ctx)
	if err != nil {
		return nil, errDB
	}
	return list, nil
}

// 送料表（クライアントのプレビューとサーバーの合計で共通）
func (u *ProductUsecase) ListCities() []pricing.City {
	return pricing.Cities()
}

func (u *ProductUsecase) AdminCreateProduct(ctx context.Context, adminUserID string, form validator.ProductForm) (ProductOutput, error) {
	if strings.TrimSpace(adminUserID) == "" {
		return ProductOutput{}, errUnauthorized
	}
	if err := form.Validate(); err != nil {
		return ProductOutput{}, validationError(err)
	}

	cat, err := u.categoryRepo.FindOrCreateByName(ctx, form.Category)
	if err != nil {
		return ProductOutput{}, errDB
	}

	p, err := u.productRepo.Create(ctx, productFromForm(form, cat))
	if err != nil {
		return ProductOutput{}, errDB
	}
	p.Category = &cat

	u.audit(ctx, adminUserID, model.AuditActionUpsertProduct, p.ID, "", jsonString("name", p.Name))
	return toProductOutput(p), nil
}

func (u *ProductUsecase) AdminUpdateProduct(ctx context.Context, adminUserID string, productID int64, form validator.ProductForm) error {
	if strings.TrimSpace(adminUserID) == "" {
		return errUnauthorized
	}
	if productID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	if err := form.Validate(); err != nil {
		return validationError(err)
	}

	cat, err := u.categoryRepo.FindOrCreateByName(ctx, form.Category)
	if err != nil {
		return errDB
	}

	p := productFromForm(form, cat)
	p.ID = productID
	err = u.productRepo.Update(ctx, p)
	if errors.Is(err, repo.ErrNotFound) {
		return errNotFound
	}
	if err != nil {
		return errDB
	}

	u.audit(ctx, adminUserID, model.AuditActionUpsertProduct, productID, "", jsonString("name", p.Name))
	return nil
}

func (u *ProductUsecase) AdminDeleteProduct(ctx context.Context, adminUserID string, productID int64) error {
	if strings.TrimSpace(adminUserID) == "" {
		return errUnauthorized
	}
	if productID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	err := u.productRepo.SoftDelete(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return errNotFound
	}
	if err != nil {
		return errDB
	}

	u.audit(ctx, adminUserID, model.AuditActionDeleteProduct, productID, "", "")
	return nil
}

// 在庫の現在値を更新し、調整履歴と監査ログを同じTxで残す
func (u *ProductUsecase) AdminUpdateInventory(ctx context.Context, adminUserID string, productID int64, newStock int64, reason string) error {
	if strings.TrimSpace(adminUserID) == "" {
		return errUnauthorized
	}
	if productID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	if newStock < 0 {
		return NewHTTPError(http.StatusBadRequest, "stock must be >= 0")
	}
	if strings.TrimSpace(reason) == "" {
		return NewHTTPError(http.StatusBadRequest, "reason required")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//変更前の在庫（before）
		p, err := r.Products().FindByID(ctx, productID)
		if errors.Is(err, repo.ErrNotFound) {
			return errNotFound
		}
		if err != nil {
			return errDB
		}

		//在庫の現在値を更新
		if err := r.Inventory().SetStock(ctx, productID, newStock); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return errNotFound
			}
			return errDB
		}

		//履歴を作成（差分）
		if err := r.Inventory().Record(ctx, model.InventoryAdjustment{
			ProductID:   productID,
			ActorUserID: adminUserID,
			Delta:       newStock - p.Stock,
			Reason:      strings.TrimSpace(reason),
			CreatedAt:   now(),
		}); err != nil {
			return errDB
		}

		//「誰が」「何を」「どの対象に」「どう変えたか」を残す
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  adminUserID,
			Action:       model.AuditActionUpdateStock,
			ResourceType: model.AuditResourceProduct,
			ResourceID:   strconv.FormatInt(productID, 10),
			BeforeJSON:   fmt.Sprintf(`{"stock":%d}`, p.Stock),
			AfterJSON:    fmt.Sprintf(`{"stock":%d}`, newStock),
			CreatedAt:    now(),
		}); err != nil {
			return errDB
		}
		return nil
	})
}

// 商品の監査ログは失敗しても操作自体は成功扱い
func (u *ProductUsecase) audit(ctx context.Context, actor string, action model.AuditAction, productID int64, before, after string) {
	_ = u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  actor,
		Action:       action,
		ResourceType: model.AuditResourceProduct,
		ResourceID:   strconv.FormatInt(productID, 10),
		BeforeJSON:   before,
		AfterJSON:    after,
		CreatedAt:    now(),
	})
}

func productFromForm(f validator.ProductForm, cat model.Category) model.Product {
	return model.Product{
		Name:        strings.TrimSpace(f.Name),
		Description: f.Description,
		Price:       f.Price,
		Discount:    f.Discount,
		CategoryID:  cat.ID,
		Images:      nonNil(f.Images),
		Sizes:       nonNil(f.Sizes),
		Colors:      nonNil(f.Colors),
		Stock:       f.Stock,
		IsActive:    f.IsActive,
	}
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
