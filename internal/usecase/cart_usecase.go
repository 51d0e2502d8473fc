package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"oifit/internal/domain/cart"
	"oifit/internal/domain/model"
	"oifit/internal/domain/pricing"
	repo "oifit/internal/repository"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ユーザーごとのカート保存先
type CartStorageFactory func(userID string) cart.Storage

type CartUsecase struct {
	products repo.ProductRepository
	storage  CartStorageFactory
	log      zerolog.Logger
}

func NewCartUsecase(products repo.ProductRepository, storage CartStorageFactory, log zerolog.Logger) *CartUsecase {
	return &CartUsecase{products: products, storage: storage, log: log}
}

type CartOutput struct {
	Items      []cart.LineItem `json:"items"`
	TotalItems int64           `json:"totalItems"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

type AddCartItemInput struct {
	ProductID int64  `json:"productId"`
	Quantity  int64  `json:"quantity"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

type SetCartQuantityInput struct {
	ProductID int64  `json:"productId"`
	Quantity  int64  `json:"quantity"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

type RemoveCartItemInput struct {
	ProductID int64  `json:"productId"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

type QuoteOutput struct {
	City          string          `json:"city"`
	KnownCity     bool            `json:"knownCity"`
	Freight       decimal.Decimal `json:"freight"`
	SubtotalCents int64           `json:"subtotalCents"`
	TotalCents    int64           `json:"totalCents"`
	Total         string          `json:"total"`
}

// 1リクエストの間だけストアを開く
func (u *CartUsecase) withStore(ctx context.Context, userID string, fn func(s *cart.Store) error) (CartOutput, error) {
	if strings.TrimSpace(userID) == "" {
		return CartOutput{}, errUnauthorized
	}
	s := cart.Open(ctx, u.storage(userID), u.log.With().Str("user_id", userID).Logger())
	defer s.Close()

	if fn != nil {
		if err := fn(s); err != nil {
			return CartOutput{}, err
		}
	}
	return toCartOutput(s.Snapshot()), nil
}

func (u *CartUsecase) GetCart(ctx context.Context, userID string) (CartOutput, error) {
	return u.withStore(ctx, userID, nil)
}

// 商品は毎回DBから取り直して、その時点の価格で入れる
func (u *CartUsecase) AddItem(ctx context.Context, userID string, in AddCartItemInput) (CartOutput, error) {
	if in.ProductID <= 0 {
		return CartOutput{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	if in.Quantity == 0 {
		in.Quantity = 1
	}
	if in.Quantity < 0 || in.Quantity > cart.MaxQuantity {
		return CartOutput{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	p, err := u.products.FindByID(ctx, in.ProductID)
	if errors.Is(err, repo.ErrNotFound) || (err == nil && !p.IsActive) {
		return CartOutput{}, errNotFound
	}
	if err != nil {
		return CartOutput{}, errDB
	}
	if !p.HasSize(in.Size) {
		return CartOutput{}, NewHTTPError(http.StatusBadRequest, "invalid size")
	}
	if !p.HasColor(in.Color) {
		return CartOutput{}, NewHTTPError(http.StatusBadRequest, "invalid color")
	}

	return u.withStore(ctx, userID, func(s *cart.Store) error {
		current := quantityOf(s.Items(), cart.Key{ProductID: p.ID, Size: in.Size, Color: in.Color})
		if current+in.Quantity > p.Stock {
			return NewHTTPError(http.StatusConflict, "out of stock")
		}
		s.AddItem(ctx, toSnapshot(p), in.Size, in.Color)
		if in.Quantity > 1 {
			s.SetQuantity(ctx, p.ID, current+in.Quantity, in.Size, in.Color)
		}
		return nil
	})
}

// 0以下は削除
func (u *CartUsecase) SetQuantity(ctx context.Context, userID string, in SetCartQuantityInput) (CartOutput, error) {
	if in.ProductID <= 0 {
		return CartOutput{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	if in.Quantity > cart.MaxQuantity {
		return CartOutput{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}
	return u.withStore(ctx, userID, func(s *cart.Store) error {
		s.SetQuantity(ctx, in.ProductID, in.Quantity, in.Size, in.Color)
		return nil
	})
}

func (u *CartUsecase) RemoveItem(ctx context.Context, userID string, in RemoveCartItemInput) (CartOutput, error) {
	if in.ProductID <= 0 {
		return CartOutput{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	return u.withStore(ctx, userID, func(s *cart.Store) error {
		s.RemoveItem(ctx, in.ProductID, in.Size, in.Color)
		return nil
	})
}

func (u *CartUsecase) Clear(ctx context.Context, userID string) error {
	_, err := u.withStore(ctx, userID, func(s *cart.Store) error {
		s.Clear(ctx)
		return nil
	})
	return err
}

// 送料込みの見積もり（確定額は注文時にサーバーで再計算）
func (u *CartUsecase) Quote(ctx context.Context, userID string, city string) (QuoteOutput, error) {
	var out QuoteOutput
	_, err := u.withStore(ctx, userID, func(s *cart.Store) error {
		lines := cart.PricingLines(s.Items())
		subtotal, err := pricing.Subtotal(lines)
		if err != nil {
			return NewHTTPError(http.StatusBadRequest, err.Error())
		}
		total, err := pricing.Calculate(lines, city)
		if err != nil {
			return NewHTTPError(http.StatusBadRequest, err.Error())
		}
		_, known := pricing.LookupCity(city)
		out = QuoteOutput{
			City:          strings.TrimSpace(city),
			KnownCity:     known,
			Freight:       pricing.Freight(city),
			SubtotalCents: pricing.ToCents(subtotal),
			TotalCents:    total,
			Total:         pricing.FormatBRL(total),
		}
		return nil
	})
	if err != nil {
		return QuoteOutput{}, err
	}
	return out, nil
}

func toSnapshot(p model.Product) cart.ProductSnapshot {
	image := ""
	if len(p.Images) > 0 {
		image = p.Images[0]
	}
	return cart.ProductSnapshot{
		ID:       p.ID,
		Name:     p.Name,
		Price:    p.Price,
		Discount: p.Discount,
		Category: p.CategoryName(),
		Image:    image,
	}
}

func toCartOutput(s cart.Snapshot) CartOutput {
	items := s.Items
	if items == nil {
		items = []cart.LineItem{}
	}
	return CartOutput{
		Items:      items,
		TotalItems: s.TotalItemCount,
		TotalPrice: s.TotalPrice,
	}
}

func quantityOf(items []cart.LineItem, k cart.Key) int64 {
	for _, it := range items {
		if it.Key() == k {
			return it.Quantity
		}
	}
	return 0
}
