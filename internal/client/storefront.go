package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"oifit/internal/checkout"
	"oifit/internal/domain/cart"
	"oifit/internal/domain/pricing"
	"oifit/internal/payment"
	"oifit/internal/validator"

	"github.com/shopspring/decimal"
)

// GET /products/:id の必要な項目だけ
type productBody struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	Discount     decimal.Decimal `json:"discount"`
	CategoryName string          `json:"categoryName"`
	Images       []string        `json:"images"`
	Sizes        []string        `json:"sizes"`
	Colors       []string        `json:"colors"`
}

type Product struct {
	Snapshot cart.ProductSnapshot
	Sizes    []string
	Colors   []string
}

func (c *Client) Product(ctx context.Context, id int64) (Product, error) {
	var body productBody
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/products/%d", id), nil, nil, &body, nil); err != nil {
		return Product{}, err
	}
	snap := cart.ProductSnapshot{
		ID:       body.ID,
		Name:     body.Name,
		Price:    body.Price,
		Discount: body.Discount,
		Category: body.CategoryName,
	}
	if len(body.Images) > 0 {
		snap.Image = body.Images[0]
	}
	return Product{Snapshot: snap, Sizes: body.Sizes, Colors: body.Colors}, nil
}

func (c *Client) Cities(ctx context.Context) ([]pricing.City, error) {
	var out []pricing.City
	err := c.do(ctx, http.MethodGet, "/cities", nil, nil, &out, nil)
	return out, err
}

// Addresses implements checkout.AddressBook over /addresses.
type Addresses struct{ c *Client }

func (c *Client) Addresses() *Addresses { return &Addresses{c: c} }

func (a *Addresses) List(ctx context.Context) ([]checkout.Address, error) {
	var out []checkout.Address
	err := a.c.do(ctx, http.MethodGet, "/addresses", nil, nil, &out, nil)
	return out, err
}

func (a *Addresses) Create(ctx context.Context, form validator.AddressForm) (checkout.Address, error) {
	var out checkout.Address
	err := a.c.do(ctx, http.MethodPost, "/addresses", nil, form, &out, nil)
	return out, err
}

type submitItem struct {
	ProductID int64           `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int64           `json:"quantity"`
	Size      string          `json:"size"`
	Color     string          `json:"color"`
}

type submitBody struct {
	Items     []submitItem `json:"items"`
	CityName  string       `json:"cityName"`
	AddressID *int64       `json:"addressId,omitempty"`
}

type submitResult struct {
	ClientSecret string `json:"clientSecret"`
	OrderID      int64  `json:"orderId"`
	AmountCents  int64  `json:"amount"`
}

// Orders implements checkout.OrderSubmitter over POST /payment.
type Orders struct{ c *Client }

func (c *Client) Orders() *Orders { return &Orders{c: c} }

func (o *Orders) Submit(ctx context.Context, req checkout.SubmitRequest) (checkout.PaymentHandle, error) {
	body := submitBody{CityName: req.CityName}
	if req.AddressID != 0 {
		id := req.AddressID
		body.AddressID = &id
	}
	for _, it := range req.Items {
		body.Items = append(body.Items, submitItem{
			ProductID: it.Product.ID,
			Name:      it.Product.Name,
			Price:     it.Product.Price,
			Quantity:  it.Quantity,
			Size:      it.Size,
			Color:     it.Color,
		})
	}

	h := http.Header{}
	if req.IdempotencyKey != "" {
		h.Set("X-Idempotency-Key", req.IdempotencyKey)
	}

	var out submitResult
	if err := o.c.do(ctx, http.MethodPost, "/payment", nil, body, &out, h); err != nil {
		return checkout.PaymentHandle{}, err
	}
	return checkout.PaymentHandle{ClientSecret: out.ClientSecret, OrderID: out.OrderID, AmountCents: out.AmountCents}, nil
}

type statusResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Payments implements checkout.PaymentObserver over GET /payment/status.
type Payments struct{ c *Client }

func (c *Client) Payments() *Payments { return &Payments{c: c} }

func (p *Payments) Observe(ctx context.Context, clientSecret string) (payment.Outcome, string, error) {
	var out statusResult
	q := url.Values{"client_secret": {clientSecret}}
	if err := p.c.do(ctx, http.MethodGet, "/payment/status", q, nil, &out, nil); err != nil {
		return "", "", err
	}
	return payment.MapStatus(out.Status), out.Message, nil
}
