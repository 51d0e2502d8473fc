package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"oifit/internal/checkout"
	"oifit/internal/domain/cart"
	"oifit/internal/payment"
	"oifit/internal/validator"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", "tok", srv.Client())
}

func TestSubmit_SendsKeyAndItems(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/payment", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "key-1", r.Header.Get("X-Idempotency-Key"))

		var body submitBody
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Jacutinga", body.CityName)
		require.NotNil(t, body.AddressID)
		assert.Equal(t, int64(3), *body.AddressID)
		require.Len(t, body.Items, 1)
		assert.Equal(t, int64(2), body.Items[0].Quantity)
		assert.Equal(t, "M", body.Items[0].Size)

		_, _ = w.Write([]byte(`{"clientSecret":"pi_1_secret_x","orderId":9,"amount":20000}`))
	})

	h, err := c.Orders().Submit(context.Background(), checkout.SubmitRequest{
		Items: []cart.LineItem{{
			Product:  cart.ProductSnapshot{ID: 1, Name: "Legging", Price: decimal.NewFromInt(100)},
			Quantity: 2,
			Size:     "M",
		}},
		CityName:       "Jacutinga",
		AddressID:      3,
		IdempotencyKey: "key-1",
	})
	require.NoError(t, err)
	assert.Equal(t, checkout.PaymentHandle{ClientSecret: "pi_1_secret_x", OrderID: 9, AmountCents: 20000}, h)
}

func TestSubmit_APIError(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":"insufficient stock"}`))
	})

	_, err := c.Orders().Submit(context.Background(), checkout.SubmitRequest{})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "insufficient stock", err.Error())
}

func TestAddressCreate_FieldErrors(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"validation error","fields":[{"field":"zipCode","reason":"required"}]}`))
	})

	_, err := c.Addresses().Create(context.Background(), validator.AddressForm{Street: "Rua A"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Len(t, apiErr.Fields, 1)
	assert.Equal(t, "zipCode", apiErr.Fields[0].Name)
}

func TestObserve_MapsStatus(t *testing.T) {
	tests := []struct {
		status string
		want   payment.Outcome
	}{
		{"succeeded", payment.OutcomeSucceeded},
		{"processing", payment.OutcomeProcessing},
		{"failed", payment.OutcomeFailed},
	}
	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "pi_1_secret_x", r.URL.Query().Get("client_secret"))
				_ = json.NewEncoder(w).Encode(map[string]string{"status": tt.status, "message": "msg"})
			})
			got, msg, err := c.Payments().Observe(context.Background(), "pi_1_secret_x")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, "msg", msg)
		})
	}
}

func TestProduct_Snapshot(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products/4", r.URL.Path)
		_, _ = w.Write([]byte(`{"id":4,"name":"Top","price":"59.90","discount":"10","categoryName":"Tops","images":["a.jpg","b.jpg"],"sizes":["P"]}`))
	})

	p, err := c.Product(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, "Top", p.Snapshot.Name)
	assert.Equal(t, "a.jpg", p.Snapshot.Image)
	assert.Equal(t, "Tops", p.Snapshot.Category)
	assert.True(t, p.Snapshot.Price.Equal(decimal.RequireFromString("59.90")))
	assert.Equal(t, []string{"P"}, p.Sizes)
}
