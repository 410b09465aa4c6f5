package orders

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/nyudevops/shopcarts/pkg/errors"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func TestNewClientRequiresEndpoint(t *testing.T) {
	_, err := NewClient("   ")
	require.ErrorIs(t, err, errEndpointRequired)

	client, err := NewClient(" http://orders.test/orders ")
	require.NoError(t, err)
	assert.Equal(t, "http://orders.test/orders", client.Endpoint())
}

func TestPlaceOrderSendsPayload(t *testing.T) {
	var (
		gotMethod      string
		gotContentType string
		gotBody        map[string]any
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotContentType = r.Header.Get("Content-Type")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL)
	require.NoError(t, err)

	err = client.PlaceOrder(context.Background(), Order{
		CustomerID: 7,
		Items:      []OrderItem{NewOrderItem(11, 5000, 3, 2.235)},
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "application/json", gotContentType)
	assert.EqualValues(t, 7, gotBody["customer_id"])

	items, ok := gotBody["order_items"].([]any)
	require.True(t, ok)
	require.Len(t, items, 1)
	item := items[0].(map[string]any)
	assert.EqualValues(t, 11, item["item_id"])
	assert.EqualValues(t, 5000, item["product_id"])
	assert.EqualValues(t, 3, item["quantity"])
	assert.EqualValues(t, 2.24, item["price"])
	assert.Equal(t, StatusPlaced, item["status"])
}

func TestPlaceOrderRejectsNonCreated(t *testing.T) {
	for _, status := range []int{http.StatusOK, http.StatusBadRequest, http.StatusInternalServerError} {
		rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: status,
				Body:       io.NopCloser(strings.NewReader("nope")),
				Header:     http.Header{},
			}, nil
		})
		client, err := NewClient("http://orders.test/orders", WithHTTPClient(&http.Client{Transport: rt}))
		require.NoError(t, err)

		err = client.PlaceOrder(context.Background(), Order{CustomerID: 1, Items: []OrderItem{NewOrderItem(1, 1, 1, 1)}})
		require.Error(t, err)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeOrderRejected), "status %d", status)
		require.NotNil(t, errors.Unwrap(err))
		assert.Contains(t, errors.Unwrap(err).Error(), "nope")
	}
}

func TestPlaceOrderTransportFailure(t *testing.T) {
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	})
	client, err := NewClient("http://orders.test/orders", WithHTTPClient(&http.Client{Transport: rt}))
	require.NoError(t, err)

	err = client.PlaceOrder(context.Background(), Order{CustomerID: 1, Items: []OrderItem{NewOrderItem(1, 1, 1, 1)}})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeOrderRejected))
}

func TestPlaceOrderRequiresItems(t *testing.T) {
	client, err := NewClient("http://orders.test/orders")
	require.NoError(t, err)

	err = client.PlaceOrder(context.Background(), Order{CustomerID: 1})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestRoundPrice(t *testing.T) {
	cases := map[float64]float64{
		2.23:   2.23,
		2.235:  2.24,
		10:     10,
		0.004:  0,
		19.999: 20,
	}
	for in, want := range cases {
		assert.Equal(t, want, RoundPrice(in), "price %v", in)
	}
}
