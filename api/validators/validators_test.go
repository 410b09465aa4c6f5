package validators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/nyudevops/shopcarts/pkg/errors"
)

type samplePayload struct {
	ID     *int     `json:"id,omitempty"`
	SKU    int      `json:"sku" validate:"required,gt=0"`
	Name   string   `json:"name" validate:"required,max=5"`
	Price  *float64 `json:"price" validate:"required,gte=0"`
	Amount int      `json:"amount" validate:"required,gt=0"`
}

func newBodyRequest(body string) *http.Request {
	return httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
}

func TestDecodeJSONBodyValid(t *testing.T) {
	var p samplePayload
	err := DecodeJSONBody(newBodyRequest(`{"id":3,"sku":1,"name":"soap","price":0,"amount":2}`), &p)
	require.NoError(t, err)
	assert.Equal(t, 1, p.SKU)
	require.NotNil(t, p.Price)
	assert.Zero(t, *p.Price)
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	var p samplePayload
	err := DecodeJSONBody(newBodyRequest(`{"sku":1,"name":"soap","price":1,"amount":2,"color":"red"}`), &p)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestDecodeJSONBodyEmpty(t *testing.T) {
	var p samplePayload
	err := DecodeJSONBody(newBodyRequest(""), &p)
	require.Error(t, err)
	assert.Equal(t, "request body is required", pkgerrors.As(err).Message())
}

func TestDecodeJSONBodyRejectsTrailingData(t *testing.T) {
	var p samplePayload
	err := DecodeJSONBody(newBodyRequest(`{"sku":1,"name":"a","price":1,"amount":1}{}`), &p)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestDecodeJSONBodyValidationDetails(t *testing.T) {
	var p samplePayload
	err := DecodeJSONBody(newBodyRequest(`{"sku":0,"name":"toolong","price":-1,"amount":0}`), &p)
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	details, ok := typed.Details().(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "is required", details["sku"])
	assert.Equal(t, "must be at most 5", details["name"])
	assert.Equal(t, "must be at least 0", details["price"])
	assert.Equal(t, "is required", details["amount"])
}

func TestDecodeJSONBodyWrongType(t *testing.T) {
	var p samplePayload
	err := DecodeJSONBody(newBodyRequest(`{"sku":"abc","name":"a","price":1,"amount":1}`), &p)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestOptionalQueryParams(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?sku=12&price=2.5&name=%20soap%20&empty=", nil)

	sku, err := OptionalQueryInt(r, "sku")
	require.NoError(t, err)
	require.NotNil(t, sku)
	assert.Equal(t, 12, *sku)

	price, err := OptionalQueryFloat(r, "price")
	require.NoError(t, err)
	require.NotNil(t, price)
	assert.Equal(t, 2.5, *price)

	name := OptionalQueryString(r, "name")
	require.NotNil(t, name)
	assert.Equal(t, "soap", *name)

	assert.Nil(t, OptionalQueryString(r, "empty"))
	assert.Nil(t, OptionalQueryString(r, "missing"))

	missing, err := OptionalQueryInt(r, "amount")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestOptionalQueryParamsInvalid(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?sku=abc&price=cheap", nil)

	_, err := OptionalQueryInt(r, "sku")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = OptionalQueryFloat(r, "price")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestPathInt(t *testing.T) {
	withParam := func(value string) *http.Request {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", value)
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
	}

	id, err := PathInt(withParam("42"), "id")
	require.NoError(t, err)
	assert.Equal(t, 42, id)

	_, err = PathInt(withParam("abc"), "id")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "abc", SanitizeString("  abc  ", 0))
	assert.Equal(t, "ab", SanitizeString("abcdef", 2))
}
