package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/arahumroh/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lineItem struct {
	Price int64 `json:"price" binding:"required,gt=0"`
}

type checkoutRequest struct {
	Kind  string     `json:"kind" binding:"required,oneof=credit_topup package_booking"`
	Email string     `json:"buyer_email" binding:"omitempty,email"`
	Items []lineItem `json:"items" binding:"required,min=1,dive"`
}

func bindCheckout(t *testing.T, body string) error {
	t.Helper()
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	var req checkoutRequest
	return c.ShouldBindJSON(&req)
}

func TestValidationDetails(t *testing.T) {
	SetupValidator()

	err := bindCheckout(t, `{"kind":"umroh","buyer_email":"nope","items":[{"price":0}]}`)
	require.Error(t, err)

	details := ValidationDetails(err)
	assert.ElementsMatch(t, []dto.ValidationDetail{
		{Field: "kind", Message: "Must be one of: credit_topup package_booking"},
		{Field: "buyer_email", Message: "Invalid email format"},
		{Field: "items[0].price", Message: "This field is required"},
	}, details)
}

func TestValidationDetails_EmptySlice(t *testing.T) {
	SetupValidator()

	err := bindCheckout(t, `{"kind":"credit_topup","items":[]}`)
	require.Error(t, err)

	details := ValidationDetails(err)
	require.Len(t, details, 1)
	assert.Equal(t, "items", details[0].Field)
	assert.Equal(t, "Must contain at least 1 item(s)", details[0].Message)
}

func TestValidationDetails_NotAValidatorError(t *testing.T) {
	assert.Nil(t, ValidationDetails(errors.New("unexpected EOF")))
}
