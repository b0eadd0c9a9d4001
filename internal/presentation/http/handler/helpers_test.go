package handler

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/sangkips/posbilling/internal/presentation/http/dto/request"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldErrorsUseSnakeCasePaths(t *testing.T) {
	v := validator.New()
	v.SetTagName("binding")
	require.NoError(t, request.RegisterDecimalRules(v))

	err := v.Struct(request.CheckoutRequest{
		CustomerEmail: "nope",
		Lines:         []request.BillLineRequest{{ProductCode: "", Quantity: 1}},
	})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)

	byField := map[string]string{}
	for _, fe := range fieldErrors(verrs) {
		byField[fe.Field] = fe.Message
	}
	assert.Equal(t, "must be a valid email address", byField["customer_email"])
	assert.Equal(t, "is required", byField["lines[0].product_code"])
}
