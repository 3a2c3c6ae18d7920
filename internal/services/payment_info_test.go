// internal/services/payment_info_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ermimobile/emobile-backend/internal/models"
)

func TestProjectPaymentInfo(t *testing.T) {
	settings := map[string]string{
		"bank_name":           "Awash Bank",
		"bank_account_number": "   ",
		"cbe_account":         "1000555",
	}

	tests := []struct {
		method        models.PaymentMethod
		title         string
		accountNumber string
		bankName      string
	}{
		{models.PaymentMethodTelebirr, "Telebirr Payment", "", ""},
		{models.PaymentMethodCBE, "CBE Birr Payment", "1000555", ""},
		{models.PaymentMethodBank, "Bank Transfer", "1000987654321", "Awash Bank"},
	}

	for _, tt := range tests {
		t.Run(string(tt.method), func(t *testing.T) {
			info, err := ProjectPaymentInfo(tt.method, settings)
			require.NoError(t, err)
			assert.Equal(t, tt.method, info.Method)
			assert.Equal(t, tt.title, info.Title)
			assert.Equal(t, tt.accountNumber, info.AccountNumber)
			assert.Equal(t, tt.bankName, info.BankName)
			assert.NotEmpty(t, info.AccountName)
			assert.NotEmpty(t, info.Instructions)
		})
	}
}

func TestProjectPaymentInfoRejectsCash(t *testing.T) {
	_, err := ProjectPaymentInfo(models.PaymentMethodCash, nil)
	assert.ErrorIs(t, err, ErrInvalidPaymentMethod)

	_, err = ProjectPaymentInfo("paypal", nil)
	assert.ErrorIs(t, err, ErrInvalidPaymentMethod)
}
