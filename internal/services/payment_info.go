// internal/services/payment_info.go
package services

import (
	"strings"

	"github.com/ermimobile/emobile-backend/internal/models"
)

// PaymentInfo is what the checkout page shows for a manual payment method.
type PaymentInfo struct {
	Method        models.PaymentMethod `json:"method"`
	Title         string               `json:"title"`
	AccountName   string               `json:"account_name"`
	AccountNumber string               `json:"account_number,omitempty"`
	PhoneNumber   string               `json:"phone_number,omitempty"`
	BankName      string               `json:"bank_name,omitempty"`
	Instructions  string               `json:"instructions"`
}

func settingOr(settings map[string]string, key, fallback string) string {
	if value := strings.TrimSpace(settings[key]); value != "" {
		return value
	}
	return fallback
}

// ProjectPaymentInfo maps a payment method to its display fields, using the
// shop defaults for any setting that is missing or blank.
func ProjectPaymentInfo(method models.PaymentMethod, settings map[string]string) (*PaymentInfo, error) {
	switch method {
	case models.PaymentMethodTelebirr:
		return &PaymentInfo{
			Method:       method,
			Title:        "Telebirr Payment",
			AccountName:  settingOr(settings, "telebirr_name", "Ermi Mobile Shop"),
			PhoneNumber:  settingOr(settings, "telebirr_phone", "+251 911 234 567"),
			Instructions: settingOr(settings, "telebirr_instructions", "Please transfer the total amount and keep your transaction reference number."),
		}, nil
	case models.PaymentMethodCBE:
		return &PaymentInfo{
			Method:        method,
			Title:         "CBE Birr Payment",
			AccountName:   settingOr(settings, "cbe_name", "Ermi Mobile Trading"),
			AccountNumber: settingOr(settings, "cbe_account", "1000123456789"),
			Instructions:  settingOr(settings, "cbe_instructions", "Transfer the amount via CBE Birr and save your receipt."),
		}, nil
	case models.PaymentMethodBank:
		return &PaymentInfo{
			Method:        method,
			Title:         "Bank Transfer",
			BankName:      settingOr(settings, "bank_name", "Commercial Bank of Ethiopia"),
			AccountName:   settingOr(settings, "bank_account_name", "Ermi Mobile Trading PLC"),
			AccountNumber: settingOr(settings, "bank_account_number", "1000987654321"),
			Instructions:  settingOr(settings, "bank_instructions", "Please transfer the total amount and keep your transaction slip."),
		}, nil
	default:
		return nil, ErrInvalidPaymentMethod
	}
}
