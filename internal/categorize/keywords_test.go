package categorize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategorize(t *testing.T) {
	tests := []struct {
		merchant    string
		description string
		want        string
	}{
		{"STARBUCKS", "STARBUCKS COFFEE #1234", "dining"},
		{"", "WHOLE FOODS MARKET", "groceries"},
		{"UBER", "UBER TRIP", "transport"},
		{"", "PAYMENT RECEIVED - THANK YOU", "income"},
		{"", "MONTHLY SERVICE CHARGE", "fees"},
		{"NETFLIX.COM", "", "entertainment"},
		{"", "UNRECOGNIZABLE VENDOR 42", "other"},
		{"", "", "other"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Categorize(tt.merchant, tt.description),
			"merchant=%q description=%q", tt.merchant, tt.description)
	}
}

func TestCategorize_MerchantWinsOverDescription(t *testing.T) {
	// Merchant says groceries, description mentions a fee. Merchant text
	// is checked first.
	assert.Equal(t, "groceries", Categorize("SAFEWAY", "CARD FEE ADJUSTMENT"))
}
