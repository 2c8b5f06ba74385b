package categorize

import "strings"

// Uncategorized is assigned when no keyword rule matches.
const Uncategorized = "other"

// keyword rules, checked in order. First match wins, so the more specific
// buckets come first.
var rules = []struct {
	category string
	keywords []string
}{
	{"income", []string{"payroll", "direct deposit", "salary", "payment received", "refund"}},
	{"fees", []string{"fee", "interest charge", "service charge", "overdraft"}},
	{"groceries", []string{"grocery", "market", "whole foods", "trader joe", "safeway", "kroger", "aldi", "costco"}},
	{"dining", []string{"starbucks", "coffee", "restaurant", "cafe", "pizza", "doordash", "ubereats", "grubhub", "mcdonald", "chipotle"}},
	{"transport", []string{"uber", "lyft", "shell", "chevron", "gas station", "parking", "transit", "metro"}},
	{"utilities", []string{"electric", "water", "internet", "comcast", "verizon", "at&t", "t-mobile", "utility"}},
	{"entertainment", []string{"netflix", "spotify", "hulu", "disney", "cinema", "theatre", "steam"}},
	{"travel", []string{"airline", "airways", "delta", "united", "hotel", "airbnb", "marriott", "hilton"}},
	{"health", []string{"pharmacy", "cvs", "walgreens", "clinic", "dental", "medical"}},
	{"shopping", []string{"amazon", "target", "walmart", "ebay", "best buy", "ikea"}},
}

// Categorize assigns a spending category from merchant and description
// keywords. Merchant text wins over description text.
func Categorize(merchant, description string) string {
	for _, text := range []string{merchant, description} {
		if text == "" {
			continue
		}
		lower := strings.ToLower(text)
		for _, r := range rules {
			for _, kw := range r.keywords {
				if strings.Contains(lower, kw) {
					return r.category
				}
			}
		}
	}
	return Uncategorized
}
