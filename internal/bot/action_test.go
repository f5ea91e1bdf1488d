package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAction(t *testing.T) {
	cases := []struct {
		data string
		want Action
	}{
		{"menu", Action{Kind: KindMenu}},
		{"catalog", Action{Kind: KindCatalog, Page: 1}},
		{"catalog_3", Action{Kind: KindCatalog, Page: 3}},
		{"category_7_2", Action{Kind: KindCategory, ID: 7, Page: 2}},
		{"subcategory_5_1", Action{Kind: KindSubcategory, ID: 5, Page: 1}},
		{"product_12", Action{Kind: KindProduct, ID: 12}},
		{"qty_12_4", Action{Kind: KindQty, ID: 12, Qty: 4}},
		{"add_12_4", Action{Kind: KindAddToCart, ID: 12, Qty: 4}},
		{"cart", Action{Kind: KindCart}},
		{"cartdel_9", Action{Kind: KindCartRemove, ID: 9}},
		{"checkout", Action{Kind: KindCheckout}},
		{"confirm", Action{Kind: KindConfirm}},
		{"check_subscription", Action{Kind: KindCheckSubscription}},
		{"faq", Action{Kind: KindFAQ}},
	}

	for _, tc := range cases {
		action, err := ParseAction(tc.data)
		require.NoError(t, err, "data %q", tc.data)
		assert.Equal(t, tc.want, action, "data %q", tc.data)
	}
}

func TestParseActionRejectsMalformedTokens(t *testing.T) {
	malformed := []string{
		"",
		"unknown",
		"catalog_",
		"catalog_0",
		"catalog_-1",
		"catalog_abc",
		"catalog_1_2",
		"category_7",
		"category_x_2",
		"product_",
		"product_0",
		"product_12_1",
		"qty_12",
		"add_12_x",
		"cartdel_",
		"cartdel_1_2",
		"confirm_1",
		"check_other",
		"checkout_now",
		"product_99999999999999999999",
	}

	for _, data := range malformed {
		_, err := ParseAction(data)
		assert.Error(t, err, "data %q", data)
	}
}
