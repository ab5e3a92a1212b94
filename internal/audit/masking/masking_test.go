package masking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskTaxID(t *testing.T) {
	assert.Equal(t, "", MaskTaxID("  "))
	assert.Equal(t, "****", MaskTaxID("abc"))
	assert.Equal(t, "****F1Z5", MaskTaxID("29ABCDE1234F1Z5"))
}

func TestMaskEmail(t *testing.T) {
	assert.Equal(t, "b****@example.com", MaskEmail("billing@example.com"))
	assert.Equal(t, "****-mail", MaskEmail("not-an-email"))
}

func TestMaskSensitive(t *testing.T) {
	in := map[string]any{
		"customer_tax_id": "29ABCDE1234F1Z5",
		"amount":          "291.00",
		"signature":       "3f9a",
		"nested": map[string]any{
			"customer_email": "billing@example.com",
			"name":           "Acme",
		},
		"contacts": []any{
			map[string]any{"phone": "+91 98765 43210"},
		},
		" ": "dropped",
	}

	out := MaskSensitive(in)

	assert.Equal(t, "****F1Z5", out["customer_tax_id"])
	assert.Equal(t, "291.00", out["amount"])
	assert.Equal(t, "****", out["signature"])
	nested := out["nested"].(map[string]any)
	assert.Equal(t, "b****@example.com", nested["customer_email"])
	assert.Equal(t, "Acme", nested["name"])
	contact := out["contacts"].([]any)[0].(map[string]any)
	assert.Equal(t, "****3210", contact["phone"])
	assert.NotContains(t, out, " ")
	assert.Equal(t, "29ABCDE1234F1Z5", in["customer_tax_id"])
	assert.Nil(t, MaskSensitive(nil))
}
