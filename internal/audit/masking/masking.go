// Package masking redacts customer identifiers and credentials before they
// reach the audit trail.
package masking

import "strings"

const maskToken = "****"

type maskFunc func(string) string

// Keys are matched case-insensitively. Anything ending in _email, _phone or
// _tax_id is treated like the bare key.
var maskers = map[string]maskFunc{
	"tax_id":         MaskTaxID,
	"gstin":          MaskTaxID,
	"email":          MaskEmail,
	"phone":          MaskTaxID,
	"signature":      redact,
	"webhook_secret": redact,
	"authorization":  redact,
}

// MaskTaxID keeps the last four characters, which is enough to tell two
// GSTINs of the same customer apart.
func MaskTaxID(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if len(value) <= 4 {
		return maskToken
	}
	return maskToken + value[len(value)-4:]
}

// MaskEmail keeps the first character of the mailbox and the domain.
func MaskEmail(value string) string {
	value = strings.TrimSpace(value)
	local, domain, ok := strings.Cut(value, "@")
	if !ok || local == "" || domain == "" {
		return MaskTaxID(value)
	}
	return local[:1] + maskToken + "@" + domain
}

func redact(value string) string {
	if strings.TrimSpace(value) == "" {
		return ""
	}
	return maskToken
}

// MaskSensitive returns a masked copy of metadata. Nested maps and lists are
// walked; the input is not modified.
func MaskSensitive(input map[string]any) map[string]any {
	if len(input) == 0 {
		return nil
	}
	out := make(map[string]any, len(input))
	for key, value := range input {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		out[key] = maskAny(maskerFor(key), value)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func maskerFor(key string) maskFunc {
	key = strings.ToLower(key)
	if fn, ok := maskers[key]; ok {
		return fn
	}
	for suffix, fn := range maskers {
		if strings.HasSuffix(key, "_"+suffix) {
			return fn
		}
	}
	return nil
}

func maskAny(fn maskFunc, value any) any {
	switch v := value.(type) {
	case string:
		if fn == nil {
			return v
		}
		return fn(v)
	case map[string]any:
		return MaskSensitive(v)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = maskAny(fn, item)
		}
		return out
	}
	return value
}
