package format

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Supported tokens:
//
//	{YYYY} {YY} {MM} {DD}  issue date parts
//	{FY}                   Indian financial year, e.g. 2025-26 (April to March)
//	{SEQ}                  raw sequence
//	{SEQn}                 sequence zero-padded to n digits
const DefaultNumberTemplate = "INV-{YYYY}{MM}-{SEQ5}"

var (
	ErrEmptyTemplate   = errors.New("invoice number template is empty")
	ErrInvalidSequence = errors.New("invoice sequence must be positive")
	ErrMissingSequence = errors.New("invoice number template has no sequence token")

	tokenRe = regexp.MustCompile(`\{[A-Z]+\d*\}`)
	seqRe   = regexp.MustCompile(`^\{SEQ(\d*)\}$`)
)

// ValidateTemplate reports whether every token in template is known and the
// template carries a sequence, so that generated numbers stay unique per tenant.
func ValidateTemplate(template string) error {
	if strings.TrimSpace(template) == "" {
		return ErrEmptyTemplate
	}
	hasSeq := false
	for _, tok := range tokenRe.FindAllString(template, -1) {
		if m := seqRe.FindStringSubmatch(tok); m != nil {
			if m[1] != "" {
				if w, err := strconv.Atoi(m[1]); err != nil || w <= 0 || w > 12 {
					return fmt.Errorf("invalid sequence width in %s", tok)
				}
			}
			hasSeq = true
			continue
		}
		switch tok {
		case "{YYYY}", "{YY}", "{MM}", "{DD}", "{FY}":
		default:
			return fmt.Errorf("unknown token %s in invoice number template", tok)
		}
	}
	if !hasSeq {
		return ErrMissingSequence
	}
	rest := tokenRe.ReplaceAllString(template, "")
	if strings.ContainsAny(rest, "{}") {
		return fmt.Errorf("unbalanced braces in invoice number template %q", template)
	}
	return nil
}

// FormatInvoiceNumber renders template for the given issue date and sequence.
func FormatInvoiceNumber(template string, issuedAt time.Time, seq int64) (string, error) {
	if err := ValidateTemplate(template); err != nil {
		return "", err
	}
	if seq <= 0 {
		return "", fmt.Errorf("%w: %d", ErrInvalidSequence, seq)
	}

	out := tokenRe.ReplaceAllStringFunc(template, func(tok string) string {
		switch tok {
		case "{YYYY}":
			return issuedAt.Format("2006")
		case "{YY}":
			return issuedAt.Format("06")
		case "{MM}":
			return issuedAt.Format("01")
		case "{DD}":
			return issuedAt.Format("02")
		case "{FY}":
			return FinancialYear(issuedAt)
		}
		m := seqRe.FindStringSubmatch(tok)
		if m[1] == "" {
			return strconv.FormatInt(seq, 10)
		}
		width, _ := strconv.Atoi(m[1])
		return fmt.Sprintf("%0*d", width, seq)
	})
	return out, nil
}

// FinancialYear returns the April-March year containing t, as "2025-26".
func FinancialYear(t time.Time) string {
	start := t.Year()
	if t.Month() < time.April {
		start--
	}
	return fmt.Sprintf("%d-%02d", start, (start+1)%100)
}
