package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	invoicedomain "github.com/whizlyai/whizly/internal/invoice/domain"
	taxdomain "github.com/whizlyai/whizly/internal/tax/domain"
)

const dateLayout = "2006-01-02"

// validateTaxInputs checks the withholding fields against the tax policy and
// returns the parsed withholding type.
func validateTaxInputs(verr *invoicedomain.ValidationError, policy taxdomain.Policy, rawType string, rate decimal.Decimal) taxdomain.WithholdingType {
	withholdingType, err := taxdomain.ParseWithholdingType(rawType)
	if err != nil {
		verr.Add("withholding_tax_type", "invalid", "withholding tax type must be TCS or TDS")
	}
	if !policy.IsValidWithholdingRate(rate) {
		verr.Add("withholding_tax_rate", "not_allowed", fmt.Sprintf("withholding rate %s%% is not allowed", rate.String()))
	}
	return withholdingType
}

func validateLineItems(verr *invoicedomain.ValidationError, policy taxdomain.Policy, items []invoicedomain.LineItem) {
	seen := make(map[string]struct{}, len(items))
	for i, item := range items {
		field := fmt.Sprintf("line_items[%d]", i)
		if item.Quantity.IsNegative() {
			verr.Add(field+".quantity", "negative", "quantity cannot be negative")
		}
		if item.UnitPrice.IsNegative() {
			verr.Add(field+".unit_price", "negative", "unit price cannot be negative")
		}
		if !policy.IsValidGSTRate(item.GSTRate) {
			verr.Add(field+".gst_rate", "not_allowed", fmt.Sprintf("GST rate %s%% is not a configured slab", item.GSTRate.String()))
		}
		if item.ID == "" {
			continue
		}
		if _, dup := seen[item.ID]; dup {
			verr.Add(field+".id", "duplicate", "line item ids must be unique")
		}
		seen[item.ID] = struct{}{}
	}
}

// normalizeLineItems copies the items, trimming text and assigning ids to
// lines that have none.
func normalizeLineItems(items []invoicedomain.LineItem) []invoicedomain.LineItem {
	out := make([]invoicedomain.LineItem, 0, len(items))
	for _, item := range items {
		item.ID = strings.TrimSpace(item.ID)
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
		item.Description = strings.TrimSpace(item.Description)
		out = append(out, item)
	}
	return out
}

func parseRequiredID(verr *invoicedomain.ValidationError, field, raw string) snowflake.ID {
	if strings.TrimSpace(raw) == "" {
		verr.Add(field, "required", field+" is required")
		return 0
	}
	id, err := parseID(raw)
	if err != nil {
		verr.Add(field, "invalid", field+" must be a numeric id")
		return 0
	}
	return id
}

func parseRequiredDate(verr *invoicedomain.ValidationError, field, raw string) time.Time {
	if strings.TrimSpace(raw) == "" {
		verr.Add(field, "required", field+" is required")
		return time.Time{}
	}
	parsed, err := parseDate(raw)
	if err != nil {
		verr.Add(field, "invalid", "expected YYYY-MM-DD")
		return time.Time{}
	}
	return parsed
}

// parseDate accepts YYYY-MM-DD or RFC 3339 and returns midnight UTC of the
// calendar date as written.
func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	parsed, err := time.Parse(dateLayout, raw)
	if err != nil {
		parsed, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			return time.Time{}, err
		}
	}
	return time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC), nil
}
