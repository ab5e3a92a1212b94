package domain

import "errors"

var (
	ErrInvalidGSTRate         = errors.New("invalid_gst_rate")
	ErrInvalidWithholdingRate = errors.New("invalid_withholding_rate")
	ErrInvalidWithholdingType = errors.New("invalid_withholding_type")
)
