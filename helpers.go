package spayd

import (
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/shopspring/decimal"
)

///////////////////////////////////////////////////////////////////////////////
// Helpers
///////////////////////////////////////////////////////////////////////////////

var (
	datePattern     = regexp.MustCompile(`^[0-9]{8}$`)
	decimalPattern  = regexp.MustCompile(`^[+-]?[0-9]+(\.[0-9]+)?$`)
	digitsPattern   = regexp.MustCompile(`^[0-9]+$`)
	hexPattern      = regexp.MustCompile(`^[0-9A-Fa-f]+$`)
	versionPattern  = regexp.MustCompile(`^[0-9]+\.[0-9]+$`)
	currencyPattern = regexp.MustCompile(`^[A-Za-z]{3}$`)
)

var (
	// strictTextPolicy removes all HTML tags and attributes.
	strictTextPolicy *bluemonday.Policy
)

func init() {
	strictTextPolicy = bluemonday.StrictPolicy()
}

// sanitizeText strips markup and unprintable characters from free text. The
// policy escapes what it keeps, so the result is unescaped again to stay
// plain text.
func sanitizeText(s string) string {
	return html.UnescapeString(strictTextPolicy.Sanitize(stripUnprintable(s)))
}

// stripUnprintable removes non-printable characters, keeping spaces and tabs.
func stripUnprintable(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) || r == '\t' {
			return r
		}
		return -1
	}, s)
}

// textLength counts characters, not bytes.
func textLength(s string) int {
	return utf8.RuneCountInString(s)
}

// parseDate reads a YYYYMMDD calendar date in UTC.
func parseDate(value string) (time.Time, error) {
	if !datePattern.MatchString(value) {
		return time.Time{}, fmt.Errorf("%q is not a date in YYYYMMDD format", value)
	}
	date, err := time.ParseInLocation(DateLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q is not a calendar date", value)
	}
	return date, nil
}

// parseDecimal reads a culture-invariant decimal with an optional sign,
// bounded by the raw text length and the number of decimal places.
func parseDecimal(value string, maxLen, maxDecimals int) (decimal.Decimal, error) {
	if !decimalPattern.MatchString(value) {
		return decimal.Decimal{}, fmt.Errorf("%q is not a decimal number", value)
	}
	if maxLen > 0 && len(value) > maxLen {
		return decimal.Decimal{}, fmt.Errorf("must be at most %d characters long, got %d", maxLen, len(value))
	}
	if _, fraction, ok := strings.Cut(value, "."); ok && len(fraction) > maxDecimals {
		return decimal.Decimal{}, fmt.Errorf("must have at most %d decimal places, got %d", maxDecimals, len(fraction))
	}
	amount, err := decimal.NewFromString(strings.TrimPrefix(value, "+"))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("error converting value to decimal: %w", err)
	}
	return amount, nil
}

// parseDigits reads an unsigned decimal integer of at most maxLen digits.
// Leading zeros are allowed.
func parseDigits(value string, maxLen int) (int64, error) {
	if !digitsPattern.MatchString(value) {
		return 0, fmt.Errorf("%q must contain digits only", value)
	}
	if maxLen > 0 && len(value) > maxLen {
		return 0, fmt.Errorf("must be at most %d digits long, got %d", maxLen, len(value))
	}
	number, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("error converting value to int: %w", err)
	}
	return number, nil
}

// clamp limits n to [lo, hi].
func clamp(n, lo, hi int) int {
	return min(max(n, lo), hi)
}
