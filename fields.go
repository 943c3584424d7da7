package spayd

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

///////////////////////////////////////////////////////////////////////////////
// Field
///////////////////////////////////////////////////////////////////////////////

// FieldContext is what a FieldFunc may look at besides its own raw value.
type FieldContext struct {
	Spec  FieldSpec
	Pairs Pairs
	Opts  ParserOpts
}

// FieldFunc turns the raw value of one present, non-empty key into an
// Outcome. It must not have side effects; an Invalid outcome carries a
// *FieldError.
type FieldFunc[T any] func(ctx FieldContext, raw string) Outcome[T]

// Field is one row of a descriptor field table.
type Field[T any] struct {
	FieldSpec
	Parse   FieldFunc[T]
	Default T // used when Presence is OptionalWithDefault and the key is absent
}

// NewField builds a Field with the zero value as default.
func NewField[T any](spec FieldSpec, parse func(ctx FieldContext, raw string) Outcome[T]) Field[T] {
	return Field[T]{FieldSpec: spec, Parse: parse}
}

// WithDefault returns a copy of the field that falls back to def.
func (f Field[T]) WithDefault(def T) Field[T] {
	f.Default = def
	if f.Presence == Optional {
		f.Presence = OptionalWithDefault
	}
	return f
}

// Resolve looks the field's key up in pairs and parses it. A missing or
// empty value is Absent, unless the field is Required, where it is Invalid.
func (f Field[T]) Resolve(pairs Pairs, opts ParserOpts) Outcome[T] {
	raw, ok := pairs.Lookup(f.Key)
	if !ok || raw == "" {
		if f.Presence == Required {
			return OutcomeInvalid[T](newFieldError(f.FieldSpec, "value is required"))
		}
		return OutcomeAbsent[T]()
	}
	return f.Parse(FieldContext{Spec: f.FieldSpec, Pairs: pairs, Opts: opts}, raw)
}

func invalid[T any](ctx FieldContext, format string, args ...any) Outcome[T] {
	return OutcomeInvalid[T](newFieldError(ctx.Spec, format, args...))
}

///////////////////////////////////////////////////////////////////////////////
// Field Funcs
///////////////////////////////////////////////////////////////////////////////

// ParseText accepts free text of at most Spec.MaxLen characters.
func ParseText(ctx FieldContext, raw string) Outcome[string] {
	text := raw
	if ctx.Opts.SanitizeText {
		text = sanitizeText(text)
	}
	if n := textLength(text); ctx.Spec.MaxLen > 0 && n > ctx.Spec.MaxLen {
		return invalid[string](ctx, "must be at most %d characters long, got %d", ctx.Spec.MaxLen, n)
	}
	return OutcomePresent(text)
}

// ParseDate accepts a YYYYMMDD calendar date.
func ParseDate(ctx FieldContext, raw string) Outcome[time.Time] {
	date, err := parseDate(raw)
	if err != nil {
		return invalid[time.Time](ctx, "%s", err)
	}
	return OutcomePresent(date)
}

// ParseDecimal accepts a decimal bounded by Spec.MaxLen and Spec.MaxDecimals.
func ParseDecimal(ctx FieldContext, raw string) Outcome[decimal.Decimal] {
	amount, err := parseDecimal(raw, ctx.Spec.MaxLen, ctx.Spec.MaxDecimals)
	if err != nil {
		return invalid[decimal.Decimal](ctx, "%s", err)
	}
	return OutcomePresent(amount)
}

// ParseCode accepts an integer from Spec.Allowed. A value outside the set is
// an error and never falls back to the field default.
func ParseCode(ctx FieldContext, raw string) Outcome[int] {
	code, err := strconv.Atoi(raw)
	if err != nil || !ctx.Spec.Allows(code) {
		return invalid[int](ctx, "%q is not one of %v", raw, ctx.Spec.Allowed)
	}
	return OutcomePresent(code)
}

// ParseInteger accepts an unsigned integer of at most Spec.MaxLen digits.
// A MaxLen of 0 only bounds the value by the range of an int64.
func ParseInteger(ctx FieldContext, raw string) Outcome[int] {
	number, err := parseDigits(raw, ctx.Spec.MaxLen)
	if err != nil {
		return invalid[int](ctx, "%s", err)
	}
	return OutcomePresent(int(number))
}

// ParseFlag accepts exactly "0" or "1".
func ParseFlag(ctx FieldContext, raw string) Outcome[bool] {
	switch raw {
	case "0":
		return OutcomePresent(false)
	case "1":
		return OutcomePresent(true)
	default:
		return invalid[bool](ctx, "%q must be 0 or 1", raw)
	}
}

// ParseCurrency accepts an ISO 4217 code in any case and keeps the casing
// of the input.
func ParseCurrency(ctx FieldContext, raw string) Outcome[string] {
	if !currencyPattern.MatchString(raw) || !IsCurrencyCode(raw) {
		return invalid[string](ctx, "%q is not an ISO 4217 currency code", raw)
	}
	return OutcomePresent(raw)
}

// ParseAccount accepts "<IBAN>[+BIC]". Anything after the first comma is an
// alternate account and is ignored here.
func ParseAccount(ctx FieldContext, raw string) Outcome[BankAccount] {
	first, _, _ := strings.Cut(raw, AccountFragmentDelim)
	account, ok := parseAccount(first)
	if !ok {
		return invalid[BankAccount](ctx, "%q is not a valid IBAN", first)
	}
	return OutcomePresent(account)
}

// ParseAccountList accepts up to Spec.Ceiling comma-separated accounts, all
// of which must be valid.
func ParseAccountList(ctx FieldContext, raw string) Outcome[[]BankAccount] {
	fragments := strings.Split(raw, AccountFragmentDelim)
	if ctx.Spec.Ceiling > 0 && len(fragments) > ctx.Spec.Ceiling {
		return invalid[[]BankAccount](ctx, "at most %d accounts are allowed, got %d", ctx.Spec.Ceiling, len(fragments))
	}
	accounts := make([]BankAccount, 0, len(fragments))
	for _, fragment := range fragments {
		account, ok := parseAccount(fragment)
		if !ok {
			return invalid[[]BankAccount](ctx, "%q is not a valid IBAN", fragment)
		}
		accounts = append(accounts, account)
	}
	return OutcomePresent(accounts)
}

func parseAccount(fragment string) (BankAccount, bool) {
	iban, bic, _ := strings.Cut(fragment, AccountBICDelim)
	if !ValidateIBAN(iban) {
		return BankAccount{}, false
	}
	return BankAccount{IBAN: NormalizeIBAN(iban), BIC: strings.TrimSpace(bic)}, true
}

// ParseSymbol accepts digits only, at most Spec.MaxLen of them.
func ParseSymbol(ctx FieldContext, raw string) Outcome[int64] {
	symbol, err := parseDigits(raw, ctx.Spec.MaxLen)
	if err != nil {
		return invalid[int64](ctx, "%s", err)
	}
	return OutcomePresent(symbol)
}

// ParseCounter never fails: the value is clamped into [0, Spec.Ceiling] and
// anything that is not an integer counts as 0. Integers too large for an int
// clamp like any other.
func ParseCounter(ctx FieldContext, raw string) Outcome[int] {
	count, err := strconv.Atoi(raw)
	if errors.Is(err, strconv.ErrRange) {
		if strings.HasPrefix(raw, "-") {
			return OutcomePresent(0)
		}
		return OutcomePresent(ctx.Spec.Ceiling)
	}
	if err != nil {
		return OutcomePresent(0)
	}
	return OutcomePresent(clamp(count, 0, ctx.Spec.Ceiling))
}

// ParseChannel accepts P or E in any case. Anything else is treated as
// absent, not as an error.
func ParseChannel(ctx FieldContext, raw string) Outcome[NotificationChannel] {
	channel, ok := parseChannel(raw)
	if !ok {
		return OutcomeAbsent[NotificationChannel]()
	}
	return OutcomePresent(channel)
}

func parseChannel(raw string) (NotificationChannel, bool) {
	if len(raw) != 1 {
		return 0, false
	}
	switch channel := NotificationChannel(strings.ToUpper(raw)[0]); channel {
	case ChannelPhone, ChannelEmail:
		return channel, true
	default:
		return 0, false
	}
}

// ParseContact keeps the contact only when the notification channel resolved
// to a known value.
func ParseContact(ctx FieldContext, raw string) Outcome[string] {
	channel, _ := ctx.Pairs.Lookup(KeyNotifyChannel)
	if _, ok := parseChannel(channel); !ok {
		return OutcomeAbsent[string]()
	}
	return OutcomePresent(raw)
}

// ParseChecksum accepts exactly ChecksumLength hex digits and returns them
// upper-cased.
func ParseChecksum(ctx FieldContext, raw string) Outcome[string] {
	if len(raw) != ChecksumLength || !hexPattern.MatchString(raw) {
		return invalid[string](ctx, "%q must be %d hexadecimal characters", raw, ChecksumLength)
	}
	return OutcomePresent(strings.ToUpper(raw))
}
