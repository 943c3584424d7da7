package spayd

import (
	"fmt"
	"hash/crc32"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

///////////////////////////////////////////////////////////////////////////////
// Records
///////////////////////////////////////////////////////////////////////////////

// Descriptor is a successfully parsed descriptor record.
type Descriptor interface {
	// Tag is the three-letter descriptor tag, SPD or SID.
	Tag() string
	// ProtocolVersion is the version token that follows the tag, or "" when
	// the descriptor has none.
	ProtocolVersion() string
}

// BankAccount is an IBAN with an optional BIC. The IBAN is validated and
// stored in its compact upper-case form.
type BankAccount struct {
	IBAN string `json:"iban" yaml:"iban"`
	BIC  string `json:"bic,omitempty" yaml:"bic,omitempty"`
}

func (ba BankAccount) String() string {
	if ba.BIC == "" {
		return ba.IBAN
	}
	return ba.IBAN + AccountBICDelim + ba.BIC
}

// NotificationChannel is how the recipient wants to be told about the
// payment.
type NotificationChannel byte

const (
	ChannelPhone NotificationChannel = 'P'
	ChannelEmail NotificationChannel = 'E'
)

func (nc NotificationChannel) String() string {
	switch nc {
	case ChannelPhone:
		return "phone"
	case ChannelEmail:
		return "email"
	default:
		return "unknown"
	}
}

// MarshalText writes the channel as it appears in a descriptor.
func (nc NotificationChannel) MarshalText() ([]byte, error) {
	if _, ok := parseChannel(string(rune(nc))); !ok {
		return nil, fmt.Errorf("unknown notification channel %q", rune(nc))
	}
	return []byte{byte(nc)}, nil
}

// UnmarshalText reads P or E in any case.
func (nc *NotificationChannel) UnmarshalText(text []byte) error {
	channel, ok := parseChannel(string(text))
	if !ok {
		return fmt.Errorf("unknown notification channel %q", text)
	}
	*nc = channel
	return nil
}

// Payment is a parsed Short Payment Descriptor (SPD). Pointer fields are nil
// when the key was absent.
type Payment struct {
	Version            string               `json:"version" yaml:"version"`
	Account            BankAccount          `json:"account" yaml:"account"`
	AlternateAccounts  []BankAccount        `json:"alternate_accounts,omitempty" yaml:"alternate_accounts,omitempty"`
	Amount             *decimal.Decimal     `json:"amount,omitempty" yaml:"amount,omitempty"`
	Currency           string               `json:"currency,omitempty" yaml:"currency,omitempty"`
	RecipientReference *int64               `json:"recipient_reference,omitempty" yaml:"recipient_reference,omitempty"`
	RecipientName      string               `json:"recipient_name,omitempty" yaml:"recipient_name,omitempty"`
	DueDate            *time.Time           `json:"due_date,omitempty" yaml:"due_date,omitempty"`
	PaymentType        string               `json:"payment_type,omitempty" yaml:"payment_type,omitempty"`
	Message            string               `json:"message,omitempty" yaml:"message,omitempty"`
	Checksum           string               `json:"checksum,omitempty" yaml:"checksum,omitempty"`
	NotifyChannel      *NotificationChannel `json:"notify_channel,omitempty" yaml:"notify_channel,omitempty"`
	NotifyContact      string               `json:"notify_contact,omitempty" yaml:"notify_contact,omitempty"`
	Repeat             int                  `json:"repeat" yaml:"repeat"`
	VariableSymbol     *int64               `json:"variable_symbol,omitempty" yaml:"variable_symbol,omitempty"`
	SpecificSymbol     *int64               `json:"specific_symbol,omitempty" yaml:"specific_symbol,omitempty"`
	ConstantSymbol     *int64               `json:"constant_symbol,omitempty" yaml:"constant_symbol,omitempty"`
	Identifier         string               `json:"identifier,omitempty" yaml:"identifier,omitempty"`
	URL                string               `json:"url,omitempty" yaml:"url,omitempty"`
}

func (p Payment) Tag() string {
	return PaymentTag
}

func (p Payment) ProtocolVersion() string {
	return p.Version
}

///////////////////////////////////////////////////////////////////////////////
// Field Table
///////////////////////////////////////////////////////////////////////////////

var paymentChain = mustParseChain(PaymentTag,
	Bind(NewField(FieldSpec{Key: KeyAccount, Name: "Account", Kind: KindAccount, Presence: Required}, ParseAccount),
		func(p *Payment, v BankAccount) { p.Account = v }),
	Bind(NewField(FieldSpec{Key: KeyAlternateAccounts, Name: "Alternate accounts", Kind: KindAccountList, Ceiling: MaxAlternateAccounts}, ParseAccountList),
		func(p *Payment, v []BankAccount) { p.AlternateAccounts = v }),
	Bind(NewField(FieldSpec{Key: KeyAmount, Name: "Amount", Kind: KindDecimal, MaxLen: MaxPaymentAmountLength, MaxDecimals: MaxAmountDecimals}, ParseDecimal),
		func(p *Payment, v decimal.Decimal) { p.Amount = &v }),
	Bind(NewField(FieldSpec{Key: KeyCurrency, Name: "Currency", Kind: KindCurrency}, ParseCurrency),
		func(p *Payment, v string) { p.Currency = v }),
	Bind(NewField(FieldSpec{Key: KeyRecipientReference, Name: "Recipient reference", Kind: KindSymbol, MaxLen: MaxReferenceLength}, ParseSymbol),
		func(p *Payment, v int64) { p.RecipientReference = &v }),
	Bind(NewField(FieldSpec{Key: KeyRecipientName, Name: "Recipient name", Kind: KindString, MaxLen: MaxRecipientNameLength}, ParseText),
		func(p *Payment, v string) { p.RecipientName = v }),
	Bind(NewField(FieldSpec{Key: KeyDate, Name: "Due date", Kind: KindDate}, ParseDate),
		func(p *Payment, v time.Time) { p.DueDate = &v }),
	Bind(NewField(FieldSpec{Key: KeyPaymentType, Name: "Payment type", Kind: KindString, MaxLen: MaxPaymentTypeLength}, ParseText),
		func(p *Payment, v string) { p.PaymentType = v }),
	Bind(NewField(FieldSpec{Key: KeyMessage, Name: "Message", Kind: KindString, MaxLen: MaxMessageLength}, ParseText),
		func(p *Payment, v string) { p.Message = v }),
	Bind(NewField(FieldSpec{Key: KeyChecksum, Name: "Checksum", Kind: KindChecksum}, ParseChecksum),
		func(p *Payment, v string) { p.Checksum = v }),
	Bind(NewField(FieldSpec{Key: KeyNotifyChannel, Name: "Notification channel", Kind: KindChannel}, ParseChannel),
		func(p *Payment, v NotificationChannel) { p.NotifyChannel = &v }),
	Bind(NewField(FieldSpec{Key: KeyNotifyContact, Name: "Notification contact", Kind: KindContact}, ParseContact),
		func(p *Payment, v string) { p.NotifyContact = v }),
	Bind(NewField(FieldSpec{Key: KeyRepeat, Name: "Repeat days", Kind: KindCounter, Ceiling: RepeatCeiling}, ParseCounter).WithDefault(0),
		func(p *Payment, v int) { p.Repeat = v }),
	Bind(NewField(FieldSpec{Key: KeyVariableSymbolX, Name: "Variable symbol", Kind: KindSymbol, MaxLen: MaxSymbolLength}, ParseSymbol),
		func(p *Payment, v int64) { p.VariableSymbol = &v }),
	Bind(NewField(FieldSpec{Key: KeySpecificSymbol, Name: "Specific symbol", Kind: KindSymbol, MaxLen: MaxSymbolLength}, ParseSymbol),
		func(p *Payment, v int64) { p.SpecificSymbol = &v }),
	Bind(NewField(FieldSpec{Key: KeyConstantSymbol, Name: "Constant symbol", Kind: KindSymbol, MaxLen: MaxSymbolLength}, ParseSymbol),
		func(p *Payment, v int64) { p.ConstantSymbol = &v }),
	Bind(NewField(FieldSpec{Key: KeyIdentifier, Name: "Payer identifier", Kind: KindString, MaxLen: MaxIdentifierLength}, ParseText),
		func(p *Payment, v string) { p.Identifier = v }),
	Bind(NewField(FieldSpec{Key: KeyURL, Name: "URL", Kind: KindString, MaxLen: MaxPaymentURLLength}, ParseText),
		func(p *Payment, v string) { p.URL = v }),
)

// PaymentFields returns the field specs of the SPD table in evaluation order.
func PaymentFields() []FieldSpec {
	return paymentChain.Specs()
}

///////////////////////////////////////////////////////////////////////////////
// Checksum
///////////////////////////////////////////////////////////////////////////////

// Checksum computes the CRC32 (IEEE) of the canonical form of a descriptor:
// the tag, the version and every pair except CRC32 sorted by key, all joined
// with the pair delimiter. Values are hashed as given, so pairs should be
// extracted with KeepEncoded to match the text a producer signed. The result
// is 8 upper-case hex digits.
func Checksum(tag, version string, pairs Pairs) string {
	parts := make([]string, 0, len(pairs)+2)
	parts = append(parts, tag, version)
	for _, key := range pairs.Keys() {
		if key == KeyChecksum {
			continue
		}
		parts = append(parts, key+KeyValDelim+pairs[key])
	}
	canonical := strings.Join(parts, PairDelim)
	return fmt.Sprintf("%08X", crc32.ChecksumIEEE([]byte(canonical)))
}

// verifyPaymentChecksum compares a well-formed CRC32 value with the content.
// pairs hold the undecoded values. A missing or malformed CRC32 is left to
// the field table.
func verifyPaymentChecksum(version string, pairs Pairs) error {
	given, ok := pairs.Lookup(KeyChecksum)
	if !ok || len(given) != ChecksumLength || !hexPattern.MatchString(given) {
		return nil
	}
	if expected := Checksum(PaymentTag, version, pairs); !strings.EqualFold(given, expected) {
		return fmt.Errorf("%w: CRC32 is %s, content hashes to %s", ErrChecksumMismatch, strings.ToUpper(given), expected)
	}
	return nil
}
