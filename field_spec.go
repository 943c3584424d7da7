package spayd

import "slices"

// Presence is the policy a field applies when its key is missing or empty.
type Presence uint8

const (
	// Optional fields stay unset when absent.
	Optional Presence = iota
	// OptionalWithDefault fields take their typed default when absent.
	OptionalWithDefault
	// Required fields record a field error when absent or empty.
	Required
)

func (p Presence) String() string {
	switch p {
	case Optional:
		return "optional"
	case OptionalWithDefault:
		return "optional-with-default"
	case Required:
		return "required"
	default:
		return "unknown"
	}
}

// FieldKind is the semantic type of a descriptor field.
type FieldKind uint8

const (
	KindString FieldKind = iota
	KindDecimal
	KindDate
	KindCode
	KindInteger
	KindFlag
	KindCurrency
	KindAccount
	KindAccountList
	KindSymbol
	KindCounter
	KindChannel
	KindContact
	KindChecksum
)

var kindNames = map[FieldKind]string{
	KindString:      "string",
	KindDecimal:     "decimal",
	KindDate:        "date",
	KindCode:        "code",
	KindInteger:     "integer",
	KindFlag:        "flag",
	KindCurrency:    "currency",
	KindAccount:     "account",
	KindAccountList: "account-list",
	KindSymbol:      "symbol",
	KindCounter:     "counter",
	KindChannel:     "channel",
	KindContact:     "contact",
	KindChecksum:    "checksum",
}

func (k FieldKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// FieldSpec describes one recognized key of a descriptor: what it holds,
// what happens when it is absent and which rule a present value must pass.
//
// Rule parameters that do not apply to a kind are left zero:
//   - MaxLen: maximum length (runes for text, characters for numbers). 0 is unbounded.
//   - MaxDecimals: maximum digits after the decimal point (KindDecimal).
//   - Allowed: the accepted codes (KindCode).
//   - Ceiling: the clamp value (KindCounter) or max list size (KindAccountList).
type FieldSpec struct {
	Key         string
	Name        string
	Kind        FieldKind
	Presence    Presence
	MaxLen      int
	MaxDecimals int
	Allowed     []int
	Ceiling     int
}

// Allows reports whether code is part of the field's allowed set.
func (fs FieldSpec) Allows(code int) bool {
	return slices.Contains(fs.Allowed, code)
}

// Label is the human readable reference used in error messages.
func (fs FieldSpec) Label() string {
	if fs.Name == "" || fs.Name == fs.Key {
		return fs.Key
	}
	return fs.Name + " (" + fs.Key + ")"
}
