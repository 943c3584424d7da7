package spayd

// constants for descriptor framing
const (
	PaymentTag  = "SPD"
	InvoiceTag  = "SID"
	PairDelim   = "*"
	KeyValDelim = ":"

	AccountFragmentDelim = ","
	AccountBICDelim      = "+"
)

// Payment descriptor keys.
const (
	KeyAccount            = "ACC"
	KeyAlternateAccounts  = "ALT-ACC"
	KeyAmount             = "AM"
	KeyCurrency           = "CC"
	KeyRecipientReference = "RF"
	KeyRecipientName      = "RN"
	KeyDate               = "DT"
	KeyPaymentType        = "PT"
	KeyMessage            = "MSG"
	KeyChecksum           = "CRC32"
	KeyNotifyChannel      = "NT"
	KeyNotifyContact      = "NTA"
	KeyRepeat             = "X-PER"
	KeyVariableSymbolX    = "X-VS"
	KeySpecificSymbol     = "X-SS"
	KeyConstantSymbol     = "X-KS"
	KeyIdentifier         = "X-ID"
	KeyURL                = "X-URL"
)

// Invoice descriptor keys. ACC, AM, CC, DT and X-URL are shared with the
// payment descriptor.
const (
	KeyInvoiceID            = "ID"
	KeyIssuedDate           = "DD"
	KeyTaxPerformance       = "TP"
	KeyInvoiceType          = "TD"
	KeyAdvancesSettlement   = "SA"
	KeyVariableSymbol       = "VS"
	KeyIssuerVATID          = "VII"
	KeyIssuerID             = "INI"
	KeyRecipientVATID       = "VIR"
	KeyRecipientID          = "INR"
	KeyTaxPerformanceDate   = "DUZP"
	KeyTaxStatementDueDate  = "DPPD"
	KeyTaxBase0             = "TB0"
	KeyTax0                 = "T0"
	KeyTaxBase1             = "TB1"
	KeyTax1                 = "T1"
	KeyTaxBase2             = "TB2"
	KeyTax2                 = "T2"
	KeyNonTaxable           = "NTB"
	KeyExchangeRate         = "FX"
	KeyForeignCurrencyUnits = "FXA"
	KeySoftware             = "X-SW"
)

// Field limits.
const (
	MaxPaymentAmountLength  = 10
	MaxInvoiceAmountLength  = 18
	MaxAmountDecimals       = 2
	MaxExchangeRateDecimals = 3
	MaxSymbolLength         = 10
	MaxReferenceLength      = 16
	MaxRecipientNameLength  = 35
	MaxPaymentTypeLength    = 3
	MaxMessageLength        = 60
	MaxIdentifierLength     = 20
	MaxPaymentURLLength     = 140
	MaxInvoiceIDLength      = 40
	MaxSoftwareLength       = 30
	MaxInvoiceURLLength     = 70
	MaxAlternateAccounts    = 2
	RepeatCeiling           = 30
	ChecksumLength          = 8
	DateLayout              = "20060102"
)

// Parser name constants for built in parsers.
const (
	PaymentParserName = "spd-parser"
	InvoiceParserName = "sid-parser"
)

