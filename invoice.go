package spayd

import (
	"time"

	"github.com/shopspring/decimal"
)

// TaxPerformance is the TP code of an invoice.
type TaxPerformance int

const (
	TaxPerformanceCommon        TaxPerformance = 0
	TaxPerformanceReverseCharge TaxPerformance = 1
	TaxPerformanceMixed         TaxPerformance = 2
)

func (tp TaxPerformance) String() string {
	switch tp {
	case TaxPerformanceCommon:
		return "common"
	case TaxPerformanceReverseCharge:
		return "reverse-charge"
	case TaxPerformanceMixed:
		return "mixed"
	default:
		return "unknown"
	}
}

// InvoiceType is the TD code of an invoice.
type InvoiceType int

const (
	InvoiceTypeNonTax            InvoiceType = 0
	InvoiceTypeCorrecting        InvoiceType = 1
	InvoiceTypeReceipt           InvoiceType = 2
	InvoiceTypeRepaymentSchedule InvoiceType = 3
	InvoiceTypePaymentSchedule   InvoiceType = 4
	InvoiceTypeAggregate         InvoiceType = 5
	InvoiceTypeOther             InvoiceType = 9
)

var invoiceTypeNames = map[InvoiceType]string{
	InvoiceTypeNonTax:            "non-tax",
	InvoiceTypeCorrecting:        "correcting",
	InvoiceTypeReceipt:           "receipt",
	InvoiceTypeRepaymentSchedule: "repayment-schedule",
	InvoiceTypePaymentSchedule:   "payment-schedule",
	InvoiceTypeAggregate:         "aggregate",
	InvoiceTypeOther:             "other",
}

func (it InvoiceType) String() string {
	if name, ok := invoiceTypeNames[it]; ok {
		return name
	}
	return "unknown"
}

// Invoice is a parsed Short Invoice Descriptor (SID). Pointer fields are nil
// when the key was absent.
type Invoice struct {
	Version              string           `json:"version" yaml:"version"`
	ID                   string           `json:"id" yaml:"id"`
	IssuedDate           time.Time        `json:"issued_date" yaml:"issued_date"`
	Amount               decimal.Decimal  `json:"amount" yaml:"amount"`
	TaxPerformance       TaxPerformance   `json:"tax_performance" yaml:"tax_performance"`
	InvoiceType          InvoiceType      `json:"invoice_type" yaml:"invoice_type"`
	AdvancesSettlement   bool             `json:"advances_settlement" yaml:"advances_settlement"`
	VariableSymbol       *int64           `json:"variable_symbol,omitempty" yaml:"variable_symbol,omitempty"`
	IssuerVATID          string           `json:"issuer_vat_id,omitempty" yaml:"issuer_vat_id,omitempty"`
	IssuerID             string           `json:"issuer_id,omitempty" yaml:"issuer_id,omitempty"`
	RecipientVATID       string           `json:"recipient_vat_id,omitempty" yaml:"recipient_vat_id,omitempty"`
	RecipientID          string           `json:"recipient_id,omitempty" yaml:"recipient_id,omitempty"`
	TaxPerformanceDate   *time.Time       `json:"tax_performance_date,omitempty" yaml:"tax_performance_date,omitempty"`
	TaxStatementDueDate  *time.Time       `json:"tax_statement_due_date,omitempty" yaml:"tax_statement_due_date,omitempty"`
	DueDate              *time.Time       `json:"due_date,omitempty" yaml:"due_date,omitempty"`
	TaxBase0             *decimal.Decimal `json:"tax_base_0,omitempty" yaml:"tax_base_0,omitempty"`
	Tax0                 *decimal.Decimal `json:"tax_0,omitempty" yaml:"tax_0,omitempty"`
	TaxBase1             *decimal.Decimal `json:"tax_base_1,omitempty" yaml:"tax_base_1,omitempty"`
	Tax1                 *decimal.Decimal `json:"tax_1,omitempty" yaml:"tax_1,omitempty"`
	TaxBase2             *decimal.Decimal `json:"tax_base_2,omitempty" yaml:"tax_base_2,omitempty"`
	Tax2                 *decimal.Decimal `json:"tax_2,omitempty" yaml:"tax_2,omitempty"`
	NonTaxable           *decimal.Decimal `json:"non_taxable,omitempty" yaml:"non_taxable,omitempty"`
	Currency             string           `json:"currency,omitempty" yaml:"currency,omitempty"`
	ExchangeRate         *decimal.Decimal `json:"exchange_rate,omitempty" yaml:"exchange_rate,omitempty"`
	ForeignCurrencyUnits int              `json:"foreign_currency_units" yaml:"foreign_currency_units"`
	Account              *BankAccount     `json:"account,omitempty" yaml:"account,omitempty"`
	Software             string           `json:"software,omitempty" yaml:"software,omitempty"`
	URL                  string           `json:"url,omitempty" yaml:"url,omitempty"`
}

func (i Invoice) Tag() string {
	return InvoiceTag
}

func (i Invoice) ProtocolVersion() string {
	return i.Version
}

func taxAmountField(key, name string) Field[decimal.Decimal] {
	return NewField(FieldSpec{
		Key:         key,
		Name:        name,
		Kind:        KindDecimal,
		MaxLen:      MaxInvoiceAmountLength,
		MaxDecimals: MaxAmountDecimals,
	}, ParseDecimal)
}

func bindDate(key, name string, assign func(*Invoice, *time.Time)) *ParseStep[Invoice] {
	return Bind(NewField(FieldSpec{Key: key, Name: name, Kind: KindDate}, ParseDate),
		func(i *Invoice, v time.Time) { assign(i, &v) })
}

func bindTaxAmount(key, name string, assign func(*Invoice, *decimal.Decimal)) *ParseStep[Invoice] {
	return Bind(taxAmountField(key, name),
		func(i *Invoice, v decimal.Decimal) { assign(i, &v) })
}

var invoiceChain = mustParseChain(InvoiceTag,
	Bind(NewField(FieldSpec{Key: KeyInvoiceID, Name: "Invoice ID", Kind: KindString, Presence: Required, MaxLen: MaxInvoiceIDLength}, ParseText),
		func(i *Invoice, v string) { i.ID = v }),
	Bind(NewField(FieldSpec{Key: KeyIssuedDate, Name: "Issue date", Kind: KindDate, Presence: Required}, ParseDate),
		func(i *Invoice, v time.Time) { i.IssuedDate = v }),
	Bind(NewField(FieldSpec{Key: KeyAmount, Name: "Amount", Kind: KindDecimal, Presence: Required, MaxLen: MaxInvoiceAmountLength, MaxDecimals: MaxAmountDecimals}, ParseDecimal),
		func(i *Invoice, v decimal.Decimal) { i.Amount = v }),
	Bind(NewField(FieldSpec{Key: KeyTaxPerformance, Name: "Tax performance", Kind: KindCode, Allowed: []int{0, 1, 2}}, ParseCode).WithDefault(int(TaxPerformanceCommon)),
		func(i *Invoice, v int) { i.TaxPerformance = TaxPerformance(v) }),
	Bind(NewField(FieldSpec{Key: KeyInvoiceType, Name: "Invoice type", Kind: KindCode, Allowed: []int{0, 1, 2, 3, 4, 5, 9}}, ParseCode).WithDefault(int(InvoiceTypeOther)),
		func(i *Invoice, v int) { i.InvoiceType = InvoiceType(v) }),
	Bind(NewField(FieldSpec{Key: KeyAdvancesSettlement, Name: "Advances settlement", Kind: KindFlag}, ParseFlag).WithDefault(false),
		func(i *Invoice, v bool) { i.AdvancesSettlement = v }),
	Bind(NewField(FieldSpec{Key: KeyVariableSymbol, Name: "Variable symbol", Kind: KindSymbol, MaxLen: MaxSymbolLength}, ParseSymbol),
		func(i *Invoice, v int64) { i.VariableSymbol = &v }),
	Bind(NewField(FieldSpec{Key: KeyIssuerVATID, Name: "Issuer VAT ID", Kind: KindString}, ParseText),
		func(i *Invoice, v string) { i.IssuerVATID = v }),
	Bind(NewField(FieldSpec{Key: KeyIssuerID, Name: "Issuer ID", Kind: KindString}, ParseText),
		func(i *Invoice, v string) { i.IssuerID = v }),
	Bind(NewField(FieldSpec{Key: KeyRecipientVATID, Name: "Recipient VAT ID", Kind: KindString}, ParseText),
		func(i *Invoice, v string) { i.RecipientVATID = v }),
	Bind(NewField(FieldSpec{Key: KeyRecipientID, Name: "Recipient ID", Kind: KindString}, ParseText),
		func(i *Invoice, v string) { i.RecipientID = v }),
	bindDate(KeyTaxPerformanceDate, "Tax performance date",
		func(i *Invoice, v *time.Time) { i.TaxPerformanceDate = v }),
	bindDate(KeyTaxStatementDueDate, "Tax statement due date",
		func(i *Invoice, v *time.Time) { i.TaxStatementDueDate = v }),
	bindDate(KeyDate, "Due date",
		func(i *Invoice, v *time.Time) { i.DueDate = v }),
	bindTaxAmount(KeyTaxBase0, "Tax base 0",
		func(i *Invoice, v *decimal.Decimal) { i.TaxBase0 = v }),
	bindTaxAmount(KeyTax0, "Tax 0",
		func(i *Invoice, v *decimal.Decimal) { i.Tax0 = v }),
	bindTaxAmount(KeyTaxBase1, "Tax base 1",
		func(i *Invoice, v *decimal.Decimal) { i.TaxBase1 = v }),
	bindTaxAmount(KeyTax1, "Tax 1",
		func(i *Invoice, v *decimal.Decimal) { i.Tax1 = v }),
	bindTaxAmount(KeyTaxBase2, "Tax base 2",
		func(i *Invoice, v *decimal.Decimal) { i.TaxBase2 = v }),
	bindTaxAmount(KeyTax2, "Tax 2",
		func(i *Invoice, v *decimal.Decimal) { i.Tax2 = v }),
	bindTaxAmount(KeyNonTaxable, "Non-taxable amount",
		func(i *Invoice, v *decimal.Decimal) { i.NonTaxable = v }),
	Bind(NewField(FieldSpec{Key: KeyCurrency, Name: "Currency", Kind: KindCurrency}, ParseCurrency),
		func(i *Invoice, v string) { i.Currency = v }),
	Bind(NewField(FieldSpec{Key: KeyExchangeRate, Name: "Exchange rate", Kind: KindDecimal, MaxLen: MaxInvoiceAmountLength, MaxDecimals: MaxExchangeRateDecimals}, ParseDecimal),
		func(i *Invoice, v decimal.Decimal) { i.ExchangeRate = &v }),
	Bind(NewField(FieldSpec{Key: KeyForeignCurrencyUnits, Name: "Foreign currency units", Kind: KindInteger}, ParseInteger).WithDefault(1),
		func(i *Invoice, v int) { i.ForeignCurrencyUnits = v }),
	Bind(NewField(FieldSpec{Key: KeyAccount, Name: "Account", Kind: KindAccount}, ParseAccount),
		func(i *Invoice, v BankAccount) { i.Account = &v }),
	Bind(NewField(FieldSpec{Key: KeySoftware, Name: "Software", Kind: KindString, MaxLen: MaxSoftwareLength}, ParseText),
		func(i *Invoice, v string) { i.Software = v }),
	Bind(NewField(FieldSpec{Key: KeyURL, Name: "URL", Kind: KindString, MaxLen: MaxInvoiceURLLength}, ParseText),
		func(i *Invoice, v string) { i.URL = v }),
)

// InvoiceFields returns the field specs of the SID table in evaluation order.
func InvoiceFields() []FieldSpec {
	return invoiceChain.Specs()
}
