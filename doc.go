// Package spayd parses and validates Short Payment Descriptors (SPD) and
// Short Invoice Descriptors (SID), the star-delimited strings printed as QR
// codes on Czech and Slovak payment orders and invoices.
//
// A descriptor looks like
//
//	SPD*1.0*ACC:CZ2806000000000168540115*AM:450.00*CC:CZK*MSG:PLATBA ZA ZBOZI
//
// that is, a three-letter tag, an optional version token and KEY:VALUE pairs,
// all separated by '*'.
//
// Parsing happens in a fixed order:
//   - the tag prefix is checked and the version token, if any, is read,
//   - the body is split into trimmed Pairs (see Extractor),
//   - the required-key gate checks that every mandatory key is there
//     (see CheckRequired),
//   - every row of the field table is evaluated, and every malformed value is
//     recorded.
//
// The first three steps are structural: they fail with exactly one error and
// no field is looked at. The field table never stops early; if any row
// failed, the parse returns one *ValidationError carrying all of them and no
// record.
//
// To use the package, you may use the exported functions:
//   - ParsePayment() and ParseInvoice(): parse one descriptor kind with the
//     default options
//   - Parse(): dispatch on the tag through the global ParserRegistry
//   - WithParser(): select a parser by name when several share a tag
//   - RegisterParser(): register a custom Parser for a tag
//
// Or you may build a DescriptorParser with NewPaymentParser or
// NewInvoiceParser and ParserOpts, and register it on your own
// ParserRegistry.
//
// Each row of a field table is a Field: a FieldSpec, a FieldFunc that turns
// the raw value into an Outcome (Absent, Present or Invalid) and a default.
// Rows are linked into a ParseChain with Bind and NewParseChain, which is how
// custom descriptor kinds are built.
package spayd
