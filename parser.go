package spayd

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
)

///////////////////////////////////////////////////////////////////////////////
// Parser Interface
///////////////////////////////////////////////////////////////////////////////

// Parser is the non-generic view of a descriptor parser, as kept by a
// ParserRegistry.
type Parser interface {
	// Tag returns the descriptor tag this parser accepts (SPD, SID, ...)
	Tag() string
	// Name returns a unique identifier for this parser within its tag
	Name() string
	// ParseDescriptor parses raw into a record
	ParseDescriptor(raw string) (Descriptor, error)
}

///////////////////////////////////////////////////////////////////////////////
// DescriptorParser
///////////////////////////////////////////////////////////////////////////////

// ParserOpts configures a DescriptorParser. The zero value is usable: no
// logging, duplicate keys rejected, keys and values trimmed, text otherwise
// kept as is, CRC32 only checked for its format.
type ParserOpts struct {
	// Name overrides the registry name of the parser.
	Name string
	// Logger receives debug records for every parse. Nil disables logging.
	Logger *slog.Logger
	// Duplicates is the policy for keys that appear more than once.
	Duplicates DuplicatePolicy
	// KeepWhitespace disables trimming whitespace around keys and values.
	KeepWhitespace bool
	// SanitizeText removes markup and unprintable characters from free text
	// fields before their length is checked.
	SanitizeText bool
	// VerifyChecksum compares a present CRC32 value with the content.
	VerifyChecksum bool
}

// DescriptorParser turns one kind of descriptor into its record type D.
//
// A parse runs in a fixed order: tag prefix, optional version token, pair
// extraction, required-key gate, then the whole field table. The prefix,
// extraction and gate steps are structural and return a single error
// straight away. The field table is
// always run to the end, and any field error it records fails the parse with
// one *ValidationError that lists them all.
//
// A DescriptorParser holds no per-parse state and is safe for concurrent use.
type DescriptorParser[D Descriptor] struct {
	tag        string
	name       string
	chain      *ParseChain[D]
	extractor  Extractor
	opts       ParserOpts
	logger     *slog.Logger
	setVersion func(dest *D, version string)
	verify     func(version string, pairs Pairs) error
}

func newDescriptorParser[D Descriptor](
	tag, name string,
	chain *ParseChain[D],
	setVersion func(*D, string),
	opts ParserOpts,
) *DescriptorParser[D] {

	if opts.Name != "" {
		name = opts.Name
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &DescriptorParser[D]{
		tag:   tag,
		name:  name,
		chain: chain,
		extractor: Extractor{
			PairDelimiter: PairDelim,
			KVDelimiter:   KeyValDelim,
			Trim:          !opts.KeepWhitespace,
			Duplicates:    opts.Duplicates,
		},
		opts:       opts,
		logger:     logger.With("descriptor", tag, "parser", name),
		setVersion: setVersion,
	}
}

// NewPaymentParser returns a parser for SPD descriptors.
func NewPaymentParser(opts ParserOpts) *DescriptorParser[Payment] {
	parser := newDescriptorParser(PaymentTag, PaymentParserName, paymentChain,
		func(p *Payment, version string) { p.Version = version }, opts)
	if opts.VerifyChecksum {
		parser.verify = verifyPaymentChecksum
	}
	return parser
}

// NewInvoiceParser returns a parser for SID descriptors.
func NewInvoiceParser(opts ParserOpts) *DescriptorParser[Invoice] {
	return newDescriptorParser(InvoiceTag, InvoiceParserName, invoiceChain,
		func(i *Invoice, version string) { i.Version = version }, opts)
}

func (dp *DescriptorParser[D]) Tag() string {
	return dp.tag
}

func (dp *DescriptorParser[D]) Name() string {
	return dp.name
}

// Fields returns the field specs of the parser's table.
func (dp *DescriptorParser[D]) Fields() []FieldSpec {
	return dp.chain.Specs()
}

// ParseDescriptor implements Parser.
func (dp *DescriptorParser[D]) ParseDescriptor(raw string) (Descriptor, error) {
	record, err := dp.Parse(raw)
	if err != nil {
		return nil, err
	}
	return record, nil
}

// Parse parses raw into a record. On failure the zero record is returned
// together with either one structural error (ErrMissingPrefix,
// ErrDuplicateKey or a *MissingKeysError) or a
// *ValidationError listing every field problem.
func (dp *DescriptorParser[D]) Parse(raw string) (D, error) {
	var record D

	logger := dp.logger.With("parse_id", uuid.NewString())

	version, body, err := dp.splitHeader(raw)
	if err != nil {
		logger.Info("descriptor rejected", "error", err)
		return record, err
	}

	pairs, err := dp.extractor.Extract(body)
	if err != nil {
		logger.Info("descriptor rejected", "error", err)
		return record, err
	}
	logger.Debug("pairs extracted", "version", version, "pairs", len(pairs))

	if err := CheckRequired(pairs, dp.chain.Required()); err != nil {
		var missing *MissingKeysError
		if errors.As(err, &missing) {
			missing.Descriptor = dp.tag
		}
		logger.Info("descriptor rejected", "error", err)
		return record, err
	}

	errs := dp.chain.Execute(pairs, dp.opts, &record)
	if dp.verify != nil {
		encoded := dp.extractor
		encoded.KeepEncoded = true
		// same chunks as above, so duplicates were already accepted
		encodedPairs, _ := encoded.Extract(body)
		errs = errs.Add(dp.verify(version, encodedPairs))
	}

	if err := errs.ValidationError(dp.tag); err != nil {
		for _, fieldErr := range errs.Errors() {
			logger.Debug("field rejected", "error", fieldErr)
		}
		logger.Info("descriptor invalid", "errors", errs.Len())
		var zero D
		return zero, err
	}

	dp.setVersion(&record, version)
	logger.Debug("descriptor parsed")
	return record, nil
}

// splitHeader checks the tag prefix and returns the version token and the
// remaining pairs. The version is optional: when the chunk after the tag is
// not a version number it is left in the body, where pair extraction drops it
// unless it is a pair.
func (dp *DescriptorParser[D]) splitHeader(raw string) (string, string, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(raw), dp.tag+PairDelim)
	if !ok {
		return "", "", fmt.Errorf("%w: input must start with %s%s", ErrMissingPrefix, dp.tag, PairDelim)
	}

	version, body, _ := strings.Cut(rest, PairDelim)
	if !dp.opts.KeepWhitespace {
		version = strings.TrimSpace(version)
	}
	if !versionPattern.MatchString(version) {
		return "", rest, nil
	}

	return version, body, nil
}

///////////////////////////////////////////////////////////////////////////////
// Package Functions
///////////////////////////////////////////////////////////////////////////////

var (
	_defaultPaymentParser = NewPaymentParser(ParserOpts{})
	_defaultInvoiceParser = NewInvoiceParser(ParserOpts{})
)

// ParsePayment parses an SPD descriptor with the default options.
func ParsePayment(raw string) (Payment, error) {
	return _defaultPaymentParser.Parse(raw)
}

// ParseInvoice parses an SID descriptor with the default options.
func ParseInvoice(raw string) (Invoice, error) {
	return _defaultInvoiceParser.Parse(raw)
}
