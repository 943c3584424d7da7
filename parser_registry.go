package spayd

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// ParserRegistry dispatches raw descriptors to registered Parsers by their
// three-letter tag.
//
// Multiple Parsers can be registered for each tag. If only one parser is
// registered for a tag, it will be used automatically. If multiple parsers
// are registered, you must use WithParser() to specify which one to use.
//
// Successful results can be cached by setting ParserRegistryOpts.CacheTTL.
// Failures are never cached.
type ParserRegistry struct {
	mu    sync.RWMutex
	m     map[string]map[string]Parser // tag -> parser name -> parser
	cache *cache.Cache                 // nil when caching is disabled
}

// ParserRegistryContext provides a curried Registry with a specific parser selection
type ParserRegistryContext struct {
	registry   *ParserRegistry
	parserName string
}

var (
	_defaultParsers []Parser = nil
)

type ParserRegistryOpts struct {
	Parsers         []Parser
	ExcludeDefaults bool
	// CacheTTL enables the result cache when positive.
	CacheTTL time.Duration
}

func NewParserRegistry(opts ParserRegistryOpts) (*ParserRegistry, error) {
	reg := &ParserRegistry{
		m: make(map[string]map[string]Parser),
	}

	if opts.CacheTTL > 0 {
		reg.cache = cache.New(opts.CacheTTL, 2*opts.CacheTTL)
	}

	if !opts.ExcludeDefaults {
		for _, parser := range _defaultParsers {
			err := reg.Register(parser)
			if err != nil {
				return nil, err
			}
		}
	}

	for _, parser := range opts.Parsers {
		err := reg.Register(parser)
		if err != nil {
			return nil, err
		}
	}

	return reg, nil
}

// Register adds parser under its tag and name. A name can only be used once
// per tag.
func (reg *ParserRegistry) Register(parser Parser) error {
	tag := strings.ToUpper(parser.Tag())
	name := parser.Name()

	reg.mu.Lock()
	defer reg.mu.Unlock()

	if reg.m[tag] == nil {
		reg.m[tag] = make(map[string]Parser)
	}
	if _, exists := reg.m[tag][name]; exists {
		return fmt.Errorf("%w: %s/%s", ErrParserAlreadyRegistered, tag, name)
	}

	reg.m[tag][name] = parser
	return nil
}

// Tags returns the tags that have at least one parser, in ascending order.
func (reg *ParserRegistry) Tags() []string {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return slices.Sorted(maps.Keys(reg.m))
}

// WithParser returns a ParserRegistryContext that will use the specified
// parser. This is useful when multiple parsers are registered for the same
// tag.
func (reg *ParserRegistry) WithParser(parserName string) *ParserRegistryContext {
	return &ParserRegistryContext{
		registry:   reg,
		parserName: parserName,
	}
}

// Parse parses raw with the named parser for raw's tag.
func (regCtx *ParserRegistryContext) Parse(raw string) (Descriptor, error) {
	return regCtx.registry.parseWith(raw, regCtx.parserName)
}

// Parse reads the tag of raw and parses it with the only parser registered
// for that tag. To use a specific parser, use WithParser().
func (reg *ParserRegistry) Parse(raw string) (Descriptor, error) {
	return reg.parseWith(raw, "")
}

// Flush drops all cached results.
func (reg *ParserRegistry) Flush() {
	if reg.cache != nil {
		reg.cache.Flush()
	}
}

func (reg *ParserRegistry) parseWith(raw, parserName string) (Descriptor, error) {
	parser, err := reg.getParserByName(descriptorTag(raw), parserName)
	if err != nil {
		return nil, err
	}

	key := parser.Tag() + "/" + parser.Name() + "\x00" + raw
	if reg.cache != nil {
		if cached, found := reg.cache.Get(key); found {
			return cached.(Descriptor), nil
		}
	}

	record, err := parser.ParseDescriptor(raw)
	if err != nil {
		return nil, err
	}

	if reg.cache != nil {
		reg.cache.SetDefault(key, record)
	}
	return record, nil
}

// descriptorTag returns the upper-cased text before the first pair
// delimiter, or "" when there is none.
func descriptorTag(raw string) string {
	tag, _, found := strings.Cut(strings.TrimSpace(raw), PairDelim)
	if !found {
		return ""
	}
	return strings.ToUpper(tag)
}

// getParserByName retrieves a specific parser by name for the given tag.
//
// No name provided: If there is only one parser registered for the tag,
// it returns that parser. If multiple parsers are registered, it returns an error
func (reg *ParserRegistry) getParserByName(tag, parserName string) (Parser, error) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	parsersForTag, exists := reg.m[strings.ToUpper(tag)]
	if !exists || len(parsersForTag) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoParserRegistered, tag)
	}

	// If no parser name is specified, handle the case of multiple parsers
	// registered for the same tag.
	if parserName == "" {
		if len(parsersForTag) > 1 {
			return nil, fmt.Errorf("%w: %s", ErrMultipleParsersAvailable, tag)
		}
		for _, parser := range parsersForTag {
			return parser, nil
		}
	}

	if parser, found := parsersForTag[parserName]; found {
		return parser, nil
	}

	return nil, fmt.Errorf("%w: %s/%s", ErrParserNotFound, tag, parserName)
}

///////////////////////////////////////////////////////////////////////////////
// Global Singleton and Package Functions
///////////////////////////////////////////////////////////////////////////////

var _gParserRegistry *ParserRegistry = nil

func init() {
	_defaultParsers = []Parser{
		_defaultPaymentParser,
		_defaultInvoiceParser,
	}

	var err error
	_gParserRegistry, err = NewParserRegistry(ParserRegistryOpts{ExcludeDefaults: false})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize global ParserRegistry: %v", err))
	}
}

// Package-level functions that delegate to the global ParserRegistry instance

func RegisterParser(parser Parser) error {
	return _gParserRegistry.Register(parser)
}

func Parse(raw string) (Descriptor, error) {
	return _gParserRegistry.Parse(raw)
}

func WithParser(parserName string) *ParserRegistryContext {
	return _gParserRegistry.WithParser(parserName)
}

func GetParser(tag string) (Parser, error) {
	return _gParserRegistry.getParserByName(tag, "")
}

func GetParserByName(tag, parserName string) (Parser, error) {
	return _gParserRegistry.getParserByName(tag, parserName)
}
