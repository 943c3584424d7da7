package spayd

import (
	"fmt"
	"html"
	"net/url"
	"slices"
	"strings"
)

// Pairs is the key/value view of a descriptor body. Keys are upper-case and
// unique, values are decoded.
type Pairs map[string]string

// Lookup finds a key case-insensitively.
func (p Pairs) Lookup(key string) (string, bool) {
	value, ok := p[strings.ToUpper(key)]
	return value, ok
}

// Keys returns the keys in ascending order.
func (p Pairs) Keys() []string {
	keys := make([]string, 0, len(p))
	for key := range p {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}

// DuplicatePolicy decides what happens when two chunks carry the same key
// once upper-cased.
type DuplicatePolicy uint8

const (
	// RejectDuplicates fails the whole input with ErrDuplicateKey.
	RejectDuplicates DuplicatePolicy = iota
	// FirstWins keeps the first value seen for a key.
	FirstWins
	// LastWins keeps the last value seen for a key.
	LastWins
)

var duplicatePolicyNames = map[DuplicatePolicy]string{
	RejectDuplicates: "reject",
	FirstWins:        "first",
	LastWins:         "last",
}

func (dp DuplicatePolicy) String() string {
	if name, ok := duplicatePolicyNames[dp]; ok {
		return name
	}
	return "unknown"
}

// ParseDuplicatePolicy maps "reject", "first" and "last" (any case) to a
// DuplicatePolicy.
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	for policy, name := range duplicatePolicyNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return policy, nil
		}
	}
	return RejectDuplicates, fmt.Errorf("unknown duplicate key policy %q", s)
}

// Extractor splits a descriptor body into Pairs.
//
// The zero value uses the descriptor delimiters ("*" between pairs, ":"
// between key and value), does not trim and rejects duplicate keys.
type Extractor struct {
	PairDelimiter string
	KVDelimiter   string
	Trim          bool
	Duplicates    DuplicatePolicy
	// KeepEncoded leaves values exactly as written, without decoding.
	KeepEncoded bool
}

// ExtractPairs splits raw with the given delimiters and rejects duplicate
// keys. See Extractor.Extract.
func ExtractPairs(raw, pairDelimiter, kvDelimiter string, trim bool) (Pairs, error) {
	e := Extractor{
		PairDelimiter: pairDelimiter,
		KVDelimiter:   kvDelimiter,
		Trim:          trim,
	}
	return e.Extract(raw)
}

// Extract splits raw on the pair delimiter, then every chunk on the key/value
// delimiter. A chunk that does not split into exactly two parts is skipped
// without error, as is a chunk with an empty key. Keys are upper-cased after
// the optional trim; values are percent-decoded and then HTML-unescaped
// unless KeepEncoded is set.
//
// The only error is ErrDuplicateKey under RejectDuplicates.
func (e Extractor) Extract(raw string) (Pairs, error) {
	pairDelim, kvDelim := e.PairDelimiter, e.KVDelimiter
	if pairDelim == "" {
		pairDelim = PairDelim
	}
	if kvDelim == "" {
		kvDelim = KeyValDelim
	}

	chunks := strings.Split(raw, pairDelim)
	pairs := make(Pairs, len(chunks))

	for _, chunk := range chunks {
		parts := strings.Split(chunk, kvDelim)
		if len(parts) != 2 {
			continue
		}

		key, value := parts[0], parts[1]
		if e.Trim {
			key = strings.TrimSpace(key)
			value = strings.TrimSpace(value)
		}
		if key == "" {
			continue
		}
		key = strings.ToUpper(key)

		if _, seen := pairs[key]; seen {
			switch e.Duplicates {
			case FirstWins:
				continue
			case LastWins:
			default:
				return nil, fmt.Errorf("%w: %s", ErrDuplicateKey, key)
			}
		}

		if !e.KeepEncoded {
			value = decodeValue(value)
		}
		pairs[key] = value
	}

	return pairs, nil
}

// decodeValue resolves percent escapes and HTML character entities. A value
// whose percent escapes are malformed (e.g. "100%") is only HTML-unescaped.
func decodeValue(value string) string {
	if strings.Contains(value, "%") {
		if unescaped, err := url.PathUnescape(value); err == nil {
			value = unescaped
		}
	}
	return html.UnescapeString(value)
}
