package spayd

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyParseChain = errors.New("parse chain has no steps")
	ErrNilParseStep    = errors.New("parse chain step is nil")
)

// ParseChain is the field table of one descriptor, kept as a linked list
// of parse steps. D is the record type the steps fill in.
//
// A chain is built once and never modified afterwards, so a single chain can
// be executed by many goroutines at the same time. All per-parse state lives
// in the destination value and the returned FieldErrors.
type ParseChain[D any] struct {
	Descriptor string        // Descriptor is the tag used in error messages
	Head       *ParseStep[D] // Head is the first step in the chain
	length     int
}

// ParseStep represents a single row of the field table.
type ParseStep[D any] struct {
	Next  *ParseStep[D] // Next is the next step in the current chain.
	Spec  FieldSpec     // Spec of the field this step resolves
	apply func(pairs Pairs, opts ParserOpts, dest *D) error
}

// Bind turns a typed field into a parse step. assign receives the value when
// the field is present, or the field default when it is absent and has one.
// An absent field without a default leaves dest untouched.
func Bind[D, T any](field Field[T], assign func(dest *D, value T)) *ParseStep[D] {
	return &ParseStep[D]{
		Spec: field.FieldSpec,
		apply: func(pairs Pairs, opts ParserOpts, dest *D) error {
			outcome := field.Resolve(pairs, opts)
			switch outcome.State() {
			case Present:
				value, _ := outcome.Value()
				assign(dest, value)
			case Absent:
				if field.Presence == OptionalWithDefault {
					assign(dest, field.Default)
				}
			case Invalid:
				return outcome.Err()
			}
			return nil
		},
	}
}

// NewParseChain links steps in the given order. Every key may appear once.
// Steps are copied, so the same step may be used to build several chains.
func NewParseChain[D any](descriptor string, steps ...*ParseStep[D]) (*ParseChain[D], error) {
	if len(steps) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyParseChain, descriptor)
	}

	var head, current *ParseStep[D]
	seen := make(map[string]struct{}, len(steps))

	for i, step := range steps {
		if step == nil || step.apply == nil {
			return nil, fmt.Errorf("%w: position %d in %s", ErrNilParseStep, i, descriptor)
		}
		if _, dup := seen[step.Spec.Key]; dup {
			return nil, fmt.Errorf("%w: %s in %s", ErrDuplicateFieldSpec, step.Spec.Key, descriptor)
		}
		seen[step.Spec.Key] = struct{}{}

		link := *step
		link.Next = nil
		if head == nil {
			head = &link
		} else {
			current.Next = &link
		}
		current = &link
	}

	return &ParseChain[D]{
		Descriptor: descriptor,
		Head:       head,
		length:     len(steps),
	}, nil
}

// mustParseChain is NewParseChain for the built-in tables; a broken table is
// a programming error.
func mustParseChain[D any](descriptor string, steps ...*ParseStep[D]) *ParseChain[D] {
	chain, err := NewParseChain(descriptor, steps...)
	if err != nil {
		panic(fmt.Sprintf("failed to build %s parse chain: %v", descriptor, err))
	}
	return chain
}

// Execute runs every step of the chain against pairs and writes the resolved
// values into dest. It never stops early: the returned accumulator holds the
// error of every step that failed, in chain order.
func (chain *ParseChain[D]) Execute(pairs Pairs, opts ParserOpts, dest *D) FieldErrors {
	var errs FieldErrors
	for step := chain.Head; step != nil; step = step.Next {
		errs = errs.Add(step.apply(pairs, opts, dest))
	}
	return errs
}

func (chain *ParseChain[D]) Len() int {
	return chain.length
}

// Specs returns the field specs in chain order.
func (chain *ParseChain[D]) Specs() []FieldSpec {
	specs := make([]FieldSpec, 0, chain.length)
	for step := chain.Head; step != nil; step = step.Next {
		specs = append(specs, step.Spec)
	}
	return specs
}

// Required returns the keys the required-key gate checks for, in chain order.
func (chain *ParseChain[D]) Required() []string {
	var keys []string
	for step := chain.Head; step != nil; step = step.Next {
		if step.Spec.Presence == Required {
			keys = append(keys, step.Spec.Key)
		}
	}
	return keys
}
