// Command spaydcheck validates SPD and SID descriptors.
//
// Descriptors are taken from the arguments, or one per line from standard
// input when there are none. Every result is written to standard output as
// JSON (one object per line) or YAML (one document per descriptor). The exit
// status is 1 when any descriptor is invalid and 2 on usage errors.
//
// Settings come from SPAYD_* environment variables, an optional .env file and
// flags, in increasing order of precedence.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/SimonDaKappa/go-spayd"
	"github.com/SimonDaKappa/go-spayd/internal/config"
	"github.com/SimonDaKappa/go-spayd/internal/logger"
)

const (
	exitOK      = 0
	exitInvalid = 1
	exitUsage   = 2
)

// result is what gets printed for one input line.
type result struct {
	Input    string           `json:"input" yaml:"input"`
	Tag      string           `json:"tag,omitempty" yaml:"tag,omitempty"`
	Valid    bool             `json:"valid" yaml:"valid"`
	Record   spayd.Descriptor `json:"record,omitempty" yaml:"record,omitempty"`
	Error    string           `json:"error,omitempty" yaml:"error,omitempty"`
	Problems []string         `json:"problems,omitempty" yaml:"problems,omitempty"`
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("spaydcheck", flag.ContinueOnError)
	fs.SetOutput(stderr)

	envFile := fs.String("env", ".env", "optional .env file with SPAYD_* settings")
	output := fs.String("o", "", "output format: json or yaml")
	logLevel := fs.String("log-level", "", "log level: debug, info, warn or error")
	duplicates := fs.String("duplicates", "", "duplicate key policy: reject, first or last")
	trim := fs.Bool("trim", true, "trim whitespace around keys and values")
	sanitize := fs.Bool("sanitize", false, "strip markup from free text fields")
	verifyCRC := fs.Bool("verify-crc", false, "verify CRC32 checksums of payment descriptors")
	cacheTTL := fs.Duration("cache-ttl", 0, "cache successful results for this long")

	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintln(stderr, "spaydcheck:", err)
		return exitUsage
	}

	// flags given explicitly win over the environment
	var flagErr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "o":
			cfg.Output = strings.ToLower(*output)
		case "log-level":
			cfg.LogLevel = *logLevel
		case "duplicates":
			cfg.Duplicates, flagErr = spayd.ParseDuplicatePolicy(*duplicates)
		case "trim":
			cfg.Trim = *trim
		case "sanitize":
			cfg.Sanitize = *sanitize
		case "verify-crc":
			cfg.VerifyCRC = *verifyCRC
		case "cache-ttl":
			cfg.CacheTTL = *cacheTTL
		}
	})
	if flagErr == nil {
		flagErr = cfg.Validate()
	}
	if flagErr != nil {
		fmt.Fprintln(stderr, "spaydcheck:", flagErr)
		return exitUsage
	}

	log := logger.New(cfg.LogLevel, stderr)
	ctx := logger.ToContext(context.Background(), log)

	registry, err := newRegistry(ctx, cfg)
	if err != nil {
		fmt.Fprintln(stderr, "spaydcheck:", err)
		return exitUsage
	}

	inputs := fs.Args()
	if len(inputs) == 0 {
		inputs, err = readLines(stdin)
		if err != nil {
			fmt.Fprintln(stderr, "spaydcheck:", err)
			return exitUsage
		}
	}

	encode, flush := newEncoder(cfg.Output, stdout)

	status := exitOK
	for _, input := range inputs {
		res := check(ctx, registry, input)
		if !res.Valid {
			status = exitInvalid
		}
		if err := encode(res); err != nil {
			fmt.Fprintln(stderr, "spaydcheck:", err)
			return exitUsage
		}
	}
	if err := flush(); err != nil {
		fmt.Fprintln(stderr, "spaydcheck:", err)
		return exitUsage
	}

	log.Info("descriptors checked", "count", len(inputs), "valid", status == exitOK)
	return status
}

func newRegistry(ctx context.Context, cfg config.Config) (*spayd.ParserRegistry, error) {
	opts := cfg.ParserOpts()
	opts.Logger = logger.FromContext(ctx)

	return spayd.NewParserRegistry(spayd.ParserRegistryOpts{
		ExcludeDefaults: true,
		CacheTTL:        cfg.CacheTTL,
		Parsers: []spayd.Parser{
			spayd.NewPaymentParser(opts),
			spayd.NewInvoiceParser(opts),
		},
	})
}

func check(ctx context.Context, registry *spayd.ParserRegistry, input string) result {
	res := result{Input: input}
	log := logger.FromContext(ctx)

	record, err := registry.Parse(input)
	if err != nil {
		log.Debug("descriptor failed", "error", err)
		res.Error = err.Error()
		var verr *spayd.ValidationError
		if errors.As(err, &verr) {
			for _, problem := range verr.Unwrap() {
				res.Problems = append(res.Problems, problem.Error())
			}
		}
		return res
	}

	res.Valid = true
	res.Tag = record.Tag()
	res.Record = record
	log.Debug("descriptor valid", "tag", res.Tag, "version", record.ProtocolVersion())
	return res
}

// readLines returns the non-blank lines of r, trimmed.
func readLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading input: %w", err)
	}
	return lines, nil
}

// newEncoder returns a function writing one result and a function to call
// once all results are written.
func newEncoder(format string, w io.Writer) (func(result) error, func() error) {
	if format == config.OutputYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		return func(res result) error { return enc.Encode(res) }, enc.Close
	}
	enc := json.NewEncoder(w)
	return func(res result) error { return enc.Encode(res) }, func() error { return nil }
}
