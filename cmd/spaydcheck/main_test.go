package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

const (
	validPayment = "SPD*1.0*ACC:CZ2806000000000168540115*AM:450.00*CC:CZK*MSG:PLATBA ZA ZBOZI*X-VS:1234567890"
	validInvoice = "SID*1.0*ID:012150672*DD:20151201*TP:0*AM:495.00*VS:012150672*VII:CZ60194383*INI:60194383*VIR:CZ12345678*DUZP:20151201*DT:20151217*TB0:409.00*T0:85.91*CC:CZK*ACC:CZ3103000000270016060243*"
	badPayment   = "SPD*1.0*ACC:CZ2806000000000168540115*AM:abc*CC:XYZ"
)

// runCheck runs the command without reading any .env file.
func runCheck(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(append([]string{"-env", ""}, args...), strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func jsonLines(t *testing.T, out string) []gjson.Result {
	t.Helper()
	var results []gjson.Result
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		require.True(t, gjson.Valid(line), "not JSON: %s", line)
		results = append(results, gjson.Parse(line))
	}
	return results
}

func TestRun(t *testing.T) {
	t.Run("ValidArguments", func(t *testing.T) {
		code, out, _ := runCheck(t, "", validPayment, validInvoice)
		assert.Equal(t, exitOK, code)

		results := jsonLines(t, out)
		require.Len(t, results, 2)

		assert.True(t, results[0].Get("valid").Bool())
		assert.Equal(t, "SPD", results[0].Get("tag").String())
		assert.Equal(t, "CZ2806000000000168540115", results[0].Get("record.account.iban").String())
		assert.Equal(t, "450", results[0].Get("record.amount").String())
		assert.Equal(t, int64(1234567890), results[0].Get("record.variable_symbol").Int())

		assert.Equal(t, "SID", results[1].Get("tag").String())
		assert.Equal(t, "012150672", results[1].Get("record.id").String())
		assert.Equal(t, "2015-12-01T00:00:00Z", results[1].Get("record.issued_date").String())
	})

	t.Run("InvalidFromStdin", func(t *testing.T) {
		code, out, _ := runCheck(t, validPayment+"\n\n"+badPayment+"\n")
		assert.Equal(t, exitInvalid, code)

		results := jsonLines(t, out)
		require.Len(t, results, 2)
		assert.True(t, results[0].Get("valid").Bool())

		bad := results[1]
		assert.False(t, bad.Get("valid").Bool())
		assert.False(t, bad.Get("record").Exists())
		assert.Len(t, bad.Get("problems").Array(), 2)
		assert.Contains(t, bad.Get("error").String(), "Amount (AM) is invalid")
		assert.Contains(t, bad.Get("error").String(), "Currency (CC) is invalid")
	})

	t.Run("StructuralErrorHasNoProblems", func(t *testing.T) {
		code, out, _ := runCheck(t, "", "1.0*ACC:CZ2806000000000168540115")
		assert.Equal(t, exitInvalid, code)

		results := jsonLines(t, out)
		require.Len(t, results, 1)
		assert.False(t, results[0].Get("problems").Exists())
		assert.Contains(t, results[0].Get("error").String(), "no registered parser")
	})

	t.Run("YAMLOutput", func(t *testing.T) {
		code, out, _ := runCheck(t, "", "-o", "yaml", validPayment, validInvoice)
		require.Equal(t, exitOK, code)

		dec := yaml.NewDecoder(strings.NewReader(out))
		var docs []map[string]any
		for {
			var doc map[string]any
			if err := dec.Decode(&doc); err != nil {
				break
			}
			docs = append(docs, doc)
		}
		require.Len(t, docs, 2)
		assert.Equal(t, "SPD", docs[0]["tag"])
		record, ok := docs[0]["record"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "CZK", record["currency"])
	})

	t.Run("DuplicatePolicyFlag", func(t *testing.T) {
		input := "SPD*1.0*ACC:CZ2806000000000168540115*MSG:one*MSG:two"

		code, _, _ := runCheck(t, "", input)
		assert.Equal(t, exitInvalid, code)

		code, out, _ := runCheck(t, "", "-duplicates", "last", input)
		require.Equal(t, exitOK, code)
		assert.Equal(t, "two", jsonLines(t, out)[0].Get("record.message").String())
	})

	t.Run("TrimFlag", func(t *testing.T) {
		input := "SPD*1.0*ACC:CZ2806000000000168540115*AM: 450.00*X-VS: 123"

		code, out, _ := runCheck(t, "", input)
		require.Equal(t, exitOK, code)
		assert.Equal(t, "450", jsonLines(t, out)[0].Get("record.amount").String())

		code, out, _ = runCheck(t, "", "-trim=false", input)
		assert.Equal(t, exitInvalid, code)
		assert.Len(t, jsonLines(t, out)[0].Get("problems").Array(), 2)
	})

	t.Run("UsageErrors", func(t *testing.T) {
		code, _, stderr := runCheck(t, "", "-o", "xml", validPayment)
		assert.Equal(t, exitUsage, code)
		assert.Contains(t, stderr, "output format")

		code, _, _ = runCheck(t, "", "-duplicates", "merge", validPayment)
		assert.Equal(t, exitUsage, code)

		code, _, _ = runCheck(t, "", "-no-such-flag")
		assert.Equal(t, exitUsage, code)
	})

	t.Run("LogsToStderr", func(t *testing.T) {
		code, _, stderr := runCheck(t, "", "-log-level", "debug", validPayment)
		require.Equal(t, exitOK, code)

		var parsed, checked bool
		for _, line := range strings.Split(strings.TrimSpace(stderr), "\n") {
			switch gjson.Get(line, "msg").String() {
			case "descriptor parsed":
				parsed = true
				assert.Equal(t, "SPD", gjson.Get(line, "descriptor").String())
				assert.NotEmpty(t, gjson.Get(line, "parse_id").String())
			case "descriptor valid":
				checked = true
				assert.Equal(t, "1.0", gjson.Get(line, "version").String())
			}
		}
		assert.True(t, parsed)
		assert.True(t, checked)
	})
}
