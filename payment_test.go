package spayd

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

const samplePayment = "SPD*1.0*ACC:CZ2806000000000168540115*AM:450.00*CC:CZK*MSG:PLATBA ZA ZBOZI*X-VS:1234567890"

func TestParsePayment_Success(t *testing.T) {
	payment, err := ParsePayment(samplePayment)
	require.NoError(t, err)

	assert.Equal(t, "1.0", payment.Version)
	assert.Equal(t, "CZ2806000000000168540115", payment.Account.IBAN)
	assert.Empty(t, payment.Account.BIC)
	require.NotNil(t, payment.Amount)
	assert.True(t, decimal.RequireFromString("450.0").Equal(*payment.Amount))
	assert.Equal(t, "CZK", payment.Currency)
	assert.Equal(t, "PLATBA ZA ZBOZI", payment.Message)
	require.NotNil(t, payment.VariableSymbol)
	assert.Equal(t, int64(1234567890), *payment.VariableSymbol)

	assert.Nil(t, payment.DueDate)
	assert.Nil(t, payment.NotifyChannel)
	assert.Zero(t, payment.Repeat)
	assert.Equal(t, PaymentTag, payment.Tag())
	assert.Equal(t, "1.0", payment.ProtocolVersion())
}

func TestParsePayment_AllFields(t *testing.T) {
	raw := strings.Join([]string{
		"SPD*1.0",
		"ACC:CZ5855000000001265098001+RZBCCZPP",
		"ALT-ACC:CZ3103000000270016060243,CZ9701000000007098760287+KOMBCZPP",
		"AM:1500.50",
		"CC:czk",
		"RF:7004139146",
		"RN:PETR DVORAK",
		"DT:20120524",
		"PT:IP",
		"MSG:Dar na poplatky",
		"NT:e",
		"NTA:petr.dvorak@example.com",
		"X-PER:999",
		"X-VS:0012",
		"X-SS:34",
		"X-KS:0308",
		"X-ID:ABC-123",
		"X-URL:https%3A//example.com/pay?id=1%26x%3D2",
	}, "*")

	payment, err := ParsePayment(raw)
	require.NoError(t, err)

	assert.Equal(t, BankAccount{IBAN: "CZ5855000000001265098001", BIC: "RZBCCZPP"}, payment.Account)
	assert.Equal(t, []BankAccount{
		{IBAN: "CZ3103000000270016060243"},
		{IBAN: "CZ9701000000007098760287", BIC: "KOMBCZPP"},
	}, payment.AlternateAccounts)
	assert.Equal(t, "1500.5", payment.Amount.String())
	assert.Equal(t, "czk", payment.Currency)
	assert.Equal(t, int64(7004139146), *payment.RecipientReference)
	assert.Equal(t, "PETR DVORAK", payment.RecipientName)
	assert.Equal(t, time.Date(2012, 5, 24, 0, 0, 0, 0, time.UTC), *payment.DueDate)
	assert.Equal(t, "IP", payment.PaymentType)
	assert.Equal(t, ChannelEmail, *payment.NotifyChannel)
	assert.Equal(t, "petr.dvorak@example.com", payment.NotifyContact)
	assert.Equal(t, RepeatCeiling, payment.Repeat)
	assert.Equal(t, int64(12), *payment.VariableSymbol)
	assert.Equal(t, int64(34), *payment.SpecificSymbol)
	assert.Equal(t, int64(308), *payment.ConstantSymbol)
	assert.Equal(t, "ABC-123", payment.Identifier)
	assert.Equal(t, "https://example.com/pay?id=1&x=2", payment.URL)
}

func TestParsePayment_Failures(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		sentinel   error
		messages   []string
		noMessages []string
	}{
		{
			name:     "MissingPrefix",
			raw:      "1.0*ACC:CZ2806000000000168540115*AM:450.00*CC:CZK",
			sentinel: ErrMissingPrefix,
		},
		{
			name:     "WrongTag",
			raw:      "SID*1.0*ACC:CZ2806000000000168540115",
			sentinel: ErrMissingPrefix,
		},
		{
			name:     "DuplicateKey",
			raw:      "SPD*1.0*ACC:CZ2806000000000168540115*AM:1*am:2",
			sentinel: ErrDuplicateKey,
		},
		{
			name:       "GatePrecedesFieldErrors",
			raw:        "SPD*1.0*AM:abc*CC:XYZ*X-VS:notanumber",
			sentinel:   ErrMissingRequiredKeys,
			messages:   []string{"required keys are missing in SPD: ACC"},
			noMessages: []string{"Amount", "Currency", "Variable symbol"},
		},
		{
			name:     "EmptyAccount",
			raw:      "SPD*1.0*ACC:*AM:1",
			sentinel: ErrInvalidField,
			messages: []string{"Account (ACC) is invalid: value is required"},
		},
		{
			name:     "AllFieldErrorsReported",
			raw:      "SPD*1.0*ACC:CZ2806000000000168540116*AM:1.001*CC:XYZ*DT:20121324*X-VS:12345678901*MSG:" + strings.Repeat("x", 61),
			sentinel: ErrInvalidField,
			messages: []string{
				"Account (ACC) is invalid",
				"Amount (AM) is invalid",
				"Currency (CC) is invalid",
				"Due date (DT) is invalid",
				"Variable symbol (X-VS) is invalid",
				"Message (MSG) is invalid",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payment, err := ParsePayment(tt.raw)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.sentinel)
			assert.Equal(t, Payment{}, payment)

			for _, msg := range tt.messages {
				assert.Contains(t, err.Error(), msg)
			}
			for _, msg := range tt.noMessages {
				assert.NotContains(t, err.Error(), msg)
			}
		})
	}
}

func TestParsePayment_FieldErrorsInTableOrder(t *testing.T) {
	_, err := ParsePayment("SPD*1.0*X-VS:abc*AM:x*ACC:CZ2806000000000168540115")
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	require.Len(t, verr.Fields(), 2)
	assert.Equal(t, KeyAmount, verr.Fields()[0].Key)
	assert.Equal(t, KeyVariableSymbolX, verr.Fields()[1].Key)
	assert.Equal(t, PaymentTag, verr.Descriptor)
}

func TestParsePayment_SilentFields(t *testing.T) {
	// unknown channels, contacts without a channel and unknown keys are not errors
	payment, err := ParsePayment("SPD*1.0*ACC:CZ2806000000000168540115*NT:X*NTA:someone*X-PER:soon*X-FOO:bar")
	require.NoError(t, err)

	assert.Nil(t, payment.NotifyChannel)
	assert.Empty(t, payment.NotifyContact)
	assert.Zero(t, payment.Repeat)
}

func TestPayment_JSON(t *testing.T) {
	payment, err := ParsePayment(samplePayment + "*DT:20240131*NT:P*NTA:+420777123456")
	require.NoError(t, err)

	data, err := json.Marshal(payment)
	require.NoError(t, err)

	doc := gjson.ParseBytes(data)
	assert.Equal(t, "1.0", doc.Get("version").String())
	assert.Equal(t, "CZ2806000000000168540115", doc.Get("account.iban").String())
	assert.False(t, doc.Get("account.bic").Exists())
	assert.Equal(t, "450", doc.Get("amount").String())
	assert.Equal(t, "2024-01-31T00:00:00Z", doc.Get("due_date").String())
	assert.Equal(t, "P", doc.Get("notify_channel").String())
	assert.Equal(t, int64(1234567890), doc.Get("variable_symbol").Int())
	assert.False(t, doc.Get("specific_symbol").Exists())
	assert.Equal(t, int64(0), doc.Get("repeat").Int())
}

func TestNotificationChannel_Text(t *testing.T) {
	var channel NotificationChannel
	require.NoError(t, channel.UnmarshalText([]byte("p")))
	assert.Equal(t, ChannelPhone, channel)
	assert.Equal(t, "phone", channel.String())

	text, err := ChannelEmail.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "E", string(text))

	assert.Error(t, channel.UnmarshalText([]byte("X")))
	_, err = NotificationChannel('X').MarshalText()
	assert.Error(t, err)
}

func TestBankAccount_String(t *testing.T) {
	assert.Equal(t, "CZ2806000000000168540115", BankAccount{IBAN: "CZ2806000000000168540115"}.String())
	assert.Equal(t, "CZ2806000000000168540115+AGBACZPP", BankAccount{IBAN: "CZ2806000000000168540115", BIC: "AGBACZPP"}.String())
}

func TestChecksum(t *testing.T) {
	pairs, err := ExtractPairs("ACC:CZ2806000000000168540115*AM:450.00*CC:CZK*MSG:PLATBA ZA ZBOZI*X-VS:1234567890", "*", ":", false)
	require.NoError(t, err)
	assert.Equal(t, "0817D8DC", Checksum(PaymentTag, "1.0", pairs))

	// CRC32 itself and the pair order do not matter
	pairs, err = ExtractPairs("CC:CZK*CRC32:FFFFFFFF*AM:450.00*ACC:CZ2806000000000168540115", "*", ":", false)
	require.NoError(t, err)
	assert.Equal(t, "C41606F2", Checksum(PaymentTag, "1.0", pairs))

	// values are hashed as written
	pairs, err = Extractor{KeepEncoded: true}.Extract("ACC:CZ2806000000000168540115*AM:450.00*CC:CZK*MSG:PLATBA%20ZA%20ZBOZI*X-VS:1234567890")
	require.NoError(t, err)
	assert.Equal(t, "7A921D1F", Checksum(PaymentTag, "1.0", pairs))
}

func TestPaymentFields(t *testing.T) {
	specs := PaymentFields()
	require.NotEmpty(t, specs)
	assert.Equal(t, KeyAccount, specs[0].Key)
	assert.Equal(t, Required, specs[0].Presence)

	keys := make(map[string]bool, len(specs))
	for _, spec := range specs {
		keys[spec.Key] = true
	}
	for _, key := range []string{"ACC", "AM", "CC", "RF", "RN", "DT", "PT", "MSG", "CRC32", "NT", "NTA", "X-PER", "X-VS", "X-SS", "X-KS", "X-ID", "X-URL"} {
		assert.True(t, keys[key], key)
	}
}
