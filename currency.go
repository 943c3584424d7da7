package spayd

import "strings"

// currencyCodes is the ISO 4217 list accepted in CC fields. Read-only after
// package init.
var currencyCodes = makeCurrencySet(
	"AED", "AFN", "ALL", "AMD", "ARS", "AUD", "AZN", "BAM", "BDT", "BGN",
	"BHD", "BND", "BOB", "BRL", "BTN", "BWP", "BYR", "BZD", "CAD", "CDF",
	"CHF", "CLP", "CNY", "COP", "CRC", "CUP", "CZK", "DJF", "DKK", "DOP",
	"DZD", "EGP", "ERN", "ETB", "EUR", "GBP", "GEL", "GTQ", "HKD", "HNL",
	"HRK", "HTG", "HUF", "IDR", "ILS", "INR", "IQD", "IRR", "ISK", "JMD",
	"JOD", "JPY", "KES", "KGS", "KHR", "KRW", "KWD", "KZT", "LAK", "LBP",
	"LKR", "LYD", "MAD", "MDL", "MKD", "MMK", "MNT", "MOP", "MVR", "MXN",
	"MYR", "NGN", "NIO", "NOK", "NPR", "NZD", "OMR", "PAB", "PEN", "PHP",
	"PKR", "PLN", "PYG", "QAR", "RON", "RSD", "RUB", "RWF", "SAR", "SEK",
	"SGD", "SOS", "SYP", "THB", "TJS", "TMT", "TND", "TRY", "TTD", "TWD",
	"UAH", "USD", "UYU", "UZS", "VEF", "VND", "XAF", "XCD", "XDR", "XOF",
	"YER", "ZAR",
)

func makeCurrencySet(codes ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		set[code] = struct{}{}
	}
	return set
}

// IsCurrencyCode reports whether code is a known ISO 4217 code, ignoring case.
func IsCurrencyCode(code string) bool {
	_, ok := currencyCodes[strings.ToUpper(code)]
	return ok
}
