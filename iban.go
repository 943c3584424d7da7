package spayd

import (
	"math"
	"regexp"
	"strings"
)

// ibanLengths maps an ISO 3166 country code to the total IBAN length used
// by that country. Read-only after package init.
var ibanLengths = map[string]int{
	"AL": 28, // Albania
	"AD": 24, // Andorra
	"AT": 20, // Austria
	"AZ": 28, // Azerbaijan
	"BH": 22, // Bahrain
	"BE": 16, // Belgium
	"BA": 20, // Bosnia and Herzegovina
	"BR": 29, // Brazil
	"BG": 22, // Bulgaria
	"CR": 21, // Costa Rica
	"HR": 21, // Croatia
	"CY": 28, // Cyprus
	"CZ": 24, // Czech Republic
	"DK": 18, // Denmark
	"DO": 28, // Dominican Republic
	"TL": 23, // East Timor
	"EE": 20, // Estonia
	"FO": 18, // Faroe Islands
	"FI": 18, // Finland
	"FR": 27, // France
	"GE": 22, // Georgia
	"DE": 22, // Germany
	"GI": 23, // Gibraltar
	"GR": 27, // Greece
	"GL": 18, // Greenland
	"GT": 28, // Guatemala
	"HU": 28, // Hungary
	"IS": 26, // Iceland
	"IE": 22, // Ireland
	"IL": 23, // Israel
	"IT": 27, // Italy
	"JO": 30, // Jordan
	"KZ": 20, // Kazakhstan
	"XK": 20, // Kosovo
	"KW": 30, // Kuwait
	"LV": 21, // Latvia
	"LB": 28, // Lebanon
	"LI": 21, // Liechtenstein
	"LT": 20, // Lithuania
	"LU": 20, // Luxembourg
	"MK": 19, // North Macedonia
	"MT": 31, // Malta
	"MR": 27, // Mauritania
	"MU": 30, // Mauritius
	"MC": 27, // Monaco
	"MD": 24, // Moldova
	"ME": 22, // Montenegro
	"NL": 18, // Netherlands
	"NO": 15, // Norway
	"PK": 24, // Pakistan
	"PS": 29, // Palestine
	"PL": 28, // Poland
	"PT": 25, // Portugal
	"QA": 29, // Qatar
	"RO": 24, // Romania
	"SM": 27, // San Marino
	"SA": 24, // Saudi Arabia
	"RS": 22, // Serbia
	"SK": 24, // Slovakia
	"SI": 19, // Slovenia
	"ES": 24, // Spain
	"SE": 24, // Sweden
	"CH": 21, // Switzerland
	"TN": 24, // Tunisia
	"TR": 26, // Turkey
	"AE": 23, // United Arab Emirates
	"GB": 22, // United Kingdom
	"VG": 24, // British Virgin Islands
	"DZ": 24, // Algeria
	"AO": 25, // Angola
	"BJ": 28, // Benin
	"BF": 27, // Burkina Faso
	"BI": 16, // Burundi
	"CM": 27, // Cameroon
	"CV": 25, // Cape Verde
	"IR": 26, // Iran
	"CI": 28, // Ivory Coast
	"MG": 27, // Madagascar
	"ML": 28, // Mali
	"MZ": 25, // Mozambique
	"SN": 28, // Senegal
	"UA": 29, // Ukraine
}

var ibanPattern = regexp.MustCompile(`[A-Z]{2}[0-9]{2}[A-Z0-9]{0,30}`)

// mod97Limit keeps the running checksum below the point where the next
// shift by two decimal digits could overflow.
const mod97Limit = math.MaxInt64 / 100

// NormalizeIBAN removes spaces and upper-cases the candidate, turning the
// paper form ("CZ65 0800 ...") into the electronic form.
func NormalizeIBAN(candidate string) string {
	return strings.ToUpper(strings.ReplaceAll(candidate, " ", ""))
}

// IBANLength returns the expected IBAN length for a country code.
func IBANLength(country string) (int, bool) {
	length, ok := ibanLengths[strings.ToUpper(country)]
	return length, ok
}

// ValidateIBAN checks structure, country length and the ISO 7064 MOD 97-10
// checksum of candidate. Spaces are ignored and letters may be any case.
func ValidateIBAN(candidate string) bool {
	iban := NormalizeIBAN(candidate)

	// exactly one occurrence of the pattern, spanning the whole string
	matches := ibanPattern.FindAllStringIndex(iban, -1)
	if len(matches) != 1 || matches[0][0] != 0 || matches[0][1] != len(iban) {
		return false
	}

	expected, ok := ibanLengths[iban[:2]]
	if !ok || expected != len(iban) {
		return false
	}

	return mod97(iban[4:]+iban[:4]) == 1
}

// mod97 computes the decimal expansion of s (0-9 as themselves, A-Z as
// 10-35) modulo 97 without building the full number.
func mod97(s string) int {
	checksum := 0
	for i := 0; i < len(s); i++ {
		value := charValue(s[i])
		if value < 10 {
			checksum = checksum*10 + value
		} else {
			checksum = checksum*100 + value
		}
		if checksum >= mod97Limit {
			checksum %= 97
		}
	}
	return checksum % 97
}

func charValue(c byte) int {
	if c >= '0' && c <= '9' {
		return int(c - '0')
	}
	return int(c-'A') + 10
}
