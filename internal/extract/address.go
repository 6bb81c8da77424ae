package extract

import (
	"regexp"
	"strings"
)

// PostalAddress is the parsed form of a postal address, from either a
// structured nested object or the multi-line attribute block.
type PostalAddress struct {
	Street  string
	HouseNo string
	Zip     string
	City    string
	Country string
}

var (
	zipPattern     = regexp.MustCompile(`^\d{4,6}$`)
	countryPattern = regexp.MustCompile(`^[A-Z]{2,3}$`)
)

// iso3Countries maps three-letter country codes the backend emits to the
// two-letter codes the output schema uses.
var iso3Countries = map[string]string{
	"DEU": "DE",
	"AUT": "AT",
	"CHE": "CH",
}

// ParsePostalBlock parses the one structured multi-line attribute value
// that represents a postal address.
//
// The first non-empty line is the street. Subsequent lines are classified
// by pattern: a 4–6 digit token is the postal code, a 2–3 uppercase-letter
// token is a country code (normalised to two letters), anything else is the
// city. Unclassified extra lines are ignored.
func ParsePostalBlock(block string) PostalAddress {
	var addr PostalAddress
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		switch {
		case addr.Street == "":
			addr.Street = line
		case addr.Zip == "" && zipPattern.MatchString(line):
			addr.Zip = line
		case addr.Country == "" && countryPattern.MatchString(line):
			addr.Country = normalizeCountry(line)
		case addr.City == "":
			addr.City = line
		}
	}
	return addr
}

// normalizeCountry maps three-letter country codes to two letters;
// two-letter codes pass through unchanged.
func normalizeCountry(code string) string {
	up := strings.ToUpper(strings.TrimSpace(code))
	if two, ok := iso3Countries[up]; ok {
		return two
	}
	return up
}

// Format renders the address as a single line:
// "street houseNo, zip city, country", omitting whatever is absent.
// An entirely empty address formats to "".
func (a PostalAddress) Format() string {
	var parts []string
	if line := joinNonEmpty(" ", a.Street, a.HouseNo); line != "" {
		parts = append(parts, line)
	}
	if line := joinNonEmpty(" ", a.Zip, a.City); line != "" {
		parts = append(parts, line)
	}
	if a.Country != "" {
		parts = append(parts, a.Country)
	}
	return strings.Join(parts, ", ")
}

// Lines renders the address as street lines for the facility schema:
// ["street houseNo", "zip city"], omitting empty lines.
func (a PostalAddress) Lines() []string {
	var lines []string
	if line := joinNonEmpty(" ", a.Street, a.HouseNo); line != "" {
		lines = append(lines, line)
	}
	if line := joinNonEmpty(" ", a.Zip, a.City); line != "" {
		lines = append(lines, line)
	}
	return lines
}

// EntityAddress derives a postal address for any entity (facility or
// charging station), in order of preference:
//
//  1. a structured nested "address" or "postalAddress" object
//  2. the parsed multi-line postal-address attribute block
//  3. assembly from separate street/house/zip/city attribute aliases
//
// A record with no address data at all yields the zero PostalAddress,
// which formats to "". Never fails.
func EntityAddress(rec map[string]any, ix *AttrIndex) PostalAddress {
	for _, key := range []string{"address", "postalAddress"} {
		if obj := Nested(rec, key); obj != nil {
			addr := PostalAddress{
				Street:  Str(obj, "street"),
				HouseNo: Str(obj, "houseNo", "houseNumber"),
				Zip:     Str(obj, "zip", "zipCode", "postalCode"),
				City:    Str(obj, "city"),
				Country: normalizeCountry(Str(obj, "country", "countryCode")),
			}
			if addr != (PostalAddress{}) {
				return addr
			}
		}
	}

	if block := ix.Get(AliasAddressBlock...); strings.Contains(block, "\n") {
		if addr := ParsePostalBlock(block); addr != (PostalAddress{}) {
			return addr
		}
	}

	addr := PostalAddress{
		Street:  firstNonEmpty(Str(rec, "street"), ix.Get(AliasStreet...)),
		HouseNo: firstNonEmpty(Str(rec, "houseNo"), ix.Get(AliasHouseNo...)),
		Zip:     firstNonEmpty(Str(rec, "zip"), ix.Get(AliasZip...)),
		City:    firstNonEmpty(Str(rec, "city"), ix.Get(AliasCity...)),
		Country: normalizeCountry(firstNonEmpty(Str(rec, "country"), ix.Get(AliasCountry...))),
	}
	return addr
}

func joinNonEmpty(sep string, parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
