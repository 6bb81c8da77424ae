package extract

import (
	"fmt"
	"strings"
)

// Facility is the normalized outward schema for a parking facility.
// It is stable regardless of upstream shape drift.
type Facility struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	City               string   `json:"city"`
	Lat                *float64 `json:"lat"`
	Lng                *float64 `json:"lng"`
	ImageURL           string   `json:"imageUrl"`
	Rates              string   `json:"rates"`
	Country            string   `json:"country"`
	Description        string   `json:"description"`
	OpeningTimes       string   `json:"openingTimes"`
	Restrictions       string   `json:"restrictions"`
	Features           []string `json:"features"`
	PaymentOptions     []string `json:"paymentOptions"`
	StreetLines        []string `json:"streetLines"`
	URLPrebooking      string   `json:"urlPrebooking"`
	URLLongTermParking string   `json:"urlLongTermParking"`
	CapacityTotal      *int     `json:"capacityTotal"`
	CombinedStatus     Status   `json:"combinedStatus"`
}

// featureTags maps each canonical facility feature tag to the upstream
// feature keys and attribute keys that indicate it. The table is fixed;
// matching is case-insensitive on the key side.
var featureTags = []struct {
	Tag  string
	Keys []string
}{
	{"elevator", []string{"elevator", "lift"}},
	{"roofed", []string{"roofed", "indoor"}},
	{"public_restrooms", []string{"public_restrooms", "restrooms", "toilet"}},
	{"surveillance", []string{"surveillance", "video_surveillance"}},
	{"guidance_system", []string{"guidance_system", "dynamic_guidance"}},
	{"disabled_parking_spaces", []string{"disabled_parking_spaces", "accessible"}},
	{"stork_parking_spaces", []string{"stork_parking_spaces", "family"}},
	{"long_term_parking", []string{"long_term_parking", "contract"}},
	{"bicycle", []string{"bicycle", "bike"}},
}

// paymentTags maps each canonical payment-method tag to its upstream key
// spellings, same mechanics as featureTags.
var paymentTags = []struct {
	Tag  string
	Keys []string
}{
	{"payment_cash", []string{"payment_cash", "cash"}},
	{"payment_ec", []string{"payment_ec", "payment_girocard", "ec", "girocard"}},
	{"payment_visa", []string{"payment_visa", "visa"}},
	{"payment_mastercard", []string{"payment_mastercard", "mastercard"}},
	{"payment_easypark", []string{"payment_easypark", "easypark"}},
	{"payment_paybyphone", []string{"payment_paybyphone", "paybyphone"}},
	{"payment_wien_mobile", []string{"payment_wien_mobile", "payment_mobile"}},
	{"payment_post_card", []string{"payment_post_card", "payment_postcard"}},
	{"payment_multipurposecard", []string{"payment_multipurposecard", "payment_mpc"}},
}

// FacilityDefaults are fallback display texts applied when the facility
// reports no value of its own. Zero value means no fallbacks.
type FacilityDefaults struct {
	Rates        string
	OpeningTimes string
}

// NormalizeFacility derives the outward facility schema from a merged
// composite record without fallback texts.
func NormalizeFacility(comp map[string]any) Facility {
	return NormalizeFacilityWith(comp, FacilityDefaults{})
}

// NormalizeFacilityWith derives the outward facility schema from a merged
// composite record. Pure function: missing auxiliary data degrades the
// affected fields to empty values (or the given fallback texts), never to
// an error.
func NormalizeFacilityWith(comp map[string]any, def FacilityDefaults) Facility {
	attrs := DecodeAttributes(comp["attributes"])
	ix := NewAttrIndex(attrs)
	features := Records(comp["features"])
	counters := DecodeCounters(comp["facilityOccupancies"])
	addr := EntityAddress(comp, ix)

	f := Facility{
		ID:                 RecordID(comp),
		Name:               Str(comp, "name", "label"),
		City:               addr.City,
		ImageURL:           imageURL(comp),
		Rates:              TariffSummary(ix),
		Country:            addr.Country,
		Description:        Str(comp, "description"),
		OpeningTimes:       Str(comp, "openingTimes", "openingHours"),
		Restrictions:       ClearanceRestriction(comp, ix),
		Features:           matchTags(featureTags, features, ix),
		PaymentOptions:     matchTags(paymentTags, features, ix),
		StreetLines:        addr.Lines(),
		URLPrebooking:      Str(comp, "prebookingUrl", "urlPrebooking"),
		URLLongTermParking: Str(comp, "contractUrl", "urlLongTermParking"),
		CapacityTotal:      Capacity(comp, ix),
		CombinedStatus:     HeadlineStatus(counters),
	}
	if f.City == "" {
		f.City = Str(comp, "city")
	}
	if f.Country == "" {
		f.Country = "DE"
	}
	if f.Rates == "" {
		f.Rates = def.Rates
	}
	if f.OpeningTimes == "" {
		f.OpeningTimes = def.OpeningTimes
	}
	if lat, ok := Num(comp, "lat", "latitude"); ok {
		f.Lat = &lat
	}
	if lng, ok := Num(comp, "lng", "longitude", "lon"); ok {
		f.Lng = &lng
	}
	return f
}

// imageURL picks a representative image: the first entry of an images
// list, else a snapshot URL. Empty when neither exists.
func imageURL(rec map[string]any) string {
	if imgs := Records(rec["images"]); len(imgs) > 0 {
		if u := Str(imgs[0], "url"); u != "" {
			return u
		}
	}
	return Str(rec, "snapshotUrl", "imageUrl")
}

// FormatEuro normalises a price value to the German display form
// "X,XX €": the decimal point becomes a comma and the euro sign is
// appended unless the value already carries one. Empty in, empty out.
func FormatEuro(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	v = strings.ReplaceAll(v, ".", ",")
	if strings.Contains(v, "€") {
		return v
	}
	return v + " €"
}

// Tariff display labels, matching what the consuming UI renders.
const (
	labelHourly  = "pro Stunde"
	labelDayMax  = "Tageshöchstsatz"
	labelMonthly = "Dauerparken/Monat"

	tariffSeparator = " · "
)

// TariffSummary joins the present tariff attributes into one display line,
// e.g. "pro Stunde: 1,50 € · Tageshöchstsatz: 10,00 €". Absent fields are
// simply omitted; all absent yields "".
func TariffSummary(ix *AttrIndex) string {
	var parts []string
	if v := FormatEuro(ix.Get(AliasHourly...)); v != "" {
		parts = append(parts, labelHourly+": "+v)
	}
	if v := FormatEuro(ix.Get(AliasDayMax...)); v != "" {
		parts = append(parts, labelDayMax+": "+v)
	}
	if v := FormatEuro(ix.Get(AliasMonthly...)); v != "" {
		parts = append(parts, labelMonthly+": "+v)
	}
	return strings.Join(parts, tariffSeparator)
}

// ClearanceRestriction formats the entrance clearance height as a
// restriction line ("Einfahrtshöhe: 1,90 m"). A meters value is preferred;
// a centimeters value is divided by 100. Two decimals, comma separator.
// Empty when the facility reports no clearance at all.
func ClearanceRestriction(rec map[string]any, ix *AttrIndex) string {
	meters, ok := Num(rec, "clearanceMeters")
	if !ok {
		meters, ok = numAttr(ix, AliasClearanceMeters)
	}
	if !ok {
		if cm, cmOK := Num(rec, "heightLimitCm"); cmOK {
			meters, ok = cm/100, true
		}
	}
	if !ok {
		if cm, cmOK := numAttr(ix, AliasClearanceCm); cmOK {
			meters, ok = cm/100, true
		}
	}
	if !ok {
		return ""
	}
	return "Einfahrtshöhe: " + strings.ReplaceAll(fmt.Sprintf("%.2f", meters), ".", ",") + " m"
}

// Capacity returns the total number of places, preferring direct numeric
// fields on the base record over the attribute alias. Nil when unknown.
func Capacity(rec map[string]any, ix *AttrIndex) *int {
	if v, ok := IntVal(rec, "capacityTotal", "totalCapacity"); ok {
		return &v
	}
	if f, ok := numAttr(ix, AliasCapacity); ok {
		v := int(f)
		return &v
	}
	return nil
}

// matchTags returns the canonical tags indicated by the entity's feature
// list or its attribute keys, deduplicated, in table order.
func matchTags(table []struct {
	Tag  string
	Keys []string
}, features []map[string]any, ix *AttrIndex) []string {
	present := ix.LowerKeySet()
	for _, f := range features {
		if key := Str(f, "key", "type", "name"); key != "" {
			present[strings.ToLower(key)] = true
		}
	}

	var tags []string
	for _, entry := range table {
		for _, key := range entry.Keys {
			if present[key] {
				tags = append(tags, entry.Tag)
				break
			}
		}
	}
	return tags
}

// numAttr parses an attribute value as a number, tolerating comma decimal
// separators and trailing unit text.
func numAttr(ix *AttrIndex, aliases []string) (float64, bool) {
	raw := ix.Get(aliases...)
	if raw == "" {
		return 0, false
	}
	return parseLooseNumber(raw)
}
