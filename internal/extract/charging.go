package extract

import (
	"math"
	"regexp"
	"strings"
)

// Connector type constants. CCS is detected from outlet attributes;
// everything else defaults to the common European AC connector.
const (
	ConnectorCCS     = "CCS"
	ConnectorDefault = "Type 2"
)

// Outlet is one charging outlet of a station, derived from the station's
// device/outlet records. PowerKW is nil when the power is unknown.
type Outlet struct {
	DeviceID string   `json:"deviceId"`
	Type     string   `json:"type"`
	PowerKW  *float64 `json:"powerKw"`
}

// ChargingTariffs holds the charging price attributes, already formatted
// for display. Absent values are empty strings.
type ChargingTariffs struct {
	PerKwh               string `json:"perKwh,omitempty"`
	SessionFee           string `json:"sessionFee,omitempty"`
	ParkingWhileCharging string `json:"parkingWhileCharging,omitempty"`
	MinPrice             string `json:"minPrice,omitempty"`
}

// ChargingStation is the normalized outward schema for a charging station.
type ChargingStation struct {
	ID                     string          `json:"id"`
	Name                   string          `json:"name"`
	Address                string          `json:"address"`
	ConnectorType          string          `json:"connectorType"`
	Outlets                []Outlet        `json:"outlets"`
	PaymentOptions         []string        `json:"paymentOptions"`
	RenewableEnergy        bool            `json:"renewableEnergy"`
	DynamicPowerManagement bool            `json:"dynamicPowerManagement"`
	Tariffs                ChargingTariffs `json:"tariffs"`
}

// kwSuffixPattern matches a trailing "<number>KW" token embedded in an
// outlet type string, e.g. "AC_WALLBOX_22KW" or "DC 150kW".
var kwSuffixPattern = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*KW$`)

// NormalizeChargingStation derives the outward charging-station schema
// from a merged composite record. Outlets come from the station's device
// records (aux kind "devices") or an embedded "outlets" list on the base
// record. Pure function; partial data degrades, never fails.
func NormalizeChargingStation(comp map[string]any) ChargingStation {
	attrs := DecodeAttributes(comp["attributes"])
	ix := NewAttrIndex(attrs)
	addr := EntityAddress(comp, ix)

	outletRecs := Records(comp["devices"])
	if len(outletRecs) == 0 {
		outletRecs = Records(comp["outlets"])
	}

	outlets := make([]Outlet, 0, len(outletRecs))
	for _, rec := range outletRecs {
		outlets = append(outlets, decodeOutlet(rec))
	}

	return ChargingStation{
		ID:                     RecordID(comp),
		Name:                   Str(comp, "name", "label"),
		Address:                addr.Format(),
		ConnectorType:          connectorType(outletRecs),
		Outlets:                outlets,
		PaymentOptions:         matchTags(paymentTags, Records(comp["features"]), ix),
		RenewableEnergy:        boolAttr(ix, AliasRenewable),
		DynamicPowerManagement: boolAttr(ix, AliasDynamicPower),
		Tariffs: ChargingTariffs{
			PerKwh:               FormatEuro(ix.Get(AliasPerKwh...)),
			SessionFee:           FormatEuro(ix.Get(AliasSessionFee...)),
			ParkingWhileCharging: FormatEuro(ix.Get(AliasParkingWhileCharging...)),
			MinPrice:             FormatEuro(ix.Get(AliasMinPrice...)),
		},
	}
}

// decodeOutlet converts one raw device/outlet record, including its own
// attribute list (distinct from the parent entity's attributes).
func decodeOutlet(rec map[string]any) Outlet {
	ix := NewAttrIndex(DecodeAttributes(rec["attributes"]))
	typ := outletType(rec, ix)
	return Outlet{
		DeviceID: RecordID(rec),
		Type:     typ,
		PowerKW:  OutletPowerKW(ix, typ),
	}
}

// outletType returns the outlet's type string from its record fields or
// its type-describing attribute.
func outletType(rec map[string]any, ix *AttrIndex) string {
	if t := Str(rec, "type", "category"); t != "" {
		return t
	}
	return ix.Get(AliasConnectorType...)
}

// OutletPowerKW derives an outlet's charging power in kilowatts:
//
//  1. a "max electric power in watts" attribute, divided by 1000 and
//     rounded to one decimal
//  2. else a trailing "<number>KW" token in the outlet's type string
//  3. else nil — unknown power is never a failure
func OutletPowerKW(ix *AttrIndex, typeStr string) *float64 {
	if watts, ok := numAttr(ix, AliasMaxPowerWatts); ok && watts > 0 {
		kw := math.Round(watts/1000*10) / 10
		return &kw
	}
	if m := kwSuffixPattern.FindStringSubmatch(typeStr); m != nil {
		if kw, ok := parseLooseNumber(m[1]); ok {
			return &kw
		}
	}
	return nil
}

// connectorType reports CCS when any outlet's type-describing data
// contains the substring "CCS" (case-insensitive); otherwise the canonical
// default "Type 2".
func connectorType(outletRecs []map[string]any) string {
	for _, rec := range outletRecs {
		ix := NewAttrIndex(DecodeAttributes(rec["attributes"]))
		candidates := []string{
			Str(rec, "type", "category"),
			ix.Get(AliasConnectorType...),
		}
		for _, c := range candidates {
			if strings.Contains(strings.ToUpper(c), ConnectorCCS) {
				return ConnectorCCS
			}
		}
	}
	return ConnectorDefault
}

// boolAttr interprets a flag-like attribute value. The backend writes
// these as "true"/"1"/"yes"/"ja" in various spellings.
func boolAttr(ix *AttrIndex, aliases []string) bool {
	switch strings.ToLower(strings.TrimSpace(ix.Get(aliases...))) {
	case "true", "1", "yes", "ja", "y":
		return true
	default:
		return false
	}
}
