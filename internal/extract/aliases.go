package extract

// Attribute alias groups: the fixed, explicit tables of historically- and
// regionally-varying upstream key spellings that denote one logical field.
// Matching is case-insensitive; the tables are data, never inferred.
var (
	// Parking tariffs
	AliasHourly  = []string{"HOURLY", "HOURLY_RATE", "PRICE_HOUR", "RATE_HOUR", "HOUR_PRICE", "PRO_STUNDE", "STUNDENPREIS"}
	AliasDayMax  = []string{"DAYMAX", "DAY_MAX", "PRICE_DAY_MAX", "RATE_DAY_MAX", "TAGESHÖCHSTSATZ", "TAGESSATZ"}
	AliasMonthly = []string{"MONTHLYLONGTERM", "LONG_TERM_MONTHLY", "MONTHLY", "DAUERPARKPLATZ_MONAT", "MONATSPREIS"}

	// Physical properties
	AliasClearanceMeters = []string{"CLEARANCE", "CLEARANCE_M", "CLEARANCEMETERS", "EINFAHRTSHÖHE", "EINFAHRTSHOEHE"}
	AliasClearanceCm     = []string{"HEIGHT_LIMIT_CM", "HEIGHTLIMITCM", "CLEARANCE_CM", "EINFAHRTSHÖHE_CM"}
	AliasCapacity        = []string{"CAPACITY_TOTAL", "TOTAL_CAPACITY", "CAPACITY", "STELLPLÄTZE", "STELLPLAETZE"}

	// Postal address block (one structured multi-line value)
	AliasAddressBlock = []string{"ADDRESS", "ADDRESS_BLOCK", "POSTAL_ADDRESS", "POSTALADDRESS", "ANSCHRIFT"}
	AliasStreet       = []string{"STREET", "STRASSE"}
	AliasHouseNo      = []string{"HOUSE_NO", "HOUSENO", "HOUSE_NUMBER", "HAUSNUMMER"}
	AliasZip          = []string{"ZIP", "ZIP_CODE", "POSTCODE", "POSTAL_CODE", "PLZ"}
	AliasCity         = []string{"CITY", "TOWN", "ORT", "STADT"}
	AliasCountry      = []string{"COUNTRY", "COUNTRY_CODE", "LAND"}

	// Charging tariffs
	AliasPerKwh               = []string{"PRICEPERKWH", "PRICE_PER_KWH", "KWH_PRICE", "PREIS_KWH"}
	AliasSessionFee           = []string{"SESSIONFEE", "SESSION_FEE", "STARTFEE", "START_FEE", "STARTGEBÜHR"}
	AliasParkingWhileCharging = []string{"PARKINGFEEWHILECHARGING", "PARKING_FEE_WHILE_CHARGING", "PARKENTGELT_WÄHREND_LADEN"}
	AliasMinPrice             = []string{"MINPRICE", "MINIMUM_PRICE", "MIN_PREIS", "MINDESTPREIS"}

	// Charging outlets
	AliasMaxPowerWatts = []string{"MAX_ELECTRIC_POWER", "MAX_ELECTRIC_POWER_W", "MAXELECTRICPOWER", "MAX_POWER_W"}
	AliasConnectorType = []string{"CONNECTOR_TYPE", "CONNECTORTYPE", "PLUG_TYPE", "SOCKET_TYPE", "STECKERTYP"}

	// Charging station flags
	AliasRenewable    = []string{"RENEWABLE", "RENEWABLE_ENERGY", "GREEN_ENERGY", "ÖKOSTROM", "OEKOSTROM"}
	AliasDynamicPower = []string{"DYNAMIC_POWER", "DYNAMIC_POWER_MANAGEMENT", "DYNAMIC_LOAD_MANAGEMENT", "LASTMANAGEMENT"}
)
