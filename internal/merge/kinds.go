package merge

import "github.com/parkgate/parkgate-core/internal/infrastructure/config"

// AuxKind names one auxiliary collection merged into a composite record:
// which upstream collection it comes from and which composite property it
// lands under.
type AuxKind struct {
	Collection string
	Property   string
}

// facilityAux lists the auxiliary collections merged into a facility
// composite. The property names are fixed; consumers key off them.
var facilityAux = []AuxKind{
	{Collection: config.ColFeatures, Property: "features"},
	{Collection: config.ColOccupancies, Property: "facilityOccupancies"},
	{Collection: config.ColDevices, Property: "devices"},
	{Collection: config.ColAttributes, Property: "attributes"},
	{Collection: config.ColContacts, Property: "contactData"},
	{Collection: config.ColStatus, Property: "facilityStatus"},
}

// chargingAux lists the auxiliary collections merged into a
// charging-station composite.
var chargingAux = []AuxKind{
	{Collection: config.ColDevices, Property: "devices"},
	{Collection: config.ColAttributes, Property: "attributes"},
	{Collection: config.ColContacts, Property: "contactData"},
}

// embedKinds maps the outward embed endpoint names to their collections.
// The names are the composite property names the consoles request
// (contactData, facilityStatus, deviceStatus, fileAttachments); the short
// spellings are kept as aliases.
var embedKinds = map[string]AuxKind{
	"features":        {Collection: config.ColFeatures, Property: "features"},
	"occupancies":     {Collection: config.ColOccupancies, Property: "facilityOccupancies"},
	"devices":         {Collection: config.ColDevices, Property: "devices"},
	"attributes":      {Collection: config.ColAttributes, Property: "attributes"},
	"contactData":     {Collection: config.ColContacts, Property: "contactData"},
	"contacts":        {Collection: config.ColContacts, Property: "contactData"},
	"methods":         {Collection: config.ColMethods, Property: "methods"},
	"fileAttachments": {Collection: config.ColFiles, Property: "fileAttachments"},
	"facilityStatus":  {Collection: config.ColStatus, Property: "facilityStatus"},
	"status":          {Collection: config.ColStatus, Property: "facilityStatus"},
	"deviceStatus":    {Collection: config.ColDeviceStatus, Property: "deviceStatus"},
	"device-status":   {Collection: config.ColDeviceStatus, Property: "deviceStatus"},
}

// EmbedKind resolves an outward embed name ("features", "occupancies", ...)
// to its auxiliary kind. The boolean is false for unknown names.
func EmbedKind(name string) (AuxKind, bool) {
	k, ok := embedKinds[name]
	return k, ok
}
