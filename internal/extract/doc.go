// Package extract derives typed domain facts from the loosely-typed JSON
// the facility-management backend returns.
//
// The backend does not expose address, tariffs, clearance height, payment
// methods or connector power as typed fields. Instead each entity carries a
// generic key/value attribute list whose key spellings vary by vendor,
// region and API generation. This package turns that into a stable model:
//
//   - PickArray finds "the" list of records inside an arbitrary JSON value
//     (top-level array, known envelope key, or first array-valued property).
//   - AttrIndex gives case-insensitive, alias-group-aware lookup over an
//     entity's attribute list. Alias groups are fixed, explicit tables.
//   - CombinedStatus reduces a facility's occupancy counters to one of
//     free/tight/full/unknown via a deterministic two-phase algorithm.
//   - NormalizeFacility / NormalizeChargingStation assemble the outward
//     JSON schema from a merged composite record.
//
// Everything here is a pure function of its inputs: no I/O, no mutation of
// the passed-in records, no retained state. Absent data degrades to empty
// fields, never to errors.
package extract
