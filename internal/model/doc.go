// Package model defines the persisted entities of the kantin store and the
// enumerated values stored alongside them.
//
// Money is decimal.Decimal throughout; it serializes to JSON as a string so
// that result fingerprints never see floating point values.
package model
