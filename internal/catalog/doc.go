// Package catalog owns tenants and menus: reads (including their live forms),
// the thin write surface used by tooling, and the CUE catalog used to seed
// an empty database.
//
// A catalog file lists tenants with their menus:
//
//	tenants: [{
//		name:     "Warung Bu Sari"
//		location: "Kantin Lantai 1"
//		menus: [{name: "Nasi Gudeg", price: 15000, category: "Makanan Utama"}]
//	}]
//
// Files are unified with an embedded schema, so unknown fields, empty names
// and non-positive prices are compile errors with file positions.
package catalog
