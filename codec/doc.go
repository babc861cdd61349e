// Package codec holds the pure encoders and decoders shared by the vendor
// drivers: 802.1Q port bitmaps, the Eltex VLAN tables, ZTE signal levels,
// serials and packed locators, MAC rendering and name normalisation.
//
// Raw byte representations never leave this package: every MAC it returns
// is six colon-separated lower-case hex bytes.
package codec
