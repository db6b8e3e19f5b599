// Package surpac serializes vector layers into the Surpac string file format.
//
// # Record Grammar
//
// A string file is a header block, a sequence of records and a footer block:
//
//	haul_roads, 27-Aug-24, Earthworks Surpac Driver,
//	0,    0.000000,    0.000000,    0.000000,    0.000000,    0.000000,    0.000000
//	1, 6466000.250000, 391000.125000,   412.500000, R1
//	1, 6466010.250000, 391004.125000,   413.000000, R1
//	0,    0,    0,    0, 0
//	0,    0.000000,    0.000000,    0.000000,
//	0,    0.000000,    0.000000,    0.000000, END
//
// Data records carry northing before easting: (1, y, x, z, attribute), each
// float right-justified in 12 columns with 6 decimals. Every polyline part and
// every point is closed by one terminator record.
//
// # Elevation
//
// The z column of each record is resolved through an ordered Chain of
// ElevationSource values; the first source yielding a non-NaN value wins:
//
//  1. VertexZ: the vertex Z ordinate (lines only)
//  2. FieldZ: the feature's ELEV attribute
//  3. ConstantZ: the caller-supplied default
//
// # Usage
//
//	in := surpac.InputFromLayer(l, transform, "ROAD_ID", surpac.ParseDefaultZ("0"))
//	stats, err := surpac.NewSerializer().Write(ctx, w, in)
//
// Serialization stops at the first transform error. Lines already handed to
// the writer are not taken back.
package surpac
