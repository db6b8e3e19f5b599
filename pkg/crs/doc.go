// Package crs resolves coordinate reference system codes and builds the planar
// transforms used when writing string files.
//
// Only a small set of transforms is built in:
//
//   - identity, for any code to itself
//   - EPSG:4326 (WGS 84 lon/lat) to EPSG:3857 (web mercator) and back
//
// Everything else is plugged in through Register:
//
//	reg := crs.NewRegistry()
//	reg.Register("EPSG:4326", "EPSG:28350", myTransform)
//
//	t, err := reg.Transform("EPSG:4326", "EPSG:28350")
//	x, y, err := t.Transform(115.86, -31.95)
//
// Transforms never touch elevation; callers pass z through unchanged.
package crs
