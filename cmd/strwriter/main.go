// Strwriter exports line and point layers to Surpac string files.
//
// Each line feature becomes one segment of a string, closed by a zero
// terminator record; each point feature becomes one record. Coordinates are
// reprojected to the requested CRS and written as Northing, Easting,
// Elevation with an optional attribute column.
//
// Usage:
//
//	# Export one layer to ./haul_roads.str
//	strwriter export --layer haul_roads --target-crs EPSG:3857
//
//	# Pick the layer, CRS, field and default elevation interactively
//	strwriter export --interactive
//
//	# Re-export whenever the source changes
//	strwriter watch
//
//	# Run the configured cron jobs
//	strwriter schedule
//
//	# Show recent exports
//	strwriter history --limit 10
package main

func main() {
	Execute()
}
