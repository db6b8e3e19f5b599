// Package layer provides the vector layer model consumed by the string file
// exporter and the catalogs that supply it.
//
// # Layers and Features
//
// A Layer is a named, ordered collection of features that share a geometry
// kind and an attribute schema:
//
//   - Name: used verbatim in the string file header
//   - Kind: Line, Point, or Other (Other layers cannot be exported)
//   - Fields: attribute names in schema order
//   - CRS: the source coordinate reference system code
//
// A Feature holds a go-geom geometry and an attribute row addressed by field
// index. Attribute values may be nil.
//
// # Catalogs
//
// The Catalog interface is the boundary to wherever layers come from:
//
//	catalog := layer.NewFileCatalog("./layers", "EPSG:4326")
//
//	layers, err := catalog.Layers(ctx)      // every readable layer
//	roads, err := catalog.Lookup(ctx, "roads") // fresh snapshot of one layer
//
// FileCatalog reads GeoJSON FeatureCollections from a file or a directory;
// MemoryCatalog serves layers built in code.
//
// # Elevation Field
//
// A field named exactly "ELEV" is treated as the per-feature elevation
// attribute. Use ElevationIndex to locate it.
package layer
