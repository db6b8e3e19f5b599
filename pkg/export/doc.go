// Package export runs string file exports end to end.
//
// An Exporter looks a layer up in a layer.Catalog, rejects layers that are
// neither lines nor points, resolves the coordinate transform, picks the
// destination path and streams the surpac serializer output into the file.
// Every run gets a UUID run ID that is carried in logs, metrics and history.
//
// # Usage
//
//	exp := export.NewExporter(catalog,
//		export.WithOutputDir("./out"),
//		export.WithHistory(store),
//	)
//
//	res, err := exp.Export(ctx, export.Request{
//		Layer:     "haul_roads",
//		TargetCRS: "EPSG:3857",
//		Field:     "ROAD_ID",
//		DefaultZ:  "0",
//	})
//	if errors.Is(err, export.ErrCancelled) {
//		return nil
//	}
//	fmt.Println(res.Message()) // Layer haul_roads saved as out/haul_roads.str
//
// # Errors
//
//   - *LayerNotFoundError: no such layer, nothing written
//   - *UnsupportedLayerError: polygon or mixed layer, nothing written
//   - crs.ErrUnknownCRS, crs.ErrUnsupportedTransform: nothing written
//   - ErrCancelled: the save prompt was dismissed
//   - *surpac.SerializeError: a vertex failed to transform; the partial file
//     stays on disk
//   - *WriteError: the destination could not be created or written
package export
