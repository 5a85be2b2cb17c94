// Package icon is the catalog of node icons.
//
// Every node in a diagram is typed by an icon. Catalog icons are referenced by
// "provider.category.kind" (for example "onprem.database.postgresql"); user
// images are referenced as "custom:<path>":
//
//	db := icon.PostgreSQL
//	fe := icon.Custom("./rust-yew-wasm.png")
//	i, err := icon.Lookup("aws.compute.ec2")
//
// No raster assets are bundled. Each icon carries a Graphviz shape and fill
// colour that renderers fall back to when there is no readable image.
package icon
