// Package colmap maps object classes and their attributes onto tables and
// typed columns.
//
// Mappings are read from CUE or YAML files and serve as the
// translate.ColumnResolver for searches against a real schema.
package colmap
