// Package formats provides parsers for the mesh file formats the viewer reads.
package formats

// Note: OBJ (v, vn and f statements only) is implemented in obj.go
