// Package codec encodes and decodes the structured formats cloudstore reads
// from and writes to object storage.
//
// Tabular formats (CSV, Excel, Parquet) share the Table type: a header row and
// string cells. Document formats (YAML, JSON) decode into any Go value.
//
// Codecs know nothing about storage. Callers hand them a reader or writer and
// map failures into the error taxonomy themselves.
package codec
