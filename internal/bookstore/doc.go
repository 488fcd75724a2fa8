// Package bookstore implements the in-memory book catalogue.
//
// A single mutex guards the whole collection and the id counter, so every
// operation (reads included) is serialized and linearizable. Callers only
// ever see copies of the stored records.
package bookstore
