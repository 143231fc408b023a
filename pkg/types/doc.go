// Package types defines the column and data-type vocabulary, the AssetType
// and Asset entities, structured filter predicates, the Store contract, and
// the standard errors shared by the shelf registry and asset manager.
package types
