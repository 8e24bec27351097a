// Package types defines the Catalog and Table interfaces, the content and
// commerce entities (articles, lessons, products, carts), and the standard
// error types for the academy storage layer.
package types
