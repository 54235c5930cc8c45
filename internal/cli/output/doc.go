// Package output renders command results as a table, JSON or YAML.
//
// Table output uses the value's own layout when it implements Tabular and
// falls back to reflection over json field names otherwise. Spinner shows
// progress on stderr while a request is in flight.
package output
