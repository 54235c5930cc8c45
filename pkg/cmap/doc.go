// Package cmap provides a string-keyed map split into independently locked
// shards.
//
// Usage:
//
//	m := cmap.New[string, grant]()
//	m.Set(id, g)
//	g, ok := m.Pop(id) // get and delete in one step
//
// All operations are safe for concurrent use. Range and DeleteFunc visit one
// shard at a time, so they see a consistent view per shard only.
package cmap
