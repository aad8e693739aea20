// Package snapshot stores rendered host trees.
//
// A snapshot is an opaque blob (usually HTML from package render, or an
// encoded mutation log) stored under a slash-separated key. DiskStore writes
// under a local directory; S3Store writes to a bucket. Open picks one from
// the project configuration:
//
//	store, err := snapshot.Open(cfg)
//	loc, err := store.Put(ctx, "counter/3.html", "text/html", html)
package snapshot
