// Package loader fetches the locality tree document.
//
// A source is either an http(s) URL or a local path. URLs ending in "/"
// and local directories are resolved against the resource path
// ([DefaultResource] unless configured). Remote sources are fetched with a
// single GET carrying "Accept: application/json"; anything but a 200
// response is an error and nothing is retried.
//
//	l := loader.New(loader.Options{Cache: c, TTL: cache.DefaultTTL, Logger: logger})
//	root, err := l.Load(ctx, "http://localhost:8000/")
//
// Errors carry codes from [github.com/matzehuels/localitree/pkg/errors]:
// HTTP_STATUS for non-200 responses, NETWORK_ERROR for transport
// failures, TIMEOUT when the context deadline or client timeout expires
// and NOT_FOUND for missing local files.
package loader
