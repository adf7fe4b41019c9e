// Package cache provides a Redis-backed response cache for the review
// tracking API with ETag support for conditional requests.
//
// JSON list responses (asset pages, review infos) are cached under a key
// derived from the endpoint path and query, with the TTL taken from the
// server's Expires header. A cached entry with an ETag or Last-Modified
// value lets the client issue a conditional request and serve the cached
// body on 304 Not Modified. Thumbnail payloads are never cached.
package cache
