// Package preload downloads resolved asset URLs into a local cache.
//
// Preloading is best effort. Downloads run in parallel up to a configured
// limit; a failed download is logged with event_type=preload_failed and
// reported in the returned entries but never turned into an error. Cache
// files are named after the SHA-256 of the URL so repeated runs skip work
// already done.
package preload
