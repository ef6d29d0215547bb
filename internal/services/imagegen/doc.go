// Package imagegen is the HTTP client for the asset generation service.
//
// The service accepts one JSON request per asset
//
//	{"assetId": "...", "description": "...", "width": 1024, "height": 1024, "style": "photorealistic"}
//
// and answers with {"url": "..."}. Client implements assets.Generator so the
// coordinator can drive it directly.
//
// # Retry Behaviour
//
// The client retries on HTTP 408/429/5xx errors and network timeouts with
// exponential backoff (base 1s, max 10s, 3 attempts by default), honouring
// Retry-After. Context cancellation aborts retries immediately. Errors are
// tagged with services markers: ErrTimeout for timeouts, ErrValidation for a
// rejected request, ErrExternalService otherwise.
package imagegen
