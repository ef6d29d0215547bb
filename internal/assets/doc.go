// Package assets resolves the image content a plan still needs.
//
// The pipeline per scene is:
//
//   - Extract: find image elements without a usable source and turn each into
//     a Requirement (prompt, size, style).
//   - Coordinator.Run: call the Generator once per requirement, strictly in
//     order, tracking each asset through pending, generating, ready or error.
//     A failed asset is recorded and skipped; it never aborts the batch.
//   - Inject: copy generated URLs into the matching elements, returning new
//     elements and leaving the input untouched.
//   - Check: confirm every image element now carries a well-formed source.
//
// Check is also usable on its own for plans loaded from storage.
package assets
