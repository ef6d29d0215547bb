// Package resolver turns a video plan with unresolved images into a
// render-ready plan.
//
// Resolver.Resolve works on a private copy of the plan. For each scene it
// extracts image requirements, runs the asset coordinator (one generation
// call at a time), injects the generated URLs and checks readiness. Scenes
// resolve in order by default; a scene concurrency above one lets several
// scenes run at once while generation inside each scene stays sequential.
//
// Per-asset failures never fail a resolution. Callers decide whether a plan
// with missing images is acceptable by inspecting Result or by running
// assets.CheckPlan on Result.Plan. The only error Resolve returns is context
// cancellation, together with the scenes resolved before it.
package resolver
