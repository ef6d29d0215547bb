package services

import "context"

type contextKey string

const (
	runIDKey      contextKey = "run_id"
	planIDKey     contextKey = "plan_id"
	sceneIndexKey contextKey = "scene_index"
	assetIDKey    contextKey = "asset_id"
)

// WithRunID annotates context with the resolution run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the resolution run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithPlanID annotates context with the plan identifier.
func WithPlanID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, planIDKey, id)
}

// PlanIDFromContext returns the plan identifier if present.
func PlanIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(planIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithSceneIndex annotates context with the 0-based scene index.
func WithSceneIndex(ctx context.Context, index int) context.Context {
	if index < 0 {
		return ctx
	}
	return context.WithValue(ctx, sceneIndexKey, index)
}

// SceneIndexFromContext returns the scene index if present.
func SceneIndexFromContext(ctx context.Context) (int, bool) {
	v, ok := ctx.Value(sceneIndexKey).(int)
	return v, ok
}

// WithAssetID annotates context with the asset (element) identifier.
func WithAssetID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, assetIDKey, id)
}

// AssetIDFromContext returns the asset identifier if present.
func AssetIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(assetIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
