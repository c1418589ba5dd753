package convergence

import "context"

type diagTagsContextKey struct{}

// WithTags attaches operator tags to the context. Every diagnostic produced
// under the returned context carries the combined tag set, which lets callers
// correlate diagnostics with the pipeline stage or request that triggered
// them.
func WithTags(ctx context.Context, tags ...string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(tags) == 0 {
		return ctx
	}

	existing := tagsFromContext(ctx)
	combined := dedupeStrings(append(existing, tags...))
	if len(combined) == 0 {
		return ctx
	}

	return context.WithValue(ctx, diagTagsContextKey{}, combined)
}

func tagsFromContext(ctx context.Context) []string {
	if ctx == nil {
		return nil
	}
	if tags, ok := ctx.Value(diagTagsContextKey{}).([]string); ok {
		return append([]string(nil), tags...)
	}
	return nil
}

func dedupeStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
