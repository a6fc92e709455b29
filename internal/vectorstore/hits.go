package vectorstore

import (
	"encoding/json"
	"fmt"

	"github.com/jonathan/talent-search/internal/types"
)

// NormalizeHits converts the result shapes produced by different similarity
// backends into SemanticHits. Supported shapes:
//
//	types.SemanticHit / *types.SemanticHit
//	map[string]any with "id" (or "candidate_id") and "score" (or "similarity")
//	[]any{id, score}
//	string id (score 0)
//
// Entries without a usable id are skipped; scores are clamped to [0, 1].
func NormalizeHits(raw []any) []types.SemanticHit {
	out := make([]types.SemanticHit, 0, len(raw))
	for _, item := range raw {
		hit, ok := toHit(item)
		if !ok || hit.ID == "" {
			continue
		}
		hit.Score = clamp01(hit.Score)
		out = append(out, hit)
	}
	return out
}

func toHit(item any) (types.SemanticHit, bool) {
	switch v := item.(type) {
	case types.SemanticHit:
		return v, true
	case *types.SemanticHit:
		if v == nil {
			return types.SemanticHit{}, false
		}
		return *v, true
	case string:
		return types.SemanticHit{ID: v}, true
	case map[string]any:
		id, ok := idOf(firstOf(v, "id", "candidate_id"))
		if !ok {
			return types.SemanticHit{}, false
		}
		score, _ := number(firstOf(v, "score", "similarity"))
		return types.SemanticHit{ID: id, Score: score}, true
	case []any:
		if len(v) == 0 {
			return types.SemanticHit{}, false
		}
		id, ok := idOf(v[0])
		if !ok {
			return types.SemanticHit{}, false
		}
		var score float64
		if len(v) > 1 {
			score, _ = number(v[1])
		}
		return types.SemanticHit{ID: id, Score: score}, true
	default:
		return types.SemanticHit{}, false
	}
}

func firstOf(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			return v
		}
	}
	return nil
}

func idOf(v any) (string, bool) {
	switch id := v.(type) {
	case string:
		return id, id != ""
	case fmt.Stringer:
		return id.String(), true
	case int, int64, float64, json.Number:
		return fmt.Sprint(id), true
	default:
		return "", false
	}
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
