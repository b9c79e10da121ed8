package service

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pageza/recipegen/backend/internal/types"
)

const (
	DefaultPrepTime = "30 minutes"
	DefaultServings = 2
	DefaultStep     = "Mix all ingredients and cook"
)

// Normalize maps an upstream webhook body of unknown shape onto the fixed
// recipe record. Fields are looked up under their primary name first, then
// their alternate name, then fall back to a constant. A value counts as present
// only when it is truthy: nil, "", false, 0 and NaN are treated as absent.
func Normalize(body map[string]interface{}, diet string) types.GeneratedRecipe {
	return types.GeneratedRecipe{
		Title:    normalizeTitle(body, diet),
		PrepTime: normalizeText(firstPresent(body, "prep_time", "cooking_time"), DefaultPrepTime),
		Servings: normalizeServings(body),
		Steps:    normalizeSteps(firstPresent(body, "steps", "instructions")),
	}
}

// RootObject picks the mapping to normalise from a decoded webhook body.
// Array bodies yield their first object element; other shapes yield an empty
// mapping so every field takes its default.
func RootObject(decoded interface{}) map[string]interface{} {
	switch v := decoded.(type) {
	case map[string]interface{}:
		return v
	case []interface{}:
		for _, item := range v {
			if obj, ok := item.(map[string]interface{}); ok {
				return obj
			}
		}
	}
	return map[string]interface{}{}
}

func normalizeTitle(body map[string]interface{}, diet string) string {
	if title := normalizeText(firstPresent(body, "title"), ""); title != "" {
		return title
	}
	return fmt.Sprintf("Custom %s Recipe", diet)
}

func normalizeText(v interface{}, fallback string) string {
	if v == nil {
		return fallback
	}
	if s := stringify(v); s != "" {
		return s
	}
	return fallback
}

func normalizeServings(body map[string]interface{}) int {
	for _, key := range []string{"servings", "yield"} {
		if n, ok := toNumber(body[key]); ok && n >= 1 && n <= types.MaxServings {
			return int(n)
		}
	}
	return DefaultServings
}

func normalizeSteps(v interface{}) []string {
	switch steps := v.(type) {
	case nil:
		return []string{DefaultStep}
	case []interface{}:
		out := make([]string, 0, len(steps))
		for _, step := range steps {
			if step == nil {
				continue
			}
			if s := strings.TrimSpace(stringify(step)); s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		return splitLines(steps)
	default:
		return []string{stringify(steps)}
	}
}

func splitLines(s string) []string {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// firstPresent returns the first truthy value stored under keys
func firstPresent(body map[string]interface{}, keys ...string) interface{} {
	for _, key := range keys {
		if v, ok := body[key]; ok && truthy(v) {
			return v
		}
	}
	return nil
}

func truthy(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	case float64:
		return t != 0 && !math.IsNaN(t)
	case json.Number:
		f, err := t.Float64()
		return err == nil && f != 0
	default:
		return true
	}
}

// toNumber coerces numeric-looking values. Strings must parse entirely as a
// number after trimming; booleans count as 0 or 1.
func toNumber(v interface{}) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	case bool:
		if t {
			f = 1
		}
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}
