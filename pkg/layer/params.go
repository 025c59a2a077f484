package layer

import (
	"context"
	"maps"
	"slices"
	"strings"

	"github.com/matst80/slask-seo/pkg/types"
)

// MultipleFiltersDelimiter separates the selected values of one filter.
const MultipleFiltersDelimiter = ","

// Params maps a filter attribute key to its (possibly multi-valued) value.
type Params map[string]string

type Pair struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type Pairs []Pair

// Params converts the pairs back to a map.
func (p Pairs) Params() Params {
	result := make(Params, len(p))
	for _, pair := range p {
		result[pair.Key] = pair.Value
	}
	return result
}

// Sorted returns the params as pairs ordered by key.
func (p Params) Sorted() Pairs {
	keys := slices.Sorted(maps.Keys(p))
	result := make(Pairs, 0, len(keys))
	for _, key := range keys {
		result = append(result, Pair{Key: key, Value: p[key]})
	}
	return result
}

func (p Params) Clone() Params {
	if p == nil {
		return Params{}
	}
	return maps.Clone(p)
}

// Merge applies overlay on top of current and returns the result sorted by key.
// Unset overlay values remove the key, current is never modified.
func Merge(current Params, overlay types.Overlay) Pairs {
	if len(overlay) == 0 {
		return current.Sorted()
	}
	return Params(overlay.Apply(current)).Sorted()
}

type contextKey struct{}

var paramsKey contextKey

// WithParams stores the layer params of the current request in ctx.
func WithParams(ctx context.Context, params Params) context.Context {
	return context.WithValue(ctx, paramsKey, params.Clone())
}

// FromContext returns a copy of the layer params stored in ctx, never nil.
func FromContext(ctx context.Context) Params {
	if ctx == nil {
		return Params{}
	}
	params, ok := ctx.Value(paramsKey).(Params)
	if !ok {
		return Params{}
	}
	return params.Clone()
}

func SplitValues(value string) []string {
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, MultipleFiltersDelimiter)
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			result = append(result, part)
		}
	}
	return result
}

func JoinValues(values []string) string {
	return strings.Join(values, MultipleFiltersDelimiter)
}

// Toggle builds the overlay that adds value to key when it is not selected and
// removes it when it is. Removing the last value unsets the key.
func Toggle(current Params, key, value string) types.Overlay {
	values := SplitValues(current[key])
	idx := slices.Index(values, value)
	if idx == -1 {
		values = append(values, value)
	} else {
		values = slices.Delete(values, idx, idx+1)
	}
	if len(values) == 0 {
		return types.Overlay{key: types.Unset()}
	}
	return types.Overlay{key: types.Set(JoinValues(values))}
}
