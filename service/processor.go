package service

import (
	"context"

	"github.com/tieubaoca/docproc-be/types"
)

// Default window parameters applied when the caller asks for auto chunking
// and the backend config does not override them.
const (
	DefaultAutoChunkSize    = 800
	DefaultAutoChunkOverlap = 400
)

// FileProcessor is the uniform contract every processing backend satisfies.
// A backend is long-lived and holds no per-request state, so concurrent
// Process calls against one instance are safe.
type FileProcessor interface {
	// Name identifies the backend in results and logs.
	Name() string

	// Process runs validate -> decode -> export -> optional chunk ->
	// optional embed and assembles the result. The payload must be
	// non-empty; an empty payload is a terminal input error.
	Process(ctx context.Context, req types.ProcessRequest) (*types.ProcessedContent, error)
}

// optBool reads a boolean option, dropping values of the wrong type.
func optBool(options map[string]any, key string) (bool, bool) {
	v, ok := options[key]
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// optString reads a string option, dropping values of the wrong type.
func optString(options map[string]any, key string) (string, bool) {
	v, ok := options[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// optStringSlice reads a list-of-strings option. JSON decoding produces
// []any, so both concrete forms are accepted; anything else is dropped.
func optStringSlice(options map[string]any, key string) ([]string, bool) {
	v, ok := options[key]
	if !ok {
		return nil, false
	}
	switch vv := v.(type) {
	case []string:
		return vv, true
	case []any:
		out := make([]string, 0, len(vv))
		for _, item := range vv {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}
