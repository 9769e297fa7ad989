package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

var (
	ErrMissingKey = errors.New("config: missing key")
	ErrType       = errors.New("config: value has wrong type")
	ErrFormat     = errors.New("config: unsupported file format")
)

// Format selects the text encoding of a dictionary file.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatOf guesses the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	}
	return "", fmt.Errorf("%w: %s", ErrFormat, path)
}

// Dict is a named key-value dictionary with lookup-with-default accessors.
// Nested maps are exposed as sub-dictionaries.
type Dict struct {
	name    string
	entries map[string]any
}

func NewDict(name string, entries map[string]any) *Dict {
	if entries == nil {
		entries = make(map[string]any)
	}
	return &Dict{name: name, entries: entries}
}

func Empty(name string) *Dict {
	return NewDict(name, nil)
}

// Parse decodes a dictionary from raw bytes.
func Parse(name string, data []byte, format Format) (*Dict, error) {
	entries := make(map[string]any)
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", name, err)
		}
	case FormatTOML:
		if _, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&entries); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", name, err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrFormat, format)
	}
	return NewDict(name, entries), nil
}

// Load reads a YAML or TOML dictionary file.
func Load(path string) (*Dict, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(filepath.Base(path), data, format)
}

func (d *Dict) Name() string { return d.name }

func (d *Dict) Keys() []string {
	keys := make([]string, 0, len(d.entries))
	for k := range d.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (d *Dict) Set(key string, value any) *Dict {
	d.entries[key] = value
	return d
}

// Merge copies every entry of other into d, overwriting existing keys.
func (d *Dict) Merge(other *Dict) *Dict {
	if other == nil {
		return d
	}
	for k, v := range other.entries {
		d.entries[k] = v
	}
	return d
}

func (d *Dict) Has(key string, aliases ...string) bool {
	_, _, ok := d.lookup(key, aliases)
	return ok
}

// Lookup returns the raw value stored under key or the first present alias.
func (d *Dict) Lookup(key string, aliases ...string) (any, bool) {
	v, _, ok := d.lookup(key, aliases)
	return v, ok
}

func (d *Dict) lookup(key string, aliases []string) (any, string, bool) {
	if d == nil {
		return nil, "", false
	}
	if v, ok := d.entries[key]; ok {
		return v, key, true
	}
	for _, a := range aliases {
		if v, ok := d.entries[a]; ok {
			return v, a, true
		}
	}
	return nil, "", false
}

// Float returns the number under key, or def when absent or not numeric.
func (d *Dict) Float(key string, def float64, aliases ...string) float64 {
	v, ok := d.Lookup(key, aliases...)
	if !ok {
		return def
	}
	f, ok := toFloat(v)
	if !ok {
		return def
	}
	return f
}

func (d *Dict) Int(key string, def int, aliases ...string) int {
	v, ok := d.Lookup(key, aliases...)
	if !ok {
		return def
	}
	f, ok := toFloat(v)
	if !ok {
		return def
	}
	return int(f)
}

func (d *Dict) Bool(key string, def bool, aliases ...string) bool {
	v, ok := d.Lookup(key, aliases...)
	if !ok {
		return def
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		switch strings.ToLower(b) {
		case "true", "yes", "on":
			return true
		case "false", "no", "off":
			return false
		}
	}
	return def
}

func (d *Dict) String(key string, def string, aliases ...string) string {
	v, ok := d.Lookup(key, aliases...)
	if !ok {
		return def
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Floats returns n values for key. A scalar entry is applied to every
// component; a list shorter than n is padded with its last element.
func (d *Dict) Floats(key string, n int, def float64, aliases ...string) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = def
	}
	v, ok := d.Lookup(key, aliases...)
	if !ok {
		return out
	}
	if f, ok := toFloat(v); ok {
		for i := range out {
			out[i] = f
		}
		return out
	}
	list, ok := toFloatList(v)
	if !ok || len(list) == 0 {
		return out
	}
	for i := range out {
		if i < len(list) {
			out[i] = list[i]
		} else {
			out[i] = list[len(list)-1]
		}
	}
	return out
}

// FloatList returns the list under key with its own length, or def.
func (d *Dict) FloatList(key string, def []float64, aliases ...string) []float64 {
	v, ok := d.Lookup(key, aliases...)
	if !ok {
		return def
	}
	if f, ok := toFloat(v); ok {
		return []float64{f}
	}
	list, ok := toFloatList(v)
	if !ok {
		return def
	}
	return list
}

// RequireFloat is Float without a default.
func (d *Dict) RequireFloat(key string, aliases ...string) (float64, error) {
	v, found, ok := d.lookup(key, aliases)
	if !ok {
		return 0, fmt.Errorf("%w: %s in %s", ErrMissingKey, key, d.name)
	}
	f, ok := toFloat(v)
	if !ok {
		return 0, fmt.Errorf("%w: %s in %s is %T", ErrType, found, d.name, v)
	}
	return f, nil
}

// Sub returns the nested dictionary under key. Missing keys yield an empty
// dictionary so callers can keep using defaults.
func (d *Dict) Sub(key string) *Dict {
	name := key
	if d != nil && d.name != "" {
		name = d.name + "." + key
	}
	v, ok := d.Lookup(key)
	if !ok {
		return Empty(name)
	}
	if m, ok := toMap(v); ok {
		return NewDict(name, m)
	}
	return Empty(name)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

func toFloatList(v any) ([]float64, bool) {
	switch l := v.(type) {
	case []float64:
		return append([]float64(nil), l...), true
	case []any:
		out := make([]float64, 0, len(l))
		for _, e := range l {
			f, ok := toFloat(e)
			if !ok {
				return nil, false
			}
			out = append(out, f)
		}
		return out, true
	}
	return nil, false
}

func toMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, e := range m {
			out[fmt.Sprint(k)] = e
		}
		return out, true
	case *Dict:
		return m.entries, true
	}
	return nil, false
}
