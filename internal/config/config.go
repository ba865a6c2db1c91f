// Package config loads Options from layered sources with predictable precedence.
//
// A Loader holds sources from lowest to highest priority; later sources overwrite earlier values key by key. Keys are the dotted yaml names of Options
// fields (ex: "fine_diff.engine"). Sources:
//   - Defaults: the values of Default.
//   - A YAML file (JSON is valid YAML). A missing file contributes nothing; an unreadable or malformed one is an error.
//   - Environment variables named PREFIX_KEY, with dots and the key upper-cased to underscores (ex: ALIGN3_FINE_DIFF_ENGINE). Values are parsed as YAML
//     scalars, so "true" and "8" become a bool and an int.
//
// Unknown keys are ignored. After all sources are applied the result is decoded into Options and validated; type mismatches and invalid values are
// errors.
//
// Example
//
//	opts, prov, err := config.New().WithDefaults().WithFile("~/.align3.yaml").WithEnv("ALIGN3").Load()
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the conventional prefix for WithEnv.
const EnvPrefix = "ALIGN3"

// Provenance says which source set a key.
type Provenance struct {
	SourceType       string // "default", "file" or "env"
	SourceIdentifier string // file path or environment variable name; "" for defaults
}

// IsSet reports whether some source set the key.
func (p Provenance) IsSet() bool {
	return p.SourceType != ""
}

// Default reports whether the key still has its default value.
func (p Provenance) Default() bool {
	return p.SourceType == "default"
}

type layer interface {
	// values returns the layer's settings keyed by dotted key. Keys the layer knows nothing about may be omitted.
	values(known []string) (map[string]any, map[string]Provenance, error)
	name() string
}

// Loader is a prioritized list of sources. The zero value is ready to use.
type Loader struct {
	layers []layer
}

// New returns an empty Loader, for chaining.
func New() *Loader {
	return &Loader{}
}

// WithDefaults adds the values of Default as the next source.
func (l *Loader) WithDefaults() *Loader {
	l.layers = append(l.layers, defaultsLayer{})
	return l
}

// WithFile adds a YAML file as the next source. path is expanded with ExpandPath and read when Load runs.
func (l *Loader) WithFile(path string) *Loader {
	l.layers = append(l.layers, fileLayer{path: path})
	return l
}

// WithEnv adds the environment variables starting with prefix + "_" as the next source.
func (l *Loader) WithEnv(prefix string) *Loader {
	l.layers = append(l.layers, envLayer{prefix: prefix})
	return l
}

// Load applies all sources in order and returns the validated Options and the provenance of every key set by a source.
func (l *Loader) Load() (Options, map[string]Provenance, error) {
	known, err := flatten(Default())
	if err != nil {
		return Options{}, nil, err
	}
	keys := make([]string, 0, len(known))
	for k := range known {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	merged := map[string]any{}
	prov := map[string]Provenance{}
	for _, ly := range l.layers {
		vals, p, err := ly.values(keys)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return Options{}, nil, fmt.Errorf("config: %s: %w", ly.name(), err)
		}
		for k, v := range vals {
			if _, ok := known[k]; !ok {
				continue
			}
			merged[k] = v
			prov[k] = p[k]
		}
	}

	var opts Options
	data, err := yaml.Marshal(nest(merged))
	if err != nil {
		return Options{}, nil, fmt.Errorf("config: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&opts); err != nil {
		return Options{}, nil, fmt.Errorf("config: %w", err)
	}
	if err := Validate(opts); err != nil {
		return Options{}, nil, err
	}
	return opts, prov, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks opts against the field constraints.
func Validate(opts Options) error {
	if err := validate.Struct(opts); err != nil {
		return fmt.Errorf("config: invalid options: %w", err)
	}
	return nil
}

type defaultsLayer struct{}

func (defaultsLayer) name() string { return "defaults" }

func (defaultsLayer) values([]string) (map[string]any, map[string]Provenance, error) {
	vals, err := flatten(Default())
	if err != nil {
		return nil, nil, err
	}
	return vals, provenanceFor(vals, Provenance{SourceType: "default"}), nil
}

type fileLayer struct {
	path string
}

func (f fileLayer) name() string { return "file " + f.path }

func (f fileLayer) values([]string) (map[string]any, map[string]Provenance, error) {
	path := ExpandPath(f.path)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil, nil
	}
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, nil, err
	}
	vals := map[string]any{}
	flattenInto(vals, "", doc)
	return vals, provenanceFor(vals, Provenance{SourceType: "file", SourceIdentifier: path}), nil
}

type envLayer struct {
	prefix string
}

func (e envLayer) name() string { return "env " + e.prefix }

// EnvName returns the environment variable that sets key under prefix.
func EnvName(prefix, key string) string {
	return prefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

func (e envLayer) values(known []string) (map[string]any, map[string]Provenance, error) {
	vals := map[string]any{}
	prov := map[string]Provenance{}
	for _, k := range known {
		name := EnvName(e.prefix, k)
		raw, ok := os.LookupEnv(name)
		if !ok || strings.TrimSpace(raw) == "" {
			continue
		}
		var v any
		if err := yaml.Unmarshal([]byte(raw), &v); err != nil {
			return nil, nil, fmt.Errorf("%s: %w", name, err)
		}
		vals[k] = v
		prov[k] = Provenance{SourceType: "env", SourceIdentifier: name}
	}
	return vals, prov, nil
}

func provenanceFor(vals map[string]any, p Provenance) map[string]Provenance {
	out := make(map[string]Provenance, len(vals))
	for k := range vals {
		out[k] = p
	}
	return out
}

// flatten turns v's YAML encoding into dotted keys.
func flatten(v any) (map[string]any, error) {
	data, err := yaml.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	out := map[string]any{}
	flattenInto(out, "", doc)
	return out, nil
}

func flattenInto(out map[string]any, prefix string, m map[string]any) {
	for k, v := range m {
		key := strings.ToLower(k)
		if prefix != "" {
			key = prefix + "." + key
		}
		if child, ok := v.(map[string]any); ok {
			flattenInto(out, key, child)
			continue
		}
		out[key] = v
	}
}

// nest is the inverse of flattenInto.
func nest(flat map[string]any) map[string]any {
	out := map[string]any{}
	for k, v := range flat {
		parts := strings.Split(k, ".")
		m := out
		for _, p := range parts[:len(parts)-1] {
			child, ok := m[p].(map[string]any)
			if !ok {
				child = map[string]any{}
				m[p] = child
			}
			m = child
		}
		m[parts[len(parts)-1]] = v
	}
	return out
}
