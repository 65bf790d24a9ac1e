// Package templates loads named track templates written in CUE.
//
// A template file declares entries under the top-level "template" field:
//
//	template: voiceover: {
//		type:   "audio"
//		name:   "Voice Over"
//		volume: 90
//	}
//
// Every file is unified with the embedded #Template schema, so unknown
// fields, out-of-range heights and volumes, and missing types are rejected
// with the position of the offending value.
package templates

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/cutroom/internal/timeline"
)

//go:embed schema.cue
var schemaSource string

//go:embed builtin.cue
var builtinSource string

// LoadError is a template that failed to compile, with its CUE position.
type LoadError struct {
	Template string
	Message  string
	Pos      token.Pos
}

func (e *LoadError) Error() string {
	where := e.Template
	if where == "" {
		where = "template"
	}
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			where, e.Message)
	}
	return fmt.Sprintf("%s: %s", where, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(name string, err error) error {
	if err == nil {
		return nil
	}
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	first := errs[0]
	le := &LoadError{Template: name, Message: first.Error()}
	if positions := errors.Positions(first); len(positions) > 0 {
		le.Pos = positions[0]
	}
	return le
}

// Registry holds templates by name. Safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	templates map[string]timeline.TrackTemplate
	sources   map[string]string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		templates: make(map[string]timeline.TrackTemplate),
		sources:   make(map[string]string),
	}
}

// Builtin returns a registry holding the default templates.
func Builtin() *Registry {
	r := NewRegistry()
	if err := r.load("builtin.cue", []byte(builtinSource)); err != nil {
		panic("templates: builtin set does not compile: " + err.Error())
	}
	return r
}

// Template returns the template called name.
func (r *Registry) Template(name string) (timeline.TrackTemplate, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.templates[name]
	return t, ok
}

// Names returns the template names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.templates))
	for name := range r.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Source returns the file a template was loaded from.
func (r *Registry) Source(name string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sources[name]
}

// LoadFile compiles one CUE file into r. Later definitions of a name
// replace earlier ones. Nothing is added if the file has any error.
func (r *Registry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return r.load(path, data)
}

// LoadDir loads every *.cue file in dir, in name order.
func (r *Registry) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".cue" {
			continue
		}
		if err := r.LoadFile(filepath.Join(dir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) load(filename string, data []byte) error {
	parsed, err := Compile(filename, data)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for name, t := range parsed {
		r.templates[name] = t
		r.sources[name] = filename
	}
	return nil
}

// Compile validates CUE source against the template schema and returns
// the templates it declares.
func Compile(filename string, data []byte) (map[string]timeline.TrackTemplate, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, formatCUEError("", err)
	}

	v := ctx.CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError("", err)
	}

	unified := schema.Unify(v)
	list := unified.LookupPath(cue.ParsePath("template"))
	if !list.Exists() {
		return map[string]timeline.TrackTemplate{}, nil
	}

	iter, err := list.Fields()
	if err != nil {
		return nil, formatCUEError("", err)
	}

	out := make(map[string]timeline.TrackTemplate)
	for iter.Next() {
		name := iter.Selector().Unquoted()
		t, err := compileTemplate(name, iter.Value())
		if err != nil {
			return nil, err
		}
		out[name] = t
	}
	return out, nil
}

func compileTemplate(name string, v cue.Value) (timeline.TrackTemplate, error) {
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return timeline.TrackTemplate{}, formatCUEError(name, err)
	}

	var raw struct {
		Type   string `json:"type"`
		Name   string `json:"name"`
		Height int    `json:"height"`
		Volume int    `json:"volume"`
	}
	if err := v.Decode(&raw); err != nil {
		return timeline.TrackTemplate{}, formatCUEError(name, err)
	}

	typ := timeline.TrackType(raw.Type)
	if !typ.Valid() {
		return timeline.TrackTemplate{}, &LoadError{Template: name, Message: fmt.Sprintf("unknown track type %q", raw.Type), Pos: v.Pos()}
	}
	return timeline.TrackTemplate{
		Name:   raw.Name,
		Type:   typ,
		Height: raw.Height,
		Volume: &raw.Volume,
	}, nil
}

// Validate compiles every file without registering anything and returns
// one error per failing file.
func Validate(paths ...string) []error {
	var errs []error
	for _, p := range slices.Sorted(slices.Values(paths)) {
		data, err := os.ReadFile(p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if _, err := Compile(p, data); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}
