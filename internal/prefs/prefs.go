// Package prefs models the preferences panel: typed settings with defaults,
// grouped in sections. Values live in memory; Serialize and Load convert
// them to and from text so that whatever settings store the host provides
// can keep them.
package prefs

import (
	"fmt"
	"maps"
	"slices"

	"github.com/specialistvlad/nodegraph/internal/types"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
	"go.uber.org/multierr"
)

// Keys of the settings every application defines.
const (
	ExecutionMaxDepth = "execution.max_depth"
	LogLevel          = "log.level"
	LogFormat         = "log.format"
)

// Setting describes one preference.
type Setting struct {
	Key         string
	Section     string
	Description string
	Default     cty.Value
	// Check, if set, validates a value already converted to the default's type.
	Check func(cty.Value) error
}

// Preferences holds the settings and their current values.
type Preferences struct {
	settings map[string]Setting
	order    []string
	values   map[string]cty.Value
}

// New creates an empty preferences model.
func New() *Preferences {
	return &Preferences{
		settings: make(map[string]Setting),
		values:   make(map[string]cty.Value),
	}
}

// Defaults creates a preferences model with the core settings defined.
func Defaults() *Preferences {
	p := New()
	p.MustDefine(Setting{
		Key:         ExecutionMaxDepth,
		Section:     "Execution",
		Description: "How many callable nodes one exec chain may run",
		Default:     cty.NumberIntVal(256),
		Check:       positiveInt,
	})
	p.MustDefine(Setting{
		Key:         LogLevel,
		Section:     "Logging",
		Description: "One of debug, info, warn, error",
		Default:     cty.StringVal("info"),
		Check:       oneOf("debug", "info", "warn", "error"),
	})
	p.MustDefine(Setting{
		Key:         LogFormat,
		Section:     "Logging",
		Description: "text or json",
		Default:     cty.StringVal("json"),
		Check:       oneOf("text", "json"),
	})
	return p
}

// Define adds a setting. Its default must be known, not null and pass Check.
func (p *Preferences) Define(s Setting) error {
	if _, exists := p.settings[s.Key]; exists {
		return fmt.Errorf("setting %q is already defined", s.Key)
	}
	if s.Default == cty.NilVal || s.Default.IsNull() || !s.Default.IsWhollyKnown() {
		return fmt.Errorf("setting %q needs a default value", s.Key)
	}
	if s.Check != nil {
		if err := s.Check(s.Default); err != nil {
			return fmt.Errorf("setting %q default: %w", s.Key, err)
		}
	}
	p.settings[s.Key] = s
	p.order = append(p.order, s.Key)
	return nil
}

// MustDefine is like Define but panics on error.
func (p *Preferences) MustDefine(s Setting) {
	if err := p.Define(s); err != nil {
		panic(err)
	}
}

// Settings lists the defined settings in definition order.
func (p *Preferences) Settings() []Setting {
	out := make([]Setting, 0, len(p.order))
	for _, key := range p.order {
		out = append(out, p.settings[key])
	}
	return out
}

// Sections lists the section names in order of first appearance.
func (p *Preferences) Sections() []string {
	var out []string
	for _, key := range p.order {
		if s := p.settings[key].Section; !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}

// Set changes a setting. raw may be a Go value or a cty.Value and is
// converted to the type of the setting's default.
func (p *Preferences) Set(key string, raw any) error {
	s, ok := p.settings[key]
	if !ok {
		return fmt.Errorf("unknown setting %q", key)
	}
	v, ok := raw.(cty.Value)
	if !ok {
		var err error
		if v, err = gocty.ToCtyValue(raw, s.Default.Type()); err != nil {
			return fmt.Errorf("setting %q: %w", key, err)
		}
	}
	v, err := convert.Convert(v, s.Default.Type())
	if err != nil {
		return fmt.Errorf("setting %q: %w", key, err)
	}
	if v.IsNull() {
		return fmt.Errorf("setting %q cannot be null", key)
	}
	if s.Check != nil {
		if err := s.Check(v); err != nil {
			return fmt.Errorf("setting %q: %w", key, err)
		}
	}
	p.values[key] = v
	return nil
}

// Reset restores a setting to its default.
func (p *Preferences) Reset(key string) {
	delete(p.values, key)
}

// Value returns the current value of a setting, its default if never set.
func (p *Preferences) Value(key string) (cty.Value, error) {
	s, ok := p.settings[key]
	if !ok {
		return cty.NilVal, fmt.Errorf("unknown setting %q", key)
	}
	if v, ok := p.values[key]; ok {
		return v, nil
	}
	return s.Default, nil
}

// Decode stores the current value of a setting into target.
func (p *Preferences) Decode(key string, target any) error {
	v, err := p.Value(key)
	if err != nil {
		return err
	}
	return gocty.FromCtyValue(v, target)
}

// Int returns an integer setting, or 0 if it is not one.
func (p *Preferences) Int(key string) int {
	var i int
	_ = p.Decode(key, &i)
	return i
}

// String returns a string setting, or "" if it is not one.
func (p *Preferences) String(key string) string {
	var s string
	_ = p.Decode(key, &s)
	return s
}

// Serialize renders the settings that differ from their default as
// literals, keyed by setting key.
func (p *Preferences) Serialize() map[string]string {
	out := make(map[string]string, len(p.values))
	for key, v := range p.values {
		if !v.RawEquals(p.settings[key].Default) {
			out[key] = types.Format(v)
		}
	}
	return out
}

// Load applies serialized settings. Unknown keys and invalid values are
// reported together; the valid ones are applied.
func (p *Preferences) Load(saved map[string]string) error {
	var errs error
	for _, key := range slices.Sorted(maps.Keys(saved)) {
		v, err := types.ParseLiteral(saved[key])
		if err == nil {
			err = p.Set(key, v)
		}
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("load %q: %w", key, err))
		}
	}
	return errs
}

func positiveInt(v cty.Value) error {
	var i int
	if err := gocty.FromCtyValue(v, &i); err != nil {
		return err
	}
	if i <= 0 {
		return fmt.Errorf("must be positive, got %d", i)
	}
	return nil
}

func oneOf(options ...string) func(cty.Value) error {
	return func(v cty.Value) error {
		if s := v.AsString(); !slices.Contains(options, s) {
			return fmt.Errorf("%q is not one of %v", s, options)
		}
		return nil
	}
}
