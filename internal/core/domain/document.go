package domain

import (
	"reflect"
	"time"
)

// Template selects one of the visual resume templates.
type Template string

// Available templates.
const (
	// TemplateClassic is a single-column layout with serif headings.
	TemplateClassic Template = "classic"

	// TemplateModern is an accent-coloured layout with an optional sidebar.
	TemplateModern Template = "modern"

	// DefaultTemplate is used when nothing else has been selected.
	DefaultTemplate = TemplateClassic
)

// IsValid returns true if the template is recognised.
func (t Template) IsValid() bool {
	switch t {
	case TemplateClassic, TemplateModern:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (t Template) String() string {
	return string(t)
}

// AllTemplates returns every available template.
func AllTemplates() []Template {
	return []Template{TemplateClassic, TemplateModern}
}

// Well-known section types. The model does not enforce uniqueness;
// renderers locate content by these tags.
const (
	SectionHeader     = "header"
	SectionSummary    = "summary"
	SectionExperience = "experience"
	SectionEducation  = "education"
	SectionSkills     = "skills"
)

// Document is the root resume aggregate.
type Document struct {
	// ID is assigned at creation and never reassigned.
	ID string `json:"id" yaml:"id"`

	// Meta holds the title and timestamps.
	Meta Meta `json:"meta" yaml:"meta"`

	// Theme is the nested visual configuration.
	Theme Theme `json:"theme" yaml:"theme"`

	// Sections is ordered; order is meaningful for rendering.
	Sections []Section `json:"sections" yaml:"sections"`
}

// Meta holds document-level metadata.
type Meta struct {
	// Title is the human-readable document title.
	Title string `json:"title" yaml:"title"`

	// CreatedAt is immutable after creation.
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`

	// UpdatedAt is recomputed on every committed mutation.
	UpdatedAt time.Time `json:"updatedAt" yaml:"updatedAt"`
}

// Section is a named, typed group of blocks.
type Section struct {
	ID     string  `json:"id" yaml:"id"`
	Type   string  `json:"type" yaml:"type"`
	Title  string  `json:"title" yaml:"title"`
	Blocks []Block `json:"blocks" yaml:"blocks"`
	Hidden bool    `json:"hidden,omitempty" yaml:"hidden,omitempty"`
}

// Block is a typed leaf record of arbitrary fields.
type Block struct {
	ID     string `json:"id" yaml:"id"`
	Type   string `json:"type" yaml:"type"`
	Fields Fields `json:"fields" yaml:"fields"`
}

// Fields is an open record whose shape is determined by the block type.
// Values are JSON-like: string, number, bool, []string, []any, map[string]any.
type Fields map[string]any

// Clone returns a deep copy of the document. Mutating the copy never
// affects the receiver.
func (d Document) Clone() Document {
	out := d
	if d.Sections != nil {
		out.Sections = make([]Section, len(d.Sections))
		for i := range d.Sections {
			out.Sections[i] = d.Sections[i].Clone()
		}
	}
	return out
}

// Clone returns a deep copy of the section.
func (s Section) Clone() Section {
	out := s
	if s.Blocks != nil {
		out.Blocks = make([]Block, len(s.Blocks))
		for i := range s.Blocks {
			out.Blocks[i] = s.Blocks[i].Clone()
		}
	}
	return out
}

// Clone returns a deep copy of the block.
func (b Block) Clone() Block {
	out := b
	out.Fields = b.Fields.Clone()
	return out
}

// Clone returns a deep copy of the fields.
func (f Fields) Clone() Fields {
	if f == nil {
		return nil
	}
	return Fields(cloneMap(f))
}

// SectionIndex returns the index of the section with the given id, or -1.
func (d *Document) SectionIndex(id string) int {
	for i := range d.Sections {
		if d.Sections[i].ID == id {
			return i
		}
	}
	return -1
}

// SectionByType returns the first section of the given type.
func (d *Document) SectionByType(sectionType string) (*Section, bool) {
	for i := range d.Sections {
		if d.Sections[i].Type == sectionType {
			return &d.Sections[i], true
		}
	}
	return nil, false
}

// BlockIndex returns the index of the block with the given id, or -1.
func (s *Section) BlockIndex(id string) int {
	for i := range s.Blocks {
		if s.Blocks[i].ID == id {
			return i
		}
	}
	return -1
}

// String returns the field as a string, or "" when absent or not a string.
func (f Fields) String(key string) string {
	if s, ok := f[key].(string); ok {
		return s
	}
	return ""
}

// Strings returns the field as a string slice. Both []string and []any
// holding strings are accepted; anything else yields nil.
func (f Fields) Strings(key string) []string {
	switch v := f[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return cloneMap(val)
	case Fields:
		return Fields(cloneMap(val))
	case []any:
		out := make([]any, len(val))
		for i := range val {
			out[i] = cloneValue(val[i])
		}
		return out
	case []string:
		out := make([]string, len(val))
		copy(out, val)
		return out
	case []map[string]any:
		out := make([]map[string]any, len(val))
		for i := range val {
			out[i] = cloneMap(val[i])
		}
		return out
	case nil, string, bool, float64, int:
		return v
	default:
		return cloneReflect(reflect.ValueOf(v)).Interface()
	}
}

// cloneReflect deep-copies maps, slices, arrays, pointers and interfaces
// of any element type. Other kinds are values already and are returned
// as is. Structs reached through a pointer are copied shallowly.
func cloneReflect(v reflect.Value) reflect.Value {
	switch v.Kind() {
	case reflect.Invalid:
		return v
	case reflect.Map:
		if v.IsNil() {
			return v
		}
		out := reflect.MakeMapWithSize(v.Type(), v.Len())
		iter := v.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), cloneReflect(iter.Value()))
		}
		return out
	case reflect.Slice:
		if v.IsNil() {
			return v
		}
		out := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := 0; i < v.Len(); i++ {
			out.Index(i).Set(cloneReflect(v.Index(i)))
		}
		return out
	case reflect.Array:
		out := reflect.New(v.Type()).Elem()
		for i := 0; i < v.Len(); i++ {
			out.Index(i).Set(cloneReflect(v.Index(i)))
		}
		return out
	case reflect.Pointer:
		if v.IsNil() {
			return v
		}
		out := reflect.New(v.Type().Elem())
		out.Elem().Set(cloneReflect(v.Elem()))
		return out
	case reflect.Interface:
		if v.IsNil() {
			return v
		}
		out := reflect.New(v.Type()).Elem()
		out.Set(cloneReflect(v.Elem()))
		return out
	default:
		return v
	}
}
