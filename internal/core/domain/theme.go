package domain

// Paper is the page size used for rendering and export.
type Paper string

// Supported paper sizes.
const (
	PaperA4     Paper = "A4"
	PaperLetter Paper = "Letter"
)

// IsValid returns true if the paper size is recognised.
func (p Paper) IsValid() bool {
	return p == PaperA4 || p == PaperLetter
}

// Theme is the nested visual configuration of a document.
type Theme struct {
	FontFamily string  `json:"fontFamily" yaml:"fontFamily"`
	FontScale  float64 `json:"fontScale" yaml:"fontScale"`
	Colors     Colors  `json:"colors" yaml:"colors"`
	Spacing    Spacing `json:"spacing" yaml:"spacing"`
	Layout     Layout  `json:"layout" yaml:"layout"`
}

// Colors holds the theme palette.
type Colors struct {
	Primary string `json:"primary" yaml:"primary"`
	Accent  string `json:"accent" yaml:"accent"`
	Muted   string `json:"muted" yaml:"muted"`
}

// Spacing holds vertical rhythm in pixels.
type Spacing struct {
	SectionY int `json:"sectionY" yaml:"sectionY"`
	ItemY    int `json:"itemY" yaml:"itemY"`
}

// Layout holds page-level layout options.
type Layout struct {
	Paper     Paper `json:"paper" yaml:"paper"`
	Columns   int   `json:"columns" yaml:"columns"`
	Gutter    int   `json:"gutter" yaml:"gutter"`
	ShowIcons bool  `json:"showIcons" yaml:"showIcons"`
}

// DefaultTheme returns the theme used by the built-in sample.
func DefaultTheme() Theme {
	return Theme{
		FontFamily: "Inter",
		FontScale:  1,
		Colors: Colors{
			Primary: "#111827",
			Accent:  "#2563eb",
			Muted:   "#6b7280",
		},
		Spacing: Spacing{
			SectionY: 16,
			ItemY:    8,
		},
		Layout: Layout{
			Paper:     PaperA4,
			Columns:   1,
			Gutter:    24,
			ShowIcons: true,
		},
	}
}

// ThemePatch is a partial theme update. Nil fields are left untouched.
type ThemePatch struct {
	FontFamily *string       `json:"fontFamily,omitempty" yaml:"fontFamily,omitempty"`
	FontScale  *float64      `json:"fontScale,omitempty" yaml:"fontScale,omitempty"`
	Colors     *ColorsPatch  `json:"colors,omitempty" yaml:"colors,omitempty"`
	Spacing    *SpacingPatch `json:"spacing,omitempty" yaml:"spacing,omitempty"`
	Layout     *LayoutPatch  `json:"layout,omitempty" yaml:"layout,omitempty"`
}

// ColorsPatch is a partial update of Colors.
type ColorsPatch struct {
	Primary *string `json:"primary,omitempty" yaml:"primary,omitempty"`
	Accent  *string `json:"accent,omitempty" yaml:"accent,omitempty"`
	Muted   *string `json:"muted,omitempty" yaml:"muted,omitempty"`
}

// SpacingPatch is a partial update of Spacing.
type SpacingPatch struct {
	SectionY *int `json:"sectionY,omitempty" yaml:"sectionY,omitempty"`
	ItemY    *int `json:"itemY,omitempty" yaml:"itemY,omitempty"`
}

// LayoutPatch is a partial update of Layout.
type LayoutPatch struct {
	Paper     *Paper `json:"paper,omitempty" yaml:"paper,omitempty"`
	Columns   *int   `json:"columns,omitempty" yaml:"columns,omitempty"`
	Gutter    *int   `json:"gutter,omitempty" yaml:"gutter,omitempty"`
	ShowIcons *bool  `json:"showIcons,omitempty" yaml:"showIcons,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p ThemePatch) IsEmpty() bool {
	return p.FontFamily == nil && p.FontScale == nil &&
		p.Colors == nil && p.Spacing == nil && p.Layout == nil
}

// Apply merges the patch into t and returns the result. Each nested group
// is merged shallowly and independently; omitted keys keep prior values.
func (t Theme) Apply(p ThemePatch) Theme {
	out := t
	if p.FontFamily != nil {
		out.FontFamily = *p.FontFamily
	}
	if p.FontScale != nil {
		out.FontScale = *p.FontScale
	}
	if c := p.Colors; c != nil {
		setIfPresent(&out.Colors.Primary, c.Primary)
		setIfPresent(&out.Colors.Accent, c.Accent)
		setIfPresent(&out.Colors.Muted, c.Muted)
	}
	if s := p.Spacing; s != nil {
		setIfPresent(&out.Spacing.SectionY, s.SectionY)
		setIfPresent(&out.Spacing.ItemY, s.ItemY)
	}
	if l := p.Layout; l != nil {
		setIfPresent(&out.Layout.Paper, l.Paper)
		setIfPresent(&out.Layout.Columns, l.Columns)
		setIfPresent(&out.Layout.Gutter, l.Gutter)
		setIfPresent(&out.Layout.ShowIcons, l.ShowIcons)
	}
	return out
}

func setIfPresent[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
