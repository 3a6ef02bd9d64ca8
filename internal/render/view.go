package render

import (
	"strings"

	"github.com/custodia-labs/vitae/internal/core/domain"
)

// View is the read-only projection of a document that templates consume.
// Absent fields are left empty and templates omit their element.
type View struct {
	Title    string
	Header   Header
	Sections []SectionView
	Theme    domain.Theme
}

// Header holds the contact block.
type Header struct {
	Name     string
	Headline string
	Email    string
	Phone    string
	Location string
	Links    []string
}

// IsEmpty reports whether the header has nothing to show.
func (h Header) IsEmpty() bool {
	return h.Name == "" && h.Headline == "" && h.Email == "" &&
		h.Phone == "" && h.Location == "" && len(h.Links) == 0
}

// SectionView is one visible section.
type SectionView struct {
	ID    string
	Type  string
	Title string
	Items []Item
}

// Item is one block, flattened to the fields templates know about.
type Item struct {
	Heading    string
	Subheading string
	Location   string
	Dates      string
	Text       string
	Bullets    []string
	Tags       []string
}

// Build projects doc into a View. Hidden sections are skipped; the first
// header section supplies the contact block. doc is not modified.
func Build(doc domain.Document) View {
	v := View{
		Title: doc.Meta.Title,
		Theme: doc.Theme,
	}

	headerSeen := false
	for _, s := range doc.Sections {
		if s.Hidden {
			continue
		}
		if s.Type == domain.SectionHeader && !headerSeen {
			headerSeen = true
			if len(s.Blocks) > 0 {
				v.Header = buildHeader(s.Blocks[0].Fields)
			}
			continue
		}

		sv := SectionView{ID: s.ID, Type: s.Type, Title: s.Title}
		for _, b := range s.Blocks {
			if item := buildItem(b.Fields); !item.isEmpty() {
				sv.Items = append(sv.Items, item)
			}
		}
		if len(sv.Items) > 0 {
			v.Sections = append(v.Sections, sv)
		}
	}

	if v.Title == "" {
		v.Title = v.Header.Name
	}
	return v
}

func buildHeader(f domain.Fields) Header {
	return Header{
		Name:     f.String("name"),
		Headline: f.String("headline"),
		Email:    f.String("email"),
		Phone:    f.String("phone"),
		Location: f.String("location"),
		Links:    nonEmpty(f.Strings("links")),
	}
}

func buildItem(f domain.Fields) Item {
	return Item{
		Heading:    first(f, "role", "degree", "name", "title"),
		Subheading: first(f, "company", "school", "organization", "issuer"),
		Location:   f.String("location"),
		Dates:      dateRange(f.String("start"), f.String("end")),
		Text:       first(f, "text", "summary", "description"),
		Bullets:    nonEmpty(f.Strings("highlights")),
		Tags:       nonEmpty(f.Strings("items")),
	}
}

func (i Item) isEmpty() bool {
	return i.Heading == "" && i.Subheading == "" && i.Location == "" &&
		i.Dates == "" && i.Text == "" && len(i.Bullets) == 0 && len(i.Tags) == 0
}

func first(f domain.Fields, keys ...string) string {
	for _, k := range keys {
		if s := strings.TrimSpace(f.String(k)); s != "" {
			return s
		}
	}
	return ""
}

func dateRange(start, end string) string {
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	switch {
	case start != "" && end != "":
		return start + " – " + end
	case start != "":
		return start
	default:
		return end
	}
}

func nonEmpty(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
