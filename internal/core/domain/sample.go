package domain

import "time"

// IDFunc produces a fresh identifier with the given prefix.
type IDFunc func(prefix string) string

// SampleDocument materialises the built-in sample resume with fresh ids
// from newID and both timestamps set to now.
func SampleDocument(newID IDFunc, now time.Time) Document {
	section := func(sectionType, title string, blocks ...Block) Section {
		return Section{
			ID:     newID(sectionType),
			Type:   sectionType,
			Title:  title,
			Blocks: blocks,
		}
	}
	block := func(blockType string, fields Fields) Block {
		return Block{ID: newID(blockType), Type: blockType, Fields: fields}
	}

	return Document{
		ID: newID("doc"),
		Meta: Meta{
			Title:     "My Resume",
			CreatedAt: now,
			UpdatedAt: now,
		},
		Theme: DefaultTheme(),
		Sections: []Section{
			section(SectionHeader, "Header", block(SectionHeader, Fields{
				"name":     "Alex Morgan",
				"headline": "Senior Software Engineer",
				"email":    "alex.morgan@example.com",
				"phone":    "+1 555 0100",
				"location": "Berlin, Germany",
				"links":    []any{"github.com/alexmorgan", "linkedin.com/in/alexmorgan"},
			})),
			section(SectionSummary, "Summary", block(SectionSummary, Fields{
				"text": "Backend engineer with eight years of experience building " +
					"reliable distributed systems and developer tooling.",
			})),
			section(SectionExperience, "Experience",
				block(SectionExperience, Fields{
					"role":     "Senior Software Engineer",
					"company":  "Northwind Labs",
					"location": "Berlin",
					"start":    "2021-03",
					"end":      "Present",
					"highlights": []any{
						"Led the migration of the billing platform to event sourcing",
						"Cut p99 checkout latency by 40% through query batching",
					},
				}),
				block(SectionExperience, Fields{
					"role":     "Software Engineer",
					"company":  "Contoso",
					"location": "Remote",
					"start":    "2017-06",
					"end":      "2021-02",
					"highlights": []any{
						"Built the internal deployment CLI used by 200 engineers",
					},
				}),
			),
			section(SectionEducation, "Education", block(SectionEducation, Fields{
				"degree": "B.Sc. Computer Science",
				"school": "Technical University of Munich",
				"start":  "2013",
				"end":    "2017",
			})),
			section(SectionSkills, "Skills", block(SectionSkills, Fields{
				"items": []any{"Go", "PostgreSQL", "Kubernetes", "gRPC", "Terraform"},
			})),
		},
	}
}
