package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeDocument(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"minimal", `{"id":"doc_1","sections":[]}`, false},
		{"full", `{"id":"doc_1","meta":{"title":"CV"},"sections":[{"id":"s1","type":"header","blocks":[]}]}`, false},
		{"numeric id", `{"id":1,"sections":[]}`, true},
		{"empty id", `{"id":"","sections":[]}`, true},
		{"missing id", `{"sections":[]}`, true},
		{"sections object", `{"id":"doc_1","sections":{}}`, true},
		{"sections null", `{"id":"doc_1","sections":null}`, true},
		{"missing sections", `{"id":"doc_1"}`, true},
		{"not json", `{{`, true},
		{"array root", `[]`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := DecodeDocument([]byte(tt.raw))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidDocument)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "doc_1", doc.ID)
		})
	}
}
