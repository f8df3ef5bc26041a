package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple name", "Acme Logistics", "acme-logistics"},
		{"punctuation", "J & B Trucking, Inc.", "j-b-trucking-inc"},
		{"extra whitespace", "  Pacific   Freight  ", "pacific-freight"},
		{"numbers", "Route 66 Carriers", "route-66-carriers"},
		{"empty", "", ""},
		{"only punctuation", "&&&", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Slugify(tt.input))
		})
	}
}
