package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Hello World", "hello-world"},
		{"  Hello,   World!  ", "hello-world"},
		{"Crème Brûlée for 2", "creme-brulee-for-2"},
		{"Ångström über Café", "angstrom-uber-cafe"},
		{"already-a-slug", "already-a-slug"},
		{"--dashes--everywhere--", "dashes-everywhere"},
		{"Привет", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.title))
		})
	}
}

func TestSlugify_Truncates(t *testing.T) {
	got := Slugify(strings.Repeat("word ", 50))
	assert.LessOrEqual(t, len(got), maxSlugLen)
	assert.False(t, strings.HasSuffix(got, "-"))
}

func TestSlugFor_FallsBackToID(t *testing.T) {
	assert.Equal(t, "3f2a9c1e", slugFor("!!!", "3f2a9c1e-0000-4000-8000-000000000000"))
	assert.Equal(t, "hello", slugFor("Hello", "ignored"))
}
