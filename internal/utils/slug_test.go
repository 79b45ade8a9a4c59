package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Mon Premier Article de Test", "mon-premier-article-de-test"},
		{"Rencontres à Cotonou: été 2024!", "rencontres-a-cotonou-ete-2024"},
		{"  --Déjà vu--  ", "deja-vu"},
		{"Conseils_pour_la première date", "conseils-pour-la-premiere-date"},
		{"Bénin & Diaspora", "benin-diaspora"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}

func TestReadingTime(t *testing.T) {
	assert.Equal(t, 1, ReadingTime(""))
	assert.Equal(t, 1, ReadingTime("quelques mots"))
	assert.Equal(t, 1, ReadingTime(strings.Repeat("mot ", 200)))
	assert.Equal(t, 2, ReadingTime(strings.Repeat("mot ", 201)))
	assert.Equal(t, 5, ReadingTime(strings.Repeat("mot ", 1000)))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "Bén", Truncate("Bénin", 3))
	assert.Equal(t, "abc", Truncate("abc", 10))
}
