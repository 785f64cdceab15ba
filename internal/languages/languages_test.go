package languages

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoriesSortedAndDistinct(t *testing.T) {
	cats := Categories()
	assert.True(t, sort.StringsAreSorted(cats))
	assert.Equal(t, []string{
		"African",
		"East Asian",
		"European",
		"Latin American",
		"Middle Eastern",
		"South Asian",
		"Southeast Asian",
	}, cats)
}

func TestByCategory(t *testing.T) {
	european := ByCategory("European")
	require.NotEmpty(t, european)
	assert.Equal(t, "en", european[0].Code)

	var fr *Language
	for i := range european {
		if european[i].Code == "fr" {
			fr = &european[i]
		}
	}
	require.NotNil(t, fr)
	assert.Equal(t, "French", fr.Name)
	assert.Equal(t, "Français", fr.NativeName)

	assert.Empty(t, ByCategory("Antarctic"))
}

func TestEveryEntryBelongsToOneCategory(t *testing.T) {
	total := 0
	for _, c := range Categories() {
		total += len(ByCategory(c))
	}
	assert.Equal(t, len(All()), total)
	assert.Len(t, All(), 55)
}

func TestCodesAreValidTags(t *testing.T) {
	for _, l := range All() {
		_, err := l.Tag()
		assert.NoError(t, err, l.Code)
	}
}

func TestLookup(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"fr", "French", true},
		{"PT-br", "Brazilian Portuguese", true},
		{"french", "French", true},
		{"Français", "French", true},
		{"es-419", "Latin American Spanish", true},
		{"xx", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			l, ok := Resolve(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, l.Name)
		})
	}
}

func TestGrouped(t *testing.T) {
	groups := Grouped()
	require.Len(t, groups, len(Categories()))
	assert.Equal(t, "African", groups[0].Category)
	assert.Equal(t, "sw", groups[0].Languages[0].Code)
}
