package product_test

import (
	"testing"

	"github.com/arthur-debert/simctl/pkg/product"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTryParse(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		wantOK     bool
		wantName   string
		wantVer    string
		wantRev    string
		wantLabel  string
		standalone bool
	}{
		{
			name:       "standalone product",
			path:       "/repo/Sitecore 8.2 rev. 161221.zip",
			wantOK:     true,
			wantName:   "Sitecore",
			wantVer:    "8.2",
			wantRev:    "161221",
			standalone: true,
		},
		{
			name:       "multi word standalone name",
			path:       "Sitecore CMS 6.5.0 rev. 120427.zip",
			wantOK:     true,
			wantName:   "Sitecore CMS",
			wantVer:    "6.5.0",
			wantRev:    "120427",
			standalone: true,
		},
		{
			name:      "module with label",
			path:      "/repo/modules/Web Forms for Marketers 8.2 rev. 160801 (for 8.2).zip",
			wantOK:    true,
			wantName:  "Web Forms for Marketers",
			wantVer:   "8.2",
			wantRev:   "160801",
			wantLabel: "(for 8.2)",
		},
		{
			name:   "not a product archive",
			path:   "/repo/readme.zip",
			wantOK: false,
		},
		{
			name:   "missing revision",
			path:   "/repo/Sitecore 8.2.zip",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := product.TryParse(tt.path)
			require.Equal(t, tt.wantOK, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.wantName, got.Name)
			assert.Equal(t, tt.wantVer, got.Version)
			assert.Equal(t, tt.wantRev, got.Revision)
			assert.Equal(t, tt.wantLabel, got.Label)
			assert.Equal(t, tt.standalone, got.IsStandalone)
			assert.Equal(t, tt.path, got.ArchivePath)
			assert.False(t, got.Synthetic)
		})
	}
}

func TestParseNeverFails(t *testing.T) {
	full := product.Parse("Sitecore 8.2 rev. 161221")
	assert.Equal(t, "Sitecore 8.2 rev. 161221", full.String())
	assert.True(t, full.Synthetic)
	assert.True(t, full.IsStandalone)

	versionOnly := product.Parse("Sitecore 8.2")
	assert.Equal(t, "8.2", versionOnly.Version)
	assert.Empty(t, versionOnly.Revision)
	assert.Equal(t, "Sitecore 8.2", versionOnly.String())

	free := product.Parse("  something odd  ")
	assert.Equal(t, "something odd", free.Name)
	assert.Empty(t, free.Version)
	assert.True(t, free.Synthetic)
	assert.False(t, free.IsStandalone)
}

func TestCustomStandaloneNames(t *testing.T) {
	parser := product.NewParser([]string{"Experience Platform"})

	p, ok := parser.TryParse("Experience Platform 9.0 rev. 171002.zip")
	require.True(t, ok)
	assert.True(t, p.IsStandalone)

	p, ok = parser.TryParse("Sitecore 8.2 rev. 161221.zip")
	require.True(t, ok)
	assert.False(t, p.IsStandalone)
}

func TestIdentity(t *testing.T) {
	a, _ := product.TryParse("/a/Sitecore 8.2 rev. 161221.zip")
	b, _ := product.TryParse("/b/sitecore 8.2 rev. 161221 (copy).zip")
	c, _ := product.TryParse("/a/Sitecore 8.2 rev. 170407.zip")

	assert.True(t, a.Equal(b), "label and path are not part of identity")
	assert.False(t, a.Equal(c))
}

func TestCompareAndSortOrder(t *testing.T) {
	older, _ := product.TryParse("Sitecore 8.1 rev. 160519.zip")
	newer, _ := product.TryParse("Sitecore 8.2 rev. 161221.zip")
	newerRev, _ := product.TryParse("Sitecore 8.2 rev. 170407.zip")
	fourPart, _ := product.TryParse("Sitecore 8.2.0.1 rev. 170407.zip")

	assert.Equal(t, -1, older.Compare(newer))
	assert.Equal(t, 1, newerRev.Compare(newer))
	assert.Equal(t, 0, newer.Compare(newer))
	assert.Equal(t, 1, fourPart.Compare(newerRev))

	assert.Less(t, older.SortOrder, newer.SortOrder)
	assert.Less(t, newer.SortOrder, newerRev.SortOrder)
}

func TestMatchesVersion(t *testing.T) {
	p, _ := product.TryParse("Sitecore 8.2 rev. 161221.zip")

	assert.True(t, p.MatchesVersion(""))
	assert.True(t, p.MatchesVersion("8.2"))
	assert.False(t, p.MatchesVersion("8.2.0"), "plain versions match exactly")
	assert.True(t, p.MatchesVersion(">= 8.0, < 9"))
	assert.False(t, p.MatchesVersion("^9.0"))
	assert.False(t, p.MatchesVersion("not a constraint"))
}

func TestIsCompatibleWith(t *testing.T) {
	platform, _ := product.TryParse("Sitecore 8.2 rev. 161221.zip")
	module, _ := product.TryParse("Web Forms for Marketers 8.2 rev. 160801.zip")
	oldModule, _ := product.TryParse("Web Forms for Marketers 8.1 rev. 151217.zip")

	assert.True(t, module.IsCompatibleWith(platform))
	assert.False(t, oldModule.IsCompatibleWith(platform))
	assert.False(t, platform.IsCompatibleWith(platform), "standalone products are not modules")
	assert.Equal(t, "8.2", platform.MajorMinor())
}
