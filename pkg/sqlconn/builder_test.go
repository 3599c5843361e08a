package sqlconn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	b, err := Parse("Data Source=.\\SQLEXPRESS;Initial Catalog=Sitecore_Core;Integrated Security=True")
	require.NoError(t, err)

	assert.Equal(t, `.\SQLEXPRESS`, b.DataSource())
	assert.Equal(t, "Sitecore_Core", b.InitialCatalog())
	assert.True(t, b.IntegratedSecurity())
	assert.True(t, b.IsSQL())
	assert.Equal(t, []string{KeyDataSource, KeyInitialCatalog, KeyIntegratedSecurity}, b.Keys())
}

func TestParse_Synonyms(t *testing.T) {
	b, err := Parse("server=db1; database=master; uid=sa; pwd=secret; Trusted_Connection=no")
	require.NoError(t, err)

	assert.Equal(t, "db1", b.DataSource())
	assert.Equal(t, "master", b.InitialCatalog())
	assert.Equal(t, "sa", b.UserID())
	assert.Equal(t, "secret", b.Password())
	assert.False(t, b.IntegratedSecurity())
	assert.Equal(t, "Data Source=db1;Initial Catalog=master;User ID=sa;Password=secret;Integrated Security=no", b.String())
}

func TestParse_QuotedValues(t *testing.T) {
	b, err := Parse(`Data Source=db;Password="a;b""c";User ID='o''neil'`)
	require.NoError(t, err)
	assert.Equal(t, `a;b"c`, b.Password())
	assert.Equal(t, "o'neil", b.UserID())

	round, err := Parse(b.String())
	require.NoError(t, err)
	assert.Equal(t, b.Password(), round.Password())
	assert.Equal(t, b.UserID(), round.UserID())
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse("Data Source")
	assert.Error(t, err)

	_, err = Parse("=x")
	assert.Error(t, err)

	_, err = Parse(`Password="open`)
	assert.Error(t, err)
}

func TestParse_Empty(t *testing.T) {
	b, err := Parse(" ; ")
	require.NoError(t, err)
	assert.Empty(t, b.Keys())
	assert.False(t, b.IsSQL())
}

func TestRewrite(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		suffix   int
		expected string
	}{
		{
			name:     "integrated security replaced by sql login",
			input:    "Data Source=.;Initial Catalog=Sitecore_Master;Integrated Security=True",
			suffix:   -1,
			expected: "Data Source=sql01;Initial Catalog=Sitecore_Master;Integrated Security=False;User ID=sa;Password=12345",
		},
		{
			name:     "catalog suffix appended",
			input:    "user id=old;password=old;Data Source=.;Database=Sitecore_Web",
			suffix:   2,
			expected: "User ID=sa;Password=12345;Data Source=sql01;Initial Catalog=Sitecore_Web_2;Integrated Security=False",
		},
		{
			name:     "zero is a valid suffix",
			input:    "Data Source=.;Initial Catalog=web",
			suffix:   0,
			expected: "Data Source=sql01;Initial Catalog=web_0;Integrated Security=False;User ID=sa;Password=12345",
		},
	}

	creds := Credentials{DataSource: "sql01", UserID: "sa", Password: "12345"}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := Parse(tt.input)
			require.NoError(t, err)
			b.Rewrite(creds, tt.suffix)
			assert.Equal(t, tt.expected, b.String())
		})
	}
}

func TestSetAndRemove(t *testing.T) {
	b := &Builder{}
	b.Set("Server", "a")
	b.Set("Data Source", "b")
	assert.Equal(t, "Data Source=b", b.String())

	b.Set("Timeout", "30")
	b.Remove("data source")
	assert.Equal(t, "Timeout=30", b.String())
}
