package display

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"testing"
	"time"

	"github.com/arthur-debert/simctl/pkg/errors"
	"github.com/arthur-debert/simctl/pkg/lifecycle"
	"github.com/arthur-debert/simctl/pkg/pipeline"
	"github.com/arthur-debert/simctl/pkg/product"
	"github.com/arthur-debert/simctl/pkg/runtimeconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	sc81 = product.Product{Name: "Sitecore CMS", Version: "8.1", Revision: "151003", IsStandalone: true, ArchivePath: "/repo/sc81.zip"}
	wffm = product.Product{Name: "Web Forms for Marketers", Version: "8.1", Revision: "151008", ArchivePath: "/repo/wffm.zip"}
)

func TestParseFormat(t *testing.T) {
	tests := map[string]Format{
		"":      FormatAuto,
		"auto":  FormatAuto,
		"term":  FormatTerminal,
		"TEXT":  FormatText,
		"plain": FormatText,
		"json":  FormatJSON,
	}
	for in, want := range tests {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseFormat("yaml")
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
	assert.Equal(t, "json", FormatJSON.String())
}

func TestDetectFormat_NonTerminalIsText(t *testing.T) {
	assert.Equal(t, FormatText, DetectFormat(&bytes.Buffer{}))
	assert.Equal(t, FormatText, FormatAuto.Resolve(&bytes.Buffer{}))
	assert.Equal(t, FormatJSON, FormatJSON.Resolve(&bytes.Buffer{}))
}

func TestProducts_Text(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, FormatText)
	require.NoError(t, p.Products([]product.Product{sc81, wffm}))

	out := buf.String()
	assert.Contains(t, out, "Sitecore CMS")
	assert.Contains(t, out, "standalone")
	assert.Contains(t, out, "module")
	assert.NotContains(t, out, "\x1b[")
}

func TestProducts_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf, FormatText).Products(nil))
	assert.Contains(t, buf.String(), "No products found")
}

func TestProducts_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf, FormatJSON).Products([]product.Product{sc81}))

	var got []map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "Sitecore CMS", got[0]["name"])
	assert.Equal(t, true, got[0]["standalone"])
}

func TestProduct_WithModules(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf, FormatText).Product(sc81, []product.Product{wffm}))
	out := buf.String()
	assert.Contains(t, out, "Sitecore CMS 8.1 rev. 151003")
	assert.Contains(t, out, "Compatible modules")
	assert.Contains(t, out, "Web Forms for Marketers")
}

func testResult() *pipeline.Result {
	return &pipeline.Result{
		Pipeline: "install",
		Target:   "sc",
		State:    pipeline.RunAborted,
		Error:    stderrors.New("boom"),
		Duration: 1500 * time.Millisecond,
		Steps: []pipeline.StepResult{
			{Name: "resolve product", State: pipeline.StepSucceeded, Summary: "Sitecore CMS 8.1"},
			{Name: "grant permissions", State: pipeline.StepSkipped},
			{Name: "setup website", State: pipeline.StepFailed, Error: stderrors.New("boom")},
			{Name: "write registry entry", State: pipeline.StepNotStarted},
		},
	}
}

func TestResult_Text(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf, FormatText).Result(testResult()))
	out := buf.String()
	assert.Contains(t, out, "resolve product")
	assert.Contains(t, out, "Sitecore CMS 8.1")
	assert.Contains(t, out, "not started")
	assert.Contains(t, out, "install aborted: 1 succeeded, 1 skipped in 1.5s")
}

func TestResult_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf, FormatJSON).Result(testResult()))

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "aborted", got["state"])
	assert.Equal(t, "boom", got["error"])
	assert.Len(t, got["steps"], 4)
}

func TestProgressHook(t *testing.T) {
	var buf bytes.Buffer
	h := NewPrinter(&buf, FormatText).Progress()

	h.PipelineStarted("install", "sc")
	h.StepFinished("install", pipeline.StepResult{Name: "prepare directory", State: pipeline.StepSucceeded,
		Params: map[string]string{"root": "/sites/sc", "archive": ""}, Summary: "4 files extracted"})
	h.StepFinished("install", pipeline.StepResult{Name: "grant permissions", State: pipeline.StepSkipped})
	h.StepFinished("install", pipeline.StepResult{Name: "setup website", State: pipeline.StepFailed, Error: stderrors.New("boom")})

	assert.Equal(t, "install sc\n"+
		"  ✓ prepare directory root=/sites/sc: 4 files extracted\n"+
		"  ○ grant permissions (skipped)\n"+
		"  ✗ setup website: boom\n", buf.String())
}

func TestProgressHook_JSONIsQuiet(t *testing.T) {
	var buf bytes.Buffer
	h := NewPrinter(&buf, FormatJSON).Progress()
	h.PipelineStarted("install", "sc")
	h.StepFinished("install", pipeline.StepResult{Name: "a", State: pipeline.StepSucceeded})
	assert.Empty(t, buf.String())
}

func TestError(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, FormatText)
	p.Error(errors.New(errors.ErrInstanceNotFound, "site \"x\" not found"))
	p.Error(stderrors.New("plain"))
	p.Error(nil)
	assert.Equal(t, "Error: [INSTANCE_NOT_FOUND] site \"x\" not found\nError: plain\n", buf.String())
}

func TestInstances(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf, FormatText).Instances([]lifecycle.Instance{{
		Name: "sc", State: lifecycle.StateStarted, HostNames: []string{"sc", "sc.local"},
		RootPath: "/sites/sc", AppPool: lifecycle.AppPool{Name: "sc"},
	}}))
	assert.Contains(t, buf.String(), "sc,sc.local")
}

func TestDatabases(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf, FormatText).Databases([]runtimeconfig.Database{
		{Name: "core", ConnectionString: "Data Source=.;Initial Catalog=Sitecore_Core"},
		{Name: "analytics", ConnectionString: "mongodb://localhost/analytics", Mongo: true},
	}))
	out := buf.String()
	assert.Contains(t, out, "Sitecore_Core")
	assert.Contains(t, out, "mongo")
}
