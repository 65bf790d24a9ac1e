package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplatesList(t *testing.T) {
	out, err := execute(t, NewTemplatesCommand(testOptions(t)), "list")
	require.NoError(t, err)
	assert.Contains(t, out, "voiceover")
	assert.Contains(t, out, `"Voice Over"`)
	assert.Contains(t, out, "volume 90")
	assert.Contains(t, out, "height 24")
}

func TestTemplatesListIncludesConfiguredDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "studio.cue"),
		[]byte("template: podcast: {\n\ttype: \"audio\"\n\tname: \"Podcast\"\n\tvolume: 75\n}\n"), 0o644))

	opts := testOptions(t)
	opts.Config.Templates = dir
	opts.Format = "json"
	opts.Verbose = true

	out, err := execute(t, NewTemplatesCommand(opts), "list")
	require.NoError(t, err)

	var resp struct {
		Data []TemplateInfo `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	var found *TemplateInfo
	for i := range resp.Data {
		if resp.Data[i].Name == "podcast" {
			found = &resp.Data[i]
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, "audio", found.Type)
	assert.Equal(t, 75, found.Volume)
	assert.Contains(t, found.Source, "studio.cue")
}

func TestTemplatesValidate(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.cue")
	require.NoError(t, os.WriteFile(good, []byte("template: fx: type: \"overlay\"\n"), 0o644))

	out, err := execute(t, NewTemplatesCommand(testOptions(t)), "validate", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "1 template file(s) valid")

	bad := filepath.Join(dir, "bad.cue")
	require.NoError(t, os.WriteFile(bad, []byte("template: x: {\n\ttype: \"audio\"\n\tvolume: 101\n}\n"), 0o644))

	out, err = execute(t, NewTemplatesCommand(testOptions(t)), "validate", good, bad)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ ")
	assert.Contains(t, out, "bad.cue:")
}

func TestTemplateUsableFromInvoke(t *testing.T) {
	opts := testOptions(t)
	opts.Format = "json"

	resp, err := invokeJSON(t, opts, "addTrack", `{"template":"music"}`)
	require.NoError(t, err)
	track := resp.Data.Result["track"].(map[string]any)
	assert.Equal(t, "Music", track["name"])
	assert.Equal(t, "audio", track["type"])
	assert.Equal(t, float64(60), track["volume"])
}
