package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRenderSubstitutesEveryPlaceholder(t *testing.T) {
	c := FromMap(map[string]string{
		"Medical Leave": "From {user} ({department})\nTo:\n{recipient_block}\nLeave from {start_date} to {end_date}.\nDate: {current_date}",
	}, zap.NewNop())

	out, err := c.Render("Medical Leave", map[string]string{
		"user":            "Asha Rao",
		"department":      "CSE",
		"recipient_block": "The Principal",
		"start_date":      "01-03-2025",
		"end_date":        "03-03-2025",
		"current_date":    "20-02-2025",
	})
	require.NoError(t, err)
	assert.Equal(t, "From Asha Rao (CSE)\nTo:\nThe Principal\nLeave from 01-03-2025 to 03-03-2025.\nDate: 20-02-2025", out)
}

func TestRenderMissingPlaceholderFails(t *testing.T) {
	c := FromMap(map[string]string{
		"Medical Leave": "Leave for {user} from {start_date} to {end_date}.",
	}, zap.NewNop())

	out, err := c.Render("Medical Leave", map[string]string{
		"user":       "Asha Rao",
		"start_date": "01-03-2025",
	})

	var rerr *RenderError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "end_date", rerr.Field)
	assert.Empty(t, out, "no partial output on failure")
}

func TestRenderUnknownTemplate(t *testing.T) {
	c := FromMap(map[string]string{"A": "text"}, zap.NewNop())
	_, err := c.Render("B", nil)
	var rerr *RenderError
	require.ErrorAs(t, err, &rerr)
}

func TestSignatureMarkerSurvivesRendering(t *testing.T) {
	c := FromMap(map[string]string{
		"A": "Yours faithfully,\n{user}\n[Student Signature]",
	}, zap.NewNop())

	out, err := c.Render("A", map[string]string{"user": "Asha Rao"})
	require.NoError(t, err)
	assert.Contains(t, out, SignatureMarker)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "templates.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"Medical Leave": "body {user}"}`), 0644))

	c, err := Load(path, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, []string{"Medical Leave"}, c.Names())
	assert.True(t, c.Has("Medical Leave"))
}

func TestLoadFailures(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "absent.json"), zap.NewNop())
	assert.ErrorIs(t, err, ErrMissingReferenceData)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{not json`), 0644))
	_, err = Load(bad, zap.NewNop())
	assert.ErrorIs(t, err, ErrMissingReferenceData)

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte(`{}`), 0644))
	_, err = Load(empty, zap.NewNop())
	assert.ErrorIs(t, err, ErrMissingReferenceData)
}
