package security

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePathWithinDirectory(t *testing.T) {
	tmpDir := t.TempDir()

	archive := filepath.Join(tmpDir, "flights")
	outside := filepath.Join(tmpDir, "outside")
	require.NoError(t, os.MkdirAll(archive, 0755))
	require.NoError(t, os.MkdirAll(outside, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(outside, "secret.igc"), []byte("B"), 0644))
	require.NoError(t, os.Symlink(outside, filepath.Join(archive, "evil")))

	tests := []struct {
		name      string
		filePath  string
		wantError bool
	}{
		{"track in archive", filepath.Join(archive, "1234.igc.gz"), false},
		{"nested path", filepath.Join(archive, "2022", "1234.igc.gz"), false},
		{"archive itself", archive, false},
		{"dot dot escape", filepath.Join(archive, "..", "outside", "secret.igc"), true},
		{"relative escape", "../../../etc/passwd", true},
		{"symlinked directory", filepath.Join(archive, "evil", "secret.igc"), true},
		{"symlinked missing file", filepath.Join(archive, "evil", "new.igc"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePathWithinDirectory(tt.filePath, archive)
			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	assert.Error(t, ValidatePathWithinDirectory(filepath.Join(archive, "x"), filepath.Join(tmpDir, "missing")))
}

func TestValidateExportPath(t *testing.T) {
	assert.NoError(t, ValidateExportPath(filepath.Join(os.TempDir(), "report.html")))
	assert.NoError(t, ValidateExportPath("report.html"))
	assert.Error(t, ValidateExportPath("/proc/self/report.html"))
}

func TestValidateFlightID(t *testing.T) {
	for _, ok := range []string{"1", "1234567", "00042"} {
		assert.NoError(t, ValidateFlightID(ok), ok)
	}
	for _, bad := range []string{"", "12a", "../1", "1/2", " 1", "123456789012345678901"} {
		assert.Error(t, ValidateFlightID(bad), bad)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"":                  "unknown",
		"Jörg Müller":       "J_rg_M_ller",
		"anna_b":            "anna_b",
		"../etc/passwd":     "etc_passwd",
		"__x__":             "x",
		"a  b":              "a_b",
		"report-2022.06.28": "report-2022.06.28",
		"///":               "unknown",
	}
	for in, want := range tests {
		assert.Equal(t, want, SanitizeFilename(in), "input %q", in)
	}
}
