package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteScratchFile(t *testing.T) {
	data := []byte("scratch payload")
	path, cleanup, err := WriteScratchFile(data, "my report.pdf")
	require.NoError(t, err)
	require.NotNil(t, cleanup)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, data, got)
	assert.True(t, strings.HasSuffix(path, "my_report.pdf"))

	cleanup()
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// Cleanup is safe to run twice.
	cleanup()
}

func TestCopyFileWithTimestamp(t *testing.T) {
	srcDir := t.TempDir()
	dstDir := t.TempDir()

	srcPath := filepath.Join(srcDir, "report.pdf")
	require.NoError(t, os.WriteFile(srcPath, []byte("pdf bytes"), 0644))

	destPath, err := CopyFileWithTimestamp(srcPath, dstDir)
	require.NoError(t, err)

	got, err := os.ReadFile(destPath)
	require.NoError(t, err)
	assert.Equal(t, []byte("pdf bytes"), got)

	name := filepath.Base(destPath)
	assert.True(t, strings.HasPrefix(name, "report_"))
	assert.True(t, strings.HasSuffix(name, ".pdf"))
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "report.pdf", SanitizeFilename("report.pdf"))
	assert.Equal(t, "my_report_v2.pdf", SanitizeFilename("my report/v2.pdf"))
	assert.Equal(t, "b_o_c_o_2024.pdf", SanitizeFilename("báo cáo 2024.pdf"))
}

func TestFileNameWithoutExt(t *testing.T) {
	assert.Equal(t, "report", FileNameWithoutExt("/tmp/report.pdf"))
	assert.Equal(t, "archive.tar", FileNameWithoutExt("archive.tar.gz"))
	assert.Equal(t, "noext", FileNameWithoutExt("noext"))
}
