package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwell-labs/inkwell-cli/internal/core/domain"
)

func TestVersionsListCmd_PrintsChain(t *testing.T) {
	library, _, _, cleanup := setupTestServices()
	defer cleanup()

	base := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	library.add(domain.DocumentVersion{
		ID: "v1", URL: "https://example.com/ch1", Type: domain.VersionOriginal,
		Content: "one two three", CreatedAt: base,
	})
	library.add(domain.DocumentVersion{
		ID: "v2", URL: "https://example.com/ch1", Type: domain.VersionAIEdited,
		Content: "four five", Active: true, CreatedAt: base.Add(time.Minute),
	})

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"versions", "list", "https://example.com/ch1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "v1")
	assert.Contains(t, buf.String(), "v2")
	assert.Contains(t, buf.String(), "* v2", "active version is marked")
	assert.Contains(t, buf.String(), "3 words")
}

func TestVersionsListCmd_Empty(t *testing.T) {
	_, _, _, cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"versions", "list", "https://example.com/none"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "No versions found.")
}

func TestVersionsActivateCmd(t *testing.T) {
	library, _, _, cleanup := setupTestServices()
	defer cleanup()
	library.add(domain.DocumentVersion{ID: "v1", URL: "https://example.com/ch1"})

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"versions", "activate", "v1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Equal(t, []string{"v1"}, library.activated)
	assert.Contains(t, buf.String(), "now active")
}

func TestVersionsActivateCmd_NotFound(t *testing.T) {
	_, _, _, cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"versions", "activate", "missing"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestVersionsDeleteCmd(t *testing.T) {
	library, _, _, cleanup := setupTestServices()
	defer cleanup()
	library.add(domain.DocumentVersion{ID: "v1", URL: "https://example.com/ch1"})

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"versions", "delete", "v1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Equal(t, []string{"v1"}, library.deleted)
}

func TestVersionsShowCmd(t *testing.T) {
	library, _, _, cleanup := setupTestServices()
	defer cleanup()
	library.add(domain.DocumentVersion{
		ID: "v1", URL: "https://example.com/ch1", Type: domain.VersionOriginal,
		Content: "full chapter text", CreatedAt: time.Now(),
	})

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"versions", "show", "v1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "https://example.com/ch1")
	assert.Contains(t, buf.String(), "full chapter text")
}
