package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunValidate_Success(t *testing.T) {
	dir := writeMinimalScenario(t)

	var buf bytes.Buffer
	err := runValidate(dir, &buf)

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "VALID")
}

func TestRunValidate_UnknownComponentClass(t *testing.T) {
	dir := writeMinimalScenario(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "components.yaml"), []byte(`
- id: bogus
  class: Teleporter
`), 0o644))

	var buf bytes.Buffer
	err := runValidate(dir, &buf)

	require.Error(t, err)
	assert.Contains(t, buf.String(), "INVALID")
}
