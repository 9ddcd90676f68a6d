package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateValidFilter(t *testing.T) {
	cmd := NewValidateCommand(&RootOptions{Format: "text"})
	out, err := execute(t, cmd, "testdata/filters/admins.yaml")
	require.NoError(t, err)

	assert.Contains(t, out, "✓ Filter valid")
	assert.Contains(t, out, `(uid startsWith "adm" OR department equals null)`)
}

func TestValidateValidFilterJSON(t *testing.T) {
	cmd := NewValidateCommand(&RootOptions{Format: "json"})
	out, err := execute(t, cmd, "testdata/filters/unmapped.yaml")
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	assert.Equal(t, []string{"shoe_size", "age"}, resp.Data.Attributes)
}

func TestValidateCUEFilter(t *testing.T) {
	cmd := NewValidateCommand(&RootOptions{Format: "text"})
	out, err := execute(t, cmd, "testdata/filters/older.cue")
	require.NoError(t, err)
	assert.Contains(t, out, "NOT (age greaterThan 40)")
}

func TestValidateAgainstMapping(t *testing.T) {
	t.Run("all mapped", func(t *testing.T) {
		cmd := NewValidateCommand(&RootOptions{Format: "text"})
		_, err := execute(t, cmd, "testdata/filters/admins.yaml", "--mapping", testMapping, "--class", "account")
		require.NoError(t, err)
	})

	t.Run("unmapped attribute", func(t *testing.T) {
		cmd := NewValidateCommand(&RootOptions{Format: "json"})
		out, err := execute(t, cmd, "testdata/filters/unmapped.yaml", "--mapping", testMapping, "--class", "account")
		require.Error(t, err)
		assert.Equal(t, ExitFailure, GetExitCode(err))

		var resp struct {
			Status string           `json:"status"`
			Data   ValidationResult `json:"data"`
			Error  *CLIError        `json:"error"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &resp))
		assert.Equal(t, "error", resp.Status)
		assert.False(t, resp.Data.Valid)
		require.Len(t, resp.Data.Errors, 1)
		assert.Equal(t, ErrCodeUnmappedAttr, resp.Data.Errors[0].Code)
		assert.Contains(t, resp.Data.Errors[0].Message, `"shoe_size"`)
		require.NotNil(t, resp.Error)
		assert.Equal(t, ErrCodeUnmappedAttr, resp.Error.Code)
	})

	t.Run("class without mapping", func(t *testing.T) {
		cmd := NewValidateCommand(&RootOptions{Format: "text"})
		_, err := execute(t, cmd, "testdata/filters/admins.yaml", "--class", "account")
		require.Error(t, err)
	})
}

func TestValidateInvalidFilter(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantCode string
		wantMsg  string
	}{
		{
			name:     "unknown operator",
			content:  "matches: {uid: adm}\n",
			wantCode: ErrCodeFilterDecode,
			wantMsg:  `unknown operator "matches"`,
		},
		{
			name:     "single child and",
			content:  "and:\n  - equals: {uid: adm}\n",
			wantCode: ErrCodeFilterDecode,
			wantMsg:  "needs at least two children",
		},
		{
			name:     "negated connective",
			content:  "or:\n  - equals: {uid: a}\n  - equals: {uid: b}\nnegated: true\n",
			wantCode: ErrCodeFilterDecode,
			wantMsg:  "negated applies to leaves only",
		},
		{
			name:     "float value",
			content:  "greaterThan: {age: 1.5}\n",
			wantCode: ErrCodeFilterDecode,
			wantMsg:  "age",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "filter.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			cmd := NewValidateCommand(&RootOptions{Format: "text"})
			out, err := execute(t, cmd, path)
			require.Error(t, err)
			assert.Equal(t, ExitFailure, GetExitCode(err))
			assert.Contains(t, out, "✗ Validation failed")
			assert.Contains(t, out, tt.wantCode)
			assert.Contains(t, out, tt.wantMsg)
		})
	}
}

func TestValidateNonExistentFile(t *testing.T) {
	cmd := NewValidateCommand(&RootOptions{Format: "text"})
	out, err := execute(t, cmd, "/nonexistent/filter.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "E005") // ErrCodeNotFound
	assert.Contains(t, out, "not found")
}

func TestValidateMissingArgs(t *testing.T) {
	cmd := NewValidateCommand(&RootOptions{Format: "text"})
	_, err := execute(t, cmd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}
