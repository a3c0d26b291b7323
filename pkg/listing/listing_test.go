package listing

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	input := strings.Join([]string{
		"'5','30','Notarieel archief','KLAC01462000001','KLAC01462000002','KLAC01462000003'",
		"",
		"'6','31','Notarieel archief','KLAC01463000001','KLAC01463000002'",
	}, "\n")

	entries, err := Parse(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []Entry{
		{Group: "30", Identifier: "KLAC01462000001"},
		{Group: "30", Identifier: "KLAC01462000002"},
		{Group: "30", Identifier: "KLAC01462000003"},
		{Group: "31", Identifier: "KLAC01463000001"},
		{Group: "31", Identifier: "KLAC01463000002"},
	}, entries)
}

func TestParseIgnoresFieldsOutsideTheGroup(t *testing.T) {
	input := "'1','40','KLAC00161000001','KLAC00161000002','other','KLAC00999000001x'\n"

	entries, err := Parse(strings.NewReader(input))
	require.NoError(t, err)

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		assert.Equal(t, "40", e.Group)
		ids = append(ids, e.Identifier)
	}
	assert.Equal(t, []string{"KLAC00161000001", "KLAC00161000002"}, ids)
}

func TestParseCRLF(t *testing.T) {
	input := "'1','40','A001','A002'\r\n'2','41','B001'\r\n"

	entries, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []Entry{
		{Group: "40", Identifier: "A001"},
		{Group: "40", Identifier: "A002"},
		{Group: "41", Identifier: "B001"},
	}, entries)
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantLine int
	}{
		{
			name:     "single field",
			input:    "'only'\n",
			wantLine: 1,
		},
		{
			name:     "no first scan",
			input:    "'1','40','A001','A002'\n'2','41','B002','B003'\n",
			wantLine: 2,
		},
		{
			name:     "group escaping the root",
			input:    "'1','30','A001'\n'2','../../x','B001'\n",
			wantLine: 2,
		},
		{
			name:     "group with separator",
			input:    "'1','a/b','A001'\n",
			wantLine: 1,
		},
		{
			name:     "group with backslash",
			input:    "'1','a\\b','A001'\n",
			wantLine: 1,
		},
		{
			name:     "dot group",
			input:    "'1','.','A001'\n",
			wantLine: 1,
		},
		{
			name:     "empty group",
			input:    "\n\n'1','','A001'\n",
			wantLine: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := Parse(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Nil(t, entries)
			assert.True(t, errors.Is(err, ErrMalformedLine))

			var lineErr *LineError
			require.True(t, errors.As(err, &lineErr))
			assert.Equal(t, tt.wantLine, lineErr.Line)
		})
	}
}

func TestParseEmpty(t *testing.T) {
	entries, err := Parse(strings.NewReader("\n  \n"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "30398.txt")
	require.NoError(t, os.WriteFile(path, []byte("'1','30','X001','X002'\n"), 0644))

	entries, err := ParseFile(path)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	_, err = ParseFile(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
