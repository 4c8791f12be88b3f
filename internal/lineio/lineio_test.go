// Copyright (C) 2025 CardinalHQ, Inc
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, version 3.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package lineio

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadLines(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"empty", "", nil},
		{"single without newline", "one", []string{"one"}},
		{"single with newline", "one\n", []string{"one"}},
		{"crlf", "one\r\ntwo\r\n", []string{"one", "two"}},
		{"blank lines kept", "a\n\nb\n", []string{"a", "", "b"}},
		{"trailing partial", "a\nb", []string{"a", "b"}},
		{"unicode", "héllo 1\n", []string{"héllo 1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadLines(strings.NewReader(tt.input), "test")
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestReadLines_LongLine(t *testing.T) {
	long := strings.Repeat("x", 1<<20)
	got, err := ReadLines(strings.NewReader(long+"\nshort\n"), "test")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Len(t, got[0], 1<<20)
	assert.Equal(t, "short", got[1])
}

func TestReadLines_InvalidUTF8(t *testing.T) {
	_, err := ReadLines(strings.NewReader("ok\nbad \xff\xfe\n"), "input.log")
	require.Error(t, err)

	var de *DecodeError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "input.log", de.Source)
	assert.Equal(t, 2, de.Line)
	assert.Equal(t, "input.log:2: line is not valid UTF-8", err.Error())
}

func TestReadSources(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.log")
	b := filepath.Join(dir, "b.log")
	require.NoError(t, os.WriteFile(a, []byte("a1\na2\n"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("b1"), 0o644))

	stdin := strings.NewReader("s1\n")
	got, err := ReadSources(context.Background(), []string{a, StdinName, b}, stdin)
	require.NoError(t, err)
	assert.Equal(t, []string{"a1", "a2", "s1", "b1"}, got)
}

func TestReadSources_DefaultsToStdin(t *testing.T) {
	got, err := ReadSources(context.Background(), nil, strings.NewReader("x\ny\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, got)
}

func TestReadSources_MissingFile(t *testing.T) {
	_, err := ReadSources(context.Background(), []string{filepath.Join(t.TempDir(), "nope")}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadSources_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ReadSources(ctx, nil, strings.NewReader("x\n"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWriteLines(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteLines(&buf, []string{"a", "", "c"}))
	assert.Equal(t, "a\n\nc\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteLines(&buf, nil))
	assert.Empty(t, buf.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestWriteLines_Error(t *testing.T) {
	err := WriteLines(failingWriter{}, []string{"a"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}
