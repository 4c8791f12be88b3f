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
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"
)

// StdinName selects standard input in a list of sources.
const StdinName = "-"

const writeBufferSize = 64 * 1024

// DecodeError reports a line that is not valid UTF-8.
type DecodeError struct {
	Source string
	Line   int
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s:%d: line is not valid UTF-8", e.Source, e.Line)
}

// ReadLines reads every line from r. Line terminators ("\n" or "\r\n") are
// removed and a final line without a terminator is kept. Lines may be of
// any length.
func ReadLines(r io.Reader, source string) ([]string, error) {
	br := bufio.NewReader(r)
	var lines []string
	for n := 1; ; n++ {
		line, err := br.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("reading %s: %w", source, err)
		}
		if line == "" && err != nil {
			return lines, nil
		}
		line = strings.TrimSuffix(line, "\n")
		line = strings.TrimSuffix(line, "\r")
		if !utf8.ValidString(line) {
			return nil, &DecodeError{Source: source, Line: n}
		}
		lines = append(lines, line)
		if err != nil {
			return lines, nil
		}
	}
}

// ReadSources reads each named source in turn and concatenates their lines.
// An empty list, or the name "-", reads stdin.
func ReadSources(ctx context.Context, names []string, stdin io.Reader) ([]string, error) {
	if len(names) == 0 {
		names = []string{StdinName}
	}
	var all []string
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		lines, err := readSource(name, stdin)
		if err != nil {
			return nil, err
		}
		all = append(all, lines...)
	}
	return all, nil
}

func readSource(name string, stdin io.Reader) ([]string, error) {
	if name == StdinName {
		return ReadLines(stdin, "<stdin>")
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("opening input: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()
	return ReadLines(f, name)
}

// WriteLines writes lines to w, each followed by "\n", through one buffer.
func WriteLines(w io.Writer, lines []string) error {
	bw := bufio.NewWriterSize(w, writeBufferSize)
	for _, line := range lines {
		if _, err := bw.WriteString(line); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
		if err := bw.WriteByte('\n'); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flushing output: %w", err)
	}
	return nil
}
