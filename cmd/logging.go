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

package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	slogmulti "github.com/samber/slog-multi"
)

// newLogger builds the diagnostic logger. Records always go to w as text;
// with logFile set they are also appended to that file as JSON. Stdout is
// never used, it carries the rendered lines.
func newLogger(w io.Writer, verbose bool, logFile string) (*slog.Logger, func() error, error) {
	// Configure slog level based on flags and DEBUG environment variables
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if verbose || os.Getenv("DEBUG") != "" || os.Getenv("LOGRANK_DEBUG") != "" {
		opts.Level = slog.LevelDebug
	}

	closer := func() error { return nil }
	if logFile == "" {
		return slog.New(slog.NewTextHandler(w, opts)), closer, nil
	}

	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	logger := slog.New(slogmulti.Fanout(
		slog.NewTextHandler(w, opts),
		slog.NewJSONHandler(f, opts),
	))
	return logger, f.Close, nil
}
