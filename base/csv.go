// Copyright 2026 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package base

import (
	"bufio"
	"io"
	"strings"

	"github.com/juju/errors"
)

const maxLineSize = 1024 * 1024

// Escape text for csv.
func Escape(text string) string {
	if !strings.ContainsAny(text, ",\"\r\n") {
		return text
	}
	builder := strings.Builder{}
	builder.WriteRune('"')
	for _, c := range text {
		if c == '"' {
			builder.WriteString("\"\"")
		} else {
			builder.WriteRune(c)
		}
	}
	builder.WriteRune('"')
	return builder.String()
}

// ReadLines parses fields of each record in a csv stream. Quoted fields may contain the
// separator, escaped quotes ("") and line breaks. The handler receives the zero-based
// record number; a non-nil error from the handler stops reading and is returned. A quote
// left open at the end of the stream is a NotValid error.
func ReadLines(r io.Reader, sep rune, handler func(int, []string) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	lineCount := 0
	fields := make([]string, 0)
	builder := strings.Builder{}
	quoted := false
	for sc.Scan() {
		line := []rune(sc.Text())
		if lineCount == 0 && !quoted && len(line) > 0 && line[0] == '\uFEFF' {
			// byte order mark
			line = line[1:]
		}
		if quoted {
			builder.WriteString("\n")
		}
		for i := 0; i < len(line); i++ {
			if line[i] == sep && !quoted {
				fields = append(fields, builder.String())
				builder.Reset()
			} else if line[i] == '"' {
				if quoted {
					if i+1 >= len(line) || line[i+1] != '"' {
						quoted = false
					} else {
						i++
						builder.WriteRune('"')
					}
				} else {
					quoted = true
				}
			} else {
				builder.WriteRune(line[i])
			}
		}
		if !quoted {
			fields = append(fields, strings.TrimSuffix(builder.String(), "\r"))
			builder.Reset()
			if err := handler(lineCount, fields); err != nil {
				return err
			}
			fields = make([]string, 0, len(fields))
			lineCount++
		}
	}
	if err := sc.Err(); err != nil {
		return errors.Trace(err)
	}
	if quoted {
		return errors.NotValidf("unterminated quoted field at record %d", lineCount+1)
	}
	return nil
}
