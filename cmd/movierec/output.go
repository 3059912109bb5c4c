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


package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/gorse-io/movierec/base"
	"github.com/juju/errors"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatCSV   = "csv"
)

func isFormat(format string) bool {
	return lo.Contains([]string{formatTable, formatJSON, formatCSV}, format)
}

// section is a titled table printed by a command.
type section struct {
	title  string
	header []string
	rows   [][]string
}

// printer writes command results as a table, JSON or CSV.
type printer struct {
	w      io.Writer
	format string
}

// Print writes sections for table and CSV output, or value for JSON output.
func (p *printer) Print(value any, sections ...section) error {
	switch p.format {
	case formatJSON:
		encoder := json.NewEncoder(p.w)
		encoder.SetIndent("", "  ")
		return errors.Trace(encoder.Encode(value))
	case formatCSV:
		for i, s := range sections {
			if i > 0 {
				if _, err := fmt.Fprintln(p.w); err != nil {
					return errors.Trace(err)
				}
			}
			for _, row := range append([][]string{s.header}, s.rows...) {
				line := strings.Join(lo.Map(row, func(field string, _ int) string {
					return base.Escape(field)
				}), ",")
				if _, err := fmt.Fprintln(p.w, line); err != nil {
					return errors.Trace(err)
				}
			}
		}
		return nil
	case formatTable:
		for i, s := range sections {
			if i > 0 {
				if _, err := fmt.Fprintln(p.w); err != nil {
					return errors.Trace(err)
				}
			}
			if s.title != "" {
				if _, err := fmt.Fprintln(p.w, s.title); err != nil {
					return errors.Trace(err)
				}
			}
			table := tablewriter.NewWriter(p.w)
			table.Header(lo.ToAnySlice(s.header)...)
			for _, row := range s.rows {
				if err := table.Append(row); err != nil {
					return errors.Trace(err)
				}
			}
			if err := table.Render(); err != nil {
				return errors.Trace(err)
			}
		}
		return nil
	}
	return errors.NotValidf("format %q", p.format)
}

func formatGenres(genres []string) string {
	return strings.Join(genres, "|")
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', 4, 64)
}
