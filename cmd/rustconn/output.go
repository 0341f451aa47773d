/*
Copyright 2026 RustConn Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"encoding/csv"
	"os"
	"text/tabwriter"

	jsoniter "github.com/json-iterator/go"
)

// json is shared with the rest of the repo's jsoniter alias convention
// (see lib/credentials/backend_cli.go); JSON is the authoritative output
// format, so it round-trips exactly what table/CSV only summarize.
var json = jsoniter.ConfigCompatibleWithStandardLibrary

// row is one renderable line of tabular output; table/CSV render Cells,
// JSON renders the caller's supplied value instead.
type row struct {
	Cells []string
}

// printTable writes headers/rows with text/tabwriter -- no table-drawing
// library exists anywhere in the retrieval pack, so this uses the
// standard library the way a minimal internal CLI helper would.
func printTable(headers []string, rows []row) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer w.Flush()
	writeTabRow(w, headers)
	for _, r := range rows {
		writeTabRow(w, r.Cells)
	}
}

func writeTabRow(w *tabwriter.Writer, cells []string) {
	for i, c := range cells {
		if i > 0 {
			w.Write([]byte("\t"))
		}
		w.Write([]byte(c))
	}
	w.Write([]byte("\n"))
}

func printCSV(headers []string, rows []row) {
	writer := csv.NewWriter(os.Stdout)
	defer writer.Flush()
	writer.Write(headers)
	for _, r := range rows {
		writer.Write(r.Cells)
	}
}

// printJSON marshals v (the authoritative format per the output-format
// contract) to stdout.
func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	os.Stdout.Write(data)
	os.Stdout.Write([]byte("\n"))
	return nil
}

// render dispatches to the requested output format. headers/rows build
// the table and CSV views; jsonValue is what JSON mode serializes directly.
func render(format string, headers []string, rows []row, jsonValue any) error {
	switch format {
	case "json":
		return printJSON(jsonValue)
	case "csv":
		printCSV(headers, rows)
		return nil
	default:
		printTable(headers, rows)
		return nil
	}
}
