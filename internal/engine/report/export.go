// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/bytedance/sonic"
	"github.com/go-pdf/fpdf"
	"github.com/xuri/excelize/v2"

	"github.com/go-arcade/workhub/internal/engine/model"
	"github.com/go-arcade/workhub/internal/engine/service"
	"github.com/go-arcade/workhub/pkg/errs"
	"github.com/go-arcade/workhub/pkg/id"
	"github.com/go-arcade/workhub/pkg/log"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

var contentTypes = map[Format]string{
	FormatJSON: "application/json",
	FormatCSV:  "text/csv; charset=utf-8",
	FormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	FormatPDF:  "application/pdf",
}

func ParseFormat(s string) (Format, error) {
	if s == "" {
		return FormatJSON, nil
	}
	f := Format(s)
	if _, ok := contentTypes[f]; !ok {
		return "", errs.Validation("unknown export format %q", s)
	}
	return f, nil
}

type Export struct {
	Filename    string
	ContentType string
	Body        []byte
	// ArchivePath is set when the file was archived to object storage.
	ArchivePath string
}

// Export renders a report in the requested format. Every format is derived
// from the canonical JSON so they agree on rows and totals.
func (e *Engine) Export(ctx context.Context, p *service.Principal, kindName, formatName string, f model.ReportFilter) (*Export, error) {
	format, err := ParseFormat(formatName)
	if err != nil {
		return nil, err
	}
	body, err := e.Generate(ctx, p, kindName, f)
	if err != nil {
		return nil, err
	}
	var r Report
	if err := sonic.Unmarshal(body, &r); err != nil {
		return nil, errs.Wrap(errs.KindUnexpected, err, "decode report")
	}

	var out []byte
	switch format {
	case FormatJSON:
		out = body
	case FormatCSV:
		out, err = renderCSV(&r)
	case FormatXLSX:
		out, err = renderXLSX(&r)
	case FormatPDF:
		out, err = renderPDF(&r, true)
	}
	if err != nil {
		return nil, errs.Wrap(errs.KindUnexpected, err, fmt.Sprintf("render %s export", format))
	}

	exp := &Export{
		Filename:    fmt.Sprintf("%s-%s-%s.%s", r.Kind, r.GeneratedAt.Format("20060102"), id.ShortId(), format),
		ContentType: contentTypes[format],
		Body:        out,
	}
	if e.conf.Archive && e.archive != nil {
		path, err := e.archive.Put(ctx, "reports/"+exp.Filename, out, exp.ContentType)
		if err != nil {
			log.WithContext(ctx).Warnw("report export not archived", "file", exp.Filename, "error", err)
		} else {
			exp.ArchivePath = path
		}
	}
	return exp, nil
}

// cell renders a decoded JSON value. Whole numbers print without a
// fraction so csv, xlsx and pdf show the same text.
func cell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(x, 10)
	default:
		return fmt.Sprint(x)
	}
}

func renderCSV(r *Report) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(r.Columns); err != nil {
		return nil, err
	}
	record := make([]string, len(r.Columns))
	for _, row := range r.Rows {
		record = record[:0]
		for _, v := range row {
			record = append(record, cell(v))
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

const (
	sheetReport  = "Report"
	sheetSummary = "Summary"
)

func renderXLSX(r *Report) ([]byte, error) {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			log.Warnw("close workbook", "error", err)
		}
	}()
	if err := f.SetSheetName("Sheet1", sheetReport); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(sheetSummary); err != nil {
		return nil, err
	}

	header := make([]any, len(r.Columns))
	for i, c := range r.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheetReport, "A1", &header); err != nil {
		return nil, err
	}
	for i, row := range r.Rows {
		axis, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		values := append([]any(nil), row...)
		if err := f.SetSheetRow(sheetReport, axis, &values); err != nil {
			return nil, err
		}
	}

	if err := f.SetSheetRow(sheetSummary, "A1", &[]any{"name", "value"}); err != nil {
		return nil, err
	}
	for i, s := range r.Summary {
		axis, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheetSummary, axis, &[]any{s.Name, s.Value}); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// renderPDF lays the report out as a title, the rows table and the summary.
// compress is false only when the content streams need to stay readable.
func renderPDF(r *Report, compress bool) ([]byte, error) {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetCompression(compress)
	pdf.SetCreationDate(r.GeneratedAt)
	pdf.SetTitle(string(r.Kind), false)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, tr(fmt.Sprintf("%s report", r.Kind)), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(0, 6, tr("generated at "+r.GeneratedAt.Format("2006-01-02 15:04:05 UTC")), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	width := 277.0
	if len(r.Columns) > 0 {
		width /= float64(len(r.Columns))
	}
	pdf.SetFont("Helvetica", "B", 8)
	for _, c := range r.Columns {
		pdf.CellFormat(width, 6, tr(c), "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 8)
	for _, row := range r.Rows {
		for _, v := range row {
			pdf.CellFormat(width, 6, tr(cell(v)), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(0, 7, "Summary", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	for _, s := range r.Summary {
		pdf.CellFormat(60, 6, tr(s.Name), "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, tr(cell(s.Value)), "1", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
