package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go-jobboard-backend/internal/domain"
	"go-jobboard-backend/pkg/apperror"

	"github.com/xuri/excelize/v2"
)

const (
	ExportFormatXLSX = "xlsx"
	ExportFormatCSV  = "csv"
)

var exportHeaders = []string{"ID", "APPLICANT EMAIL", "STATUS", "VIEWED", "RESUME", "COVER LETTER", "NOTES", "APPLIED AT"}

func exportRow(a domain.Application) []string {
	return []string{
		strconv.FormatInt(a.ID, 10),
		derefOr(a.ApplicantEmail, ""),
		string(a.Status),
		strconv.FormatBool(a.Viewed),
		a.Resume,
		derefOr(a.CoverLetter, ""),
		derefOr(a.Notes, ""),
		a.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// ExportForJob renders every application of the job as a spreadsheet for the
// hiring company.
func (u *applicationUsecase) ExportForJob(ctx context.Context, jobID int64, format string) (*domain.ApplicationExport, error) {
	if format == "" {
		format = ExportFormatXLSX
	}
	if format != ExportFormatXLSX && format != ExportFormatCSV {
		return nil, apperror.Validation("Format must be xlsx or csv")
	}
	job, err := u.pipelineJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	var apps []domain.Application
	f := domain.ApplicationFilter{JobID: &jobID, PageRequest: domain.PageRequest{Page: 1, PageSize: domain.MaxPageSize}}
	for {
		items, total, err := u.applications.List(ctx, f)
		if err != nil {
			return nil, apperror.Internal(err)
		}
		apps = append(apps, items...)
		if len(items) == 0 || int64(len(apps)) >= total {
			break
		}
		f.Page++
	}

	stamp := u.now().Format("20060102_150405")
	base := fmt.Sprintf("job_%d_applications_%s", job.ID, stamp)
	if format == ExportFormatCSV {
		data, err := exportCSV(apps)
		if err != nil {
			return nil, apperror.Internal(err)
		}
		return &domain.ApplicationExport{Filename: base + ".csv", ContentType: "text/csv", Data: data}, nil
	}
	data, err := exportExcel(job.Title, apps)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return &domain.ApplicationExport{
		Filename:    base + ".xlsx",
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Data:        data,
	}, nil
}

func exportExcel(title string, apps []domain.Application) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Applications"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	for i, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	// Dark blue header with white text
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#1E3A5F"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, err
	}
	endCell, _ := excelize.CoordinatesToCellName(len(exportHeaders), 1)
	f.SetCellStyle(sheet, "A1", endCell, headerStyle)

	for r, a := range apps {
		for c, v := range exportRow(a) {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	for i := range exportHeaders {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheet, col, col, 20)
	}
	f.SetDocProps(&excelize.DocProperties{Title: title, Creator: "jobboard"})

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}

// csvCell keeps seeker-written text from being evaluated as a formula when
// the file is opened in a spreadsheet. The xlsx path stores plain strings.
func csvCell(v string) string {
	if v != "" && strings.ContainsRune("=+-@\t\r", rune(v[0])) {
		return "'" + v
	}
	return v
}

func exportCSV(apps []domain.Application) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(exportHeaders); err != nil {
		return nil, err
	}
	for _, a := range apps {
		row := exportRow(a)
		for i := range row {
			row[i] = csvCell(row[i])
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
