// Package spreadsheet reads and writes the Excel workbooks used to move
// clients and loan applications in and out of the system.
package spreadsheet

import (
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/2caleb/gold-charp-investments-sub003/internal/application/port"
	"github.com/2caleb/gold-charp-investments-sub003/internal/domain/entity"
	"github.com/2caleb/gold-charp-investments-sub003/internal/domain/money"
)

// Sheet names
const (
	ApplicationsSheet = "Applications"
	ClientsSheet      = "Clients"
)

// Column headers, in workbook order
var (
	applicationHeaders = []string{
		"Client Name", "Phone Number", "ID Number", "Loan Amount", "Loan Type",
		"Employment Status", "Monthly Income", "Status", "Created By",
	}
	clientHeaders = []string{
		"Full Name", "Phone Number", "ID Number", "Email", "Address",
	}
)

// ExcelCodec implements port.SpreadsheetCodec with excelize
type ExcelCodec struct {
	logger *zap.Logger
}

// NewExcelCodec creates a new Excel codec
func NewExcelCodec(logger *zap.Logger) *ExcelCodec {
	return &ExcelCodec{logger: logger}
}

// WriteApplications writes apps as one row each under a header row.
// Amounts are written as plain decimal text so nothing is lost to floats.
func (c *ExcelCodec) WriteApplications(w io.Writer, apps []*entity.LoanApplication) error {
	rows := make([][]interface{}, 0, len(apps))
	for _, app := range apps {
		rows = append(rows, []interface{}{
			app.ClientName,
			app.PhoneNumber,
			app.IDNumber,
			app.LoanAmount.String(),
			app.LoanType,
			app.EmploymentStatus,
			app.MonthlyIncome.String(),
			app.Status,
			app.CreatedBy,
		})
	}
	return c.write(w, ApplicationsSheet, applicationHeaders, rows)
}

// WriteClients writes clients as one row each under a header row
func (c *ExcelCodec) WriteClients(w io.Writer, clients []*entity.Client) error {
	rows := make([][]interface{}, 0, len(clients))
	for _, cl := range clients {
		rows = append(rows, []interface{}{
			cl.FullName,
			cl.PhoneNumber,
			cl.IDNumber,
			cl.Email,
			cl.Address,
		})
	}
	return c.write(w, ClientsSheet, clientHeaders, rows)
}

// ReadApplications reads the first sheet of a workbook. Columns are located
// by header name, so their order does not matter. Rows that fail validation
// are returned as RowErrors; row numbers are 1-based as shown in Excel.
func (c *ExcelCodec) ReadApplications(r io.Reader) ([]port.ApplicationRow, []port.RowError, error) {
	records, err := c.read(r, applicationHeaders[:1])
	if err != nil {
		return nil, nil, err
	}

	var (
		out    []port.ApplicationRow
		failed []port.RowError
	)
	for _, rec := range records {
		name := rec.get("Client Name")
		if name == "" {
			failed = append(failed, port.RowError{Row: rec.row, Message: "client name is required"})
			continue
		}

		amount, err := money.ParsePositive("loan amount", rec.get("Loan Amount"))
		if err != nil {
			failed = append(failed, port.RowError{Row: rec.row, Message: err.Error()})
			continue
		}

		income := decimal.Zero
		if text := rec.get("Monthly Income"); text != "" {
			income, err = money.ParseField("monthly income", text)
			if err != nil {
				failed = append(failed, port.RowError{Row: rec.row, Message: err.Error()})
				continue
			}
		}

		out = append(out, port.ApplicationRow{
			Row: rec.row,
			Application: &entity.LoanApplication{
				ClientName:       name,
				PhoneNumber:      rec.get("Phone Number"),
				IDNumber:         rec.get("ID Number"),
				LoanAmount:       amount,
				LoanType:         rec.get("Loan Type"),
				EmploymentStatus: strings.ToLower(rec.get("Employment Status")),
				MonthlyIncome:    income,
				CreatedBy:        rec.get("Created By"),
			},
		})
	}
	return out, failed, nil
}

// ReadClients reads the first sheet of a client workbook
func (c *ExcelCodec) ReadClients(r io.Reader) ([]port.ClientRow, []port.RowError, error) {
	records, err := c.read(r, clientHeaders[:1])
	if err != nil {
		return nil, nil, err
	}

	var (
		out    []port.ClientRow
		failed []port.RowError
	)
	for _, rec := range records {
		name := rec.get("Full Name")
		if name == "" {
			failed = append(failed, port.RowError{Row: rec.row, Message: "full name is required"})
			continue
		}
		out = append(out, port.ClientRow{
			Row: rec.row,
			Client: &entity.Client{
				FullName:    name,
				PhoneNumber: rec.get("Phone Number"),
				IDNumber:    rec.get("ID Number"),
				Email:       rec.get("Email"),
				Address:     rec.get("Address"),
			},
		})
	}
	return out, failed, nil
}

func (c *ExcelCodec) write(w io.Writer, sheet string, headers []string, rows [][]interface{}) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]interface{}, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		last, _ := excelize.CoordinatesToCellName(len(headers), 1)
		if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
			c.logger.Warn("Failed to style header", zap.String("sheet", sheet), zap.Error(err))
		}
	}

	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	c.logger.Info("Workbook written", zap.String("sheet", sheet), zap.Int("rows", len(rows)))
	return nil
}

type record struct {
	row    int
	values map[string]string
}

func (r record) get(header string) string {
	return r.values[strings.ToLower(header)]
}

// read returns every non-empty data row of the first sheet keyed by
// lowercased header. required headers must be present.
func (c *ExcelCodec) read(r io.Reader, required []string) ([]record, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheets[0])
	}

	headers := make([]string, len(rows[0]))
	present := make(map[string]bool, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.ToLower(strings.TrimSpace(h))
		present[headers[i]] = true
	}
	for _, h := range required {
		if !present[strings.ToLower(h)] {
			return nil, fmt.Errorf("missing column %q", h)
		}
	}

	var records []record
	for i, cells := range rows[1:] {
		values := make(map[string]string, len(headers))
		empty := true
		for j, cell := range cells {
			if j >= len(headers) || headers[j] == "" {
				continue
			}
			v := strings.TrimSpace(cell)
			if v != "" {
				empty = false
			}
			values[headers[j]] = v
		}
		if empty {
			continue
		}
		records = append(records, record{row: i + 2, values: values})
	}

	c.logger.Info("Workbook read", zap.String("sheet", sheets[0]), zap.Int("rows", len(records)))
	return records, nil
}

var _ port.SpreadsheetCodec = (*ExcelCodec)(nil)
