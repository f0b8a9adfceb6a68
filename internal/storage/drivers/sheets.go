package drivers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/karthikdoguparthi/KisaanGrow/internal/models"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const (
	valueInputRaw  = "RAW"
	insertRows     = "INSERT_ROWS"
	newSheetRows   = 500
	newSheetColumn = 20
)

// SheetsStorage maps each table to a worksheet of one spreadsheet. Row 1 is
// the header; data rows start at row 2.
type SheetsStorage struct {
	srv           *sheets.Service
	spreadsheetID string
}

func NewSheetsStorage(srv *sheets.Service, spreadsheetID string) *SheetsStorage {
	return &SheetsStorage{srv: srv, spreadsheetID: spreadsheetID}
}

// NewSheetsService builds a Sheets API client from a service account JSON key.
func NewSheetsService(ctx context.Context, credentialsJSON []byte) (*sheets.Service, error) {
	srv, err := sheets.NewService(ctx,
		option.WithCredentialsJSON(credentialsJSON),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return srv, nil
}

func isMissingSheet(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) &&
		gerr.Code == http.StatusBadRequest &&
		strings.Contains(gerr.Message, "Unable to parse range")
}

// columnLetter converts a zero-based column index to A1 notation.
func columnLetter(idx int) string {
	var b []byte
	for n := idx + 1; n > 0; n = (n - 1) / 26 {
		b = append([]byte{byte('A' + (n-1)%26)}, b...)
	}
	return string(b)
}

func cell(values []interface{}, idx int) string {
	if idx < 0 || idx >= len(values) || values[idx] == nil {
		return ""
	}
	return fmt.Sprint(values[idx])
}

func headerOf(values [][]interface{}) []string {
	if len(values) == 0 {
		return nil
	}
	header := make([]string, len(values[0]))
	for i := range values[0] {
		header[i] = cell(values[0], i)
	}
	return header
}

func isBlank(raw []interface{}) bool {
	for i := range raw {
		if cell(raw, i) != "" {
			return false
		}
	}
	return true
}

func setCell(raw []interface{}, idx int, v interface{}) []interface{} {
	for len(raw) <= idx {
		raw = append(raw, "")
	}
	raw[idx] = v
	return raw
}

func rowsFromValues(values [][]interface{}) []models.Row {
	header := headerOf(values)
	if len(values) < 2 {
		return nil
	}

	rows := make([]models.Row, 0, len(values)-1)
	for _, raw := range values[1:] {
		if isBlank(raw) {
			continue
		}
		row := make(models.Row, len(header))
		for i, h := range header {
			row[h] = cell(raw, i)
		}
		rows = append(rows, row)
	}
	return rows
}

func (s *SheetsStorage) values(ctx context.Context, rng string) ([][]interface{}, error) {
	resp, err := s.srv.Spreadsheets.Values.Get(s.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		if isMissingSheet(err) {
			return nil, ErrTableNotFound
		}
		return nil, err
	}
	return resp.Values, nil
}

func (s *SheetsStorage) ReadTable(ctx context.Context, table models.Table) ([]models.Row, error) {
	values, err := s.values(ctx, table.Name)
	if err != nil {
		if errors.Is(err, ErrTableNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to read sheet %s: %w", table.Name, err)
	}
	return rowsFromValues(values), nil
}

func (s *SheetsStorage) AppendRow(ctx context.Context, table models.Table, row models.Row) error {
	values, err := s.values(ctx, table.Name)
	switch {
	case errors.Is(err, ErrTableNotFound):
		if err := s.addSheet(ctx, table); err != nil {
			return err
		}
		values = nil
	case err != nil:
		return fmt.Errorf("failed to read sheet %s: %w", table.Name, err)
	}

	if values, err = s.upgrade(ctx, table, values); err != nil {
		return err
	}

	header := headerOf(values)
	if len(header) == 0 {
		header = table.Header()
		if err := s.writeHeader(ctx, table); err != nil {
			return err
		}
	}

	cells := make([]interface{}, len(header))
	for i, h := range header {
		cells[i] = row[h]
	}

	_, err = s.srv.Spreadsheets.Values.Append(s.spreadsheetID, table.Name, &sheets.ValueRange{
		Values: [][]interface{}{cells},
	}).ValueInputOption(valueInputRaw).InsertDataOption(insertRows).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to append to %s: %w", table.Name, err)
	}
	return nil
}

func (s *SheetsStorage) addSheet(ctx context.Context, table models.Table) error {
	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{
					Title: table.Name,
					GridProperties: &sheets.GridProperties{
						RowCount:    newSheetRows,
						ColumnCount: newSheetColumn,
					},
				},
			},
		}},
	}
	if _, err := s.srv.Spreadsheets.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to add sheet %s: %w", table.Name, err)
	}
	return nil
}

func (s *SheetsStorage) writeHeader(ctx context.Context, table models.Table) error {
	header := make([]interface{}, len(table.Columns))
	for i, h := range table.Header() {
		header[i] = h
	}
	_, err := s.srv.Spreadsheets.Values.Update(s.spreadsheetID, table.Name+"!A1", &sheets.ValueRange{
		Values: [][]interface{}{header},
	}).ValueInputOption(valueInputRaw).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to write header of %s: %w", table.Name, err)
	}
	return nil
}

// UpdateByKey finds the row through the key column and rewrites a single cell.
// Another writer inserting rows between the lookup and the write can still
// shift the target; the window is one round trip.
func (s *SheetsStorage) UpdateByKey(ctx context.Context, table models.Table, key, column, value string) error {
	values, err := s.values(ctx, table.Name)
	if err != nil {
		return err
	}
	if values, err = s.upgrade(ctx, table, values); err != nil {
		return err
	}

	header := headerOf(values)
	keyIdx, colIdx := -1, -1
	for i, h := range header {
		switch h {
		case table.Key:
			keyIdx = i
		case column:
			colIdx = i
		}
	}
	if column == table.Key {
		colIdx = keyIdx
	}
	if keyIdx < 0 || colIdx < 0 {
		return fmt.Errorf("sheet %s: header lacks %s or %s: %w", table.Name, table.Key, column, ErrNotFound)
	}

	rowNum := 0
	for i, raw := range values[1:] {
		if cell(raw, keyIdx) == key {
			rowNum = i + 2
			break
		}
	}
	if rowNum == 0 {
		return ErrNotFound
	}

	rng := fmt.Sprintf("%s!%s%d", table.Name, columnLetter(colIdx), rowNum)
	_, err = s.srv.Spreadsheets.Values.Update(s.spreadsheetID, rng, &sheets.ValueRange{
		Values: [][]interface{}{{value}},
	}).ValueInputOption(valueInputRaw).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", rng, err)
	}
	return nil
}

// Upgrade brings sheets written with an older header up to the declared
// schema. Sheets that do not exist yet are left alone.
func (s *SheetsStorage) Upgrade(ctx context.Context, tables ...models.Table) error {
	for _, table := range tables {
		values, err := s.values(ctx, table.Name)
		if errors.Is(err, ErrTableNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to read sheet %s: %w", table.Name, err)
		}
		if _, err := s.upgrade(ctx, table, values); err != nil {
			return err
		}
	}
	return nil
}

// upgrade appends declared columns missing from the header after its last
// cell and gives every data row of a GeneratedKey table without a key a new
// one. All writes go out in one batch. The returned values reflect them.
func (s *SheetsStorage) upgrade(ctx context.Context, table models.Table, values [][]interface{}) ([][]interface{}, error) {
	header := headerOf(values)
	if len(header) == 0 {
		return values, nil
	}

	var data []*sheets.ValueRange
	var missing []interface{}
	for _, h := range table.Header() {
		if !slices.Contains(header, h) {
			missing = append(missing, h)
		}
	}
	if len(missing) > 0 {
		data = append(data, &sheets.ValueRange{
			Range:  fmt.Sprintf("%s!%s1", table.Name, columnLetter(len(header))),
			Values: [][]interface{}{missing},
		})
		values[0] = append(values[0][:len(header):len(header)], missing...)
		header = headerOf(values)
	}

	if table.GeneratedKey {
		keyIdx := slices.Index(header, table.Key)
		for i, raw := range values[1:] {
			if isBlank(raw) || cell(raw, keyIdx) != "" {
				continue
			}
			id := uuid.NewString()
			data = append(data, &sheets.ValueRange{
				Range:  fmt.Sprintf("%s!%s%d", table.Name, columnLetter(keyIdx), i+2),
				Values: [][]interface{}{{id}},
			})
			values[i+1] = setCell(raw, keyIdx, id)
		}
	}

	if len(data) == 0 {
		return values, nil
	}
	_, err := s.srv.Spreadsheets.Values.BatchUpdate(s.spreadsheetID, &sheets.BatchUpdateValuesRequest{
		ValueInputOption: valueInputRaw,
		Data:             data,
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to upgrade sheet %s: %w", table.Name, err)
	}
	return values, nil
}

func (s *SheetsStorage) Close() error {
	return nil
}
