package bbtemplar

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/xuri/excelize/v2"
)

var rxNonWord = regexp.MustCompile(`\W+`)

// sheetKey приводит имя листа или заголовок колонки к виду \w+, чтобы на него
// можно было сослаться из <!--LOOP:name--> и {path}.
func sheetKey(s string) string {
	return strings.Trim(rxNonWord.ReplaceAllString(strings.TrimSpace(s), "_"), "_")
}

// ContextFromXLSX читает книгу Excel: каждый лист становится массивом строк
// под ключом с именем листа, первая строка листа — заголовки полей.
//
//	| name      | platform |      →  {"Files": [{"name": "app.exe", "platform": "win"}, ...]}
//	| app.exe   | win      |
func ContextFromXLSX(path string) (Context, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ctx := Context{}
	for idx, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("чтение листа %s: %w", sheet, err)
		}
		key := sheetKey(sheet)
		if key == "" {
			// кириллица и прочее вне \w в имя цикла не попадут
			key = fmt.Sprintf("Sheet%d", idx+1)
		}
		ctx[key] = sheetRecords(rows)
	}
	return ctx, nil
}

func sheetRecords(rows [][]string) []any {
	records := []any{}
	if len(rows) == 0 {
		return records
	}
	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		k := sheetKey(h)
		if k == "" {
			// безымянная колонка: адресуем по букве, как в Excel (A, B, ...)
			k, _ = excelize.ColumnNumberToName(i + 1)
		}
		headers[i] = k
	}
	for _, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		rec := make(map[string]any, len(headers))
		for i, h := range headers {
			if i < len(row) {
				rec[h] = row[i]
			} else {
				rec[h] = ""
			}
		}
		// ячейки правее заголовков тоже не теряем
		for i := len(headers); i < len(row); i++ {
			name, _ := excelize.ColumnNumberToName(i + 1)
			rec[name] = row[i]
		}
		records = append(records, rec)
	}
	return records
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
