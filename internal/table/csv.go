package table

import (
	"encoding/csv"
	"fmt"
	"io"
)

// ReadCSV はヘッダ行付きCSVをテーブルとして読み込みます
// 1行目を列名として扱い、空文字列のセルは空セル(nil)になります
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("csv input is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	t := New(header)
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv line %d: %w", line, err)
		}
		cells := make([]any, len(record))
		for i, c := range record {
			if c == "" {
				cells[i] = nil
				continue
			}
			cells[i] = c
		}
		if err := t.Append(cells); err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}
	}
	return t, nil
}

// WriteCSV はテーブルをUTF-8のカンマ区切りCSVとして書き出します
// 先頭にヘッダ行を出力し、インデックス列は付けません
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	record := make([]string, len(t.Columns))
	for i, row := range t.Rows {
		for j, cell := range row {
			record[j] = CellString(cell)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
