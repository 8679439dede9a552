// Package table は名前付きカラムを持つ順序付きテーブルを提供します
// アップロードされた予約表の行データを列名→セル値のマッピングとして扱います
package table

import (
	"fmt"
	"time"
)

// Table は列順を保持したままセル値を保持します
// セル値は string / int / float64 / time.Time / nil(空セル) のいずれかです
type Table struct {
	Columns []string
	Rows    [][]any
}

// New は指定された列名を持つ空のテーブルを作成します
func New(columns []string) *Table {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Table{Columns: cols}
}

// Column は列名に対応するインデックスを返します。存在しない場合は-1を返します
func (t *Table) Column(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Append は1行を追加します。セル数が列数と一致しない場合はエラーを返します
func (t *Table) Append(cells []any) error {
	if len(cells) != len(t.Columns) {
		return fmt.Errorf("row has %d cells, table has %d columns", len(cells), len(t.Columns))
	}
	t.Rows = append(t.Rows, cells)
	return nil
}

// Value は指定行・列名のセル値を返します
// 列が存在しない、またはセルが空の場合は ok=false を返します
func (t *Table) Value(row int, col string) (any, bool) {
	i := t.Column(col)
	if i < 0 || row < 0 || row >= len(t.Rows) {
		return nil, false
	}
	v := t.Rows[row][i]
	if IsEmpty(v) {
		return nil, false
	}
	return v, true
}

// RenameColumn は列名を変更します。旧名の列が存在しない場合は何もしません
func (t *Table) RenameColumn(from, to string) {
	if i := t.Column(from); i >= 0 {
		t.Columns[i] = to
	}
}

// Len は行数を返します
func (t *Table) Len() int {
	return len(t.Rows)
}

// IsEmpty はセル値が「データなし」とみなされるかを判定します
func IsEmpty(v any) bool {
	switch s := v.(type) {
	case nil:
		return true
	case string:
		return s == ""
	case time.Time:
		return s.IsZero()
	default:
		return false
	}
}

// CellString はセル値をCSV出力およびタイトル代替値で用いる文字列形式へ変換します
// time.Timeは元システムの出力形式(秒精度)に合わせます
func CellString(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	case time.Time:
		if c.IsZero() {
			return ""
		}
		return c.Format("2006-01-02 15:04:05")
	case int:
		return fmt.Sprintf("%d", c)
	case int64:
		return fmt.Sprintf("%d", c)
	case float64:
		// 整数値は小数点なしで出力する
		if c == float64(int64(c)) {
			return fmt.Sprintf("%d", int64(c))
		}
		return fmt.Sprintf("%g", c)
	default:
		return fmt.Sprintf("%v", c)
	}
}
