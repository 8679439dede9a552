package repository

import (
	"strconv"
	"strings"
	"time"

	"github.com/daon-clinic/clinic-sync/internal/table"
)

// TextBlock はtitle/rich_textフィールドのテキスト要素です
type TextBlock struct {
	Text TextContent `json:"text"`
}

// TextContent はテキスト要素の本文です
type TextContent struct {
	Content string `json:"content"`
}

// SelectOption はselect/multi_selectフィールドの選択肢です
type SelectOption struct {
	Name string `json:"name"`
}

// DateValue はdateフィールドの値です
type DateValue struct {
	Start string `json:"start"`
}

// オフセット付きの合成タイムスタンプ(顧客サマリの예약일시)はそのままstartに通す
const offsetTimeLayout = "2006-01-02 15:04:05.000-07:00"

// 自由書式の日付セルに対して試すレイアウト
var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"2006.01.02",
	time.RFC3339,
}

// Coerce は生のセル値を宣言型に応じたリモートストア用の値へ変換します
//
// 空値・パース不能・未知の型はすべて ok=false(フィールド省略)になります。
// 変換は決してエラーを返さず、失敗した値を持つ行も部分的なデータで送信されます。
func Coerce(value any, t PropertyType) (any, bool) {
	if table.IsEmpty(value) {
		return nil, false
	}

	switch t {
	case PropertyTitle, PropertyRichText:
		return []TextBlock{{Text: TextContent{Content: table.CellString(value)}}}, true

	case PropertyNumber:
		return coerceNumber(value)

	case PropertyDate:
		return coerceDate(value)

	case PropertySelect:
		return SelectOption{Name: table.CellString(value)}, true

	case PropertyMultiSelect:
		options := []SelectOption{}
		for _, item := range strings.Split(table.CellString(value), ",") {
			if name := strings.TrimSpace(item); name != "" {
				options = append(options, SelectOption{Name: name})
			}
		}
		return options, true

	case PropertyEmail, PropertyURL, PropertyPhone:
		return table.CellString(value), true
	}

	return nil, false
}

func coerceNumber(value any) (any, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case float64:
		return v, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, false
		}
		return f, true
	}
	return nil, false
}

// coerceDate は日付値を変換します。日付部分のみを残しますが、
// 明示的なオフセット付きで整形済みの合成タイムスタンプ文字列はそのまま通します
func coerceDate(value any) (any, bool) {
	switch v := value.(type) {
	case time.Time:
		return DateValue{Start: v.Format("2006-01-02")}, true
	case string:
		s := strings.TrimSpace(v)
		if _, err := time.Parse(offsetTimeLayout, s); err == nil {
			return DateValue{Start: s}, true
		}
		for _, layout := range dateLayouts {
			if ts, err := time.Parse(layout, s); err == nil {
				return DateValue{Start: ts.Format("2006-01-02")}, true
			}
		}
	}
	return nil, false
}
