package repository

import (
	"github.com/daon-clinic/clinic-sync/internal/table"
)

// BuildPageProperties は1行分のデータからスキーマ準拠のページプロパティを構築します
//
// タイトルフィールドが判明している場合は必ず埋めます:
// 行に同名の列があればその値(空セルなら空タイトル)、列自体がなければ
// 行の先頭の値、それもなければ"Row"を使います。
// それ以外のフィールドは列名の完全一致だけで突き合わせ、変換できた値のみ含めます。
// スキーマにない列は無視されるため、ペイロードがスキーマ外のフィールドを持つことはありません。
func BuildPageProperties(t *table.Table, row int, schema Schema, titleProperty string) map[string]any {
	properties := map[string]any{}

	if titleProperty != "" {
		blocks := []TextBlock{}
		if coerced, ok := Coerce(titleValue(t, row, titleProperty), PropertyTitle); ok {
			blocks = coerced.([]TextBlock)
		}
		properties[titleProperty] = map[string]any{string(PropertyTitle): blocks}
	}

	for _, col := range t.Columns {
		if col == titleProperty {
			continue
		}
		propertyType, ok := schema[col]
		if !ok {
			continue
		}
		value, ok := t.Value(row, col)
		if !ok {
			continue
		}
		coerced, ok := Coerce(value, propertyType)
		if !ok {
			continue
		}
		properties[col] = map[string]any{string(propertyType): coerced}
	}

	return properties
}

// titleValue はタイトルフィールドに入れる値を決めます
// 同名列が行に存在する場合はセルが空でもその値を使い、代替値には落ちません
func titleValue(t *table.Table, row int, titleProperty string) any {
	if v, ok := t.Value(row, titleProperty); ok {
		return v
	}
	if t.Column(titleProperty) >= 0 {
		return nil
	}
	if len(t.Columns) > 0 {
		if v, ok := t.Value(row, t.Columns[0]); ok {
			return v
		}
	}
	return "Row"
}
