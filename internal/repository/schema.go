package repository

// PropertyType はリモートストアのフィールド型を表します
// スキーマ取得時に判明した型タグで値のエンコード方法を切り替えます
type PropertyType string

const (
	PropertyTitle       PropertyType = "title"
	PropertyRichText    PropertyType = "rich_text"
	PropertyNumber      PropertyType = "number"
	PropertyDate        PropertyType = "date"
	PropertySelect      PropertyType = "select"
	PropertyMultiSelect PropertyType = "multi_select"
	PropertyEmail       PropertyType = "email"
	PropertyURL         PropertyType = "url"
	PropertyPhone       PropertyType = "phone_number"
)

// Schema はフィールド名→宣言型のマッピングです
// 同期実行ごとに取得し直す読み取り専用データです
type Schema map[string]PropertyType

// TitleProperty はタイトル型のフィールド名を返します
// データベースにはタイトル型のフィールドが高々1つしか存在しません
func (s Schema) TitleProperty() (string, bool) {
	for name, t := range s {
		if t == PropertyTitle {
			return name, true
		}
	}
	return "", false
}
