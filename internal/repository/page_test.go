package repository

import (
	"testing"

	"github.com/daon-clinic/clinic-sync/internal/table"
)

func testSchema() Schema {
	return Schema{
		"고객명":  PropertyTitle,
		"차트번호": PropertyNumber,
		"구분":   PropertySelect,
		"핸드폰":  PropertyPhone,
	}
}

func TestBuildPageProperties_SchemaClosure(t *testing.T) {
	tbl := table.New([]string{"고객명", "차트번호", "구분", "메모"})
	_ = tbl.Append([]any{"김하늘", 100, "보톡스", "スキーマにない列"})

	properties := BuildPageProperties(tbl, 0, testSchema(), "고객명")

	// ペイロードはスキーマに存在するフィールドだけを含む
	for name := range properties {
		if _, ok := testSchema()[name]; !ok {
			t.Errorf("payload contains field %q absent from schema", name)
		}
	}
	if _, ok := properties["메모"]; ok {
		t.Error("payload should not contain columns missing from the schema")
	}
}

func TestBuildPageProperties_TitleAlwaysPresent(t *testing.T) {
	tbl := table.New([]string{"고객명", "차트번호"})
	_ = tbl.Append([]any{"김하늘", 100})

	properties := BuildPageProperties(tbl, 0, testSchema(), "고객명")

	title, ok := properties["고객명"].(map[string]any)
	if !ok {
		t.Fatal("title property is missing")
	}
	blocks := title["title"].([]TextBlock)
	if len(blocks) != 1 || blocks[0].Text.Content != "김하늘" {
		t.Errorf("title blocks = %v, want 김하늘", blocks)
	}
}

func TestBuildPageProperties_EmptyTitleCellYieldsEmptyTitle(t *testing.T) {
	// タイトル列が存在して空のとき、他の列の値で代替してはいけない
	tbl := table.New([]string{"차트번호", "고객명"})
	_ = tbl.Append([]any{100, nil})

	properties := BuildPageProperties(tbl, 0, testSchema(), "고객명")

	title, ok := properties["고객명"].(map[string]any)
	if !ok {
		t.Fatal("title property is missing")
	}
	blocks := title["title"].([]TextBlock)
	if len(blocks) != 0 {
		t.Errorf("title blocks = %v, want empty", blocks)
	}
}

func TestBuildPageProperties_TitleFallsBackToFirstValue(t *testing.T) {
	// タイトル列が行に存在しない → 先頭の値で代替する
	tbl := table.New([]string{"차트번호", "구분"})
	_ = tbl.Append([]any{100, "보톡스"})

	properties := BuildPageProperties(tbl, 0, testSchema(), "고객명")

	title := properties["고객명"].(map[string]any)
	blocks := title["title"].([]TextBlock)
	if len(blocks) != 1 || blocks[0].Text.Content != "100" {
		t.Errorf("title blocks = %v, want fallback to first value 100", blocks)
	}
}

func TestBuildPageProperties_TitleFallsBackToLiteralRow(t *testing.T) {
	tbl := table.New([]string{"차트번호"})
	_ = tbl.Append([]any{nil})

	properties := BuildPageProperties(tbl, 0, testSchema(), "고객명")

	title := properties["고객명"].(map[string]any)
	blocks := title["title"].([]TextBlock)
	if len(blocks) != 1 || blocks[0].Text.Content != "Row" {
		t.Errorf("title blocks = %v, want literal Row", blocks)
	}
}

func TestBuildPageProperties_AbsentValuesAreOmitted(t *testing.T) {
	tbl := table.New([]string{"고객명", "차트번호", "구분"})
	_ = tbl.Append([]any{"김하늘", "数値ではない", nil})

	properties := BuildPageProperties(tbl, 0, testSchema(), "고객명")

	// パース不能な数値と空セルはフィールドごと省略される
	if _, ok := properties["차트번호"]; ok {
		t.Error("unparsable number should be omitted")
	}
	if _, ok := properties["구분"]; ok {
		t.Error("empty cell should be omitted")
	}
}

func TestBuildPageProperties_NoTitleProperty(t *testing.T) {
	tbl := table.New([]string{"차트번호"})
	_ = tbl.Append([]any{100})

	properties := BuildPageProperties(tbl, 0, Schema{"차트번호": PropertyNumber}, "")

	if len(properties) != 1 {
		t.Fatalf("len(properties) = %d, want 1", len(properties))
	}
	number := properties["차트번호"].(map[string]any)
	if number["number"] != float64(100) {
		t.Errorf("number = %v, want 100", number["number"])
	}
}
