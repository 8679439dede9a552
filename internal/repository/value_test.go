package repository

import (
	"reflect"
	"testing"
	"time"
)

func TestCoerce_Text(t *testing.T) {
	for _, pt := range []PropertyType{PropertyTitle, PropertyRichText} {
		got, ok := Coerce("김하늘", pt)
		if !ok {
			t.Fatalf("Coerce(%s) should be present", pt)
		}
		want := []TextBlock{{Text: TextContent{Content: "김하늘"}}}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Coerce(%s) = %v, want %v", pt, got, want)
		}
	}
}

func TestCoerce_Number(t *testing.T) {
	tests := []struct {
		name   string
		in     any
		want   float64
		wantOK bool
	}{
		{"文字列の数値", "42.5", 42.5, true},
		{"整数", 7, 7, true},
		{"float", 1.25, 1.25, true},
		{"パース不能", "abc", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Coerce(tt.in, PropertyNumber)
			if ok != tt.wantOK {
				t.Fatalf("Coerce(%v) ok = %v, want %v", tt.in, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("Coerce(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestCoerce_Date(t *testing.T) {
	tests := []struct {
		name   string
		in     any
		want   string
		wantOK bool
	}{
		{"time.Timeは日付部分のみ", time.Date(2026, 8, 24, 14, 30, 0, 0, time.UTC), "2026-08-24", true},
		{"日付文字列", "2026-08-24", "2026-08-24", true},
		{"日時文字列は日付へ切り詰め", "2026-08-24 14:30:00", "2026-08-24", true},
		{"オフセット付き合成タイムスタンプはそのまま", "2026-08-24 14:30:00.000+09:00", "2026-08-24 14:30:00.000+09:00", true},
		{"パース不能", "いつか", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Coerce(tt.in, PropertyDate)
			if ok != tt.wantOK {
				t.Fatalf("Coerce(%v) ok = %v, want %v", tt.in, ok, tt.wantOK)
			}
			if ok && got.(DateValue).Start != tt.want {
				t.Errorf("Coerce(%v).Start = %q, want %q", tt.in, got.(DateValue).Start, tt.want)
			}
		})
	}
}

func TestCoerce_Select(t *testing.T) {
	got, ok := Coerce("보톡스", PropertySelect)
	if !ok || got.(SelectOption).Name != "보톡스" {
		t.Errorf("Coerce(select) = %v, %v", got, ok)
	}
}

func TestCoerce_MultiSelect(t *testing.T) {
	// 空白はトリム、空トークンは捨てる
	got, ok := Coerce("a, b ,c,,", PropertyMultiSelect)
	if !ok {
		t.Fatal("Coerce(multi_select) should be present")
	}
	want := []SelectOption{{Name: "a"}, {Name: "b"}, {Name: "c"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Coerce(multi_select) = %v, want %v", got, want)
	}
}

func TestCoerce_RawStringTypes(t *testing.T) {
	for _, pt := range []PropertyType{PropertyEmail, PropertyURL, PropertyPhone} {
		got, ok := Coerce("010-1234-5678", pt)
		if !ok || got != "010-1234-5678" {
			t.Errorf("Coerce(%s) = %v, %v", pt, got, ok)
		}
	}
}

func TestCoerce_EmptyIsAbsent(t *testing.T) {
	types := []PropertyType{
		PropertyTitle, PropertyRichText, PropertyNumber, PropertyDate,
		PropertySelect, PropertyMultiSelect, PropertyEmail, PropertyURL, PropertyPhone,
	}
	for _, pt := range types {
		if _, ok := Coerce(nil, pt); ok {
			t.Errorf("Coerce(nil, %s) should be absent", pt)
		}
		if _, ok := Coerce("", pt); ok {
			t.Errorf("Coerce(\"\", %s) should be absent", pt)
		}
	}
}

func TestCoerce_UnknownTypeIsAbsent(t *testing.T) {
	if _, ok := Coerce("value", PropertyType("formula")); ok {
		t.Error("Coerce(unknown type) should be absent")
	}
}
