// Package transform は予約表の生データを正規化済みレコードセットへ変換します
//
// 変換内容:
// - 지점(支店)マーカー列の非空セルを予約ブロックの開始として reservation_id を採番
// - 시간(時刻)列の前方補完と 오전/오후 → AM/PM 正規化後の12時間制パース
// - 数値ステータスコードのラベル変換
// - 予約グループ内の重複行排除(先頭行優先)
// - 핸드폰/생년월일 の引用符ラップ(下流での数値再解釈を防ぐ)
package transform

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/daon-clinic/clinic-sync/internal/model"
	"github.com/daon-clinic/clinic-sync/internal/table"
)

// reservedAtLayout は実行日+時刻セルを合成した文字列のパースレイアウトです
const reservedAtLayout = "2006-01-02 PM 3:04"

// ReservationNormalizer は予約表の正規化を担当します
type ReservationNormalizer struct {
	today  time.Time
	logger *zap.Logger
}

// NewReservationNormalizer は新しいReservationNormalizerを作成します
// todayは予約日時の日付部分として使われます(バッチは Asia/Seoul の当日を渡します)
func NewReservationNormalizer(today time.Time, logger *zap.Logger) *ReservationNormalizer {
	return &ReservationNormalizer{today: today, logger: logger}
}

// Normalize は生テーブルを reservation_id ごとに1件の予約レコードへ正規化します
//
// マーカー列が非空の行で新しい予約グループを開始し、後続のマーカー空行は
// 同じグループに属します。各グループの先頭行が共有列の正とみなされます。
// 対応表にないステータスコードはデータ品質エラーとして返します。
func (n *ReservationNormalizer) Normalize(t *table.Table) ([]model.Reservation, error) {
	t.RenameColumn(model.ColChartNoOld, model.ColChartNo)
	t.RenameColumn(model.ColCategoryOld, model.ColCategory)

	var (
		reservations []model.Reservation
		groupID      int
		seen         = map[int]bool{}
		lastTime     string
	)

	for i := 0; i < t.Len(); i++ {
		if _, ok := t.Value(i, model.ColBranch); ok {
			groupID++
		}

		// 시간列は先頭行にしか入らないため前方補完する
		if v, ok := t.Value(i, model.ColTime); ok {
			lastTime = table.CellString(v)
		}

		// グループの先頭行だけが共有列の値を持つ
		if seen[groupID] {
			continue
		}
		seen[groupID] = true

		chartNo := 0
		if _, ok := t.Value(i, model.ColChartNo); ok {
			parsed, err := n.cellInt(t, i, model.ColChartNo)
			if err != nil {
				return nil, fmt.Errorf("row %d: invalid chart number: %w", i+1, err)
			}
			chartNo = parsed
		}

		status, err := n.statusLabel(t, i)
		if err != nil {
			return nil, fmt.Errorf("reservation %d: %w", groupID, err)
		}

		reservations = append(reservations, model.Reservation{
			ChartNo:       chartNo,
			CustomerName:  n.cellString(t, i, model.ColCustomerName),
			ReservationID: groupID,
			Category:      n.cellString(t, i, model.ColCategory),
			Status:        status,
			ReservedAt:    n.parseReservedAt(groupID, lastTime),
			RegisteredAt:  n.cellString(t, i, model.ColRegisteredAt),
			BirthDate:     quoteWrap(n.cellString(t, i, model.ColBirthDate)),
			Phone:         quoteWrap(n.cellString(t, i, model.ColPhone)),
			Doctor:        n.cellString(t, i, model.ColDoctor),
			Counselor:     n.cellString(t, i, model.ColCounselor),
			Memo:          n.cellString(t, i, model.ColMemo),
		})
	}

	return reservations, nil
}

// parseReservedAt は実行日と時刻セルから予約日時を合成します
// パースできない場合はゼロ値を返し、警告だけ残して処理を続行します
func (n *ReservationNormalizer) parseReservedAt(groupID int, timeCell string) time.Time {
	if timeCell == "" {
		return time.Time{}
	}
	normalized := strings.ReplaceAll(timeCell, "오전", "AM")
	normalized = strings.ReplaceAll(normalized, "오후", "PM")
	composite := n.today.Format("2006-01-02") + " " + strings.TrimSpace(normalized)

	ts, err := time.ParseInLocation(reservedAtLayout, composite, n.today.Location())
	if err != nil {
		n.logger.Warn("failed to parse reservation time, leaving it unset",
			zap.Int("reservation_id", groupID),
			zap.String("time", timeCell),
		)
		return time.Time{}
	}
	return ts
}

// statusLabel は数値ステータスコードをラベルへ変換します
// 空セルは空ラベルに落としますが、対応表にない非空コードはエラーになります
// (欠落ステータスは顧客集計の除外フィルタをすり抜けるため)
func (n *ReservationNormalizer) statusLabel(t *table.Table, row int) (string, error) {
	if _, ok := t.Value(row, model.ColStatus); !ok {
		return "", nil
	}
	code, err := n.cellInt(t, row, model.ColStatus)
	if err != nil {
		return "", fmt.Errorf("invalid status code: %w", err)
	}
	label, ok := model.StatusLabels[code]
	if !ok {
		return "", fmt.Errorf("unknown status code %d", code)
	}
	return label, nil
}

func (n *ReservationNormalizer) cellString(t *table.Table, row int, col string) string {
	v, ok := t.Value(row, col)
	if !ok {
		return ""
	}
	return table.CellString(v)
}

func (n *ReservationNormalizer) cellInt(t *table.Table, row int, col string) (int, error) {
	v, ok := t.Value(row, col)
	if !ok {
		return 0, fmt.Errorf("column %q is empty", col)
	}
	switch c := v.(type) {
	case int:
		return c, nil
	case float64:
		return int(c), nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(c))
		if err != nil {
			return 0, fmt.Errorf("%q is not an integer", c)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("unexpected cell type %T", v)
	}
}

// quoteWrap は書式保持が必要な値を引用符で包みます
// 下流のCSV取り込みで電話番号や生年月日が数値として再解釈されるのを防ぎます
func quoteWrap(s string) string {
	if s == "" {
		return ""
	}
	return `"` + s + `"`
}
