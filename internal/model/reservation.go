package model

import (
	"time"

	"github.com/daon-clinic/clinic-sync/internal/table"
)

// 元システムの予約表で使われる列名
// 旧形式のヘッダ(챠트/분류)は取り込み時に現行名へ変換されます
const (
	ColBranch       = "지점"            // 予約ブロックの開始マーカー
	ColTime         = "시간"            // 予約時刻(先頭行のみ入力される)
	ColChartNo      = "차트번호"          // カルテ番号
	ColChartNoOld   = "챠트"            // 旧ヘッダ
	ColCustomerName = "고객명"           // 顧客名
	ColCategory     = "구분"            // 施術区分
	ColCategoryOld  = "분류"            // 旧ヘッダ
	ColStatus       = "상태"            // 状態コード
	ColReservedAt   = "예약일시"          // 予約日時(実行日+時刻から合成)
	ColRegisteredAt = "등록일시"          // 登録日時
	ColBirthDate    = "생년월일"          // 生年月日
	ColPhone        = "핸드폰"           // 携帯番号
	ColDoctor       = "원장"            // 担当院長
	ColCounselor    = "상담자"           // 相談担当
	ColMemo         = "메모"            // メモ
	ColReservation  = "reservation_id" // 正規化時に採番されるグループキー
)

// StatusLabels は予約表の数値ステータスコードとラベルの対応表です
var StatusLabels = map[int]string{
	1:  "예약",
	3:  "부도",
	4:  "취소",
	5:  "완료",
	7:  "변경",
	9:  "당일",
	10: "결정",
	13: "재상담",
	16: "동행",
	17: "비대면",
	21: "모델",
}

// ExcludedStatuses は顧客サマリ集計から除外されるステータスです
// 취소(キャンセル)・변경(変更)・부도(無断キャンセル)の予約は履歴に含めません
var ExcludedStatuses = map[string]bool{
	"취소": true,
	"변경": true,
	"부도": true,
}

// Reservation は正規化済みの予約1件を表します
// ReservationIDごとに必ず1件だけ存在します
type Reservation struct {
	ChartNo       int
	CustomerName  string
	ReservationID int
	Category      string
	Status        string
	ReservedAt    time.Time
	RegisteredAt  string
	BirthDate     string
	Phone         string
	Doctor        string
	Counselor     string
	Memo          string
}

// ReservationColumns は予約レコードセットの出力列順です
var ReservationColumns = []string{
	ColChartNo, ColCustomerName, ColReservation, ColCategory, ColStatus,
	ColReservedAt, ColRegisteredAt, ColBirthDate, ColPhone,
	ColDoctor, ColCounselor, ColMemo,
}

// ReservationsToTable は予約レコードをCSV出力・同期用のテーブルへ変換します
func ReservationsToTable(reservations []Reservation) *table.Table {
	t := table.New(ReservationColumns)
	for _, r := range reservations {
		_ = t.Append([]any{
			r.ChartNo, emptyAsNil(r.CustomerName), r.ReservationID,
			emptyAsNil(r.Category), emptyAsNil(r.Status), timeAsNil(r.ReservedAt),
			emptyAsNil(r.RegisteredAt), emptyAsNil(r.BirthDate), emptyAsNil(r.Phone),
			emptyAsNil(r.Doctor), emptyAsNil(r.Counselor), emptyAsNil(r.Memo),
		})
	}
	return t
}

func emptyAsNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func timeAsNil(ts time.Time) any {
	if ts.IsZero() {
		return nil
	}
	return ts
}
