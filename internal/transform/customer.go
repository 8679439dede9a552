package transform

import (
	"sort"
	"strings"

	"github.com/daon-clinic/clinic-sync/internal/model"
)

// summaryTimeSuffix は顧客サマリの予約日時に付与する固定オフセットです
const summaryTimeSuffix = ".000+09:00"

// AggregateCustomers は予約履歴をカルテ番号ごとに1件の顧客サマリへ集約します
//
// 취소/변경/부도 の予約は集計対象から除外します。
// ほとんどの列は初出の値を採用しますが、구분(施術区分)だけは
// 初出順で重複排除した全区分を">"で連結します。
// サマリはカルテ番号の昇順で返します。
func AggregateCustomers(reservations []model.Reservation) []model.CustomerSummary {
	var (
		order      []int
		summaries  = map[int]*model.CustomerSummary{}
		categories = map[int][]string{}
	)

	for _, r := range reservations {
		if model.ExcludedStatuses[r.Status] {
			continue
		}

		s, ok := summaries[r.ChartNo]
		if !ok {
			s = &model.CustomerSummary{
				ChartNo:       r.ChartNo,
				CustomerName:  r.CustomerName,
				ReservationID: r.ReservationID,
				Status:        r.Status,
				ReservedAt:    formatSummaryTime(r),
				RegisteredAt:  r.RegisteredAt,
				BirthDate:     r.BirthDate,
				Phone:         r.Phone,
				Doctor:        r.Doctor,
				Counselor:     r.Counselor,
			}
			summaries[r.ChartNo] = s
			order = append(order, r.ChartNo)
		}

		if r.Category != "" && !contains(categories[r.ChartNo], r.Category) {
			categories[r.ChartNo] = append(categories[r.ChartNo], r.Category)
		}
	}

	sort.Ints(order)
	result := make([]model.CustomerSummary, 0, len(order))
	for _, chartNo := range order {
		s := summaries[chartNo]
		s.Category = strings.Join(categories[chartNo], ">")
		result = append(result, *s)
	}
	return result
}

// formatSummaryTime は予約日時を固定オフセット付きミリ秒精度の文字列へ整形します
func formatSummaryTime(r model.Reservation) string {
	if r.ReservedAt.IsZero() {
		return ""
	}
	return r.ReservedAt.Format("2006-01-02 15:04:05") + summaryTimeSuffix
}

func contains(values []string, v string) bool {
	for _, c := range values {
		if c == v {
			return true
		}
	}
	return false
}
