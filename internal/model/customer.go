package model

import "github.com/daon-clinic/clinic-sync/internal/table"

// CustomerSummary はカルテ番号ごとに1件へ集約された顧客サマリです
// Categoryは来院履歴の施術区分を初出順に">"で連結したもの、
// ReservedAtは固定オフセット付きのミリ秒精度文字列です
type CustomerSummary struct {
	ChartNo       int
	CustomerName  string
	ReservationID int
	Category      string
	Status        string
	ReservedAt    string
	RegisteredAt  string
	BirthDate     string
	Phone         string
	Doctor        string
	Counselor     string
}

// CustomerColumns は顧客サマリレコードセットの出力列順です
var CustomerColumns = []string{
	ColChartNo, ColCustomerName, ColReservation, ColCategory, ColStatus,
	ColReservedAt, ColRegisteredAt, ColBirthDate, ColPhone,
	ColDoctor, ColCounselor,
}

// CustomersToTable は顧客サマリをCSV出力・同期用のテーブルへ変換します
func CustomersToTable(customers []CustomerSummary) *table.Table {
	t := table.New(CustomerColumns)
	for _, c := range customers {
		_ = t.Append([]any{
			c.ChartNo, emptyAsNil(c.CustomerName), c.ReservationID,
			emptyAsNil(c.Category), emptyAsNil(c.Status), emptyAsNil(c.ReservedAt),
			emptyAsNil(c.RegisteredAt), emptyAsNil(c.BirthDate), emptyAsNil(c.Phone),
			emptyAsNil(c.Doctor), emptyAsNil(c.Counselor),
		})
	}
	return t
}
