package model

import (
	"time"

	"github.com/daon-clinic/clinic-sync/internal/table"
)

// LifecycleStages は予約作成後に通過するステージの固定語彙です
// この並び順がそのままevent_idの採番順(1..4)になります
var LifecycleStages = []string{"내원", "진행", "완료", "퇴원"}

// LifecycleEvent は予約1件×ステージ1つに対応するイベントレコードです
// イベント時刻系のフィールドは実来院時に外部プロセスが埋めるため、生成時点では未設定です
type LifecycleEvent struct {
	ChartNo       int
	CustomerName  string
	ReservationID int
	Category      string
	Status        string
	ReservedAt    time.Time
	RegisteredAt  string
	EventID       int
	EventName     string
	EventTime     *time.Time
	EventExpTime  *time.Time
	EventParams   *string
}

// EventColumns はイベントレコードセットの出力列順です
var EventColumns = []string{
	ColChartNo, ColCustomerName, ColReservation, ColCategory, ColStatus,
	ColReservedAt, ColRegisteredAt,
	"event_id", "event_name", "event_time", "event_exp_time", "event_params",
}

// EventsToTable はイベントレコードをCSV出力・同期用のテーブルへ変換します
func EventsToTable(events []LifecycleEvent) *table.Table {
	t := table.New(EventColumns)
	for _, e := range events {
		_ = t.Append([]any{
			e.ChartNo, emptyAsNil(e.CustomerName), e.ReservationID,
			emptyAsNil(e.Category), emptyAsNil(e.Status), timeAsNil(e.ReservedAt),
			emptyAsNil(e.RegisteredAt),
			e.EventID, e.EventName,
			timePtrAsNil(e.EventTime), timePtrAsNil(e.EventExpTime), stringPtrAsNil(e.EventParams),
		})
	}
	return t
}

func timePtrAsNil(ts *time.Time) any {
	if ts == nil {
		return nil
	}
	return *ts
}

func stringPtrAsNil(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
