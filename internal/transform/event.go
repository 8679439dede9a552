package transform

import "github.com/daon-clinic/clinic-sync/internal/model"

// ExpandEvents は各予約をライフサイクルステージ語彙と直積展開します
//
// 予約1件につきステージ順(내원→진행→완료→퇴원)で4件のイベントを生成し、
// event_idは予約ごとに1始まりの連番になります。
// イベント時刻系のフィールドは実来院時に外部プロセスが記録するため未設定のままです。
func ExpandEvents(reservations []model.Reservation) []model.LifecycleEvent {
	events := make([]model.LifecycleEvent, 0, len(reservations)*len(model.LifecycleStages))
	for _, r := range reservations {
		for i, stage := range model.LifecycleStages {
			events = append(events, model.LifecycleEvent{
				ChartNo:       r.ChartNo,
				CustomerName:  r.CustomerName,
				ReservationID: r.ReservationID,
				Category:      r.Category,
				Status:        r.Status,
				ReservedAt:    r.ReservedAt,
				RegisteredAt:  r.RegisteredAt,
				EventID:       i + 1,
				EventName:     stage,
			})
		}
	}
	return events
}
