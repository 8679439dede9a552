package transform

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/daon-clinic/clinic-sync/internal/model"
	"github.com/daon-clinic/clinic-sync/internal/table"
)

// Kind は生の予約表から導出されるレコードセットの種別です
type Kind string

const (
	KindReservations Kind = "reservations"
	KindEvents       Kind = "events"
	KindCustomers    Kind = "customers"
)

// ParseKind は文字列をKindへ変換します
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindReservations, KindEvents, KindCustomers:
		return Kind(s), nil
	}
	return "", fmt.Errorf("unknown record set kind %q", s)
}

// BuildRecordSet は生テーブルを正規化し、指定された種別のレコードセットテーブルを返します
func BuildRecordSet(t *table.Table, kind Kind, today time.Time, logger *zap.Logger) (*table.Table, error) {
	normalizer := NewReservationNormalizer(today, logger)
	reservations, err := normalizer.Normalize(t)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize reservations: %w", err)
	}

	switch kind {
	case KindReservations:
		return model.ReservationsToTable(reservations), nil
	case KindEvents:
		return model.EventsToTable(ExpandEvents(reservations)), nil
	case KindCustomers:
		return model.CustomersToTable(AggregateCustomers(reservations)), nil
	}
	return nil, fmt.Errorf("unknown record set kind %q", kind)
}
