package audit

import (
	"context"

	"github.com/rs/zerolog"

	"semainier/internal/events"
)

// Recorder returns an event handler that writes every planner event to the
// trail. Wire it to the bus for each event type worth keeping.
func Recorder(db *DB, logger *zerolog.Logger) events.Handler {
	return func(event events.Event) error {
		rec := Record{
			Op:        event.Type,
			Shop:      event.Shop,
			WeekStart: event.WeekStart,
			Employee:  event.Employee,
			Dates:     event.Dates,
			Detail:    event.Detail,
			CreatedAt: event.CreatedAt,
		}
		if err := db.Insert(context.Background(), rec); err != nil {
			// The trail is best-effort; a failed insert never blocks the operation.
			logger.Error().Err(err).Str("op", event.Type).Msg("audit insert failed")
			return err
		}
		return nil
	}
}

// SubscribeAll wires the recorder to every planner event type.
func SubscribeAll(bus *events.Bus, db *DB, logger *zerolog.Logger) {
	handler := Recorder(db, logger)
	for _, eventType := range []string{
		events.TypeSelectionChanged,
		events.TypeDayPasted,
		events.TypeWeekPasted,
		events.TypeWeekReset,
		events.TypeGridChanged,
		events.TypeEmployeeRemoved,
	} {
		bus.Subscribe(eventType, handler)
	}
}
