package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/roach88/socialgraph/internal/ir"
)

// EventLog is an event sink that appends every event to the events table.
//
// Each appended event takes the next value of the log's own logical clock,
// resumed from the highest stored seq when the log is opened. Emit never
// fails the caller: write errors are logged and the event is dropped.
type EventLog struct {
	store  *Store
	seq    atomic.Int64
	logger *slog.Logger
}

// NewEventLog opens the event log on s.
func NewEventLog(ctx context.Context, s *Store, logger *slog.Logger) (*EventLog, error) {
	last, err := s.LastEventSeq(ctx)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	l := &EventLog{store: s, logger: logger}
	l.seq.Store(last)
	return l, nil
}

// Emit appends ev using a background context.
func (l *EventLog) Emit(ev ir.Event) {
	rec, err := l.Append(context.Background(), ev)
	if err != nil {
		l.logger.Error("event log append failed",
			"kind", ev.Kind(),
			"error", err)
		return
	}
	l.logger.Debug("event appended",
		"kind", rec.Kind,
		"seq", rec.Seq,
		"id", rec.ID)
}

// Append stamps ev with the next seq and writes it.
// Uses ON CONFLICT(id) DO NOTHING so replays of the same record are ignored.
func (l *EventLog) Append(ctx context.Context, ev ir.Event) (ir.EventRecord, error) {
	rec, err := ir.NewEventRecord(ev, l.seq.Add(1))
	if err != nil {
		return ir.EventRecord{}, fmt.Errorf("append event: %w", err)
	}
	if err := l.store.WriteEvent(ctx, rec); err != nil {
		return ir.EventRecord{}, err
	}
	return rec, nil
}

// WriteEvent inserts a stamped event record.
func (s *Store) WriteEvent(ctx context.Context, rec ir.EventRecord) error {
	payload, err := marshalPayload(rec.Payload)
	if err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO events (id, seq, kind, payload)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, rec.ID, rec.Seq, string(rec.Kind), payload)
	if err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	return nil
}

type eventRow struct {
	ID      string `db:"id"`
	Seq     int64  `db:"seq"`
	Kind    string `db:"kind"`
	Payload string `db:"payload"`
}

// ReadEvents returns events with seq > afterSeq, ordered by seq.
// An empty kind matches every kind.
func (s *Store) ReadEvents(ctx context.Context, afterSeq int64, kind ir.EventKind) ([]ir.EventRecord, error) {
	var rows []eventRow
	var err error
	if kind == "" {
		err = s.db.SelectContext(ctx, &rows, `
			SELECT id, seq, kind, payload FROM events
			WHERE seq > ?
			ORDER BY seq ASC, id COLLATE BINARY ASC
		`, afterSeq)
	} else {
		err = s.db.SelectContext(ctx, &rows, `
			SELECT id, seq, kind, payload FROM events
			WHERE seq > ? AND kind = ?
			ORDER BY seq ASC, id COLLATE BINARY ASC
		`, afterSeq, string(kind))
	}
	if err != nil {
		return nil, fmt.Errorf("read events: %w", err)
	}

	records := make([]ir.EventRecord, 0, len(rows))
	for _, r := range rows {
		payload, err := unmarshalPayload(r.Payload)
		if err != nil {
			return nil, fmt.Errorf("read event %s: %w", r.ID, err)
		}
		records = append(records, ir.EventRecord{
			ID:      r.ID,
			Seq:     r.Seq,
			Kind:    ir.EventKind(r.Kind),
			Payload: payload,
		})
	}
	return records, nil
}

// LastEventSeq returns the highest seq in the event log, or 0 when empty.
func (s *Store) LastEventSeq(ctx context.Context) (int64, error) {
	var seq int64
	if err := s.db.GetContext(ctx, &seq, `SELECT COALESCE(MAX(seq), 0) FROM events`); err != nil {
		return 0, fmt.Errorf("get last event seq: %w", err)
	}
	return seq, nil
}
