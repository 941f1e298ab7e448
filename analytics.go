package main

import (
	"database/sql"
	"log"
	"sync"
	"time"
)

// Event types for analytics tracking
const (
	EvtMatchStart = "match_start"
	EvtMatchEnd   = "match_end"
	EvtGoal       = "goal"
)

// AnalyticsEvent represents a single trackable event
type AnalyticsEvent struct {
	Type      string
	RoomID    string
	Seat      int    // -1 when not tied to a seat
	Data      string // JSON metadata (optional)
	Timestamp time.Time
}

// Analytics handles event tracking with batched background writes
type Analytics struct {
	db       *DB
	events   chan AnalyticsEvent
	stop     chan struct{}
	wg       sync.WaitGroup
	flushInt time.Duration
}

// NewAnalytics creates and starts the analytics background writer
func NewAnalytics(db *DB) *Analytics {
	a := &Analytics{
		db:       db,
		events:   make(chan AnalyticsEvent, 1024),
		stop:     make(chan struct{}),
		flushInt: 5 * time.Second,
	}
	a.wg.Add(1)
	go a.writer()
	return a
}

// Track enqueues an event for async persistence (non-blocking)
func (a *Analytics) Track(evtType, roomID string, seat int, data string) {
	if a == nil {
		return
	}
	select {
	case a.events <- AnalyticsEvent{
		Type:      evtType,
		RoomID:    roomID,
		Seat:      seat,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}:
	default:
		// Channel full, drop the event
	}
}

// Stop gracefully shuts down the analytics writer, flushing pending events
func (a *Analytics) Stop() {
	close(a.stop)
	a.wg.Wait()
}

// writer is the background goroutine that batches and writes events to DB
func (a *Analytics) writer() {
	defer a.wg.Done()

	batch := make([]AnalyticsEvent, 0, 64)
	ticker := time.NewTicker(a.flushInt)
	defer ticker.Stop()

	for {
		select {
		case evt := <-a.events:
			batch = append(batch, evt)
			// Flush immediately if batch is large
			if len(batch) >= 50 {
				a.flush(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				a.flush(batch)
				batch = batch[:0]
			}
		case <-a.stop:
			// Drain remaining events without closing the channel under live senders
			for {
				select {
				case evt := <-a.events:
					batch = append(batch, evt)
					continue
				default:
				}
				break
			}
			if len(batch) > 0 {
				a.flush(batch)
			}
			return
		}
	}
}

// flush writes a batch of events to the database
func (a *Analytics) flush(events []AnalyticsEvent) {
	if a.db == nil || len(events) == 0 {
		return
	}
	tx, err := a.db.conn.Begin()
	if err != nil {
		log.Printf("analytics: begin tx error: %v", err)
		return
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO analytics_events (event_type, room_id, seat, data, created_at) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		log.Printf("analytics: prepare error: %v", err)
		return
	}
	defer stmt.Close()

	for _, evt := range events {
		seat := sql.NullInt64{Int64: int64(evt.Seat), Valid: evt.Seat >= 0}
		data := sql.NullString{String: evt.Data, Valid: evt.Data != ""}
		_, err := stmt.Exec(evt.Type, evt.RoomID, seat, data, evt.Timestamp.Format(time.RFC3339))
		if err != nil {
			log.Printf("analytics: insert error: %v", err)
		}
	}
	if err := tx.Commit(); err != nil {
		log.Printf("analytics: commit error: %v", err)
	}
}

// --- Query methods for the API ---

// EventCounts returns counts of each event type for the last N days
func (a *Analytics) EventCounts(days int) (map[string]int, error) {
	result := make(map[string]int)
	if a == nil || a.db == nil {
		return result, nil
	}
	rows, err := a.db.conn.Query(`
		SELECT event_type, COUNT(*) FROM analytics_events
		WHERE created_at >= date('now', '-' || ? || ' days')
		GROUP BY event_type ORDER BY COUNT(*) DESC
	`, days)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var evtType string
		var count int
		if err := rows.Scan(&evtType, &count); err != nil {
			continue
		}
		result[evtType] = count
	}
	return result, rows.Err()
}

// MatchStats aggregates finished matches for the last N days
func (a *Analytics) MatchStats(days int) (MatchAnalytics, error) {
	var m MatchAnalytics
	if a == nil || a.db == nil {
		return m, nil
	}
	var avgDur, avgGoals sql.NullFloat64
	err := a.db.conn.QueryRow(`
		SELECT COUNT(*),
			AVG(CAST(json_extract(data, '$.duration') AS REAL)),
			AVG(CAST(json_extract(data, '$.goals') AS REAL))
		FROM analytics_events
		WHERE event_type = ? AND json_valid(data)
			AND created_at >= date('now', '-' || ? || ' days')
	`, EvtMatchEnd, days).Scan(&m.Count, &avgDur, &avgGoals)
	if err != nil {
		return m, err
	}
	m.AvgDuration = avgDur.Float64
	m.AvgGoals = avgGoals.Float64
	return m, nil
}

// TopScoringSeats returns goal counts per seat for the last N days, most first
func (a *Analytics) TopScoringSeats(days int) ([]ScorerAnalytic, error) {
	if a == nil || a.db == nil {
		return nil, nil
	}
	rows, err := a.db.conn.Query(`
		SELECT seat, COUNT(*) FROM analytics_events
		WHERE event_type = ? AND seat IS NOT NULL
			AND created_at >= date('now', '-' || ? || ' days')
		GROUP BY seat ORDER BY COUNT(*) DESC, seat
	`, EvtGoal, days)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []ScorerAnalytic
	for rows.Next() {
		var s ScorerAnalytic
		if err := rows.Scan(&s.Seat, &s.Goals); err != nil {
			continue
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// MatchAnalytics holds aggregated match statistics
type MatchAnalytics struct {
	Count       int     `json:"count"`
	AvgDuration float64 `json:"avg_duration"`
	AvgGoals    float64 `json:"avg_goals"`
}

// ScorerAnalytic holds the goal count for one seat
type ScorerAnalytic struct {
	Seat  int `json:"seat"`
	Goals int `json:"goals"`
}
