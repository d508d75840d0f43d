package scout

import (
	"fmt"
	"time"

	"github.com/honeycarbs/scoutdesk/internal/domain"
)

// Window names a lookback period of a snapshot
type Window string

const (
	Window7Days  Window = "7days"
	Window30Days Window = "30days"
	WindowTotal  Window = "total"
)

// Windows lists the periods in display order
var Windows = []Window{Window7Days, Window30Days, WindowTotal}

const (
	sevenDays  = 7 * 24 * time.Hour
	thirtyDays = 30 * 24 * time.Hour
)

// Counters are the per-window event counts
type Counters struct {
	Received     int `json:"received"`
	Opened       int `json:"opened"`
	Replied      int `json:"replied"`
	Applications int `json:"applications"`
}

// Snapshot is the scout funnel of one candidate as seen at Now. It is derived on
// every request and never stored.
type Snapshot struct {
	CandidateID string    `json:"candidate_id"`
	Now         time.Time `json:"now"`
	Days7       Counters  `json:"7days"`
	Days30      Counters  `json:"30days"`
	Total       Counters  `json:"total"`
}

// Window returns the counters of w
func (s Snapshot) Window(w Window) Counters {
	switch w {
	case Window7Days:
		return s.Days7
	case Window30Days:
		return s.Days30
	default:
		return s.Total
	}
}

// bucket places one timestamp into every window it falls in. Each event is
// checked once against both boundaries, so an event older than seven days can
// still count for the thirty-day window.
type bucket struct {
	days7, days30 time.Time
}

func newBucket(now time.Time) bucket {
	return bucket{days7: now.Add(-sevenDays), days30: now.Add(-thirtyDays)}
}

func (b bucket) add(s *Snapshot, at time.Time, field func(*Counters) *int) {
	*field(&s.Total)++
	if !at.Before(b.days30) {
		*field(&s.Days30)++
	}
	if !at.Before(b.days7) {
		*field(&s.Days7)++
	}
}

func received(c *Counters) *int     { return &c.Received }
func opened(c *Counters) *int       { return &c.Opened }
func replied(c *Counters) *int      { return &c.Replied }
func applications(c *Counters) *int { return &c.Applications }

// Aggregate counts scout messages and applications into the three windows.
// Opens and replies are windowed by their own timestamps, not by sentAt.
func Aggregate(candidateID string, now time.Time, msgs []domain.ScoutMessage, apps []domain.Application) Snapshot {
	s := Snapshot{CandidateID: candidateID, Now: now}
	b := newBucket(now)

	for _, m := range msgs {
		b.add(&s, m.SentAt, received)
		if m.ReadAt != nil {
			b.add(&s, *m.ReadAt, opened)
		}
		if m.RepliedAt != nil {
			b.add(&s, *m.RepliedAt, replied)
		}
	}
	for _, a := range apps {
		b.add(&s, a.CreatedAt, applications)
	}

	return s
}

// Rate is part/whole as a whole percentage rounded half up, 0 when whole is 0
func Rate(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return (200*part + whole) / (2 * whole)
}

// Format renders "part（rate%）", or just the part when there is nothing to divide by
func Format(part, whole int) string {
	if whole <= 0 {
		return fmt.Sprintf("%d", part)
	}
	return fmt.Sprintf("%d（%d%%）", part, Rate(part, whole))
}
