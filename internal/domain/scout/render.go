package scout

import "time"

// Row labels of the rendered table
const (
	RowReceived     = "received"
	RowOpened       = "opened"
	RowReplied      = "replied"
	RowApplications = "applications"
)

// Cell is one rendered value; Rate is nil for the received row and whenever
// nothing was received in the window
type Cell struct {
	Count   int    `json:"count"`
	Rate    *int   `json:"rate,omitempty"`
	Display string `json:"display"`
}

// Row is one metric across the three windows
type Row struct {
	Metric string          `json:"metric"`
	Cells  map[Window]Cell `json:"cells"`
}

// Table is the display form of a Snapshot: four rows by three windows
type Table struct {
	CandidateID string `json:"candidate_id"`
	GeneratedAt string `json:"generated_at"`
	Rows        []Row  `json:"rows"`
}

// Render builds the display table; rates are computed here and only here
func Render(s Snapshot) Table {
	t := Table{
		CandidateID: s.CandidateID,
		GeneratedAt: s.Now.UTC().Format(time.RFC3339),
	}

	metrics := []struct {
		name  string
		field func(*Counters) *int
	}{
		{RowReceived, received},
		{RowOpened, opened},
		{RowReplied, replied},
		{RowApplications, applications},
	}

	for _, m := range metrics {
		row := Row{Metric: m.name, Cells: make(map[Window]Cell, len(Windows))}
		for _, w := range Windows {
			c := s.Window(w)
			part := *m.field(&c)
			cell := Cell{Count: part}

			if m.name == RowReceived {
				cell.Display = Format(part, 0)
			} else {
				cell.Display = Format(part, c.Received)
				if c.Received > 0 {
					r := Rate(part, c.Received)
					cell.Rate = &r
				}
			}
			row.Cells[w] = cell
		}
		t.Rows = append(t.Rows, row)
	}

	return t
}
