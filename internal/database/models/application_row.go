package models

import (
	"time"
)

// ApplicationRow mirrors one row of the application sheet in the local
// SQLite store. All sheet cells are kept as strings so the row round-trips
// exactly; parsing into domain values happens at the manager layer.
type ApplicationRow struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	RowNum          int    `gorm:"uniqueIndex;not null" json:"row_num"`
	Company         string `gorm:"size:255" json:"company"`
	Position        string `gorm:"size:255" json:"position"`
	ApplicationDate string `gorm:"size:10" json:"application_date"`
	CurrentStatus   string `gorm:"size:50" json:"current_status"`
	LastUpdated     string `gorm:"size:10" json:"last_updated"`
	EmailCount      string `gorm:"size:10" json:"email_count"`
	LatestEmailDate string `gorm:"size:10" json:"latest_email_date"`
	Notes           string `gorm:"type:text" json:"notes"`
	SourceLink      string `gorm:"size:500" json:"source_link"`
	ThreadIDs       string `gorm:"type:text" json:"thread_ids"`
	MergeTarget     string `gorm:"size:20" json:"merge_target"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToCells returns the row as ordered sheet cells.
func (r *ApplicationRow) ToCells() []string {
	return []string{
		r.Company,
		r.Position,
		r.ApplicationDate,
		r.CurrentStatus,
		r.LastUpdated,
		r.EmailCount,
		r.LatestEmailDate,
		r.Notes,
		r.SourceLink,
		r.ThreadIDs,
		r.MergeTarget,
	}
}

// SetCells fills the row from ordered sheet cells; missing trailing cells
// default to empty.
func (r *ApplicationRow) SetCells(cells []string) {
	cell := func(i int) string {
		if i < len(cells) {
			return cells[i]
		}
		return ""
	}

	r.Company = cell(0)
	r.Position = cell(1)
	r.ApplicationDate = cell(2)
	r.CurrentStatus = cell(3)
	r.LastUpdated = cell(4)
	r.EmailCount = cell(5)
	r.LatestEmailDate = cell(6)
	r.Notes = cell(7)
	r.SourceLink = cell(8)
	r.ThreadIDs = cell(9)
	r.MergeTarget = cell(10)
}

// Cell returns the value of the column with the given index, or "".
func (r *ApplicationRow) Cell(column int) string {
	cells := r.ToCells()
	if column < 0 || column >= len(cells) {
		return ""
	}
	return cells[column]
}
