package models

import "time"

const (
	CadenceWeekly  = "weekly"
	CadenceMonthly = "monthly"
)

// RecurringDeadline is a template from which dated work items are generated.
type RecurringDeadline struct {
	ID         uint      `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	Title      string    `json:"title" gorm:"column:title;type:varchar(255);not null"`
	Cadence    string    `json:"cadence" gorm:"column:cadence;type:varchar(16);not null"`
	Weekday    int       `json:"weekday" gorm:"column:weekday;not null;default:0"`
	DayOfMonth int       `json:"day_of_month" gorm:"column:day_of_month;not null;default:1"`
	LeadDays   int       `json:"lead_days" gorm:"column:lead_days;not null;default:0"`
	SLAHours   int       `json:"sla_hours" gorm:"column:sla_hours;not null;default:0"`
	OwnerID    *uint     `json:"owner_id,omitempty" gorm:"column:owner_id"`
	Active     bool      `json:"active" gorm:"column:active;not null"`
	CreatedAt  time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

func (RecurringDeadline) TableName() string { return "recurring_deadlines" }

// Occurrences returns the due dates (midnight UTC) falling in [from, to].
func (r *RecurringDeadline) Occurrences(from, to time.Time) []time.Time {
	from = truncateDay(from)
	to = truncateDay(to)
	var out []time.Time

	switch r.Cadence {
	case CadenceWeekly:
		offset := (r.Weekday - int(from.Weekday()) + 7) % 7
		for d := from.AddDate(0, 0, offset); !d.After(to); d = d.AddDate(0, 0, 7) {
			out = append(out, d)
		}
	case CadenceMonthly:
		for m := time.Date(from.Year(), from.Month(), 1, 0, 0, 0, 0, time.UTC); !m.After(to); m = m.AddDate(0, 1, 0) {
			day := r.DayOfMonth
			if last := daysIn(m); day > last {
				day = last
			}
			if day < 1 {
				day = 1
			}
			d := time.Date(m.Year(), m.Month(), day, 0, 0, 0, 0, time.UTC)
			if !d.Before(from) && !d.After(to) {
				out = append(out, d)
			}
		}
	}
	return out
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func daysIn(month time.Time) int {
	return time.Date(month.Year(), month.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
