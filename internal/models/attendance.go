package models

import "time"

// ServiceType names the recurring service kinds a check-in can belong to.
type ServiceType string

const (
	ServiceSunday     ServiceType = "Sunday Service"
	ServiceMidweek    ServiceType = "Midweek Service"
	ServicePrayer     ServiceType = "Prayer Meeting"
	ServiceRevival    ServiceType = "Revival"
	ServiceConference ServiceType = "Conference"
)

// AttendanceRecord is one check-in event, either a scanned member or a
// visitor entered by hand. Records are never edited in place.
type AttendanceRecord struct {
	ID           string      `json:"id"`
	ServiceDate  time.Time   `json:"service_date"`
	ServiceName  ServiceType `json:"service_name"`
	MemberID     *string     `json:"member_id,omitempty"`
	IsVisitor    bool        `json:"is_visitor"`
	VisitorName  string      `json:"visitor_name,omitempty"`
	VisitorPhone string      `json:"visitor_phone,omitempty"`
	Notes        string      `json:"notes,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	DeletedAt    *time.Time  `json:"deleted_at,omitempty"`
}

// Attendee returns a human-readable identifier for the check-in. A
// non-visitor record must carry either a member reference or a name.
func (a AttendanceRecord) Attendee() string {
	if a.VisitorName != "" {
		return a.VisitorName
	}
	if a.MemberID != nil {
		return *a.MemberID
	}
	return ""
}
