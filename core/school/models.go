// Package school holds the records served by the school API and the list
// configuration (endpoint, form fields, columns, toggle shape) of each of them.
package school

import (
	"github.com/volatiletech/null/v8"
)

type Notification struct {
	ID       string      `json:"_id,omitempty"`
	Title    string      `json:"title"`
	Message  string      `json:"message"`
	Audience null.String `json:"audience"`
	IsActive bool        `json:"isActive"`
}

type Subject struct {
	ID       string      `json:"_id,omitempty"`
	Name     string      `json:"name"`
	Code     null.String `json:"code"`
	IsActive bool        `json:"isActive"`
}

type MainSubject struct {
	ID          string      `json:"_id,omitempty"`
	Name        string      `json:"name"`
	Description null.String `json:"description"`
}

type Class struct {
	ID         string      `json:"_id,omitempty"`
	Name       string      `json:"name"`
	Section    null.String `json:"section"`
	SubjectIDs []string    `json:"subjects"`
	IsActive   bool        `json:"isActive"`
}

type FAQ struct {
	ID       string `json:"_id,omitempty"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	IsActive bool   `json:"isActive"`
}

type PrivacyPolicy struct {
	ID      string `json:"_id,omitempty"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

type Term struct {
	ID      string `json:"_id,omitempty"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

type JobPosting struct {
	ID          string      `json:"_id,omitempty"`
	Title       string      `json:"title"`
	Location    null.String `json:"location"`
	Experience  int         `json:"experience"` // years
	Deadline    string      `json:"deadline"`   // YYYY-MM-DD
	Description string      `json:"description"`
	IsActive    bool        `json:"isActive"`
}

// Contact is a message left through the public contact form.
type Contact struct {
	ID      string      `json:"_id,omitempty"`
	Name    string      `json:"name"`
	Email   string      `json:"email"`
	Phone   null.String `json:"phone"`
	Message string      `json:"message"`
}

type Student struct {
	ID         string      `json:"_id,omitempty"`
	Name       string      `json:"name"`
	Email      string      `json:"email"`
	ClassID    string      `json:"class"`
	RollNumber null.String `json:"rollNumber"`
	IsActive   bool        `json:"isActive"`
}

// UserContact is an entry of the school's contact directory.
type UserContact struct {
	ID      string      `json:"_id,omitempty"`
	Name    string      `json:"name"`
	Email   string      `json:"email"`
	Phone   null.String `json:"phone"`
	Address null.String `json:"address"`
}

type CalendarEvent struct {
	ID          string      `json:"_id,omitempty"`
	Title       string      `json:"title"`
	Date        string      `json:"date"` // YYYY-MM-DD
	Description null.String `json:"description"`
}

type Teacher struct {
	ID        string      `json:"_id,omitempty"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Phone     null.String `json:"phone"`
	SubjectID string      `json:"subject"`
	IsActive  bool        `json:"isActive"`
}

type AttendanceStatus string

const (
	Present AttendanceStatus = "present"
	Absent  AttendanceStatus = "absent"
	Late    AttendanceStatus = "late"
)

type Attendance struct {
	ID        string           `json:"_id,omitempty"`
	StudentID string           `json:"student"`
	Date      string           `json:"date"` // YYYY-MM-DD
	Status    AttendanceStatus `json:"status"`
}
