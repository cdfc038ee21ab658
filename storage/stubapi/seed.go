package stubapi

import (
	"fmt"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/masomo-portal/core/school"
)

// SeedDemo fills db with a small demo school.
func SeedDemo(db *DB) error {
	nextMonth := time.Now().AddDate(0, 1, 0).Format("2006-01-02")
	today := time.Now().Format("2006-01-02")

	subjects, err := db.Seed("subjects",
		school.Subject{Name: "Mathematics", Code: null.StringFrom("MATH-101"), IsActive: true},
		school.Subject{Name: "English", Code: null.StringFrom("ENG-101"), IsActive: true},
		school.Subject{Name: "Biology", IsActive: true},
		school.Subject{Name: "Kiswahili", IsActive: false},
	)
	if err != nil {
		return err
	}

	classes, err := db.Seed("classes",
		school.Class{Name: "Form 1", Section: null.StringFrom("A"), SubjectIDs: subjects[:2], IsActive: true},
		school.Class{Name: "Form 2", Section: null.StringFrom("B"), SubjectIDs: subjects[1:], IsActive: true},
	)
	if err != nil {
		return err
	}

	var students []interface{}
	for i := 1; i <= 24; i++ {
		students = append(students, school.Student{
			Name:     fmt.Sprintf("Student %02d", i),
			Email:    fmt.Sprintf("student%02d@masomo.test", i),
			ClassID:  classes[i%len(classes)],
			IsActive: i%7 != 0,
		})
	}
	studentIDs, err := db.Seed("students", students...)
	if err != nil {
		return err
	}

	seeds := []struct {
		key  string
		recs []interface{}
	}{
		{"notifications", []interface{}{
			school.Notification{Title: "Exam", Message: "End of term exams start next week.", Audience: null.StringFrom("all"), IsActive: true},
			school.Notification{Title: "Sports day", Message: "Sports day is on Friday.", Audience: null.StringFrom("students"), IsActive: true},
			school.Notification{Title: "Staff meeting", Message: "Staff meeting in the library at 4pm.", Audience: null.StringFrom("teachers")},
		}},
		{"main-subjects", []interface{}{
			school.MainSubject{Name: "Sciences", Description: null.StringFrom("Biology, chemistry and physics")},
			school.MainSubject{Name: "Languages"},
		}},
		{"faqs", []interface{}{
			school.FAQ{Question: "When does the term start?", Answer: "The first term starts in September.", IsActive: true},
			school.FAQ{Question: "How do I pay school fees?", Answer: "At the bursar's office or by bank transfer.", IsActive: true},
		}},
		{"privacy-policies", []interface{}{
			school.PrivacyPolicy{Title: "Privacy policy", Content: "We only collect the data needed to run the school."},
		}},
		{"terms", []interface{}{
			school.Term{Title: "Terms of use", Content: "The portal is for students, parents and staff of the school."},
		}},
		{"job-postings", []interface{}{
			school.JobPosting{Title: "Mathematics teacher", Location: null.StringFrom("Kinshasa"), Experience: 3, Deadline: nextMonth, Description: "Teach mathematics to forms 1 to 4.", IsActive: true},
		}},
		{"contacts", []interface{}{
			school.Contact{Name: "Parent", Email: "parent@masomo.test", Message: "When is the next parents' meeting?"},
		}},
		{"user-contacts", []interface{}{
			school.UserContact{Name: "Front desk", Email: "info@masomo.test", Phone: null.StringFrom("+243 81 000 0000")},
		}},
		{"calendar-events", []interface{}{
			school.CalendarEvent{Title: "Term starts", Date: today},
			school.CalendarEvent{Title: "Mid-term break", Date: nextMonth, Description: null.StringFrom("No classes")},
		}},
		{"teachers", []interface{}{
			school.Teacher{Name: "Jane Doe", Email: "jane@masomo.test", SubjectID: subjects[0], IsActive: true},
			school.Teacher{Name: "John Doe", Email: "john@masomo.test", SubjectID: subjects[1], IsActive: true},
		}},
		{"attendance", []interface{}{
			school.Attendance{StudentID: studentIDs[0], Date: today, Status: school.Present},
			school.Attendance{StudentID: studentIDs[1], Date: today, Status: school.Late},
		}},
	}
	for _, s := range seeds {
		if _, err := db.Seed(s.key, s.recs...); err != nil {
			return err
		}
	}
	return nil
}
