package school

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/masomo-portal/core"
	"github.com/trezcool/masomo-portal/core/form"
	"github.com/trezcool/masomo-portal/core/listing"
)

var (
	titleRegex = regexp.MustCompile(`^[\p{L}0-9 .,:;'!?()&/-]+$`)
	titleText  = "{0} may only contain letters, digits and basic punctuation"

	nameRegex = regexp.MustCompile(`^[\p{L}0-9 .,'&()-]+$`)
	nameText  = "{0} may only contain letters, digits, spaces and . , ' & ( ) -"

	phoneRegex = regexp.MustCompile(`^\+?[0-9 ()-]{7,20}$`)
	phoneText  = "{0} must be a valid phone number"

	codeRegex = regexp.MustCompile(`^[A-Z0-9-]+$`)
	codeText  = "{0} may only contain uppercase letters, digits and dashes"
)

// reusable fields

func nameField(label string, min, max int) form.Field {
	return form.Field{
		Name:  "name",
		Label: label,
		Type:  form.Text,
		Rules: form.Rules{Required: true, MinLen: min, MaxLen: max, Pattern: nameRegex, PatternText: nameText},
	}
}

func titleField(max int) form.Field {
	return form.Field{
		Name:  "title",
		Label: "Title",
		Type:  form.Text,
		Rules: form.Rules{Required: true, MinLen: 3, MaxLen: max, Pattern: titleRegex, PatternText: titleText},
	}
}

func emailField(required bool) form.Field {
	return form.Field{
		Name:  "email",
		Label: "Email",
		Type:  form.Email,
		Rules: form.Rules{Required: required, MaxLen: 100},
	}
}

var (
	phoneField = form.Field{
		Name:        "phone",
		Label:       "Phone",
		Type:        form.Text,
		Placeholder: "+243 81 000 0000",
		Rules:       form.Rules{Pattern: phoneRegex, PatternText: phoneText},
	}
	activeField = form.Field{Name: "isActive", Label: "Active", Type: form.Checkbox, Default: "true"}
)

// conversions between records and drafts

func optional(s string) null.String { return null.NewString(s, s != "") }

func boolValue(b bool) string { return strconv.FormatBool(b) }

func splitIDs(s string) []string {
	var ids []string
	for _, id := range strings.Split(s, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func status(active bool) string {
	if active {
		return "Active"
	}
	return "Inactive"
}

func col[T any](header string, value func(T) string) listing.Column[T] {
	return listing.Column[T]{Header: header, Value: func(rec T, _ listing.Lookup) string { return value(rec) }}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

var Notifications = listing.Entity[Notification]{
	Key:    "notifications",
	Name:   "Notification",
	Plural: "Notifications",
	Path:   "/notifications",
	Fields: []form.Field{
		titleField(100),
		{Name: "message", Label: "Message", Type: form.TextArea, Rules: form.Rules{Required: true, MinLen: 5, MaxLen: 1000}},
		{
			Name:    "audience",
			Label:   "Audience",
			Type:    form.Select,
			Default: "all",
			Options: []form.Option{{Value: "all", Label: "Everyone"}, {Value: "students", Label: "Students"}, {Value: "teachers", Label: "Teachers"}},
		},
		activeField,
	},
	Columns: []listing.Column[Notification]{
		col("Title", func(n Notification) string { return n.Title }),
		col("Message", func(n Notification) string { return truncate(n.Message, 80) }),
		col("Audience", func(n Notification) string { return n.Audience.String }),
		col("Status", func(n Notification) string { return status(n.IsActive) }),
	},
	ID:     func(n Notification) string { return n.ID },
	WithID: func(n Notification, id string) Notification { n.ID = id; return n },
	Title:  func(n Notification) string { return n.Title },
	Values: func(n Notification) form.Values {
		return form.Values{"title": n.Title, "message": n.Message, "audience": n.Audience.String, "isActive": boolValue(n.IsActive)}
	},
	Build: func(v form.Values) (Notification, error) {
		return Notification{Title: v["title"], Message: v["message"], Audience: optional(v["audience"]), IsActive: v["isActive"] == "true"}, nil
	},
	Toggle:     listing.ToggleEndpoint,
	Active:     func(n Notification) bool { return n.IsActive },
	WithActive: func(n Notification, active bool) Notification { n.IsActive = active; return n },
}

var Subjects = listing.Entity[Subject]{
	Key:    "subjects",
	Name:   "Subject",
	Plural: "Subjects",
	Path:   "/subjects",
	Fields: []form.Field{
		nameField("Name", 2, 50),
		{Name: "code", Label: "Code", Type: form.Text, Placeholder: "MATH-101", Rules: form.Rules{MaxLen: 20, Pattern: codeRegex, PatternText: codeText}},
		activeField,
	},
	Columns: []listing.Column[Subject]{
		col("Name", func(s Subject) string { return s.Name }),
		col("Code", func(s Subject) string { return s.Code.String }),
		col("Status", func(s Subject) string { return status(s.IsActive) }),
	},
	ID:     func(s Subject) string { return s.ID },
	WithID: func(s Subject, id string) Subject { s.ID = id; return s },
	Title:  func(s Subject) string { return s.Name },
	Values: func(s Subject) form.Values {
		return form.Values{"name": s.Name, "code": s.Code.String, "isActive": boolValue(s.IsActive)}
	},
	Build: func(v form.Values) (Subject, error) {
		return Subject{Name: v["name"], Code: optional(v["code"]), IsActive: v["isActive"] == "true"}, nil
	},
	Toggle:        listing.ToggleEndpoint,
	ConfirmToggle: true,
	Active:        func(s Subject) bool { return s.IsActive },
	WithActive:    func(s Subject, active bool) Subject { s.IsActive = active; return s },
}

var MainSubjects = listing.Entity[MainSubject]{
	Key:    "main-subjects",
	Name:   "Main subject",
	Plural: "Main subjects",
	Path:   "/main-subjects",
	Fields: []form.Field{
		nameField("Name", 2, 50),
		{Name: "description", Label: "Description", Type: form.TextArea, Rules: form.Rules{MaxLen: 500}},
	},
	Columns: []listing.Column[MainSubject]{
		col("Name", func(s MainSubject) string { return s.Name }),
		col("Description", func(s MainSubject) string { return truncate(s.Description.String, 80) }),
	},
	ID:     func(s MainSubject) string { return s.ID },
	WithID: func(s MainSubject, id string) MainSubject { s.ID = id; return s },
	Title:  func(s MainSubject) string { return s.Name },
	Values: func(s MainSubject) form.Values {
		return form.Values{"name": s.Name, "description": s.Description.String}
	},
	Build: func(v form.Values) (MainSubject, error) {
		return MainSubject{Name: v["name"], Description: optional(v["description"])}, nil
	},
}

var Classes = listing.Entity[Class]{
	Key:    "classes",
	Name:   "Class",
	Plural: "Classes",
	Path:   "/classes",
	Fields: []form.Field{
		nameField("Name", 2, 30),
		{Name: "section", Label: "Section", Type: form.Text, Rules: form.Rules{MaxLen: 10, Pattern: nameRegex, PatternText: nameText}},
		{Name: "subjects", Label: "Subjects", Type: form.Text, Help: "Subject ids, comma separated"},
		activeField,
	},
	Columns: []listing.Column[Class]{
		col("Name", func(c Class) string { return c.Name }),
		col("Section", func(c Class) string { return c.Section.String }),
		{Header: "Subjects", Value: func(c Class, lookup listing.Lookup) string {
			names := make([]string, 0, len(c.SubjectIDs))
			for _, id := range c.SubjectIDs {
				names = append(names, lookup("subjects", id))
			}
			return strings.Join(names, ", ")
		}},
		col("Status", func(c Class) string { return status(c.IsActive) }),
	},
	References: []string{"subjects"},
	ID:         func(c Class) string { return c.ID },
	WithID:     func(c Class, id string) Class { c.ID = id; return c },
	Title:      func(c Class) string { return c.Name },
	Values: func(c Class) form.Values {
		return form.Values{"name": c.Name, "section": c.Section.String, "subjects": strings.Join(c.SubjectIDs, ", "), "isActive": boolValue(c.IsActive)}
	},
	Build: func(v form.Values) (Class, error) {
		return Class{Name: v["name"], Section: optional(v["section"]), SubjectIDs: splitIDs(v["subjects"]), IsActive: v["isActive"] == "true"}, nil
	},
	Toggle:     listing.ToggleUpdate,
	Active:     func(c Class) bool { return c.IsActive },
	WithActive: func(c Class, active bool) Class { c.IsActive = active; return c },
}

var FAQs = listing.Entity[FAQ]{
	Key:    "faqs",
	Name:   "FAQ",
	Plural: "FAQs",
	Path:   "/faqs",
	Fields: []form.Field{
		{Name: "question", Label: "Question", Type: form.Text, Rules: form.Rules{Required: true, MinLen: 5, MaxLen: 200}},
		{Name: "answer", Label: "Answer", Type: form.TextArea, Rules: form.Rules{Required: true, MinLen: 5, MaxLen: 2000}},
		activeField,
	},
	Columns: []listing.Column[FAQ]{
		col("Question", func(f FAQ) string { return f.Question }),
		col("Answer", func(f FAQ) string { return truncate(f.Answer, 80) }),
		col("Status", func(f FAQ) string { return status(f.IsActive) }),
	},
	ID:     func(f FAQ) string { return f.ID },
	WithID: func(f FAQ, id string) FAQ { f.ID = id; return f },
	Title:  func(f FAQ) string { return f.Question },
	Values: func(f FAQ) form.Values {
		return form.Values{"question": f.Question, "answer": f.Answer, "isActive": boolValue(f.IsActive)}
	},
	Build: func(v form.Values) (FAQ, error) {
		return FAQ{Question: v["question"], Answer: v["answer"], IsActive: v["isActive"] == "true"}, nil
	},
	Toggle:     listing.ToggleEndpoint,
	Active:     func(f FAQ) bool { return f.IsActive },
	WithActive: func(f FAQ, active bool) FAQ { f.IsActive = active; return f },
}

var policyFields = []form.Field{
	titleField(150),
	{Name: "content", Label: "Content", Type: form.TextArea, Rules: form.Rules{Required: true, MinLen: 20, MaxLen: 20000}},
}

var PrivacyPolicies = listing.Entity[PrivacyPolicy]{
	Key:    "privacy-policies",
	Name:   "Privacy policy",
	Plural: "Privacy policies",
	Path:   "/privacy-policies",
	Fields: policyFields,
	Columns: []listing.Column[PrivacyPolicy]{
		col("Title", func(p PrivacyPolicy) string { return p.Title }),
		col("Content", func(p PrivacyPolicy) string { return truncate(p.Content, 100) }),
	},
	ID:     func(p PrivacyPolicy) string { return p.ID },
	WithID: func(p PrivacyPolicy, id string) PrivacyPolicy { p.ID = id; return p },
	Title:  func(p PrivacyPolicy) string { return p.Title },
	Values: func(p PrivacyPolicy) form.Values { return form.Values{"title": p.Title, "content": p.Content} },
	Build: func(v form.Values) (PrivacyPolicy, error) {
		return PrivacyPolicy{Title: v["title"], Content: v["content"]}, nil
	},
}

var Terms = listing.Entity[Term]{
	Key:    "terms",
	Name:   "Terms",
	Plural: "Terms & conditions",
	Path:   "/terms",
	Fields: policyFields,
	Columns: []listing.Column[Term]{
		col("Title", func(t Term) string { return t.Title }),
		col("Content", func(t Term) string { return truncate(t.Content, 100) }),
	},
	ID:     func(t Term) string { return t.ID },
	WithID: func(t Term, id string) Term { t.ID = id; return t },
	Title:  func(t Term) string { return t.Title },
	Values: func(t Term) form.Values { return form.Values{"title": t.Title, "content": t.Content} },
	Build: func(v form.Values) (Term, error) {
		return Term{Title: v["title"], Content: v["content"]}, nil
	},
}

var JobPostings = listing.Entity[JobPosting]{
	Key:    "job-postings",
	Name:   "Job posting",
	Plural: "Job postings",
	Path:   "/job-postings",
	Fields: []form.Field{
		titleField(100),
		{Name: "location", Label: "Location", Type: form.Text, Rules: form.Rules{MaxLen: 100, Pattern: nameRegex, PatternText: nameText}},
		{Name: "experience", Label: "Experience (years)", Type: form.Number, Default: "0", Rules: form.Rules{Required: true, Integer: true, Range: &form.Range{Min: 0, Max: 50}}},
		{Name: "deadline", Label: "Deadline", Type: form.Date, Rules: form.Rules{Required: true, NotInPast: true}},
		{Name: "description", Label: "Description", Type: form.TextArea, Rules: form.Rules{Required: true, MinLen: 20, MaxLen: 5000}},
		activeField,
	},
	Columns: []listing.Column[JobPosting]{
		col("Title", func(j JobPosting) string { return j.Title }),
		col("Location", func(j JobPosting) string { return j.Location.String }),
		col("Experience", func(j JobPosting) string { return strconv.Itoa(j.Experience) + " yrs" }),
		col("Deadline", func(j JobPosting) string { return j.Deadline }),
		col("Status", func(j JobPosting) string { return status(j.IsActive) }),
	},
	ID:     func(j JobPosting) string { return j.ID },
	WithID: func(j JobPosting, id string) JobPosting { j.ID = id; return j },
	Title:  func(j JobPosting) string { return j.Title },
	Values: func(j JobPosting) form.Values {
		return form.Values{
			"title":       j.Title,
			"location":    j.Location.String,
			"experience":  strconv.Itoa(j.Experience),
			"deadline":    j.Deadline,
			"description": j.Description,
			"isActive":    boolValue(j.IsActive),
		}
	},
	Build: func(v form.Values) (JobPosting, error) {
		years, err := strconv.Atoi(v["experience"])
		if err != nil {
			return JobPosting{}, core.NewValidationError(nil, core.FieldError{Field: "experience", Error: "Experience (years) must be a whole number"})
		}
		return JobPosting{
			Title:       v["title"],
			Location:    optional(v["location"]),
			Experience:  years,
			Deadline:    v["deadline"],
			Description: v["description"],
			IsActive:    v["isActive"] == "true",
		}, nil
	},
	Toggle:        listing.ToggleEndpoint,
	ConfirmToggle: true,
	Active:        func(j JobPosting) bool { return j.IsActive },
	WithActive:    func(j JobPosting, active bool) JobPosting { j.IsActive = active; return j },
}

var Contacts = listing.Entity[Contact]{
	Key:    "contacts",
	Name:   "Contact message",
	Plural: "Contact messages",
	Path:   "/contacts",
	Fields: []form.Field{
		nameField("Name", 2, 100),
		emailField(true),
		phoneField,
		{Name: "message", Label: "Message", Type: form.TextArea, Rules: form.Rules{Required: true, MinLen: 5, MaxLen: 2000}},
	},
	Columns: []listing.Column[Contact]{
		col("Name", func(c Contact) string { return c.Name }),
		col("Email", func(c Contact) string { return c.Email }),
		col("Phone", func(c Contact) string { return c.Phone.String }),
		col("Message", func(c Contact) string { return truncate(c.Message, 80) }),
	},
	ID:     func(c Contact) string { return c.ID },
	WithID: func(c Contact, id string) Contact { c.ID = id; return c },
	Title:  func(c Contact) string { return c.Name },
	Values: func(c Contact) form.Values {
		return form.Values{"name": c.Name, "email": c.Email, "phone": c.Phone.String, "message": c.Message}
	},
	Build: func(v form.Values) (Contact, error) {
		return Contact{Name: v["name"], Email: v["email"], Phone: optional(v["phone"]), Message: v["message"]}, nil
	},
}

var Students = listing.Entity[Student]{
	Key:    "students",
	Name:   "Student",
	Plural: "Students",
	Path:   "/students",
	Fields: []form.Field{
		nameField("Full name", 2, 100),
		emailField(true),
		{Name: "class", Label: "Class", Type: form.Text, Help: "Class id", Rules: form.Rules{Required: true}},
		{Name: "rollNumber", Label: "Roll number", Type: form.Text, Rules: form.Rules{MaxLen: 20, Pattern: codeRegex, PatternText: codeText}},
		activeField,
	},
	Columns: []listing.Column[Student]{
		col("Name", func(s Student) string { return s.Name }),
		col("Email", func(s Student) string { return s.Email }),
		{Header: "Class", Value: func(s Student, lookup listing.Lookup) string { return lookup("classes", s.ClassID) }},
		col("Roll number", func(s Student) string { return s.RollNumber.String }),
		col("Status", func(s Student) string { return status(s.IsActive) }),
	},
	References: []string{"classes"},
	ID:         func(s Student) string { return s.ID },
	WithID:     func(s Student, id string) Student { s.ID = id; return s },
	Title:      func(s Student) string { return s.Name },
	Values: func(s Student) form.Values {
		return form.Values{"name": s.Name, "email": s.Email, "class": s.ClassID, "rollNumber": s.RollNumber.String, "isActive": boolValue(s.IsActive)}
	},
	Build: func(v form.Values) (Student, error) {
		return Student{Name: v["name"], Email: v["email"], ClassID: v["class"], RollNumber: optional(v["rollNumber"]), IsActive: v["isActive"] == "true"}, nil
	},
	Toggle:     listing.ToggleUpdate,
	Active:     func(s Student) bool { return s.IsActive },
	WithActive: func(s Student, active bool) Student { s.IsActive = active; return s },
}

var UserContacts = listing.Entity[UserContact]{
	Key:    "user-contacts",
	Name:   "User contact",
	Plural: "User contacts",
	Path:   "/user-contacts",
	Fields: []form.Field{
		nameField("Name", 2, 100),
		emailField(true),
		phoneField,
		{Name: "address", Label: "Address", Type: form.TextArea, Rules: form.Rules{MaxLen: 300}},
	},
	Columns: []listing.Column[UserContact]{
		col("Name", func(c UserContact) string { return c.Name }),
		col("Email", func(c UserContact) string { return c.Email }),
		col("Phone", func(c UserContact) string { return c.Phone.String }),
		col("Address", func(c UserContact) string { return truncate(c.Address.String, 60) }),
	},
	ID:     func(c UserContact) string { return c.ID },
	WithID: func(c UserContact, id string) UserContact { c.ID = id; return c },
	Title:  func(c UserContact) string { return c.Name },
	Values: func(c UserContact) form.Values {
		return form.Values{"name": c.Name, "email": c.Email, "phone": c.Phone.String, "address": c.Address.String}
	},
	Build: func(v form.Values) (UserContact, error) {
		return UserContact{Name: v["name"], Email: v["email"], Phone: optional(v["phone"]), Address: optional(v["address"])}, nil
	},
}

var CalendarEvents = listing.Entity[CalendarEvent]{
	Key:    "calendar-events",
	Name:   "Event",
	Plural: "Calendar events",
	Path:   "/calendar-events",
	Fields: []form.Field{
		titleField(100),
		{Name: "date", Label: "Date", Type: form.Date, Rules: form.Rules{Required: true}},
		{Name: "description", Label: "Description", Type: form.TextArea, Rules: form.Rules{MaxLen: 1000}},
	},
	Columns: []listing.Column[CalendarEvent]{
		col("Date", func(e CalendarEvent) string { return e.Date }),
		col("Title", func(e CalendarEvent) string { return e.Title }),
		col("Description", func(e CalendarEvent) string { return truncate(e.Description.String, 80) }),
	},
	ID:     func(e CalendarEvent) string { return e.ID },
	WithID: func(e CalendarEvent, id string) CalendarEvent { e.ID = id; return e },
	Title:  func(e CalendarEvent) string { return e.Title },
	Values: func(e CalendarEvent) form.Values {
		return form.Values{"title": e.Title, "date": e.Date, "description": e.Description.String}
	},
	Build: func(v form.Values) (CalendarEvent, error) {
		return CalendarEvent{Title: v["title"], Date: v["date"], Description: optional(v["description"])}, nil
	},
}

var Teachers = listing.Entity[Teacher]{
	Key:    "teachers",
	Name:   "Teacher",
	Plural: "Teachers",
	Path:   "/teachers",
	Fields: []form.Field{
		nameField("Full name", 2, 100),
		emailField(true),
		phoneField,
		{Name: "subject", Label: "Subject", Type: form.Text, Help: "Subject id"},
		activeField,
	},
	Columns: []listing.Column[Teacher]{
		col("Name", func(t Teacher) string { return t.Name }),
		col("Email", func(t Teacher) string { return t.Email }),
		col("Phone", func(t Teacher) string { return t.Phone.String }),
		{Header: "Subject", Value: func(t Teacher, lookup listing.Lookup) string { return lookup("subjects", t.SubjectID) }},
		col("Status", func(t Teacher) string { return status(t.IsActive) }),
	},
	References: []string{"subjects"},
	ID:         func(t Teacher) string { return t.ID },
	WithID:     func(t Teacher, id string) Teacher { t.ID = id; return t },
	Title:      func(t Teacher) string { return t.Name },
	Values: func(t Teacher) form.Values {
		return form.Values{"name": t.Name, "email": t.Email, "phone": t.Phone.String, "subject": t.SubjectID, "isActive": boolValue(t.IsActive)}
	},
	Build: func(v form.Values) (Teacher, error) {
		return Teacher{Name: v["name"], Email: v["email"], Phone: optional(v["phone"]), SubjectID: v["subject"], IsActive: v["isActive"] == "true"}, nil
	},
	Toggle:        listing.ToggleUpdate,
	ConfirmToggle: true,
	Active:        func(t Teacher) bool { return t.IsActive },
	WithActive:    func(t Teacher, active bool) Teacher { t.IsActive = active; return t },
}

var Attendances = listing.Entity[Attendance]{
	Key:    "attendance",
	Name:   "Attendance record",
	Plural: "Attendance",
	Path:   "/attendance",
	Fields: []form.Field{
		{Name: "student", Label: "Student", Type: form.Text, Help: "Student id", Rules: form.Rules{Required: true}},
		{Name: "date", Label: "Date", Type: form.Date, Rules: form.Rules{Required: true}},
		{
			Name:    "status",
			Label:   "Status",
			Type:    form.Select,
			Default: string(Present),
			Options: []form.Option{
				{Value: string(Present), Label: "Present"},
				{Value: string(Absent), Label: "Absent"},
				{Value: string(Late), Label: "Late"},
			},
			Rules: form.Rules{Required: true},
		},
	},
	Columns: []listing.Column[Attendance]{
		col("Date", func(a Attendance) string { return a.Date }),
		{Header: "Student", Value: func(a Attendance, lookup listing.Lookup) string { return lookup("students", a.StudentID) }},
		col("Status", func(a Attendance) string { return string(a.Status) }),
	},
	References: []string{"students"},
	ID:         func(a Attendance) string { return a.ID },
	WithID:     func(a Attendance, id string) Attendance { a.ID = id; return a },
	Title:      func(a Attendance) string { return a.Date },
	Values: func(a Attendance) form.Values {
		return form.Values{"student": a.StudentID, "date": a.Date, "status": string(a.Status)}
	},
	Build: func(v form.Values) (Attendance, error) {
		return Attendance{StudentID: v["student"], Date: v["date"], Status: AttendanceStatus(v["status"])}, nil
	},
}
