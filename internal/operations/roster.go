package operations

import (
	"github.com/samber/lo"
)

type StaffMember struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Role    string `json:"role"`
	Dept    string `json:"dept"`
	Status  string `json:"status"`
	Shift   string `json:"shift"`
	Contact string `json:"contact"`
}

// FilterAll matches every staff member.
const FilterAll = "All"

func seedStaff() []StaffMember {
	return []StaffMember{
		{ID: 1, Name: "Dr. Aditi Verma", Role: "Doctor", Dept: "Cardiology", Status: "On Duty", Shift: "08:00 - 16:00", Contact: "555-0101"},
		{ID: 2, Name: "Nurse Meera Nair", Role: "Nurse", Dept: "Emergency", Status: "Busy", Shift: "08:00 - 20:00", Contact: "555-0102"},
		{ID: 3, Name: "Dr. Rohan Das", Role: "Doctor", Dept: "Orthopedics", Status: "On Duty", Shift: "09:00 - 17:00", Contact: "555-0103"},
		{ID: 4, Name: "Vikram Malhotra", Role: "Intern", Dept: "General", Status: "Break", Shift: "08:00 - 16:00", Contact: "555-0104"},
		{ID: 5, Name: "Riya Kapoor", Role: "Receptionist", Dept: "Front Desk", Status: "On Duty", Shift: "07:00 - 15:00", Contact: "555-0105"},
		{ID: 6, Name: "Dr. Suresh Menon", Role: "Doctor", Dept: "Diagnostic", Status: "Off Duty", Shift: "Off", Contact: "555-0106"},
	}
}

// Roster filters staff by role or by duty status. An empty filter means All.
func (s *Service) Roster(filter string) ([]StaffMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if filter == "" || filter == FilterAll {
		return append([]StaffMember{}, s.staff...), nil
	}
	if !lo.Contains(rosterFilters, filter) {
		return nil, ErrUnknownFilter
	}
	return lo.Filter(s.staff, func(m StaffMember, _ int) bool {
		return m.Role == filter || m.Status == filter
	}), nil
}

var rosterFilters = []string{"Doctor", "Nurse", "Intern", "Receptionist", "On Duty", "Busy", "Break", "Off Duty"}
