package auth

import "strings"

// Role is the staff role chosen at login.
type Role string

const (
	RoleDoctor       Role = "doctor"
	RoleNurse        Role = "nurse"
	RoleIntern       Role = "intern"
	RoleReceptionist Role = "receptionist"
	RoleCleaner      Role = "cleaner"
)

// Roles lists every known role.
var Roles = []Role{RoleDoctor, RoleNurse, RoleIntern, RoleReceptionist, RoleCleaner}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// View names a screen of the dashboard. Feature views (assistant, voice) are
// gated like screens but never appear in navigation.
type View string

const (
	ViewDashboard  View = "dashboard"
	ViewReception  View = "reception"
	ViewTriage     View = "triage"
	ViewConsultant View = "consultant"
	ViewCleaner    View = "cleaner"
	ViewAnalysis   View = "analysis"
	ViewPharmacy   View = "pharmacy"
	ViewBilling    View = "billing"
	ViewStaff      View = "staff"
	ViewSettings   View = "settings"

	ViewAssistant View = "assistant"
	ViewVoice     View = "voice"
)

// NavViews is the navigation order of the screens.
var NavViews = []View{
	ViewDashboard, ViewReception, ViewTriage, ViewConsultant, ViewCleaner,
	ViewAnalysis, ViewPharmacy, ViewBilling, ViewStaff, ViewSettings,
}

// AllViews is every gated view, screens first.
var AllViews = append(append([]View{}, NavViews...), ViewAssistant, ViewVoice)

// Valid reports whether v is a known view.
func (v View) Valid() bool {
	for _, known := range AllViews {
		if v == known {
			return true
		}
	}
	return false
}

// Wildcard grants every view to a role.
const Wildcard = "*"

// Permissions maps role -> allowed views. It is the single table consulted
// both for route gating and for navigation.
type Permissions map[string][]string

// DefaultPermissions returns the built-in access table.
func DefaultPermissions() Permissions {
	return Permissions{
		string(RoleDoctor):       {Wildcard},
		string(RoleReceptionist): {"dashboard", "reception", "billing", "staff", "settings", "assistant"},
		string(RoleNurse):        {"dashboard", "triage", "analysis", "pharmacy", "staff", "settings", "assistant"},
		string(RoleIntern):       {"dashboard", "consultant", "analysis", "pharmacy", "settings", "assistant"},
		string(RoleCleaner):      {"cleaner", "settings"},
	}
}

var defaultPermissions = DefaultPermissions()

// CanAccess reports whether role may open view under the built-in table.
// Unknown roles and views are denied.
func CanAccess(role Role, view View) bool {
	return defaultPermissions.Allows(role, view)
}

// Allows reports whether role may open view. Role lookup is case-insensitive.
func (p Permissions) Allows(role Role, view View) bool {
	if !view.Valid() {
		return false
	}
	views, ok := p[string(role)]
	if !ok {
		views, ok = p[strings.ToLower(string(role))]
	}
	if !ok {
		return false
	}
	for _, v := range views {
		if v == Wildcard || v == string(view) {
			return true
		}
	}
	return false
}

// NavItems returns the screens the role can navigate to, in menu order.
func (p Permissions) NavItems(role Role) []View {
	var out []View
	for _, v := range NavViews {
		if p.Allows(role, v) {
			out = append(out, v)
		}
	}
	return out
}

// InitialView is the screen a role lands on after login.
func InitialView(role Role) View {
	if role == RoleCleaner {
		return ViewCleaner
	}
	return ViewDashboard
}
