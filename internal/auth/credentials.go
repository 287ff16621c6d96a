package auth

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("Invalid email or password.")
	ErrUnknownRole        = errors.New("unknown role")
)

// RoleMismatchError is returned when the email and password are right but the
// role picked on the login form is not the user's role.
type RoleMismatchError struct {
	Actual Role
}

func (e *RoleMismatchError) Error() string {
	return fmt.Sprintf("Email exists, but role does not match. Try selecting '%s'.", e.Actual)
}

// User is a staff member from the static credential table.
type User struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
	Avatar   string `json:"avatar,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Bio      string `json:"bio,omitempty"`
	Location string `json:"location,omitempty"`
}

// Credential is a seed entry: a user plus the plaintext password it is hashed from.
type Credential struct {
	User     User
	Password string
}

// DefaultCredentials are the demo accounts, one per role.
func DefaultCredentials() []Credential {
	return []Credential{
		{Password: "doctor123", User: User{
			Name: "Dr. Aditi Verma", Email: "doctor@medflow.ai", Role: RoleDoctor,
			Avatar:   "https://ui-avatars.com/api/?name=Aditi+Verma&background=0D8ABC&color=fff",
			Phone:    "+91 98450 12345",
			Bio:      "Senior Consultant, Internal Medicine",
			Location: "MedFlow General Hospital, Bengaluru",
		}},
		{Password: "nurse123", User: User{
			Name: "Nurse Meera Nair", Email: "nurse@medflow.ai", Role: RoleNurse,
			Avatar:   "https://ui-avatars.com/api/?name=Meera+Nair&background=10B981&color=fff",
			Phone:    "+91 98450 22345",
			Location: "Ward A",
		}},
		{Password: "intern123", User: User{
			Name: "Dr. Rohan Mehta", Email: "intern@medflow.ai", Role: RoleIntern,
			Avatar: "https://ui-avatars.com/api/?name=Rohan+Mehta&background=6366F1&color=fff",
			Bio:    "House Surgeon, Rotation: Medicine",
		}},
		{Password: "reception123", User: User{
			Name: "Kavya Rao", Email: "reception@medflow.ai", Role: RoleReceptionist,
			Avatar: "https://ui-avatars.com/api/?name=Kavya+Rao&background=F59E0B&color=fff",
			Phone:  "+91 98450 32345",
		}},
		{Password: "cleaner123", User: User{
			Name: "Ramesh Gowda", Email: "cleaner@medflow.ai", Role: RoleCleaner,
			Avatar: "https://ui-avatars.com/api/?name=Ramesh+Gowda&background=64748B&color=fff",
		}},
	}
}

type account struct {
	user User
	hash []byte
}

// Directory is the static credential table keyed by lower-cased email.
type Directory struct {
	accounts map[string]account
}

// NewDirectory hashes the seed passwords with bcrypt at the given cost.
func NewDirectory(creds []Credential, cost int) (*Directory, error) {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	d := &Directory{accounts: make(map[string]account, len(creds))}
	for _, c := range creds {
		if !c.User.Role.Valid() {
			return nil, fmt.Errorf("%s: %w", c.User.Email, ErrUnknownRole)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(c.Password), cost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password for %s: %w", c.User.Email, err)
		}
		d.accounts[strings.ToLower(c.User.Email)] = account{user: c.User, hash: hash}
	}
	return d, nil
}

// Authenticate checks email, password and the role selected at login.
func (d *Directory) Authenticate(email, password string, role Role) (User, error) {
	acc, ok := d.accounts[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(acc.hash, []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}
	if acc.user.Role != role {
		return User{}, &RoleMismatchError{Actual: acc.user.Role}
	}
	return acc.user, nil
}

// Lookup returns the user registered under email.
func (d *Directory) Lookup(email string) (User, bool) {
	acc, ok := d.accounts[strings.ToLower(email)]
	return acc.user, ok
}
