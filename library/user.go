package library

import (
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"time"

	"golang.org/x/crypto/sha3"
)

// Role distinguishes the two principal kinds.
type Role string

const (
	RoleMember    Role = "MEMBER"
	RoleLibrarian Role = "LIBRARIAN"
)

// Principal is any authenticated actor: an identity, optional
// credentials, and a membership plan. Member and Staff implement it;
// DefaultPlan is the one polymorphic hook deciding which tier a kind
// starts on.
type Principal interface {
	Base() *User
	DefaultPlan() PlanTier
	Login(email, password string, today time.Time) error
	Logout() error
}

// User carries the state shared by every principal. Passwords are never
// stored or compared in plaintext; only the SHA3-256 hex digest is kept,
// so verification is a digest comparison.
type User struct {
	ID           int             `json:"id"`
	Name         string          `json:"name"`
	Surname      string          `json:"surname"`
	Age          int             `json:"age"`
	Email        string          `json:"email,omitempty"`
	PasswordHash string          `json:"password_hash,omitempty"`
	Role         Role            `json:"role"`
	Plan         *MembershipPlan `json:"plan"`
	LastLogin    time.Time       `json:"last_login,omitempty"`

	LoggedIn bool `json:"-"`

	loginNotices []string
}

var emailPattern = regexp.MustCompile(`^[\w.+-]+@[\w.-]+\.[A-Za-z]{2,}$`)

const minPasswordLen = 6

func newUser(id int, name, surname string, age int, email, password string, role Role, tier PlanTier, today time.Time) (User, error) {
	if strings.TrimSpace(name) == "" {
		return User{}, validationf("name cannot be empty")
	}
	if strings.TrimSpace(surname) == "" {
		return User{}, validationf("surname cannot be empty")
	}
	if age < 1 || age > 120 {
		return User{}, validationf("age must be between 1 and 120")
	}
	if email != "" && !emailPattern.MatchString(email) {
		return User{}, validationf("invalid email address format")
	}
	var hash string
	if password != "" {
		if len(password) < minPasswordLen {
			return User{}, validationf("password must be at least %d characters", minPasswordLen)
		}
		hash = hashPassword(password)
	}
	return User{
		ID:           id,
		Name:         name,
		Surname:      surname,
		Age:          age,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Plan:         NewMembershipPlan(tier, today),
	}, nil
}

// hashPassword digests a password with SHA3-256. Deterministic: the same
// input always yields the same digest.
func hashPassword(password string) string {
	sum := sha3.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

func (u *User) verifyPassword(password string) bool {
	if password == "" || u.PasswordHash == "" {
		return false
	}
	return u.PasswordHash == hashPassword(password)
}

// authenticate is the shared login core: it checks credentials, flips
// the session flag, and stamps the last-login time. The per-kind Login
// wrappers invoke their notice hooks afterwards. The timestamp comes
// from the caller so logins follow the registry clock.
func (u *User) authenticate(email, password string, today time.Time) error {
	if u.Email == "" || u.PasswordHash == "" {
		return &AuthError{Reason: "no credentials set for this user"}
	}
	if !strings.EqualFold(u.Email, email) {
		return &AuthError{Reason: "invalid email"}
	}
	if !u.verifyPassword(password) {
		return &AuthError{Reason: "invalid password"}
	}
	u.LoggedIn = true
	u.LastLogin = today
	u.loginNotices = nil
	return nil
}

// Logout ends the session; it reports, without side effects, when no
// session is open.
func (u *User) Logout() error {
	if !u.LoggedIn {
		return statef("%s is not logged in", u.FullName())
	}
	u.LoggedIn = false
	return nil
}

// IsLoggedIn reports whether a session is open.
func (u *User) IsLoggedIn() bool { return u.LoggedIn }

// LoginNotices returns the advisory messages collected by the kind's
// login hook: overdue warnings, expiry reminders, staff alerts.
func (u *User) LoginNotices() []string {
	out := make([]string, len(u.loginNotices))
	copy(out, u.loginNotices)
	return out
}

func (u *User) addNotice(format string, args ...any) {
	u.loginNotices = append(u.loginNotices, fmt.Sprintf(format, args...))
}

// SetAge revalidates and replaces the age.
func (u *User) SetAge(age int) error {
	if age < 1 || age > 120 {
		return validationf("age must be between 1 and 120")
	}
	u.Age = age
	return nil
}

// SetCredentials replaces email and password together, with the same
// validation as construction.
func (u *User) SetCredentials(email, password string) error {
	if !emailPattern.MatchString(email) {
		return validationf("invalid email address format")
	}
	if len(password) < minPasswordLen {
		return validationf("password must be at least %d characters", minPasswordLen)
	}
	u.Email = email
	u.PasswordHash = hashPassword(password)
	return nil
}

// FullName is "Name Surname".
func (u *User) FullName() string { return u.Name + " " + u.Surname }

// Summary formats the principal for display lists.
func (u *User) Summary() string {
	return fmt.Sprintf("#%d %s (age %d, %s, %s)", u.ID, u.FullName(), u.Age, u.Role, u.Plan.Summary())
}
