package library

import (
	"time"

	"github.com/google/uuid"
)

// Staff is a principal with administrative privileges. Staff hold the
// STAFF plan and carry an employee id. The library back-reference is
// not serializable and is re-linked explicitly after a load.
type Staff struct {
	User
	EmployeeID string `json:"employee_id"`

	library *Library
}

// NewStaff constructs a staff principal. A blank employeeID gets a
// generated one.
func NewStaff(id int, name, surname string, age int, email, password, employeeID string, today time.Time) (*Staff, error) {
	s := &Staff{}
	u, err := newUser(id, name, surname, age, email, password, RoleLibrarian, s.DefaultPlan(), today)
	if err != nil {
		return nil, err
	}
	if employeeID == "" {
		employeeID = uuid.NewString()
	}
	s.User = u
	s.EmployeeID = employeeID
	return s, nil
}

// Base exposes the shared principal state.
func (s *Staff) Base() *User { return &s.User }

// DefaultPlan is the staff side of the plan-assignment hook.
func (s *Staff) DefaultPlan() PlanTier { return TierStaff }

// AttachLibrary re-links the registry back-reference, typically after
// deserialization.
func (s *Staff) AttachLibrary(lib *Library) { s.library = lib }

// Login authenticates and then runs the staff notice hook, which
// surfaces system-wide alerts. The hook cannot fail the login.
func (s *Staff) Login(email, password string, today time.Time) error {
	if err := s.authenticate(email, password, today); err != nil {
		return err
	}
	s.onLogin()
	return nil
}

func (s *Staff) onLogin() {
	s.addNotice("staff access granted")
	if s.library == nil {
		return
	}
	stats := s.library.Stats()
	s.addNotice("library status: %d books, %d members, %d active loans",
		stats.TotalTitles, stats.Members, stats.ActiveLoans)
	if stats.OverdueLoans > 0 {
		s.addNotice("alert: %d overdue loan(s) in the system", stats.OverdueLoans)
	}
}
