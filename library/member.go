package library

import "time"

// Member is a principal who borrows books. The registry is the only
// writer of its loan lists; the helpers below that mutate them are
// package-private for that reason.
type Member struct {
	User
	AccruedFees float64 `json:"accrued_fees"`

	activeLoans []*Loan
	loanHistory []*Loan
}

// NewMember constructs a member with the given allocator-assigned id.
// Members start on the BASIC plan via the DefaultPlan hook.
func NewMember(id int, name, surname string, age int, email, password string, today time.Time) (*Member, error) {
	m := &Member{}
	u, err := newUser(id, name, surname, age, email, password, RoleMember, m.DefaultPlan(), today)
	if err != nil {
		return nil, err
	}
	m.User = u
	return m, nil
}

// Base exposes the shared principal state.
func (m *Member) Base() *User { return &m.User }

// DefaultPlan is the member side of the plan-assignment hook.
func (m *Member) DefaultPlan() PlanTier { return TierBasic }

// Login authenticates and then runs the member notice hook. The hook
// only collects advisory messages; it cannot fail the login.
func (m *Member) Login(email, password string, today time.Time) error {
	if err := m.authenticate(email, password, today); err != nil {
		return err
	}
	m.onLogin(today)
	return nil
}

func (m *Member) onLogin(today time.Time) {
	m.addNotice("you have %d active loan(s)", len(m.activeLoans))
	if m.HasOverdueLoans(today) {
		m.addNotice("you have overdue books, please return them soon")
	}
	if m.Plan.IsExpiringSoon(today) {
		if days, ok := m.Plan.DaysUntilExpiry(today); ok {
			m.addNotice("your membership expires in %d day(s), consider renewing", days)
		}
	}
}

// ActiveLoans returns a copy of the member's unreturned loans.
func (m *Member) ActiveLoans() []*Loan {
	out := make([]*Loan, len(m.activeLoans))
	copy(out, m.activeLoans)
	return out
}

// LoanHistory returns a copy of the member's returned loans.
func (m *Member) LoanHistory() []*Loan {
	out := make([]*Loan, len(m.loanHistory))
	copy(out, m.loanHistory)
	return out
}

// CanBorrowMore reports whether the plan allows another concurrent loan.
func (m *Member) CanBorrowMore() bool {
	return len(m.activeLoans) < m.Plan.MaxLoans()
}

// HasOverdueLoans reports whether any active loan is past due.
func (m *Member) HasOverdueLoans(today time.Time) bool {
	for _, l := range m.activeLoans {
		if l.IsOverdue(today) {
			return true
		}
	}
	return false
}

// activeLoanFor finds the unreturned loan for an ISBN, if any.
func (m *Member) activeLoanFor(isbn string) *Loan {
	for _, l := range m.activeLoans {
		if l.Book.ISBN == isbn && !l.Returned {
			return l
		}
	}
	return nil
}

func (m *Member) addLoan(l *Loan) {
	m.activeLoans = append(m.activeLoans, l)
}

// retireLoan moves a loan from the active set into history.
func (m *Member) retireLoan(l *Loan) {
	for i, cur := range m.activeLoans {
		if cur == l {
			m.activeLoans = append(m.activeLoans[:i], m.activeLoans[i+1:]...)
			break
		}
	}
	m.loanHistory = append(m.loanHistory, l)
}

// restoreHistory appends a returned loan when rebuilding from storage.
func (m *Member) restoreHistory(l *Loan) {
	m.loanHistory = append(m.loanHistory, l)
}

// CurrentOverdueFees sums the fees the active loans would cost if all
// were returned today, at the member's current plan rate.
func (m *Member) CurrentOverdueFees(today time.Time) float64 {
	rate := m.Plan.DailyOverdueFee()
	var total float64
	for _, l := range m.activeLoans {
		total += float64(l.DaysOverdue(today)) * rate
	}
	return roundCents(total)
}

// TotalOverdueFees is the running balance plus live overdue fees.
func (m *Member) TotalOverdueFees(today time.Time) float64 {
	return roundCents(m.AccruedFees + m.CurrentOverdueFees(today))
}

// PayFees reduces the accrued balance.
func (m *Member) PayFees(amount float64) error {
	if amount <= 0 {
		return validationf("payment must be positive")
	}
	if amount > m.AccruedFees {
		return validationf("payment exceeds accrued fees of %.2f", m.AccruedFees)
	}
	m.AccruedFees = roundCents(m.AccruedFees - amount)
	return nil
}

// UpgradePlan moves the member to a strictly higher tier. STAFF is
// never reachable this way. Reports false when the upgrade does not
// apply; the member's state is untouched in that case.
func (m *Member) UpgradePlan(target PlanTier, today time.Time) bool {
	if target == TierStaff {
		return false
	}
	return m.Plan.Upgrade(target, today)
}

// ChangeMemberPlan moves the member to any non-staff tier, no rank
// check.
func (m *Member) ChangeMemberPlan(target PlanTier, today time.Time) error {
	if target == TierStaff {
		return validationf("members cannot hold the staff plan")
	}
	m.Plan.ChangePlan(target, today)
	return nil
}
