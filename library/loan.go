package library

import (
	"fmt"
	"math"
	"time"
)

// Loan records one book lent to one member. Its identity is the
// (member id, ISBN, loan date) triple; two loans for the same pair on
// the same day are indistinguishable. The due date is fixed at creation
// from the member's plan and never recomputed from a later plan change.
//
// A loan moves through exactly one transition: active -> returned.
// "Overdue" is computed against a date, never stored.
type Loan struct {
	Member *Member `json:"-"`
	Book   *Book   `json:"-"`

	LoanDate   time.Time `json:"loan_date"`
	DueDate    time.Time `json:"due_date"`
	ReturnDate time.Time `json:"return_date,omitempty"`
	Returned   bool      `json:"returned"`
}

// NewLoan creates an active loan issued today and due after
// loanPeriodDays.
func NewLoan(member *Member, book *Book, loanPeriodDays int, today time.Time) (*Loan, error) {
	if member == nil {
		return nil, validationf("loan member cannot be nil")
	}
	if book == nil {
		return nil, validationf("loan book cannot be nil")
	}
	if loanPeriodDays < 1 {
		return nil, validationf("loan period must be at least 1 day")
	}
	loanDate := dateOf(today)
	return &Loan{
		Member:   member,
		Book:     book,
		LoanDate: loanDate,
		DueDate:  loanDate.AddDate(0, 0, loanPeriodDays),
	}, nil
}

// IsOverdue reports whether the loan is past due as of today, or, once
// returned, whether it came back late.
func (l *Loan) IsOverdue(today time.Time) bool {
	return l.DaysOverdue(today) > 0
}

// DaysOverdue counts whole days past the due date: against today while
// the loan is active, against the return date once returned. Never
// negative.
func (l *Loan) DaysOverdue(today time.Time) int {
	ref := dateOf(today)
	if l.Returned {
		ref = dateOf(l.ReturnDate)
	}
	if d := daysBetween(l.DueDate, ref); d > 0 {
		return d
	}
	return 0
}

// DaysUntilDue counts the days remaining before the due date; zero once
// overdue or returned.
func (l *Loan) DaysUntilDue(today time.Time) int {
	if l.Returned {
		return 0
	}
	if d := daysBetween(today, l.DueDate); d > 0 {
		return d
	}
	return 0
}

// OverdueFee computes the fee owed at dailyRate, rounded to cents.
func (l *Loan) OverdueFee(dailyRate float64, today time.Time) (float64, error) {
	if dailyRate < 0 {
		return 0, validationf("daily rate cannot be negative")
	}
	return roundCents(float64(l.DaysOverdue(today)) * dailyRate), nil
}

// markReturned stamps the return date and flips the loan into its
// terminal state. Registry-orchestrated; the book counter is the
// registry's to adjust.
func (l *Loan) markReturned(today time.Time) error {
	if l.Returned {
		return statef("loan of %q is already returned", l.Book.Title)
	}
	l.Returned = true
	l.ReturnDate = dateOf(today)
	return nil
}

// Extend pushes the due date out by additionalDays. Returned or already
// overdue loans cannot be extended.
func (l *Loan) Extend(additionalDays int, today time.Time) error {
	if l.Returned {
		return statef("cannot extend a returned loan")
	}
	if l.IsOverdue(today) {
		return statef("cannot extend an overdue loan")
	}
	if additionalDays < 1 {
		return validationf("extension must be at least 1 day")
	}
	l.DueDate = l.DueDate.AddDate(0, 0, additionalDays)
	return nil
}

// Summary formats the loan for display, including its computed state.
func (l *Loan) Summary(today time.Time) string {
	status := fmt.Sprintf("ACTIVE (%d days left)", l.DaysUntilDue(today))
	if l.Returned {
		status = fmt.Sprintf("RETURNED %s", l.ReturnDate.Format("2006-01-02"))
	} else if l.IsOverdue(today) {
		status = fmt.Sprintf("OVERDUE (%d days)", l.DaysOverdue(today))
	}
	return fmt.Sprintf("%s %s -> %s %s, due %s, %s",
		l.Book.ISBN, l.Book.Title, l.Member.FullName(),
		l.LoanDate.Format("2006-01-02"), l.DueDate.Format("2006-01-02"), status)
}

// dateOf truncates a timestamp to its calendar date in UTC so day
// arithmetic is stable across wall-clock times.
func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// daysBetween counts whole days from a to b; negative when b precedes a.
func daysBetween(a, b time.Time) int {
	return int(dateOf(b).Sub(dateOf(a)).Hours() / 24)
}

// roundCents applies the two-decimal rounding all fees carry.
func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
