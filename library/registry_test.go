package library

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testClock is a settable clock so due dates and fees come out exact.
type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time   { return c.now }
func (c *testClock) Advance(days int) { c.now = c.now.AddDate(0, 0, days) }

func newTestLibrary(t *testing.T) (*Library, *testClock) {
	t.Helper()
	clock := &testClock{now: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)}
	return NewLibrary("Test Library", WithClock(clock.Now)), clock
}

func addTestBook(t *testing.T, lib *Library, isbn string, copies int) *Book {
	t.Helper()
	b, err := lib.AddBook(isbn, "Title "+isbn, "Author", ThemeFiction, copies)
	require.NoError(t, err)
	return b
}

func addTestMember(t *testing.T, lib *Library, name string) *Member {
	t.Helper()
	m, err := lib.AddMember(name, "Tester", 30, "", "")
	require.NoError(t, err)
	return m
}

// ---------------------------------------------------------------------------
// Books
// ---------------------------------------------------------------------------

func TestAddBookRejectsDuplicateISBN(t *testing.T) {
	lib, _ := newTestLibrary(t)
	addTestBook(t, lib, "978-1", 1)

	_, err := lib.AddBook("978-1", "Other", "Other", ThemeHistory, 2)
	var derr *DuplicateKeyError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "book", derr.Entity)
}

func TestRemoveBookRequiresAllCopiesShelved(t *testing.T) {
	lib, _ := newTestLibrary(t)
	addTestBook(t, lib, "978-1", 1)
	m := addTestMember(t, lib, "Alice")

	_, err := lib.IssueLoan(m.ID, "978-1")
	require.NoError(t, err)

	var serr *StateError
	require.ErrorAs(t, lib.RemoveBook("978-1"), &serr)

	_, _, err = lib.ReturnLoan(m.ID, "978-1")
	require.NoError(t, err)
	require.NoError(t, lib.RemoveBook("978-1"))

	var nerr *NotFoundError
	_, err = lib.FindBook("978-1")
	require.ErrorAs(t, err, &nerr)
}

func TestBooksSortedByISBN(t *testing.T) {
	lib, _ := newTestLibrary(t)
	addTestBook(t, lib, "978-3", 1)
	addTestBook(t, lib, "978-1", 1)
	addTestBook(t, lib, "978-2", 1)

	books := lib.Books()
	require.Len(t, books, 3)
	assert.Equal(t, "978-1", books[0].ISBN)
	assert.Equal(t, "978-2", books[1].ISBN)
	assert.Equal(t, "978-3", books[2].ISBN)
}

func TestBookSearches(t *testing.T) {
	lib, _ := newTestLibrary(t)
	_, err := lib.AddBook("978-1", "The Go Programming Language", "Donovan", ThemeTechnology, 1)
	require.NoError(t, err)
	_, err = lib.AddBook("978-2", "Go in Action", "Kennedy", ThemeTechnology, 1)
	require.NoError(t, err)
	_, err = lib.AddBook("978-3", "War and Peace", "Tolstoy", ThemeFiction, 1)
	require.NoError(t, err)

	assert.Len(t, lib.FindBooksByTitle("go"), 2)
	assert.Len(t, lib.FindBooksByTitle("zzz"), 0)
	assert.Len(t, lib.FindBooksByAuthor("TOLSTOY"), 1)
	assert.Len(t, lib.FindBooksByTheme("TECHNOLOGY"), 2)
	assert.Len(t, lib.FindBooksByTheme("technology"), 2)

	// An unknown theme literal matches nothing rather than falling back.
	assert.Len(t, lib.FindBooksByTheme("astrology"), 0)
}

// ---------------------------------------------------------------------------
// Principals
// ---------------------------------------------------------------------------

func TestMemberIDAllocation(t *testing.T) {
	lib, _ := newTestLibrary(t)
	m1 := addTestMember(t, lib, "Alice")
	m2 := addTestMember(t, lib, "Bob")

	assert.Equal(t, 101, m1.ID)
	assert.Equal(t, 102, m2.ID)

	s, err := lib.AddStaff("Erin", "Kowalski", 38, "", "", "EMP-1")
	require.NoError(t, err)
	assert.Equal(t, 103, s.ID)
}

func TestDuplicateEmailRejectedAcrossKinds(t *testing.T) {
	lib, _ := newTestLibrary(t)
	_, err := lib.AddMember("Alice", "Nguyen", 29, "shared@example.com", "secret1")
	require.NoError(t, err)

	var derr *DuplicateKeyError
	_, err = lib.AddMember("Bob", "Martin", 41, "shared@example.com", "secret2")
	require.ErrorAs(t, err, &derr)
	_, err = lib.AddStaff("Erin", "Kowalski", 38, "SHARED@example.com", "secret3", "")
	require.ErrorAs(t, err, &derr)
}

func TestRemoveMemberBlockedByActiveLoans(t *testing.T) {
	lib, _ := newTestLibrary(t)
	addTestBook(t, lib, "978-1", 1)
	m := addTestMember(t, lib, "Alice")

	_, err := lib.IssueLoan(m.ID, "978-1")
	require.NoError(t, err)

	var serr *StateError
	require.ErrorAs(t, lib.RemoveMember(m.ID), &serr)

	_, _, err = lib.ReturnLoan(m.ID, "978-1")
	require.NoError(t, err)
	require.NoError(t, lib.RemoveMember(m.ID))
}

func TestFindMembersByName(t *testing.T) {
	lib, _ := newTestLibrary(t)
	_, err := lib.AddMember("Alice", "Nguyen", 29, "", "")
	require.NoError(t, err)
	_, err = lib.AddMember("Alicia", "Keys", 35, "", "")
	require.NoError(t, err)
	_, err = lib.AddMember("Bob", "Alison", 41, "", "")
	require.NoError(t, err)

	assert.Len(t, lib.FindMembersByName("ali"), 3)
	assert.Len(t, lib.FindMembersByName("nguyen"), 1)
	assert.Len(t, lib.FindMembersByName("zzz"), 0)
}

// ---------------------------------------------------------------------------
// Loans
// ---------------------------------------------------------------------------

func TestIssueLoanHappyPath(t *testing.T) {
	lib, clock := newTestLibrary(t)
	b := addTestBook(t, lib, "978-1", 2)
	m := addTestMember(t, lib, "Alice")

	loan, err := lib.IssueLoan(m.ID, "978-1")
	require.NoError(t, err)

	assert.Equal(t, 1, b.AvailableCopies)
	assert.Equal(t, dateOf(clock.Now()), loan.LoanDate)
	// BASIC members get a 14-day period.
	assert.Equal(t, dateOf(clock.Now()).AddDate(0, 0, 14), loan.DueDate)
	assert.Len(t, lib.ActiveLoans(), 1)
	assert.Len(t, m.ActiveLoans(), 1)
}

func TestIssueLoanCheckOrder(t *testing.T) {
	lib, clock := newTestLibrary(t)
	addTestBook(t, lib, "978-1", 1)
	addTestBook(t, lib, "978-2", 1)
	addTestBook(t, lib, "978-3", 5)
	addTestBook(t, lib, "978-4", 5)
	addTestBook(t, lib, "978-5", 5)
	alice := addTestMember(t, lib, "Alice")
	bob := addTestMember(t, lib, "Bob")

	var nerr *NotFoundError
	var serr *StateError
	var lerr *LimitError

	// 1. Unknown member wins over unknown book.
	_, err := lib.IssueLoan(999, "no-such-isbn")
	require.ErrorAs(t, err, &nerr)
	assert.Equal(t, "member", nerr.Entity)

	// 1. Unknown book.
	_, err = lib.IssueLoan(alice.ID, "no-such-isbn")
	require.ErrorAs(t, err, &nerr)
	assert.Equal(t, "book", nerr.Entity)

	// 2. Availability precedes the limit check: exhaust the copy first.
	_, err = lib.IssueLoan(bob.ID, "978-1")
	require.NoError(t, err)
	_, err = lib.IssueLoan(alice.ID, "978-1")
	require.ErrorAs(t, err, &serr)
	assert.Contains(t, serr.Reason, "not available")

	// 3. Limit: BASIC allows three concurrent loans.
	for _, isbn := range []string{"978-2", "978-3", "978-4"} {
		_, err = lib.IssueLoan(alice.ID, isbn)
		require.NoError(t, err)
	}
	_, err = lib.IssueLoan(alice.ID, "978-5")
	require.ErrorAs(t, err, &lerr)

	// 4. Overdue gate, checked before the duplicate-book rule: return one
	// loan to get under the limit, then let the rest go overdue.
	_, _, err = lib.ReturnLoan(alice.ID, "978-2")
	require.NoError(t, err)
	clock.Advance(20)
	_, err = lib.IssueLoan(alice.ID, "978-5")
	require.ErrorAs(t, err, &serr)
	assert.Contains(t, serr.Reason, "overdue")

	// 5. Duplicate book, visible once nothing is overdue.
	_, _, err = lib.ReturnLoan(alice.ID, "978-3")
	require.NoError(t, err)
	_, _, err = lib.ReturnLoan(alice.ID, "978-4")
	require.NoError(t, err)
	_, err = lib.IssueLoan(alice.ID, "978-5")
	require.NoError(t, err)
	_, err = lib.IssueLoan(alice.ID, "978-5")
	require.ErrorAs(t, err, &serr)
	assert.Contains(t, serr.Reason, "already has")
}

func TestSingleCopyLifecycle(t *testing.T) {
	lib, _ := newTestLibrary(t)
	b, err := lib.AddBook("0-1", "T", "A", ThemeFiction, 1)
	require.NoError(t, err)
	alice, err := lib.AddMember("Alice", "Nguyen", 29, "", "")
	require.NoError(t, err)
	bob, err := lib.AddMember("Bob", "Martin", 41, "", "")
	require.NoError(t, err)

	_, err = lib.IssueLoan(alice.ID, "0-1")
	require.NoError(t, err)
	assert.Equal(t, 0, b.AvailableCopies)

	// The only copy is out; a second member cannot take it.
	var serr *StateError
	_, err = lib.IssueLoan(bob.ID, "0-1")
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, 0, b.AvailableCopies)

	_, _, err = lib.ReturnLoan(alice.ID, "0-1")
	require.NoError(t, err)
	assert.Equal(t, 1, b.AvailableCopies)
	require.Len(t, lib.LoanHistory(), 1)
	assert.True(t, lib.LoanHistory()[0].Returned)
	assert.Empty(t, lib.ActiveLoans())
}

func TestIssueLoanFailureLeavesStateUntouched(t *testing.T) {
	lib, _ := newTestLibrary(t)
	b := addTestBook(t, lib, "978-1", 1)
	m := addTestMember(t, lib, "Alice")

	_, err := lib.IssueLoan(m.ID, "978-1")
	require.NoError(t, err)
	_, err = lib.IssueLoan(m.ID, "978-1")
	require.Error(t, err)

	assert.Equal(t, 0, b.AvailableCopies)
	assert.Len(t, lib.ActiveLoans(), 1)
	assert.Len(t, m.ActiveLoans(), 1)
}

func TestReturnLoanOnTime(t *testing.T) {
	lib, clock := newTestLibrary(t)
	b := addTestBook(t, lib, "978-1", 1)
	m := addTestMember(t, lib, "Alice")

	_, err := lib.IssueLoan(m.ID, "978-1")
	require.NoError(t, err)
	clock.Advance(10)

	loan, fee, err := lib.ReturnLoan(m.ID, "978-1")
	require.NoError(t, err)
	assert.True(t, loan.Returned)
	assert.Equal(t, 0.00, fee)
	assert.Equal(t, 1, b.AvailableCopies)
	assert.Len(t, lib.ActiveLoans(), 0)
	assert.Len(t, lib.LoanHistory(), 1)
	assert.Len(t, m.LoanHistory(), 1)
	assert.Equal(t, 0.00, m.AccruedFees)
}

func TestReturnLoanLateAccruesFee(t *testing.T) {
	lib, clock := newTestLibrary(t)
	addTestBook(t, lib, "978-1", 1)
	m := addTestMember(t, lib, "Alice")

	_, err := lib.IssueLoan(m.ID, "978-1")
	require.NoError(t, err)

	// 14-day period, returned on day 24: ten days late at $0.50/day.
	clock.Advance(24)
	_, fee, err := lib.ReturnLoan(m.ID, "978-1")
	require.NoError(t, err)
	assert.Equal(t, 5.00, fee)
	assert.Equal(t, 5.00, m.AccruedFees)
}

func TestReturnLoanFeeUsesCurrentPlanRate(t *testing.T) {
	lib, clock := newTestLibrary(t)
	addTestBook(t, lib, "978-1", 1)
	m := addTestMember(t, lib, "Alice")

	_, err := lib.IssueLoan(m.ID, "978-1")
	require.NoError(t, err)

	// The member upgrades mid-loan; the VIP rate applies to the whole
	// overdue span at return time.
	require.True(t, m.UpgradePlan(TierVIP, clock.Now()))
	clock.Advance(24)
	_, fee, err := lib.ReturnLoan(m.ID, "978-1")
	require.NoError(t, err)
	assert.Equal(t, 1.00, fee)
}

func TestReturnUnknownLoan(t *testing.T) {
	lib, _ := newTestLibrary(t)
	addTestBook(t, lib, "978-1", 1)
	m := addTestMember(t, lib, "Alice")

	var nerr *NotFoundError
	_, _, err := lib.ReturnLoan(m.ID, "978-1")
	require.ErrorAs(t, err, &nerr)
	assert.Equal(t, "active loan", nerr.Entity)
}

func TestReturnLoanIsIdempotentPerLoan(t *testing.T) {
	lib, _ := newTestLibrary(t)
	addTestBook(t, lib, "978-1", 1)
	m := addTestMember(t, lib, "Alice")

	_, err := lib.IssueLoan(m.ID, "978-1")
	require.NoError(t, err)
	_, _, err = lib.ReturnLoan(m.ID, "978-1")
	require.NoError(t, err)

	// The second return finds no active loan.
	var nerr *NotFoundError
	_, _, err = lib.ReturnLoan(m.ID, "978-1")
	require.ErrorAs(t, err, &nerr)
}

func TestExtendLoanThroughRegistry(t *testing.T) {
	lib, clock := newTestLibrary(t)
	addTestBook(t, lib, "978-1", 1)
	m := addTestMember(t, lib, "Alice")

	loan, err := lib.IssueLoan(m.ID, "978-1")
	require.NoError(t, err)
	due := loan.DueDate

	got, err := lib.ExtendLoan(m.ID, "978-1", 7)
	require.NoError(t, err)
	assert.Equal(t, due.AddDate(0, 0, 7), got.DueDate)

	clock.Advance(30)
	var serr *StateError
	_, err = lib.ExtendLoan(m.ID, "978-1", 7)
	require.ErrorAs(t, err, &serr)
}

func TestOverdueLoansAndStats(t *testing.T) {
	lib, clock := newTestLibrary(t)
	addTestBook(t, lib, "978-1", 2)
	addTestBook(t, lib, "978-2", 1)
	alice := addTestMember(t, lib, "Alice")
	bob := addTestMember(t, lib, "Bob")

	_, err := lib.IssueLoan(alice.ID, "978-1")
	require.NoError(t, err)
	clock.Advance(10)
	_, err = lib.IssueLoan(bob.ID, "978-2")
	require.NoError(t, err)
	clock.Advance(10)

	// Alice's loan is 20 days in (overdue), Bob's only 10.
	overdue := lib.OverdueLoans()
	require.Len(t, overdue, 1)
	assert.Equal(t, alice.ID, overdue[0].Member.ID)

	stats := lib.Stats()
	assert.Equal(t, 2, stats.TotalTitles)
	assert.Equal(t, 3, stats.TotalCopies)
	assert.Equal(t, 1, stats.AvailableCopies)
	assert.Equal(t, 2, stats.BorrowedCopies)
	assert.Equal(t, 2, stats.Members)
	assert.Equal(t, 2, stats.ActiveLoans)
	assert.Equal(t, 1, stats.OverdueLoans)
}

func TestMemberOverdueFeesCombinesBalanceAndLive(t *testing.T) {
	lib, clock := newTestLibrary(t)
	addTestBook(t, lib, "978-1", 1)
	addTestBook(t, lib, "978-2", 1)
	m := addTestMember(t, lib, "Alice")

	_, err := lib.IssueLoan(m.ID, "978-1")
	require.NoError(t, err)
	_, err = lib.IssueLoan(m.ID, "978-2")
	require.NoError(t, err)

	clock.Advance(24)
	_, _, err = lib.ReturnLoan(m.ID, "978-1")
	require.NoError(t, err)

	// $5.00 accrued from the returned loan plus $5.00 live on the other.
	total, err := lib.MemberOverdueFees(m.ID)
	require.NoError(t, err)
	assert.Equal(t, 10.00, total)
}

func TestStaffLookupAndRemoval(t *testing.T) {
	lib, _ := newTestLibrary(t)
	s, err := lib.AddStaff("Erin", "Kowalski", 38, "erin@example.com", "secret1", "EMP-1")
	require.NoError(t, err)

	got, err := lib.FindStaff(s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)

	p, err := lib.FindByEmail("ERIN@example.com")
	require.NoError(t, err)
	assert.Equal(t, s.ID, p.Base().ID)

	require.NoError(t, lib.RemoveStaff(s.ID))
	var nerr *NotFoundError
	_, err = lib.FindStaff(s.ID)
	require.ErrorAs(t, err, &nerr)
	require.ErrorAs(t, lib.RemoveStaff(s.ID), &nerr)
	_, err = lib.FindByEmail("erin@example.com")
	require.ErrorAs(t, err, &nerr)
}

func TestLoanHistoryByMember(t *testing.T) {
	lib, _ := newTestLibrary(t)
	addTestBook(t, lib, "978-1", 2)
	alice := addTestMember(t, lib, "Alice")
	bob := addTestMember(t, lib, "Bob")

	_, err := lib.IssueLoan(alice.ID, "978-1")
	require.NoError(t, err)
	_, err = lib.IssueLoan(bob.ID, "978-1")
	require.NoError(t, err)
	_, _, err = lib.ReturnLoan(alice.ID, "978-1")
	require.NoError(t, err)

	require.Len(t, lib.LoanHistoryByMember(alice.ID), 1)
	assert.Empty(t, lib.LoanHistoryByMember(bob.ID))
	require.Len(t, lib.ActiveLoansByMember(bob.ID), 1)
	assert.Empty(t, lib.ActiveLoansByMember(alice.ID))
}

// ---------------------------------------------------------------------------
// Authentication
// ---------------------------------------------------------------------------

func TestLibraryAuthenticate(t *testing.T) {
	lib, _ := newTestLibrary(t)
	m, err := lib.AddMember("Alice", "Nguyen", 29, "alice@example.com", "secret1")
	require.NoError(t, err)

	var aerr *AuthError
	_, err = lib.Authenticate("nobody@example.com", "secret1")
	require.ErrorAs(t, err, &aerr)
	_, err = lib.Authenticate("alice@example.com", "wrong")
	require.ErrorAs(t, err, &aerr)
	assert.Nil(t, lib.CurrentPrincipal())

	p, err := lib.Authenticate("alice@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, m.ID, p.Base().ID)
	assert.Equal(t, p, lib.CurrentPrincipal())

	require.NoError(t, lib.Logout())
	assert.Nil(t, lib.CurrentPrincipal())

	var serr *StateError
	require.ErrorAs(t, lib.Logout(), &serr)
}

func TestLoginFollowsRegistryClock(t *testing.T) {
	lib, clock := newTestLibrary(t)
	addTestBook(t, lib, "978-1", 1)
	m, err := lib.AddMember("Alice", "Nguyen", 29, "alice@example.com", "secret1")
	require.NoError(t, err)
	_, err = lib.IssueLoan(m.ID, "978-1")
	require.NoError(t, err)
	clock.Advance(20)

	// The loan is overdue on the injected clock regardless of wall time,
	// and the last-login stamp comes from the same clock.
	p, err := lib.Authenticate("alice@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, clock.Now(), p.Base().LastLogin)

	notices := p.Base().LoginNotices()
	require.Len(t, notices, 2)
	assert.Contains(t, notices[0], "1 active loan(s)")
	assert.Contains(t, notices[1], "overdue")
}

func TestStaffLoginNoticesIncludeStats(t *testing.T) {
	lib, _ := newTestLibrary(t)
	addTestBook(t, lib, "978-1", 1)
	addTestMember(t, lib, "Alice")
	_, err := lib.AddStaff("Erin", "Kowalski", 38, "erin@example.com", "secret1", "EMP-1")
	require.NoError(t, err)

	p, err := lib.Authenticate("erin@example.com", "secret1")
	require.NoError(t, err)

	notices := p.Base().LoginNotices()
	require.GreaterOrEqual(t, len(notices), 2)
	assert.Contains(t, notices[0], "staff access")
	assert.Contains(t, notices[1], "1 books, 1 members")
}

// ---------------------------------------------------------------------------
// Restore paths
// ---------------------------------------------------------------------------

func TestRestoreBumpsIDAllocator(t *testing.T) {
	lib, clock := newTestLibrary(t)
	m, err := NewMember(150, "Alice", "Nguyen", 29, "", "", clock.Now())
	require.NoError(t, err)
	require.NoError(t, lib.RestoreMember(m))

	next := addTestMember(t, lib, "Bob")
	assert.Equal(t, 151, next.ID)
}

func TestRestoreLoanRelinksWithoutTouchingCounters(t *testing.T) {
	lib, clock := newTestLibrary(t)
	m, err := NewMember(150, "Alice", "Nguyen", 29, "", "", clock.Now())
	require.NoError(t, err)
	require.NoError(t, lib.RestoreMember(m))
	b, err := NewBookWithAvailable("978-1", "T", "A", ThemeFiction, 1, 0)
	require.NoError(t, err)
	require.NoError(t, lib.RestoreBook(b))

	loanDate := dateOf(clock.Now()).AddDate(0, 0, -5)
	dueDate := loanDate.AddDate(0, 0, 14)
	require.NoError(t, lib.RestoreLoan(m.ID, "978-1", loanDate, dueDate, time.Time{}, false))

	require.Len(t, lib.ActiveLoans(), 1)
	require.Len(t, m.ActiveLoans(), 1)
	assert.Equal(t, 0, b.AvailableCopies)

	// Historical records land in history on both sides.
	retDate := loanDate.AddDate(0, 0, 10)
	require.NoError(t, lib.RestoreLoan(m.ID, "978-1", loanDate, dueDate, retDate, true))
	assert.Len(t, lib.LoanHistory(), 1)
	assert.Len(t, m.LoanHistory(), 1)

	var nerr *NotFoundError
	require.ErrorAs(t, lib.RestoreLoan(999, "978-1", loanDate, dueDate, time.Time{}, false), &nerr)
}

func TestRestoreHistoricalLoanWithDetachedParties(t *testing.T) {
	lib, clock := newTestLibrary(t)
	loanDate := dateOf(clock.Now()).AddDate(0, 0, -30)
	rec := HistoricalLoanRecord{
		MemberID:      150,
		MemberName:    "Alice",
		MemberSurname: "Nguyen",
		ISBN:          "978-1",
		BookTitle:     "Dune",
		LoanDate:      loanDate,
		DueDate:       loanDate.AddDate(0, 0, 14),
		ReturnDate:    loanDate.AddDate(0, 0, 10),
	}

	// Neither the member nor the book exists; the history entry is built
	// from the record alone.
	lib.RestoreHistoricalLoan(rec)
	history := lib.LoanHistory()
	require.Len(t, history, 1)
	assert.True(t, history[0].Returned)
	assert.Equal(t, "Alice Nguyen", history[0].Member.FullName())
	assert.Equal(t, "Dune", history[0].Book.Title)
	assert.NotEmpty(t, history[0].Summary(clock.Now()))

	// The detached stub is not registered as a live member.
	var nerr *NotFoundError
	_, err := lib.FindMember(150)
	require.ErrorAs(t, err, &nerr)
}

func TestRestoreHistoricalLoanRelinksLiveMember(t *testing.T) {
	lib, clock := newTestLibrary(t)
	m, err := NewMember(150, "Alice", "Nguyen", 29, "", "", clock.Now())
	require.NoError(t, err)
	require.NoError(t, lib.RestoreMember(m))

	loanDate := dateOf(clock.Now()).AddDate(0, 0, -30)
	lib.RestoreHistoricalLoan(HistoricalLoanRecord{
		MemberID:   m.ID,
		ISBN:       "978-1",
		BookTitle:  "Dune",
		LoanDate:   loanDate,
		DueDate:    loanDate.AddDate(0, 0, 14),
		ReturnDate: loanDate.AddDate(0, 0, 10),
	})

	history := lib.LoanHistory()
	require.Len(t, history, 1)
	assert.Same(t, m, history[0].Member)
	require.Len(t, m.LoanHistory(), 1)
}
