package library

import (
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Library is the registry: it owns every entity collection and is the
// only component allowed to mutate cross-entity state. Entities hold
// references to each other but never back into the registry (staff are
// the one exception, re-linked explicitly).
//
// The core is single-actor by design; the mutex serializes the whole
// mutation surface for callers that share one instance across
// goroutines. Every operation either fully succeeds or fails without
// touching shared state.
type Library struct {
	mu sync.Mutex

	name    string
	books   map[string]*Book
	members map[int]*Member
	staff   map[int]*Staff
	active  []*Loan
	history []*Loan

	current Principal
	ids     *IDAllocator
	now     func() time.Time
}

// Option configures a Library at construction.
type Option func(*Library)

// WithClock replaces the registry clock, which stamps loan and plan
// dates. Tests use it to make due dates and fees deterministic.
func WithClock(now func() time.Time) Option {
	return func(l *Library) { l.now = now }
}

// WithIDAllocator replaces the principal id allocator.
func WithIDAllocator(a *IDAllocator) Option {
	return func(l *Library) { l.ids = a }
}

// NewLibrary creates an empty registry.
func NewLibrary(name string, opts ...Option) *Library {
	if name == "" {
		name = "Community Library"
	}
	l := &Library{
		name:    name,
		books:   make(map[string]*Book),
		members: make(map[int]*Member),
		staff:   make(map[int]*Staff),
		ids:     NewIDAllocator(reservedBaseID),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Name returns the library's display name.
func (l *Library) Name() string { return l.name }

// ---------------------------------------------------------------------------
// Book management
// ---------------------------------------------------------------------------

// AddBook creates a book and inserts it into the inventory.
func (l *Library) AddBook(isbn, title, author string, theme Theme, totalCopies int) (*Book, error) {
	b, err := NewBook(isbn, title, author, theme, totalCopies)
	if err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.books[b.ISBN]; exists {
		return nil, &DuplicateKeyError{Entity: "book", Key: b.ISBN}
	}
	l.books[b.ISBN] = b
	return b, nil
}

// RestoreBook inserts an already-built book, as when loading persisted
// inventory.
func (l *Library) RestoreBook(b *Book) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.books[b.ISBN]; exists {
		return &DuplicateKeyError{Entity: "book", Key: b.ISBN}
	}
	l.books[b.ISBN] = b
	return nil
}

// RemoveBook deletes a title. Every copy must be on the shelf; a title
// with copies out on loan cannot be removed.
func (l *Library) RemoveBook(isbn string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, err := l.lookupBook(isbn)
	if err != nil {
		return err
	}
	if b.AvailableCopies < b.TotalCopies {
		return statef("cannot remove %q: some copies are currently borrowed", b.Title)
	}
	delete(l.books, isbn)
	return nil
}

// FindBook looks a title up by ISBN.
func (l *Library) FindBook(isbn string) (*Book, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lookupBook(isbn)
}

func (l *Library) lookupBook(isbn string) (*Book, error) {
	b, ok := l.books[isbn]
	if !ok {
		return nil, &NotFoundError{Entity: "book", Key: isbn}
	}
	return b, nil
}

// Books returns the inventory sorted by ISBN.
func (l *Library) Books() []*Book {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]*Book, 0, len(l.books))
	for _, b := range l.books {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ISBN < out[j].ISBN })
	return out
}

// AvailableBooks returns the titles with at least one copy on the shelf.
func (l *Library) AvailableBooks() []*Book {
	var out []*Book
	for _, b := range l.Books() {
		if b.IsAvailable() {
			out = append(out, b)
		}
	}
	return out
}

// FindBooksByTitle matches titles by case-insensitive substring. Absent
// matches yield an empty result, never an error.
func (l *Library) FindBooksByTitle(q string) []*Book {
	q = strings.ToLower(q)
	var out []*Book
	for _, b := range l.Books() {
		if strings.Contains(strings.ToLower(b.Title), q) {
			out = append(out, b)
		}
	}
	return out
}

// FindBooksByAuthor matches authors by case-insensitive substring.
func (l *Library) FindBooksByAuthor(q string) []*Book {
	q = strings.ToLower(q)
	var out []*Book
	for _, b := range l.Books() {
		if strings.Contains(strings.ToLower(b.Author), q) {
			out = append(out, b)
		}
	}
	return out
}

// FindBooksByTheme matches the exact theme literal; an unknown literal
// yields an empty result.
func (l *Library) FindBooksByTheme(name string) []*Book {
	theme, ok := ThemeFromName(name)
	if !ok {
		return nil
	}
	var out []*Book
	for _, b := range l.Books() {
		if b.Theme == theme {
			out = append(out, b)
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// Principal management
// ---------------------------------------------------------------------------

// AddMember registers a member, allocating its id. A non-blank email
// must be unique across all principals.
func (l *Library) AddMember(name, surname string, age int, email, password string) (*Member, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if email != "" && l.lookupByEmail(email) != nil {
		return nil, &DuplicateKeyError{Entity: "principal email", Key: email}
	}
	m, err := NewMember(l.ids.allocate(), name, surname, age, email, password, l.now())
	if err != nil {
		return nil, err
	}
	l.members[m.ID] = m
	return m, nil
}

// AddStaff registers a staff principal, allocating its id and linking
// the library back-reference.
func (l *Library) AddStaff(name, surname string, age int, email, password, employeeID string) (*Staff, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if email != "" && l.lookupByEmail(email) != nil {
		return nil, &DuplicateKeyError{Entity: "principal email", Key: email}
	}
	s, err := NewStaff(l.ids.allocate(), name, surname, age, email, password, employeeID, l.now())
	if err != nil {
		return nil, err
	}
	s.library = l
	l.staff[s.ID] = s
	return s, nil
}

// RestoreMember inserts an already-built member and bumps the allocator
// past its id.
func (l *Library) RestoreMember(m *Member) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.members[m.ID]; exists {
		return &DuplicateKeyError{Entity: "member", Key: strconv.Itoa(m.ID)}
	}
	l.members[m.ID] = m
	l.ids.ensureAbove(m.ID)
	return nil
}

// RestoreStaff inserts an already-built staff principal, re-linking the
// library back-reference and bumping the allocator.
func (l *Library) RestoreStaff(s *Staff) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.staff[s.ID]; exists {
		return &DuplicateKeyError{Entity: "staff", Key: strconv.Itoa(s.ID)}
	}
	s.library = l
	l.staff[s.ID] = s
	l.ids.ensureAbove(s.ID)
	return nil
}

// RemoveMember deletes a member with no active loans.
func (l *Library) RemoveMember(id int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, err := l.lookupMember(id)
	if err != nil {
		return err
	}
	if len(m.activeLoans) > 0 {
		return statef("cannot remove member %s: has active loans", m.FullName())
	}
	delete(l.members, id)
	return nil
}

// RemoveStaff deletes a staff principal.
func (l *Library) RemoveStaff(id int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.staff[id]; !ok {
		return &NotFoundError{Entity: "staff", Key: strconv.Itoa(id)}
	}
	delete(l.staff, id)
	return nil
}

// FindMember looks a member up by id.
func (l *Library) FindMember(id int) (*Member, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lookupMember(id)
}

func (l *Library) lookupMember(id int) (*Member, error) {
	m, ok := l.members[id]
	if !ok {
		return nil, &NotFoundError{Entity: "member", Key: strconv.Itoa(id)}
	}
	return m, nil
}

// FindStaff looks a staff principal up by id.
func (l *Library) FindStaff(id int) (*Staff, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.staff[id]
	if !ok {
		return nil, &NotFoundError{Entity: "staff", Key: strconv.Itoa(id)}
	}
	return s, nil
}

// FindByEmail resolves a principal by email, case-insensitively. Staff
// are scanned before members; the first match wins, which is where
// email uniqueness is relied upon.
func (l *Library) FindByEmail(email string) (Principal, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if p := l.lookupByEmail(email); p != nil {
		return p, nil
	}
	return nil, &NotFoundError{Entity: "principal", Key: email}
}

func (l *Library) lookupByEmail(email string) Principal {
	for _, id := range l.staffIDs() {
		s := l.staff[id]
		if s.Email != "" && strings.EqualFold(s.Email, email) {
			return s
		}
	}
	for _, id := range l.memberIDs() {
		m := l.members[id]
		if m.Email != "" && strings.EqualFold(m.Email, email) {
			return m
		}
	}
	return nil
}

// Members returns all members sorted by id.
func (l *Library) Members() []*Member {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]*Member, 0, len(l.members))
	for _, id := range l.memberIDs() {
		out = append(out, l.members[id])
	}
	return out
}

// StaffMembers returns all staff sorted by id.
func (l *Library) StaffMembers() []*Staff {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]*Staff, 0, len(l.staff))
	for _, id := range l.staffIDs() {
		out = append(out, l.staff[id])
	}
	return out
}

func (l *Library) memberIDs() []int {
	ids := make([]int, 0, len(l.members))
	for id := range l.members {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func (l *Library) staffIDs() []int {
	ids := make([]int, 0, len(l.staff))
	for id := range l.staff {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// FindMembersByName matches name or surname by case-insensitive
// substring.
func (l *Library) FindMembersByName(q string) []*Member {
	q = strings.ToLower(q)
	var out []*Member
	for _, m := range l.Members() {
		if strings.Contains(strings.ToLower(m.Name), q) ||
			strings.Contains(strings.ToLower(m.Surname), q) {
			out = append(out, m)
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// Loan management
// ---------------------------------------------------------------------------

// IssueLoan lends a book to a member. The checks run in a fixed order
// that callers rely on for error precedence:
//
//  1. member and book must exist (NotFoundError)
//  2. the book must have an available copy (StateError)
//  3. the member must be under the plan's loan limit (LimitError)
//  4. the member must hold no overdue loan (StateError)
//  5. the member must not already hold this book (StateError)
//
// Nothing mutates until every check has passed.
func (l *Library) IssueLoan(memberID int, isbn string) (*Loan, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	m, err := l.lookupMember(memberID)
	if err != nil {
		return nil, err
	}
	b, err := l.lookupBook(isbn)
	if err != nil {
		return nil, err
	}
	if !b.IsAvailable() {
		return nil, statef("%q is not available for borrowing", b.Title)
	}
	if !m.CanBorrowMore() {
		return nil, limitf("member has reached the plan loan limit of %d books", m.Plan.MaxLoans())
	}
	today := l.now()
	if m.HasOverdueLoans(today) {
		return nil, statef("member has overdue books, return them first")
	}
	if m.activeLoanFor(isbn) != nil {
		return nil, statef("member already has %q on loan", b.Title)
	}

	loan, err := NewLoan(m, b, m.Plan.LoanPeriodDays(), today)
	if err != nil {
		return nil, err
	}
	if err := b.BorrowCopy(); err != nil {
		return nil, err
	}
	m.addLoan(loan)
	l.active = append(l.active, loan)
	return loan, nil
}

// ReturnLoan closes a member's loan of a book. The overdue fee is
// computed at the member's current plan rate (a member who upgraded
// mid-loan gets the new rate for the whole overdue span) and accrued
// to the member's balance, not collected. The loan moves
// from the active set into history for both the registry and the
// member.
func (l *Library) ReturnLoan(memberID int, isbn string) (*Loan, float64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var loan *Loan
	for _, cur := range l.active {
		if cur.Member.ID == memberID && cur.Book.ISBN == isbn && !cur.Returned {
			loan = cur
			break
		}
	}
	if loan == nil {
		return nil, 0, &NotFoundError{
			Entity: "active loan",
			Key:    strconv.Itoa(memberID) + "/" + isbn,
		}
	}

	today := l.now()
	fee, err := loan.OverdueFee(loan.Member.Plan.DailyOverdueFee(), today)
	if err != nil {
		return nil, 0, err
	}
	if err := loan.markReturned(today); err != nil {
		return nil, 0, err
	}
	l.retireLoan(loan)
	loan.Member.retireLoan(loan)
	if err := loan.Book.ReturnCopy(); err != nil {
		return nil, 0, err
	}
	loan.Member.AccruedFees = roundCents(loan.Member.AccruedFees + fee)
	return loan, fee, nil
}

func (l *Library) retireLoan(loan *Loan) {
	for i, cur := range l.active {
		if cur == loan {
			l.active = append(l.active[:i], l.active[i+1:]...)
			break
		}
	}
	l.history = append(l.history, loan)
}

// ExtendLoan pushes a member's active loan out by additionalDays,
// subject to the loan's own gating.
func (l *Library) ExtendLoan(memberID int, isbn string, additionalDays int) (*Loan, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, err := l.lookupMember(memberID)
	if err != nil {
		return nil, err
	}
	loan := m.activeLoanFor(isbn)
	if loan == nil {
		return nil, &NotFoundError{
			Entity: "active loan",
			Key:    strconv.Itoa(memberID) + "/" + isbn,
		}
	}
	if err := loan.Extend(additionalDays, l.now()); err != nil {
		return nil, err
	}
	return loan, nil
}

// RestoreLoan re-links one persisted loan record to the live member and
// book, rebuilding the active or historical set. Book counters are
// persisted separately and are not touched here.
func (l *Library) RestoreLoan(memberID int, isbn string, loanDate, dueDate, returnDate time.Time, returned bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, err := l.lookupMember(memberID)
	if err != nil {
		return err
	}
	b, err := l.lookupBook(isbn)
	if err != nil {
		return err
	}
	loan := &Loan{
		Member:     m,
		Book:       b,
		LoanDate:   loanDate,
		DueDate:    dueDate,
		ReturnDate: returnDate,
		Returned:   returned,
	}
	if returned {
		l.history = append(l.history, loan)
		m.restoreHistory(loan)
		return nil
	}
	l.active = append(l.active, loan)
	m.addLoan(loan)
	return nil
}

// HistoricalLoanRecord carries enough context to rebuild a returned
// loan without its live parties: the names stand in when the member or
// book has since been removed.
type HistoricalLoanRecord struct {
	MemberID      int
	MemberName    string
	MemberSurname string
	ISBN          string
	BookTitle     string
	LoanDate      time.Time
	DueDate       time.Time
	ReturnDate    time.Time
}

// RestoreHistoricalLoan rebuilds a returned loan. Returned loans are
// never deleted: when the member or book no longer resolves, a
// detached stub built from the record's names takes its place, so
// history survives entity removal. Live parties are re-linked when
// they still exist.
func (l *Library) RestoreHistoricalLoan(rec HistoricalLoanRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, memberErr := l.lookupMember(rec.MemberID)
	if memberErr != nil {
		m = &Member{User: User{
			ID:      rec.MemberID,
			Name:    rec.MemberName,
			Surname: rec.MemberSurname,
			Role:    RoleMember,
		}}
	}
	b, bookErr := l.lookupBook(rec.ISBN)
	if bookErr != nil {
		b = &Book{ISBN: rec.ISBN, Title: rec.BookTitle, Author: "Unknown", Theme: ThemeOther}
	}
	loan := &Loan{
		Member:     m,
		Book:       b,
		LoanDate:   rec.LoanDate,
		DueDate:    rec.DueDate,
		ReturnDate: rec.ReturnDate,
		Returned:   true,
	}
	l.history = append(l.history, loan)
	if memberErr == nil {
		m.restoreHistory(loan)
	}
}

// ActiveLoans returns a copy of the registry's unreturned loans.
func (l *Library) ActiveLoans() []*Loan {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]*Loan, len(l.active))
	copy(out, l.active)
	return out
}

// LoanHistory returns a copy of the returned loans.
func (l *Library) LoanHistory() []*Loan {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]*Loan, len(l.history))
	copy(out, l.history)
	return out
}

// OverdueLoans returns the active loans past their due date.
func (l *Library) OverdueLoans() []*Loan {
	l.mu.Lock()
	defer l.mu.Unlock()
	today := l.now()
	var out []*Loan
	for _, loan := range l.active {
		if loan.IsOverdue(today) {
			out = append(out, loan)
		}
	}
	return out
}

// ActiveLoansByMember returns a member's unreturned loans.
func (l *Library) ActiveLoansByMember(memberID int) []*Loan {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []*Loan
	for _, loan := range l.active {
		if loan.Member.ID == memberID {
			out = append(out, loan)
		}
	}
	return out
}

// LoanHistoryByMember returns a member's returned loans.
func (l *Library) LoanHistoryByMember(memberID int) []*Loan {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []*Loan
	for _, loan := range l.history {
		if loan.Member.ID == memberID {
			out = append(out, loan)
		}
	}
	return out
}

// MemberOverdueFees reports a member's accrued balance plus the fees
// their live overdue loans would cost today.
func (l *Library) MemberOverdueFees(memberID int) (float64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, err := l.lookupMember(memberID)
	if err != nil {
		return 0, err
	}
	return m.TotalOverdueFees(l.now()), nil
}

// ---------------------------------------------------------------------------
// Authentication
// ---------------------------------------------------------------------------

// Authenticate resolves the principal holding email and logs it in.
// Staff are checked before members. The login-notice hooks run inside
// the principal's Login and cannot fail it.
func (l *Library) Authenticate(email, password string) (Principal, error) {
	l.mu.Lock()
	p := l.lookupByEmail(email)
	today := l.now()
	l.mu.Unlock()
	if p == nil {
		return nil, &AuthError{Reason: "no user found with email " + email}
	}
	if err := p.Login(email, password, today); err != nil {
		return nil, err
	}
	l.mu.Lock()
	l.current = p
	l.mu.Unlock()
	return p, nil
}

// CurrentPrincipal returns the logged-in principal, if any.
func (l *Library) CurrentPrincipal() Principal {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.current
}

// Logout ends the current session.
func (l *Library) Logout() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.current == nil {
		return statef("no user is currently logged in")
	}
	err := l.current.Logout()
	l.current = nil
	return err
}

// ---------------------------------------------------------------------------
// Statistics
// ---------------------------------------------------------------------------

// Stats is the inventory summary the report renders.
type Stats struct {
	TotalTitles     int
	TotalCopies     int
	AvailableCopies int
	BorrowedCopies  int
	Members         int
	Staff           int
	ActiveLoans     int
	OverdueLoans    int
}

// Stats computes the current inventory summary.
func (l *Library) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	s := Stats{
		TotalTitles: len(l.books),
		Members:     len(l.members),
		Staff:       len(l.staff),
		ActiveLoans: len(l.active),
	}
	for _, b := range l.books {
		s.TotalCopies += b.TotalCopies
		s.AvailableCopies += b.AvailableCopies
	}
	s.BorrowedCopies = s.TotalCopies - s.AvailableCopies
	today := l.now()
	for _, loan := range l.active {
		if loan.IsOverdue(today) {
			s.OverdueLoans++
		}
	}
	return s
}
