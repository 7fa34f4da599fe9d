package persist

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	jsoniter "github.com/json-iterator/go"
	_ "github.com/mattn/go-sqlite3"

	"library-management/library"
)

// Store persists the library's entity collections in SQLite, one
// snapshot artifact per collection. Each collection is saved as a whole
// unit, delete plus reinsert inside one transaction, and loaded back
// as a whole unit: any failure while decoding an artifact yields an
// empty collection, never a partial one. Loans are stored as flat
// records (member id, ISBN, dates) and re-linked to the live entities
// on load.
type Store struct {
	db *sql.DB
}

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Collection names, one artifact each.
const (
	colBooks       = "books"
	colMembers     = "members"
	colStaff       = "staff"
	colLoans       = "loans_active"
	colLoanHistory = "loans_history"
)

const schemaVersion = 1

// Open opens (or creates) the snapshot database at dbPath and applies
// schema migrations.
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=1", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := applyMigrations(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

func applyMigrations(db *sql.DB) error {
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return fmt.Errorf("enable WAL: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT);`); err != nil {
		return err
	}

	var current int
	_ = db.QueryRow(`SELECT value FROM meta WHERE key='schema_version';`).Scan(&current)
	if current >= schemaVersion {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS snapshots (
            collection TEXT NOT NULL,
            seq INTEGER NOT NULL,
            doc TEXT NOT NULL,
            PRIMARY KEY (collection, seq)
        );`,
		`INSERT INTO meta(key,value) VALUES('schema_version',?)
            ON CONFLICT(key) DO UPDATE SET value=excluded.value;`,
	}
	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt, schemaVersion); err != nil {
			return fmt.Errorf("apply migration: %w", err)
		}
	}
	return tx.Commit()
}

// ---------------------------------------------------------------------------
// Collection snapshots
// ---------------------------------------------------------------------------

// saveCollection replaces a collection's artifact with docs in one
// transaction.
func (s *Store) saveCollection(collection string, docs [][]byte) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM snapshots WHERE collection=?`, collection); err != nil {
		return fmt.Errorf("clear %s: %w", collection, err)
	}
	for i, doc := range docs {
		if _, err := tx.Exec(`INSERT INTO snapshots(collection,seq,doc) VALUES(?,?,?)`,
			collection, i, string(doc)); err != nil {
			return fmt.Errorf("insert %s: %w", collection, err)
		}
	}
	return tx.Commit()
}

// loadCollection reads a collection's raw documents in insertion order.
func (s *Store) loadCollection(collection string) ([][]byte, error) {
	rows, err := s.db.Query(`SELECT doc FROM snapshots WHERE collection=? ORDER BY seq`, collection)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", collection, err)
	}
	defer rows.Close()

	var docs [][]byte
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan %s: %w", collection, err)
		}
		docs = append(docs, []byte(doc))
	}
	return docs, rows.Err()
}

// loanRecord is the flat persisted form of a Loan; the entity
// references are re-linked on load. The party names ride along so a
// historical record stays rebuildable after its member or book has
// been removed.
type loanRecord struct {
	MemberID      int       `json:"member_id"`
	MemberName    string    `json:"member_name"`
	MemberSurname string    `json:"member_surname"`
	ISBN          string    `json:"isbn"`
	BookTitle     string    `json:"book_title"`
	LoanDate      time.Time `json:"loan_date"`
	DueDate       time.Time `json:"due_date"`
	ReturnDate    time.Time `json:"return_date,omitempty"`
	Returned      bool      `json:"returned"`
}

func marshalAll[T any](items []T) ([][]byte, error) {
	docs := make([][]byte, 0, len(items))
	for _, item := range items {
		doc, err := json.Marshal(item)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// decodeAll turns an artifact back into entities. Any failure, the
// read itself or a single bad document, yields an empty slice so a
// damaged artifact never produces a partial collection.
func decodeAll[T any](s *Store, collection string) []T {
	docs, err := s.loadCollection(collection)
	if err != nil {
		logger.Warn().Str("collection", collection).Err(err).
			Msg("loading snapshot failed, starting with empty collection")
		return nil
	}
	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		var item T
		if err := json.Unmarshal(doc, &item); err != nil {
			logger.Warn().Str("collection", collection).Err(err).
				Msg("decoding snapshot failed, starting with empty collection")
			return nil
		}
		out = append(out, item)
	}
	return out
}

// ---------------------------------------------------------------------------
// Whole-library save / load
// ---------------------------------------------------------------------------

// SaveLibrary snapshots every collection of lib. Each collection is an
// atomic artifact; a failure in one leaves the others as saved.
func (s *Store) SaveLibrary(lib *library.Library) error {
	books, err := marshalAll(lib.Books())
	if err != nil {
		return fmt.Errorf("marshal books: %w", err)
	}
	if err := s.saveCollection(colBooks, books); err != nil {
		return err
	}

	members, err := marshalAll(lib.Members())
	if err != nil {
		return fmt.Errorf("marshal members: %w", err)
	}
	if err := s.saveCollection(colMembers, members); err != nil {
		return err
	}

	staff, err := marshalAll(lib.StaffMembers())
	if err != nil {
		return fmt.Errorf("marshal staff: %w", err)
	}
	if err := s.saveCollection(colStaff, staff); err != nil {
		return err
	}

	active, err := marshalAll(loanRecords(lib.ActiveLoans()))
	if err != nil {
		return fmt.Errorf("marshal active loans: %w", err)
	}
	if err := s.saveCollection(colLoans, active); err != nil {
		return err
	}

	history, err := marshalAll(loanRecords(lib.LoanHistory()))
	if err != nil {
		return fmt.Errorf("marshal loan history: %w", err)
	}
	return s.saveCollection(colLoanHistory, history)
}

func loanRecords(loans []*library.Loan) []loanRecord {
	out := make([]loanRecord, 0, len(loans))
	for _, l := range loans {
		out = append(out, loanRecord{
			MemberID:      l.Member.ID,
			MemberName:    l.Member.Name,
			MemberSurname: l.Member.Surname,
			ISBN:          l.Book.ISBN,
			BookTitle:     l.Book.Title,
			LoanDate:      l.LoanDate,
			DueDate:       l.DueDate,
			ReturnDate:    l.ReturnDate,
			Returned:      l.Returned,
		})
	}
	return out
}

// LoadLibrary rebuilds a registry from the snapshots. Collections that
// fail to load come back empty. Active loan records whose member or
// book no longer resolves are skipped with a warning; historical
// records are always restored, with detached stubs standing in for
// removed parties.
func (s *Store) LoadLibrary(name string, opts ...library.Option) (*library.Library, error) {
	lib := library.NewLibrary(name, opts...)

	for _, b := range decodeAll[*library.Book](s, colBooks) {
		if err := lib.RestoreBook(b); err != nil {
			logger.Warn().Str("isbn", b.ISBN).Err(err).Msg("skipping book")
		}
	}
	for _, m := range decodeAll[*library.Member](s, colMembers) {
		if err := lib.RestoreMember(m); err != nil {
			logger.Warn().Int("id", m.ID).Err(err).Msg("skipping member")
		}
	}
	for _, st := range decodeAll[*library.Staff](s, colStaff) {
		if err := lib.RestoreStaff(st); err != nil {
			logger.Warn().Int("id", st.ID).Err(err).Msg("skipping staff")
		}
	}
	restoreActiveLoans(lib, decodeAll[loanRecord](s, colLoans))
	restoreLoanHistory(lib, decodeAll[loanRecord](s, colLoanHistory))
	return lib, nil
}

func restoreActiveLoans(lib *library.Library, records []loanRecord) {
	for _, rec := range records {
		err := lib.RestoreLoan(rec.MemberID, rec.ISBN, rec.LoanDate, rec.DueDate, rec.ReturnDate, rec.Returned)
		if err != nil {
			logger.Warn().Int("member", rec.MemberID).Str("isbn", rec.ISBN).Err(err).
				Msg("skipping active loan record that no longer resolves")
		}
	}
}

func restoreLoanHistory(lib *library.Library, records []loanRecord) {
	for _, rec := range records {
		lib.RestoreHistoricalLoan(library.HistoricalLoanRecord{
			MemberID:      rec.MemberID,
			MemberName:    rec.MemberName,
			MemberSurname: rec.MemberSurname,
			ISBN:          rec.ISBN,
			BookTitle:     rec.BookTitle,
			LoanDate:      rec.LoanDate,
			DueDate:       rec.DueDate,
			ReturnDate:    rec.ReturnDate,
		})
	}
}
