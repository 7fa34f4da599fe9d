package persist

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"library-management/library"
)

// WriteReport renders the human-readable full-library report: header,
// inventory summary, full listings, footer. The report is write-only
// output for people; nothing ever parses it back.
func WriteReport(w io.Writer, lib *library.Library) error {
	bw := bufio.NewWriter(w)
	now := time.Now()
	rule := strings.Repeat("=", 72)

	fmt.Fprintln(bw, rule)
	fmt.Fprintf(bw, "%s - LIBRARY REPORT\n", strings.ToUpper(lib.Name()))
	fmt.Fprintf(bw, "Generated %s\n", now.Format("2006-01-02 15:04"))
	fmt.Fprintln(bw, rule)

	stats := lib.Stats()
	fmt.Fprintln(bw, "\nINVENTORY SUMMARY")
	fmt.Fprintf(bw, "  Unique titles:    %d\n", stats.TotalTitles)
	fmt.Fprintf(bw, "  Total copies:     %d\n", stats.TotalCopies)
	fmt.Fprintf(bw, "  Available copies: %d\n", stats.AvailableCopies)
	fmt.Fprintf(bw, "  Borrowed copies:  %d\n", stats.BorrowedCopies)
	fmt.Fprintf(bw, "  Members:          %d\n", stats.Members)
	fmt.Fprintf(bw, "  Staff:            %d\n", stats.Staff)
	fmt.Fprintf(bw, "  Active loans:     %d (%d overdue)\n", stats.ActiveLoans, stats.OverdueLoans)

	fmt.Fprintln(bw, "\nBOOKS")
	books := lib.Books()
	if len(books) == 0 {
		fmt.Fprintln(bw, "  (none)")
	}
	for _, b := range books {
		fmt.Fprintf(bw, "  %s\n", b.Summary())
	}

	fmt.Fprintln(bw, "\nMEMBERS")
	members := lib.Members()
	if len(members) == 0 {
		fmt.Fprintln(bw, "  (none)")
	}
	for _, m := range members {
		fmt.Fprintf(bw, "  %s\n", m.Summary())
	}

	fmt.Fprintln(bw, "\nACTIVE LOANS")
	loans := lib.ActiveLoans()
	if len(loans) == 0 {
		fmt.Fprintln(bw, "  (none)")
	}
	for _, l := range loans {
		fmt.Fprintf(bw, "  %s\n", l.Summary(now))
	}

	fmt.Fprintln(bw)
	fmt.Fprintln(bw, rule)
	fmt.Fprintln(bw, "END OF REPORT")
	fmt.Fprintln(bw, rule)
	return bw.Flush()
}

// SaveReport writes the report to path, overwriting it wholesale.
func SaveReport(path string, lib *library.Library) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	defer f.Close()
	if err := WriteReport(f, lib); err != nil {
		return err
	}
	return f.Close()
}
