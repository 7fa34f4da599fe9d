package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"library-management/library"
	"library-management/persist"
)

// app wires the config into the commands. Every command loads the
// library from the snapshot store, runs registry operations, and saves
// it back when it mutated anything.
type app struct {
	cfgPath string
	cfg     config
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	var dataDir, libraryName string

	root := &cobra.Command{
		Use:           "library",
		Short:         "Library management system",
		Long:          "Track book inventory, members, staff, loans, and overdue fees.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
				With().Timestamp().Logger()
			persist.SetLogger(logger)

			path := a.cfgPath
			explicit := path != ""
			if !explicit {
				path = defaultConfigPath()
			}
			cfg, err := loadConfig(path, explicit)
			if err != nil {
				return err
			}
			if dataDir != "" {
				cfg.DataDir = dataDir
			}
			if libraryName != "" {
				cfg.LibraryName = libraryName
			}
			a.cfg = cfg
			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.cfgPath, "config", "", "path to config file (default ~/.library/config.toml)")
	root.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory override")
	root.PersistentFlags().StringVar(&libraryName, "library-name", "", "library display name override")

	root.AddCommand(
		newAddBookCmd(a), newRemoveBookCmd(a), newBooksCmd(a), newSearchCmd(a),
		newRegisterCmd(a), newRegisterStaffCmd(a), newRemoveMemberCmd(a), newMembersCmd(a),
		newIssueCmd(a), newReturnCmd(a), newExtendCmd(a), newLoansCmd(a),
		newFeesCmd(a), newPayCmd(a), newPlanCmd(a), newLoginCmd(a),
		newReportCmd(a), newExportBooksCmd(a), newImportBooksCmd(a),
	)
	return root
}

// withLibrary loads the registry, runs fn, and saves the snapshot
// back when the command mutates state.
func (a *app) withLibrary(mutate bool, fn func(lib *library.Library) error) error {
	st, err := persist.Open(a.cfg.dbPath())
	if err != nil {
		return err
	}
	defer st.Close()

	lib, err := st.LoadLibrary(a.cfg.LibraryName)
	if err != nil {
		return err
	}
	if err := fn(lib); err != nil {
		return err
	}
	if mutate {
		return st.SaveLibrary(lib)
	}
	return nil
}

// readPassword reads a masked password from the terminal.
func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	b, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}

// ------------------ Book commands ------------------

func newAddBookCmd(a *app) *cobra.Command {
	var theme string
	var copies int
	cmd := &cobra.Command{
		Use:   "add-book <isbn> <title> <author>",
		Short: "Add a title to the inventory",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withLibrary(true, func(lib *library.Library) error {
				b, err := lib.AddBook(args[0], args[1], args[2], library.ParseTheme(theme), copies)
				if err != nil {
					return err
				}
				fmt.Printf("Added %s\n", b.Summary())
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&theme, "theme", "", "book theme (unknown themes become OTHER)")
	cmd.Flags().IntVar(&copies, "copies", 1, "number of copies")
	return cmd
}

func newRemoveBookCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove-book <isbn>",
		Short: "Remove a title (all copies must be on the shelf)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withLibrary(true, func(lib *library.Library) error {
				if err := lib.RemoveBook(args[0]); err != nil {
					return err
				}
				fmt.Printf("Removed book %s\n", args[0])
				return nil
			})
		},
	}
}

func newBooksCmd(a *app) *cobra.Command {
	var availableOnly bool
	cmd := &cobra.Command{
		Use:   "books",
		Short: "List the inventory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withLibrary(false, func(lib *library.Library) error {
				books := lib.Books()
				if availableOnly {
					books = lib.AvailableBooks()
				}
				printBooks(books)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&availableOnly, "available", false, "only titles with a copy on the shelf")
	return cmd
}

func newSearchCmd(a *app) *cobra.Command {
	var byTitle, byAuthor, byTheme, byName string
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search books and members",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withLibrary(false, func(lib *library.Library) error {
				switch {
				case byTitle != "":
					printBooks(lib.FindBooksByTitle(byTitle))
				case byAuthor != "":
					printBooks(lib.FindBooksByAuthor(byAuthor))
				case byTheme != "":
					printBooks(lib.FindBooksByTheme(byTheme))
				case byName != "":
					for _, m := range lib.FindMembersByName(byName) {
						fmt.Println(m.Summary())
					}
				default:
					return fmt.Errorf("one of --title, --author, --theme, --name is required")
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&byTitle, "title", "", "title substring")
	cmd.Flags().StringVar(&byAuthor, "author", "", "author substring")
	cmd.Flags().StringVar(&byTheme, "theme", "", "exact theme literal")
	cmd.Flags().StringVar(&byName, "name", "", "member name substring")
	return cmd
}

func printBooks(books []*library.Book) {
	if len(books) == 0 {
		fmt.Println("No books found.")
		return
	}
	for _, b := range books {
		fmt.Println(b.Summary())
	}
}

// ------------------ Principal commands ------------------

func newRegisterCmd(a *app) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "register <name> <surname> <age>",
		Short: "Register a member on the basic plan",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			age, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid age %q", args[2])
			}
			var password string
			if email != "" {
				if password, err = readPassword("Password: "); err != nil {
					return err
				}
			}
			return a.withLibrary(true, func(lib *library.Library) error {
				m, err := lib.AddMember(args[0], args[1], age, email, password)
				if err != nil {
					return err
				}
				fmt.Printf("Registered %s\n", m.Summary())
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "login email (prompts for a password)")
	return cmd
}

func newRegisterStaffCmd(a *app) *cobra.Command {
	var email, employeeID string
	cmd := &cobra.Command{
		Use:   "register-staff <name> <surname> <age>",
		Short: "Register a staff principal",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			age, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid age %q", args[2])
			}
			var password string
			if email != "" {
				if password, err = readPassword("Password: "); err != nil {
					return err
				}
			}
			return a.withLibrary(true, func(lib *library.Library) error {
				s, err := lib.AddStaff(args[0], args[1], age, email, password, employeeID)
				if err != nil {
					return err
				}
				fmt.Printf("Registered %s (employee %s)\n", s.Summary(), s.EmployeeID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "login email (prompts for a password)")
	cmd.Flags().StringVar(&employeeID, "employee-id", "", "employee id (generated when empty)")
	return cmd
}

func newRemoveMemberCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove-member <id>",
		Short: "Remove a member with no active loans",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid member id %q", args[0])
			}
			return a.withLibrary(true, func(lib *library.Library) error {
				if err := lib.RemoveMember(id); err != nil {
					return err
				}
				fmt.Printf("Removed member %d\n", id)
				return nil
			})
		},
	}
}

func newMembersCmd(a *app) *cobra.Command {
	var includeStaff bool
	cmd := &cobra.Command{
		Use:   "members",
		Short: "List members",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withLibrary(false, func(lib *library.Library) error {
				for _, m := range lib.Members() {
					fmt.Println(m.Summary())
				}
				if includeStaff {
					for _, s := range lib.StaffMembers() {
						fmt.Printf("%s (employee %s)\n", s.Summary(), s.EmployeeID)
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&includeStaff, "staff", false, "include staff principals")
	return cmd
}

// ------------------ Circulation commands ------------------

func newIssueCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "issue <member-id> <isbn>",
		Short: "Issue a loan",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid member id %q", args[0])
			}
			return a.withLibrary(true, func(lib *library.Library) error {
				loan, err := lib.IssueLoan(id, args[1])
				if err != nil {
					return err
				}
				fmt.Printf("Issued %q to %s, due %s\n",
					loan.Book.Title, loan.Member.FullName(), loan.DueDate.Format("2006-01-02"))
				return nil
			})
		},
	}
}

func newReturnCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "return <member-id> <isbn>",
		Short: "Return a loan",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid member id %q", args[0])
			}
			return a.withLibrary(true, func(lib *library.Library) error {
				loan, fee, err := lib.ReturnLoan(id, args[1])
				if err != nil {
					return err
				}
				fmt.Printf("Returned %q\n", loan.Book.Title)
				if fee > 0 {
					fmt.Printf("Overdue fee accrued: $%.2f\n", fee)
				}
				return nil
			})
		},
	}
}

func newExtendCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "extend <member-id> <isbn> <days>",
		Short: "Extend an active, non-overdue loan",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid member id %q", args[0])
			}
			days, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid day count %q", args[2])
			}
			return a.withLibrary(true, func(lib *library.Library) error {
				loan, err := lib.ExtendLoan(id, args[1], days)
				if err != nil {
					return err
				}
				fmt.Printf("Extended %q, new due date %s\n",
					loan.Book.Title, loan.DueDate.Format("2006-01-02"))
				return nil
			})
		},
	}
}

func newLoansCmd(a *app) *cobra.Command {
	var overdueOnly bool
	var memberID int
	cmd := &cobra.Command{
		Use:   "loans",
		Short: "List active loans",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withLibrary(false, func(lib *library.Library) error {
				var loans []*library.Loan
				switch {
				case memberID != 0:
					loans = lib.ActiveLoansByMember(memberID)
				case overdueOnly:
					loans = lib.OverdueLoans()
				default:
					loans = lib.ActiveLoans()
				}
				if len(loans) == 0 {
					fmt.Println("No loans.")
					return nil
				}
				now := time.Now()
				for _, l := range loans {
					fmt.Println(l.Summary(now))
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&overdueOnly, "overdue", false, "only overdue loans")
	cmd.Flags().IntVar(&memberID, "member", 0, "only loans held by this member")
	return cmd
}

// ------------------ Fees and plans ------------------

func newFeesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "fees <member-id>",
		Short: "Show a member's overdue fees",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid member id %q", args[0])
			}
			return a.withLibrary(false, func(lib *library.Library) error {
				total, err := lib.MemberOverdueFees(id)
				if err != nil {
					return err
				}
				fmt.Printf("Total overdue fees: $%.2f\n", total)
				return nil
			})
		},
	}
}

func newPayCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "pay <member-id> <amount>",
		Short: "Pay down a member's accrued fees",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid member id %q", args[0])
			}
			amount, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid amount %q", args[1])
			}
			return a.withLibrary(true, func(lib *library.Library) error {
				m, err := lib.FindMember(id)
				if err != nil {
					return err
				}
				if err := m.PayFees(amount); err != nil {
					return err
				}
				fmt.Printf("Paid $%.2f, remaining balance $%.2f\n", amount, m.AccruedFees)
				return nil
			})
		},
	}
}

func newPlanCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Manage membership plans",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "upgrade <member-id> <tier>",
			Short: "Upgrade to a strictly higher tier",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.planAction(args[0], func(m *library.Member) error {
					tier, ok := library.ParsePlanTier(args[1])
					if !ok {
						return fmt.Errorf("unknown plan tier %q", args[1])
					}
					if !m.UpgradePlan(tier, time.Now()) {
						fmt.Printf("Cannot upgrade from %s to %s.\n", m.Plan.Tier, tier)
						return nil
					}
					fmt.Printf("Plan upgraded to %s.\n", tier.DisplayName())
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "change <member-id> <tier>",
			Short: "Change to any non-staff tier",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.planAction(args[0], func(m *library.Member) error {
					tier, ok := library.ParsePlanTier(args[1])
					if !ok {
						return fmt.Errorf("unknown plan tier %q", args[1])
					}
					if err := m.ChangeMemberPlan(tier, time.Now()); err != nil {
						return err
					}
					fmt.Printf("Plan changed to %s.\n", tier.DisplayName())
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "renew <member-id>",
			Short: "Renew the current plan for another year",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.planAction(args[0], func(m *library.Member) error {
					m.Plan.Renew(time.Now())
					fmt.Printf("Plan renewed: %s\n", m.Plan.Summary())
					return nil
				})
			},
		},
	)
	return cmd
}

func (a *app) planAction(idArg string, fn func(*library.Member) error) error {
	id, err := strconv.Atoi(idArg)
	if err != nil {
		return fmt.Errorf("invalid member id %q", idArg)
	}
	return a.withLibrary(true, func(lib *library.Library) error {
		m, err := lib.FindMember(id)
		if err != nil {
			return err
		}
		return fn(m)
	})
}

// ------------------ Authentication ------------------

func newLoginCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "login <email>",
		Short: "Authenticate and show login notices",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readPassword("Password: ")
			if err != nil {
				return err
			}
			return a.withLibrary(true, func(lib *library.Library) error {
				p, err := lib.Authenticate(args[0], password)
				if err != nil {
					return err
				}
				u := p.Base()
				fmt.Printf("Welcome, %s (%s)\n", u.FullName(), u.Role)
				for _, notice := range u.LoginNotices() {
					fmt.Printf("  - %s\n", notice)
				}
				return nil
			})
		},
	}
}

// ------------------ Persistence commands ------------------

func newReportCmd(a *app) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Write the full library report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withLibrary(false, func(lib *library.Library) error {
				if out == "" {
					return persist.WriteReport(os.Stdout, lib)
				}
				if err := persist.SaveReport(out, lib); err != nil {
					return err
				}
				fmt.Printf("Report written to %s\n", out)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "write to a file instead of stdout")
	return cmd
}

func newExportBooksCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export-books [path]",
		Short: "Export the inventory to the pipe-delimited text form",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.cfg.BooksFile
			if len(args) == 1 {
				path = args[0]
			}
			return a.withLibrary(false, func(lib *library.Library) error {
				books := lib.Books()
				if err := persist.SaveBooksFile(path, books); err != nil {
					return err
				}
				fmt.Printf("Exported %d book(s) to %s\n", len(books), path)
				return nil
			})
		},
	}
}

func newImportBooksCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import-books [path]",
		Short: "Import books from the pipe-delimited text form",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.cfg.BooksFile
			if len(args) == 1 {
				path = args[0]
			}
			books, err := persist.LoadBooksFile(path)
			if err != nil {
				return err
			}
			return a.withLibrary(true, func(lib *library.Library) error {
				imported := 0
				for _, b := range books {
					if err := lib.RestoreBook(b); err != nil {
						fmt.Printf("Skipping %s: %v\n", b.ISBN, err)
						continue
					}
					imported++
				}
				fmt.Printf("Imported %d book(s) from %s\n", imported, path)
				return nil
			})
		},
	}
}
