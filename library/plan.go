package library

import (
	"fmt"
	"strings"
	"time"
)

// PlanTier is one of the four membership tiers. Tiers are ordered;
// upgrades must move strictly up the ranking.
type PlanTier string

const (
	TierBasic   PlanTier = "BASIC"
	TierPremium PlanTier = "PREMIUM"
	TierVIP     PlanTier = "VIP"
	TierStaff   PlanTier = "STAFF"
)

// tierPolicy carries the fixed policy constants of a tier.
type tierPolicy struct {
	displayName     string
	monthlyFee      float64
	maxLoans        int
	loanPeriodDays  int
	dailyOverdueFee float64
	canReserve      bool
	priorityAccess  bool
}

var tierPolicies = map[PlanTier]tierPolicy{
	TierBasic:   {"Basic Plan", 0.00, 3, 14, 0.50, false, false},
	TierPremium: {"Premium Plan", 9.99, 5, 21, 0.25, true, false},
	TierVIP:     {"VIP Plan", 19.99, 10, 30, 0.10, true, true},
	TierStaff:   {"Staff Plan", 0.00, 20, 60, 0.00, true, true},
}

var tierRank = map[PlanTier]int{
	TierBasic:   0,
	TierPremium: 1,
	TierVIP:     2,
	TierStaff:   3,
}

// PlanTiers lists the tiers from lowest to highest rank.
func PlanTiers() []PlanTier {
	return []PlanTier{TierBasic, TierPremium, TierVIP, TierStaff}
}

// ParsePlanTier resolves a tier name, case-insensitively.
func ParsePlanTier(s string) (PlanTier, bool) {
	t := PlanTier(strings.ToUpper(strings.TrimSpace(s)))
	_, ok := tierPolicies[t]
	return t, ok
}

// Rank returns the tier's position in the upgrade ordering.
func (t PlanTier) Rank() int { return tierRank[t] }

func (t PlanTier) policy() tierPolicy { return tierPolicies[t] }

// DisplayName returns the tier's human-readable name.
func (t PlanTier) DisplayName() string { return t.policy().displayName }

// MembershipPlan is a tier instance with its own start/expiry clock.
// Plans expire one year after start; STAFF never expires.
type MembershipPlan struct {
	Tier       PlanTier   `json:"tier"`
	StartDate  time.Time  `json:"start_date"`
	ExpiryDate *time.Time `json:"expiry_date,omitempty"`
	Active     bool       `json:"active"`
}

// NewMembershipPlan creates an active plan starting today.
func NewMembershipPlan(tier PlanTier, today time.Time) *MembershipPlan {
	p := &MembershipPlan{Tier: tier, Active: true}
	p.resetDates(today)
	return p
}

func (p *MembershipPlan) resetDates(today time.Time) {
	p.StartDate = dateOf(today)
	if p.Tier == TierStaff {
		p.ExpiryDate = nil
		return
	}
	expiry := p.StartDate.AddDate(1, 0, 0)
	p.ExpiryDate = &expiry
}

// Policy lookups, all derived from the tier constants.

func (p *MembershipPlan) MonthlyFee() float64      { return p.Tier.policy().monthlyFee }
func (p *MembershipPlan) MaxLoans() int            { return p.Tier.policy().maxLoans }
func (p *MembershipPlan) LoanPeriodDays() int      { return p.Tier.policy().loanPeriodDays }
func (p *MembershipPlan) DailyOverdueFee() float64 { return p.Tier.policy().dailyOverdueFee }
func (p *MembershipPlan) CanReserveBooks() bool    { return p.Tier.policy().canReserve }
func (p *MembershipPlan) HasPriorityAccess() bool  { return p.Tier.policy().priorityAccess }

// AnnualCost is the monthly fee projected over a year.
func (p *MembershipPlan) AnnualCost() float64 { return p.MonthlyFee() * 12 }

// Upgrade moves the plan to a strictly higher tier and restarts its
// clock. It reports false, without mutating anything, when the target
// does not outrank the current tier; use ChangePlan for arbitrary moves.
func (p *MembershipPlan) Upgrade(target PlanTier, today time.Time) bool {
	if target.Rank() <= p.Tier.Rank() {
		return false
	}
	p.Tier = target
	p.resetDates(today)
	return true
}

// ChangePlan moves the plan to any tier, restarting its clock.
func (p *MembershipPlan) ChangePlan(target PlanTier, today time.Time) {
	p.Tier = target
	p.resetDates(today)
}

// Renew restarts the plan clock and reactivates the plan. Staff plans
// never expire and need no renewal.
func (p *MembershipPlan) Renew(today time.Time) {
	if p.Tier == TierStaff {
		return
	}
	p.resetDates(today)
	p.Active = true
}

// Deactivate turns the plan off regardless of its expiry.
func (p *MembershipPlan) Deactivate() { p.Active = false }

// IsActive reports whether the plan is switched on and not past expiry.
func (p *MembershipPlan) IsActive(today time.Time) bool {
	if !p.Active {
		return false
	}
	if p.ExpiryDate == nil {
		return true
	}
	return !dateOf(today).After(*p.ExpiryDate)
}

// DaysUntilExpiry reports the days left before expiry. The second
// result is false for plans that never expire.
func (p *MembershipPlan) DaysUntilExpiry(today time.Time) (int, bool) {
	if p.ExpiryDate == nil {
		return 0, false
	}
	return daysBetween(today, *p.ExpiryDate), true
}

// IsExpiringSoon reports whether expiry is at most 30 days out but not
// already past.
func (p *MembershipPlan) IsExpiringSoon(today time.Time) bool {
	days, expires := p.DaysUntilExpiry(today)
	if !expires {
		return false
	}
	return days > 0 && days <= 30
}

// Summary formats the plan for display.
func (p *MembershipPlan) Summary() string {
	expiry := "never"
	if p.ExpiryDate != nil {
		expiry = p.ExpiryDate.Format("2006-01-02")
	}
	return fmt.Sprintf("%s (active=%t, expires %s)", p.Tier.DisplayName(), p.Active, expiry)
}
