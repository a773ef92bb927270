package portfolio

import (
	"sort"
	"strings"
	"time"

	"github.com/iwvelando/rental-portfolio/internal/reports"
	"github.com/iwvelando/rental-portfolio/pkg/datetime"
	"github.com/iwvelando/rental-portfolio/pkg/mathutil"
	"github.com/iwvelando/rental-portfolio/pkg/records"
)

// OccupancyRate is the percentage of properties with at least one active tenant.
func OccupancyRate(properties []records.Property, tenants []records.Tenant) float64 {
	owned := records.PropertyIDs(properties)
	occupied := make(map[records.ID]bool)
	for _, t := range tenants {
		if t.Active() && owned[t.PropertyID] {
			occupied[t.PropertyID] = true
		}
	}
	return mathutil.CalculatePercentage(float64(len(occupied)), float64(len(owned)))
}

// ExpectedRent is the rent due from active tenants of the given properties
// over every month window touches. Leases that end before window starts or
// begin after it ends are not counted; blank lease dates are open ended.
func ExpectedRent(properties []records.Property, tenants []records.Tenant, window reports.Range) float64 {
	owned := records.PropertyIDs(properties)
	monthly := 0.0
	for _, t := range tenants {
		if t.Active() && owned[t.PropertyID] && leaseOverlaps(t, window) {
			monthly += t.MonthlyRent
		}
	}
	return mathutil.RoundCents(monthly * float64(len(window.Months())))
}

func leaseOverlaps(t records.Tenant, window reports.Range) bool {
	if end, ok := datetime.ParseDate(t.LeaseEndDate); ok && end.Before(datetime.StartOfDay(window.Start)) {
		return false
	}
	if start, ok := datetime.ParseDate(t.LeaseStartDate); ok && start.After(window.End) {
		return false
	}
	return true
}

// CollectionRate is the percentage of expected rent collected in window.
// Pending payments are not counted as collected.
func CollectionRate(properties []records.Property, tenants []records.Tenant, payments []records.RentPayment, window reports.Range) float64 {
	collected := 0.0
	for _, p := range reports.RentPaymentsIn(payments, window) {
		if strings.EqualFold(strings.TrimSpace(p.Status), records.PaymentPending) {
			continue
		}
		collected += p.Amount
	}
	return mathutil.CalculatePercentage(collected, ExpectedRent(properties, tenants, window))
}

// LeaseExpiration is an active lease ending soon.
type LeaseExpiration struct {
	TenantID      records.ID `json:"tenant_id"`
	PropertyID    records.ID `json:"property_id"`
	TenantName    string     `json:"tenant_name,omitempty"`
	LeaseEndDate  string     `json:"lease_end_date"`
	DaysRemaining int        `json:"days_remaining"`
}

// UpcomingLeaseExpirations lists active leases ending within days of now,
// soonest first. Leases that already ended are skipped.
func UpcomingLeaseExpirations(tenants []records.Tenant, now time.Time, days int) []LeaseExpiration {
	var upcoming []LeaseExpiration
	for _, t := range tenants {
		if !t.Active() {
			continue
		}
		end, ok := datetime.ParseDate(t.LeaseEndDate)
		if !ok {
			continue
		}
		remaining := datetime.DaysUntil(now, end)
		if remaining < 0 || remaining > days {
			continue
		}
		upcoming = append(upcoming, LeaseExpiration{
			TenantID:      t.ID,
			PropertyID:    t.PropertyID,
			TenantName:    t.Name,
			LeaseEndDate:  end.Format(datetime.DateLayout),
			DaysRemaining: remaining,
		})
	}
	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].DaysRemaining < upcoming[j].DaysRemaining
	})
	return upcoming
}

// InsuranceRenewal is a policy expiring soon.
type InsuranceRenewal struct {
	PolicyID      records.ID `json:"policy_id"`
	PropertyID    records.ID `json:"property_id"`
	Provider      string     `json:"provider,omitempty"`
	AnnualPremium float64    `json:"annual_premium"`
	ExpiryDate    string     `json:"expiry_date"`
	DaysRemaining int        `json:"days_remaining"`
}

// UpcomingInsuranceRenewals lists policies expiring within days of now,
// soonest first.
func UpcomingInsuranceRenewals(policies []records.InsurancePolicy, now time.Time, days int) []InsuranceRenewal {
	var upcoming []InsuranceRenewal
	for _, p := range policies {
		expiry, ok := datetime.ParseDate(p.ExpiryDate)
		if !ok {
			continue
		}
		remaining := datetime.DaysUntil(now, expiry)
		if remaining < 0 || remaining > days {
			continue
		}
		upcoming = append(upcoming, InsuranceRenewal{
			PolicyID:      p.ID,
			PropertyID:    p.PropertyID,
			Provider:      p.Provider,
			AnnualPremium: p.AnnualPremium,
			ExpiryDate:    expiry.Format(datetime.DateLayout),
			DaysRemaining: remaining,
		})
	}
	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].DaysRemaining < upcoming[j].DaysRemaining
	})
	return upcoming
}
