// Package testutil provides common utility functions for testing.
package testutil

import (
	"math"
	"time"

	"github.com/iwvelando/rental-portfolio/pkg/records"
)

// ReferenceNow is the clock used with SampleSnapshot: mid-August 2024.
var ReferenceNow = time.Date(2024, time.August, 20, 12, 0, 0, 0, time.UTC)

// Find returns a pointer to the first item matching the predicate, or nil.
func Find[T any](items []T, match func(T) bool) *T {
	for i := range items {
		if match(items[i]) {
			return &items[i]
		}
	}
	return nil
}

// FindProperty finds a property by id.
func FindProperty(properties []records.Property, id records.ID) *records.Property {
	return Find(properties, func(p records.Property) bool { return p.ID == id })
}

// ApproxEqual compares floats within tolerance. Two NaNs and two equal
// infinities compare equal.
func ApproxEqual(a, b, tolerance float64) bool {
	switch {
	case math.IsNaN(a) || math.IsNaN(b):
		return math.IsNaN(a) && math.IsNaN(b)
	case math.IsInf(a, 0) || math.IsInf(b, 0):
		return a == b
	default:
		return math.Abs(a-b) <= tolerance
	}
}

// SampleSnapshot is a two-property portfolio with activity in July and August
// 2024. Mortgage "m3" points at a property that is not in the snapshot.
//
// August 2024 totals: income 4500, expenses 800, value 600000, debt 300000.
func SampleSnapshot() records.Snapshot {
	return records.Snapshot{
		Properties: []records.Property{
			{ID: "1", Name: "Maple Duplex", CurrentValue: 400000, PurchasePrice: 300000, PurchaseDate: "2016-03-15", MarketRent: 3200},
			{ID: "2", Name: "Oak Condo", CurrentValue: 200000, PurchasePrice: 180000, PurchaseDate: "2021-07-01", MarketRent: 1600},
		},
		Mortgages: []records.Mortgage{
			{ID: "m1", PropertyID: "1", Lender: "First Federal", CurrentBalance: 200000, InterestRate: 6, MonthlyPayment: 1199.10, EscrowPayment: 400, RemainingTermMonths: 360},
			{ID: "m2", PropertyID: "2", Lender: "Credit Union", CurrentBalance: 100000, InterestRate: 4.5, MonthlyPayment: 700, RemainingTermMonths: 240},
			{ID: "m3", PropertyID: "99", Lender: "Sold Property Bank", CurrentBalance: 50000, InterestRate: 5, MonthlyPayment: 500, RemainingTermMonths: 120},
		},
		Expenses: []records.Expense{
			{ID: "e1", PropertyID: "1", Category: "taxes", Amount: 500, Date: "2024-08-10"},
			{ID: "e2", PropertyID: "2", Category: "hoa", Amount: 300, Date: "2024-08-31"},
			{ID: "e3", PropertyID: "1", Category: "maintenance", Amount: 200, Date: "2024-07-18"},
		},
		RentPayments: []records.RentPayment{
			{ID: "r1", PropertyID: "1", TenantID: "t1", Amount: 3000, PaidDate: "2024-08-01", Status: records.PaymentPaid},
			{ID: "r2", PropertyID: "2", TenantID: "t2", Amount: 1500, PaidDate: "2024-08-05", Status: records.PaymentPaid},
			{ID: "r3", PropertyID: "1", TenantID: "t1", Amount: 3000, PaidDate: "2024-07-01", Status: records.PaymentPaid},
		},
		Tenants: []records.Tenant{
			{ID: "t1", PropertyID: "1", Name: "Avery Chen", MonthlyRent: 3000, Status: records.TenantActive, LeaseStartDate: "2023-09-16", LeaseEndDate: "2024-09-15"},
			{ID: "t2", PropertyID: "2", Name: "Jordan Ruiz", MonthlyRent: 1500, Status: records.TenantActive, LeaseStartDate: "2024-07-01", LeaseEndDate: "2025-06-30"},
			{ID: "t3", PropertyID: "1", Name: "Sam Patel", MonthlyRent: 1400, Status: records.TenantInactive, LeaseEndDate: "2023-09-15"},
		},
		InsurancePolicies: []records.InsurancePolicy{
			{ID: "i1", PropertyID: "1", Provider: "Acme Mutual", AnnualPremium: 1800, ExpiryDate: "2024-09-10"},
			{ID: "i2", PropertyID: "2", Provider: "Harbor Insurance", AnnualPremium: 900, ExpiryDate: "2025-01-01"},
		},
	}
}
