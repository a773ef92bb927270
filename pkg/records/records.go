// Package records defines the plain ledger records supplied by the record
// store. The analytics packages only read these values; they never mutate them.
package records

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ID is the canonical identifier of a record. The spreadsheet-backed store
// hands out ids as numbers or strings interchangeably, so both forms decode to
// the same ID and compare equal.
type ID string

// String implements fmt.Stringer.
func (id ID) String() string {
	return string(id)
}

// IsZero reports whether the id is blank.
func (id ID) IsZero() bool {
	return strings.TrimSpace(string(id)) == ""
}

// NewID builds an ID from a string or numeric value.
func NewID(value interface{}) ID {
	switch v := value.(type) {
	case nil:
		return ""
	case ID:
		return v
	case string:
		return ID(strings.TrimSpace(v))
	case int:
		return ID(strconv.Itoa(v))
	case int64:
		return ID(strconv.FormatInt(v, 10))
	case float64:
		return ID(strconv.FormatFloat(v, 'f', -1, 64))
	default:
		return ID(strings.TrimSpace(fmt.Sprint(v)))
	}
}

// UnmarshalJSON accepts both JSON strings and numbers.
func (id *ID) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*id = ""
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return fmt.Errorf("invalid id %s: %w", trimmed, err)
		}
		*id = ID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return fmt.Errorf("invalid id %s: %w", trimmed, err)
	}
	*id = canonicalNumber(n.String())
	return nil
}

// UnmarshalYAML accepts any scalar node.
func (id *ID) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("invalid id at line %d: expected a scalar", node.Line)
	}
	if node.Tag == "!!null" {
		*id = ""
		return nil
	}
	if node.Tag == "!!int" || node.Tag == "!!float" {
		*id = canonicalNumber(node.Value)
		return nil
	}
	*id = ID(strings.TrimSpace(node.Value))
	return nil
}

// canonicalNumber renders integral numbers without a fractional part so that
// 7, 7.0 and "7" all become the same id.
func canonicalNumber(raw string) ID {
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return ID(strconv.FormatFloat(f, 'f', -1, 64))
	}
	return ID(strings.TrimSpace(raw))
}

// Rent payment statuses.
const (
	PaymentPaid    = "paid"
	PaymentPending = "pending"
	PaymentLate    = "late"
)

// Tenant statuses.
const (
	TenantActive   = "active"
	TenantInactive = "inactive"
)

// Property is a single real-estate holding.
type Property struct {
	ID            ID      `json:"id" yaml:"id"`
	Name          string  `json:"name,omitempty" yaml:"name,omitempty"`
	Address       string  `json:"address,omitempty" yaml:"address,omitempty"`
	CurrentValue  float64 `json:"current_value" yaml:"current_value"`
	PurchasePrice float64 `json:"purchase_price" yaml:"purchase_price"`
	PurchaseDate  string  `json:"purchase_date,omitempty" yaml:"purchase_date,omitempty"`
	MarketRent    float64 `json:"market_rent,omitempty" yaml:"market_rent,omitempty"`
}

// Label returns the most descriptive name available for the property.
func (p Property) Label() string {
	switch {
	case p.Name != "":
		return p.Name
	case p.Address != "":
		return p.Address
	default:
		return "property " + p.ID.String()
	}
}

// Mortgage is a loan secured by a property. InterestRate is an annual
// percentage (6.5 means 6.5%).
type Mortgage struct {
	ID                  ID      `json:"id" yaml:"id"`
	PropertyID          ID      `json:"property_id" yaml:"property_id"`
	Lender              string  `json:"lender,omitempty" yaml:"lender,omitempty"`
	CurrentBalance      float64 `json:"current_balance" yaml:"current_balance"`
	InterestRate        float64 `json:"interest_rate" yaml:"interest_rate"`
	MonthlyPayment      float64 `json:"monthly_payment" yaml:"monthly_payment"`
	EscrowPayment       float64 `json:"escrow_payment,omitempty" yaml:"escrow_payment,omitempty"`
	RemainingTermMonths int     `json:"remaining_term_months" yaml:"remaining_term_months"`
}

// Label returns a display name for the mortgage.
func (m Mortgage) Label() string {
	if m.Lender != "" {
		return m.Lender
	}
	return "mortgage " + m.ID.String()
}

// Expense is an operating cost. Category is a free-text label.
type Expense struct {
	ID          ID      `json:"id" yaml:"id"`
	PropertyID  ID      `json:"property_id" yaml:"property_id"`
	Category    string  `json:"category,omitempty" yaml:"category,omitempty"`
	Amount      float64 `json:"amount" yaml:"amount"`
	Date        string  `json:"date" yaml:"date"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
}

// RentPayment is a rent receipt from a tenant.
type RentPayment struct {
	ID         ID      `json:"id" yaml:"id"`
	PropertyID ID      `json:"property_id" yaml:"property_id"`
	TenantID   ID      `json:"tenant_id,omitempty" yaml:"tenant_id,omitempty"`
	Amount     float64 `json:"amount" yaml:"amount"`
	PaidDate   string  `json:"paid_date" yaml:"paid_date"`
	Status     string  `json:"status,omitempty" yaml:"status,omitempty"`
}

// Tenant occupies a property under a lease.
type Tenant struct {
	ID             ID      `json:"id" yaml:"id"`
	PropertyID     ID      `json:"property_id" yaml:"property_id"`
	Name           string  `json:"name,omitempty" yaml:"name,omitempty"`
	MonthlyRent    float64 `json:"monthly_rent" yaml:"monthly_rent"`
	Status         string  `json:"status,omitempty" yaml:"status,omitempty"`
	LeaseStartDate string  `json:"lease_start_date,omitempty" yaml:"lease_start_date,omitempty"`
	LeaseEndDate   string  `json:"lease_end_date,omitempty" yaml:"lease_end_date,omitempty"`
}

// Active reports whether the tenant currently occupies the property.
func (t Tenant) Active() bool {
	return strings.EqualFold(strings.TrimSpace(t.Status), TenantActive)
}

// InsurancePolicy covers a property.
type InsurancePolicy struct {
	ID            ID      `json:"id" yaml:"id"`
	PropertyID    ID      `json:"property_id" yaml:"property_id"`
	Provider      string  `json:"provider,omitempty" yaml:"provider,omitempty"`
	AnnualPremium float64 `json:"annual_premium" yaml:"annual_premium"`
	ExpiryDate    string  `json:"expiry_date,omitempty" yaml:"expiry_date,omitempty"`
}

// Snapshot is a point-in-time read of every record collection.
type Snapshot struct {
	Properties        []Property        `json:"properties" yaml:"properties"`
	Mortgages         []Mortgage        `json:"mortgages" yaml:"mortgages"`
	Expenses          []Expense         `json:"expenses" yaml:"expenses"`
	RentPayments      []RentPayment     `json:"rent_payments" yaml:"rent_payments"`
	Tenants           []Tenant          `json:"tenants" yaml:"tenants"`
	InsurancePolicies []InsurancePolicy `json:"insurance_policies" yaml:"insurance_policies"`
}

// PropertyByID returns the property with the given id.
func (s Snapshot) PropertyByID(id ID) (Property, bool) {
	for _, p := range s.Properties {
		if p.ID == id {
			return p, true
		}
	}
	return Property{}, false
}

// MortgagesFor returns every mortgage secured by the given property.
func (s Snapshot) MortgagesFor(propertyID ID) []Mortgage {
	return MortgagesFor(s.Mortgages, propertyID)
}

// MortgagesFor filters mortgages by property id.
func MortgagesFor(mortgages []Mortgage, propertyID ID) []Mortgage {
	var matched []Mortgage
	for _, m := range mortgages {
		if m.PropertyID == propertyID {
			matched = append(matched, m)
		}
	}
	return matched
}

// PropertyIDs returns the set of ids of the given properties.
func PropertyIDs(properties []Property) map[ID]bool {
	ids := make(map[ID]bool, len(properties))
	for _, p := range properties {
		ids[p.ID] = true
	}
	return ids
}

// DecodeYAML reads a snapshot from YAML.
func DecodeYAML(data []byte) (Snapshot, error) {
	var snapshot Snapshot
	if err := yaml.Unmarshal(data, &snapshot); err != nil {
		return Snapshot{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return snapshot, nil
}
