package customers

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned when a customer code is unknown.
	ErrNotFound = errors.New("customer not found")

	// ErrDuplicateCode is returned when adding a customer whose code exists.
	ErrDuplicateCode = errors.New("customer code already exists")

	// ErrInvalidCustomer is returned when a customer fails validation.
	ErrInvalidCustomer = errors.New("invalid customer")
)

// Store persists customers keyed by code. Implementations must be safe
// for concurrent use.
type Store interface {
	Put(c *Customer) error
	Get(code string) (*Customer, bool)
	List() []*Customer
	Delete(code string) bool
	Len() int
}

// Service exposes ledger operations over an injected Store.
type Service struct {
	store Store
}

// NewService creates a customer ledger service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Add stores a new customer. Fails with ErrDuplicateCode if the code is
// taken; the ledger is left unchanged in that case.
func (s *Service) Add(c *Customer) error {
	if err := Validate(c); err != nil {
		return err
	}
	if _, ok := s.store.Get(c.Code); ok {
		return ErrDuplicateCode
	}
	return s.store.Put(c)
}

// Find returns the customer for a code.
func (s *Service) Find(code string) (*Customer, error) {
	c, ok := s.store.Get(code)
	if !ok {
		return nil, ErrNotFound
	}
	return c, nil
}

// List returns all customers.
func (s *Service) List() []*Customer {
	return s.store.List()
}

// Update replaces a stored customer wholesale. Fails if the code is
// unknown.
func (s *Service) Update(c *Customer) error {
	if err := Validate(c); err != nil {
		return err
	}
	if _, ok := s.store.Get(c.Code); !ok {
		return ErrNotFound
	}
	return s.store.Put(c)
}

// Remove deletes a customer by code. Orders referencing the code are
// orphaned, not cascaded.
func (s *Service) Remove(code string) error {
	if !s.store.Delete(code) {
		return ErrNotFound
	}
	return nil
}

// Count returns the number of customers.
func (s *Service) Count() int {
	return s.store.Len()
}

// Validate checks structural rules: non-blank code and name, non-negative
// credit limit, discount within [0, 100].
func Validate(c *Customer) error {
	if c == nil {
		return ErrInvalidCustomer
	}
	if strings.TrimSpace(c.Code) == "" || strings.TrimSpace(c.Name) == "" {
		return ErrInvalidCustomer
	}
	if c.CreditLimit.IsNegative() {
		return ErrInvalidCustomer
	}
	hundred := decimal.NewFromInt(100)
	if c.DiscountPercent.IsNegative() || c.DiscountPercent.GreaterThan(hundred) {
		return ErrInvalidCustomer
	}
	return nil
}

// SearchByName returns customers whose name contains the given substring,
// case-insensitively.
func (s *Service) SearchByName(name string) []*Customer {
	needle := strings.ToLower(name)
	var out []*Customer
	for _, c := range s.store.List() {
		if strings.Contains(strings.ToLower(c.Name), needle) {
			out = append(out, c)
		}
	}
	return out
}

// Overdue returns customers whose balance exceeds their credit limit.
func (s *Service) Overdue() []*Customer {
	var out []*Customer
	for _, c := range s.store.List() {
		if c.Balance.GreaterThan(c.CreditLimit) {
			out = append(out, c)
		}
	}
	return out
}

// WithDiscount returns customers with a discount greater than zero.
func (s *Service) WithDiscount() []*Customer {
	var out []*Customer
	for _, c := range s.store.List() {
		if c.DiscountPercent.IsPositive() {
			out = append(out, c)
		}
	}
	return out
}

// TotalBalances sums the balances of every customer.
func (s *Service) TotalBalances() decimal.Decimal {
	total := decimal.Zero
	for _, c := range s.store.List() {
		total = total.Add(c.Balance)
	}
	return total
}
