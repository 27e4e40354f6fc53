/*
Package customers provides the customer ledger: buyers with a credit
limit, a running balance, a discount rate, and shipping addresses.

CREDIT MODEL:
  The balance only moves when the order engine processes or cancels an
  order. A customer can place an order iff balance + amount <= creditLimit
  (inclusive: landing exactly on the limit is allowed).

BACK-REFERENCES:
  A customer keeps the numbers of its orders for informational queries.
  Orders are resolved through the order engine; nothing here dereferences
  them, so deleting a customer simply orphans those numbers.
*/
package customers

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Customer is a buyer in the ledger. Balance starts at zero and is
// mutated only by the order engine.
type Customer struct {
	Code            string
	Name            string
	Balance         decimal.Decimal
	CreditLimit     decimal.Decimal
	DiscountPercent decimal.Decimal

	addresses    []string // insertion order, unique
	orderNumbers []string // informational back-references
}

// New creates a customer with a zero balance and no addresses.
func New(code, name string, creditLimit, discountPercent decimal.Decimal) *Customer {
	return &Customer{
		Code:            code,
		Name:            name,
		Balance:         decimal.Zero,
		CreditLimit:     creditLimit,
		DiscountPercent: discountPercent,
	}
}

// CanPlaceOrder reports whether an order of the given amount fits within
// the credit limit given the current balance.
func (c *Customer) CanPlaceOrder(amount decimal.Decimal) bool {
	return c.Balance.Add(amount).LessThanOrEqual(c.CreditLimit)
}

// DiscountOn returns the discount owed on an amount:
// amount * discountPercent / 100.
func (c *Customer) DiscountOn(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(c.DiscountPercent).Div(decimal.NewFromInt(100))
}

// AddShippingAddress appends an address. Duplicates are silently ignored.
func (c *Customer) AddShippingAddress(address string) {
	for _, a := range c.addresses {
		if a == address {
			return
		}
	}
	c.addresses = append(c.addresses, address)
}

// ShippingAddresses returns the addresses in insertion order.
func (c *Customer) ShippingAddresses() []string {
	out := make([]string, len(c.addresses))
	copy(out, c.addresses)
	return out
}

// SetShippingAddresses replaces the address list wholesale.
func (c *Customer) SetShippingAddresses(addresses []string) {
	c.addresses = nil
	for _, a := range addresses {
		c.AddShippingAddress(a)
	}
}

// RecordOrder appends an order number to the back-reference list.
func (c *Customer) RecordOrder(number string) {
	c.orderNumbers = append(c.orderNumbers, number)
}

// Orders returns the numbers of this customer's orders.
func (c *Customer) Orders() []string {
	out := make([]string, len(c.orderNumbers))
	copy(out, c.orderNumbers)
	return out
}

// SetOrders replaces the back-reference list. Used by stores on load.
func (c *Customer) SetOrders(numbers []string) {
	c.orderNumbers = append([]string(nil), numbers...)
}

func (c *Customer) String() string {
	return fmt.Sprintf("Customer{code=%s, name=%s, balance=%s, limit=%s, discount=%s%%}",
		c.Code, c.Name, c.Balance.String(), c.CreditLimit.String(), c.DiscountPercent.String())
}
