/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures decoupling the domain entities from the API contract.
  Money fields travel as decimal strings to keep exactness end to end.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
*/
package api

import (
	"github.com/shopspring/decimal"

	"github.com/vydibot/order-engine/catalog"
	"github.com/vydibot/order-engine/customers"
	"github.com/vydibot/order-engine/orders"
)

// =============================================================================
// ITEMS
// =============================================================================

type WarehouseLevelDTO struct {
	Name     string `json:"name"`
	Stock    int    `json:"stock"`
	MinStock int    `json:"min_stock"`
}

type ItemDTO struct {
	Code        string              `json:"code"`
	Name        string              `json:"name"`
	Description string              `json:"description,omitempty"`
	Price       string              `json:"price"`
	TotalStock  int                 `json:"total_stock"`
	Warehouses  []WarehouseLevelDTO `json:"warehouses"`
}

type CreateItemRequest struct {
	Code        string              `json:"code"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Price       decimal.Decimal     `json:"price"`
	Warehouses  []WarehouseLevelDTO `json:"warehouses"`
}

type AddWarehouseRequest struct {
	Name     string `json:"name"`
	Stock    int    `json:"stock"`
	MinStock int    `json:"min_stock"`
}

// StockChangeRequest either adjusts by a delta or sets an absolute
// quantity, depending on the Op field ("adjust" or "set").
type StockChangeRequest struct {
	Op        string `json:"op"`
	Warehouse string `json:"warehouse"`
	Quantity  int    `json:"quantity"`
}

func toItemDTO(it *catalog.Item) ItemDTO {
	st := it.Snapshot()
	dto := ItemDTO{
		Code:        st.Code,
		Name:        st.Name,
		Description: st.Description,
		Price:       st.Price.String(),
		TotalStock:  it.TotalStock(),
	}
	for _, w := range st.Warehouses {
		dto.Warehouses = append(dto.Warehouses, WarehouseLevelDTO{
			Name: w.Name, Stock: w.Stock, MinStock: w.MinStock,
		})
	}
	return dto
}

func toItemDTOs(items []*catalog.Item) []ItemDTO {
	out := make([]ItemDTO, 0, len(items))
	for _, it := range items {
		out = append(out, toItemDTO(it))
	}
	return out
}

// =============================================================================
// CUSTOMERS
// =============================================================================

type CustomerDTO struct {
	Code            string   `json:"code"`
	Name            string   `json:"name"`
	Balance         string   `json:"balance"`
	CreditLimit     string   `json:"credit_limit"`
	DiscountPercent string   `json:"discount_percent"`
	Addresses       []string `json:"addresses"`
	Orders          []string `json:"orders,omitempty"`
}

type CreateCustomerRequest struct {
	Code            string          `json:"code"`
	Name            string          `json:"name"`
	CreditLimit     decimal.Decimal `json:"credit_limit"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	Addresses       []string        `json:"addresses"`
}

type AddAddressRequest struct {
	Address string `json:"address"`
}

func toCustomerDTO(c *customers.Customer) CustomerDTO {
	return CustomerDTO{
		Code:            c.Code,
		Name:            c.Name,
		Balance:         c.Balance.String(),
		CreditLimit:     c.CreditLimit.String(),
		DiscountPercent: c.DiscountPercent.String(),
		Addresses:       c.ShippingAddresses(),
		Orders:          c.Orders(),
	}
}

func toCustomerDTOs(cs []*customers.Customer) []CustomerDTO {
	out := make([]CustomerDTO, 0, len(cs))
	for _, c := range cs {
		out = append(out, toCustomerDTO(c))
	}
	return out
}

// =============================================================================
// ORDERS
// =============================================================================

type LineDTO struct {
	ItemCode  string `json:"item_code"`
	Ordered   int    `json:"ordered"`
	Pending   int    `json:"pending"`
	UnitPrice string `json:"unit_price"`
	Subtotal  string `json:"subtotal"`
}

type OrderDTO struct {
	Number          string    `json:"number"`
	CustomerCode    string    `json:"customer_code"`
	ShippingAddress string    `json:"shipping_address"`
	PlacedAt        string    `json:"placed_at"`
	Status          string    `json:"status"`
	Total           string    `json:"total"`
	Lines           []LineDTO `json:"lines"`
}

type CreateOrderRequest struct {
	CustomerCode    string `json:"customer_code"`
	ShippingAddress string `json:"shipping_address"`
}

type AddLineRequest struct {
	ItemCode string `json:"item_code"`
	Quantity int    `json:"quantity"`
}

type ChangeStatusRequest struct {
	Status string `json:"status"`
}

type EventDTO struct {
	ID          string `json:"id"`
	OrderNumber string `json:"order_number"`
	Type        string `json:"type"`
	FromStatus  string `json:"from_status,omitempty"`
	ToStatus    string `json:"to_status,omitempty"`
	Note        string `json:"note,omitempty"`
	At          string `json:"at"`
}

func toOrderDTO(o *orders.Order) OrderDTO {
	dto := OrderDTO{
		Number:          o.Number,
		CustomerCode:    o.CustomerCode,
		ShippingAddress: o.ShippingAddress,
		PlacedAt:        o.PlacedAt.Format("2006-01-02"),
		Status:          string(o.Status),
		Total:           o.Total.String(),
	}
	for _, l := range o.Lines {
		dto.Lines = append(dto.Lines, LineDTO{
			ItemCode:  l.ItemCode,
			Ordered:   l.Ordered,
			Pending:   l.Pending,
			UnitPrice: l.UnitPrice.String(),
			Subtotal:  l.Subtotal.String(),
		})
	}
	return dto
}

func toOrderDTOs(os []*orders.Order) []OrderDTO {
	out := make([]OrderDTO, 0, len(os))
	for _, o := range os {
		out = append(out, toOrderDTO(o))
	}
	return out
}

func toEventDTOs(evs []orders.Event) []EventDTO {
	out := make([]EventDTO, 0, len(evs))
	for _, ev := range evs {
		out = append(out, EventDTO{
			ID:          ev.ID.String(),
			OrderNumber: ev.OrderNumber,
			Type:        string(ev.Type),
			FromStatus:  string(ev.FromStatus),
			ToStatus:    string(ev.ToStatus),
			Note:        ev.Note,
			At:          ev.At.UTC().Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	return out
}
