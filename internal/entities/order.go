package entities

import "time"

// CreationDateLayout is the canonical wire form of order timestamps:
// ISO-8601 in UTC with millisecond precision.
const CreationDateLayout = "2006-01-02T15:04:05.000Z"

// Item is a line of an order. Items have no identity of their own,
// they live and die with the order that owns them.
type Item struct {
	ProductID int64
	Quantity  int
	Price     float64
}

// Order is the canonical internal representation of an order.
// OrderID is supplied by the caller (UUID or legacy alphanumeric code)
// and is never generated by this service.
type Order struct {
	OrderID      string
	Value        float64
	CreationDate time.Time
	Items        []Item
}

// OrderList is one page of orders plus the unconditional total count.
type OrderList struct {
	Total int64
	Page  int
	Size  int
	Data  []Order
}
