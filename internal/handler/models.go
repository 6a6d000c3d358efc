package handler

import (
	"pedidos-api/internal/entities"
)

// Item is an order line as returned by the API.
// swagger:model Item
type Item struct {
	ProductID int64   `json:"productId"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

// Order is an order as returned by the API. CreationDate is ISO-8601 UTC
// with millisecond precision.
// swagger:model Order
type Order struct {
	OrderID      string  `json:"orderId"`
	Value        float64 `json:"value"`
	CreationDate string  `json:"creationDate"`
	Items        []Item  `json:"items"`
}

// OrderList is one page of orders.
// swagger:model OrderList
type OrderList struct {
	Total int64   `json:"total"`
	Page  int     `json:"page"`
	Size  int     `json:"size"`
	Data  []Order `json:"data"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token       string `json:"token"`
	ExpiresInMs int64  `json:"expiresInMs"`
}

func ItemEntityToJSON(i entities.Item) Item {
	return Item{
		ProductID: i.ProductID,
		Quantity:  i.Quantity,
		Price:     i.Price,
	}
}

func OrderEntityToJSON(o entities.Order) Order {
	items := make([]Item, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, ItemEntityToJSON(it))
	}

	return Order{
		OrderID:      o.OrderID,
		Value:        o.Value,
		CreationDate: o.CreationDate.UTC().Format(entities.CreationDateLayout),
		Items:        items,
	}
}

func OrderListEntityToJSON(l entities.OrderList) OrderList {
	data := make([]Order, 0, len(l.Data))
	for _, o := range l.Data {
		data = append(data, OrderEntityToJSON(o))
	}

	return OrderList{
		Total: l.Total,
		Page:  l.Page,
		Size:  l.Size,
		Data:  data,
	}
}
