package repo

import (
	"time"

	"pedidos-api/internal/entities"
)

type Order struct {
	OrderID      string    `db:"order_id"`
	Value        float64   `db:"value"`
	CreationDate time.Time `db:"creation_date"`
}

type Item struct {
	OrderID   string  `db:"order_id"`
	ProductID int64   `db:"product_id"`
	Quantity  int     `db:"quantity"`
	Price     float64 `db:"price"`
}

func ItemToEntity(i Item) entities.Item {
	return entities.Item{
		ProductID: i.ProductID,
		Quantity:  i.Quantity,
		Price:     i.Price,
	}
}

func OrderToEntity(o Order, items []Item) entities.Order {
	order := entities.Order{
		OrderID:      o.OrderID,
		Value:        o.Value,
		CreationDate: o.CreationDate.UTC(),
	}

	if len(items) > 0 {
		order.Items = make([]entities.Item, 0, len(items))
		for _, it := range items {
			order.Items = append(order.Items, ItemToEntity(it))
		}
	}

	return order
}
