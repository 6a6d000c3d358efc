package normalizer

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"pedidos-api/internal/entities"

	"github.com/go-playground/validator/v10"
)

// canonicalOrder is the internal order shape as it appears on the wire.
// Numeric fields are pointers so a missing field is distinguishable from
// an explicit zero.
type canonicalOrder struct {
	OrderID      string          `json:"orderId" validate:"required"`
	Value        *float64        `json:"value" validate:"required,gte=0"`
	CreationDate string          `json:"creationDate" validate:"required"`
	Items        []canonicalItem `json:"items" validate:"required,min=1,dive"`
}

type canonicalItem struct {
	ProductID *int64   `json:"productId" validate:"required"`
	Quantity  *int     `json:"quantity" validate:"required,gte=0"`
	Price     *float64 `json:"price" validate:"required,gte=0"`
}

// incomingOrder is the legacy submission shape with localized field names.
// Item identifiers arrive as strings and must represent integers.
type incomingOrder struct {
	NumeroPedido string         `json:"numeroPedido" validate:"required"`
	ValorTotal   *float64       `json:"valorTotal" validate:"required,gte=0"`
	DataCriacao  string         `json:"dataCriacao" validate:"required"`
	Items        []incomingItem `json:"items" validate:"required,min=1,dive"`
}

type incomingItem struct {
	IDItem         string   `json:"idItem" validate:"required"`
	QuantidadeItem *int     `json:"quantidadeItem" validate:"required,gte=0"`
	ValorItem      *float64 `json:"valorItem" validate:"required,gte=0"`
}

type Normalizer struct {
	validate *validator.Validate
}

func New() *Normalizer {
	return &Normalizer{validate: validator.New()}
}

// Normalize converts a raw order payload into the canonical representation.
// The payload is first matched strictly against the canonical shape; if the
// shape does not match, it is matched strictly against the legacy shape.
// Unknown fields cause rejection in both branches so typos in field names
// never silently drop data.
func (n *Normalizer) Normalize(payload []byte) (entities.Order, error) {
	var canonical canonicalOrder
	if err := decodeStrict(payload, &canonical); err == nil {
		return n.fromCanonical(canonical)
	}

	var incoming incomingOrder
	if err := decodeStrict(payload, &incoming); err != nil {
		return entities.Order{}, entities.NewValidationError("request body does not match the order schema", nil)
	}
	return n.fromIncoming(incoming)
}

func (n *Normalizer) fromCanonical(in canonicalOrder) (entities.Order, error) {
	if err := n.validate.Struct(in); err != nil {
		return entities.Order{}, entities.NewValidationError("invalid order payload", fieldErrors(err))
	}

	date, err := time.Parse(time.RFC3339, in.CreationDate)
	if err != nil {
		return entities.Order{}, entities.NewValidationError("invalid creationDate", nil)
	}

	order := entities.Order{
		OrderID:      in.OrderID,
		Value:        *in.Value,
		CreationDate: date.UTC(),
		Items:        make([]entities.Item, 0, len(in.Items)),
	}
	for _, it := range in.Items {
		order.Items = append(order.Items, entities.Item{
			ProductID: *it.ProductID,
			Quantity:  *it.Quantity,
			Price:     *it.Price,
		})
	}

	return order, n.recheck(order)
}

func (n *Normalizer) fromIncoming(in incomingOrder) (entities.Order, error) {
	if err := n.validate.Struct(in); err != nil {
		return entities.Order{}, entities.NewValidationError("invalid order payload", fieldErrors(err))
	}

	date, err := time.Parse(time.RFC3339, in.DataCriacao)
	if err != nil {
		return entities.Order{}, entities.NewValidationError("invalid dataCriacao", nil)
	}

	items := make([]entities.Item, 0, len(in.Items))
	for _, it := range in.Items {
		productID, err := strconv.ParseInt(it.IDItem, 10, 64)
		if err != nil {
			return entities.Order{}, entities.NewInvalidItemIDError("idItem must be numeric")
		}
		items = append(items, entities.Item{
			ProductID: productID,
			Quantity:  *it.QuantidadeItem,
			Price:     *it.ValorItem,
		})
	}

	order := entities.Order{
		OrderID:      in.NumeroPedido,
		Value:        *in.ValorTotal,
		CreationDate: date.UTC(),
		Items:        items,
	}

	return order, n.recheck(order)
}

// recheck validates the fully built order against the canonical schema
// before it leaves the normalizer.
func (n *Normalizer) recheck(o entities.Order) error {
	out := canonicalOrder{
		OrderID:      o.OrderID,
		Value:        &o.Value,
		CreationDate: o.CreationDate.UTC().Format(entities.CreationDateLayout),
		Items:        make([]canonicalItem, 0, len(o.Items)),
	}
	for _, it := range o.Items {
		out.Items = append(out.Items, canonicalItem{
			ProductID: &it.ProductID,
			Quantity:  &it.Quantity,
			Price:     &it.Price,
		})
	}

	if err := n.validate.Struct(out); err != nil {
		return entities.NewValidationError("invalid order payload", fieldErrors(err))
	}
	return nil
}

func decodeStrict(payload []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	// a second value after the document is as invalid as an unknown field
	if dec.More() {
		return errors.New("unexpected data after order payload")
	}
	return nil
}

func fieldErrors(err error) map[string]string {
	fields := make(map[string]string)
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			fields[fe.Field()] = fe.Tag()
		}
	}
	return fields
}
