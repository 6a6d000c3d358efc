package normalizer_test

import (
	"testing"
	"time"

	"pedidos-api/internal/entities"
	"pedidos-api/internal/normalizer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizer_Normalize_Incoming(t *testing.T) {
	n := normalizer.New()

	testCases := []struct {
		name     string
		payload  string
		want     entities.Order
		wantCode entities.ErrorCode
	}{
		{
			name: "valid legacy payload",
			payload: `{
				"numeroPedido": "v10089015vdb-01",
				"valorTotal": 10000,
				"dataCriacao": "2023-07-19T12:24:11.5299601+00:00",
				"items": [{"idItem": "2434", "quantidadeItem": 1, "valorItem": 1000}]
			}`,
			want: entities.Order{
				OrderID:      "v10089015vdb-01",
				Value:        10000,
				CreationDate: time.Date(2023, 7, 19, 12, 24, 11, 529960100, time.UTC),
				Items:        []entities.Item{{ProductID: 2434, Quantity: 1, Price: 1000}},
			},
		},
		{
			name: "zero quantity is allowed",
			payload: `{
				"numeroPedido": "o-2",
				"valorTotal": 0,
				"dataCriacao": "2023-01-01T00:00:00Z",
				"items": [{"idItem": "7", "quantidadeItem": 0, "valorItem": 0}]
			}`,
			want: entities.Order{
				OrderID:      "o-2",
				Value:        0,
				CreationDate: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
				Items:        []entities.Item{{ProductID: 7, Quantity: 0, Price: 0}},
			},
		},
		{
			name: "non numeric idItem",
			payload: `{
				"numeroPedido": "o-3",
				"valorTotal": 100,
				"dataCriacao": "2023-01-01T00:00:00Z",
				"items": [{"idItem": "abc", "quantidadeItem": 1, "valorItem": 50}]
			}`,
			wantCode: entities.CodeInvalidItemID,
		},
		{
			name: "fractional idItem",
			payload: `{
				"numeroPedido": "o-4",
				"valorTotal": 100,
				"dataCriacao": "2023-01-01T00:00:00Z",
				"items": [{"idItem": "12.5", "quantidadeItem": 1, "valorItem": 50}]
			}`,
			wantCode: entities.CodeInvalidItemID,
		},
		{
			name: "unparsable dataCriacao",
			payload: `{
				"numeroPedido": "o-5",
				"valorTotal": 100,
				"dataCriacao": "not-a-date",
				"items": [{"idItem": "7", "quantidadeItem": 1, "valorItem": 50}]
			}`,
			wantCode: entities.CodeValidation,
		},
		{
			name: "zero items",
			payload: `{
				"numeroPedido": "o-6",
				"valorTotal": 100,
				"dataCriacao": "2023-01-01T00:00:00Z",
				"items": []
			}`,
			wantCode: entities.CodeValidation,
		},
		{
			name: "negative valorTotal",
			payload: `{
				"numeroPedido": "o-7",
				"valorTotal": -1,
				"dataCriacao": "2023-01-01T00:00:00Z",
				"items": [{"idItem": "7", "quantidadeItem": 1, "valorItem": 50}]
			}`,
			wantCode: entities.CodeValidation,
		},
		{
			name: "negative valorItem",
			payload: `{
				"numeroPedido": "o-8",
				"valorTotal": 100,
				"dataCriacao": "2023-01-01T00:00:00Z",
				"items": [{"idItem": "7", "quantidadeItem": 1, "valorItem": -50}]
			}`,
			wantCode: entities.CodeValidation,
		},
		{
			name: "unknown field rejected",
			payload: `{
				"numeroPedido": "o-9",
				"valorTotal": 100,
				"dataCriacao": "2023-01-01T00:00:00Z",
				"valorFrete": 10,
				"items": [{"idItem": "7", "quantidadeItem": 1, "valorItem": 50}]
			}`,
			wantCode: entities.CodeValidation,
		},
		{
			name: "missing quantidadeItem rejected",
			payload: `{
				"numeroPedido": "o-10",
				"valorTotal": 100,
				"dataCriacao": "2023-01-01T00:00:00Z",
				"items": [{"idItem": "7", "valorItem": 50}]
			}`,
			wantCode: entities.CodeValidation,
		},
		{
			name:     "not an object",
			payload:  `[1, 2, 3]`,
			wantCode: entities.CodeValidation,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := n.Normalize([]byte(tc.payload))

			if tc.wantCode != "" {
				var domainErr *entities.Error
				require.ErrorAs(t, err, &domainErr)
				assert.Equal(t, tc.wantCode, domainErr.Code)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.want.OrderID, got.OrderID)
			assert.Equal(t, tc.want.Value, got.Value)
			assert.True(t, tc.want.CreationDate.Equal(got.CreationDate))
			assert.Equal(t, tc.want.Items, got.Items)
		})
	}
}

func TestNormalizer_Normalize_Canonical(t *testing.T) {
	n := normalizer.New()

	t.Run("canonical payload passes through", func(t *testing.T) {
		payload := `{
			"orderId": "o-1",
			"value": 100,
			"creationDate": "2023-01-01T00:00:00.000Z",
			"items": [{"productId": 7, "quantity": 2, "price": 50}]
		}`

		got, err := n.Normalize([]byte(payload))
		require.NoError(t, err)

		assert.Equal(t, "o-1", got.OrderID)
		assert.Equal(t, float64(100), got.Value)
		assert.True(t, got.CreationDate.Equal(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)))
		assert.Equal(t, []entities.Item{{ProductID: 7, Quantity: 2, Price: 50}}, got.Items)
	})

	t.Run("normalization is idempotent", func(t *testing.T) {
		legacy := `{
			"numeroPedido": "o-1",
			"valorTotal": 100,
			"dataCriacao": "2023-01-01T00:00:00Z",
			"items": [{"idItem": "7", "quantidadeItem": 2, "valorItem": 50}]
		}`

		first, err := n.Normalize([]byte(legacy))
		require.NoError(t, err)

		canonical := `{
			"orderId": "` + first.OrderID + `",
			"value": 100,
			"creationDate": "` + first.CreationDate.Format(entities.CreationDateLayout) + `",
			"items": [{"productId": 7, "quantity": 2, "price": 50}]
		}`

		second, err := n.Normalize([]byte(canonical))
		require.NoError(t, err)

		assert.Equal(t, first, second)
	})

	t.Run("canonical shape with bad constraints does not fall back", func(t *testing.T) {
		payload := `{
			"orderId": "o-1",
			"value": -5,
			"creationDate": "2023-01-01T00:00:00.000Z",
			"items": [{"productId": 7, "quantity": 2, "price": 50}]
		}`

		_, err := n.Normalize([]byte(payload))
		var domainErr *entities.Error
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, entities.CodeValidation, domainErr.Code)
	})

	t.Run("canonical with unknown field falls through and is rejected", func(t *testing.T) {
		payload := `{
			"orderId": "o-1",
			"value": 100,
			"creationDate": "2023-01-01T00:00:00.000Z",
			"discount": 5,
			"items": [{"productId": 7, "quantity": 2, "price": 50}]
		}`

		_, err := n.Normalize([]byte(payload))
		var domainErr *entities.Error
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, entities.CodeValidation, domainErr.Code)
	})
}
