package interpret

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"negotiation-gateway/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

func number(v string) models.EntityMention {
	return models.EntityMention{Entity: models.EntityNumber, Value: v}
}

func numberWithMeta(v string, n float64) models.EntityMention {
	return models.EntityMention{
		Entity:   models.EntityNumber,
		Value:    v,
		Metadata: &models.EntityMetadata{NumericValue: n},
	}
}

func good(v string) models.EntityMention {
	return models.EntityMention{Entity: models.EntityGood, Value: v}
}

func currency(v string, n float64, unit string) models.EntityMention {
	return models.EntityMention{
		Entity:   models.EntityCurrency,
		Value:    v,
		Metadata: &models.EntityMetadata{NumericValue: n, Unit: unit},
	}
}

func avatar(name string) models.EntityMention {
	return models.EntityMention{Entity: models.EntityAvatar, Value: name}
}

// ==========================
// Entity Splitter
// ==========================

func TestSplitEntities(t *testing.T) {
	tests := []struct {
		name             string
		entities         []models.EntityMention
		expectedQuantity models.Quantity
		expectedResidual []models.EntityMention
		expectedBad      int
	}{
		{
			name:             "number then good binds",
			entities:         []models.EntityMention{number("5"), good("apples")},
			expectedQuantity: models.Quantity{"apples": 5},
			expectedResidual: []models.EntityMention{},
		},
		{
			name:             "several goods in one message",
			entities:         []models.EntityMention{number("2"), good("milk"), number("3.5"), good("sugar")},
			expectedQuantity: models.Quantity{"milk": 2, "sugar": 3.5},
			expectedResidual: []models.EntityMention{},
		},
		{
			name:             "two numbers before a good keep the first in residual",
			entities:         []models.EntityMention{number("7"), number("4"), good("eggs")},
			expectedQuantity: models.Quantity{"eggs": 4},
			expectedResidual: []models.EntityMention{number("7")},
		},
		{
			name:             "good without a number stays",
			entities:         []models.EntityMention{good("flour"), number("9")},
			expectedQuantity: models.Quantity{},
			expectedResidual: []models.EntityMention{good("flour"), number("9")},
		},
		{
			name:             "number is consumed even when another entity sits between it and the good",
			entities:         []models.EntityMention{number("6"), avatar("Celia"), good("chocolate")},
			expectedQuantity: models.Quantity{"chocolate": 6},
			expectedResidual: []models.EntityMention{avatar("Celia")},
		},
		{
			name:             "pending amount is cleared after binding",
			entities:         []models.EntityMention{number("1"), good("egg"), good("milk")},
			expectedQuantity: models.Quantity{"egg": 1},
			expectedResidual: []models.EntityMention{good("milk")},
		},
		{
			name:             "currency is never a quantity",
			entities:         []models.EntityMention{currency("$3", 3, "USD"), good("milk")},
			expectedQuantity: models.Quantity{},
			expectedResidual: []models.EntityMention{currency("$3", 3, "USD"), good("milk")},
		},
		{
			name:             "malformed number is dropped and reported",
			entities:         []models.EntityMention{number("3"), number("lots"), good("vanilla")},
			expectedQuantity: models.Quantity{"vanilla": 3},
			expectedResidual: []models.EntityMention{},
			expectedBad:      1,
		},
		{
			name:             "spelled-out number uses its metadata value",
			entities:         []models.EntityMention{numberWithMeta("five", 5), good("apples")},
			expectedQuantity: models.Quantity{"apples": 5},
			expectedResidual: []models.EntityMention{},
		},
		{
			name:             "empty input",
			entities:         nil,
			expectedQuantity: models.Quantity{},
			expectedResidual: []models.EntityMention{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			split := SplitEntities(tt.entities)
			assert.Equal(t, tt.expectedQuantity, split.Quantity)
			assert.Equal(t, tt.expectedResidual, split.Residual)
			assert.Len(t, split.Malformed, tt.expectedBad)
		})
	}
}

func TestSplitEntities_MalformedError(t *testing.T) {
	split := SplitEntities([]models.EntityMention{good("egg"), number("a dozen")})

	require.Len(t, split.Malformed, 1)
	assert.True(t, errors.Is(split.Malformed[0], ErrMalformedEntity))

	var entityErr *EntityError
	require.True(t, errors.As(split.Malformed[0], &entityErr))
	assert.Equal(t, 1, entityErr.Index)
	assert.Equal(t, "a dozen", entityErr.Value)
}

// ==========================
// Price Extractor
// ==========================

func TestExtractPrice(t *testing.T) {
	tests := []struct {
		name     string
		entities []models.EntityMention
		expected *models.Price
	}{
		{
			name:     "no price entities",
			entities: []models.EntityMention{good("milk"), avatar("Watson")},
			expected: nil,
		},
		{
			name:     "currency entity",
			entities: []models.EntityMention{currency("$10", 10, "USD")},
			expected: &models.Price{Value: 10, Unit: "USD"},
		},
		{
			name:     "last currency wins",
			entities: []models.EntityMention{currency("$10", 10, "USD"), currency("8 euros", 8, "EUR")},
			expected: &models.Price{Value: 8, Unit: "EUR"},
		},
		{
			name:     "bare number uses default unit",
			entities: []models.EntityMention{numberWithMeta("12", 12)},
			expected: &models.Price{Value: 12, Unit: "USD"},
		},
		{
			name:     "bare number without metadata falls back to its value",
			entities: []models.EntityMention{number("4.25")},
			expected: &models.Price{Value: 4.25, Unit: "USD"},
		},
		{
			name:     "first bare number wins among numbers",
			entities: []models.EntityMention{numberWithMeta("3", 3), numberWithMeta("9", 9)},
			expected: &models.Price{Value: 3, Unit: "USD"},
		},
		{
			name:     "currency after a bare number overrides it",
			entities: []models.EntityMention{numberWithMeta("3", 3), currency("$7", 7, "USD")},
			expected: &models.Price{Value: 7, Unit: "USD"},
		},
		{
			name:     "bare number after a currency does not override it",
			entities: []models.EntityMention{currency("$7", 7, "USD"), numberWithMeta("3", 3)},
			expected: &models.Price{Value: 7, Unit: "USD"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			price, bad := ExtractPrice(tt.entities, "USD")
			assert.Empty(t, bad)
			assert.Equal(t, tt.expected, price)
		})
	}
}

func TestExtractPrice_MalformedEntitiesAreSkipped(t *testing.T) {
	entities := []models.EntityMention{
		{Entity: models.EntityCurrency, Value: "$$"},
		number("cheap"),
		numberWithMeta("5", 5),
	}

	price, bad := ExtractPrice(entities, "GBP")

	assert.Equal(t, &models.Price{Value: 5, Unit: "GBP"}, price)
	require.Len(t, bad, 2)
	for _, err := range bad {
		assert.ErrorIs(t, err, ErrMalformedEntity)
	}
}

// ==========================
// Offer Extractor
// ==========================

func TestExtractOffer(t *testing.T) {
	t.Run("quantity and currency", func(t *testing.T) {
		offer := ExtractOffer([]models.EntityMention{
			number("5"), good("apples"), currency("$10", 10, "USD"),
		}, "USD")

		assert.Equal(t, models.Quantity{"apples": 5}, offer.Quantity)
		assert.Equal(t, &models.Price{Value: 10, Unit: "USD"}, offer.Price)
		assert.Empty(t, offer.Malformed)
	})

	t.Run("bound number is not reused as a price", func(t *testing.T) {
		offer := ExtractOffer([]models.EntityMention{numberWithMeta("5", 5), good("apples")}, "USD")

		assert.Equal(t, models.Quantity{"apples": 5}, offer.Quantity)
		assert.Nil(t, offer.Price)
	})

	t.Run("unbound leading number becomes fallback price", func(t *testing.T) {
		offer := ExtractOffer([]models.EntityMention{
			numberWithMeta("2", 2), numberWithMeta("6", 6), good("eggs"),
		}, "USD")

		assert.Equal(t, models.Quantity{"eggs": 6}, offer.Quantity)
		assert.Equal(t, &models.Price{Value: 2, Unit: "USD"}, offer.Price)
	})

	t.Run("quantity is present even when nothing binds", func(t *testing.T) {
		offer := ExtractOffer([]models.EntityMention{currency("$1", 1, "USD")}, "USD")

		assert.NotNil(t, offer.Quantity)
		assert.Empty(t, offer.Quantity)
	})
}

func TestExtractOffer_DoesNotMutateInput(t *testing.T) {
	entities := []models.EntityMention{
		numberWithMeta("2", 2), numberWithMeta("6", 6), good("eggs"), currency("$4", 4, "USD"),
	}
	snapshot := copyEntities(entities)

	first := ExtractOffer(entities, "USD")
	second := ExtractOffer(entities, "USD")

	assert.Equal(t, snapshot, entities)
	assert.Equal(t, first, second)
}
