package interpret

import (
	"errors"

	"negotiation-gateway/internal/models"
)

var errMissingMetadata = errors.New("currency entity has no metadata")

// ExtractPrice finds at most one price. A currency mention always wins and
// the last one seen is kept. A bare number is only a fallback: it is used
// when nothing has set a price yet, priced in defaultUnit.
func ExtractPrice(entities []models.EntityMention, defaultUnit string) (*models.Price, []error) {
	var price *models.Price
	var malformed []error

	for i, e := range entities {
		switch e.Entity {
		case models.EntityCurrency:
			if e.Metadata == nil {
				malformed = append(malformed, newEntityError(i, e, errMissingMetadata))
				continue
			}
			price = &models.Price{Value: e.Metadata.NumericValue, Unit: e.Metadata.Unit}
		case models.EntityNumber:
			if price != nil {
				continue
			}
			v, err := numberValue(e)
			if err != nil {
				malformed = append(malformed, newEntityError(i, e, err))
				continue
			}
			price = &models.Price{Value: v, Unit: defaultUnit}
		}
	}

	return price, malformed
}

func numberValue(e models.EntityMention) (float64, error) {
	if e.Metadata != nil {
		return e.Metadata.NumericValue, nil
	}
	return parseAmount(e.Value)
}
