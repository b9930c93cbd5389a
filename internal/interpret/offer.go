package interpret

import "negotiation-gateway/internal/models"

// Offer is the quantity and optional price found in one message.
type Offer struct {
	Quantity  models.Quantity
	Price     *models.Price
	Malformed []error
}

// ExtractOffer pairs quantities with goods, then prices whatever is left.
// The caller's slice is never modified.
func ExtractOffer(entities []models.EntityMention, defaultUnit string) Offer {
	split := SplitEntities(copyEntities(entities))
	price, malformed := ExtractPrice(split.Residual, defaultUnit)

	return Offer{
		Quantity:  split.Quantity,
		Price:     price,
		Malformed: append(split.Malformed, malformed...),
	}
}

func copyEntities(entities []models.EntityMention) []models.EntityMention {
	out := make([]models.EntityMention, len(entities))
	for i, e := range entities {
		out[i] = e
		if e.Metadata != nil {
			md := *e.Metadata
			out[i].Metadata = &md
		}
	}
	return out
}
