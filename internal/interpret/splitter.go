package interpret

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"negotiation-gateway/internal/models"
)

var errNotNumeric = errors.New("value is not numeric")

// Split is the result of pairing numbers with the goods that follow them.
type Split struct {
	Quantity  models.Quantity
	Residual  []models.EntityMention
	Malformed []error
}

// SplitEntities binds each good to the most recent number seen before it.
// A bound number and its good are consumed; everything else stays in the
// residual in original order. A number's metadata value wins over its text.
// Numbers that do not parse are reported and dropped without touching the
// pending amount.
func SplitEntities(entities []models.EntityMention) Split {
	quantity := models.Quantity{}
	consumed := make([]bool, len(entities))
	var malformed []error

	pending := -1
	var amount float64

	for i, e := range entities {
		switch e.Entity {
		case models.EntityNumber:
			v, err := numberValue(e)
			if err != nil {
				consumed[i] = true
				malformed = append(malformed, newEntityError(i, e, err))
				continue
			}
			pending, amount = i, v
		case models.EntityGood:
			if pending < 0 {
				continue
			}
			quantity[e.Value] = amount
			consumed[pending] = true
			consumed[i] = true
			pending = -1
		}
	}

	residual := make([]models.EntityMention, 0, len(entities))
	for i, e := range entities {
		if !consumed[i] {
			residual = append(residual, e)
		}
	}

	return Split{Quantity: quantity, Residual: residual, Malformed: malformed}
}

func parseAmount(raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, errNotNumeric
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errNotNumeric
	}
	return v, nil
}
