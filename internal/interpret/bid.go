package interpret

import "negotiation-gateway/internal/models"

// NormalizeBid strips a command down to the fields the negotiation engine
// consumes. Callers must not pass a nil command.
func NormalizeBid(cmd *models.Command) (*models.Bid, error) {
	if cmd == nil {
		return nil, ErrNilCommand
	}

	bid := &models.Bid{
		Type:     cmd.Type,
		Quantity: cmd.Quantity.Clone(),
	}
	if cmd.Price != nil {
		p := *cmd.Price
		bid.Price = &p
	}
	return bid, nil
}
