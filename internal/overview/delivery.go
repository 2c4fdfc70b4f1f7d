package overview

import (
	"time"

	"github.com/senzo-zwelihle-masango/emporium-overview/internal/store"
)

// projectDeliveries estimates arrival for in-transit orders: exactly the
// shipped and processing statuses qualify, first few in the orders' given
// (newest-first) order. Orders without a stored expected date fall back to
// now plus the configured offset; the estimate is never left empty.
func (s *Service) projectDeliveries(orders []store.Order, now time.Time) []Delivery {
	deliveries := make([]Delivery, 0, s.policy.DeliveryLimit)
	for _, order := range orders {
		if order.Status != store.StatusShipped && order.Status != store.StatusProcessing {
			continue
		}
		estimated := now.Add(s.policy.DeliveryFallback)
		if order.ExpectedDelivery != nil {
			estimated = *order.ExpectedDelivery
		}
		deliveries = append(deliveries, Delivery{
			OrderID:           order.ID,
			OrderNumber:       order.OrderNumber,
			EstimatedDelivery: estimated,
			Status:            order.Status,
			ItemCount:         len(order.Items),
		})
		if len(deliveries) == s.policy.DeliveryLimit {
			break
		}
	}
	return deliveries
}
