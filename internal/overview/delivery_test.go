package overview

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/senzo-zwelihle-masango/emporium-overview/internal/store"
)

func TestProjectDeliveriesFiltersByStatus(t *testing.T) {
	svc := testService(nil)
	now := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)
	orders := []store.Order{
		orderWithStatus("o1", store.StatusShipped, now),
		orderWithStatus("o2", store.StatusDelivered, now.Add(-time.Hour)),
		orderWithStatus("o3", store.StatusProcessing, now.Add(-2*time.Hour)),
		orderWithStatus("o4", store.StatusCancelled, now.Add(-3*time.Hour)),
		orderWithStatus("o5", store.StatusPending, now.Add(-4*time.Hour)),
	}

	deliveries := svc.projectDeliveries(orders, now)
	require.Len(t, deliveries, 2)
	require.Equal(t, "o1", deliveries[0].OrderID)
	require.Equal(t, store.StatusShipped, deliveries[0].Status)
	require.Equal(t, "o3", deliveries[1].OrderID)
	require.Equal(t, store.StatusProcessing, deliveries[1].Status)
}

func TestProjectDeliveriesFallbackIsExactlySevenDays(t *testing.T) {
	svc := testService(nil)
	now := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)
	order := orderWithStatus("o1", store.StatusShipped, now.Add(-48*time.Hour))

	deliveries := svc.projectDeliveries([]store.Order{order}, now)
	require.Len(t, deliveries, 1)
	require.Equal(t, now.Add(7*24*time.Hour), deliveries[0].EstimatedDelivery)
}

func TestProjectDeliveriesPrefersStoredDate(t *testing.T) {
	svc := testService(nil)
	now := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)
	eta := now.Add(72 * time.Hour)
	order := orderWithStatus("o1", store.StatusProcessing, now)
	order.ExpectedDelivery = &eta
	order.Items = []store.OrderItem{{ID: "i1"}, {ID: "i2"}, {ID: "i3"}}

	deliveries := svc.projectDeliveries([]store.Order{order}, now)
	require.Len(t, deliveries, 1)
	require.Equal(t, eta, deliveries[0].EstimatedDelivery)
	require.Equal(t, 3, deliveries[0].ItemCount)
	require.Equal(t, order.OrderNumber, deliveries[0].OrderNumber)
}

func TestProjectDeliveriesCapsAtThree(t *testing.T) {
	svc := testService(nil)
	now := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)
	var orders []store.Order
	for i := 0; i < 5; i++ {
		orders = append(orders, orderWithStatus(string(rune('a'+i)), store.StatusShipped, now.Add(-time.Duration(i)*time.Hour)))
	}

	deliveries := svc.projectDeliveries(orders, now)
	require.Len(t, deliveries, 3)
	require.Equal(t, "a", deliveries[0].OrderID)
	require.Equal(t, "c", deliveries[2].OrderID)
}

func TestProjectDeliveriesNoQualifyingOrders(t *testing.T) {
	svc := testService(nil)
	now := time.Now().UTC()
	deliveries := svc.projectDeliveries([]store.Order{
		orderWithStatus("o1", store.StatusDelivered, now),
	}, now)
	require.NotNil(t, deliveries)
	require.Empty(t, deliveries)
}

func orderWithStatus(id string, status store.OrderStatus, createdAt time.Time) store.Order {
	return store.Order{
		ID:          id,
		OrderNumber: "R" + id,
		Status:      status,
		CreatedAt:   createdAt,
	}
}
