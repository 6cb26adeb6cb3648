package main

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"orderdesk/internal/models"
	"orderdesk/internal/repository"
	"orderdesk/internal/service"
)

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert sample orders and build their customer profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			orders := repository.NewOrderRepository(e.db)
			aggregator := service.NewAggregator(orders, repository.NewCustomerRepository(e.db), nil, nil, e.log)
			writer := service.NewOrderWriter(orders, service.NewSyncNotifier(aggregator, e.log), e.log)

			stamp := time.Now().In(e.cfg.Location()).Format(models.TimestampLayout)
			for _, order := range sampleOrders(stamp) {
				if err := writer.Upsert(cmd.Context(), order); err != nil {
					return err
				}
				e.log.Info("Seeded order", zap.String("order_id", order.ID), zap.String("phone", order.Phone))
			}
			return nil
		},
	}
}

func sampleOrders(stamp string) []*models.Order {
	return []*models.Order{
		{
			ID:            "#1001",
			CustomerName:  "Amit Sharma",
			Email:         "amit.sharma@example.com",
			Phone:         "+919876543210",
			Address:       "123, MG Road, Bangalore",
			State:         "Karnataka",
			PaymentMethod: models.PaymentPrepaid,
			RiskTier:      models.RiskLow,
			Source:        models.SourceShopify,
			Products:      models.ProductList{"Blue Shirt - M"},
			Total:         "1299.00",
			Status:        models.OrderStatusPending,
			Timestamp:     stamp,
			Notes:         "Called once, busy.",
			DeliveryType:  models.DeliveryStandard,
		},
		{
			ID:            "#5521",
			CustomerName:  "Priya Singh",
			Email:         "priya.singh@example.com",
			Phone:         "+919988776655",
			Address:       "Green Apts, Mumbai",
			State:         "Maharashtra",
			PaymentMethod: models.PaymentCOD,
			RiskTier:      models.RiskMedium,
			Source:        models.SourceShiprocket,
			Products:      models.ProductList{"Wireless Earbuds"},
			Total:         "2499.00",
			Status:        models.OrderStatusCallAgain,
			Timestamp:     stamp,
			DeliveryType:  models.DeliveryExpress,
		},
	}
}
