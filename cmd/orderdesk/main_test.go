package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderdesk/internal/models"
)

func TestSampleOrders(t *testing.T) {
	orders := sampleOrders("2024-03-10 11:00:00")
	require.Len(t, orders, 2)

	for _, o := range orders {
		assert.True(t, o.HasPhone(), o.ID)
		assert.True(t, o.Status.Known(), o.ID)
		assert.Equal(t, "2024-03-10 11:00:00", o.Timestamp)
	}

	assert.Equal(t, models.PaymentCOD, orders[1].PaymentMethod)
	assert.Equal(t, models.DeliveryExpress, orders[1].DeliveryType)
}

func TestMigrateCommandTree(t *testing.T) {
	cmd := migrateCmd()

	names := []string{}
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.ElementsMatch(t, []string{"up", "down", "version", "force"}, names)

	down, _, err := cmd.Find([]string{"down"})
	require.NoError(t, err)
	steps, err := down.Flags().GetInt("steps")
	require.NoError(t, err)
	assert.Equal(t, 1, steps)

	force, _, err := cmd.Find([]string{"force"})
	require.NoError(t, err)
	assert.Error(t, force.Args(force, nil))
}
