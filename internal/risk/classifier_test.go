package risk

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"

	"orderdesk/internal/config"
	"orderdesk/internal/models"
)

func TestClassify(t *testing.T) {
	c := NewClassifier(config.DefaultHighRiskRegions)

	testCases := []struct {
		name    string
		payment models.PaymentMethod
		region  string
		want    models.RiskTier
	}{
		{"cod in high-risk state", models.PaymentCOD, "Bihar", models.RiskHigh},
		{"cod elsewhere", models.PaymentCOD, "Delhi", models.RiskMedium},
		{"prepaid in high-risk state", models.PaymentPrepaid, "Bihar", models.RiskLow},
		{"cod without region", models.PaymentCOD, "", models.RiskMedium},
		{"cod region with padding", models.PaymentCOD, " Uttar Pradesh ", models.RiskHigh},
		{"region match is case-sensitive", models.PaymentCOD, "bihar", models.RiskMedium},
		{"unknown payment method", models.PaymentMethod("UPI"), "Assam", models.RiskLow},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, c.Classify(tc.payment, tc.region))
		})
	}
}

func TestIsHighRiskRegion(t *testing.T) {
	c := NewClassifier([]string{"Odisha", " ", ""})
	assert.True(t, c.IsHighRiskRegion("Odisha"))
	assert.False(t, c.IsHighRiskRegion(""))
}

func TestClassify_Properties(t *testing.T) {
	c := NewClassifier(config.DefaultHighRiskRegions)

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("non-COD orders are always LOW", prop.ForAll(
		func(region string) bool {
			return c.Classify(models.PaymentPrepaid, region) == models.RiskLow
		},
		gen.AnyString(),
	))

	properties.Property("COD orders are never LOW", prop.ForAll(
		func(region string) bool {
			return c.Classify(models.PaymentCOD, region) != models.RiskLow
		},
		gen.AnyString(),
	))

	properties.Property("COD is HIGH exactly in high-risk regions", prop.ForAll(
		func(region string) bool {
			got := c.Classify(models.PaymentCOD, region)
			return (got == models.RiskHigh) == c.IsHighRiskRegion(region)
		},
		gen.OneGenOf(gen.AlphaString(), gen.OneConstOf("Bihar", "Assam", "Delhi", "Karnataka")),
	))

	properties.TestingRun(t)
}
