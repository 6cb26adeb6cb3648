// Package risk classifies orders by their likelihood of being returned to origin.
package risk

import (
	"strings"

	"orderdesk/internal/models"
)

// Classifier maps payment method and shipping region to a risk tier
type Classifier struct {
	highRisk map[string]struct{}
}

// NewClassifier creates a classifier for the given high-risk regions
func NewClassifier(highRiskRegions []string) *Classifier {
	set := make(map[string]struct{}, len(highRiskRegions))
	for _, region := range highRiskRegions {
		if region = strings.TrimSpace(region); region != "" {
			set[region] = struct{}{}
		}
	}
	return &Classifier{highRisk: set}
}

// Classify returns LOW for anything other than cash on delivery. COD orders are
// HIGH in a high-risk region and MEDIUM elsewhere.
func (c *Classifier) Classify(payment models.PaymentMethod, region string) models.RiskTier {
	if payment != models.PaymentCOD {
		return models.RiskLow
	}
	if _, ok := c.highRisk[strings.TrimSpace(region)]; ok {
		return models.RiskHigh
	}
	return models.RiskMedium
}

// IsHighRiskRegion reports whether region is in the configured set
func (c *Classifier) IsHighRiskRegion(region string) bool {
	_, ok := c.highRisk[strings.TrimSpace(region)]
	return ok
}
