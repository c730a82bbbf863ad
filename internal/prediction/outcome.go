package prediction

import "emi-eligibility-engine/internal/models"

// Labels with a dedicated outcome. Any other label is treated as not eligible.
const (
	LabelEligible = "Eligible"
	LabelHighRisk = "High_Risk"
)

const (
	messageEligible    = "This customer is financially strong for EMI approval"
	messageHighRisk    = "This customer may require additional verification"
	messageNotEligible = "This profile is Not Eligible for EMI at this time"
)

// Classify maps an eligibility label to its presentation tier and message.
// Matching is exact; unseen labels fall through to the danger tier.
func Classify(label string) models.Outcome {
	switch label {
	case LabelEligible:
		return models.Outcome{Tier: models.TierSuccess, Message: messageEligible}
	case LabelHighRisk:
		return models.Outcome{Tier: models.TierWarning, Message: messageHighRisk}
	default:
		return models.Outcome{Tier: models.TierDanger, Message: messageNotEligible}
	}
}
