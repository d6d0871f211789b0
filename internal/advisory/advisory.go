// Package advisory maps predicted terrain risk labels to fixed
// recommendation texts.
package advisory

import "fmt"

// DefaultRecommendation is returned for any label outside the known set.
const DefaultRecommendation = "No recommendations available."

// recommendations is keyed by the model's training-time class strings
// verbatim; lookups are exact, with no case or whitespace normalization.
var recommendations = map[string]string{
	"Highrisk":   "Take immediate action! Avoid any open flames, report dry vegetation buildup to local authorities, and keep an evacuation route ready.",
	"Mediumrisk": "Be on Alert! Clear flammable debris from the area and keep watch on local fire advisories.",
	"Lowrisk":    "Maintain basic precautions and follow standard fire safety guidelines.",
}

// Recommendation resolves a risk label to its advisory text. Unknown labels
// resolve to DefaultRecommendation.
func Recommendation(label string) string {
	if text, ok := recommendations[label]; ok {
		return text
	}
	return DefaultRecommendation
}

// Table returns a copy of the full label-to-recommendation mapping.
func Table() map[string]string {
	table := make(map[string]string, len(recommendations))
	for label, text := range recommendations {
		table[label] = text
	}
	return table
}

// Summary renders the display line for a prediction. The confidence is
// truncated, not rounded, to an integer percentage.
func Summary(label string, confidence float32) string {
	return fmt.Sprintf("%s - %d%% confidence", label, int(float64(confidence)*100))
}
