package recommendation

import "github.com/Nazarious-ucu/travel-planner-api/internal/models"

type cityLister interface {
	Cities() []models.CityRecord
}

// Recommend returns, in catalog order, every city that has at least one package tier
// priced at or below budget. Only the affordable tiers are kept for each city.
func Recommend(budget int, catalog cityLister) []models.Recommendation {
	recommendations := make([]models.Recommendation, 0)

	for _, city := range catalog.Cities() {
		rec := models.Recommendation{
			City:        city.Name,
			Temperature: city.Temperature,
			Humidity:    city.Humidity,
			WindSpeed:   city.WindSpeed,
			Packages:    models.Packages{},
		}

		for _, pkg := range city.Packages {
			if pkg.Affordable(budget) {
				rec.Packages = append(rec.Packages, pkg)
			}
		}

		if len(rec.Packages) > 0 {
			recommendations = append(recommendations, rec)
		}
	}

	return recommendations
}
