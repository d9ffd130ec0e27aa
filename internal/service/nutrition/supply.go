package nutrition

import (
	"github.com/mamadbah2/dairyfeed/internal/domain/models"
)

// minDietDM guards the division by total intake downstream.
const minDietDM = 1e-6

const cpToMPEfficiency = 0.64

// Supply aggregates the nutrient supply of a chosen diet. amounts are kg of
// dry matter per feed, aligned index-for-index with feeds. Every nutrient is
// a genuine weighted sum of amount times fraction across the selected feeds.
func Supply(amounts []float64, feedList []models.FeedRecord, req models.RequirementResult) (models.SupplyResult, error) {
	if len(amounts) != len(feedList) {
		return models.SupplyResult{}, &models.ValidationError{
			Field:  "amounts",
			Reason: "one dry-matter amount is required per selected feed",
		}
	}

	var total float64
	for _, amount := range amounts {
		if amount < 0 {
			return models.SupplyResult{}, &models.ValidationError{
				Field:  "amounts",
				Reason: "dry-matter amounts must not be negative",
			}
		}
		total += amount
	}

	if total < minDietDM {
		return models.SupplyResult{}, &models.DomainError{
			Stage:  "supply",
			Reason: "diet too small: total dry matter is numerically zero",
		}
	}

	res := models.SupplyResult{DMIn: total}

	for idx, feed := range feedList {
		amount := amounts[idx]
		if amount == 0 {
			continue
		}

		res.CP += amount * feed.CrudeProtein / 100
		res.Calcium += amount * feed.Calcium / 100
		res.Phosphorus += amount * feed.Phosphorus / 100
		res.NDF += amount * feed.NDF / 100
		res.Starch += amount * feed.Starch / 100
		res.EE += amount * feed.EtherExtract / 100

		if feed.IsForage() {
			res.ForageNDF += amount * feed.NDF / 100
		}

		nel, me := feedEnergyDensity(feed)
		res.NEL += amount * nel
		res.ME += amount * me
	}

	res.MP = res.CP * cpToMPEfficiency

	res.NELBalance = res.NEL - (req.NELTotal + req.NELMilk)
	res.MEBalance = res.ME - (req.METotal + req.NELMilk/meToNEOther)
	res.MPBalance = res.MP*1000 - req.MPTotal

	return res, nil
}

// feedEnergyDensity estimates NEL and ME (Mcal per kg DM) from the feed's
// ADF fraction via the TDN regression. Results are floored at zero so a
// pathological composition cannot produce negative energy supply.
func feedEnergyDensity(feed models.FeedRecord) (nel, me float64) {
	tdn := 87.84 - 0.77*feed.ADF
	if tdn < 0 {
		tdn = 0
	}
	if tdn > 100 {
		tdn = 100
	}

	nel = 0.0245*tdn - 0.12
	if nel < 0 {
		nel = 0
	}

	de := 0.04409 * tdn
	me = 1.01*de - 0.45
	if me < 0 {
		me = 0
	}

	return nel, me
}
