package pricing

import (
	"math"

	"scanlane/internal/domain"
)

// Resolve computes the effective unit price for a product and, when an
// offer is active, the integer discount percentage. Pure; never fails.
//
// Offer wins only when both the flag and the offer price are present.
// The discount percent is reported only for a positive base price.
func Resolve(p domain.Product) (float64, *int) {
	if p.HasOffer && p.OfferPrice != nil {
		if p.BasePrice > 0 {
			d := int(math.Round((p.BasePrice - *p.OfferPrice) / p.BasePrice * 100))
			return *p.OfferPrice, &d
		}
		return *p.OfferPrice, nil
	}
	return p.BasePrice, nil
}
