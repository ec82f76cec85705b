package statemachine

import (
	"arzaq-api/apperr"
	"arzaq-api/models"
)

// restaurantTransitions: approval is a one-shot decision. Both approved and
// rejected are terminal; re-application is not supported.
var restaurantTransitions = map[models.RestaurantStatus][]models.RestaurantStatus{
	models.RestaurantPending: {models.RestaurantApproved, models.RestaurantRejected},
}

// CanTransitionRestaurant checks an approval-workflow state change. The
// admin-only gate is enforced by the authorization policy, not here.
func CanTransitionRestaurant(from, to models.RestaurantStatus) error {
	for _, next := range restaurantTransitions[from] {
		if next == to {
			return nil
		}
	}
	return apperr.New(apperr.KindInvalidTransition,
		"restaurant is not in pending status")
}
