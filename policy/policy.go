// Package policy is the central authorization decision table. Handlers never
// compare roles or owner IDs inline; they describe the attempted action and
// let Decide answer. Rules are evaluated in order and the first match wins.
package policy

import (
	"arzaq-api/apperr"
	"arzaq-api/models"
)

// Actor is the authenticated entity making a request. A zero Actor is
// anonymous.
type Actor struct {
	ID   uint
	Role models.UserRole
}

// Action names a guarded operation
type Action string

const (
	RestaurantApprove Action = "restaurant.approve"
	RestaurantReject  Action = "restaurant.reject"
	RestaurantListAll Action = "restaurant.list_all"
	RestaurantUpdate  Action = "restaurant.update"
	RestaurantDelete  Action = "restaurant.delete"
	RestaurantView    Action = "restaurant.view"
	RestaurantList    Action = "restaurant.list"

	FoodCreate Action = "food.create"
	FoodUpdate Action = "food.update"
	FoodDelete Action = "food.delete"
	FoodList   Action = "food.list"
	FoodView   Action = "food.view"

	OrderCreate Action = "order.create"
	OrderView   Action = "order.view"
	OrderUpdate Action = "order.update"
	OrderImpact Action = "order.impact"

	PostDelete    Action = "post.delete"
	PostList      Action = "post.list"
	PostView      Action = "post.view"
	CommentDelete Action = "comment.delete"
)

// Request describes one attempted (actor, action, resource) triple.
// OwnerIDs holds every user ID that counts as an owner of the resource;
// an order, for example, is owned by its customer and by the owner of its
// restaurant.
type Request struct {
	Actor    Actor
	Action   Action
	OwnerIDs []uint
}

// adminActions are allowed for any admin regardless of ownership
var adminActions = map[Action]bool{
	RestaurantApprove: true,
	RestaurantReject:  true,
	RestaurantListAll: true,
	RestaurantDelete:  true,
	RestaurantView:    true,
	OrderView:         true,
	PostDelete:        true,
	CommentDelete:     true,
}

// ownerActions are allowed when the actor owns the resource
var ownerActions = map[Action]bool{
	RestaurantUpdate: true,
	RestaurantDelete: true,
	RestaurantView:   true,
	FoodUpdate:       true,
	FoodDelete:       true,
	OrderView:        true,
	OrderUpdate:      true,
	PostDelete:       true,
	CommentDelete:    true,
}

// publicActions are allowed for any actor, authenticated or not
var publicActions = map[Action]bool{
	RestaurantList: true,
	FoodList:       true,
	FoodView:       true,
	PostList:       true,
	PostView:       true,
}

// creationRoles gates resource creation on the actor's role
var creationRoles = map[Action]models.UserRole{
	FoodCreate:  models.RoleRestaurant,
	OrderCreate: models.RoleClient,
	OrderImpact: models.RoleClient,
}

// Decide returns nil when the action is allowed, otherwise an apperr with
// kind forbidden or forbidden_role. It is pure: no I/O, no side effects.
func Decide(req Request) error {
	if req.Actor.Role == models.RoleAdmin && adminActions[req.Action] {
		return nil
	}
	if ownerActions[req.Action] && req.Actor.ID != 0 {
		for _, owner := range req.OwnerIDs {
			if owner == req.Actor.ID {
				return nil
			}
		}
	}
	if publicActions[req.Action] {
		return nil
	}
	if role, gated := creationRoles[req.Action]; gated {
		if req.Actor.Role == role {
			return nil
		}
		return apperr.New(apperr.KindForbiddenRole,
			"this action requires the "+string(role)+" role")
	}
	return apperr.New(apperr.KindForbidden, "you do not have access to this resource")
}
