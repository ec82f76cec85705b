package statemachine

import (
	"arzaq-api/apperr"
	"arzaq-api/models"
)

// OrderTransition defines a valid state change and the role allowed to
// perform it
type OrderTransition struct {
	From  models.OrderStatus
	To    models.OrderStatus
	Actor models.UserRole
}

// orderTransitions is the authoritative order lifecycle definition.
// Forward transitions belong to the owning restaurant; cancellation is open
// to the customer and the restaurant but only while the order is pending or
// confirmed — once an order is ready the food has been set aside and the
// only exit is completion.
var orderTransitions = []OrderTransition{
	{From: models.OrderPending, To: models.OrderConfirmed, Actor: models.RoleRestaurant},
	{From: models.OrderConfirmed, To: models.OrderReady, Actor: models.RoleRestaurant},
	{From: models.OrderReady, To: models.OrderCompleted, Actor: models.RoleRestaurant},
	{From: models.OrderPending, To: models.OrderCancelled, Actor: models.RoleClient},
	{From: models.OrderPending, To: models.OrderCancelled, Actor: models.RoleRestaurant},
	{From: models.OrderConfirmed, To: models.OrderCancelled, Actor: models.RoleClient},
	{From: models.OrderConfirmed, To: models.OrderCancelled, Actor: models.RoleRestaurant},
}

type orderKey struct {
	From  models.OrderStatus
	To    models.OrderStatus
	Actor models.UserRole
}

var orderTransitionSet = func() map[orderKey]bool {
	m := make(map[orderKey]bool)
	for _, t := range orderTransitions {
		m[orderKey{t.From, t.To, t.Actor}] = true
	}
	return m
}()

// IsTerminalOrder reports whether no transition leaves the given status
func IsTerminalOrder(status models.OrderStatus) bool {
	return status == models.OrderCompleted || status == models.OrderCancelled
}

// NextOrderStates returns all states reachable from the given one
func NextOrderStates(status models.OrderStatus) []models.OrderStatus {
	var nexts []models.OrderStatus
	seen := map[models.OrderStatus]bool{}
	for _, t := range orderTransitions {
		if t.From == status && !seen[t.To] {
			nexts = append(nexts, t.To)
			seen[t.To] = true
		}
	}
	return nexts
}

// CanTransitionOrder checks whether the given role may move an order from
// one state to another. A rejected transition leaves the order untouched.
func CanTransitionOrder(from, to models.OrderStatus, actor models.UserRole) error {
	if orderTransitionSet[orderKey{From: from, To: to, Actor: actor}] {
		return nil
	}
	return apperr.New(apperr.KindInvalidTransition,
		string(from)+" -> "+string(to)+" is not allowed for role '"+string(actor)+
			"'. Valid transitions from "+string(from)+": "+describeNext(from))
}

func describeNext(status models.OrderStatus) string {
	nexts := NextOrderStates(status)
	if len(nexts) == 0 {
		return "none (terminal state)"
	}
	result := ""
	for i, s := range nexts {
		if i > 0 {
			result += ", "
		}
		result += string(s)
	}
	return result
}
