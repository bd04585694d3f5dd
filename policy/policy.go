package policy

import "github.com/kofnet002/LittleLemonAPI/models"

// Roles is the set of role flags held by a caller. Manager and delivery crew
// are independent group memberships; a user may hold both. Customer is not a
// stored group: an authenticated user outside the staff groups is a customer.
type Roles struct {
	Authenticated bool
	Manager       bool
	DeliveryCrew  bool
}

func RolesOf(user *models.User) Roles {
	if user == nil {
		return Roles{}
	}
	return Roles{
		Authenticated: true,
		Manager:       user.InGroup(models.GroupManager),
		DeliveryCrew:  user.InGroup(models.GroupDeliveryCrew),
	}
}

func (r Roles) Customer() bool {
	return r.Authenticated && !r.Manager && !r.DeliveryCrew
}

const CapViewMenuItem = "view_menuitem"

// HasCapability replaces the framework-wide permission registry the original
// design leaned on with an explicit check per capability name.
func HasCapability(r Roles, name string) bool {
	switch name {
	case CapViewMenuItem:
		return r.Authenticated
	default:
		return false
	}
}

type Operation int

const (
	OpViewMenu Operation = iota
	OpEditMenu
	OpManageGroups
	OpViewCart
	OpEditCart
	OpCheckout
	OpListOrders
	OpDeleteOrder
)

// Allows is the role table for whole-operation grants. Per-row ownership and
// the role-scoped shape of order listings are enforced at the query itself;
// this function only answers whether the caller may attempt the operation.
func Allows(r Roles, op Operation) bool {
	switch op {
	case OpViewMenu:
		return HasCapability(r, CapViewMenuItem)
	case OpEditMenu, OpManageGroups, OpDeleteOrder:
		return r.Manager
	case OpViewCart, OpEditCart, OpCheckout:
		return r.Customer()
	case OpListOrders:
		return r.Authenticated
	}
	return false
}
