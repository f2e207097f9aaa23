package enum

// ── State machines (CHECK constrained in DB) ──

const (
	OrderStatusPending   = "pending"
	OrderStatusPreparing = "preparing"
	OrderStatusPaid      = "paid"
)

const (
	TableStatusAvailable = "available"
	TableStatusOccupied  = "occupied"
	TableStatusBilling   = "billing"
	TableStatusClosed    = "closed"
)

const (
	UserRoleAdmin   = "admin"
	UserRoleWaiter  = "waiter"
	UserRoleCashier = "cashier"
)

const (
	OrderTypeDineIn = "dine_in"
	OrderTypeParcel = "parcel"
)

// ── Configurable labels (no DB constraint) ──

const (
	PaymentTypeCash = "cash"
	PaymentTypeUPI  = "upi"
	PaymentTypeCard = "card"
)

const (
	CategoryCoffee     = "Coffee"
	CategoryFood       = "Food"
	CategoryDessert    = "Dessert"
	CategoryColdDrinks = "Cold Drinks"
)

// IsOpenOrderStatus reports whether an order in this status can still be
// amended by waiters. Paid is terminal.
func IsOpenOrderStatus(s string) bool {
	return s == OrderStatusPending || s == OrderStatusPreparing
}

// IsValidRole reports whether s is one of the three staff roles.
func IsValidRole(s string) bool {
	switch s {
	case UserRoleAdmin, UserRoleWaiter, UserRoleCashier:
		return true
	}
	return false
}

// IsValidCategory reports whether s is a known menu category.
func IsValidCategory(s string) bool {
	switch s {
	case CategoryCoffee, CategoryFood, CategoryDessert, CategoryColdDrinks:
		return true
	}
	return false
}

// IsValidPaymentType reports whether s is an accepted settlement method.
func IsValidPaymentType(s string) bool {
	switch s {
	case PaymentTypeCash, PaymentTypeUPI, PaymentTypeCard:
		return true
	}
	return false
}
