package access

type Capability string

const (
	OrdersCreate       Capability = "orders:create"
	OrdersReadOwn      Capability = "orders:read:own"
	OrdersReadAll      Capability = "orders:read:all"
	OrdersUpdateStatus Capability = "orders:update-status"
	PaymentsCreate     Capability = "payments:create"
	PaymentsVerify     Capability = "payments:verify"
	ProductsWrite      Capability = "products:write"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

var userCaps = []Capability{OrdersCreate, OrdersReadOwn, PaymentsCreate, PaymentsVerify}

var roleCaps = map[string][]Capability{
	RoleUser:  userCaps,
	RoleAdmin: append(append([]Capability{}, userCaps...), OrdersReadAll, OrdersUpdateStatus, ProductsWrite),
}

// CapabilitiesOf returns the capability set of role. Unknown roles have none.
func CapabilitiesOf(role string) []Capability {
	caps := roleCaps[role]
	out := make([]Capability, len(caps))
	copy(out, caps)
	return out
}

func Has(role string, c Capability) bool {
	for _, rc := range roleCaps[role] {
		if rc == c {
			return true
		}
	}
	return false
}

// Principal is the authenticated caller as seen by the services.
type Principal struct {
	UserID string
	Role   string
}

func (p Principal) Can(c Capability) bool {
	return p.UserID != "" && Has(p.Role, c)
}

// CanRead reports whether p may see a resource owned by ownerID.
func (p Principal) CanRead(ownerID string) bool {
	if p.Can(OrdersReadAll) {
		return true
	}
	return p.Can(OrdersReadOwn) && p.UserID == ownerID
}

// Policy adapts the role table to the auth middleware.
type Policy struct{}

func (Policy) Allows(role, capability string) bool {
	return Has(role, Capability(capability))
}
