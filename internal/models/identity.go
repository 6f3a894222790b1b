package models

// Role values issued by the identity provider.
const (
	RoleLandlord  = "landlord"
	RoleCaretaker = "caretaker"
	RoleTenant    = "tenant"
)

// Identity is the resolved caller of a request. It is owned and mutated
// entirely by the external identity provider; this system only reads it.
type Identity struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// CanManageListings reports whether the identity's role allows creating
// listings.
func (i *Identity) CanManageListings() bool {
	return i != nil && (i.Role == RoleLandlord || i.Role == RoleCaretaker)
}

// Owns reports whether the identity owns the given listing.
func (i *Identity) Owns(l *Listing) bool {
	return i != nil && l != nil && i.ID == l.LandlordID
}
