package domain

// PortalUser links a commuter portal account to its fare card. The core
// never sees credentials beyond the login endpoint; its own decisions are
// keyed on card numbers only.
type PortalUser struct {
	ID           string
	FullName     string
	Email        string
	PasswordHash string
	LinkedCard   string
}
