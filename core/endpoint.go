package core

// Access describes what the identity pipeline must establish before an
// endpoint's handler runs.
type Access int

const (
	// AccessPublic runs with whatever identity the optional resolver attached.
	AccessPublic Access = iota
	// AccessAuthenticated requires a valid, unexpired credential.
	AccessAuthenticated
	// AccessAdmin requires a valid credential with the admin role.
	AccessAdmin
)

func (a Access) String() string {
	switch a {
	case AccessPublic:
		return "public"
	case AccessAuthenticated:
		return "authenticated"
	case AccessAdmin:
		return "admin"
	default:
		return "unknown"
	}
}

type Endpoint struct {
	Path     string
	Method   string
	Access   Access
	Metadata EndpointMetadata
}

type EndpointMetadata struct {
	OperationID string
	Description string
}

// Key identifies an endpoint by METHOD:PATH.
func (e Endpoint) Key() string {
	return e.Method + ":" + e.Path
}
