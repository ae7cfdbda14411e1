package reqctx

// AnonymousActor is recorded when a request carries no principal and no override.
const AnonymousActor = "anonymousUser"

// Principal is the authenticated caller, taken from a verified session token.
type Principal struct {
	UserID   string
	Username string
	Role     string
}

// RequestContext is passed explicitly into every service call that needs to
// know who is calling and from where.
type RequestContext struct {
	Principal     *Principal
	SourceAddress string
	UserAgent     string
	Method        string
	Path          string
}

func (rc RequestContext) Authenticated() bool { return rc.Principal != nil }

// Actor returns the override when set, else the principal's username, else AnonymousActor.
func (rc RequestContext) Actor(override string) string {
	if override != "" {
		return override
	}
	if rc.Principal != nil && rc.Principal.Username != "" {
		return rc.Principal.Username
	}
	return AnonymousActor
}
