package auth

// TokenProvider supplies the bearer credential for outgoing backend calls.
// This abstraction keeps the HTTP client agnostic to where credentials
// come from: a fixed string, an environment variable, or the config file.
type TokenProvider interface {
	// Token returns the current bearer token. ok is false when no usable
	// credential is available; callers then send the request anonymously
	// or fail fast, depending on the operation.
	Token() (token string, ok bool)
}

// StaticProvider is a TokenProvider backed by a fixed token string.
// The empty string means no credential.
type StaticProvider string

// Token implements TokenProvider
func (p StaticProvider) Token() (string, bool) {
	return string(p), p != ""
}
