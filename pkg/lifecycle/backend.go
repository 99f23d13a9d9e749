package lifecycle

// Backend accepts flat registrations.
// Implementations must not call Registration.Fn before the session is sealed.
type Backend interface {
	Register(r Registration)
}

// BackendFunc adapts a function to a Backend.
type BackendFunc func(r Registration)

// Register implements Backend.
func (f BackendFunc) Register(r Registration) {
	f(r)
}
