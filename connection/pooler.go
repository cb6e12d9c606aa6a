package connection

// Pooler is the capability a Connection needs from a pool: checkout a live
// handle for a key, return a handle, or discard one that's no longer fit to
// park. Defined here (not in package pool) so connection never imports
// pool — breaking the Connection<->Pool cyclic reference the Design Notes
// flag, since pool.Pool depends on connection.Session, not the other way
// around.
type Pooler interface {
	// Checkout pops the most-recently-returned handle for key, if any.
	Checkout(key string) (Session, bool)
	// Return pushes s back onto key's stack; reports false if the stack
	// was already at capacity, in which case the caller must log s out.
	Return(key string, s Session) bool
	// Discard logs s out and drops it without placing it back.
	Discard(key string, s Session)
}
