package repokit

// Binder builds a domain repo bound to a specific Queryer. Services hold a
// Binder instead of a repo so the same storage code runs against the pool
// or an open transaction
type Binder[T any] interface {
	Bind(Queryer) T
}

// BindFunc adapts a plain function to a Binder
type BindFunc[T any] func(Queryer) T

// Bind calls the underlying function
func (f BindFunc[T]) Bind(q Queryer) T { return f(q) }

// RequireQueryer panics early on programmer error (nil q)
func RequireQueryer(q Queryer) Queryer {
	if q == nil {
		panic("repokit: nil Queryer")
	}
	return q
}

// MustBind validates q then binds
func MustBind[T any](b Binder[T], q Queryer) T {
	return b.Bind(RequireQueryer(q))
}
