package module

import "context"

// Module is implemented by every subsystem instance.
type Module interface {
	Name() Name
}

// Constructor builds one module instance.
type Constructor func() (Module, error)

// Wirer receives the read-only view of the other modules once, after every
// module has been constructed.
type Wirer interface {
	Wire(s Siblings)
}

// Preparer is implemented by modules that take part in staged startup.
type Preparer interface {
	Prepare(ctx context.Context) Result
}

// Destroyer is implemented by modules that hold resources to release on
// editor teardown.
type Destroyer interface {
	Destroy()
}
