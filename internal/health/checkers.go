package health

import "context"

// Pinger is satisfied by dependencies that expose a Ping method, such as the
// PostgreSQL store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Database returns a checker that pings the session store.
func Database(p Pinger) Checker {
	return Checker{
		Name:  "database",
		Check: p.Ping,
	}
}

// Always returns a checker with a fixed outcome. Useful for marking optional
// dependencies as permanently ok, and in tests.
func Always(name string, err error) Checker {
	return Checker{
		Name:  name,
		Check: func(context.Context) error { return err },
	}
}
