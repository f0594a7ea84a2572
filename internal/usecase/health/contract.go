package health

import "context"

// DBPinger checks substrate availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}
