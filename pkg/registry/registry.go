package registry

import (
	"colstore.io/server/pkg/meta"
)

// Registry serving-node announce and discovery. Serving nodes register
// themselves with a keepalive, the coordinator reads the current fleet and
// watches membership changes.
type Registry interface {
	// Register announce the server and keep it alive until Close
	Register(srv meta.ServerMeta) error
	// CurrentServers returns the currently announced servers
	CurrentServers() ([]meta.ServerMeta, error)
	// Watch returns a channel of membership events. Events are delivered
	// one at a time, a slow consumer delays delivery but never loses the
	// final state because CurrentServers is always authoritative.
	Watch() (<-chan meta.ServerEvent, error)
	// Close stop the keepalive and the watch
	Close() error
}
