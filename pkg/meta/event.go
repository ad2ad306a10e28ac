package meta

// server membership event types
const (
	// ServerAdded a serving node joined
	ServerAdded = iota
	// ServerRemoved a serving node left or its lease expired
	ServerRemoved
)

// ServerEvent a membership change of the serving fleet
type ServerEvent struct {
	Type   int
	Server ServerMeta
}
