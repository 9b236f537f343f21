package client

// Status is the connection state of a client
type Status int

const (
	// Connected indicates the client has a live connection to the beacon host
	Connected Status = iota
	// Disconnected indicates the connection was closed, by either side
	Disconnected
)

func (s Status) String() string {
	return []string{"Connected", "Disconnected"}[s]
}
