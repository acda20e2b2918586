package server

// Client is one control panel connection.
type Client interface {
	// ReadLine blocks until a non-empty line is received.
	ReadLine() (string, error)

	// WriteLine sends one reply to the client.
	WriteLine(message string) error

	Close() error

	// RemoteAddr returns the client's address for logging.
	RemoteAddr() string
}
