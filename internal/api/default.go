package api

import "sync"

var (
	defaultMu      sync.Mutex
	defaultClient  *Client
	defaultFactory func() (*Client, error)
)

// RegisterDefault sets the factory Default uses to build the process-wide
// client. Any client already built is dropped.
func RegisterDefault(factory func() (*Client, error)) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultFactory = factory
	defaultClient = nil
}

// Default returns the process-wide client, building it on first use.
// A failed build is not cached.
func Default() (*Client, error) {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultClient != nil {
		return defaultClient, nil
	}
	if defaultFactory == nil {
		return nil, ErrNoDefault
	}
	c, err := defaultFactory()
	if err != nil {
		return nil, err
	}
	defaultClient = c
	return c, nil
}

// SetDefault injects the process-wide client.
func SetDefault(c *Client) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultClient = c
}

// ResetDefault drops the process-wide client so the next Default call
// rebuilds it from the registered factory.
func ResetDefault() {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultClient = nil
}
