package probe

import (
	"context"
	"net"
)

type MockDialer struct {
	Dial func(ctx context.Context, network, address string) (net.Conn, error)
}

func (m *MockDialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	if m.Dial == nil {
		client, server := net.Pipe()
		_ = server.Close()
		return client, nil
	}
	return m.Dial(ctx, network, address)
}
