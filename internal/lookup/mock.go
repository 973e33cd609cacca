package lookup

import "context"

type MockSource struct {
	Responder func(hostname string) ([]string, error)
}

func (m *MockSource) Lookup(ctx context.Context, hostname string) ([]string, error) {
	if m.Responder == nil {
		return nil, nil
	}
	return m.Responder(hostname)
}
