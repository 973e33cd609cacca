package platform

import (
	"context"
	"sync"
)

type MockRunner struct {
	Responder func(command string, opts RunOptions) error

	mu       sync.Mutex
	commands []string
}

func (m *MockRunner) Run(ctx context.Context, command string, opts RunOptions) error {
	m.mu.Lock()
	m.commands = append(m.commands, command)
	m.mu.Unlock()
	if m.Responder == nil {
		return nil
	}
	return m.Responder(command, opts)
}

func (m *MockRunner) Commands() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.commands...)
}
