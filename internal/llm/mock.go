package llm

import (
	"context"
	"sync"

	"mindful-chat/internal/domain"
)

// MockClient permite tests sin llamar a un LLM real.
type MockClient struct {
	Response string
	Err      error

	mu    sync.Mutex
	Calls [][]domain.Turn
}

func (m *MockClient) Complete(ctx context.Context, turns []domain.Turn) (string, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, append([]domain.Turn(nil), turns...))
	m.mu.Unlock()
	return m.Response, m.Err
}

// LastCall devuelve los turnos enviados en la última llamada.
func (m *MockClient) LastCall() []domain.Turn {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Calls) == 0 {
		return nil
	}
	return m.Calls[len(m.Calls)-1]
}
