package describer

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/agent-api/core"
	"github.com/agent-api/core/agent"
	"github.com/agent-api/core/agent/bootstrap"
	"github.com/agent-api/ollama"
	"github.com/go-logr/logr"
)

// VisionModel produces a free-text description of a single image. The
// pipeline depends on this interface so tests can substitute a fake.
type VisionModel interface {
	Describe(ctx context.Context, imagePath string) (string, error)
}

// AgentModel is the production VisionModel, backed by an agent-api agent
// talking to a local Ollama vision model.
type AgentModel struct {
	agent  *agent.Agent
	prompt string
}

// NewAgentModel verifies the Ollama server is reachable and builds the
// vision agent.
func NewAgentModel(ctx context.Context, logger *slog.Logger, baseURL string, port int, model, prompt string) (*AgentModel, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s:%d/api/tags", baseURL, port), nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama is not reachable at %s:%d: %w", baseURL, port, err)
	}
	resp.Body.Close()

	lgr := logr.FromSlogHandler(logger.Handler())
	provider := ollama.NewProvider(&ollama.ProviderOpts{
		Logger:  &lgr,
		BaseURL: baseURL,
		Port:    port,
	})
	provider.UseModel(ctx, &core.Model{ID: model})

	a, err := agent.NewAgent(
		bootstrap.WithProvider(provider),
		bootstrap.WithLogger(&lgr),
		bootstrap.WithSystemPrompt("You are a visual analysis assistant specialized in concise, concrete image descriptions."),
	)
	if err != nil {
		return nil, err
	}
	return &AgentModel{agent: a, prompt: prompt}, nil
}

// Describe sends one frame image to the vision model and returns its text.
func (m *AgentModel) Describe(ctx context.Context, imagePath string) (string, error) {
	result, err := m.agent.Run(
		ctx,
		agent.WithInput(m.prompt),
		agent.WithImagePath(imagePath),
	)
	if err != nil {
		return "", err
	}
	if len(result.Messages) == 0 {
		return "", fmt.Errorf("no response messages received from model")
	}
	return result.Messages[len(result.Messages)-1].Content, nil
}
