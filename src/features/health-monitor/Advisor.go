/**
 * Advisor - optional natural-language verdict from a local Ollama instance
 *
 * Any failure here is the expected degraded path: the caller falls back to
 * the rule-based diagnosis, never to an error.
 */

package healthmonitor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// AdvisorConfig configures the advisory client.
type AdvisorConfig struct {
	Enabled bool
	URL     string
	Model   string
	Timeout time.Duration
}

// Advisor calls the Ollama generate API for a short human verdict.
type Advisor struct {
	enabled    bool
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *zap.SugaredLogger
}

// NewAdvisor creates an advisory client. It does not verify connectivity;
// absence of the endpoint is discovered (and tolerated) per call.
func NewAdvisor(cfg AdvisorConfig, logger *zap.SugaredLogger) *Advisor {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Advisor{
		enabled:    cfg.Enabled,
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Analyze asks the advisory endpoint for a verdict on the snapshot. Returns
// Present=false on any failure or when the advisor is disabled.
func (a *Advisor) Analyze(ctx context.Context, snap *MetricsSnapshot) AdvisoryResult {
	if !a.enabled {
		return AdvisoryResult{}
	}

	reqBody, err := json.Marshal(generateRequest{
		Model:  a.model,
		Prompt: buildPrompt(snap),
		Stream: false,
	})
	if err != nil {
		a.logger.Debugf("advisor: marshal request: %v", err)
		return AdvisoryResult{}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/api/generate", bytes.NewReader(reqBody))
	if err != nil {
		a.logger.Debugf("advisor: build request: %v", err)
		return AdvisoryResult{}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		a.logger.Debugf("advisor: %v", err)
		return AdvisoryResult{}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		a.logger.Debugf("advisor: unexpected status %s", resp.Status)
		return AdvisoryResult{}
	}

	var gen generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&gen); err != nil {
		a.logger.Debugf("advisor: decode response: %v", err)
		return AdvisoryResult{}
	}

	text := strings.TrimSpace(gen.Response)
	if text == "" {
		return AdvisoryResult{}
	}
	return AdvisoryResult{Text: text, Present: true}
}

// buildPrompt turns the snapshot into a compact, instruction-oriented prompt.
func buildPrompt(snap *MetricsSnapshot) string {
	services, _ := json.Marshal(snap.ServiceStates)
	return fmt.Sprintf(`You are a concise host monitoring assistant.

Your job:
  - Look at CPU load, memory, and service status.
  - Respond with ONE or two short sentences.
  - If everything looks fine, say "All systems green."
  - If any problem is detected, mention it explicitly
    (e.g., "Issue detected in %s service").

Data:
CPU load (1/5/15m): %.2f %.2f %.2f
Memory: %d MiB used of %d MiB
Services: %s

Respond with a short human-friendly verdict only, no JSON, no extra explanation.`,
		firstServiceName(snap), snap.Load1, snap.Load5, snap.Load15,
		snap.MemUsedMiB, snap.MemTotalMiB, services)
}

func firstServiceName(snap *MetricsSnapshot) string {
	if len(snap.ServiceOrder) > 0 {
		return snap.ServiceOrder[0]
	}
	return "Plex"
}

// --- Ollama REST API types (internal) ---

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}
