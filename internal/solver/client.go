package solver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"milp-runner/internal/lp"

	"github.com/rs/zerolog/log"
)

// Client dispatches models to a remote solver service over HTTP.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a solver client for the service at baseURL.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// --- solver service request/response types ---

type solveRequest struct {
	Direction   string           `json:"direction"`
	Objective   []wireTerm       `json:"objective"`
	Constraints []wireConstraint `json:"constraints"`
	Columns     []wireColumn     `json:"columns"`
	Options     wireOptions      `json:"options"`
}

type wireTerm struct {
	Coeff float64 `json:"coeff"`
	Var   string  `json:"var"`
}

type wireConstraint struct {
	Terms []wireTerm `json:"terms"`
	Op    string     `json:"op"`
	RHS   float64    `json:"rhs"`
}

// wireColumn carries one variable's bound record. Infinite bounds are
// encoded as absent fields because JSON has no infinity.
type wireColumn struct {
	Name  string   `json:"name"`
	Lower *float64 `json:"lower,omitempty"`
	Upper *float64 `json:"upper,omitempty"`
	Free  bool     `json:"free,omitempty"`
	Kind  string   `json:"kind"`
}

type wireOptions struct {
	Method           string  `json:"method"`
	MIP              bool    `json:"mip"`
	TimeLimitSeconds float64 `json:"time_limit_seconds,omitempty"`
}

type solveResponse struct {
	Status     string             `json:"status"`
	Objective  float64            `json:"objective"`
	Values     map[string]float64 `json:"values"`
	Iterations int64              `json:"iterations"`
	Nodes      int64              `json:"nodes"`
	SolveTime  float64            `json:"solve_time_seconds"`
	Error      *wireError         `json:"error,omitempty"`
}

type wireError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// retryableError marks failures worth retrying: transport errors and
// 429/5xx responses. Everything else aborts immediately.
type retryableError struct{ err error }

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

func wireTerms(terms []lp.Term) []wireTerm {
	out := make([]wireTerm, len(terms))
	for i, t := range terms {
		out[i] = wireTerm{Coeff: t.Coeff, Var: t.Var}
	}
	return out
}

// buildRequest maps a model to the wire format. Columns are emitted in
// first-reference order so requests for the same model are byte-identical.
func buildRequest(model *lp.Model, opts Options) solveRequest {
	req := solveRequest{
		Direction: model.Direction.String(),
		Objective: wireTerms(model.Objective.Terms),
		Options: wireOptions{
			Method: "primal",
			MIP:    opts.MIP,
		},
	}
	if opts.UseDual {
		req.Options.Method = "dual"
	}
	if opts.TimeLimit > 0 {
		req.Options.TimeLimitSeconds = opts.TimeLimit.Seconds()
	}

	for _, c := range model.Constraints {
		req.Constraints = append(req.Constraints, wireConstraint{
			Terms: wireTerms(c.Terms),
			Op:    string(c.Op),
			RHS:   c.RHS,
		})
	}

	for _, name := range model.VarOrder {
		b := model.Bounds[name]
		col := wireColumn{
			Name: name,
			Free: b.Free,
			Kind: b.Kind.String(),
		}
		if !b.Free {
			if !math.IsInf(b.Lower, -1) {
				lo := b.Lower
				col.Lower = &lo
			}
			if !math.IsInf(b.Upper, 1) {
				hi := b.Upper
				col.Upper = &hi
			}
		}
		req.Columns = append(req.Columns, col)
	}

	return req
}

// Solve sends the model to the solver service and returns its solution.
// Retryable failures (429, 5xx) are retried with linear backoff.
func (c *Client) Solve(ctx context.Context, model *lp.Model, opts Options) (*Solution, error) {
	bodyBytes, err := json.Marshal(buildRequest(model, opts))
	if err != nil {
		return nil, fmt.Errorf("marshal solve request: %w", err)
	}

	var lastErr error
	maxRetries := 3

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt*2) * time.Second
			log.Warn().Int("attempt", attempt+1).Dur("backoff", backoff).Msg("Retrying solve")
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		sol, err := c.doRequest(ctx, bodyBytes)
		if err == nil {
			return sol, nil
		}
		lastErr = err

		// Don't retry on context cancellation.
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		var re *retryableError
		if !errors.As(err, &re) {
			return nil, err
		}
	}

	return nil, fmt.Errorf("solve failed after %d retries: %w", maxRetries, lastErr)
}

func (c *Client) doRequest(ctx context.Context, bodyBytes []byte) (*Solution, error) {
	url := c.baseURL + "/v1/solve"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &retryableError{fmt.Errorf("solver call: %w", err)}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &retryableError{fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, &retryableError{fmt.Errorf("retryable error (status %d): %s", resp.StatusCode, string(respBody))}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("solver error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var apiResp solveResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	if apiResp.Error != nil {
		return nil, fmt.Errorf("solver error [%d]: %s", apiResp.Error.Code, apiResp.Error.Message)
	}

	status, err := parseStatus(apiResp.Status)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("status", apiResp.Status).
		Int64("iterations", apiResp.Iterations).
		Int64("nodes", apiResp.Nodes).
		Float64("seconds", apiResp.SolveTime).
		Msg("Solve complete")

	return &Solution{
		Status:     status,
		Objective:  apiResp.Objective,
		Values:     apiResp.Values,
		Iterations: apiResp.Iterations,
		Nodes:      apiResp.Nodes,
		SolveTime:  apiResp.SolveTime,
	}, nil
}

func parseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusOptimal, StatusInfeasible, StatusUnbounded, StatusTimeLimit, StatusError:
		return Status(s), nil
	default:
		return "", fmt.Errorf("unknown solver status %q", s)
	}
}
