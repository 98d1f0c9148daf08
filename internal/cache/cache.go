package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"milp-runner/internal/solver"
	"milp-runner/internal/textutil"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// SolutionCache provides in-memory + PostgreSQL-backed caching of solver
// results, keyed by a SHA-256 fingerprint of the canonical model text.
// With a nil pool it degrades to a process-local memory cache.
type SolutionCache struct {
	pool   *pgxpool.Pool
	mu     sync.RWMutex
	memory map[string]*solver.Solution // fingerprint → solution
}

// New creates a cache backed by PostgreSQL. pool may be nil.
func New(pool *pgxpool.Pool) *SolutionCache {
	return &SolutionCache{
		pool:   pool,
		memory: make(map[string]*solver.Solution),
	}
}

// EnsureSchema creates the cache table if it does not exist.
func (c *SolutionCache) EnsureSchema(ctx context.Context) error {
	if c.pool == nil {
		return nil
	}
	_, err := c.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS lp_solution_cache (
			fingerprint TEXT PRIMARY KEY,
			model_text  TEXT NOT NULL,
			solution    JSONB NOT NULL,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("ensure cache schema: %w", err)
	}
	return nil
}

// Get retrieves a cached solution for the canonical model text. Returns
// nil and false if not found.
func (c *SolutionCache) Get(ctx context.Context, modelText string) (*solver.Solution, bool) {
	fingerprint := textutil.Hash(modelText)

	// Check in-memory cache first.
	c.mu.RLock()
	if sol, ok := c.memory[fingerprint]; ok {
		c.mu.RUnlock()
		return sol, true
	}
	c.mu.RUnlock()

	if c.pool == nil {
		return nil, false
	}

	var raw []byte
	err := c.pool.QueryRow(ctx,
		`SELECT solution FROM lp_solution_cache WHERE fingerprint = $1`,
		fingerprint,
	).Scan(&raw)
	if err != nil {
		return nil, false
	}

	var sol solver.Solution
	if err := json.Unmarshal(raw, &sol); err != nil {
		log.Warn().Err(err).Str("fingerprint", textutil.Truncate(fingerprint, 12)).Msg("Corrupt cached solution")
		return nil, false
	}

	// Populate in-memory cache.
	c.mu.Lock()
	c.memory[fingerprint] = &sol
	c.mu.Unlock()

	return &sol, true
}

// Set stores a solution in both the in-memory and PostgreSQL cache.
func (c *SolutionCache) Set(ctx context.Context, modelText string, sol *solver.Solution) error {
	fingerprint := textutil.Hash(modelText)

	// Update in-memory.
	c.mu.Lock()
	c.memory[fingerprint] = sol
	c.mu.Unlock()

	if c.pool == nil {
		return nil
	}

	raw, err := json.Marshal(sol)
	if err != nil {
		return fmt.Errorf("marshal solution: %w", err)
	}

	_, err = c.pool.Exec(ctx, `
		INSERT INTO lp_solution_cache (fingerprint, model_text, solution)
		VALUES ($1, $2, $3)
		ON CONFLICT (fingerprint) DO UPDATE SET solution = EXCLUDED.solution`,
		fingerprint, modelText, raw)
	if err != nil {
		return fmt.Errorf("cache set: %w", err)
	}

	return nil
}

// Preload loads all cached solutions into memory.
func (c *SolutionCache) Preload(ctx context.Context) error {
	if c.pool == nil {
		return nil
	}

	rows, err := c.pool.Query(ctx, `SELECT fingerprint, solution FROM lp_solution_cache`)
	if err != nil {
		return fmt.Errorf("preload cache: %w", err)
	}
	defer rows.Close()

	c.mu.Lock()
	defer c.mu.Unlock()

	count := 0
	for rows.Next() {
		var fingerprint string
		var raw []byte
		if err := rows.Scan(&fingerprint, &raw); err != nil {
			return fmt.Errorf("scan cache row: %w", err)
		}
		var sol solver.Solution
		if err := json.Unmarshal(raw, &sol); err != nil {
			continue
		}
		c.memory[fingerprint] = &sol
		count++
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("preload cache: %w", err)
	}

	log.Info().Int("count", count).Msg("Preloaded solution cache")
	return nil
}
