package synth

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"horizon-scanner/models"
)

//go:embed pool.json
var builtinPool []byte

// DefaultPool returns the built-in illustrative signals.
func DefaultPool() []models.Signal {
	pool, err := parsePool(builtinPool)
	if err != nil {
		panic(fmt.Sprintf("synth: built-in pool is invalid: %v", err))
	}
	return pool
}

// LoadPool reads an alternate pool from a JSON array file. An empty path
// yields the built-in pool.
func LoadPool(path string) ([]models.Signal, error) {
	if path == "" {
		return DefaultPool(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read simulation pool: %w", err)
	}
	return parsePool(data)
}

func parsePool(data []byte) ([]models.Signal, error) {
	var pool []models.Signal
	if err := json.Unmarshal(data, &pool); err != nil {
		return nil, fmt.Errorf("failed to parse simulation pool: %w", err)
	}
	if len(pool) == 0 {
		return nil, ErrEmptyPool
	}
	for i, s := range pool {
		if issues := models.ValidateSignal(s); len(issues) > 0 {
			return nil, fmt.Errorf("simulation pool entry %d is invalid: %v", i, issues)
		}
	}
	return pool, nil
}
