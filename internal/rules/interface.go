package rules

import (
	"context"

	"chi311/internal/dataset"
	"chi311/internal/quality"
)

// Input is what a rule evaluates: the loaded dataset and the quality report
// computed from it once per run.
type Input struct {
	Dataset *dataset.Dataset
	Report  quality.Report
}

type Rule interface {
	ID() string
	Title() string
	Description() string

	// Evaluate runs rule logic using only Input.
	// Rules MUST NOT perform I/O.
	Evaluate(ctx context.Context, in Input) (Result, error)
}

type Option struct {
	Name        string
	Description string
	Default     string
}

type ConfigurableRule interface {
	Rule
	Options() []Option
	Configure(opts map[string]string) error
}

// PositionedRule fixes where a rule appears in listings and reports. Rules
// without a position sort after positioned ones, by ID.
type PositionedRule interface {
	Rule
	Position() int
}
