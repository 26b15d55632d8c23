package engine

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/wesleyorama2/lockhammer/internal/hammer/config"
	"github.com/wesleyorama2/lockhammer/pkg/jsonpath"
)

// ThresholdResult contains the result of a threshold evaluation.
type ThresholdResult struct {
	Metric     string `json:"metric"`
	Expression string `json:"expression"`
	Passed     bool   `json:"passed"`
	Value      string `json:"value"`
	Message    string `json:"message,omitempty"`
}

// EvaluateResult checks exprs against a finished run.
func EvaluateResult(result *Result, exprs []string) ([]ThresholdResult, error) {
	doc, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("encoding result: %w", err)
	}
	return EvaluateDocument(string(doc), exprs), nil
}

// EvaluateDocument checks exprs against a JSON result document. Metric names
// are gjson paths ("nsPerAccess", "spread.p99") or JSONPath ("$.avgDepth").
//
// A threshold whose metric is missing or malformed fails with a message
// rather than aborting the remaining checks.
func EvaluateDocument(doc string, exprs []string) []ThresholdResult {
	results := make([]ThresholdResult, 0, len(exprs))
	for _, expr := range exprs {
		results = append(results, evaluate(doc, expr))
	}
	return results
}

func evaluate(doc, expr string) ThresholdResult {
	result := ThresholdResult{Expression: expr}

	th, err := config.ParseThreshold(expr)
	if err != nil {
		result.Message = fmt.Sprintf("failed to parse expression: %v", err)
		return result
	}
	result.Metric = th.Metric

	actual, err := jsonpath.ExtractFloat(doc, th.Metric)
	if err != nil {
		result.Message = fmt.Sprintf("unknown metric: %v", err)
		return result
	}

	result.Value = strconv.FormatFloat(actual, 'f', -1, 64)
	result.Passed = th.Compare(actual)
	if !result.Passed {
		result.Message = fmt.Sprintf("%s is %s, threshold: %s %g", th.Metric, result.Value, th.Op, th.Value)
	}
	return result
}

// AllPassed reports whether every threshold passed.
func AllPassed(results []ThresholdResult) bool {
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return true
}
