//go:build ignore

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/specvital/scopekit/pkg/domain"
	"github.com/specvital/scopekit/pkg/outline"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: go run scripts/scan.go <path>\n")
		os.Exit(1)
	}

	path := os.Args[1]

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	result, err := outline.Scan(ctx, path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "scan error: %v\n", err)
		os.Exit(1)
	}

	output := map[string]interface{}{
		"filesScanned": result.Stats.FilesScanned,
		"filesMatched": result.Stats.FilesMatched,
		"filesFailed":  result.Stats.FilesFailed,
		"testCount":    result.Inventory.CountTests(),
		"duration":     result.Stats.Duration.String(),
		"statuses":     countStatuses(result.Inventory),
	}
	json.NewEncoder(os.Stdout).Encode(output)
}

func countStatuses(inv *domain.Inventory) map[domain.TestStatus]int {
	counts := make(map[domain.TestStatus]int)
	var visit func(suites []domain.TestSuite, tests []domain.Test)
	visit = func(suites []domain.TestSuite, tests []domain.Test) {
		for _, t := range tests {
			counts[t.Status]++
		}
		for _, s := range suites {
			visit(s.Suites, s.Tests)
		}
	}
	for _, f := range inv.Files {
		visit(f.Suites, f.Tests)
	}
	return counts
}
