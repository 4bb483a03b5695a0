// Command evaluate runs a single candidate signal through the validation
// pipeline and prints the result as JSON. Reads the signal from a file or
// stdin:
//
//	evaluate -f signal.json
//	cat signal.json | evaluate
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"smc-signal-engine/internal/quality"
	"smc-signal-engine/internal/risk"
	"smc-signal-engine/internal/signal"
	"smc-signal-engine/internal/validator"
)

func main() {
	var (
		file    = flag.String("f", "", "path to signal JSON file (default stdin)")
		balance = flag.Float64("balance", 0, "account balance for position sizing")
		riskPct = flag.Float64("risk", 1.0, "risk percentage per trade")
	)
	flag.Parse()

	data, err := readInput(*file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read input: %v\n", err)
		os.Exit(1)
	}

	var sig signal.CandidateSignal
	if err := json.Unmarshal(data, &sig); err != nil {
		fmt.Fprintf(os.Stderr, "parse signal: %v\n", err)
		os.Exit(1)
	}

	cfg := signal.DefaultStrategyConfig()
	v := validator.New()
	classifier := quality.NewWithValidator(v, quality.DefaultThresholds())

	result := v.Validate(&sig, cfg)
	assessment := classifier.Classify(&sig, cfg)

	out := map[string]interface{}{
		"signal":        sig,
		"result":        result,
		"assessment":    assessment,
		"adjusted_stop": risk.AdjustStopLoss(&sig),
	}
	if *balance > 0 {
		out["position_size"] = risk.PositionSize(&sig, *balance, *riskPct)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fmt.Fprintf(os.Stderr, "encode result: %v\n", err)
		os.Exit(1)
	}

	if !result.IsValid {
		os.Exit(2)
	}
}

func readInput(file string) ([]byte, error) {
	if file == "" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(file)
}
