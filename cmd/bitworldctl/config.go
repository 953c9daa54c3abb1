package main

import (
	"encoding/json"
	"fmt"
	"os"

	bitapi "bitworld/pkg/bitworld"
)

func loadRunRequestFromConfig(path string) (bitapi.RunRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return bitapi.RunRequest{}, err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return bitapi.RunRequest{}, err
	}

	var req bitapi.RunRequest
	if v, ok := asInt64(raw["seed"]); ok {
		req.Seed = v
	}
	if v, ok := asInt(raw["space_length"]); ok {
		req.SpaceLength = v
	}
	if v, ok := asFloat64(raw["space_prob"]); ok {
		req.SpaceProb = &v
	}
	if v, ok := asInt(raw["tech_length"]); ok {
		req.TechLength = v
	}
	if v, ok := asFloat64(raw["tech_prob"]); ok {
		req.TechProb = &v
	}
	if v, ok := asFloat64(raw["eta"]); ok {
		req.Eta = v
	}
	if v, ok := asFloat64(raw["lambda"]); ok {
		req.Lambda = v
	}
	if v, ok := asFloat64(raw["initial_endowment"]); ok {
		req.InitialEndowment = v
	}
	if v, ok := asFloat64(raw["p_tradeoff"]); ok {
		req.PTradeoff = v
	}
	if v, ok := asInt(raw["generations"]); ok {
		req.Generations = v
	}
	if v, ok := asInt(raw["complexity_limit"]); ok {
		req.ComplexityLimit = v
	}
	if v, ok := asBool(raw["write_csv"]); ok {
		req.WriteCSV = v
	}
	return req, nil
}

func loadOrDefaultRunRequest(configPath string) (bitapi.RunRequest, error) {
	if configPath == "" {
		return bitapi.RunRequest{}, nil
	}
	req, err := loadRunRequestFromConfig(configPath)
	if err != nil {
		return bitapi.RunRequest{}, fmt.Errorf("load config: %w", err)
	}
	return req, nil
}

func loadSweepRequestFromConfig(path string) (bitapi.SweepRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return bitapi.SweepRequest{}, err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return bitapi.SweepRequest{}, err
	}

	var req bitapi.SweepRequest
	if v, ok := asFloatSlice(raw["eta_grid"]); ok {
		req.EtaGrid = v
	}
	if v, ok := asFloatSlice(raw["lambda_grid"]); ok {
		req.LambdaGrid = v
	}
	if v, ok := asInt(raw["seed_count"]); ok {
		req.SeedCount = v
	}
	if v, ok := asInt64(raw["seed_max"]); ok {
		req.SeedMax = v
	}
	if v, ok := asInt64(raw["sweep_seed"]); ok {
		req.SweepSeed = v
	}
	if v, ok := asInt(raw["workers"]); ok {
		req.Workers = v
	}
	if v, ok := asInt(raw["space_length"]); ok {
		req.SpaceLength = v
	}
	if v, ok := asFloat64(raw["space_prob"]); ok {
		req.SpaceProb = &v
	}
	if v, ok := asInt(raw["tech_length"]); ok {
		req.TechLength = v
	}
	if v, ok := asFloat64(raw["tech_prob"]); ok {
		req.TechProb = &v
	}
	if v, ok := asFloat64(raw["initial_endowment"]); ok {
		req.InitialEndowment = v
	}
	if v, ok := asFloat64(raw["p_tradeoff"]); ok {
		req.PTradeoff = v
	}
	if v, ok := asInt(raw["generations"]); ok {
		req.Generations = v
	}
	if v, ok := asInt(raw["complexity_limit"]); ok {
		req.ComplexityLimit = v
	}
	if v, ok := asBool(raw["write_csv"]); ok {
		req.WriteCSV = v
	}
	if v, ok := asString(raw["experiment_id"]); ok {
		req.ExperimentID = v
	}
	if v, ok := asString(raw["notes"]); ok {
		req.Notes = v
	}
	return req, nil
}

func overrideRunFromFlags(req *bitapi.RunRequest, set map[string]bool, flagValue map[string]any) {
	for name := range set {
		v, ok := flagValue[name]
		if !ok {
			continue
		}
		switch name {
		case "seed":
			req.Seed = v.(int64)
		case "space-len":
			req.SpaceLength = v.(int)
		case "space-prob":
			req.SpaceProb = probFromFlag(v.(float64))
		case "tech-len":
			req.TechLength = v.(int)
		case "tech-prob":
			req.TechProb = probFromFlag(v.(float64))
		case "eta":
			req.Eta = v.(float64)
		case "lambda":
			req.Lambda = v.(float64)
		case "endowment":
			req.InitialEndowment = v.(float64)
		case "p-tradeoff":
			req.PTradeoff = v.(float64)
		case "gens":
			req.Generations = v.(int)
		case "complexity-limit":
			req.ComplexityLimit = v.(int)
		}
	}
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asBool(v any) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

func asInt(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case float64:
		return int(x), true
	default:
		return 0, false
	}
}

func asInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int:
		return int64(x), true
	case float64:
		return int64(x), true
	default:
		return 0, false
	}
}

func asFloat64(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	default:
		return 0, false
	}
}

func asFloatSlice(v any) ([]float64, bool) {
	xs, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]float64, 0, len(xs))
	for _, item := range xs {
		f, ok := asFloat64(item)
		if !ok {
			return nil, false
		}
		out = append(out, f)
	}
	if len(out) == 0 {
		return nil, false
	}
	return out, true
}
