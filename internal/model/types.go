package model

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// GenerationRecord is one row of simulation output. The field order is the
// column order of every persisted tabular form.
type GenerationRecord struct {
	Seed               int64   `json:"seed"`
	Generation         int     `json:"generation"`
	TechLength         int     `json:"tech_length"`
	SpaceLength        int     `json:"space_length"`
	Effectiveness      float64 `json:"effectiveness"`
	InitialTechLength  int     `json:"initial_tech_length"`
	InitialSpaceLength int     `json:"initial_space_length"`
	Eta                float64 `json:"eta"`
	Lambda             float64 `json:"lambda"`
	InitialEndowment   float64 `json:"initial_endowment"`
	PTradeoff          float64 `json:"p_tradeoff"`
	AvailableResources float64 `json:"available_resources"`
	ResourceStore      float64 `json:"resource_store"`
}

type RunSummary struct {
	VersionedRecord
	RunID              string  `json:"run_id"`
	Seed               int64   `json:"seed"`
	Eta                float64 `json:"eta"`
	Lambda             float64 `json:"lambda"`
	InitialTechLength  int     `json:"initial_tech_length"`
	InitialSpaceLength int     `json:"initial_space_length"`
	InitialEndowment   float64 `json:"initial_endowment"`
	PTradeoff          float64 `json:"p_tradeoff"`
	GenerationLimit    int     `json:"generation_limit"`
	ComplexityLimit    int     `json:"complexity_limit"`
	Generations        int     `json:"generations"`
	StopReason         string  `json:"stop_reason"`
	FinalTechLength    int     `json:"final_tech_length"`
	FinalSpaceLength   int     `json:"final_space_length"`
	FinalEffectiveness float64 `json:"final_effectiveness"`
	FinalStore         float64 `json:"final_store"`
	CreatedAtUTC       string  `json:"created_at_utc"`
}
