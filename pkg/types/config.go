package types

// Config is the single per-node configuration object read and written by the UI.
// Each subtype uses a subset of the fields.
type Config struct {
	Columns   []string `yaml:"columns,omitempty" json:"columns,omitempty"`       // Selected columns for transforms
	Features  []string `yaml:"features,omitempty" json:"features,omitempty"`     // Feature columns (x column for regression)
	Label     string   `yaml:"label,omitempty" json:"label,omitempty"`           // Label column (y column for regression)
	Strategy  string   `yaml:"strategy,omitempty" json:"strategy,omitempty"`     // Imputation or normalization strategy
	K         int      `yaml:"k,omitempty" json:"k,omitempty"`                   // Clusters or neighbours
	Weighting string   `yaml:"weighting,omitempty" json:"weighting,omitempty"`   // KNN vote weighting
	Threshold *float64 `yaml:"threshold,omitempty" json:"threshold,omitempty"`   // Manual decision threshold
	Trees     int      `yaml:"trees,omitempty" json:"trees,omitempty"`           // Ensemble size
	MaxDepth  int      `yaml:"max_depth,omitempty" json:"max_depth,omitempty"`   // Decision tree depth limit
	Init      string   `yaml:"init,omitempty" json:"init,omitempty"`             // K-means centroid initialization
	Seed      uint64   `yaml:"seed,omitempty" json:"seed,omitempty"`             // Seed for random initialization
	Input     string   `yaml:"input,omitempty" json:"input,omitempty"`           // Last query value entered for prediction
}

// Feature returns the first feature column or ""
func (c *Config) Feature() string {
	if len(c.Features) == 0 {
		return ""
	}
	return c.Features[0]
}

func (c *Config) Clone() Config {
	out := *c
	if c.Columns != nil {
		out.Columns = append([]string(nil), c.Columns...)
	}
	if c.Features != nil {
		out.Features = append([]string(nil), c.Features...)
	}
	if c.Threshold != nil {
		th := *c.Threshold
		out.Threshold = &th
	}
	return out
}
