// Package optimization provides shared data structures for optimization results.
package optimization

// Summary captures the result of a single optimization directive. Target is
// the goal the search had to meet and Achieved is what the chosen value
// produced; Headroom is how far inside the goal the result landed.
type Summary struct {
	Scope           string   `json:"scope"`
	TargetName      string   `json:"target_name"`
	Field           string   `json:"field"`
	Original        float64  `json:"original"`
	Value           float64  `json:"value"`
	Target          float64  `json:"target"`
	Achieved        float64  `json:"achieved"`
	Headroom        float64  `json:"headroom"`
	Iterations      int      `json:"iterations"`
	Converged       bool     `json:"converged"`
	Notes           []string `json:"notes,omitempty"`
	OriginalDisplay string   `json:"original_display,omitempty"`
	ValueDisplay    string   `json:"value_display,omitempty"`
}
