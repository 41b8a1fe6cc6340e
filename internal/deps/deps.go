package deps

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Requirement defines an external binary captionburn relies on. Probe, when
// set, runs against the resolved path after the binary is found and reports
// why the binary is unusable.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Probe       func(ctx context.Context, resolved string) error
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Description string `json:"description,omitempty"`
	Optional    bool   `json:"optional"`
	Available   bool   `json:"available"`
	Detail      string `json:"detail,omitempty"`
}

// Check resolves every requirement on PATH and runs its probe.
func Check(ctx context.Context, requirements ...Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		results = append(results, check(ctx, req))
	}
	return results
}

func check(ctx context.Context, req Requirement) Status {
	cmd := strings.TrimSpace(req.Command)
	status := Status{
		Name:        req.Name,
		Command:     cmd,
		Description: strings.TrimSpace(req.Description),
		Optional:    req.Optional,
	}
	if cmd == "" {
		status.Detail = "command not configured"
		return status
	}
	resolved, err := exec.LookPath(cmd)
	if err != nil {
		status.Detail = fmt.Sprintf("binary %q not found", cmd)
		return status
	}
	status.Command = resolved
	if req.Probe != nil {
		if err := req.Probe(ctx, resolved); err != nil {
			status.Detail = err.Error()
			return status
		}
	}
	status.Available = true
	return status
}
