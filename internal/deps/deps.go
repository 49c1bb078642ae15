package deps

import (
	"fmt"
	"os"
	"strings"
)

// Requirement defines an external file previsbine relies on.
type Requirement struct {
	Name        string
	Path        string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Path        string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Check evaluates a single requirement.
func Check(req Requirement) Status {
	path := strings.TrimSpace(req.Path)
	status := Status{
		Name:        req.Name,
		Path:        path,
		Description: strings.TrimSpace(req.Description),
		Optional:    req.Optional,
	}
	if path == "" {
		status.Detail = "path not configured"
		return status
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			status.Detail = fmt.Sprintf("%s not found", path)
		} else {
			status.Detail = fmt.Sprintf("stat %s: %v", path, err)
		}
		return status
	}
	if info.IsDir() {
		status.Detail = fmt.Sprintf("%s is a directory", path)
		return status
	}
	status.Available = true
	return status
}

// CheckFiles evaluates the provided requirements and reports availability.
func CheckFiles(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		results = append(results, Check(req))
	}
	return results
}
