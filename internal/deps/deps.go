// Package deps reports whether the external tools and directories a strip
// run relies on are usable.
package deps

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

const versionTimeout = 5 * time.Second

// Requirement defines an external dependency mediascrub relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	// VersionArgs, when set, are passed to Command to read a version line.
	VersionArgs []string
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Description string `json:"description"`
	Optional    bool   `json:"optional"`
	Available   bool   `json:"available"`
	Path        string `json:"path,omitempty"`
	Version     string `json:"version,omitempty"`
	Detail      string `json:"detail,omitempty"`
}

// FFmpeg describes the transcoder used for video files.
func FFmpeg(binary string) Requirement {
	return Requirement{
		Name:        "FFmpeg",
		Command:     binary,
		Description: "Rewrites video containers without metadata",
		Optional:    true,
		VersionArgs: []string{"-hide_banner", "-version"},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(ctx context.Context, requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		results = append(results, checkBinary(ctx, req))
	}
	return results
}

func checkBinary(ctx context.Context, req Requirement) Status {
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
	status.Available = true
	status.Path = resolved

	if len(req.VersionArgs) == 0 {
		return status
	}
	version, err := readVersion(ctx, resolved, req.VersionArgs)
	if err != nil {
		status.Detail = fmt.Sprintf("found but version check failed: %v", err)
		return status
	}
	status.Version = version
	return status
}

func readVersion(ctx context.Context, binary string, args []string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, versionTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, binary, args...).Output()
	if err != nil {
		return "", err
	}
	firstLine := strings.TrimSpace(string(out))
	if idx := strings.IndexByte(firstLine, '\n'); idx > 0 {
		firstLine = strings.TrimSpace(firstLine[:idx])
	}
	return firstLine, nil
}

// CheckDirectoryAccess verifies that the directory exists and that the
// current user may list it and replace files inside it.
func CheckDirectoryAccess(name, path string) Status {
	status := Status{Name: name, Command: path, Description: "Directory to strip"}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			status.Detail = fmt.Sprintf("%s (error: does not exist)", path)
			return status
		}
		status.Detail = fmt.Sprintf("%s (error: stat: %v)", path, err)
		return status
	}
	if !info.IsDir() {
		status.Detail = fmt.Sprintf("%s (error: is not a directory)", path)
		return status
	}
	if err := checkAccess(path); err != nil {
		status.Detail = fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)
		return status
	}
	status.Available = true
	status.Detail = fmt.Sprintf("%s (read/write ok)", path)
	return status
}
