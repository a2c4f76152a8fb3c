// Package osrm drives the external routing-graph compiler. Each profile
// variant gets an isolated workspace holding a copy of the shared graph and
// its generated profile script; the three compiler stages then run inside
// that workspace.
package osrm

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"routing/internal/pkg/errs"
)

const (
	graphFileName   = "road-graph.osm"
	profileFileName = "profile.lua"
	datasetFileName = "road-graph.osrm"
)

// WorkspaceStager implements ports.WorkspaceStager on the local filesystem.
type WorkspaceStager struct {
	rootDir string
}

// NewWorkspaceStager creates a stager placing workspaces under rootDir.
func NewWorkspaceStager(rootDir string) *WorkspaceStager {
	return &WorkspaceStager{rootDir: rootDir}
}

// Stage prepares the variant's workspace: a directory named after the
// variant holding a private copy of the shared graph and the profile
// script. Restaging a variant replaces its previous workspace so that a
// failed earlier run cannot leak stale artifacts into a new one.
func (s *WorkspaceStager) Stage(ctx context.Context, variantName, graphPath, profileScript string) (string, error) {
	if variantName == "" {
		return "", errs.NewValueIsRequiredError("variantName")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	workspaceDir := filepath.Join(s.rootDir, variantName)
	if err := os.RemoveAll(workspaceDir); err != nil {
		return "", fmt.Errorf("clear workspace: %w", err)
	}
	if err := os.MkdirAll(workspaceDir, 0o755); err != nil {
		return "", fmt.Errorf("create workspace: %w", err)
	}

	if err := copyFile(graphPath, filepath.Join(workspaceDir, graphFileName)); err != nil {
		return "", fmt.Errorf("copy graph into workspace: %w", err)
	}
	if err := os.WriteFile(filepath.Join(workspaceDir, profileFileName), []byte(profileScript), 0o644); err != nil {
		return "", fmt.Errorf("write profile script: %w", err)
	}

	return workspaceDir, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err = io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
