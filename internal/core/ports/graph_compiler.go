package ports

import "context"

// GraphCompiler drives the external three-stage graph compiler over a
// staged variant workspace.
//
// The workspace must already contain the graph document and the variant's
// profile script. Compile runs extraction, partitioning, and customization
// strictly in order, short-circuiting on the first failure; a failed stage
// surfaces as an ExternalToolError naming the stage and carrying a bounded
// tail of its output. On success Compile returns the path of the compiled
// output inside the workspace. No retries at any level.
type GraphCompiler interface {
	Compile(ctx context.Context, workspaceDir string) (outputPath string, err error)
}

// WorkspaceStager prepares the isolated per-variant workspace: a copy of
// the shared graph document plus the variant's profile script.
type WorkspaceStager interface {
	Stage(ctx context.Context, variantName, graphPath, profileScript string) (workspaceDir string, err error)
}
