package osrm

import (
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"path/filepath"
	"time"

	"routing/internal/pkg/errs"
)

// maxCapturedOutputBytes bounds how much combined stage output is held in
// memory. osrm-extract alone can log tens of megabytes on a large graph.
const maxCapturedOutputBytes = 32 << 20

// stage is one step of the compiler pipeline. Args are built against the
// workspace contents.
type stage struct {
	name string
	args func(workspaceDir string) []string
}

// Compiler implements ports.GraphCompiler by running the three OSRM
// toolchain binaries in order: extract, partition, customize. A stage that
// exits nonzero or overruns its deadline fails the variant; remaining
// stages are skipped. There are no retries: a compiler failure is either a
// data problem or an operator problem, and both need a human.
type Compiler struct {
	binDir       string
	stageTimeout time.Duration
	logger       *slog.Logger
}

// NewCompiler creates a compiler running binaries from binDir (empty means
// $PATH), with the given per-stage deadline.
func NewCompiler(binDir string, stageTimeout time.Duration, logger *slog.Logger) *Compiler {
	return &Compiler{
		binDir:       binDir,
		stageTimeout: stageTimeout,
		logger:       logger.With("component", "osrm_compiler"),
	}
}

func pipelineStages() []stage {
	return []stage{
		{
			name: "osrm-extract",
			args: func(dir string) []string {
				return []string{"-p", filepath.Join(dir, profileFileName), filepath.Join(dir, graphFileName)}
			},
		},
		{
			name: "osrm-partition",
			args: func(dir string) []string {
				return []string{filepath.Join(dir, datasetFileName)}
			},
		},
		{
			name: "osrm-customize",
			args: func(dir string) []string {
				return []string{filepath.Join(dir, datasetFileName)}
			},
		},
	}
}

// Compile runs the full pipeline inside workspaceDir and returns the path
// of the compiled dataset.
func (c *Compiler) Compile(ctx context.Context, workspaceDir string) (string, error) {
	for _, s := range pipelineStages() {
		if err := c.runStage(ctx, s, workspaceDir); err != nil {
			return "", err
		}
	}
	return filepath.Join(workspaceDir, datasetFileName), nil
}

func (c *Compiler) runStage(ctx context.Context, s stage, workspaceDir string) error {
	stageCtx := ctx
	if c.stageTimeout > 0 {
		var cancel context.CancelFunc
		stageCtx, cancel = context.WithTimeout(ctx, c.stageTimeout)
		defer cancel()
	}

	binary := s.name
	if c.binDir != "" {
		binary = filepath.Join(c.binDir, s.name)
	}

	cmd := exec.CommandContext(stageCtx, binary, s.args(workspaceDir)...)
	cmd.Dir = workspaceDir

	output := newBoundedBuffer(maxCapturedOutputBytes)
	cmd.Stdout = output
	cmd.Stderr = output

	c.logger.Info("Compiler stage started", "stage", s.name, "workspace", workspaceDir)
	started := time.Now()
	err := cmd.Run()
	elapsed := time.Since(started)

	if err == nil {
		c.logger.Info("Compiler stage finished", "stage", s.name, "duration", elapsed)
		return nil
	}

	if stageErr := stageCtx.Err(); stageErr != nil {
		c.logger.Error("Compiler stage deadline exceeded",
			"stage", s.name, "duration", elapsed)
		return errs.NewExternalToolError(s.name, -1, output.String(), stageErr)
	}

	exitCode := -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		exitCode = exitErr.ExitCode()
	}
	c.logger.Error("Compiler stage failed",
		"stage", s.name, "exit_code", exitCode, "duration", elapsed)
	return errs.NewExternalToolError(s.name, exitCode, output.String(), err)
}

// boundedBuffer keeps only the tail of what is written to it. The end of a
// compiler log carries the failure; the beginning is progress noise.
type boundedBuffer struct {
	limit int
	data  []byte
}

func newBoundedBuffer(limit int) *boundedBuffer {
	return &boundedBuffer{limit: limit}
}

func (b *boundedBuffer) Write(p []byte) (int, error) {
	b.data = append(b.data, p...)
	if overflow := len(b.data) - b.limit; overflow > 0 {
		b.data = b.data[overflow:]
	}
	return len(p), nil
}

func (b *boundedBuffer) String() string {
	return string(b.data)
}
