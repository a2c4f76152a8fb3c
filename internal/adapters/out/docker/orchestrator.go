// Package docker manages the routing-engine containers, one per profile
// variant, through the Docker Engine API.
package docker

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"routing/internal/core/ports"
	"routing/internal/pkg/errs"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

// ContainerAPI is the slice of the Docker client the orchestrator uses.
// Satisfied by *client.Client; narrowed for testability.
type ContainerAPI interface {
	ContainerInspect(ctx context.Context, containerID string) (types.ContainerJSON, error)
	ContainerStart(ctx context.Context, containerID string, options container.StartOptions) error
	ContainerStop(ctx context.Context, containerID string, options container.StopOptions) error
	ContainerRestart(ctx context.Context, containerID string, options container.StopOptions) error
	ContainerRemove(ctx context.Context, containerID string, options container.RemoveOptions) error
	ContainerCreate(ctx context.Context, config *container.Config, hostConfig *container.HostConfig,
		networkingConfig *network.NetworkingConfig, platform *ocispec.Platform, containerName string,
	) (container.CreateResponse, error)
}

// enginePort is the port the routing engine listens on inside its
// container.
const enginePort = "5000/tcp"

// healthCheckTimeout bounds one health probe. A healthy engine answers a
// trivial route query in milliseconds; anything slower is as bad as down.
const healthCheckTimeout = 2 * time.Second

// startingGrace is how long after container start a failing probe still
// reports "starting" instead of "unhealthy". Engines mmap the compiled
// dataset on boot and do not answer until that finishes.
const startingGrace = 30 * time.Second

// stopTimeoutSeconds is how long a container gets to exit gracefully.
const stopTimeoutSeconds = 10

// containerNamePrefix namespaces the engines this service manages.
const containerNamePrefix = "routing-engine-"

// Config carries the orchestration settings for the engine fleet.
type Config struct {
	// Image is the routing-engine image incl. tag.
	Image string

	// HostPorts maps each variant name to its published host port.
	HostPorts map[string]int

	// ProbeQuery is the path+query of the representative route request
	// used for health checks, e.g. "/route/v1/driving/106.80,-6.20;106.82,-6.22".
	ProbeQuery string
}

// Orchestrator implements ports.EngineOrchestrator over the Docker API.
type Orchestrator struct {
	docker ContainerAPI
	http   *http.Client
	cfg    Config
	logger *slog.Logger
}

// NewOrchestrator creates an orchestrator for the variants named in
// cfg.HostPorts.
func NewOrchestrator(dockerClient ContainerAPI, cfg Config, logger *slog.Logger) (*Orchestrator, error) {
	if cfg.Image == "" {
		return nil, errs.NewValueIsRequiredError("cfg.Image")
	}
	if len(cfg.HostPorts) == 0 {
		return nil, errs.NewValueIsRequiredError("cfg.HostPorts")
	}
	if cfg.ProbeQuery == "" {
		return nil, errs.NewValueIsRequiredError("cfg.ProbeQuery")
	}

	return &Orchestrator{
		docker: dockerClient,
		http:   &http.Client{Timeout: healthCheckTimeout},
		cfg:    cfg,
		logger: logger.With("component", "engine_orchestrator"),
	}, nil
}

func containerName(variantName string) string {
	return containerNamePrefix + variantName
}

// Status reports container state and health for every configured variant,
// sorted by variant name.
func (o *Orchestrator) Status(ctx context.Context) ([]ports.EngineStatus, error) {
	variantNames := make([]string, 0, len(o.cfg.HostPorts))
	for variantName := range o.cfg.HostPorts {
		variantNames = append(variantNames, variantName)
	}
	sort.Strings(variantNames)

	statuses := make([]ports.EngineStatus, 0, len(variantNames))
	for _, variantName := range variantNames {
		state, startedAt, err := o.inspectState(ctx, variantName)
		if err != nil {
			return nil, err
		}

		health := ports.EngineUnhealthy
		if state == ports.EngineRunning {
			health = o.probe(ctx, variantName, startedAt)
		}
		statuses = append(statuses, ports.EngineStatus{
			Variant: variantName,
			State:   state,
			Health:  health,
		})
	}
	return statuses, nil
}

// inspectState maps the container's runtime state onto the engine state
// enum. A missing container is EngineNotFound, not an error.
func (o *Orchestrator) inspectState(ctx context.Context, variantName string) (ports.EngineState, time.Time, error) {
	info, err := o.docker.ContainerInspect(ctx, containerName(variantName))
	if err != nil {
		if client.IsErrNotFound(err) {
			return ports.EngineNotFound, time.Time{}, nil
		}
		return "", time.Time{}, fmt.Errorf("inspect %s: %w", containerName(variantName), err)
	}
	if info.State == nil {
		return ports.EngineError, time.Time{}, nil
	}

	startedAt, _ := time.Parse(time.RFC3339Nano, info.State.StartedAt)

	switch info.State.Status {
	case "running":
		return ports.EngineRunning, startedAt, nil
	case "created", "exited", "paused":
		return ports.EngineStopped, startedAt, nil
	default: // restarting, removing, dead
		return ports.EngineError, startedAt, nil
	}
}

// Start starts the variant's existing container.
func (o *Orchestrator) Start(ctx context.Context, variantName string) error {
	err := o.docker.ContainerStart(ctx, containerName(variantName), container.StartOptions{})
	if err != nil {
		if client.IsErrNotFound(err) {
			return errs.NewObjectNotFoundError("engine", variantName)
		}
		return fmt.Errorf("start %s: %w", containerName(variantName), err)
	}
	o.logger.InfoContext(ctx, "Engine started", "variant", variantName)
	return nil
}

// Stop stops the variant's container gracefully. Stopping a missing or
// already stopped engine is not an error.
func (o *Orchestrator) Stop(ctx context.Context, variantName string) error {
	timeout := stopTimeoutSeconds
	err := o.docker.ContainerStop(ctx, containerName(variantName), container.StopOptions{Timeout: &timeout})
	if err != nil && !client.IsErrNotFound(err) {
		return fmt.Errorf("stop %s: %w", containerName(variantName), err)
	}
	o.logger.InfoContext(ctx, "Engine stopped", "variant", variantName)
	return nil
}

// Restart restarts the container in place, falling back to stop-then-start
// when the runtime rejects the restart.
func (o *Orchestrator) Restart(ctx context.Context, variantName string) error {
	timeout := stopTimeoutSeconds
	err := o.docker.ContainerRestart(ctx, containerName(variantName), container.StopOptions{Timeout: &timeout})
	if err == nil {
		o.logger.InfoContext(ctx, "Engine restarted", "variant", variantName)
		return nil
	}
	if client.IsErrNotFound(err) {
		return errs.NewObjectNotFoundError("engine", variantName)
	}

	o.logger.WarnContext(ctx, "Engine restart rejected, falling back to stop and start",
		"variant", variantName, "error", err)
	if err = o.Stop(ctx, variantName); err != nil {
		return err
	}
	return o.Start(ctx, variantName)
}

// Rebuild replaces the variant's container with a fresh one serving the
// given compiled dataset.
func (o *Orchestrator) Rebuild(ctx context.Context, variantName string, outputPath string) error {
	hostPort, ok := o.cfg.HostPorts[variantName]
	if !ok {
		return errs.NewObjectNotFoundError("variant", variantName)
	}
	if outputPath == "" {
		return errs.NewValueIsRequiredError("outputPath")
	}

	name := containerName(variantName)
	if err := o.Stop(ctx, variantName); err != nil {
		return err
	}
	err := o.docker.ContainerRemove(ctx, name, container.RemoveOptions{Force: true})
	if err != nil && !client.IsErrNotFound(err) {
		return fmt.Errorf("remove %s: %w", name, err)
	}

	created, err := o.docker.ContainerCreate(ctx,
		&container.Config{
			Image: o.cfg.Image,
			Cmd:   []string{"osrm-routed", "--algorithm", "mld", "/data/road-graph.osrm"},
			ExposedPorts: nat.PortSet{
				nat.Port(enginePort): struct{}{},
			},
		},
		&container.HostConfig{
			Binds: []string{engineDataBind(outputPath)},
			PortBindings: nat.PortMap{
				nat.Port(enginePort): []nat.PortBinding{{
					HostIP:   "127.0.0.1",
					HostPort: fmt.Sprintf("%d", hostPort),
				}},
			},
			RestartPolicy: container.RestartPolicy{Name: container.RestartPolicyUnlessStopped},
		},
		nil, nil, name)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}

	if err = o.docker.ContainerStart(ctx, created.ID, container.StartOptions{}); err != nil {
		return fmt.Errorf("start %s: %w", name, err)
	}
	o.logger.InfoContext(ctx, "Engine rebuilt", "variant", variantName, "dataset", outputPath)
	return nil
}

// HealthCheck probes the variant's engine with one representative route
// query. A missing or stopped engine is unhealthy, not an error.
func (o *Orchestrator) HealthCheck(ctx context.Context, variantName string) (ports.EngineHealth, error) {
	if _, ok := o.cfg.HostPorts[variantName]; !ok {
		return "", errs.NewObjectNotFoundError("variant", variantName)
	}

	state, startedAt, err := o.inspectState(ctx, variantName)
	if err != nil {
		return "", err
	}
	if state != ports.EngineRunning {
		return ports.EngineUnhealthy, nil
	}
	return o.probe(ctx, variantName, startedAt), nil
}

// probe issues the representative route query against the variant's
// published port.
func (o *Orchestrator) probe(ctx context.Context, variantName string, startedAt time.Time) ports.EngineHealth {
	url := fmt.Sprintf("http://127.0.0.1:%d%s", o.cfg.HostPorts[variantName], o.cfg.ProbeQuery)
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return ports.EngineUnhealthy
	}

	response, err := o.http.Do(request)
	if err == nil {
		defer response.Body.Close()
		if response.StatusCode >= 200 && response.StatusCode < 300 {
			return ports.EngineHealthy
		}
	}

	if time.Since(startedAt) < startingGrace {
		return ports.EngineStarting
	}
	return ports.EngineUnhealthy
}

// engineDataBind mounts the directory holding the compiled dataset as the
// container's /data, read-only.
func engineDataBind(outputPath string) string {
	return fmt.Sprintf("%s:/data:ro", datasetDir(outputPath))
}
