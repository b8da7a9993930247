// Where: internal/docker/executor.go
// What: Containerized command execution.
// Why: runner=docker environments execute against an existing image.
package docker

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/toxa-dev/toxa/internal/config"
)

// workMount is where the project directory is bind-mounted inside the
// container.
const workMount = "/work"

// Executor implements run.ContainerExecutor against the Docker Engine
// API. One container is created per command: commands are independent
// processes, exactly as they are for the local runner.
type Executor struct {
	Client Client
}

// NewExecutor wraps a Docker client.
func NewExecutor(client Client) *Executor {
	return &Executor{Client: client}
}

// ExecEnv runs the environment's commands in sequence inside containers
// of env.ContainerImage. ignored marks command indexes whose failure is
// tolerated. The first non-zero exit of a non-tolerated command stops the
// sequence and becomes the environment's exit code. Building or pulling
// images is out of scope: a missing image is an error.
func (e *Executor) ExecEnv(ctx context.Context, env *config.Env, commands [][]string, ignored map[int]bool, environ []string, projectDir string, out io.Writer) (int, error) {
	present, err := e.hasImage(ctx, env.ContainerImage)
	if err != nil {
		return 0, fmt.Errorf("inspect images: %w", err)
	}
	if !present {
		return 0, fmt.Errorf("image %q not found locally; build or pull it first", env.ContainerImage)
	}

	workDir := workMount
	if env.ChangeDir != "" {
		workDir = env.ChangeDir
	}

	for i, argv := range commands {
		fmt.Fprintf(out, "%s docker[%d]> %s\n", env.Name, i, strings.Join(argv, " "))
		code, err := e.runOne(ctx, env.ContainerImage, argv, environ, projectDir, workDir, out)
		if err != nil {
			return 0, err
		}
		if code != 0 {
			if env.IgnoreErrors || ignored[i] {
				fmt.Fprintf(out, "%s docker[%d]> exit %d (ignored)\n", env.Name, i, code)
				continue
			}
			return int(code), nil
		}
	}
	return 0, nil
}

// runOne creates, starts, waits for, and removes a single container.
// Removal always happens, also on failure paths.
func (e *Executor) runOne(ctx context.Context, imageRef string, argv, environ []string, projectDir, workDir string, out io.Writer) (int64, error) {
	created, err := e.Client.ContainerCreate(ctx,
		&container.Config{
			Image:      imageRef,
			Cmd:        argv,
			Env:        environ,
			WorkingDir: workDir,
		},
		&container.HostConfig{
			Binds: []string{projectDir + ":" + workMount},
		},
		nil, nil, "")
	if err != nil {
		return 0, fmt.Errorf("create container: %w", err)
	}
	defer func() {
		removeCtx := context.WithoutCancel(ctx)
		_ = e.Client.ContainerRemove(removeCtx, created.ID, container.RemoveOptions{Force: true})
	}()

	if err := e.Client.ContainerStart(ctx, created.ID, container.StartOptions{}); err != nil {
		return 0, fmt.Errorf("start container: %w", err)
	}

	if logs, err := e.Client.ContainerLogs(ctx, created.ID, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Follow:     true,
	}); err == nil {
		defer logs.Close()
		// The stream multiplexes stdout/stderr; demultiplex both onto
		// the same writer to keep ordering.
		_, _ = stdcopy.StdCopy(out, out, logs)
	}

	waitCh, errCh := e.Client.ContainerWait(ctx, created.ID, container.WaitConditionNotRunning)
	select {
	case status := <-waitCh:
		if status.Error != nil {
			return 0, fmt.Errorf("container wait: %s", status.Error.Message)
		}
		return status.StatusCode, nil
	case err := <-errCh:
		return 0, fmt.Errorf("container wait: %w", err)
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// hasImage reports whether imageRef resolves to a local image. Digest
// references match RepoDigests; everything else matches RepoTags, with
// ":latest" assumed when the reference carries no tag.
func (e *Executor) hasImage(ctx context.Context, imageRef string) (bool, error) {
	images, err := e.Client.ImageList(ctx, image.ListOptions{All: true})
	if err != nil {
		return false, err
	}

	if strings.Contains(imageRef, "@") {
		for _, img := range images {
			for _, digest := range img.RepoDigests {
				if digest == imageRef {
					return true, nil
				}
			}
		}
		return false, nil
	}

	needle := imageRef
	// The tag separator is a colon after the last slash; a colon before
	// that is a registry port (registry:5000/img).
	if name := needle[strings.LastIndexByte(needle, '/')+1:]; !strings.Contains(name, ":") {
		needle += ":latest"
	}
	for _, img := range images {
		for _, tag := range img.RepoTags {
			if tag == needle {
				return true, nil
			}
		}
	}
	return false, nil
}
