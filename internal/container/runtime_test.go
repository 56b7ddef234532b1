// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package container

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeExec answers LookPath and RunSilent from a set of working command
// lines and records every command it is asked to run.
type fakeExec struct {
	onPath map[string]bool
	works  map[string]bool
	piped  func(stdin io.Reader, stdout io.Writer) error
	calls  []string
}

func newFakeExec(onPath []string, works ...string) *fakeExec {
	f := &fakeExec{onPath: map[string]bool{}, works: map[string]bool{}}
	for _, b := range onPath {
		f.onPath[b] = true
	}
	for _, c := range works {
		f.works[c] = true
	}
	return f
}

func (f *fakeExec) LookPath(file string) (string, error) {
	if !f.onPath[file] {
		return "", errors.New("executable not found")
	}
	return "/usr/local/bin/" + file, nil
}

func (f *fakeExec) RunSilent(_ context.Context, name string, args ...string) error {
	line := strings.Join(append([]string{name}, args...), " ")
	f.calls = append(f.calls, line)
	if !f.works[line] {
		return errors.New("exit status 1")
	}
	return nil
}

func (f *fakeExec) RunPiped(_ context.Context, name string, args []string, stdin io.Reader, stdout io.Writer) error {
	f.calls = append(f.calls, strings.Join(append([]string{name}, args...), " "))
	if f.piped == nil {
		return nil
	}
	return f.piped(stdin, stdout)
}

func TestDetectRuntimePrefersDocker(t *testing.T) {
	f := newFakeExec([]string{"docker", "podman"}, "docker info", "podman info")
	rt, err := detectRuntime(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, "docker", rt.Name())
	assert.Equal(t, []string{"docker info"}, f.calls, "podman should not be probed")
}

func TestDetectRuntimeFallsBackToPodman(t *testing.T) {
	for name, f := range map[string]*fakeExec{
		"docker missing":       newFakeExec([]string{"podman"}, "podman info"),
		"docker daemon broken": newFakeExec([]string{"docker", "podman"}, "podman info"),
	} {
		t.Run(name, func(t *testing.T) {
			rt, err := detectRuntime(context.Background(), f)
			require.NoError(t, err)
			assert.Equal(t, "podman", rt.Name())
		})
	}
}

func TestDetectRuntimeNoneAvailable(t *testing.T) {
	_, err := detectRuntime(context.Background(), newFakeExec(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no container runtime available")
}

func TestImageExistsUsesRuntimeSubcommand(t *testing.T) {
	const image = "markitdown:latest"

	docker := newFakeExec(nil, "docker image inspect "+image)
	assert.NoError(t, newDockerRuntime(docker).ImageExists(context.Background(), image))

	podman := newFakeExec(nil, "podman image exists "+image)
	assert.NoError(t, newPodmanRuntime(podman).ImageExists(context.Background(), image))

	err := newPodmanRuntime(newFakeExec(nil)).ImageExists(context.Background(), image)
	require.Error(t, err)
	assert.Contains(t, err.Error(), image)
}

func TestRunPipesDocumentThroughContainer(t *testing.T) {
	f := newFakeExec(nil)
	f.piped = func(stdin io.Reader, stdout io.Writer) error {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return err
		}
		_, err = stdout.Write(bytes.ToUpper(b))
		return err
	}

	var out bytes.Buffer
	err := newPodmanRuntime(f).Run(context.Background(), "markitdown:latest", strings.NewReader("%pdf body"), &out)
	require.NoError(t, err)
	assert.Equal(t, "%PDF BODY", out.String())
	assert.Equal(t, []string{"podman run --rm -i --network none markitdown:latest"}, f.calls)
}

func TestRunWrapsContainerFailure(t *testing.T) {
	f := newFakeExec(nil)
	cause := errors.New("exit status 2")
	f.piped = func(io.Reader, io.Writer) error { return cause }

	err := newDockerRuntime(f).Run(context.Background(), "markitdown:latest", strings.NewReader(""), io.Discard)
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "docker")
}
