package cli_test

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/kls/internal/cli"
	"github.com/macropower/kls/pkg/kube"
)

const (
	minimalConfig = "apiVersion: kls.jacobcolvin.com/v1beta1\nkind: Configuration\n"

	podYAML = `apiVersion: v1
kind: Pod
metadata:
  name: web
spec:
  containers:
    - name: app
      image: nginx
`

	brokenYAML = `apiVersion: v1
kind: Pod
metadata: [unclosed
`
)

// workdir writes files into a temporary directory and returns the directory
// and the path of a config file kept outside of it.
func workdir(t *testing.T, files map[string]string) (string, string) {
	t.Helper()

	dir := t.TempDir()
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	require.NoError(t, os.WriteFile(configPath, []byte(minimalConfig), 0o600))

	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
	}

	return dir, configPath
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	cmd := cli.NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)

	err := cmd.ExecuteContext(t.Context())

	return out.String(), err
}

type lintReport struct {
	Results []struct {
		File        string `json:"file"`
		Diagnostics []struct {
			Rule     string `json:"rule"`
			Severity string `json:"severity"`
		} `json:"diagnostics"`
		Manifest bool `json:"manifest"`
	} `json:"results"`
	Summary struct {
		Files    int `json:"files"`
		Errors   int `json:"errors"`
		Warnings int `json:"warnings"`
	} `json:"summary"`
}

func TestLintCmd_JSON(t *testing.T) {
	t.Parallel()

	dir, configPath := workdir(t, map[string]string{
		"pod.yaml":    podYAML,
		"values.yaml": "replicas: 3\n",
		"notes.txt":   "not yaml",
	})

	out, err := run(t, "lint", dir, "--config", configPath, "--output", "json")
	require.NoError(t, err)

	var report lintReport

	require.NoError(t, json.Unmarshal([]byte(out), &report))

	require.Len(t, report.Results, 2)
	assert.Equal(t, 2, report.Summary.Files)
	assert.Zero(t, report.Summary.Errors)
	assert.Positive(t, report.Summary.Warnings)

	var rules []string

	for _, res := range report.Results {
		if filepath.Base(res.File) != "pod.yaml" {
			assert.False(t, res.Manifest)
			assert.Empty(t, res.Diagnostics)

			continue
		}

		assert.True(t, res.Manifest)

		for _, d := range res.Diagnostics {
			rules = append(rules, d.Rule)
		}
	}

	assert.Contains(t, rules, "image-tag")
	assert.Contains(t, rules, "resource-limits")
}

func TestLintCmd_Text(t *testing.T) {
	t.Parallel()

	dir, configPath := workdir(t, map[string]string{"pod.yaml": podYAML})

	out, err := run(t, "lint", filepath.Join(dir, "pod.yaml"), "--config", configPath)
	require.NoError(t, err)

	assert.Contains(t, out, "pod.yaml")
	assert.Contains(t, out, "image-tag")
	assert.Contains(t, out, "0 errors")
	assert.Contains(t, out, "in 1 file")
}

func TestLintCmd_Disabled(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")

	require.NoError(t, os.WriteFile(configPath, []byte(minimalConfig+`lint:
  disabled: [image-tag, resource-limits]
`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pod.yaml"), []byte(podYAML), 0o600))

	out, err := run(t, "lint", filepath.Join(dir, "pod.yaml"), "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "no problems")
}

func TestLintCmd_Errors(t *testing.T) {
	t.Parallel()

	dir, configPath := workdir(t, map[string]string{"broken.yaml": brokenYAML})

	out, err := run(t, "lint", filepath.Join(dir, "broken.yaml"), "--config", configPath)
	require.ErrorIs(t, err, cli.ErrProblemsFound)
	assert.Contains(t, out, "broken.yaml")
	assert.Contains(t, out, "error")
}

func TestLintCmd_InvalidFlags(t *testing.T) {
	t.Parallel()

	tcs := map[string][]string{
		"unknown output":  {"lint", "--output", "yaml"},
		"watch with json": {"lint", "--watch", "--output", "json"},
	}

	for name, args := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := run(t, args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid argument")
		})
	}
}

func TestNodeCmd(t *testing.T) {
	t.Parallel()

	dir, configPath := workdir(t, map[string]string{"pod.yaml": podYAML})
	file := filepath.Join(dir, "pod.yaml")

	out, err := run(t, "node", file, "3", "8", "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "path:  $.metadata.name")
	assert.Contains(t, out, "raw:   web")

	_, err = run(t, "node", file, "40", "0", "--config", configPath)
	require.Error(t, err)

	_, err = run(t, "node", file, "x", "0", "--config", configPath)
	require.Error(t, err)
}

func TestDetectCmd(t *testing.T) {
	t.Parallel()

	dir, _ := workdir(t, map[string]string{
		"pod.yaml":   podYAML,
		"plain.yaml": "foo: bar\n",
	})

	out, err := run(t, "detect", filepath.Join(dir, "pod.yaml"))
	require.NoError(t, err)
	assert.Contains(t, out, "document 0: v1, Kind=Pod")

	out, err = run(t, "detect", filepath.Join(dir, "plain.yaml"))
	require.NoError(t, err)
	assert.Contains(t, out, "not a kubernetes manifest")
}

func TestGVKCmd(t *testing.T) {
	t.Parallel()

	out, err := run(t, "gvk", "--group", "apps", "--version", "v1", "--kind", "Deployment")
	require.NoError(t, err)
	assert.Equal(t, "apiVersion: apps/v1\nkind: Deployment\n", out)

	out, err = run(t, "gvk", "--version", "v1", "--kind", "ConfigMap")
	require.NoError(t, err)
	assert.Equal(t, "apiVersion: v1\nkind: ConfigMap\n", out)

	_, err = run(t, "gvk", "--version", "v1")
	require.ErrorIs(t, err, kube.ErrMissingKind)
}

func TestSchemaCmd(t *testing.T) {
	t.Parallel()

	out, err := run(t, "schema")
	require.NoError(t, err)
	assert.True(t, json.Valid([]byte(out)))
}

func TestInitCmd(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	out, err := run(t, "init", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)
	assert.FileExists(t, path)

	_, err = run(t, "lint", "--config", path, filepath.Dir(path))
	require.NoError(t, err)
}
