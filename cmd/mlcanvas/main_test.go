package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

// execute runs the root command. Commands share package-level flags, so the
// tests in this file run serially.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	runFlags.data = ""
	runFlags.graph = false
	runFlags.inspect = false
	runFlags.history = 0
	runFlags.stopOnError = false
	rootFlags.markdown = false
	rootFlags.logLevel = "warn"
	rootFlags.logFormat = "text"

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestRunCommand(t *testing.T) {
	out, err := execute(t, "run", "--pipeline", "testdata/fruit.yaml", "--graph", "--history", "50")
	require.NoError(t, err)
	require.Contains(t, out, "Pipeline: fruit")
	require.Contains(t, out, "predict tree(125)")
	require.Contains(t, out, "apple")
	require.Contains(t, out, "banana")
	require.Contains(t, out, "tree ==result==> result")
	require.Contains(t, out, "Snapshots kept:")
}

func TestRunCommandInspect(t *testing.T) {
	out, err := execute(t, "run", "--pipeline", "testdata/fruit.yaml", "--inspect")
	require.NoError(t, err)
	require.Contains(t, out, "tree:\n")
	require.Contains(t, out, "weight <= ")
}

func TestRunCommandMarkdown(t *testing.T) {
	out, err := execute(t, "run", "-p", "testdata/fruit.yaml", "--markdown", "--log-level", "debug")
	require.NoError(t, err)
	require.Contains(t, out, "| Node |")
}

func TestRunCommandErrors(t *testing.T) {
	_, err := execute(t, "run", "--pipeline", "testdata/missing.yaml")
	require.ErrorContains(t, err, "load pipeline")

	_, err = execute(t, "run", "--pipeline", "testdata/fruit.yaml", "--data", "testdata/missing.csv")
	require.Error(t, err)

	_, err = execute(t, "run", "--pipeline", "testdata/fruit.yaml", "--log-format", "xml")
	require.ErrorContains(t, err, "invalid log format")
}

func TestNodesCommand(t *testing.T) {
	out, err := execute(t, "nodes")
	require.NoError(t, err)
	require.Contains(t, out, "decision_tree")
	require.Contains(t, out, "11 subtypes")

	out, err = execute(t, "nodes", "knn")
	require.NoError(t, err)
	require.Contains(t, out, "knn (model)")
	require.Contains(t, out, "weighting")

	out, err = execute(t, "nodes", "output")
	require.NoError(t, err)
	require.Contains(t, out, "No configuration.")

	_, err = execute(t, "nodes", "svm")
	require.Error(t, err)
}
