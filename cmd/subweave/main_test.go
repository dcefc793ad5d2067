package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"subweave/internal/daemonrun"
)

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := executeCommand(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.Contains(out, daemonrun.Version) {
		t.Fatalf("version output %q missing %q", out, daemonrun.Version)
	}
}

func TestConfigNewWritesSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	out, err := executeCommand(t, "config", "new", "--config", path)
	if err != nil {
		t.Fatalf("config new: %v", err)
	}
	if !strings.Contains(out, path) {
		t.Fatalf("output %q does not mention %s", out, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("sample file: %v", err)
	}
	if !strings.Contains(string(data), "[paths]") {
		t.Fatalf("sample file lacks [paths] section")
	}
}

func TestPriorityNames(t *testing.T) {
	if got := priorityName(0); got != "failed" {
		t.Fatalf("priorityName(0) = %q", got)
	}
	if got := priorityName(5); got != "default" {
		t.Fatalf("priorityName(5) = %q", got)
	}
}

func TestRenderStatusLinePlain(t *testing.T) {
	line := renderStatusLine("Process", statusOK, "running", false)
	if !strings.Contains(line, "Process:") || !strings.Contains(line, "[OK] running") {
		t.Fatalf("unexpected status line %q", line)
	}
	if strings.Contains(line, "\x1b[") {
		t.Fatalf("plain line carries ANSI codes: %q", line)
	}
}

func TestRenderTablePadsShortRows(t *testing.T) {
	out := renderTable(
		[]string{"A", "B"},
		[][]string{{"only"}},
		[]columnAlignment{alignLeft, alignRight})
	if !strings.Contains(out, "only") {
		t.Fatalf("table output %q missing row value", out)
	}
}
