package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ukaji3/colorsync-go/pkg/colorsync"
	"github.com/ukaji3/colorsync-go/pkg/colorsync/exchange"
	"github.com/ukaji3/colorsync-go/pkg/colorsync/models"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSaveAndExportCommands(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("COLORSYNC_DB", filepath.Join(dir, "colors.db"))
	metrics := filepath.Join(dir, "colorsync.prom")

	out, err := runCLI(t, "sets", "add", "leaf.png", "--description", "autumn")
	if err != nil {
		t.Fatalf("sets add failed: %v", err)
	}
	var set models.SampleSet
	if err := json.Unmarshal([]byte(out), &set); err != nil {
		t.Fatalf("sets add output %q: %v", out, err)
	}
	if set.SetID != 1 || set.ImageName != "leaf.png" {
		t.Fatalf("sets add = %+v", set)
	}

	snapshot := filepath.Join(dir, "ws.json")
	doc := `{"set_id": 1, "rows": [[null, null, null, "S1_pt1", "2", 1.5, "o", "red"], [null, null, null, "bogus"]]}`
	if err := os.WriteFile(snapshot, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err = runCLI(t, "save", snapshot)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	var saved colorsync.SaveResult
	if err := json.Unmarshal([]byte(out), &saved); err != nil {
		t.Fatalf("save output %q: %v", out, err)
	}
	if saved.Saved != 1 || len(saved.Skipped) != 1 {
		t.Errorf("save = %+v, want 1 saved and 1 skipped", saved)
	}

	target := filepath.Join(dir, "plot.xlsx")
	out, err = runCLI(t, "--metrics-file", metrics, "export", target, "--set", "1")
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	var exported colorsync.ExportResult
	if err := json.Unmarshal([]byte(out), &exported); err != nil {
		t.Fatalf("export output %q: %v", out, err)
	}
	if exported.Appended != 1 || exported.Written != 1 {
		t.Errorf("export = %+v, want 1 appended row", exported)
	}
	if _, err := os.Stat(metrics); err != nil {
		t.Errorf("metrics textfile not written: %v", err)
	}

	out, err = runCLI(t, "info", target)
	if err != nil {
		t.Fatalf("info failed: %v", err)
	}
	if !strings.Contains(out, exchange.DefaultSheet) {
		t.Errorf("info output %q does not list %s", out, exchange.DefaultSheet)
	}
}

func TestExportRequiresOneSource(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("COLORSYNC_DB", filepath.Join(dir, "colors.db"))

	tests := []struct {
		name string
		args []string
	}{
		{"neither", []string{"export", filepath.Join(dir, "a.xlsx")}},
		{"both", []string{"export", filepath.Join(dir, "a.xlsx"), "--set", "1", "--snapshot", "ws.json"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := runCLI(t, tt.args...); err == nil {
				t.Error("Expected error")
			}
		})
	}
}

func TestRejectsInvalidConfig(t *testing.T) {
	t.Setenv("COLORSYNC_DB", filepath.Join(t.TempDir(), "colors.db"))
	if _, err := runCLI(t, "--log-format", "xml", "sets"); err == nil {
		t.Error("Expected error for unknown log format")
	}
}

func TestParseID(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"7", 7, false},
		{"0", 0, true},
		{"-3", 0, true},
		{"S1", 0, true},
	}
	for _, tt := range tests {
		got, err := parseID(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseID(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseID(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestCentroidCommand(t *testing.T) {
	t.Setenv("COLORSYNC_DB", filepath.Join(t.TempDir(), "colors.db"))

	for i, cluster := range []string{"3", "3.0"} {
		out, err := runCLI(t, "centroid", cluster, "--x", "0.5", "--radius", "0.2", "--sphere", "red")
		if err != nil {
			t.Fatalf("centroid %s failed: %v", cluster, err)
		}
		var got struct {
			ClusterID  string `json:"cluster_id"`
			PointIndex int64  `json:"point_index"`
		}
		if err := json.Unmarshal([]byte(out), &got); err != nil {
			t.Fatalf("centroid output %q: %v", out, err)
		}
		if got.PointIndex != 1 || got.ClusterID != "3" {
			t.Errorf("run %d: %+v, want cluster 3 at point 1", i, got)
		}
	}

	if _, err := runCLI(t, "centroid", "4", "--radius=-1"); err == nil {
		t.Error("Expected error for negative radius")
	}
}

func TestEnvFileOverridesEnvironment(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("COLORSYNC_DB", filepath.Join(dir, "env.db"))
	fileDB := filepath.Join(dir, "file.db")
	envFile := filepath.Join(dir, "colorsync.env")
	if err := os.WriteFile(envFile, []byte("COLORSYNC_DB="+fileDB+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := runCLI(t, "--env-file", envFile, "init")
	if err != nil {
		t.Fatalf("init failed: %v", err)
	}
	if !strings.Contains(out, fileDB) {
		t.Errorf("init used %q, want %s", out, fileDB)
	}
	if os.Getenv("COLORSYNC_DB") != filepath.Join(dir, "env.db") {
		t.Error("env file modified the process environment")
	}
}
