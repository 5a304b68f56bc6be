package api

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/deixis/courier/internal/config"
	"github.com/deixis/courier/internal/history"
	"github.com/deixis/courier/internal/runner"
)

// newAgentServer wires the router to a real runner invoking a shell script.
func newAgentServer(t *testing.T, script string) *gin.Engine {
	t.Helper()
	dir := t.TempDir()
	agent := filepath.Join(dir, "agent.sh")
	if err := os.WriteFile(agent, []byte("#!/bin/sh\n"+script+"\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	cfg := &config.Config{}
	r := &runner.Runner{
		Command:   []string{agent},
		BaseURL:   "http://127.0.0.1:8081/v1",
		Model:     "autoglm-phone-9b",
		Workdir:   dir,
		Timeout:   10 * time.Second,
		MaxOutput: cfg.MaxOutputBytes(),
	}
	store := history.NewLRUStore(cfg.HistoryCapacity(), history.NewDiskStore())
	return NewServer(cfg, r, store).Router()
}

func TestEndToEnd_AgentSucceeds(t *testing.T) {
	router := newAgentServer(t, `printf "Done"`)

	w := postRun(t, router, `{"instruction": "open settings"}`)
	if w.Code != 200 {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	var raw map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &raw); err != nil {
		t.Fatal(err)
	}
	if raw["success"] != true {
		t.Errorf("success = %v, want true", raw["success"])
	}
	if raw["stdout_tail"] != "Done" {
		t.Errorf("stdout_tail = %v, want Done", raw["stdout_tail"])
	}
	if raw["stderr_tail"] != nil {
		t.Errorf("stderr_tail = %v, want null", raw["stderr_tail"])
	}
	if d, ok := raw["duration"].(float64); !ok || d <= 0 {
		t.Errorf("duration = %v, want > 0", raw["duration"])
	}
}

func TestEndToEnd_AgentMissing(t *testing.T) {
	cfg := &config.Config{}
	r := &runner.Runner{
		Command:   []string{filepath.Join(t.TempDir(), "no-such-agent")},
		Timeout:   time.Second,
		MaxOutput: cfg.MaxOutputBytes(),
	}
	store := history.NewLRUStore(cfg.HistoryCapacity(), history.NewDiskStore())
	router := NewServer(cfg, r, store).Router()

	w := postRun(t, router, `{"instruction": "noop"}`)
	if w.Code != 200 {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	resp := decodeRun(t, w)
	if resp.Success {
		t.Error("success = true, want false")
	}
	if resp.StdoutTail != nil {
		t.Errorf("stdout_tail = %v, want null", *resp.StdoutTail)
	}
	if resp.StderrTail == nil || !strings.Contains(*resp.StderrTail, "no such file") {
		t.Errorf("stderr_tail = %v, want file-not-found text", resp.StderrTail)
	}
}
