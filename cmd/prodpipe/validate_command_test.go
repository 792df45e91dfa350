package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestValidateScoresRoutesToReview(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{
		"validate", "scores", "SKU-WIDGET", "img-001",
		"background_white=0.70",
		"--json",
	}, env.configPath)
	if err != nil {
		t.Fatalf("validate scores: %v", err)
	}

	var payload struct {
		Overall    float64 `json:"overall"`
		UsedWeight float64 `json:"used_weight"`
		Status     string  `json:"status"`
		TaskID     string  `json:"task_id"`
	}
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if payload.Status != "needs_review" {
		t.Fatalf("expected needs_review, got %q", payload.Status)
	}
	if payload.TaskID == "" {
		t.Fatal("expected a routed task id")
	}

	task, err := env.store.GetTask(context.Background(), payload.TaskID)
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if task == nil || task.SKU != "SKU-WIDGET" {
		t.Fatalf("routed task not persisted: %+v", task)
	}
}

func TestValidateScoresAutoAcceptCreatesNoTask(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{
		"validate", "scores", "SKU-CLEAN", "img-002",
		"background_white=0.98",
		"blur=0.92",
		"object_coverage=0.85",
		"perceptual_similarity=0.95",
	}, env.configPath)
	if err != nil {
		t.Fatalf("validate scores: %v", err)
	}
	requireContains(t, out, "auto_accepted")
	requireContains(t, out, "0.9225")

	stats, err := env.store.TaskStats(context.Background(), time.Now().UTC())
	if err != nil {
		t.Fatalf("TaskStats: %v", err)
	}
	if stats.Total != 0 {
		t.Fatalf("expected no tasks, got %d", stats.Total)
	}
}

func TestValidateScoresDryRunDoesNotPersist(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{
		"validate", "scores", "SKU-DRY", "img-003",
		"background_white=0.70",
		"--dry-run",
	}, env.configPath)
	if err != nil {
		t.Fatalf("validate scores --dry-run: %v", err)
	}
	requireContains(t, out, "needs_review")

	stats, err := env.store.TaskStats(context.Background(), time.Now().UTC())
	if err != nil {
		t.Fatalf("TaskStats: %v", err)
	}
	if stats.Total != 0 {
		t.Fatalf("dry run persisted %d tasks", stats.Total)
	}
}

func TestValidateScoresRejectsMalformedPair(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{
		"validate", "scores", "SKU-BAD", "img-004", "blur",
	}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "CHECK=SCORE") {
		t.Fatalf("expected pair parse error, got %v", err)
	}
}

func TestValidateDigest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "image.bin")
	if err := os.WriteFile(path, []byte("pixels"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	sum := sha256.Sum256([]byte("pixels"))

	out, _, err := runCLI(t, []string{"validate", "digest", path}, "")
	if err != nil {
		t.Fatalf("validate digest: %v", err)
	}
	if got := strings.TrimSpace(out); got != hex.EncodeToString(sum[:]) {
		t.Fatalf("unexpected digest %q", got)
	}
}
