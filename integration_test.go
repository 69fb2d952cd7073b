//go:build integration

package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mattsolo1/grove-writer/pkg/models"
	"github.com/mattsolo1/grove-writer/pkg/service"
)

func TestIntegration(t *testing.T) {
	// Skip if not running integration tests
	if os.Getenv("RUN_INTEGRATION_TESTS") == "" {
		t.Skip("Skipping integration test. Set RUN_INTEGRATION_TESTS=1 to run.")
	}

	ctx := context.Background()
	tmpDir := t.TempDir()
	config := &service.Config{DataDir: filepath.Join(tmpDir, "data")}

	var bookID, sceneID string

	// Test 1: Create service and write a book
	t.Run("CreateService", func(t *testing.T) {
		svc, err := service.New(ctx, config)
		if err != nil {
			t.Fatalf("Failed to create service: %v", err)
		}
		defer svc.Close()

		book, err := svc.CreateWorkspace(ctx, "Novel")
		if err != nil {
			t.Fatalf("Failed to create book: %v", err)
		}
		bookID = book.ID

		part, err := svc.CreateNode(ctx, models.KindFolder, "", "Part One")
		if err != nil {
			t.Fatalf("Failed to create folder: %v", err)
		}
		sceneID, err = svc.CreateNode(ctx, models.KindFile, part, "Harbor")
		if err != nil {
			t.Fatalf("Failed to create file: %v", err)
		}
		if err := svc.UpdateContent(ctx, sceneID, "Fog rolled over the harbor"); err != nil {
			t.Fatalf("Failed to write content: %v", err)
		}
	})

	if _, err := os.Stat(filepath.Join(config.DataDir, "state.db")); err != nil {
		t.Fatalf("State database was not created: %v", err)
	}

	// Test 2: Reopen and check the state survived
	t.Run("Reopen", func(t *testing.T) {
		svc, err := service.New(ctx, config)
		if err != nil {
			t.Fatalf("Failed to reopen service: %v", err)
		}
		defer svc.Close()

		if got := svc.LastLoad().Source; got != "stored" {
			t.Errorf("Expected stored state, got %s", got)
		}
		if got := svc.Session().ActiveWorkspaceID; got != bookID {
			t.Errorf("Expected active book %s, got %s", bookID, got)
		}
		if got := svc.Session().ActiveNodeID; got != sceneID {
			t.Errorf("Expected active file %s, got %s", sceneID, got)
		}

		n, err := svc.Node(sceneID)
		if err != nil {
			t.Fatalf("Failed to get file: %v", err)
		}
		if n.WordCount != 5 {
			t.Errorf("Expected 5 words, got %d", n.WordCount)
		}

		results, err := svc.Search(ctx, "harbor")
		if err != nil {
			t.Fatalf("Search failed: %v", err)
		}
		if len(results) != 1 || results[0].NodeID != sceneID {
			t.Errorf("Expected one hit for %s, got %+v", sceneID, results)
		}

		if got := svc.Stats(1).TotalWords; got != 5 {
			t.Errorf("Expected 5 words written, got %d", got)
		}
	})
}
