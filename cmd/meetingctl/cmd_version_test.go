package main

import "testing"

func TestVersionCmd_Run(t *testing.T) {
	app := &App{JSON: false}
	cmd := &VersionCmd{}
	if err := cmd.Run(app); err != nil {
		t.Fatalf("expected version to succeed, got %v", err)
	}
}
