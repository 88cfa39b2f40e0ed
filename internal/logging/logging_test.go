package logging

import (
	"bytes"
	"log"
	"os"
	"strings"
	"testing"
)

func TestFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(NewFilter("warn", &buf), "", 0)

	logger.Println("[DEBUG] scheduler: armed morning")
	logger.Println("[INFO] scheduler: started")
	logger.Println("[WARN] store: slow query")
	logger.Println("[ERROR] scheduler: dispatch failed")
	logger.Println("plain line")

	out := buf.String()
	for _, dropped := range []string{"armed morning", "started"} {
		if strings.Contains(out, dropped) {
			t.Errorf("line %q should be filtered", dropped)
		}
	}
	for _, kept := range []string{"slow query", "dispatch failed", "plain line"} {
		if !strings.Contains(out, kept) {
			t.Errorf("line %q should be kept", kept)
		}
	}
}

func TestSetup(t *testing.T) {
	var buf bytes.Buffer
	Setup("DEBUG", &buf)
	defer log.SetOutput(os.Stderr)

	log.Printf("[DEBUG] test: visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Fatalf("debug line missing: %q", buf.String())
	}
}
