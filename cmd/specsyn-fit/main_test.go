package main

import (
	"path/filepath"
	"testing"
)

func TestDefaultReportPath(t *testing.T) {
	got := defaultReportPath(filepath.Join("out", "fitted.json"))
	if want := filepath.Join("out", "fitted.report.json"); got != want {
		t.Fatalf("defaultReportPath() = %q, want %q", got, want)
	}
}

func TestLoadBase(t *testing.T) {
	if _, err := loadBase("a.json", "sampleRate=8000"); err == nil {
		t.Fatalf("expected error when both sources are given")
	}
	st, err := loadBase("", "#evenAmplShift=-3")
	if err != nil {
		t.Fatalf("loadBase: %v", err)
	}
	if st.EvenAmplShift != -3 {
		t.Fatalf("EvenAmplShift = %g, want -3", st.EvenAmplShift)
	}
	if _, err := loadBase(filepath.Join(t.TempDir(), "missing.json"), ""); err == nil {
		t.Fatalf("expected error for missing preset")
	}
}
