package config

import "testing"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("MAX_UPLOAD_MB", "")
	t.Setenv("REPORT_DIR", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Server.Port)
	}
	if cfg.Upload.MaxUploadMB != 32 {
		t.Errorf("MaxUploadMB = %d, want 32", cfg.Upload.MaxUploadMB)
	}
	if cfg.Report.Dir != "." {
		t.Errorf("Report.Dir = %q, want .", cfg.Report.Dir)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("MAX_UPLOAD_MB", "8")
	t.Setenv("REPORT_DIR", "/tmp/reports")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != "9090" || cfg.Upload.MaxUploadMB != 8 || cfg.Report.Dir != "/tmp/reports" {
		t.Errorf("Unexpected config: %+v", cfg)
	}
}

func TestLoad_InvalidUploadLimit(t *testing.T) {
	t.Setenv("MAX_UPLOAD_MB", "-1")
	if _, err := Load(); err == nil {
		t.Error("Expected validation error for negative upload limit")
	}
}
