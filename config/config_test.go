package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func TestServiceConfigApplyDefaults(t *testing.T) {
	t.Run("empty environment defaults to development", func(t *testing.T) {
		cfg := ServiceConfig{Name: "chatgate"}
		cfg.ApplyDefaults()
		if cfg.Environment != "development" {
			t.Errorf("expected 'development', got %q", cfg.Environment)
		}
		if !cfg.Debug {
			t.Error("expected debug=true for development")
		}
		if cfg.Logging.Level != "debug" {
			t.Errorf("expected debug log level, got %q", cfg.Logging.Level)
		}
	})

	t.Run("production keeps debug false", func(t *testing.T) {
		cfg := ServiceConfig{Name: "chatgate", Environment: "production"}
		cfg.ApplyDefaults()
		if cfg.Debug {
			t.Error("expected debug=false for production")
		}
		if cfg.Logging.Level != "info" {
			t.Errorf("expected info log level, got %q", cfg.Logging.Level)
		}
		if !cfg.IsProduction() {
			t.Error("expected IsProduction")
		}
	})
}

func TestServiceConfigValidate(t *testing.T) {
	valid := func(env string) ServiceConfig {
		cfg := ServiceConfig{Name: "chatgate", Environment: env}
		cfg.Logging.ApplyDefaults()
		return cfg
	}

	tests := []struct {
		name    string
		cfg     ServiceConfig
		wantErr string
	}{
		{"valid development", valid("development"), ""},
		{"valid staging", valid("staging"), ""},
		{"valid production", valid("production"), ""},
		{"missing name", ServiceConfig{Environment: "production"}, "config.name is required"},
		{"invalid environment", ServiceConfig{Name: "chatgate", Environment: "qa"}, "config.environment must be one of"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestServiceConfigValidateLogging(t *testing.T) {
	cfg := ServiceConfig{Name: "chatgate", Environment: "staging"}
	cfg.Logging.Level = "loud"
	cfg.Logging.Format = "json"
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "config.logging") {
		t.Errorf("expected logging error, got %v", err)
	}
}

type testConfig struct {
	ServiceConfig `yaml:",inline" mapstructure:",squash"`
	GatewayURL    string `yaml:"gateway_url" mapstructure:"gateway_url"`
	Server        struct {
		Port int `mapstructure:"port"`
	} `mapstructure:"server"`
}

func TestLoadConfigWithYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	content := `
name: chatctl
environment: staging
gateway_url: http://localhost:9000
server:
  port: 8081
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	var cfg testConfig
	if err := LoadConfig("chatctl", &cfg, WithConfigFile(path)); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Name != "chatctl" || cfg.Environment != "staging" {
		t.Errorf("unexpected service config %+v", cfg.ServiceConfig)
	}
	if cfg.GatewayURL != "http://localhost:9000" {
		t.Errorf("unexpected gateway url %q", cfg.GatewayURL)
	}
	if cfg.Server.Port != 8081 {
		t.Errorf("expected port 8081, got %d", cfg.Server.Port)
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("SERVER_PORT", "9191")

	var cfg testConfig
	if err := LoadConfig("chatctl", &cfg, WithConfigFile("/nonexistent/config.yml")); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Server.Port != 9191 {
		t.Errorf("expected env override 9191, got %d", cfg.Server.Port)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	var cfg testConfig
	err := LoadConfig("chatctl", &cfg,
		WithConfigFile("/nonexistent/config.yml"),
		WithDefault("gateway_url", "http://localhost:8080"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.GatewayURL != "http://localhost:8080" {
		t.Errorf("expected default gateway url, got %q", cfg.GatewayURL)
	}
}

type mockFS struct {
	files map[string]bool
}

func (m *mockFS) Exists(path string) bool         { return m.files[path] }
func (m *mockFS) LoadEnv(string) error            { return nil }
func (m *mockFS) UserConfigDir() (string, error) { return "/home/u/.config", nil }

func TestResolverFindsCmdConfig(t *testing.T) {
	fs := &mockFS{files: map[string]bool{"./cmd/chatgate/config.yml": true}}
	r := &Resolver{FileSystem: fs}
	files := r.ResolveFiles("chatgate", LoaderConfig{})
	if files.ConfigFile != "./cmd/chatgate/config.yml" {
		t.Errorf("unexpected config file %q", files.ConfigFile)
	}
}

func TestResolverFallsBackToUserConfigDir(t *testing.T) {
	want := filepath.Join("/home/u/.config", "chatgate", "chatctl.yml")
	fs := &mockFS{files: map[string]bool{want: true, "./.env": true}}
	r := &Resolver{FileSystem: fs}
	files := r.ResolveFiles("chatctl", LoaderConfig{})
	if files.ConfigFile != want {
		t.Errorf("expected %q, got %q", want, files.ConfigFile)
	}
	if files.EnvFile != "./.env" {
		t.Errorf("expected ./.env, got %q", files.EnvFile)
	}
}

func TestResolverExplicitPathsWin(t *testing.T) {
	r := &Resolver{FileSystem: &mockFS{}}
	files := r.ResolveFiles("chatgate", LoaderConfig{ConfigFile: "a.yml", EnvFile: "b.env"})
	if files.ConfigFile != "a.yml" || files.EnvFile != "b.env" {
		t.Errorf("unexpected %+v", files)
	}
}

func TestEnvKeyVariants(t *testing.T) {
	got := envKeyVariants("SERVER_CORS_ALLOWED_ORIGINS")
	for _, want := range []string{
		"server_cors_allowed_origins",
		"server.cors.allowed.origins",
		"server.cors_allowed_origins",
		"server.cors.allowed_origins",
	} {
		if !slices.Contains(got, want) {
			t.Errorf("missing variant %q in %v", want, got)
		}
	}
	if single := envKeyVariants("PORT"); len(single) != 1 || single[0] != "port" {
		t.Errorf("unexpected %v", single)
	}
}
