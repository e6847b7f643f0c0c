/*
Copyright 2025 The Backup Config Synchronizer contributors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package config

import (
	"testing"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse()
	if err != nil {
		t.Fatalf("expected no error but got: %v", err)
	}

	if cfg.SourceConfigMapName != "backup-template" {
		t.Errorf("expected source 'backup-template', got %q", cfg.SourceConfigMapName)
	}
	if cfg.TargetConfigMapName != "backup-config" {
		t.Errorf("expected target 'backup-config', got %q", cfg.TargetConfigMapName)
	}
	if cfg.DirectoryKey != "directories" {
		t.Errorf("expected directory key 'directories', got %q", cfg.DirectoryKey)
	}
	if cfg.StorageClassName != "local-storage" {
		t.Errorf("expected storage class 'local-storage', got %q", cfg.StorageClassName)
	}
	if cfg.Namespace != "" {
		t.Errorf("expected empty namespace fallback, got %q", cfg.Namespace)
	}
}

func TestParseOverrides(t *testing.T) {
	t.Setenv("SOURCE_CONFIGMAP_NAME", "template")
	t.Setenv("TARGET_CONFIGMAP_NAME", "rendered")
	t.Setenv("DIRECTORY_KEY", "paths")
	t.Setenv("STORAGE_CLASS_NAME", "fast-local")
	t.Setenv("NAMESPACE", "backups")

	cfg, err := Parse()
	if err != nil {
		t.Fatalf("expected no error but got: %v", err)
	}

	if cfg.SourceConfigMapName != "template" {
		t.Errorf("expected source 'template', got %q", cfg.SourceConfigMapName)
	}
	if cfg.TargetConfigMapName != "rendered" {
		t.Errorf("expected target 'rendered', got %q", cfg.TargetConfigMapName)
	}
	if cfg.DirectoryKey != "paths" {
		t.Errorf("expected directory key 'paths', got %q", cfg.DirectoryKey)
	}
	if cfg.StorageClassName != "fast-local" {
		t.Errorf("expected storage class 'fast-local', got %q", cfg.StorageClassName)
	}
	if cfg.Namespace != "backups" {
		t.Errorf("expected namespace 'backups', got %q", cfg.Namespace)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			SourceConfigMapName: "backup-template",
			TargetConfigMapName: "backup-config",
			DirectoryKey:        "directories",
			StorageClassName:    "local-storage",
		}
	}

	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name:   "namespace may be empty",
			mutate: func(c *Config) { c.Namespace = "" },
		},
		{
			name:        "empty source name",
			mutate:      func(c *Config) { c.SourceConfigMapName = "" },
			expectError: true,
		},
		{
			name:        "empty target name",
			mutate:      func(c *Config) { c.TargetConfigMapName = "" },
			expectError: true,
		},
		{
			name:        "empty directory key",
			mutate:      func(c *Config) { c.DirectoryKey = "" },
			expectError: true,
		},
		{
			name:        "empty storage class",
			mutate:      func(c *Config) { c.StorageClassName = "" },
			expectError: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(cfg)

			err := cfg.Validate()

			if tc.expectError && err == nil {
				t.Errorf("expected error but got nil")
			}
			if !tc.expectError && err != nil {
				t.Errorf("expected no error but got: %v", err)
			}
		})
	}
}
