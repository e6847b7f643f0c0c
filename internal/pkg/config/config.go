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

// Package config reads the synchronizer settings from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v6"
)

// Config holds the environment-driven settings of the synchronizer.
type Config struct {
	// SourceConfigMapName is the ConfigMap holding the configuration template.
	SourceConfigMapName string `env:"SOURCE_CONFIGMAP_NAME" envDefault:"backup-template"`

	// TargetConfigMapName is the prefix for the per-node output ConfigMaps;
	// the node name is appended as "<name>-<node>".
	TargetConfigMapName string `env:"TARGET_CONFIGMAP_NAME" envDefault:"backup-config"`

	// DirectoryKey is the list-valued field inside the configuration document
	// that receives the discovered directories.
	DirectoryKey string `env:"DIRECTORY_KEY" envDefault:"directories"`

	// StorageClassName filters which PersistentVolumes contribute directories.
	StorageClassName string `env:"STORAGE_CLASS_NAME" envDefault:"local-storage"`

	// Namespace is the fallback namespace, used when the service-account
	// namespace file is not present.
	Namespace string `env:"NAMESPACE"`
}

// Parse reads the configuration from the process environment.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.SourceConfigMapName == "" {
		return fmt.Errorf("source ConfigMap name cannot be empty")
	}

	if c.TargetConfigMapName == "" {
		return fmt.Errorf("target ConfigMap name cannot be empty")
	}

	if c.DirectoryKey == "" {
		return fmt.Errorf("directory key cannot be empty")
	}

	if c.StorageClassName == "" {
		return fmt.Errorf("storage class name cannot be empty")
	}

	return nil
}
