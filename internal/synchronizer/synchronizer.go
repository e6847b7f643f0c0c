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

package synchronizer

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	kerrors "k8s.io/apimachinery/pkg/util/errors"
	ctrlruntimeclient "sigs.k8s.io/controller-runtime/pkg/client"
)

// configDataKey is the ConfigMap data entry holding the YAML-encoded
// configuration document, in both the source and the target ConfigMaps.
const configDataKey = "config.yaml"

// Config holds the configuration for the synchronizer.
type Config struct {
	Log    *zap.SugaredLogger
	Client ctrlruntimeclient.Client

	// Namespace is where the source ConfigMap lives and the per-node
	// ConfigMaps are written.
	Namespace string

	// SourceConfigMap holds the configuration template; it is only read.
	SourceConfigMap string

	// TargetConfigMap is the per-node output name prefix; the output for a
	// node is "<TargetConfigMap>-<node>".
	TargetConfigMap string

	// DirectoryKey is the list field in the document that receives the
	// discovered directories.
	DirectoryKey string

	// StorageClassName selects which PersistentVolumes contribute
	// directories.
	StorageClassName string
}

func (c *Config) validate() error {
	if c.Log == nil {
		return fmt.Errorf("log cannot be nil")
	}

	if c.Client == nil {
		return fmt.Errorf("client cannot be nil")
	}

	if c.Namespace == "" {
		return fmt.Errorf("namespace cannot be empty")
	}

	if c.SourceConfigMap == "" {
		return fmt.Errorf("source ConfigMap name cannot be empty")
	}

	if c.TargetConfigMap == "" {
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

// Synchronizer writes one ConfigMap per node, merging the directories of
// that node's local PersistentVolumes into the source configuration.
type Synchronizer struct {
	client ctrlruntimeclient.Client
	cfg    *Config
	log    *zap.SugaredLogger
}

func New(cfg *Config) (*Synchronizer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("failed to instantiate synchronizer: config is nil")
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("failed to instantiate synchronizer: %w", err)
	}

	return &Synchronizer{
		client: cfg.Client,
		cfg:    cfg,
		log:    cfg.Log,
	}, nil
}

// Run performs one synchronization pass. A node's failure does not abort the
// remaining nodes; all per-node failures are returned as an aggregate. Every
// write is idempotent, so a rerun after a partial failure converges.
func (s *Synchronizer) Run(ctx context.Context) error {
	source := &corev1.ConfigMap{}
	sourceKey := ctrlruntimeclient.ObjectKey{Namespace: s.cfg.Namespace, Name: s.cfg.SourceConfigMap}

	if err := s.client.Get(ctx, sourceKey, source); err != nil {
		if apierrors.IsNotFound(err) {
			return fmt.Errorf("source ConfigMap %s not found: %w", sourceKey, err)
		}
		return fmt.Errorf("failed to get source ConfigMap %s: %w", sourceKey, err)
	}

	raw := source.Data[configDataKey]
	s.log.Infow("Loaded source ConfigMap", "configmap", sourceKey.String(), "bytes", len(raw))

	// Reject an unparseable template before any target is touched.
	if _, err := ParseDocument(raw); err != nil {
		return fmt.Errorf("source ConfigMap %s: %w", sourceKey, err)
	}

	dirs, err := s.discoverNodeDirectories(ctx)
	if err != nil {
		return err
	}

	if dirs.empty() {
		s.log.Infow("No matching PersistentVolumes found, nothing to synchronize", "storageclass", s.cfg.StorageClassName)
		return nil
	}

	s.log.Infow("Discovered local directories", "nodes", len(dirs.order))

	var errs []error
	for _, node := range dirs.order {
		if err := s.syncNode(ctx, node, raw, dirs.paths[node]); err != nil {
			errs = append(errs, fmt.Errorf("node %q: %w", node, err))
		}
	}

	if len(errs) > 0 {
		return kerrors.NewAggregate(errs)
	}

	s.log.Info("Synchronization complete")
	return nil
}

// syncNode renders and upserts the ConfigMap for one node. The raw source
// document is re-parsed per node so an output never contains another node's
// directories.
func (s *Synchronizer) syncNode(ctx context.Context, node, raw string, paths []string) error {
	l := s.log.With("node", node)

	doc, err := ParseDocument(raw)
	if err != nil {
		return err
	}

	if doc.EnsureList(s.cfg.DirectoryKey) {
		l.Warnf("Created missing %q list in configuration", s.cfg.DirectoryKey)
	}

	added, err := doc.AppendUnique(s.cfg.DirectoryKey, paths)
	if err != nil {
		return err
	}
	for _, path := range added {
		l.Debugw("Added directory", "path", path)
	}

	payload, err := doc.Serialize()
	if err != nil {
		return err
	}

	name := fmt.Sprintf("%s-%s", s.cfg.TargetConfigMap, node)
	return s.upsertConfigMap(ctx, l, name, payload)
}

// upsertConfigMap creates the named ConfigMap or replaces its data with the
// single configuration entry.
func (s *Synchronizer) upsertConfigMap(ctx context.Context, l *zap.SugaredLogger, name, payload string) error {
	existing := &corev1.ConfigMap{}
	key := ctrlruntimeclient.ObjectKey{Namespace: s.cfg.Namespace, Name: name}

	err := s.client.Get(ctx, key, existing)
	if err != nil {
		if apierrors.IsNotFound(err) {
			l.Debugw("Creating ConfigMap", "configmap", key.String())

			cm := &corev1.ConfigMap{
				ObjectMeta: metav1.ObjectMeta{
					Name:      name,
					Namespace: s.cfg.Namespace,
				},
				Data: map[string]string{configDataKey: payload},
			}
			if err := s.client.Create(ctx, cm); err != nil {
				return fmt.Errorf("failed to create ConfigMap %s: %w", key, err)
			}

			l.Infow("Created ConfigMap", "configmap", key.String())
			return nil
		}

		return fmt.Errorf("failed to get ConfigMap %s: %w", key, err)
	}

	existing.Data = map[string]string{configDataKey: payload}
	if err := s.client.Update(ctx, existing); err != nil {
		return fmt.Errorf("failed to update ConfigMap %s: %w", key, err)
	}

	l.Infow("Updated ConfigMap", "configmap", key.String())
	return nil
}
