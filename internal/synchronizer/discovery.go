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

	corev1 "k8s.io/api/core/v1"
)

// hostnameLabelKey is the node-affinity match-expression key that local
// PersistentVolumes use to pin themselves to a node.
const hostnameLabelKey = "kubernetes.io/hostname"

// nodeDirectories maps node names to the local directory paths of their
// PersistentVolumes, keeping nodes in first-seen listing order.
type nodeDirectories struct {
	order []string
	paths map[string][]string
}

func newNodeDirectories() *nodeDirectories {
	return &nodeDirectories{paths: map[string][]string{}}
}

func (n *nodeDirectories) add(node, path string) {
	if _, ok := n.paths[node]; !ok {
		n.order = append(n.order, node)
	}
	n.paths[node] = append(n.paths[node], path)
}

func (n *nodeDirectories) empty() bool {
	return len(n.order) == 0
}

// discoverNodeDirectories lists all PersistentVolumes (they are
// cluster-scoped) and collects the local paths of those matching the
// configured storage class. Duplicate paths are kept; deduplication happens
// when the paths are merged into the configuration document.
func (s *Synchronizer) discoverNodeDirectories(ctx context.Context) (*nodeDirectories, error) {
	pvList := &corev1.PersistentVolumeList{}
	if err := s.client.List(ctx, pvList); err != nil {
		return nil, fmt.Errorf("failed to list PersistentVolumes: %w", err)
	}

	found := newNodeDirectories()
	for i := range pvList.Items {
		pv := &pvList.Items[i]

		if pv.Spec.StorageClassName != s.cfg.StorageClassName {
			continue
		}

		if pv.Spec.Local == nil || pv.Spec.Local.Path == "" {
			s.log.Debugw("Skipping PersistentVolume without a local path", "persistentvolume", pv.Name)
			continue
		}

		node := volumeNodeName(pv)
		if node == "" {
			s.log.Debugw("Skipping PersistentVolume without a hostname affinity", "persistentvolume", pv.Name)
			continue
		}

		s.log.Debugw("Discovered local directory", "persistentvolume", pv.Name, "node", node, "path", pv.Spec.Local.Path)
		found.add(node, pv.Spec.Local.Path)
	}

	return found, nil
}

// volumeNodeName extracts the owning node from the volume's required
// node affinity: the first value of the first match expression keyed by
// kubernetes.io/hostname. Returns "" when no such expression exists.
func volumeNodeName(pv *corev1.PersistentVolume) string {
	affinity := pv.Spec.NodeAffinity
	if affinity == nil || affinity.Required == nil {
		return ""
	}

	for _, term := range affinity.Required.NodeSelectorTerms {
		for _, expr := range term.MatchExpressions {
			if expr.Key == hostnameLabelKey && len(expr.Values) > 0 {
				return expr.Values[0]
			}
		}
	}

	return ""
}
