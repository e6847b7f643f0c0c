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

package kubernetes

import (
	"fmt"
	"os"
	"strings"
)

// ServiceAccountNamespacePath is where the kubelet mounts the namespace of
// the pod's service account.
const ServiceAccountNamespacePath = "/var/run/secrets/kubernetes.io/serviceaccount/namespace"

// ResolveNamespace determines the operating namespace. The mounted
// service-account namespace file takes precedence; the fallback value is
// used when the file is absent or empty.
func ResolveNamespace(path, fallback string) (string, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		if ns := strings.TrimSpace(string(data)); ns != "" {
			return ns, nil
		}
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to read namespace file %q: %w", path, err)
	}

	if fallback != "" {
		return fallback, nil
	}

	return "", fmt.Errorf("namespace is not set: %q is missing and no NAMESPACE fallback is configured", path)
}
