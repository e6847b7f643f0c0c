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

package e2e_test

import (
	"context"
	"errors"
	"time"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/util/wait"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/e2e-framework/klient"
)

const (
	// e2eNamespace hosts the source and target ConfigMaps of the suite.
	e2eNamespace = "backup-sync-e2e"

	// e2eStorageClass marks the PersistentVolumes created by the suite so
	// cleanup never touches anything else in the cluster.
	e2eStorageClass = "backup-sync-e2e-local"
)

var errClientNotInitialized = errors.New("client is not initialized")

type suite struct {
	client client.Client
}

func (s *suite) withClient(kl klient.Client) error {
	scheme := runtime.NewScheme()

	cl, err := client.New(kl.RESTConfig(), client.Options{Scheme: scheme})
	if err != nil {
		return err
	}

	if err := corev1.SchemeBuilder.AddToScheme(scheme); err != nil {
		return err
	}

	s.client = cl
	return nil
}

func (s *suite) cleanupPersistentVolumes(ctx context.Context) error {
	if s.client == nil {
		return errClientNotInitialized
	}

	return waitFor(ctx, func(ctx context.Context) (bool, error) {
		pvs := corev1.PersistentVolumeList{}
		if err := s.client.List(ctx, &pvs); err != nil {
			return false, err
		}

		remaining := 0
		for i := range pvs.Items {
			pv := &pvs.Items[i]
			if pv.Spec.StorageClassName != e2eStorageClass {
				continue
			}

			remaining++
			if err := s.client.Delete(ctx, pv); err != nil && !apierrors.IsNotFound(err) {
				return false, nil
			}
		}

		return remaining == 0, nil
	})
}

func (s *suite) cleanupNamespace(ctx context.Context) error {
	if s.client == nil {
		return errClientNotInitialized
	}

	return waitFor(ctx, func(ctx context.Context) (bool, error) {
		ns := &corev1.Namespace{}
		err := s.client.Get(ctx, client.ObjectKey{Name: e2eNamespace}, ns)
		if apierrors.IsNotFound(err) {
			return true, nil
		}
		if err != nil {
			return false, err
		}

		if err := s.client.Delete(ctx, ns); err != nil && !apierrors.IsNotFound(err) {
			return false, nil
		}

		return false, nil
	})
}

func (s *suite) cleanup(ctx context.Context) error {
	pvErr := s.cleanupPersistentVolumes(ctx)
	nsErr := s.cleanupNamespace(ctx)

	if pvErr != nil {
		return pvErr
	}
	return nsErr
}

func waitFor(ctx context.Context, condition wait.ConditionWithContextFunc) error {
	return wait.PollUntilContextTimeout(ctx, time.Second, 2*time.Minute, true, condition)
}
