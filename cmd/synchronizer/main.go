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

package main

import (
	"github.com/go-logr/zapr"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/kubebackup/backup-config-synchronizer/internal/pkg/config"
	"github.com/kubebackup/backup-config-synchronizer/internal/pkg/kubernetes"
	bcslog "github.com/kubebackup/backup-config-synchronizer/internal/pkg/log"
	"github.com/kubebackup/backup-config-synchronizer/internal/synchronizer"

	ctrl "sigs.k8s.io/controller-runtime"
	ctrlruntimelog "sigs.k8s.io/controller-runtime/pkg/log"
)

type flags struct {
	kubeconfig string
}

func main() {
	var f flags
	logFlags := bcslog.NewDefaultOptions()
	logFlags.AddPFlags(pflag.CommandLine)

	pflag.StringVar(&f.kubeconfig, "kubeconfig", "", "Path to a kubeconfig file, used when in-cluster credentials are unavailable")
	pflag.Parse()

	rawLog := bcslog.New(logFlags.Debug, logFlags.Format)
	l := rawLog.Sugar()
	ctrlruntimelog.SetLogger(zapr.NewLogger(rawLog.WithOptions(zap.AddCallerSkip(1))))

	cfg, err := config.Parse()
	if err != nil {
		l.Fatalf("Failed to read configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		l.Fatalf("Invalid configuration: %v", err)
	}

	namespace, err := kubernetes.ResolveNamespace(kubernetes.ServiceAccountNamespacePath, cfg.Namespace)
	if err != nil {
		l.Fatalf("Failed to resolve namespace: %v", err)
	}

	restConfig, err := kubernetes.NewRESTConfig(l, f.kubeconfig)
	if err != nil {
		l.Fatalf("Failed to load client credentials: %v", err)
	}

	client, err := kubernetes.NewClient(restConfig)
	if err != nil {
		l.Fatalf("Failed to create Kubernetes client: %v", err)
	}

	sync, err := synchronizer.New(&synchronizer.Config{
		Log:              l.Named("synchronizer"),
		Client:           client,
		Namespace:        namespace,
		SourceConfigMap:  cfg.SourceConfigMapName,
		TargetConfigMap:  cfg.TargetConfigMapName,
		DirectoryKey:     cfg.DirectoryKey,
		StorageClassName: cfg.StorageClassName,
	})
	if err != nil {
		l.Fatalf("Failed to create synchronizer: %v", err)
	}

	l.Infow("Starting backup configuration synchronizer",
		"namespace", namespace,
		"source", cfg.SourceConfigMapName,
		"target", cfg.TargetConfigMapName,
		"storageclass", cfg.StorageClassName,
	)

	if err := sync.Run(ctrl.SetupSignalHandler()); err != nil {
		l.Fatalf("Synchronization failed: %v", err)
	}
}
