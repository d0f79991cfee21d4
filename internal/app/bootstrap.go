// Package app wires configuration, clients, and the controller loop
// into a runnable application.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"k8s.io/client-go/kubernetes"
	ctrl "sigs.k8s.io/controller-runtime/pkg/client/config"

	"github.com/expectedbehaviors/organizr-tab-controller/internal/config"
	"github.com/expectedbehaviors/organizr-tab-controller/internal/controller"
	"github.com/expectedbehaviors/organizr-tab-controller/internal/organizr"
	"github.com/expectedbehaviors/organizr-tab-controller/internal/watcher"
	"github.com/expectedbehaviors/organizr-tab-controller/pkg/logging"
)

const subsystem = "App"

// Application holds the wired-up components of one controller process.
type Application struct {
	cfg config.Config

	kube     kubernetes.Interface
	organizr *organizr.Client
	tracker  *watcher.Tracker
	ctrl     *controller.Controller
}

// NewApplication resolves configuration, initializes logging, and
// constructs every component. It does not start anything.
func NewApplication(configPath string) (*Application, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	initLogging(cfg.Logging)

	restConfig, err := ctrl.GetConfig()
	if err != nil {
		return nil, fmt.Errorf("load Kubernetes config: %w", err)
	}
	kube, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("create Kubernetes client: %w", err)
	}

	client := organizr.NewClient(cfg.Organizr.APIURL, cfg.Organizr.APIKey,
		organizr.WithAPIVersion(organizr.APIVersion(cfg.Organizr.APIVersion)),
		organizr.WithTimeout(cfg.Organizr.Timeout),
	)

	tracker := watcher.New(kube, watcher.Config{
		Namespaces:    cfg.Watch.Namespaces,
		ResourceTypes: cfg.Watch.ResourceTypes,
	})

	c := controller.New(client, tracker, controller.Options{
		SyncPolicy: cfg.SyncPolicy(),
		Interval:   cfg.Reconcile.Interval,
	})

	return &Application{
		cfg:      cfg,
		kube:     kube,
		organizr: client,
		tracker:  tracker,
		ctrl:     c,
	}, nil
}

// Run starts the controller and blocks until SIGINT/SIGTERM or a fatal
// error. The API key file watcher runs for the whole process lifetime so
// a follower replica picks up rotated credentials before it ever leads.
func (a *Application) Run(parent context.Context) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logging.Info(subsystem, "organizr-tab-controller starting (target: %s)", a.cfg.Organizr.APIURL)

	controller.WatchAPIKeyFile(ctx, a.cfg.Organizr.APIKeyFile, a.organizr)

	if a.cfg.LeaderElection.Enabled {
		return a.ctrl.RunWithLeaderElection(ctx, a.kube, controller.LeaderElectionOptions{
			Namespace: a.cfg.LeaderElection.Namespace,
			LeaseName: a.cfg.LeaderElection.LeaseName,
		})
	}
	return a.ctrl.Run(ctx)
}

func initLogging(cfg config.LoggingConfig) {
	level := logging.ParseLevel(cfg.Level)

	format := logging.FormatJSON
	if cfg.Format == "text" || cfg.Format == "console" {
		format = logging.FormatText
	}

	logging.Init(level, format, os.Stderr)
}
