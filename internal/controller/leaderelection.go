package controller

import (
	"context"
	"fmt"
	"os"
	"time"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/leaderelection"
	"k8s.io/client-go/tools/leaderelection/resourcelock"

	"github.com/expectedbehaviors/organizr-tab-controller/pkg/logging"
)

// LeaderElectionOptions identify the Lease object used to elect the
// active replica.
type LeaderElectionOptions struct {
	Namespace string
	LeaseName string
}

// RunWithLeaderElection wraps Run in a Lease-based leader election so
// that only one replica reconciles at a time. Followers block until
// they acquire the lease; a leader that loses the lease exits so the
// process restarts cleanly rather than racing the new leader.
func (c *Controller) RunWithLeaderElection(ctx context.Context, cs kubernetes.Interface, opts LeaderElectionOptions) error {
	hostname, err := os.Hostname()
	if err != nil {
		return fmt.Errorf("determine leader election identity: %w", err)
	}
	identity := fmt.Sprintf("%s_%d", hostname, os.Getpid())

	lock := &resourcelock.LeaseLock{
		LeaseMeta: metav1.ObjectMeta{
			Namespace: opts.Namespace,
			Name:      opts.LeaseName,
		},
		Client: cs.CoordinationV1(),
		LockConfig: resourcelock.ResourceLockConfig{
			Identity: identity,
		},
	}

	runErr := make(chan error, 1)
	leaderelection.RunOrDie(ctx, leaderelection.LeaderElectionConfig{
		Lock:            lock,
		ReleaseOnCancel: true,
		LeaseDuration:   15 * time.Second,
		RenewDeadline:   10 * time.Second,
		RetryPeriod:     2 * time.Second,
		Callbacks: leaderelection.LeaderCallbacks{
			OnStartedLeading: func(leaderCtx context.Context) {
				logging.Info(subsystem, "Acquired leadership as %s", identity)
				runErr <- c.Run(leaderCtx)
			},
			OnStoppedLeading: func() {
				logging.Warn(subsystem, "Lost leadership, shutting down")
			},
			OnNewLeader: func(current string) {
				if current != identity {
					logging.Info(subsystem, "Current leader is %s, standing by", current)
				}
			},
		},
	})

	select {
	case err := <-runErr:
		return err
	default:
		return nil
	}
}
