// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The Account Inttest Authors

// Package orchestrator creates declarative resources idempotently and
// polls them toward a terminal readiness outcome under a deadline.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/go-logr/logr"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/apimachinery/pkg/util/wait"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/osd-sre/account-inttest/internal/query"
)

// DefaultInterval is the polling interval used when none is configured.
const DefaultInterval = 10 * time.Second

// Reference identifies a cluster-managed object by kind, name and namespace.
type Reference struct {
	schema.GroupVersionKind
	Name      string
	Namespace string
}

func (r Reference) String() string {
	if r.Namespace == "" {
		return fmt.Sprintf("%s %s", r.Kind, r.Name)
	}
	return fmt.Sprintf("%s %s/%s", r.Kind, r.Namespace, r.Name)
}

// WaitOutcome is the terminal result of a readiness wait.
type WaitOutcome int

const (
	// Pending means no terminal condition held yet.
	Pending WaitOutcome = iota
	// Ready means the readiness condition held.
	Ready
	// Failed means the control plane reported a terminal failure.
	Failed
	// TimedOut means the deadline elapsed with the resource still pending.
	TimedOut
)

func (w WaitOutcome) String() string {
	switch w {
	case Ready:
		return "Ready"
	case Failed:
		return "Failed"
	case TimedOut:
		return "TimedOut"
	default:
		return "Pending"
	}
}

// ReadinessProbe evaluates a fetched document. It must return Pending,
// Ready or Failed; Ready and Failed are terminal and stop the poll.
type ReadinessProbe func(doc map[string]interface{}) WaitOutcome

// StateProbe builds a probe over a status string field, classifying its
// value against terminal ready and failed sets. An absent field is Pending.
func StateProbe(ready, failed []string, fields ...string) ReadinessProbe {
	return func(doc map[string]interface{}) WaitOutcome {
		state, ok := query.Path(doc, fields...).String()
		if !ok {
			return Pending
		}
		for _, v := range ready {
			if state == v {
				return Ready
			}
		}
		for _, v := range failed {
			if state == v {
				return Failed
			}
		}
		return Pending
	}
}

// Orchestrator wraps a controller-runtime client with the idempotent
// create / bounded wait / best-effort delete operations scenarios need.
type Orchestrator struct {
	client   client.Client
	log      logr.Logger
	interval time.Duration
}

// New creates an Orchestrator. A non-positive interval falls back to
// DefaultInterval.
func New(c client.Client, log logr.Logger, interval time.Duration) *Orchestrator {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Orchestrator{client: c, log: log, interval: interval}
}

// Client exposes the underlying client for typed access.
func (o *Orchestrator) Client() client.Client {
	return o.client
}

// CreateIfNotExists submits a resource and treats AlreadyExists as success.
func (o *Orchestrator) CreateIfNotExists(ctx context.Context, obj client.Object) error {
	err := o.client.Create(ctx, obj)
	if apierrors.IsAlreadyExists(err) {
		o.log.Info("resource already exists, reusing",
			"name", obj.GetName(), "namespace", obj.GetNamespace())
		return nil
	}
	if err != nil {
		return fmt.Errorf("create %s/%s: %w", obj.GetNamespace(), obj.GetName(), err)
	}
	o.log.Info("created resource", "name", obj.GetName(), "namespace", obj.GetNamespace())
	return nil
}

// Get fetches a resource by reference as an unstructured document.
func (o *Orchestrator) Get(ctx context.Context, ref Reference) (*unstructured.Unstructured, error) {
	u := &unstructured.Unstructured{}
	u.SetGroupVersionKind(ref.GroupVersionKind)
	key := types.NamespacedName{Name: ref.Name, Namespace: ref.Namespace}
	if err := o.client.Get(ctx, key, u); err != nil {
		return nil, err
	}
	return u, nil
}

// GetSecret fetches a secret by name and namespace.
func (o *Orchestrator) GetSecret(ctx context.Context, name, namespace string) (*corev1.Secret, error) {
	secret := &corev1.Secret{}
	key := types.NamespacedName{Name: name, Namespace: namespace}
	if err := o.client.Get(ctx, key, secret); err != nil {
		return nil, err
	}
	return secret, nil
}

// WaitForReady polls ref at the configured interval until the probe
// reports a terminal outcome or the timeout elapses. A Failed status
// returns immediately rather than exhausting the deadline; a resource
// that does not exist yet counts as Pending. The returned error is set
// only for infrastructure failures, never for Failed or TimedOut.
func (o *Orchestrator) WaitForReady(
	ctx context.Context,
	ref Reference,
	probe ReadinessProbe,
	timeout time.Duration,
) (WaitOutcome, error) {
	outcome := Pending
	o.log.Info("waiting for resource to become ready", "resource", ref.String(), "timeout", timeout)

	err := wait.PollUntilContextTimeout(ctx, o.interval, timeout, true, func(ctx context.Context) (bool, error) {
		u, err := o.Get(ctx, ref)
		if apierrors.IsNotFound(err) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		switch probe(u.Object) {
		case Ready:
			outcome = Ready
			return true, nil
		case Failed:
			outcome = Failed
			return true, nil
		default:
			return false, nil
		}
	})

	switch {
	case err == nil:
		o.log.Info("wait finished", "resource", ref.String(), "outcome", outcome.String())
		return outcome, nil
	case wait.Interrupted(err):
		o.log.Info("wait finished", "resource", ref.String(), "outcome", TimedOut.String())
		return TimedOut, nil
	default:
		return Pending, fmt.Errorf("poll %s: %w", ref.String(), err)
	}
}

// DeleteIfExists requests deletion of obj, treating NotFound as a no-op.
// With a positive timeout it also polls until the object is gone. When
// ignoreErrors is set, failures are logged and swallowed so one stuck
// resource does not abort the rest of a teardown.
func (o *Orchestrator) DeleteIfExists(
	ctx context.Context,
	obj client.Object,
	timeout time.Duration,
	ignoreErrors bool,
) error {
	err := o.delete(ctx, obj, timeout)
	if err != nil && ignoreErrors {
		o.log.Error(err, "ignoring deletion failure",
			"name", obj.GetName(), "namespace", obj.GetNamespace())
		return nil
	}
	return err
}

func (o *Orchestrator) delete(ctx context.Context, obj client.Object, timeout time.Duration) error {
	err := o.client.Delete(ctx, obj)
	if apierrors.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", obj.GetNamespace(), obj.GetName(), err)
	}
	o.log.Info("requested deletion", "name", obj.GetName(), "namespace", obj.GetNamespace())
	if timeout <= 0 {
		return nil
	}

	key := types.NamespacedName{Name: obj.GetName(), Namespace: obj.GetNamespace()}
	err = wait.PollUntilContextTimeout(ctx, o.interval, timeout, true, func(ctx context.Context) (bool, error) {
		getErr := o.client.Get(ctx, key, obj)
		if apierrors.IsNotFound(getErr) {
			return true, nil
		}
		if getErr != nil {
			return false, getErr
		}
		return false, nil
	})
	if err != nil {
		return fmt.Errorf("wait for deletion of %s/%s: %w", obj.GetNamespace(), obj.GetName(), err)
	}
	return nil
}

// EnsureNamespace creates a namespace if it does not exist.
func (o *Orchestrator) EnsureNamespace(ctx context.Context, name string) error {
	ns := &corev1.Namespace{
		ObjectMeta: metav1.ObjectMeta{Name: name},
	}
	if err := o.CreateIfNotExists(ctx, ns); err != nil {
		return fmt.Errorf("ensure namespace %s: %w", name, err)
	}
	return nil
}

// DeleteNamespace deletes a namespace best-effort, without waiting.
func (o *Orchestrator) DeleteNamespace(ctx context.Context, name string, ignoreErrors bool) error {
	ns := &corev1.Namespace{
		ObjectMeta: metav1.ObjectMeta{Name: name},
	}
	return o.DeleteIfExists(ctx, ns, 0, ignoreErrors)
}
