// SPDX-License-Identifier: Apache-2.0
// Copyright 2025-2026 The Account Inttest Authors

package orchestrator

import (
	"context"
	"errors"
	"time"

	"github.com/go-logr/logr"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/types"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"
	"sigs.k8s.io/controller-runtime/pkg/client/interceptor"

	ginkgo "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	awsv1alpha1 "github.com/osd-sre/account-inttest/api/v1alpha1"
)

var _ = ginkgo.Describe("Orchestrator", func() {
	var (
		scheme *runtime.Scheme
		claim  *awsv1alpha1.AccountClaim
		ref    Reference
		probe  ReadinessProbe
	)

	const (
		name      = "test-claim"
		namespace = "test-claim-namespace"
	)

	newOrchestrator := func(c client.Client) *Orchestrator {
		// Short interval keeps the poll loops fast under test.
		return New(c, logr.Discard(), 20*time.Millisecond)
	}

	ginkgo.BeforeEach(func() {
		scheme = runtime.NewScheme()
		Expect(clientgoscheme.AddToScheme(scheme)).To(Succeed())
		Expect(awsv1alpha1.AddToScheme(scheme)).To(Succeed())

		claim = &awsv1alpha1.AccountClaim{
			ObjectMeta: metav1.ObjectMeta{
				Name:      name,
				Namespace: namespace,
			},
			Spec: awsv1alpha1.AccountClaimSpec{
				LegalEntity: awsv1alpha1.LegalEntity{Name: "LegalCorp. Inc.", ID: "abcdefg123456"},
			},
		}
		ref = Reference{
			GroupVersionKind: awsv1alpha1.GroupVersion.WithKind("AccountClaim"),
			Name:             name,
			Namespace:        namespace,
		}
		probe = StateProbe(
			[]string{string(awsv1alpha1.ClaimStatusReady)},
			[]string{string(awsv1alpha1.ClaimStatusError)},
			"status", "state",
		)
	})

	ginkgo.When("creating resources", func() {
		ginkgo.It("is idempotent", func() {
			c := fake.NewClientBuilder().WithScheme(scheme).Build()
			o := newOrchestrator(c)

			Expect(o.CreateIfNotExists(context.TODO(), claim.DeepCopy())).To(Succeed())
			Expect(o.CreateIfNotExists(context.TODO(), claim.DeepCopy())).To(Succeed())

			list := &awsv1alpha1.AccountClaimList{}
			Expect(c.List(context.TODO(), list, client.InNamespace(namespace))).To(Succeed())
			Expect(list.Items).To(HaveLen(1))
		})

		ginkgo.It("reports other submission failures", func() {
			c := fake.NewClientBuilder().WithScheme(scheme).WithInterceptorFuncs(interceptor.Funcs{
				Create: func(context.Context, client.WithWatch, client.Object, ...client.CreateOption) error {
					return errors.New("webhook rejected the object")
				},
			}).Build()
			o := newOrchestrator(c)

			Expect(o.CreateIfNotExists(context.TODO(), claim.DeepCopy())).To(HaveOccurred())
		})
	})

	ginkgo.When("waiting for readiness", func() {
		ginkgo.It("returns Ready once the claim state flips", func() {
			c := fake.NewClientBuilder().WithScheme(scheme).WithObjects(claim).Build()
			o := newOrchestrator(c)

			go func() {
				defer ginkgo.GinkgoRecover()
				time.Sleep(100 * time.Millisecond)
				fetched := &awsv1alpha1.AccountClaim{}
				Expect(c.Get(context.TODO(), types.NamespacedName{Name: name, Namespace: namespace}, fetched)).To(Succeed())
				fetched.Status.State = awsv1alpha1.ClaimStatusReady
				Expect(c.Update(context.TODO(), fetched)).To(Succeed())
			}()

			outcome, err := o.WaitForReady(context.TODO(), ref, probe, 5*time.Second)
			Expect(err).NotTo(HaveOccurred())
			Expect(outcome).To(Equal(Ready))
		})

		ginkgo.It("fails fast on a Failed state instead of exhausting the timeout", func() {
			claim.Status.State = awsv1alpha1.ClaimStatusError
			c := fake.NewClientBuilder().WithScheme(scheme).WithObjects(claim).Build()
			o := newOrchestrator(c)

			start := time.Now()
			outcome, err := o.WaitForReady(context.TODO(), ref, probe, 30*time.Second)
			Expect(err).NotTo(HaveOccurred())
			Expect(outcome).To(Equal(Failed))
			Expect(time.Since(start)).To(BeNumerically("<", 2*time.Second))
		})

		ginkgo.It("returns TimedOut when no terminal state is reached", func() {
			c := fake.NewClientBuilder().WithScheme(scheme).WithObjects(claim).Build()
			o := newOrchestrator(c)

			outcome, err := o.WaitForReady(context.TODO(), ref, probe, 150*time.Millisecond)
			Expect(err).NotTo(HaveOccurred())
			Expect(outcome).To(Equal(TimedOut))
		})

		ginkgo.It("treats a missing resource as pending until the deadline", func() {
			c := fake.NewClientBuilder().WithScheme(scheme).Build()
			o := newOrchestrator(c)

			outcome, err := o.WaitForReady(context.TODO(), ref, probe, 150*time.Millisecond)
			Expect(err).NotTo(HaveOccurred())
			Expect(outcome).To(Equal(TimedOut))
		})

		ginkgo.It("surfaces infrastructure errors distinctly", func() {
			c := fake.NewClientBuilder().WithScheme(scheme).WithInterceptorFuncs(interceptor.Funcs{
				Get: func(context.Context, client.WithWatch, client.ObjectKey, client.Object, ...client.GetOption) error {
					return errors.New("cluster unreachable")
				},
			}).Build()
			o := newOrchestrator(c)

			_, err := o.WaitForReady(context.TODO(), ref, probe, time.Second)
			Expect(err).To(HaveOccurred())
		})
	})

	ginkgo.When("deleting resources", func() {
		ginkgo.It("deletes and waits for removal", func() {
			c := fake.NewClientBuilder().WithScheme(scheme).WithObjects(claim).Build()
			o := newOrchestrator(c)

			Expect(o.DeleteIfExists(context.TODO(), claim.DeepCopy(), time.Second, false)).To(Succeed())

			err := c.Get(context.TODO(), types.NamespacedName{Name: name, Namespace: namespace}, &awsv1alpha1.AccountClaim{})
			Expect(err).To(HaveOccurred())
		})

		ginkgo.It("treats a missing resource as a no-op", func() {
			c := fake.NewClientBuilder().WithScheme(scheme).Build()
			o := newOrchestrator(c)

			Expect(o.DeleteIfExists(context.TODO(), claim.DeepCopy(), 0, false)).To(Succeed())
		})

		ginkgo.It("swallows failures when ignoreErrors is set", func() {
			c := fake.NewClientBuilder().WithScheme(scheme).WithInterceptorFuncs(interceptor.Funcs{
				Delete: func(context.Context, client.WithWatch, client.Object, ...client.DeleteOption) error {
					return errors.New("stuck finalizer")
				},
			}).Build()
			o := newOrchestrator(c)

			Expect(o.DeleteIfExists(context.TODO(), claim.DeepCopy(), 0, true)).To(Succeed())
			Expect(o.DeleteIfExists(context.TODO(), claim.DeepCopy(), 0, false)).To(HaveOccurred())
		})
	})

	ginkgo.When("bootstrapping namespaces", func() {
		ginkgo.It("creates and deletes idempotently", func() {
			c := fake.NewClientBuilder().WithScheme(scheme).Build()
			o := newOrchestrator(c)

			Expect(o.EnsureNamespace(context.TODO(), namespace)).To(Succeed())
			Expect(o.EnsureNamespace(context.TODO(), namespace)).To(Succeed())

			ns := &corev1.Namespace{}
			Expect(c.Get(context.TODO(), types.NamespacedName{Name: namespace}, ns)).To(Succeed())

			Expect(o.DeleteNamespace(context.TODO(), namespace, false)).To(Succeed())
			Expect(o.DeleteNamespace(context.TODO(), namespace, false)).To(Succeed())
		})
	})
})

var _ = ginkgo.Describe("StateProbe", func() {
	probe := StateProbe([]string{"Ready"}, []string{"Failed"}, "status", "state")

	ginkgo.It("classifies terminal and pending states", func() {
		Expect(probe(map[string]interface{}{"status": map[string]interface{}{"state": "Ready"}})).To(Equal(Ready))
		Expect(probe(map[string]interface{}{"status": map[string]interface{}{"state": "Failed"}})).To(Equal(Failed))
		Expect(probe(map[string]interface{}{"status": map[string]interface{}{"state": "Creating"}})).To(Equal(Pending))
		Expect(probe(map[string]interface{}{})).To(Equal(Pending))
	})
})
