// Package k8s is the optional cluster side channel of the suite. Scenarios drive the dashboard only;
// this package checks that Fleet is installed and collects diagnostics when a scenario fails.
package k8s

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	crdv1 "k8s.io/apiextensions-apiserver/pkg/apis/apiextensions/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/kubernetes"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/utils/ptr"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/yaml"

	"github.com/rancher/fleet-e2e/test/e2e/ginkgo/fixture/wait"
)

const (
	FleetGroup           = "fleet.cattle.io"
	FleetSystemNamespace = "cattle-fleet-system"
	// FleetControllerLabel selects the fleet-controller pods.
	FleetControllerLabel = "app=fleet-controller"

	// LogTailLines is how much controller log a failure report carries.
	LogTailLines int64 = 500
)

var (
	GitRepoListGVK = schema.GroupVersionKind{Group: FleetGroup, Version: "v1alpha1", Kind: "GitRepoList"}
	BundleListGVK  = schema.GroupVersionKind{Group: FleetGroup, Version: "v1alpha1", Kind: "BundleList"}
)

// requiredCRDs must all be served for the dashboard's Continuous Delivery pages to work.
var requiredCRDs = []string{"gitrepos", "bundles", "clusters", "clustergroups", "bundledeployments"}

// Clients bundles the typed client used for reads and the clientset used for pod logs.
type Clients struct {
	Client    client.Client
	Clientset kubernetes.Interface
}

// NewScheme returns a scheme holding the built-in types and CRDs.
func NewScheme() (*runtime.Scheme, error) {
	scheme := runtime.NewScheme()
	if err := clientgoscheme.AddToScheme(scheme); err != nil {
		return nil, err
	}
	if err := crdv1.AddToScheme(scheme); err != nil {
		return nil, err
	}
	return scheme, nil
}

// NewClients connects to the cluster described by kubeconfig.
func NewClients(kubeconfig string) (*Clients, error) {
	restConfig, err := clientcmd.BuildConfigFromFlags("", kubeconfig)
	if err != nil {
		return nil, fmt.Errorf("unable to load kubeconfig %s: %w", kubeconfig, err)
	}

	scheme, err := NewScheme()
	if err != nil {
		return nil, err
	}

	c, err := client.New(restConfig, client.Options{Scheme: scheme})
	if err != nil {
		return nil, fmt.Errorf("unable to create client: %w", err)
	}

	cs, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to create clientset: %w", err)
	}

	return &Clients{Client: c, Clientset: cs}, nil
}

// MissingFleetCRDs returns the Fleet resources the cluster does not serve.
func MissingFleetCRDs(ctx context.Context, c client.Client) ([]string, error) {
	crdList := crdv1.CustomResourceDefinitionList{}
	if err := c.List(ctx, &crdList); err != nil {
		return nil, fmt.Errorf("unable to list CRDs: %w", err)
	}

	served := map[string]bool{}
	for _, crd := range crdList.Items {
		if crd.Spec.Group == FleetGroup {
			served[crd.Spec.Names.Plural] = true
		}
	}

	var missing []string
	for _, plural := range requiredCRDs {
		if !served[plural] {
			missing = append(missing, plural)
		}
	}
	return missing, nil
}

// DeploymentsReady reports whether every Deployment in ns has observed its spec and has all replicas
// ready. It returns the name of the first Deployment that is not.
func DeploymentsReady(ctx context.Context, c client.Client, ns string) (bool, string, error) {
	var deplList appsv1.DeploymentList
	if err := c.List(ctx, &deplList, client.InNamespace(ns)); err != nil {
		return false, "", err
	}

	for _, depl := range deplList.Items {
		if depl.Generation != depl.Status.ObservedGeneration {
			return false, depl.Name, nil
		}
		if depl.Status.Replicas != depl.Status.ReadyReplicas {
			return false, depl.Name, nil
		}
	}
	return true, "", nil
}

// WaitForDeploymentsReady waits until DeploymentsReady holds for ns.
func WaitForDeploymentsReady(ctx context.Context, c client.Client, ns string, timeout time.Duration) error {
	_, err := wait.Until(ctx, func(ctx context.Context) (string, bool, error) {
		ready, pending, err := DeploymentsReady(ctx, c, ns)
		return pending, ready, err
	}, wait.WithTimeout(timeout), wait.WithInterval(time.Second), wait.WithDescription("deployments in %s to be ready", ns))
	return err
}

// GitRepoState is the part of a GitRepo status the suite reports on.
type GitRepoState struct {
	Namespace     string `json:"namespace"`
	Name          string `json:"name"`
	ReadyBundles  int64  `json:"readyBundles"`
	DesiredReady  int64  `json:"desiredReady"`
	Ready         bool   `json:"ready"`
	Commit        string `json:"commit,omitempty"`
	ReadyMessage  string `json:"readyMessage,omitempty"`
	ResourceCount int64  `json:"resourceCount"`
}

// String renders the state like the dashboard's bundle summary.
func (s GitRepoState) String() string {
	return fmt.Sprintf("%s/%s %d/%d ready=%t", s.Namespace, s.Name, s.ReadyBundles, s.DesiredReady, s.Ready)
}

// ListGitRepos returns the state of every GitRepo in ns, or in all namespaces when ns is empty.
// GitRepos are read unstructured so the suite does not pin a Fleet API version.
func ListGitRepos(ctx context.Context, c client.Client, ns string) ([]GitRepoState, error) {
	list := &unstructured.UnstructuredList{}
	list.SetGroupVersionKind(GitRepoListGVK)

	var opts []client.ListOption
	if ns != "" {
		opts = append(opts, client.InNamespace(ns))
	}
	if err := c.List(ctx, list, opts...); err != nil {
		return nil, fmt.Errorf("unable to list gitrepos: %w", err)
	}

	states := make([]GitRepoState, 0, len(list.Items))
	for _, item := range list.Items {
		states = append(states, gitRepoState(item))
	}
	return states, nil
}

func gitRepoState(obj unstructured.Unstructured) GitRepoState {
	s := GitRepoState{Namespace: obj.GetNamespace(), Name: obj.GetName()}

	s.ReadyBundles, _, _ = unstructured.NestedInt64(obj.Object, "status", "summary", "ready")
	s.DesiredReady, _, _ = unstructured.NestedInt64(obj.Object, "status", "summary", "desiredReady")
	s.Commit, _, _ = unstructured.NestedString(obj.Object, "status", "commit")
	s.ResourceCount, _, _ = unstructured.NestedInt64(obj.Object, "status", "resourceCounts", "desiredReady")

	conditions, _, _ := unstructured.NestedSlice(obj.Object, "status", "conditions")
	for _, raw := range conditions {
		cond, ok := raw.(map[string]any)
		if !ok || cond["type"] != "Ready" {
			continue
		}
		s.Ready = cond["status"] == string(corev1.ConditionTrue)
		if msg, ok := cond["message"].(string); ok {
			s.ReadyMessage = msg
		}
	}
	return s
}

// GetGitRepo returns the state of one GitRepo.
func GetGitRepo(ctx context.Context, c client.Client, ns, name string) (GitRepoState, error) {
	obj := &unstructured.Unstructured{}
	obj.SetGroupVersionKind(schema.GroupVersionKind{Group: FleetGroup, Version: "v1alpha1", Kind: "GitRepo"})
	if err := c.Get(ctx, client.ObjectKey{Namespace: ns, Name: name}, obj); err != nil {
		return GitRepoState{}, err
	}
	return gitRepoState(*obj), nil
}

// ListBundleNames returns the names of the bundles in ns created for repoName.
func ListBundleNames(ctx context.Context, c client.Client, ns, repoName string) ([]string, error) {
	list := &unstructured.UnstructuredList{}
	list.SetGroupVersionKind(BundleListGVK)
	if err := c.List(ctx, list, client.InNamespace(ns), client.MatchingLabels{"fleet.cattle.io/repo-name": repoName}); err != nil {
		return nil, fmt.Errorf("unable to list bundles: %w", err)
	}

	names := make([]string, 0, len(list.Items))
	for _, item := range list.Items {
		names = append(names, item.GetName())
	}
	return names, nil
}

// GitReposYAML renders the GitRepo states as YAML for failure reports.
func GitReposYAML(states []GitRepoState) (string, error) {
	out, err := yaml.Marshal(states)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// ControllerLogs returns the last tailLines lines of every fleet-controller pod.
func ControllerLogs(ctx context.Context, cs kubernetes.Interface, tailLines int64) (string, error) {
	pods, err := cs.CoreV1().Pods(FleetSystemNamespace).List(ctx, metav1.ListOptions{LabelSelector: FleetControllerLabel})
	if err != nil {
		return "", fmt.Errorf("unable to list fleet-controller pods: %w", err)
	}
	if len(pods.Items) == 0 {
		return "", fmt.Errorf("no pods match %s in %s", FleetControllerLabel, FleetSystemNamespace)
	}

	var sb strings.Builder
	for _, pod := range pods.Items {
		req := cs.CoreV1().Pods(pod.Namespace).GetLogs(pod.Name, &corev1.PodLogOptions{TailLines: ptr.To(tailLines)})
		stream, err := req.Stream(ctx)
		if err != nil {
			fmt.Fprintf(&sb, "pod %s: unable to stream logs: %v\n", pod.Name, err)
			continue
		}
		fmt.Fprintf(&sb, "pod %s:\n", pod.Name)
		_, err = io.Copy(&sb, stream)
		_ = stream.Close()
		if err != nil {
			fmt.Fprintf(&sb, "pod %s: unable to read logs: %v\n", pod.Name, err)
		}
	}
	return sb.String(), nil
}
