package registry

import (
	"context"
	"fmt"
	"sort"
	"strings"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/labels"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"

	"github.com/meshscope/backend-go/internal/domain"
)

// KubernetesGateway treats Kubernetes Services as the registry and the
// readiness of their backing pods as health checks
type KubernetesGateway struct {
	clientset kubernetes.Interface
	namespace string
}

// NewKubernetesGateway creates a gateway with in-cluster or kubeconfig auth
func NewKubernetesGateway(kubeconfig, namespace string) (*KubernetesGateway, error) {
	var cfg *rest.Config
	var err error

	if kubeconfig != "" {
		cfg, err = clientcmd.BuildConfigFromFlags("", kubeconfig)
	} else {
		cfg, err = rest.InClusterConfig()
		if err != nil {
			// Fallback to default kubeconfig
			cfg, err = clientcmd.BuildConfigFromFlags("", clientcmd.RecommendedHomeFile)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("k8s config: %w", err)
	}

	cs, err := kubernetes.NewForConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("k8s clientset: %w", err)
	}
	return NewKubernetesGatewayFromClientset(cs, namespace), nil
}

// NewKubernetesGatewayFromClientset wraps an existing clientset
func NewKubernetesGatewayFromClientset(cs kubernetes.Interface, namespace string) *KubernetesGateway {
	if namespace == "" {
		namespace = "default"
	}
	return &KubernetesGateway{clientset: cs, namespace: namespace}
}

// ListServices maps every Service in the namespace to a record.
// Annotations become metadata so upstream_services can be declared there.
func (g *KubernetesGateway) ListServices(ctx context.Context) ([]ServiceRecord, error) {
	services, err := g.clientset.CoreV1().Services(g.namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}

	records := make([]ServiceRecord, 0, len(services.Items))
	for _, svc := range services.Items {
		port := 0
		if len(svc.Spec.Ports) > 0 {
			port = int(svc.Spec.Ports[0].Port)
		}
		records = append(records, ServiceRecord{
			ID:      svc.Namespace + "/" + svc.Name,
			Name:    svc.Name,
			Address: svc.Spec.ClusterIP,
			Port:    port,
			Node:    svc.Namespace,
			Tags:    labelTags(svc.Labels),
			Meta:    svc.Annotations,
		})
	}
	return records, nil
}

// HealthChecksFor returns one readiness check per pod selected by the service
func (g *KubernetesGateway) HealthChecksFor(ctx context.Context, serviceID string) ([]CheckRecord, error) {
	namespace, name, ok := strings.Cut(serviceID, "/")
	if !ok {
		namespace, name = g.namespace, serviceID
	}

	svc, err := g.clientset.CoreV1().Services(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return nil, fmt.Errorf("get service %s: %w", serviceID, err)
	}
	return g.podChecks(ctx, svc)
}

// AllHealthChecks collects pod readiness checks for every service
func (g *KubernetesGateway) AllHealthChecks(ctx context.Context) ([]CheckRecord, error) {
	services, err := g.clientset.CoreV1().Services(g.namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}

	var checks []CheckRecord
	for i := range services.Items {
		svcChecks, err := g.podChecks(ctx, &services.Items[i])
		if err != nil {
			return nil, err
		}
		checks = append(checks, svcChecks...)
	}
	return checks, nil
}

// ListIntentions is not available from core Kubernetes APIs
func (g *KubernetesGateway) ListIntentions(ctx context.Context) ([]IntentionRecord, error) {
	return nil, domain.ErrIntentionsUnsupported
}

func (g *KubernetesGateway) podChecks(ctx context.Context, svc *corev1.Service) ([]CheckRecord, error) {
	if len(svc.Spec.Selector) == 0 {
		return []CheckRecord{}, nil
	}

	selector := labels.SelectorFromSet(labels.Set(svc.Spec.Selector)).String()
	pods, err := g.clientset.CoreV1().Pods(svc.Namespace).List(ctx, metav1.ListOptions{LabelSelector: selector})
	if err != nil {
		return nil, fmt.Errorf("list pods for %s: %w", svc.Name, err)
	}

	checks := make([]CheckRecord, 0, len(pods.Items))
	for _, pod := range pods.Items {
		status, output := podStatus(&pod)
		checks = append(checks, CheckRecord{
			ID:          "pod/" + pod.Name,
			Name:        "Pod " + pod.Name + " readiness",
			Status:      string(status),
			Output:      output,
			ServiceID:   svc.Namespace + "/" + svc.Name,
			ServiceName: svc.Name,
		})
	}
	return checks, nil
}

func podStatus(pod *corev1.Pod) (domain.HealthStatus, string) {
	if podReady(pod) {
		return domain.HealthPassing, "Pod is ready"
	}

	var details []string
	for _, cs := range pod.Status.ContainerStatuses {
		switch {
		case cs.State.Waiting != nil:
			details = append(details, fmt.Sprintf("container %s waiting: %s %s",
				cs.Name, cs.State.Waiting.Reason, cs.State.Waiting.Message))
		case cs.State.Terminated != nil:
			details = append(details, fmt.Sprintf("container %s terminated: %s (exit code %d)",
				cs.Name, cs.State.Terminated.Reason, cs.State.Terminated.ExitCode))
		}
	}
	for _, cond := range pod.Status.Conditions {
		if cond.Type == corev1.PodReady && cond.Message != "" {
			details = append(details, cond.Message)
		}
	}
	output := strings.TrimSpace(strings.Join(details, "; "))
	if output == "" {
		output = "Pod phase " + string(pod.Status.Phase)
	}

	if pod.Status.Phase == corev1.PodPending {
		return domain.HealthWarning, output
	}
	return domain.HealthCritical, output
}

func podReady(pod *corev1.Pod) bool {
	for _, cond := range pod.Status.Conditions {
		if cond.Type == corev1.PodReady {
			return cond.Status == corev1.ConditionTrue
		}
	}
	return false
}

func labelTags(l map[string]string) []string {
	tags := make([]string, 0, len(l))
	for k, v := range l {
		tags = append(tags, k+"="+v)
	}
	sort.Strings(tags)
	return tags
}
