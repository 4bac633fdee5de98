package csm

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/clientcmd"

	"vtds-application-vshasta/internal/config"
	"vtds-application-vshasta/internal/core/domain"
	"vtds-application-vshasta/internal/core/ports/output"
)

type csmClient struct {
	client  kubernetes.Interface
	enabled bool
}

// NewCSMClient creates a client for verifying a deployed CSM system
// through its Kubernetes API. The kubeconfig is typically fetched off the
// PIT node once CSM install has run.
func NewCSMClient(cfg *config.CSMConfig) (ports.CSMClient, error) {
	if !cfg.Enabled {
		return &csmClient{enabled: false}, nil
	}

	kubeconfig := cfg.KubeConfigPath
	if kubeconfig == "" {
		home, _ := os.UserHomeDir()
		kubeconfig = filepath.Join(home, ".kube", "config")
	}

	restCfg, err := clientcmd.BuildConfigFromFlags("", kubeconfig)
	if err != nil {
		return nil, fmt.Errorf("build k8s config: %w", err)
	}

	client, err := kubernetes.NewForConfig(restCfg)
	if err != nil {
		return nil, fmt.Errorf("create k8s client: %w", err)
	}

	return &csmClient{client: client, enabled: true}, nil
}

func (c *csmClient) IsAvailable() bool {
	return c.enabled
}

func (c *csmClient) NodeStatuses(ctx context.Context) ([]domain.CSMNodeStatus, error) {
	nodes, err := c.client.CoreV1().Nodes().List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("list CSM nodes: %w", err)
	}

	statuses := make([]domain.CSMNodeStatus, 0, len(nodes.Items))
	for _, node := range nodes.Items {
		statuses = append(statuses, domain.CSMNodeStatus{
			Name:           node.Name,
			Ready:          nodeReady(&node),
			KubeletVersion: node.Status.NodeInfo.KubeletVersion,
		})
	}
	return statuses, nil
}

func nodeReady(node *corev1.Node) bool {
	for _, cond := range node.Status.Conditions {
		if cond.Type == corev1.NodeReady {
			return cond.Status == corev1.ConditionTrue
		}
	}
	return false
}
