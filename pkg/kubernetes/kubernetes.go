package kubernetes

import (
	"context"
	"fmt"
	"os"

	"github.com/sethvargo/go-envconfig"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

// Config uses KUBECONFIG when set and falls back to the in-cluster config.
func Config() (*rest.Config, error) {
	if kubeconfig := os.Getenv("KUBECONFIG"); kubeconfig != "" {
		return clientcmd.BuildConfigFromFlags("", kubeconfig)
	}
	return rest.InClusterConfig()
}

func NewClientset() (kubernetes.Interface, error) {
	config, err := Config()
	if err != nil {
		return nil, fmt.Errorf("error getting Kubernetes config: %v", err)
	}
	clientset, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("error getting Kubernetes clientset: %v", err)
	}
	return clientset, nil
}

// SecretLookuper exposes the keys of a Secret as environment variables.
func SecretLookuper(ctx context.Context, clientset kubernetes.Interface, name, namespace string) (envconfig.Lookuper, error) {
	secret, err := clientset.CoreV1().Secrets(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return nil, fmt.Errorf("error requesting '%s' Secret in namespace '%s': %v", name, namespace, err)
	}
	vars := make(map[string]string, len(secret.Data)+len(secret.StringData))
	for k, v := range secret.Data {
		vars[k] = string(v)
	}
	for k, v := range secret.StringData {
		vars[k] = v
	}
	return envconfig.MapLookuper(vars), nil
}
