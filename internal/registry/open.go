package registry

import (
	"fmt"

	"github.com/meshscope/backend-go/internal/domain"
)

// Supported backend names
const (
	BackendConsul     = "consul"
	BackendKubernetes = "kubernetes"
	BackendFile       = "file"
)

// Options carries the settings of every backend; only the selected one is used
type Options struct {
	Consul        ConsulConfig
	KubeConfig    string
	KubeNamespace string
	File          string
}

// Open constructs the gateway for the named backend
func Open(backend string, opts Options) (Gateway, error) {
	switch backend {
	case BackendConsul, "":
		return NewConsulGateway(opts.Consul)
	case BackendKubernetes:
		return NewKubernetesGateway(opts.KubeConfig, opts.KubeNamespace)
	case BackendFile:
		if opts.File == "" {
			return nil, fmt.Errorf("file backend requires a snapshot path")
		}
		return NewFileGateway(opts.File), nil
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownBackend, backend)
	}
}
