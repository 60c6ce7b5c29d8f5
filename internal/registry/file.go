package registry

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileGateway serves a registry snapshot from a YAML file. The file is
// re-read on every call so edits show up without a restart.
type FileGateway struct {
	path string
}

type fileService struct {
	ServiceRecord `yaml:",inline"`
	Checks        []CheckRecord `yaml:"checks"`
}

type fileSnapshot struct {
	Services   []fileService     `yaml:"services"`
	NodeChecks []CheckRecord     `yaml:"node_checks"`
	Intentions []IntentionRecord `yaml:"intentions"`
}

// NewFileGateway creates a gateway backed by the snapshot at path
func NewFileGateway(path string) *FileGateway {
	return &FileGateway{path: path}
}

func (g *FileGateway) load() (*fileSnapshot, error) {
	data, err := os.ReadFile(g.path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var snap fileSnapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parse snapshot %s: %w", g.path, err)
	}
	return &snap, nil
}

// ListServices returns the services in the snapshot
func (g *FileGateway) ListServices(ctx context.Context) ([]ServiceRecord, error) {
	snap, err := g.load()
	if err != nil {
		return nil, err
	}
	records := make([]ServiceRecord, 0, len(snap.Services))
	for _, s := range snap.Services {
		records = append(records, s.ServiceRecord)
	}
	return records, nil
}

// HealthChecksFor returns the checks nested under the matching service
func (g *FileGateway) HealthChecksFor(ctx context.Context, serviceID string) ([]CheckRecord, error) {
	snap, err := g.load()
	if err != nil {
		return nil, err
	}
	for _, s := range snap.Services {
		if s.ID == serviceID {
			return bindChecks(s), nil
		}
	}
	return []CheckRecord{}, nil
}

// AllHealthChecks returns node checks followed by every service's checks
func (g *FileGateway) AllHealthChecks(ctx context.Context) ([]CheckRecord, error) {
	snap, err := g.load()
	if err != nil {
		return nil, err
	}
	checks := append([]CheckRecord{}, snap.NodeChecks...)
	for _, s := range snap.Services {
		checks = append(checks, bindChecks(s)...)
	}
	return checks, nil
}

// ListIntentions returns the snapshot's intentions
func (g *FileGateway) ListIntentions(ctx context.Context) ([]IntentionRecord, error) {
	snap, err := g.load()
	if err != nil {
		return nil, err
	}
	return snap.Intentions, nil
}

// bindChecks fills in the owning service on nested checks
func bindChecks(s fileService) []CheckRecord {
	checks := make([]CheckRecord, 0, len(s.Checks))
	for _, c := range s.Checks {
		if c.ServiceID == "" {
			c.ServiceID = s.ID
		}
		if c.ServiceName == "" {
			c.ServiceName = s.Name
		}
		checks = append(checks, c)
	}
	return checks
}
