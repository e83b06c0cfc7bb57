package gcp

import (
	"context"
	"fmt"
	"strings"

	compute "google.golang.org/api/compute/v1"

	"gcp-health-agent/internal/domain"
)

// AggregatedLister is the seam between the inventory and the Compute Engine
// API, so tests can serve canned pages.
type AggregatedLister interface {
	AggregatedList(ctx context.Context, project, pageToken string) (*compute.InstanceAggregatedList, error)
}

type computeLister struct {
	svc *compute.Service
}

func (l computeLister) AggregatedList(ctx context.Context, project, pageToken string) (*compute.InstanceAggregatedList, error) {
	call := l.svc.Instances.AggregatedList(project).Context(ctx)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}
	return call.Do()
}

// Inventory enumerates Compute Engine instances across all zones of a
// project. Both the running-VM count and the per-instance join consume this
// one implementation; each caller still performs its own listing.
type Inventory struct {
	lister AggregatedLister
}

// NewInventory builds an inventory backed by the real Compute Engine service
// using ambient credentials.
func NewInventory(ctx context.Context) (*Inventory, error) {
	svc, err := compute.NewService(ctx)
	if err != nil {
		return nil, fmt.Errorf("error creating compute service: %w", err)
	}
	return &Inventory{lister: computeLister{svc: svc}}, nil
}

// NewInventoryWithLister builds an inventory over any lister. Used by tests.
func NewInventoryWithLister(lister AggregatedLister) *Inventory {
	return &Inventory{lister: lister}
}

// ListInstances follows continuation tokens until a page carries none,
// accumulating every instance of every zone. There is no page or time limit;
// an empty result is valid. Zone and machine-type resource paths are reduced
// to their last segment.
func (inv *Inventory) ListInstances(ctx context.Context, project string) ([]domain.VM, error) {
	var vms []domain.VM
	pageToken := ""
	for {
		page, err := inv.lister.AggregatedList(ctx, project, pageToken)
		if err != nil {
			return nil, fmt.Errorf("error listing instances: %w", err)
		}
		for _, scoped := range page.Items {
			for _, inst := range scoped.Instances {
				vms = append(vms, domain.VM{
					Name:        inst.Name,
					Zone:        lastSegment(inst.Zone),
					MachineType: lastSegment(inst.MachineType),
					ID:          inst.Id,
					Status:      inst.Status,
				})
			}
		}
		pageToken = page.NextPageToken
		if pageToken == "" {
			break
		}
	}
	return vms, nil
}

func lastSegment(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}
	return path
}
