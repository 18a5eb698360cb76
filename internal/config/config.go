// Package config loads a resource-group tree from a YAML-shaped
// configuration tree. Loading configuration is out of scope for the
// admission core itself (resourcegroup.Root is built purely
// programmatically); this package is an ordinary external consumer of
// that surface, walking a tree and calling only the exported
// CreateRoot/GetOrCreateSubGroup primitives.
package config

import (
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/uber-go/tally"

	"github.com/palantircloud/resourcegroups/executor"
	"github.com/palantircloud/resourcegroups/resourcegroup"
)

// GroupConfig describes one node of a resource-group tree, loaded from
// YAML. SoftMemoryLimitMB is expressed in megabytes in config for
// readability; Build converts it to bytes.
type GroupConfig struct {
	Name              string        `yaml:"name"`
	MaxRunningQueries int           `yaml:"maxRunningQueries"`
	MaxQueuedQueries  int           `yaml:"maxQueuedQueries"`
	SoftMemoryLimitMB int64         `yaml:"softMemoryLimitMB"`
	SubGroups         []GroupConfig `yaml:"subGroups"`
}

// RootConfig is the top-level document: a single root group plus its
// descendants.
type RootConfig struct {
	Root GroupConfig `yaml:"root"`
}

// Build walks tree and constructs the corresponding resource-group
// tree, using submitter to run admitted queries and scope for the
// tree's metrics. It accumulates every per-group construction failure
// it encounters rather than stopping at the first one, so a config
// with several bad groups reports all of them at once.
func Build(tree RootConfig, submitter executor.Submitter, scope tally.Scope) (*resourcegroup.Root, error) {
	root, err := resourcegroup.CreateRoot(
		tree.Root.Name,
		tree.Root.MaxRunningQueries,
		tree.Root.MaxQueuedQueries,
		tree.Root.SoftMemoryLimitMB*(1<<20),
		submitter,
		scope,
	)
	if err != nil {
		return nil, errors.Wrapf(err, "building root group %q", tree.Root.Name)
	}

	var errs error
	for _, child := range tree.Root.SubGroups {
		buildSubTree(root.Group, child, &errs)
	}
	if errs != nil {
		log.WithError(errs).Warn("resourcegroup/config: some sub-groups failed to build")
		return root, errs
	}
	return root, nil
}

// buildSubTree constructs cfg and its descendants under parent,
// appending every construction failure it encounters to *errs instead
// of stopping at the first one. A node whose own construction fails is
// skipped along with its descendants, since there is no group to hang
// them off of.
func buildSubTree(parent *resourcegroup.Group, cfg GroupConfig, errs *error) {
	child, err := parent.GetOrCreateSubGroup(
		cfg.Name,
		cfg.MaxRunningQueries,
		cfg.MaxQueuedQueries,
		cfg.SoftMemoryLimitMB*(1<<20),
	)
	if err != nil {
		*errs = multierror.Append(*errs, errors.Wrapf(err, "building sub-group %q under %q", cfg.Name, parent.ID()))
		return
	}

	for _, grandchild := range cfg.SubGroups {
		buildSubTree(child, grandchild, errs)
	}
}
