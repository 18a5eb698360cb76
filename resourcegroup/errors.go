package resourcegroup

import (
	"errors"

	pkgerrors "github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// ErrGroupNotLeaf is returned when Add is attempted on a group that has
// sub-groups, or when GetOrCreateSubGroup is attempted on a group that
// currently holds running or queued queries of its own.
var ErrGroupNotLeaf = errors.New("resourcegroup: group is not a leaf")

// ErrInvalidArgument is returned for a negative limit or an empty name.
var ErrInvalidArgument = errors.New("resourcegroup: invalid argument")

// lockNotHeld is a programmer error: a private helper was invoked
// without the root lock held. It is never returned to a caller.
func lockNotHeld(where string) {
	log.WithField("helper", where).Error("resourcegroup: helper invoked without root lock held")
	panic(pkgerrors.Errorf("resourcegroup: %s called without root lock held", where))
}

// invariantViolated is a programmer error: a recursive dispatch call
// into an eligible child returned false.
func invariantViolated(id ID) {
	log.WithField("group", id.String()).Error("resourcegroup: eligible sub-group had no query to start")
	panic(pkgerrors.Errorf("resourcegroup: invariant violated: eligible sub-group %s had no startable query", id.String()))
}
