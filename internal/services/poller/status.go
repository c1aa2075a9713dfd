package poller

import "github.com/evaratech/aquanode/internal/model"

// Reconcile derives a node's next lifecycle state from a poll outcome.
// Pure: the caller persists and broadcasts when changed is true.
//
// Only online and offline are driven by poll outcomes. Alert is set by
// external rule evaluation and is never downgraded here; provisioning is
// left for owner-level activation. Repeated identical candidates report
// changed=false, so a stable outcome emits no further events.
func Reconcile(current, candidate model.NodeState) (model.NodeState, bool) {
	if candidate != model.StateOnline && candidate != model.StateOffline {
		return current, false
	}
	if current == model.StateAlert || current == model.StateProvisioning {
		return current, false
	}
	if current == candidate {
		return current, false
	}
	return candidate, true
}
