package poller

import (
	"testing"

	"github.com/evaratech/aquanode/internal/model"
)

func TestReconcileOnlineOfflineTransitions(t *testing.T) {
	cases := []struct {
		current, candidate, want model.NodeState
		changed                  bool
	}{
		{model.StateOffline, model.StateOnline, model.StateOnline, true},
		{model.StateOnline, model.StateOffline, model.StateOffline, true},
		{model.StateOnline, model.StateOnline, model.StateOnline, false},
		{model.StateOffline, model.StateOffline, model.StateOffline, false},
	}
	for _, c := range cases {
		got, changed := Reconcile(c.current, c.candidate)
		if got != c.want || changed != c.changed {
			t.Fatalf("Reconcile(%s, %s) = (%s, %v), want (%s, %v)",
				c.current, c.candidate, got, changed, c.want, c.changed)
		}
	}
}

func TestReconcileIdempotent(t *testing.T) {
	// Two identical candidates produce exactly one change in total.
	state := model.StateOffline
	events := 0

	next, changed := Reconcile(state, model.StateOnline)
	if changed {
		events++
		state = next
	}
	_, changed = Reconcile(state, model.StateOnline)
	if changed {
		events++
	}
	if events != 1 {
		t.Fatalf("events = %d, want exactly 1", events)
	}
}

func TestReconcileNeverDowngradesAlert(t *testing.T) {
	for _, candidate := range []model.NodeState{model.StateOnline, model.StateOffline} {
		got, changed := Reconcile(model.StateAlert, candidate)
		if changed || got != model.StateAlert {
			t.Fatalf("alert downgraded to %s by poll outcome %s", got, candidate)
		}
	}
}

func TestReconcileLeavesProvisioningAlone(t *testing.T) {
	got, changed := Reconcile(model.StateProvisioning, model.StateOnline)
	if changed || got != model.StateProvisioning {
		t.Fatal("provisioning must only be cleared by owner-level updates")
	}
}

func TestReconcileIgnoresNonPollCandidates(t *testing.T) {
	// The poller never proposes alert; defend against it anyway.
	got, changed := Reconcile(model.StateOnline, model.StateAlert)
	if changed || got != model.StateOnline {
		t.Fatal("reconcile accepted a candidate outside online/offline")
	}
}
