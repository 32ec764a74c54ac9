package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestIdentityMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewIdentityMetrics(reg)

	m.IncUserProvisioned()
	m.IncTenantProvisioned()
	m.IncLoginRecorded()
	m.IncLoginRecorded()
	m.IncLoginWriteFailure()
	m.IncProvisionConflict()
	m.IncLoginDropped()

	if got := testutil.ToFloat64(m.loginsRecorded); got != 2 {
		t.Fatalf("expected 2 recorded logins, got %v", got)
	}
	if got := testutil.ToFloat64(m.usersProvisioned); got != 1 {
		t.Fatalf("expected 1 provisioned user, got %v", got)
	}
	if got := testutil.ToFloat64(m.loginWriteFailures); got != 1 {
		t.Fatalf("expected 1 write failure, got %v", got)
	}
}

func TestIdentityMetricsExportThroughGatherer(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewIdentityMetrics(reg)

	m.IncUserProvisioned()
	m.IncLoginRecorded()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}

	exported := map[string]float64{}
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			exported[mf.GetName()] = metric.GetCounter().GetValue()
		}
	}

	expected := []string{
		"identity_users_provisioned_total",
		"identity_tenants_provisioned_total",
		"identity_provision_conflicts_total",
		"identity_logins_recorded_total",
		"identity_login_write_failures_total",
		"identity_logins_dropped_total",
	}
	for _, name := range expected {
		if _, ok := exported[name]; !ok {
			t.Fatalf("counter %s not registered with the gatherer", name)
		}
	}
	if exported["identity_users_provisioned_total"] != 1 {
		t.Fatalf("expected 1 provisioned user exported, got %v", exported["identity_users_provisioned_total"])
	}
	if exported["identity_logins_recorded_total"] != 1 {
		t.Fatalf("expected 1 recorded login exported, got %v", exported["identity_logins_recorded_total"])
	}
}

func TestIdentityMetricsNilSafe(t *testing.T) {
	var m *IdentityMetrics
	m.IncUserProvisioned()
	m.IncLoginRecorded()

	unregistered := NewIdentityMetrics(nil)
	unregistered.IncTenantProvisioned()
	unregistered.IncLoginDropped()
}
