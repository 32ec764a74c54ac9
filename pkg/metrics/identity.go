package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// IdentityMetrics records provisioning and login-audit outcomes.
type IdentityMetrics struct {
	usersProvisioned   prometheus.Counter
	tenantsProvisioned prometheus.Counter
	provisionConflicts prometheus.Counter
	loginsRecorded     prometheus.Counter
	loginWriteFailures prometheus.Counter
	loginsDropped      prometheus.Counter
}

// NewIdentityMetrics registers the identity metrics on the provided registerer.
func NewIdentityMetrics(reg prometheus.Registerer) *IdentityMetrics {
	if reg == nil {
		return &IdentityMetrics{}
	}
	m := &IdentityMetrics{
		usersProvisioned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "identity_users_provisioned_total",
			Help: "Users created on first sign-in.",
		}),
		tenantsProvisioned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "identity_tenants_provisioned_total",
			Help: "Tenants created with a primary membership.",
		}),
		provisionConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "identity_provision_conflicts_total",
			Help: "Unique-constraint conflicts resolved by a compensating lookup.",
		}),
		loginsRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "identity_logins_recorded_total",
			Help: "Login events written to the audit table.",
		}),
		loginWriteFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "identity_login_write_failures_total",
			Help: "Login event writes that failed and were dropped.",
		}),
		loginsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "identity_logins_dropped_total",
			Help: "Login events dropped because the recorder queue was full.",
		}),
	}
	reg.MustRegister(
		m.usersProvisioned,
		m.tenantsProvisioned,
		m.provisionConflicts,
		m.loginsRecorded,
		m.loginWriteFailures,
		m.loginsDropped,
	)
	return m
}

// IncUserProvisioned counts a first-sign-in user creation.
func (m *IdentityMetrics) IncUserProvisioned() {
	if m == nil || m.usersProvisioned == nil {
		return
	}
	m.usersProvisioned.Inc()
}

// IncTenantProvisioned counts a tenant + primary membership creation.
func (m *IdentityMetrics) IncTenantProvisioned() {
	if m == nil || m.tenantsProvisioned == nil {
		return
	}
	m.tenantsProvisioned.Inc()
}

// IncProvisionConflict counts a lost insert race recovered by re-reading.
func (m *IdentityMetrics) IncProvisionConflict() {
	if m == nil || m.provisionConflicts == nil {
		return
	}
	m.provisionConflicts.Inc()
}

// IncLoginRecorded counts a persisted login event.
func (m *IdentityMetrics) IncLoginRecorded() {
	if m == nil || m.loginsRecorded == nil {
		return
	}
	m.loginsRecorded.Inc()
}

// IncLoginWriteFailure counts a swallowed audit write failure.
func (m *IdentityMetrics) IncLoginWriteFailure() {
	if m == nil || m.loginWriteFailures == nil {
		return
	}
	m.loginWriteFailures.Inc()
}

// IncLoginDropped counts an event rejected by a full recorder queue.
func (m *IdentityMetrics) IncLoginDropped() {
	if m == nil || m.loginsDropped == nil {
		return
	}
	m.loginsDropped.Inc()
}
