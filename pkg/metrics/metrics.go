package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "dollpublish", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "dollpublish", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	// CredentialChecks counts verifications by outcome: memory, reloaded, miss.
	CredentialChecks = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "dollpublish", Name: "credential_checks_total", Help: "Credential verifications by outcome."},
		[]string{"outcome"},
	)
	RegistryReloads = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "dollpublish", Name: "registry_reloads_total", Help: "Credential registry reloads by result."},
		[]string{"result"},
	)
	DocumentWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "dollpublish", Name: "document_writes_total", Help: "Document saves and deletes by operation."},
		[]string{"op"},
	)
	// TemplateRenders counts page renders by the template tier that produced them:
	// override, default or fallback.
	TemplateRenders = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "dollpublish", Name: "template_renders_total", Help: "Page renders by template tier."},
		[]string{"tier"},
	)
	MirrorFailures = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "dollpublish", Name: "mirror_failures_total", Help: "Failed object-storage mirror operations."},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(CredentialChecks)
	reg.MustRegister(RegistryReloads)
	reg.MustRegister(DocumentWrites)
	reg.MustRegister(TemplateRenders)
	reg.MustRegister(MirrorFailures)
}
