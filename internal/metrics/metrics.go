// Package metrics exposes prometheus counters for the auth flows.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	Registrations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "auth_registrations_total",
		Help: "Successful user registrations.",
	})

	// Logins is labelled by outcome: ok, invalid_credentials, rate_limited,
	// deactivated.
	Logins = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_logins_total",
		Help: "Login attempts by outcome.",
	}, []string{"outcome"})

	Refreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_token_refreshes_total",
		Help: "Refresh-token exchanges by outcome (ok, revoked, invalid).",
	}, []string{"outcome"})

	RevokedTokenRejections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "auth_revoked_token_rejections_total",
		Help: "Requests rejected because the presented token was blacklisted.",
	})

	CacheFailOpens = promauto.NewCounter(prometheus.CounterOpts{
		Name: "auth_cache_fail_open_total",
		Help: "Operations that proceeded despite an unavailable cache backend.",
	})
)
