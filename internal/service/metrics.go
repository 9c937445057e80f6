package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	reviewQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_review_queries_total",
			Help: "Review list queries served, by rating filter.",
		},
		[]string{"rating"},
	)

	selectionsRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_selections_rejected_total",
			Help: "Configurator changes rejected by validation, by operation.",
		},
		[]string{"operation"},
	)

	checkoutsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_checkouts_total",
			Help: "Orders confirmed at checkout, by payment method.",
		},
		[]string{"payment_method"},
	)

	orderStatusChangesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_order_status_changes_total",
			Help: "Order status transitions, by source and target status.",
		},
		[]string{"from", "to"},
	)

	configurationConflictsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_configuration_conflicts_total",
			Help: "Configuration saves retried after a concurrent change.",
		},
	)

	catalogChangesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_catalog_changes_total",
			Help: "Back-office catalog edits, by action.",
		},
		[]string{"action"},
	)
)
