package service

import "github.com/prometheus/client_golang/prometheus"

var (
	ordersCreated = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "shop_orders_created_total", Help: "Orders persisted"},
	)
	orderCreateFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "shop_order_create_failures_total", Help: "Order creations that failed, by stage"},
		[]string{"stage"},
	)
	orphanedItems = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "shop_order_items_orphaned_total", Help: "Order items left without an order"},
	)
	purgedItems = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "shop_order_items_purged_total", Help: "Orphan order items removed by reconciliation"},
	)
)

func init() {
	prometheus.MustRegister(ordersCreated, orderCreateFailures, orphanedItems, purgedItems)
}
