// Package observability turns editor and run hooks into Prometheus metrics.
package observability
