/*
Package observability turns engine lifecycle hooks into Prometheus metrics
and structured log records.

Hooks from several observers are merged with Chain and handed to the engine
through cuepoint.WithLifecycleHooks.
*/
package observability
