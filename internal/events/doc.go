// Package events broadcasts track lifecycle transitions over NATS.
//
// Every status change a pipeline run persists can also be published as
// a small JSON event on {prefix}.track.{status}, which lets other
// systems react to finished or failed tracks without polling the
// catalog. Without a configured NATS URL the publisher is a noop.
package events
