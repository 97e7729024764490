// Package orchestration drives the coin core through explicit commands.
// A Session owns one tally and turns each Command into generate+record (or
// reset), persistence and observation. RunExperiment runs many independent
// sessions on a bounded worker pool.
package orchestration
