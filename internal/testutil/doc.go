// Package testutil provides the deterministic clock shared across
// package tests.
package testutil
