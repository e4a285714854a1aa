// Package kener is the shared vocabulary of the status page core:
// monitor configuration, minute observations and their file codec,
// incident records, and the uptime formatting rules.
package kener
