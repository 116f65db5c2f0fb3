/*
Package session orchestrates access to persisted learner progress.

A Manager serializes work on one session across goroutines and, with a
DistributedLocker, across replicas. Apply restores a session into an engine,
runs the caller's events, and saves the resulting snapshot under the same lock.
*/
package session
