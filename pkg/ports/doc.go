/*
Package ports defines the driven ports (interfaces) for the cuepoint engine.

These interfaces decouple the interactivity engines from the host: media
playback, layer management, navigation, deferred work, configuration
sources and progress persistence are all supplied from outside.

# Key Interfaces

  - AudioController, LayerController: optional host services used by trigger actions.
  - Navigator: moves between content units when actions or branches ask to.
  - Scheduler: defers work until the document is ready.
  - ConfigLoader: loads a declarative configuration (file, memory).
  - SnapshotStore: persists progress snapshots per session.
  - DistributedLocker: coordinates concurrent session access across replicas.
*/
package ports
