/*
Package domain contains the data model shared by the interactivity engines.

It defines declared variables, per-node visual states, branching rules,
triggers and the payloads published on the event bus. The package has no
knowledge of the bus, the document or persistence.

# Key Entities

  - Variable: a named, typed, scoped value with a default.
  - StateDef / ObjectDef: the visual states a node can be in.
  - BranchRule: an ordered navigation rule for a source unit.
  - Trigger: an (event, conditions, action, else-action) binding.
  - Snapshot: the persisted progress blob (variables, states, paths).
*/
package domain
