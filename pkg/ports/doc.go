/*
Package ports defines the driven ports (interfaces) of the Botcraft editor.

These interfaces decouple the editor core from external implementations,
allowing sessions to be kept in memory or in a shared store such as Redis.

# Key Interfaces

  - GraphStore: Responsible for persisting and loading editing sessions.
  - DistributedLocker: Provides distributed locking for handling concurrent session access.
*/
package ports
