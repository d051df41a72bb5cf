/*
Package ports defines the driven ports (interfaces) for the canvas engine.

These interfaces decouple the core logic from external implementations,
allowing the engine to work with various registry sources, asset backends,
and telemetry sinks.

# Key Interfaces

  - RegistryLoader: Supplies the one-shot ordered list of object descriptors.
  - AssetFetcher: Resolves opaque asset paths into decoded resources.
  - EventSink: Receives engine events for external telemetry.
*/
package ports
