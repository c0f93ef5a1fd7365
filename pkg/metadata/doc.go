// Package metadata defines the per-class property metadata consumed by the
// serializer, the Driver contract that produces it, and the caching Factory
// that fronts a driver chain. Type descriptors carry a name plus nested
// parameters so collection hints such as ArrayCollection<Comment> stay
// structured instead of being flattened into strings. Drivers live under
// pkg/driver; decorators that enrich driver output (for example the ODM type
// hinting driver) wrap a delegate Driver and return the same ClassMetadata
// shape.
package metadata
