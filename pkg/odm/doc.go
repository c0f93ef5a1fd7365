// Package odm is a small in-process object-document-mapping layer that acts as
// the schema oracle for the serializer's type hinting driver. It maps document
// classes to scalar fields and references (one or many), loads that mapping
// from struct tags or YAML files, and exposes it through a DocumentManager and
// a ManagerRegistry. Persistence, sessions, and proxy generation are outside
// its scope; Configuration only carries the proxy settings so callers can hand
// them to whatever persistence layer they use.
package odm
