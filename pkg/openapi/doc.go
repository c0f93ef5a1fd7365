// Package openapi renders serializer class metadata as OpenAPI 3 component
// schemas using kin-openapi.
package openapi
