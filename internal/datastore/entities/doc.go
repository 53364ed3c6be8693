// Package entities contains GORM models that map directly to database tables.
// These are persistence-layer structures separate from the alerting domain.
package entities
