// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Timestamps are written in UTC. Report bucketing happens in the domain layer with
// the shop's configured location, never in SQL.
//
// Structure:
// - base.go: BaseModel shared by all tables
// - trade.go: sales and sale items
// - repair.go: repair orders and consumed materials
// - finance.go: cash book transactions
// - production.go: production orders
package models
