// Package models contains the GORM persistence models of the payment tables.
// They are kept apart from the domain types, which carry no ORM tags, and
// each model converts to and from its domain type with ToDomain and a
// ...FromDomain constructor.
package models
