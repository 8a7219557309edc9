package database

import "embed"

// Migrations holds the versioned schema, applied by migration.Up.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory inside Migrations.
const MigrationsDir = "migrations"
