// Package main provides a one-off helper that rewrites Stripe IDs inside an
// application SQLite database after a migration: columns still holding
// old-account IDs are updated to the new-account IDs from the mapping file.
// Each column is rewritten in its own transaction, so an interrupted run
// leaves every table either fully rewritten or untouched.
//
// Usage:
//
//	go run ./cmd/remap --db app.db --map ./data/id_map.json \
//	  --rewrite users.stripe_customer_id=customers \
//	  --rewrite plans.stripe_price_id=prices
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"regexp"
	"slices"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/Mit17092001/Stripe-migration-plan/internal/logger"
	"github.com/Mit17092001/Stripe-migration-plan/internal/mapstore"
)

// identPattern accepts plain SQL identifiers. Table and column names end up
// in the statement text, so anything else is rejected outright.
var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// rewriteSpec is one table.column=kind directive.
type rewriteSpec struct {
	table  string
	column string
	kind   mapstore.Kind
}

type rewriteList []rewriteSpec

func (l *rewriteList) String() string {
	parts := make([]string, 0, len(*l))
	for _, s := range *l {
		parts = append(parts, fmt.Sprintf("%s.%s=%s", s.table, s.column, s.kind))
	}
	return strings.Join(parts, ",")
}

func (l *rewriteList) Set(value string) error {
	spec, err := parseRewrite(value)
	if err != nil {
		return err
	}
	*l = append(*l, spec)
	return nil
}

func parseRewrite(value string) (rewriteSpec, error) {
	lhs, kindName, ok := strings.Cut(value, "=")
	if !ok {
		return rewriteSpec{}, fmt.Errorf("expected table.column=kind, got %q", value)
	}
	table, column, ok := strings.Cut(lhs, ".")
	if !ok {
		return rewriteSpec{}, fmt.Errorf("expected table.column=kind, got %q", value)
	}
	if !identPattern.MatchString(table) || !identPattern.MatchString(column) {
		return rewriteSpec{}, fmt.Errorf("invalid identifier in %q", value)
	}

	kind := mapstore.Kind(kindName)
	if !slices.Contains(mapstore.Kinds(), kind) {
		return rewriteSpec{}, fmt.Errorf("unknown entity kind %q", kindName)
	}
	return rewriteSpec{table: table, column: column, kind: kind}, nil
}

func main() {
	dbPath := flag.String("db", "", "SQLite database to rewrite")
	mapPath := flag.String("map", mapstore.DefaultPath("./data"), "Mapping file produced by the migrator")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	var rewrites rewriteList
	flag.Var(&rewrites, "rewrite", "table.column=kind directive (repeatable)")
	flag.Parse()

	log := logger.New(logger.Config{Level: logger.ParseLevel(*logLevel)})

	if *dbPath == "" || len(rewrites) == 0 {
		log.Fatal("usage: remap --db app.db --rewrite table.column=kind [--rewrite ...]")
	}

	maps, err := mapstore.New(*mapPath, log.Logger).Load()
	if err != nil {
		log.WithError(err).Fatal("failed to load mapping file", "path", *mapPath)
	}

	db, err := sql.Open("sqlite", *dbPath)
	if err != nil {
		log.WithError(err).Fatal("failed to open database", "path", *dbPath)
	}
	defer db.Close()

	for _, spec := range rewrites {
		entries := maps.Entries(spec.kind)
		if len(entries) == 0 {
			log.Warn("no mappings for kind, skipping",
				"kind", spec.kind, "table", spec.table, "column", spec.column)
			continue
		}

		rows, err := rewriteColumn(db, spec, entries)
		if err != nil {
			log.WithError(err).Fatal("rewrite failed",
				"table", spec.table, "column", spec.column)
		}
		log.Info("column rewritten",
			"table", spec.table,
			"column", spec.column,
			"kind", spec.kind,
			"rows", rows)
	}
}

// rewriteColumn updates every old ID to its new ID inside one transaction.
func rewriteColumn(db *sql.DB, spec rewriteSpec, entries map[string]string) (int64, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(fmt.Sprintf(
		"UPDATE %s SET %s = ? WHERE %s = ?", spec.table, spec.column, spec.column))
	if err != nil {
		return 0, fmt.Errorf("prepare update: %w", err)
	}
	defer stmt.Close()

	// Deterministic order makes reruns and failures reproducible.
	oldIDs := make([]string, 0, len(entries))
	for oldID := range entries {
		oldIDs = append(oldIDs, oldID)
	}
	slices.Sort(oldIDs)

	var total int64
	for _, oldID := range oldIDs {
		res, err := stmt.Exec(entries[oldID], oldID)
		if err != nil {
			return 0, fmt.Errorf("update %s: %w", oldID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("rows affected: %w", err)
		}
		total += n
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return total, nil
}
