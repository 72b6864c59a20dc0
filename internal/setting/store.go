// Copyright (c) 2026 Folio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package setting

import (
	"context"
	"fmt"

	"github.com/taibuivan/folio/internal/platform/database/schema"
	"github.com/taibuivan/folio/internal/platform/dberr"
	"github.com/taibuivan/folio/internal/platform/postgres"
)

// Store reads and writes one settings table.
//
// The store holds no connection: every call takes the [postgres.DBTX] to run on,
// so callers decide whether a write joins their transaction.
type Store struct {
	table schema.SettingTable
}

// NewStore binds a store to a settings table.
func NewStore(table schema.SettingTable) *Store {
	return &Store{table: table}
}

// # Reads

/*
Load fetches every setting row for the given owners.

Every requested owner id is present in the result, with an empty [Map] when it
has no rows.

Returns:
  - map[int64]Map: owner id -> settings
  - error: database or decode failures
*/
func (store *Store) Load(context context.Context, db postgres.DBTX, ownerIDs ...int64) (map[int64]Map, error) {
	result := make(map[int64]Map, len(ownerIDs))
	if len(ownerIDs) == 0 {
		return result, nil
	}
	for _, id := range ownerIDs {
		result[id] = Map{}
	}

	t := store.table
	query := fmt.Sprintf(`
		SELECT %s, %s, COALESCE(%s, ''), COALESCE(%s, ''), %s
		FROM %s
		WHERE %s = ANY($1)
		ORDER BY %s, %s, %s`,
		t.OwnerID, t.Name, t.Value, t.Type, t.Locale,
		t.Table,
		t.OwnerID,
		t.OwnerID, t.Name, t.Locale,
	)

	rows, err := db.Query(context, query, ownerIDs)
	if err != nil {
		return nil, dberr.Wrap(err, "load_settings")
	}
	defer rows.Close()

	for rows.Next() {
		var (
			ownerID              int64
			name, raw, kind, loc string
		)
		if err := rows.Scan(&ownerID, &name, &raw, &kind, &loc); err != nil {
			return nil, dberr.Wrap(err, "scan_setting")
		}

		value, err := Decode(raw, Type(kind))
		if err != nil {
			return nil, dberr.Wrap(err, "decode_setting")
		}

		owned, ok := result[ownerID]
		if !ok {
			owned = Map{}
			result[ownerID] = owned
		}
		owned.Set(name, loc, value)
	}

	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "iterate_settings")
	}

	return result, nil
}

/*
Get returns the values of one setting keyed by locale.

An empty locale returns every locale, including the non-localized "" row.
A missing setting yields an empty map, not an error.
*/
func (store *Store) Get(context context.Context, db postgres.DBTX, ownerID int64, name, locale string) (map[string]Value, error) {
	t := store.table
	query := fmt.Sprintf(`
		SELECT COALESCE(%s, ''), COALESCE(%s, ''), %s
		FROM %s
		WHERE %s = $1 AND %s = $2`,
		t.Value, t.Type, t.Locale,
		t.Table,
		t.OwnerID, t.Name,
	)
	args := []any{ownerID, name}

	if locale != "" {
		query += fmt.Sprintf(" AND %s = $3", t.Locale)
		args = append(args, locale)
	}

	rows, err := db.Query(context, query, args...)
	if err != nil {
		return nil, dberr.Wrap(err, "get_setting")
	}
	defer rows.Close()

	values := make(map[string]Value)
	for rows.Next() {
		var raw, kind, loc string
		if err := rows.Scan(&raw, &kind, &loc); err != nil {
			return nil, dberr.Wrap(err, "scan_setting")
		}
		value, err := Decode(raw, Type(kind))
		if err != nil {
			return nil, dberr.Wrap(err, "decode_setting")
		}
		values[loc] = value
	}

	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "iterate_setting")
	}

	return values, nil
}

// # Writes

// Replace upserts a single (owner, name, locale) row. Use locale "" for
// non-localized settings.
func (store *Store) Replace(context context.Context, db postgres.DBTX, ownerID int64, name, locale string, value Value) error {
	raw, kind, err := value.Encode()
	if err != nil {
		return dberr.Wrap(err, "encode_setting")
	}

	t := store.table
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (%s, %s, %s)
		DO UPDATE SET %s = EXCLUDED.%s, %s = EXCLUDED.%s`,
		t.Table, t.OwnerID, t.Name, t.Value, t.Type, t.Locale,
		t.OwnerID, t.Name, t.Locale,
		t.Value, t.Value, t.Type, t.Type,
	)

	_, err = db.Exec(context, query, ownerID, name, raw, string(kind), locale)
	return dberr.Wrap(err, "replace_setting")
}

/*
ReplaceLocalized rewrites one localized setting, locale by locale.

For each locale the existing row is deleted and, unless the new value is
[Value.Empty], a fresh row is inserted. Locales absent from values are untouched.
*/
func (store *Store) ReplaceLocalized(context context.Context, db postgres.DBTX, ownerID int64, name string, values map[string]Value) error {
	t := store.table
	deleteQuery := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2 AND %s = $3`,
		t.Table, t.OwnerID, t.Name, t.Locale)
	insertQuery := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5)`,
		t.Table, t.OwnerID, t.Name, t.Value, t.Type, t.Locale)

	for _, locale := range sortedLocales(values) {
		if _, err := db.Exec(context, deleteQuery, ownerID, name, locale); err != nil {
			return dberr.Wrap(err, "delete_localized_setting")
		}

		value := values[locale]
		if value.Empty() {
			continue
		}

		raw, kind, err := value.Encode()
		if err != nil {
			return dberr.Wrap(err, "encode_setting")
		}
		if _, err := db.Exec(context, insertQuery, ownerID, name, raw, string(kind), locale); err != nil {
			return dberr.Wrap(err, "insert_localized_setting")
		}
	}

	return nil
}

// ReplaceAll writes every localized entry of m, as done after inserting or
// updating an owner's locale fields. Only the given names are touched.
func (store *Store) ReplaceAll(context context.Context, db postgres.DBTX, ownerID int64, m Map, names ...string) error {
	for _, name := range names {
		values, ok := m[name]
		if !ok {
			continue
		}
		if err := store.ReplaceLocalized(context, db, ownerID, name, values); err != nil {
			return err
		}
	}
	return nil
}

// DeleteByLocale removes every row stored for locale and reports how many were removed.
func (store *Store) DeleteByLocale(context context.Context, db postgres.DBTX, locale string) (int64, error) {
	t := store.table
	tag, err := db.Exec(context, fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, t.Table, t.Locale), locale)
	if err != nil {
		return 0, dberr.Wrap(err, "delete_settings_by_locale")
	}
	return tag.RowsAffected(), nil
}

// DeleteAll removes every setting row of one owner.
func (store *Store) DeleteAll(context context.Context, db postgres.DBTX, ownerID int64) error {
	t := store.table
	_, err := db.Exec(context, fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, t.Table, t.OwnerID), ownerID)
	return dberr.Wrap(err, "delete_settings")
}
