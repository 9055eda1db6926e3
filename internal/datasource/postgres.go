/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package datasource builds Datasource records from a live PostgreSQL
// connection by introspecting information_schema. The resulting field lists
// feed the pattern analyzer and the auto-layout generator directly, with the
// declared column types carried through as DataType.
package datasource

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"reportstudio/internal/domain"
)

const queryTimeout = 15 * time.Second

// ConnectionConfig holds PostgreSQL connection parameters.
type ConnectionConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Database string
	SSLMode  string
}

// ConnectionFromEnv builds connection parameters from RST_PG_* environment
// variables (HOST, PORT, USER, PASSWORD, DATABASE, SSLMODE), falling back to
// localhost:5432 with sslmode prefer. An unparsable port keeps the default.
func ConnectionFromEnv() ConnectionConfig {
	cfg := ConnectionConfig{Host: "localhost", Port: 5432, SSLMode: "prefer"}
	if v := strings.TrimSpace(os.Getenv("RST_PG_HOST")); v != "" {
		cfg.Host = v
	}
	if v := strings.TrimSpace(os.Getenv("RST_PG_PORT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Port = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("RST_PG_USER")); v != "" {
		cfg.Username = v
	}
	if v := os.Getenv("RST_PG_PASSWORD"); v != "" {
		cfg.Password = v
	}
	if v := strings.TrimSpace(os.Getenv("RST_PG_DATABASE")); v != "" {
		cfg.Database = v
	}
	if v := strings.TrimSpace(os.Getenv("RST_PG_SSLMODE")); v != "" {
		cfg.SSLMode = v
	}
	return cfg
}

// Inspector introspects a PostgreSQL database into Datasource records.
type Inspector struct {
	db *sql.DB
}

// Connect opens and pings the database.
func (p *Inspector) Connect(cfg ConnectionConfig) error {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "prefer"
	}
	port := cfg.Port
	if port == 0 {
		port = 5432
	}
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, port, cfg.Username, cfg.Password, cfg.Database, sslMode)

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("postgres connect: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("postgres ping: %w", err)
	}
	p.db = db
	return nil
}

// Close releases the underlying connection pool.
func (p *Inspector) Close() error {
	if p.db != nil {
		return p.db.Close()
	}
	return nil
}

// systemSchemas are excluded from table listing.
var systemSchemas = []string{
	"information_schema", "pg_catalog", "pg_toast",
	"pg_temp_1", "pg_toast_temp_1",
}

// ListTables returns the table names of a schema, excluding system schemas.
func (p *Inspector) ListTables(ctx context.Context, schemaName string) ([]string, error) {
	for _, s := range systemSchemas {
		if schemaName == s {
			return nil, fmt.Errorf("schema %q is a system schema", schemaName)
		}
	}
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	rows, err := p.db.QueryContext(ctx,
		`SELECT table_name FROM information_schema.tables
		 WHERE table_schema = $1 AND table_type = 'BASE TABLE'
		 ORDER BY table_name`, schemaName)
	if err != nil {
		return nil, fmt.Errorf("querying tables: %w", err)
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// columnInfo is one information_schema.columns row.
type columnInfo struct {
	Table    string
	Column   string
	DataType string
	Position int
}

// queryColumns fetches column metadata for the given tables (all tables of
// the schema when tableNames is empty), ordered by table and ordinal
// position so the datasource field order matches the table definition.
func (p *Inspector) queryColumns(ctx context.Context, schemaName string, tableNames []string) ([]columnInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `SELECT table_name, column_name, data_type, ordinal_position
		FROM information_schema.columns
		WHERE table_schema = $1`
	args := []any{schemaName}
	if len(tableNames) > 0 {
		placeholders := make([]string, len(tableNames))
		for i := range tableNames {
			placeholders[i] = fmt.Sprintf("$%d", i+2)
			args = append(args, tableNames[i])
		}
		query += fmt.Sprintf(" AND table_name IN (%s)", strings.Join(placeholders, ","))
	}
	query += " ORDER BY table_name, ordinal_position"

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying postgres columns: %w", err)
	}
	defer rows.Close()

	var cols []columnInfo
	for rows.Next() {
		var c columnInfo
		if err := rows.Scan(&c.Table, &c.Column, &c.DataType, &c.Position); err != nil {
			return nil, err
		}
		cols = append(cols, c)
	}
	return cols, rows.Err()
}

// InspectDatasources builds one Datasource per table, with every column as a
// selected field. databaseAlias names the connection the aliases belong to.
func (p *Inspector) InspectDatasources(ctx context.Context, databaseAlias, schemaName string, tableNames []string) ([]domain.Datasource, error) {
	cols, err := p.queryColumns(ctx, schemaName, tableNames)
	if err != nil {
		return nil, err
	}
	return DatasourcesFromColumns(databaseAlias, cols), nil
}

// DatasourcesFromColumns groups column metadata into Datasource records,
// preserving the encounter order of tables and the ordinal order of columns.
func DatasourcesFromColumns(databaseAlias string, cols []columnInfo) []domain.Datasource {
	byTable := make(map[string]*domain.Datasource)
	var order []string
	for _, c := range cols {
		ds, ok := byTable[c.Table]
		if !ok {
			ds = &domain.Datasource{
				Alias:         c.Table,
				DatabaseAlias: databaseAlias,
				QueryType:     "visual",
			}
			byTable[c.Table] = ds
			order = append(order, c.Table)
		}
		ds.SelectedFields = append(ds.SelectedFields, domain.Field{
			Table:    c.Table,
			Field:    c.Column,
			DataType: c.DataType,
		})
	}
	out := make([]domain.Datasource, 0, len(order))
	for _, t := range order {
		out = append(out, *byTable[t])
	}
	return out
}
