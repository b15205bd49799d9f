//
// Tencent is pleased to support the open source community by making trpc-tooleval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-tooleval-go is licensed under the Apache License Version 2.0.
//
//

// Package mysql provides the mysql instance info management.
package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

func init() {
	mysqlRegistry = make(map[string][]ClientBuilderOpt)
}

var mysqlRegistry map[string][]ClientBuilderOpt

// NextFunc consumes one row of a query result.
type NextFunc func(rows *sql.Rows) error

// TxFunc runs inside a database transaction.
type TxFunc func(tx *sql.Tx) error

// TxOption customizes the options a transaction is started with.
type TxOption func(opts *sql.TxOptions)

// Client defines the interface for database operations.
// This interface abstracts the database operations needed by the storage
// backends, making it easier to inject mock implementations for testing.
type Client interface {
	// Exec executes a query without returning any rows.
	Exec(ctx context.Context, query string, args ...any) (sql.Result, error)

	// Query executes a query and invokes next for each returned row.
	Query(ctx context.Context, next NextFunc, query string, args ...any) error

	// QueryRow executes a query expected to return at most one row and scans it into dest.
	QueryRow(ctx context.Context, dest []any, query string, args ...any) error

	// Transaction runs fn inside a transaction, committing on success and
	// rolling back when fn returns an error.
	Transaction(ctx context.Context, fn TxFunc, opts ...TxOption) error

	// Close closes the database connection.
	Close() error
}

// sqlDBClient implements Client on top of *sql.DB.
type sqlDBClient struct {
	db *sql.DB
}

// WrapSQLDB wraps an open *sql.DB into a Client.
func WrapSQLDB(db *sql.DB) Client {
	return &sqlDBClient{db: db}
}

// Exec executes a query without returning any rows.
func (c *sqlDBClient) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return c.db.ExecContext(ctx, query, args...)
}

// Query executes a query and invokes next for each returned row.
func (c *sqlDBClient) Query(ctx context.Context, next NextFunc, query string, args ...any) error {
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := next(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

// QueryRow executes a query expected to return at most one row and scans it into dest.
func (c *sqlDBClient) QueryRow(ctx context.Context, dest []any, query string, args ...any) error {
	return c.db.QueryRowContext(ctx, query, args...).Scan(dest...)
}

// Transaction runs fn inside a transaction.
func (c *sqlDBClient) Transaction(ctx context.Context, fn TxFunc, opts ...TxOption) error {
	txOpts := &sql.TxOptions{}
	for _, opt := range opts {
		opt(txOpts)
	}
	tx, err := c.db.BeginTx(ctx, txOpts)
	if err != nil {
		return fmt.Errorf("mysql: begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("mysql: rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("mysql: commit transaction: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (c *sqlDBClient) Close() error {
	return c.db.Close()
}

type clientBuilder func(builderOpts ...ClientBuilderOpt) (Client, error)

var globalBuilder clientBuilder = DefaultClientBuilder

// SetClientBuilder sets the mysql client builder.
func SetClientBuilder(builder clientBuilder) {
	globalBuilder = builder
}

// GetClientBuilder gets the mysql client builder.
func GetClientBuilder() clientBuilder {
	return globalBuilder
}

// DefaultClientBuilder is the default mysql client builder.
func DefaultClientBuilder(builderOpts ...ClientBuilderOpt) (Client, error) {
	o := &ClientBuilderOpts{}
	for _, opt := range builderOpts {
		opt(o)
	}

	if o.DSN == "" {
		return nil, errors.New("mysql: dsn is empty")
	}

	db, err := sql.Open("mysql", o.DSN)
	if err != nil {
		return nil, fmt.Errorf("mysql: open connection %s: %w", o.DSN, err)
	}

	// Set connection pool settings if provided.
	if o.MaxOpenConns > 0 {
		db.SetMaxOpenConns(o.MaxOpenConns)
	}
	if o.MaxIdleConns > 0 {
		db.SetMaxIdleConns(o.MaxIdleConns)
	}
	if o.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(o.ConnMaxLifetime)
	}
	if o.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(o.ConnMaxIdleTime)
	}

	// Test connection.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("mysql: ping failed: %w", err)
	}

	return WrapSQLDB(db), nil
}

// ClientBuilderOpt is the option for the mysql client.
type ClientBuilderOpt func(*ClientBuilderOpts)

// ClientBuilderOpts is the options for the mysql client.
type ClientBuilderOpts struct {
	// DSN is the mysql data source name for clientBuilder.
	// Format: [username[:password]@][protocol[(address)]]/dbname[?param1=value1&...&paramN=valueN]
	// Example: user:password@tcp(localhost:3306)/dbname?parseTime=true
	DSN string

	// MaxOpenConns is the maximum number of open connections to the database.
	MaxOpenConns int

	// MaxIdleConns is the maximum number of connections in the idle connection pool.
	MaxIdleConns int

	// ConnMaxLifetime is the maximum amount of time a connection may be reused.
	ConnMaxLifetime time.Duration

	// ConnMaxIdleTime is the maximum amount of time a connection may be idle.
	ConnMaxIdleTime time.Duration

	// ExtraOptions is the extra options for the mysql client.
	ExtraOptions []any
}

// WithClientBuilderDSN sets the mysql client DSN for clientBuilder.
func WithClientBuilderDSN(dsn string) ClientBuilderOpt {
	return func(opts *ClientBuilderOpts) {
		opts.DSN = dsn
	}
}

// WithMaxOpenConns sets the maximum number of open connections to the database.
func WithMaxOpenConns(n int) ClientBuilderOpt {
	return func(opts *ClientBuilderOpts) {
		opts.MaxOpenConns = n
	}
}

// WithMaxIdleConns sets the maximum number of connections in the idle connection pool.
func WithMaxIdleConns(n int) ClientBuilderOpt {
	return func(opts *ClientBuilderOpts) {
		opts.MaxIdleConns = n
	}
}

// WithConnMaxLifetime sets the maximum amount of time a connection may be reused.
func WithConnMaxLifetime(d time.Duration) ClientBuilderOpt {
	return func(opts *ClientBuilderOpts) {
		opts.ConnMaxLifetime = d
	}
}

// WithConnMaxIdleTime sets the maximum amount of time a connection may be idle.
func WithConnMaxIdleTime(d time.Duration) ClientBuilderOpt {
	return func(opts *ClientBuilderOpts) {
		opts.ConnMaxIdleTime = d
	}
}

// WithExtraOptions sets the mysql client extra options for clientBuilder.
// This option is mainly used by customized mysql client builders, it will be passed to the builder.
func WithExtraOptions(extraOptions ...any) ClientBuilderOpt {
	return func(opts *ClientBuilderOpts) {
		opts.ExtraOptions = append(opts.ExtraOptions, extraOptions...)
	}
}

// RegisterMySQLInstance registers a mysql instance options.
func RegisterMySQLInstance(name string, opts ...ClientBuilderOpt) {
	mysqlRegistry[name] = append(mysqlRegistry[name], opts...)
}

// GetMySQLInstance gets the mysql instance options.
func GetMySQLInstance(name string) ([]ClientBuilderOpt, bool) {
	if _, ok := mysqlRegistry[name]; !ok {
		return nil, false
	}
	return mysqlRegistry[name], true
}
