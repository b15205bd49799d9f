//
// Tencent is pleased to support the open source community by making trpc-tooleval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-tooleval-go is licensed under the Apache License Version 2.0.
//
//

// Package mysqldb provides shared helpers for the MySQL-backed managers.
package mysqldb

import (
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	storage "trpc.group/trpc-go/trpc-tooleval-go/storage/mysql"
)

const (
	// MySQLErrDuplicateEntry is the MySQL error number for duplicate entry (ER_DUP_ENTRY).
	MySQLErrDuplicateEntry = 1062
	// MySQLErrDuplicateKeyName is the MySQL error number for duplicate key name (ER_DUP_KEYNAME).
	MySQLErrDuplicateKeyName = 1061
)

// BuildClient builds a MySQL client with either DSN or a registered instance name.
func BuildClient(dsn, instanceName string, extraOptions []any) (storage.Client, error) {
	builderOpts := []storage.ClientBuilderOpt{
		storage.WithClientBuilderDSN(dsn),
		storage.WithExtraOptions(extraOptions...),
	}
	// Priority: dsn > instanceName.
	if dsn == "" && instanceName != "" {
		var ok bool
		if builderOpts, ok = storage.GetMySQLInstance(instanceName); !ok {
			return nil, fmt.Errorf("mysql instance %s not found", instanceName)
		}
	}
	return storage.GetClientBuilder()(builderOpts...)
}

// BuildTableName builds a table name with the given prefix applied.
func BuildTableName(prefix, base string) string {
	return prefix + base
}

// IsDuplicateEntry reports whether the error is a MySQL duplicate entry error.
func IsDuplicateEntry(err error) bool {
	return isMySQLError(err, MySQLErrDuplicateEntry)
}

// IsDuplicateKeyName reports whether the error is a MySQL duplicate key name error.
func IsDuplicateKeyName(err error) bool {
	return isMySQLError(err, MySQLErrDuplicateKeyName)
}

func isMySQLError(err error, number uint16) bool {
	var mysqlErr *mysql.MySQLError
	if !errors.As(err, &mysqlErr) {
		return false
	}
	return mysqlErr.Number == number
}
