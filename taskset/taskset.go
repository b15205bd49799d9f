//
// Tencent is pleased to support the open source community by making trpc-tooleval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-tooleval-go is licensed under the Apache License Version 2.0.
//
//

// Package taskset provides task set storage for tool-call evaluation.
package taskset

import (
	"context"

	"trpc.group/trpc-go/trpc-tooleval-go/epochtime"
)

// Set represents a collection of task records.
type Set struct {
	// SetID uniquely identifies this task set.
	SetID string `json:"set_id"`
	// Name of the task set.
	Name string `json:"name,omitempty"`
	// Description of the task set.
	Description string `json:"description,omitempty"`
	// Records contains all the task records.
	Records []*Record `json:"records"`
	// CreationTimestamp when this task set was created.
	CreationTimestamp *epochtime.EpochTime `json:"creation_timestamp,omitempty"`
}

// Manager defines the interface for managing task sets.
type Manager interface {
	// Get returns the task set identified by setID.
	// Returns an error if the task set does not exist.
	Get(ctx context.Context, appName, setID string) (*Set, error)
	// Create creates and returns an empty task set given the setID.
	// Returns an error if the task set already exists.
	Create(ctx context.Context, appName, setID string) (*Set, error)
	// Delete deletes the task set identified by setID.
	// Returns an error if the task set does not exist.
	Delete(ctx context.Context, appName, setID string) error
	// List lists all task set IDs for the given appName.
	List(ctx context.Context, appName string) ([]string, error)
	// GetRecord returns the task record identified by taskID.
	// Returns an error if the record does not exist.
	GetRecord(ctx context.Context, appName, setID, taskID string) (*Record, error)
	// AddRecord adds the given record to an existing task set identified by setID.
	// Returns an error if the task set does not exist or the record already exists.
	AddRecord(ctx context.Context, appName, setID string, record *Record) error
	// UpdateRecord updates an existing record given the setID.
	// Returns an error if the task set or the record does not exist.
	UpdateRecord(ctx context.Context, appName, setID string, record *Record) error
	// DeleteRecord deletes the given record identified by setID and taskID.
	// Returns an error if the task set or the record does not exist.
	DeleteRecord(ctx context.Context, appName, setID, taskID string) error
	// Close releases resources held by the manager.
	Close() error
}
