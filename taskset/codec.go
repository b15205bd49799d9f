//
// Tencent is pleased to support the open source community by making trpc-tooleval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-tooleval-go is licensed under the Apache License Version 2.0.
//
//

package taskset

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-multierror"
)

// maxRecordLineBytes bounds a single record line when decoding newline-delimited JSON.
const maxRecordLineBytes = 16 * 1024 * 1024

// DecodeRecords reads task records from r.
// The input is either a JSON array of records or newline-delimited JSON with
// one record per line. Malformed records are reported with their position and
// do not stop decoding of the remaining input.
func DecodeRecords(r io.Reader) ([]*Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return []*Record{}, nil
	}
	if trimmed[0] == '[' {
		return decodeRecordArray(trimmed)
	}
	return decodeRecordLines(trimmed)
}

// LoadRecords reads task records from the file at path.
func LoadRecords(path string) ([]*Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open records file %s: %w", path, err)
	}
	defer file.Close()
	records, err := DecodeRecords(file)
	if err != nil {
		return nil, fmt.Errorf("decode records file %s: %w", path, err)
	}
	return records, nil
}

// decodeRecordArray decodes records from a JSON array.
func decodeRecordArray(data []byte) ([]*Record, error) {
	var records []*Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("unmarshal record array: %w", err)
	}
	var errs *multierror.Error
	valid := make([]*Record, 0, len(records))
	for i, record := range records {
		if err := validateRecord(record); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("record %d: %w", i, err))
			continue
		}
		valid = append(valid, record)
	}
	return valid, errs.ErrorOrNil()
}

// decodeRecordLines decodes records from newline-delimited JSON.
func decodeRecordLines(data []byte) ([]*Record, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), maxRecordLineBytes)
	var errs *multierror.Error
	records := []*Record{}
	line := 0
	for scanner.Scan() {
		line++
		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 {
			continue
		}
		record := &Record{}
		if err := json.Unmarshal(text, record); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("line %d: %w", line, err))
			continue
		}
		if err := validateRecord(record); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("line %d: %w", line, err))
			continue
		}
		records = append(records, record)
	}
	if err := scanner.Err(); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("scan records: %w", err))
	}
	return records, errs.ErrorOrNil()
}

// validateRecord checks that a decoded record carries a task identifier.
func validateRecord(record *Record) error {
	if record == nil {
		return fmt.Errorf("record is nil")
	}
	if record.TaskID == "" {
		return fmt.Errorf("task id is empty")
	}
	return nil
}
