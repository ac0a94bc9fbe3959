// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"fmt"
	"io"
)

const buildInfoUnset = "N/A"

// AppBuildInfo is the linker-injected build metadata printed at startup.
type AppBuildInfo struct {
	Version string
	Date    string
	Commit  string
}

// NewAppBuildInfo fills blank values with "N/A".
func NewAppBuildInfo(version, date, commit string) AppBuildInfo {
	return AppBuildInfo{
		Version: orUnset(version),
		Date:    orUnset(date),
		Commit:  orUnset(commit),
	}
}

// WriteBanner prints one "Build <field>: <value>" line per field.
func (a AppBuildInfo) WriteBanner(w io.Writer) error {
	_, err := fmt.Fprintf(w, "Build version: %s\nBuild date: %s\nBuild commit: %s\n", a.Version, a.Date, a.Commit)
	return err
}

func orUnset(value string) string {
	if value == "" {
		return buildInfoUnset
	}
	return value
}
