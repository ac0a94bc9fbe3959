// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// Environment is the runtime environment tag of the running service.
// It switches development-only behaviour (stack traces in error bodies,
// plaintext payloads) and test-only behaviour (no error logging).
type Environment string

const (
	EnvironmentDevelopment Environment = "development"
	EnvironmentTest        Environment = "test"
	EnvironmentProduction  Environment = "production"
)

// IsValid reports whether e is one of the known environments.
func (e Environment) IsValid() bool {
	switch e {
	case EnvironmentDevelopment, EnvironmentTest, EnvironmentProduction:
		return true
	}
	return false
}

func (e Environment) IsDevelopment() bool {
	return e == EnvironmentDevelopment
}

func (e Environment) IsTest() bool {
	return e == EnvironmentTest
}
