// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package handler

import "errors"

// errNoHandlersAreCreated stops startup when no HTTP address is configured.
var errNoHandlersAreCreated = errors.New("http address is not configured")
