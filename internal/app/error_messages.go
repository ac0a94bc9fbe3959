// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package app is the sample inventory service served by cmd/server. It shows
// how route handlers plug into the pipeline: they decode already validated
// bodies, return typed errors instead of rendering them, and read bearer
// claims from the request context.
package app

const (
	// MsgItemNotFound is returned when no item has the requested id.
	MsgItemNotFound = "item not found"

	// MsgItemExists is returned when an item with the same name exists.
	MsgItemExists = "item already exists"

	// MsgInvalidItemID is returned when the id path parameter is not a
	// positive integer.
	MsgInvalidItemID = "invalid item id"
)

// Error codes of the inventory service.
const (
	CodeItemNotFound  = "error.item.not-found"
	CodeItemExists    = "error.item.exists"
	CodeInvalidItemID = "error.item.invalid-id"
)
