// SPDX-License-Identifier: MPL-2.0

// Package testutil provides datapack fixtures and helpers that fail the test
// immediately on setup errors, reducing boilerplate in package tests.
package testutil
