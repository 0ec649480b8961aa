// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import "strings"

const (
	Read     Permissions = 1
	Allocate             = 1<<1 | Read
	Write                = 1<<2 | Read

	None Permissions = 0
	All              = Read | Allocate | Write
)

// Keys maps a state key to the permissions a transaction holds on it.
// Use Add instead of direct assignment so that permissions declared by
// different instructions are unioned rather than overwritten.
type Keys map[string]Permissions

// All acceptable permission options
type Permissions byte

// Add unions [permission] into the permissions already held for [name].
func (k Keys) Add(name string, permission Permissions) {
	k[name] |= permission
}

// Merge unions every key in [o] into [k].
func (k Keys) Merge(o Keys) {
	for name, perm := range o {
		k.Add(name, perm)
	}
}

// Has returns true if [p] has all the permissions that are contained in require
func (p Permissions) Has(require Permissions) bool {
	return require&^p == 0
}

func (p Permissions) String() string {
	switch p {
	case None:
		return "none"
	case All:
		return "all"
	}
	var parts []string
	if p.Has(Read) {
		parts = append(parts, "read")
	}
	if p.Has(Allocate) {
		parts = append(parts, "allocate")
	}
	if p.Has(Write) {
		parts = append(parts, "write")
	}
	return strings.Join(parts, "|")
}
