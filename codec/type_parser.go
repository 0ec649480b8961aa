// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"fmt"

	"github.com/ava-labs/musicvm/consts"
)

// Typed is implemented by every object that can be registered with a
// [TypeParser].
type Typed interface {
	GetTypeID() uint8
}

type decoder[T any] struct {
	name string
	f    func(*Packer) (T, error)
}

// TypeParser maps type ids to decoders for an interface T.
type TypeParser[T Typed] struct {
	typeToIndex    map[string]uint8
	indexToDecoder map[uint8]decoder[T]
}

// NewTypeParser returns an instance of a Typeparser with generic type [T].
func NewTypeParser[T Typed]() *TypeParser[T] {
	return &TypeParser[T]{
		typeToIndex:    map[string]uint8{},
		indexToDecoder: map[uint8]decoder[T]{},
	}
}

// Register registers a new type into TypeParser [p]. Registers the type by using
// the string representation of [o], and sets the decoder of that index to [f].
// Returns an error if [o] has already been registered or the TypeParser is full.
func (p *TypeParser[T]) Register(o T, f func(*Packer) (T, error)) error {
	if len(p.indexToDecoder) == int(consts.MaxUint8)+1 {
		return ErrTooManyItems
	}
	k := fmt.Sprintf("%T", o)
	if _, ok := p.typeToIndex[k]; ok {
		return ErrDuplicateItem
	}
	index := o.GetTypeID()
	if _, ok := p.indexToDecoder[index]; ok {
		return ErrDuplicateItem
	}
	p.typeToIndex[k] = index
	p.indexToDecoder[index] = decoder[T]{name: k, f: f}
	return nil
}

// LookupIndex returns the decoder function and success of lookup of [index]
// from Typeparser [p].
func (p *TypeParser[T]) LookupIndex(index uint8) (func(*Packer) (T, error), bool) {
	d, ok := p.indexToDecoder[index]
	if !ok {
		return nil, false
	}
	return d.f, true
}

// Unmarshal reads a type id followed by the encoded object.
func (p *TypeParser[T]) Unmarshal(packer *Packer) (T, error) {
	var empty T
	index := packer.UnpackByte()
	if err := packer.Err(); err != nil {
		return empty, err
	}
	f, ok := p.LookupIndex(index)
	if !ok {
		return empty, fmt.Errorf("%w: %d", ErrUnknownType, index)
	}
	return f(packer)
}
