package ast

import (
	"encoding/json"
	"fmt"

	"fortio.org/safecast"
	"github.com/vmihailenco/msgpack/v5"
)

type Arena[T any] struct {
	data []T
}

// NewArena creates and returns an *Arena[T] whose internal slice is allocated with a capacity of capHint.
func NewArena[T any](capHint uint) *Arena[T] {
	return &Arena[T]{
		data: make([]T, 0, capHint),
	}
}

// Возвращает индекс нового элемента (1-based).
func (a *Arena[T]) Allocate(value T) uint32 {
	a.data = append(a.data, value)
	n, err := safecast.Conv[uint32](len(a.data))
	if err != nil {
		panic(fmt.Errorf("arena overflow: %w", err))
	}
	return n
}

func (a *Arena[T]) Get(index uint32) *T {
	if a == nil || index == 0 || int(index) > len(a.data) {
		return nil
	}
	return &a.data[index-1]
}

// READONLY
func (a *Arena[T]) Slice() []T {
	return a.data
}

func (a *Arena[T]) Len() uint32 {
	if a == nil {
		return 0
	}
	return uint32(len(a.data)) // #nosec G115 -- bounded by Allocate
}

// EncodeMsgpack writes the arena as a plain array.
func (a *Arena[T]) EncodeMsgpack(enc *msgpack.Encoder) error {
	return enc.Encode(a.data)
}

// DecodeMsgpack replaces the arena contents.
func (a *Arena[T]) DecodeMsgpack(dec *msgpack.Decoder) error {
	return dec.Decode(&a.data)
}

func (a *Arena[T]) MarshalJSON() ([]byte, error) {
	if a.data == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(a.data)
}

func (a *Arena[T]) UnmarshalJSON(raw []byte) error {
	return json.Unmarshal(raw, &a.data)
}
