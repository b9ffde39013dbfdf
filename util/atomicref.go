package util

import (
	"sync/atomic"
	"unsafe"
)

// AtomicRef is a generic version of atomic.Value, to hold object references atomically
type AtomicRef[T any] struct {
	pointer unsafe.Pointer
}

// Get retrieves the reference atomically. It may return nil.
func (ref *AtomicRef[T]) Get() *T {
	return (*T)(atomic.LoadPointer(&ref.pointer))
}

// Set stores the given reference atomically. The reference may be nil.
func (ref *AtomicRef[T]) Set(reference *T) {
	atomic.StorePointer(&ref.pointer, unsafe.Pointer(reference))
}

// CompareAndSwap replaces the reference only if the current one is still "old"
func (ref *AtomicRef[T]) CompareAndSwap(old *T, new *T) bool {
	return atomic.CompareAndSwapPointer(&ref.pointer, unsafe.Pointer(old), unsafe.Pointer(new))
}

// Update replaces the reference with the result of transform, retrying until no concurrent update intervenes
//
// transform may be called multiple times and must not modify the given object
func (ref *AtomicRef[T]) Update(transform func(current *T) *T) *T {
	for {
		current := ref.Get()
		next := transform(current)
		if ref.CompareAndSwap(current, next) {
			return next
		}
	}
}
