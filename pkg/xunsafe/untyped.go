//go:build go1.20

package xunsafe

import "unsafe"

// ByteAdd adds n raw, unscaled bytes to p and returns the result as a *To.
func ByteAdd[To, From any](p *From, n int) *To {
	return (*To)(unsafe.Add(unsafe.Pointer(p), n))
}

// ByteSub computes the unscaled byte difference between two pointers.
func ByteSub[From any](p1, p2 *From) int {
	return int(uintptr(unsafe.Pointer(p1)) - uintptr(unsafe.Pointer(p2)))
}

// ByteLoad loads a value of type To starting n bytes into p.
func ByteLoad[To, From any](p *From, n int) To {
	return *ByteAdd[To](p, n)
}

// ByteStore stores v starting n bytes into p.
func ByteStore[From, Value any](p *From, n int, v Value) {
	*ByteAdd[Value](p, n) = v
}
