package app

import "github.com/nhle/memoask/internal/keys"

// KeyMap is re-exported from the keys package so callers configuring the
// app need only one import.
type KeyMap = keys.KeyMap

// DefaultKeyMap delegates to keys.DefaultKeyMap.
func DefaultKeyMap() *KeyMap {
	return keys.DefaultKeyMap()
}
