package ecs

import "reflect"

type resourceMap map[reflect.Type]any

// SetResource inserts or replaces the world's single value of type T.
func SetResource[T any](w *World, value T) {
	w.resources[reflect.TypeFor[T]()] = &value
}

// GetResource returns a pointer to the stored T.
func GetResource[T any](w *World) (*T, bool) {
	v, ok := w.resources[reflect.TypeFor[T]()]
	if !ok {
		return nil, false
	}
	return v.(*T), true
}

func HasResource[T any](w *World) bool {
	_, ok := w.resources[reflect.TypeFor[T]()]
	return ok
}

func RemoveResource[T any](w *World) bool {
	key := reflect.TypeFor[T]()
	if _, ok := w.resources[key]; !ok {
		return false
	}
	delete(w.resources, key)
	return true
}
