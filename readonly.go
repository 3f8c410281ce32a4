package revmodel

// AsReadOnly returns the read-only facade of a managed instance. Primitives
// and facades are returned unchanged, so AsReadOnly(AsReadOnly(x)) is
// AsReadOnly(x).
func AsReadOnly(v any) any {
	if inst, ok := v.(Instance); ok {
		return inst.AsReadOnly()
	}
	return v
}

// IsReadOnly reports whether v is a read-only facade.
func IsReadOnly(v any) bool {
	inst, ok := v.(Instance)
	return ok && inst.IsReadOnly()
}
