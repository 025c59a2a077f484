package types

// Value is an optional string. The zero value is the "no value" sentinel.
type Value struct {
	String string
	Valid  bool
}

func Set(v string) Value {
	return Value{String: v, Valid: true}
}

// Unset marks a key for removal when an Overlay is applied.
func Unset() Value {
	return Value{}
}

// Overlay patches a string map: Unset values delete keys, set values overwrite them.
type Overlay map[string]Value

// Merge returns a new overlay where the entries of other win over o.
func (o Overlay) Merge(other Overlay) Overlay {
	result := make(Overlay, len(o)+len(other))
	for k, v := range o {
		result[k] = v
	}
	for k, v := range other {
		result[k] = v
	}
	return result
}

// Apply patches a copy of base, base itself is left untouched.
func (o Overlay) Apply(base map[string]string) map[string]string {
	result := make(map[string]string, len(base)+len(o))
	for k, v := range base {
		result[k] = v
	}
	for k, v := range o {
		if v.Valid {
			result[k] = v.String
		} else {
			delete(result, k)
		}
	}
	return result
}
