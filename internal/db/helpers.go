package db

// NullIfEmpty helps store optional strings without wiping existing data.
func NullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// NullIfZero maps a zero id to NULL for optional foreign keys.
func NullIfZero(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}
