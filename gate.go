package spayd

// CheckRequired is the required-key gate. It returns a *MissingKeysError
// naming every key of required that pairs lacks, in the order given, or nil
// when all are present. Presence only: an empty value passes the gate and is
// left to the field's own rule.
func CheckRequired(pairs Pairs, required []string) error {
	var missing []string
	for _, key := range required {
		if _, ok := pairs.Lookup(key); !ok {
			missing = append(missing, key)
		}
	}

	if len(missing) == 0 {
		return nil
	}
	return &MissingKeysError{Keys: missing}
}
