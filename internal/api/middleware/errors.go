package middleware

import "fmt"

func errInvalidHeader(name, value string) error {
	return fmt.Errorf("invalid %s header: %q", name, value)
}
