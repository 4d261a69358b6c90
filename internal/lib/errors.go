package lib

import "fmt"

// WrapError chains a sentinel error with a detail error so callers can both
// match the category with errors.Is and read the specifics.
func WrapError(sentinel error, detail error) error {
	return fmt.Errorf("%w: %w", sentinel, detail)
}
