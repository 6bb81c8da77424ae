package resolve

import "fmt"

// NotFoundError reports that every candidate request shape for a collection
// was probed and none yielded a record with the requested id.
type NotFoundError struct {
	Collection string
	ID         string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("resolve: no %s record for id %q", e.Collection, e.ID)
}
