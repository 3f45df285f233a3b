package sync

import "fmt"

// Summary counts what a run did.
type Summary struct {
	Added        int
	Updated      int
	Deleted      int
	Unchanged    int
	Failed       int
	DeleteFailed int
}

// Success reports whether every upload went through. Delete failures are
// tolerated; the next run retries them.
func (s *Summary) Success() bool {
	return s.Failed == 0
}

func (s *Summary) String() string {
	return fmt.Sprintf("added=%d updated=%d deleted=%d unchanged=%d failed=%d delete_failed=%d",
		s.Added, s.Updated, s.Deleted, s.Unchanged, s.Failed, s.DeleteFailed)
}
