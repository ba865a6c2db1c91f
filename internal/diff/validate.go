package diff

import (
	"fmt"
)

// Validate checks that l covers exactly len1 elements of the first sequence and len2 of the second, and returns an error on the first violation.
func (l List) Validate(len1, len2 int) error {
	sum1, sum2 := 0, 0
	for i, s := range l {
		if s.Equal < 0 || s.Deleted < 0 || s.Inserted < 0 {
			return fmt.Errorf("span[%d]: negative field in %+v", i, s)
		}
		sum1 += s.Equal + s.Deleted
		sum2 += s.Equal + s.Inserted
	}
	if sum1 != len1 {
		return fmt.Errorf("diff: spans cover %d elements of the first sequence, want %d", sum1, len1)
	}
	if sum2 != len2 {
		return fmt.Errorf("diff: spans cover %d elements of the second sequence, want %d", sum2, len2)
	}
	return nil
}
