package domain

import "fmt"

// CheckSpec describes one prefix that must receive a new object at least every
// RecencyWindowDays days.
type CheckSpec struct {
	Prefix            string
	RecencyWindowDays int
}

func (c CheckSpec) String() string {
	return fmt.Sprintf("%s (%d days)", c.Prefix, c.RecencyWindowDays)
}

// BucketChecks groups the checks configured for a single bucket.
type BucketChecks struct {
	Bucket string
	Checks []CheckSpec
}

// Configuration is the full check list in document order.
type Configuration struct {
	Buckets []BucketChecks
}

// CheckCount returns the total number of checks across all buckets.
func (c *Configuration) CheckCount() int {
	if c == nil {
		return 0
	}
	n := 0
	for _, b := range c.Buckets {
		n += len(b.Checks)
	}
	return n
}
