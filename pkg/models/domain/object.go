package domain

import (
	"strings"
	"time"
)

const PathSeparator = "/"

// StorageObject is the read-only view of a listed object.
type StorageObject struct {
	Key          string
	LastModified time.Time
}

// IsFolderMarker reports whether the object is a zero-content folder placeholder.
func (o StorageObject) IsFolderMarker() bool {
	return strings.HasSuffix(o.Key, PathSeparator)
}
