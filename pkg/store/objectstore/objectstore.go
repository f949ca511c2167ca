package objectstore

import (
	"context"

	"github.com/de-tools/bucket-freshness/pkg/models/domain"
)

// PageFunc receives one page of listed objects. Returning false stops the listing.
type PageFunc func(objects []domain.StorageObject) bool

// Lister lists the objects stored under a prefix, one page at a time.
type Lister interface {
	ListObjects(ctx context.Context, bucket, prefix string, fn PageFunc) error
}
