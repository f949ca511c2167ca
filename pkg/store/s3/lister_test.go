package s3

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/bucket-freshness/pkg/models/domain"
)

type fakeListClient struct {
	pages  []*s3.ListObjectsV2Output
	err    error
	inputs []s3.ListObjectsV2Input
}

func (f *fakeListClient) ListObjectsV2(
	_ context.Context,
	params *s3.ListObjectsV2Input,
	_ ...func(*s3.Options),
) (*s3.ListObjectsV2Output, error) {
	f.inputs = append(f.inputs, *params)
	if f.err != nil {
		return nil, f.err
	}
	page := f.pages[len(f.inputs)-1]
	return page, nil
}

func page(next string, keys ...string) *s3.ListObjectsV2Output {
	ts := time.Date(2026, 10, 14, 8, 0, 0, 0, time.UTC)
	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(next != "")}
	if next != "" {
		out.NextContinuationToken = aws.String(next)
	}
	for _, k := range keys {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(k), LastModified: aws.Time(ts)})
	}
	return out
}

func TestLister_WalksAllPages(t *testing.T) {
	client := &fakeListClient{pages: []*s3.ListObjectsV2Output{
		page("t1", "db/", "db/a.dump"),
		page("t2", "db/b.dump"),
		page("", "db/c.dump"),
	}}
	lister := NewLister(client)

	var keys []string
	err := lister.ListObjects(context.Background(), "backups", "db/", func(objs []domain.StorageObject) bool {
		for _, o := range objs {
			keys = append(keys, o.Key)
		}
		return true
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"db/", "db/a.dump", "db/b.dump", "db/c.dump"}, keys)
	require.Len(t, client.inputs, 3)
	assert.Equal(t, "backups", aws.ToString(client.inputs[0].Bucket))
	assert.Equal(t, "db/", aws.ToString(client.inputs[0].Prefix))
	assert.Nil(t, client.inputs[0].ContinuationToken)
	assert.Equal(t, "t1", aws.ToString(client.inputs[1].ContinuationToken))
	assert.Equal(t, "t2", aws.ToString(client.inputs[2].ContinuationToken))
}

func TestLister_StopsWhenPageFuncReturnsFalse(t *testing.T) {
	client := &fakeListClient{pages: []*s3.ListObjectsV2Output{
		page("t1", "db/a.dump"),
		page("", "db/b.dump"),
	}}

	calls := 0
	err := NewLister(client).ListObjects(context.Background(), "backups", "db/", func([]domain.StorageObject) bool {
		calls++
		return false
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Len(t, client.inputs, 1)
}

func TestLister_EmptyListingStillCallsPageFunc(t *testing.T) {
	client := &fakeListClient{pages: []*s3.ListObjectsV2Output{page("")}}

	calls := 0
	err := NewLister(client).ListObjects(context.Background(), "backups", "none/", func(objs []domain.StorageObject) bool {
		calls++
		assert.Empty(t, objs)
		return true
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestLister_WrapsClientError(t *testing.T) {
	boom := errors.New("AccessDenied")
	client := &fakeListClient{err: boom}

	err := NewLister(client).ListObjects(context.Background(), "backups", "db/", func([]domain.StorageObject) bool {
		t.Fatal("page func must not be called")
		return true
	})

	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "s3://backups/db/")
}
