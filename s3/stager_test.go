package s3

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObjectGetter struct {
	content string
	err     error

	gotBucket string
	gotKey    string
}

func (f *fakeObjectGetter) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.gotBucket = *params.Bucket
	f.gotKey = *params.Key
	if f.err != nil {
		return nil, f.err
	}
	return &s3.GetObjectOutput{
		Body: io.NopCloser(strings.NewReader(f.content)),
	}, nil
}

func TestStage(t *testing.T) {
	scratch := t.TempDir()
	fake := &fakeObjectGetter{content: "pdf bytes"}
	stager := NewStagerWithClient(fake, "newsletters", scratch)

	path, cleanup, err := stager.Stage(context.Background(), "attachments/report.pdf")
	require.NoError(t, err)
	require.NotNil(t, cleanup)

	assert.Equal(t, "newsletters", fake.gotBucket)
	assert.Equal(t, "attachments/report.pdf", fake.gotKey)
	assert.Equal(t, "report.pdf", filepath.Base(path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "pdf bytes", string(content))

	require.NoError(t, cleanup())
	_, err = os.Stat(filepath.Dir(path))
	assert.True(t, os.IsNotExist(err))
}

func TestStageUniqueDirs(t *testing.T) {
	scratch := t.TempDir()
	stager := NewStagerWithClient(&fakeObjectGetter{content: "x"}, "newsletters", scratch)

	first, cleanupFirst, err := stager.Stage(context.Background(), "report.pdf")
	require.NoError(t, err)
	second, cleanupSecond, err := stager.Stage(context.Background(), "report.pdf")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)

	// Purging one send's staging must not touch the other's.
	require.NoError(t, cleanupFirst())
	_, err = os.Stat(second)
	assert.NoError(t, err)
	require.NoError(t, cleanupSecond())
}

func TestStageDownloadError(t *testing.T) {
	scratch := t.TempDir()
	fake := &fakeObjectGetter{err: fmt.Errorf("no such key")}
	stager := NewStagerWithClient(fake, "newsletters", scratch)

	_, _, err := stager.Stage(context.Background(), "attachments/missing.pdf")
	require.Error(t, err)

	// No scratch directory is left behind on failure.
	entries, err := os.ReadDir(scratch)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestPurge(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "staging")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.pdf"), []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.pdf"), []byte("b"), 0o644))

	require.NoError(t, purge(dir))
	_, err := os.Stat(dir)
	assert.True(t, os.IsNotExist(err))

	// Purging an already-removed directory is not an error.
	assert.NoError(t, purge(dir))
}
