package courier

import "context"

// Stager copies an attachment out of the blob store onto the local filesystem
// immediately before a send.
type Stager interface {
	// Stage downloads the blob identified by key into a scratch location unique
	// to this call and returns the local path. The returned cleanup removes the
	// call's scratch directory and must be invoked once the send is over,
	// whatever its outcome.
	Stage(ctx context.Context, key string) (path string, cleanup func() error, err error)
}
