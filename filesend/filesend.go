// Package filesend implements File Send (C12, §4.11): a sized stream of a
// file to one peer, framed as an IncomingFile header followed by the
// file's bytes.
package filesend

import (
	"context"
	"fmt"
	"io"

	"github.com/gigamon-dev/subspace-go/core"
	"github.com/gigamon-dev/subspace-go/wire"
)

const maxDisplayNameLen = 16

// Opener is the out-of-scope file source (os.Open in production).
type Opener interface {
	Open(path string) (core.SizedReader, int64, error)
	Remove(path string) error
}

// Send implements §4.11: open the source, enqueue a sized transfer whose
// first 17 bytes are the IncomingFile header (type + 16-byte name), then
// the file bytes; on completion, close, and delete the source if
// deleteAfter is set.
func Send(ctx context.Context, transport core.Transport, opener Opener, playerID int, sourcePath, displayName string, deleteAfter bool) error {
	if len(displayName) > maxDisplayNameLen {
		return fmt.Errorf("display name %q exceeds %d bytes", displayName, maxDisplayNameLen)
	}

	f, size, err := opener.Open(sourcePath)
	if err != nil {
		return fmt.Errorf("open %q: %w", sourcePath, err)
	}

	header := wire.EncodeIncomingFile(displayName)
	total := size + int64(len(header))

	r := &prefixedReader{prefix: header, body: f}
	sendErr := transport.SendSized(ctx, playerID, total, r)
	closeErr := f.Close()

	if sendErr != nil {
		return fmt.Errorf("send %q: %w", sourcePath, sendErr)
	}
	if closeErr != nil {
		return fmt.Errorf("close %q: %w", sourcePath, closeErr)
	}

	if deleteAfter {
		if err := opener.Remove(sourcePath); err != nil {
			return fmt.Errorf("remove %q: %w", sourcePath, err)
		}
	}
	return nil
}

// prefixedReader concatenates the IncomingFile header in front of the
// file body without buffering the whole file in memory.
type prefixedReader struct {
	prefix []byte
	off    int
	body   io.Reader
}

func (r *prefixedReader) Read(p []byte) (int, error) {
	if r.off < len(r.prefix) {
		n := copy(p, r.prefix[r.off:])
		r.off += n
		return n, nil
	}
	return r.body.Read(p)
}

func (r *prefixedReader) Close() error {
	if c, ok := r.body.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
