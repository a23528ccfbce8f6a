package filesend

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/gigamon-dev/subspace-go/core"
)

type fakeFile struct {
	*bytes.Reader
	closed bool
}

func (f *fakeFile) Close() error {
	f.closed = true
	return nil
}

type fakeOpener struct {
	files   map[string]*fakeFile
	removed []string
}

func (o *fakeOpener) Open(path string) (core.SizedReader, int64, error) {
	f, ok := o.files[path]
	if !ok {
		return nil, 0, errors.New("not found")
	}
	return f, int64(f.Reader.Len()), nil
}

func (o *fakeOpener) Remove(path string) error {
	o.removed = append(o.removed, path)
	return nil
}

type fakeTransport struct {
	playerID int
	length   int64
	received []byte
}

func (t *fakeTransport) SendTo(ctx context.Context, playerID int, data []byte, flags core.SendFlags) {
}
func (t *fakeTransport) SendToSet(ctx context.Context, playerIDs []int, data []byte, flags core.SendFlags) {
}
func (t *fakeTransport) SendToSetWithAck(ctx context.Context, playerID int, data []byte, flags core.SendFlags, onAck func()) {
}
func (t *fakeTransport) SendSized(ctx context.Context, playerID int, length int64, r core.SizedReader) error {
	t.playerID = playerID
	t.length = length
	buf, err := io.ReadAll(r)
	t.received = buf
	return err
}

func TestSendPrependsHeaderAndStreamsBody(t *testing.T) {
	body := []byte("hello, this is the file body")
	opener := &fakeOpener{files: map[string]*fakeFile{
		"/tmp/x.txt": {Reader: bytes.NewReader(body)},
	}}
	tr := &fakeTransport{}

	err := Send(context.Background(), tr, opener, 5, "/tmp/x.txt", "notes.txt", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tr.playerID != 5 {
		t.Fatalf("expected send to player 5, got %d", tr.playerID)
	}
	if tr.length != int64(len(body))+17 {
		t.Fatalf("expected length %d, got %d", len(body)+17, tr.length)
	}
	if len(tr.received) != int(tr.length) {
		t.Fatalf("expected %d bytes streamed, got %d", tr.length, len(tr.received))
	}
	if !bytes.Equal(tr.received[17:], body) {
		t.Fatalf("expected body to follow the 17-byte header")
	}
	if opener.files["/tmp/x.txt"].closed != true {
		t.Fatalf("expected source file closed")
	}
	if len(opener.removed) != 0 {
		t.Fatalf("expected no deletion when deleteAfter is false")
	}
}

func TestSendDeletesSourceWhenRequested(t *testing.T) {
	opener := &fakeOpener{files: map[string]*fakeFile{
		"/tmp/y.txt": {Reader: bytes.NewReader([]byte("x"))},
	}}
	tr := &fakeTransport{}

	if err := Send(context.Background(), tr, opener, 1, "/tmp/y.txt", "y.txt", true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(opener.removed) != 1 || opener.removed[0] != "/tmp/y.txt" {
		t.Fatalf("expected source removed, got %v", opener.removed)
	}
}

func TestSendRejectsOverlongDisplayName(t *testing.T) {
	opener := &fakeOpener{files: map[string]*fakeFile{
		"/tmp/z.txt": {Reader: bytes.NewReader([]byte("x"))},
	}}
	tr := &fakeTransport{}

	err := Send(context.Background(), tr, opener, 1, "/tmp/z.txt", "this-name-is-way-too-long.txt", false)
	if err == nil {
		t.Fatalf("expected error for overlong display name")
	}
}

func TestSendPropagatesOpenError(t *testing.T) {
	opener := &fakeOpener{files: map[string]*fakeFile{}}
	tr := &fakeTransport{}

	err := Send(context.Background(), tr, opener, 1, "/tmp/missing.txt", "missing.txt", false)
	if err == nil {
		t.Fatalf("expected error for missing source file")
	}
}
