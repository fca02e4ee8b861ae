// Copyright (c) 2026 MyTube. All rights reserved.
// Author: rishabh.bhardwaj.rb@gmail.com

/*
Package blob defines the media storage capability used for avatar and cover
images, together with its S3-compatible implementation.

# Architecture

The domain layer depends only on the [Store] interface. The concrete client
is constructed once in main.go and injected — no process-global provider
state. Uploads and deletes are blocking, externally-timed I/O with no
internal retry: callers surface failure immediately.
*/
package blob

import (
	"context"
	"io"
)

// File is the explicit upload payload extracted from a multipart form.
//
// Presence is modeled with a nil pointer: an optional form field that was
// not submitted yields a nil *File, never a zero-valued struct.
type File struct {
	// Name is the client-provided file name; only its extension is trusted.
	Name string

	// ContentType is the declared MIME type of the payload.
	ContentType string

	// Size is the payload length in bytes.
	Size int64

	// Content streams the payload. It is consumed exactly once by Upload.
	Content io.Reader
}

// Close releases the underlying form file if it holds one.
func (f *File) Close() error {
	if f == nil {
		return nil
	}
	if closer, ok := f.Content.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// Store is the opaque blob-store capability.
type Store interface {

	/*
		Upload persists the file under a freshly generated object key.

		Parameters:
		  - context: context.Context
		  - file: *File

		Returns:
		  - string: Public URL of the stored object
		  - error: Provider or connectivity failures
	*/
	Upload(context context.Context, file *File) (string, error)

	/*
		Delete removes the object with the given key. Missing objects are
		not an error.

		Parameters:
		  - context: context.Context
		  - key: string

		Returns:
		  - error: Provider or connectivity failures
	*/
	Delete(context context.Context, key string) error

	/*
		KeyFromURL derives the object key from a previously stored public URL.

		Returns an empty string when the URL does not reference this store.
	*/
	KeyFromURL(rawURL string) string
}
