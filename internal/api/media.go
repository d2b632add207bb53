package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
)

// MaxMediaSize caps uploads read into memory.
const MaxMediaSize = 10 << 20

// UploadMedia sends a file as the multipart field "file" and returns the
// media id to reference from a tweet.
func (c *Client) UploadMedia(ctx context.Context, filename string, r io.Reader) (int64, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxMediaSize+1))
	if err != nil {
		return 0, fmt.Errorf("api: read media %s: %w", filename, err)
	}
	if len(data) > MaxMediaSize {
		return 0, fmt.Errorf("api: media %s exceeds %d bytes", filename, MaxMediaSize)
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filepath.Base(filename)))
	h.Set("Content-Type", mimetype.Detect(data).String())
	part, err := w.CreatePart(h)
	if err != nil {
		return 0, err
	}
	if _, err := part.Write(data); err != nil {
		return 0, err
	}
	if err := w.Close(); err != nil {
		return 0, err
	}

	var env addMediaEnvelope
	call := Call{
		Method:      http.MethodPost,
		Path:        "/api/medias",
		Body:        &buf,
		ContentType: w.FormDataContentType(),
	}
	if err := c.call(ctx, call, &env); err != nil {
		return 0, err
	}
	return env.MediaID, nil
}
