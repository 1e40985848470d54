package validators

import (
	"io"
	"net/http"
	"strings"

	pkgerrors "github.com/arepabuelas/arepabuelas-backend/pkg/errors"
)

// ImagePart is a decoded multipart image field.
type ImagePart struct {
	ContentType string
	Data        []byte
}

// ReadImagePart extracts an optional image from a multipart form, enforcing
// the byte limit before the payload is buffered. A missing field returns
// (nil, nil).
func ReadImagePart(r *http.Request, field string, maxBytes int64) (*ImagePart, error) {
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form")
	}

	file, header, err := r.FormFile(field)
	if err == http.ErrMissingFile {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "reading uploaded file")
	}
	defer file.Close()

	if maxBytes > 0 && header.Size > maxBytes {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "uploaded file exceeds the size limit")
	}

	data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "reading uploaded file")
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "uploaded file exceeds the size limit")
	}

	contentType := strings.TrimSpace(header.Header.Get("Content-Type"))
	return &ImagePart{ContentType: contentType, Data: data}, nil
}
