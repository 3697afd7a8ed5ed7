package imap

import (
	"bytes"
	"io"
	"strings"

	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset" // extended charsets in alert emails
	"github.com/mwalczyk/scholarmail"
)

// HTMLPart extracts the text/html alternative from a raw message. It is
// the conversion step between raw mailbox bytes and the parser: the
// multipart tree is walked in order and the first text/html leaf wins.
// Transfer encoding and charset are decoded by go-message.
func HTMLPart(raw []byte) (string, error) {
	entity, err := message.Read(bytes.NewReader(raw))
	if err != nil && !message.IsUnknownCharset(err) {
		return "", scholarmail.Errorf(scholarmail.EINVALID, "parse message: %v", err)
	}
	if html, ok := htmlFromEntity(entity); ok {
		return html, nil
	}
	return "", scholarmail.Errorf(scholarmail.ENOTFOUND, "message has no text/html part")
}

func htmlFromEntity(e *message.Entity) (string, bool) {
	if mr := e.MultipartReader(); mr != nil {
		for {
			part, err := mr.NextPart()
			if err == io.EOF {
				break
			}
			if err != nil {
				return "", false
			}
			if html, ok := htmlFromEntity(part); ok {
				return html, true
			}
		}
		return "", false
	}

	mediaType, _, err := e.Header.ContentType()
	if err != nil || !strings.EqualFold(mediaType, "text/html") {
		return "", false
	}
	b, err := io.ReadAll(e.Body)
	if err != nil {
		return "", false
	}
	return string(b), true
}
