// internal/app/system/mailer/message.go
package mailer

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"mime"
	"strings"
	"time"

	"github.com/google/uuid"
)

// now is swapped by tests.
var now = time.Now

// BuildMessage renders a minimal RFC-822 text/plain message.
// Header values have CR and LF removed.
func BuildMessage(from string, e Email) []byte {
	var buf bytes.Buffer
	header := func(k, v string) {
		fmt.Fprintf(&buf, "%s: %s\r\n", k, headerSafe(v))
	}

	header("From", from)
	header("To", e.To)
	if e.ReplyTo != "" {
		header("Reply-To", e.ReplyTo)
	}
	header("Subject", mime.QEncoding.Encode("utf-8", headerSafe(e.Subject)))
	header("Date", now().UTC().Format(time.RFC1123Z))
	header("Message-ID", fmt.Sprintf("<%s@%s>", uuid.NewString(), domainOf(from)))
	header("MIME-Version", "1.0")
	header("Content-Type", `text/plain; charset="UTF-8"`)
	buf.WriteString("\r\n")

	body := strings.ReplaceAll(e.TextBody, "\r\n", "\n")
	buf.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	return buf.Bytes()
}

// EncodeRaw encodes a message the way the send endpoint expects:
// URL-safe base64 without padding.
func EncodeRaw(msg []byte) (string, error) {
	if len(msg) == 0 {
		return "", fmt.Errorf("empty message")
	}
	return base64.RawURLEncoding.EncodeToString(msg), nil
}

func headerSafe(v string) string {
	return strings.NewReplacer("\r", "", "\n", " ").Replace(v)
}

func domainOf(addr string) string {
	addr = strings.TrimSuffix(strings.TrimSpace(addr), ">")
	if i := strings.LastIndex(addr, "@"); i >= 0 && i < len(addr)-1 {
		return addr[i+1:]
	}
	return "localhost"
}
