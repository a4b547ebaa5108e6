// internal/app/features/contact/ack.go
package contact

import (
	"fmt"
	"net/http"
	"time"

	"github.com/dalemusser/folio/internal/app/system/htmlsanitize"
)

// TimezoneHeader carries the visitor's IANA zone when the edge provides it.
const TimezoneHeader = "CF-Timezone"

// acknowledge builds the message echoed back to the visitor. The name is
// reduced to plain text since clients may insert it into the page.
func (h *Handler) acknowledge(r *http.Request, name string) string {
	display := htmlsanitize.PlainText(name)
	if display == "" {
		display = "there"
	}
	greeting := "Thanks"
	if h.TimezoneGreeting {
		if g, ok := greetingFor(r.Header.Get(TimezoneHeader), h.now()); ok {
			greeting = g
		}
	}
	return fmt.Sprintf("%s, %s! Your message has been received.", greeting, display)
}

// greetingFor returns a time-of-day greeting in zone tz.
func greetingFor(tz string, now time.Time) (string, bool) {
	if tz == "" {
		return "", false
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return "", false
	}
	switch hour := now.In(loc).Hour(); {
	case hour >= 5 && hour < 12:
		return "Good morning", true
	case hour >= 12 && hour < 18:
		return "Good afternoon", true
	default:
		return "Good evening", true
	}
}
