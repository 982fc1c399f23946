package inbound

import (
	"errors"
	"html"
	"io"
	"log"
	"regexp"
	"strings"

	gomessage "github.com/emersion/go-message"
	gomail "github.com/emersion/go-message/mail"
	"github.com/microcosm-cc/bluemonday"
	htmlcharset "golang.org/x/net/html/charset"

	"github.com/dannygauntletai/autocrm/internal/errs"
)

func init() {
	gomessage.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		return htmlcharset.NewReaderLabel(charset, input)
	}
}

const maxBodyBytes = 128 * 1024

// ExtractContent recovers the reply body from whichever representation the
// provider delivered, preferring plain text, then HTML stripped of tags,
// then a text part dug out of the raw MIME source.
func ExtractContent(p Payload) (string, error) {
	if p.Text != "" {
		return p.Text, nil
	}
	if p.HTML != "" {
		if text := StripHTML(p.HTML); text != "" {
			return text, nil
		}
	}
	if p.RawEmail != "" {
		if text := extractFromRaw(p.RawEmail); text != "" {
			return text, nil
		}
	}
	return "", errs.ErrNoContent
}

// extractFromRaw pulls a readable body out of a full MIME message. The
// structured parser handles real RFC 2045 mail; when it cannot produce a
// body the boundary-scanning fallback takes over, since providers sometimes
// forward fragments that are not valid messages.
func extractFromRaw(raw string) string {
	if body := structuredBody(raw); body != "" {
		return body
	}
	return scanRawBody(raw)
}

func structuredBody(raw string) string {
	reader, err := gomail.CreateReader(strings.NewReader(raw))
	if err != nil {
		return ""
	}
	var plain, htmlBody string
	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			log.Printf("inbound: read mime part: %v", err)
			break
		}
		header, ok := part.Header.(*gomail.InlineHeader)
		if !ok {
			continue
		}
		mimeType, _, err := header.ContentType()
		if err != nil {
			continue
		}
		body, err := io.ReadAll(io.LimitReader(part.Body, maxBodyBytes))
		if err != nil {
			log.Printf("inbound: read mime body: %v", err)
			continue
		}
		switch {
		case strings.HasPrefix(mimeType, "text/plain"):
			if plain == "" {
				plain = strings.TrimSpace(string(body))
			}
		case strings.HasPrefix(mimeType, "text/html"):
			if htmlBody == "" {
				htmlBody = string(body)
			}
		}
	}
	if plain != "" {
		return plain
	}
	if htmlBody != "" {
		return StripHTML(htmlBody)
	}
	return ""
}

var boundaryRe = regexp.MustCompile(`boundary="([^"]+)"`)

// scanRawBody is the string-scanning fallback: locate the boundary
// declaration, split on it, and take the body of the first text/plain part.
func scanRawBody(raw string) string {
	m := boundaryRe.FindStringSubmatch(raw)
	if m == nil {
		return ""
	}
	boundary := m[1]
	for _, part := range strings.Split(raw, "--"+boundary) {
		if !strings.Contains(part, "Content-Type: text/plain") {
			continue
		}
		_, body, found := strings.Cut(part, "\r\n\r\n")
		if !found {
			continue
		}
		// Drop anything past a boundary marker that leaked into the segment.
		body, _, _ = strings.Cut(body, "--"+boundary)
		if body = strings.TrimSpace(body); body != "" {
			return body
		}
	}
	return ""
}

var (
	blockBreakRe = regexp.MustCompile(`(?i)<br\s*/?>|</p>|</div>|</tr>|</li>`)
	stripPolicy  = bluemonday.StrictPolicy()
)

// StripHTML reduces an HTML body to plain text: block-level closers become
// newlines, remaining tags are stripped, entities decoded.
func StripHTML(s string) string {
	s = blockBreakRe.ReplaceAllString(s, "\n")
	s = stripPolicy.Sanitize(s)
	return strings.TrimSpace(html.UnescapeString(s))
}

var (
	headerLineRe    = regexp.MustCompile(`^[A-Za-z-]+:`)
	nestedQuoteRe   = regexp.MustCompile(`^>+\s`)
	hyphenSigRe     = regexp.MustCompile(`^-{3,}`)
	underscoreSigRe = regexp.MustCompile(`^_{3,}`)
	sentFromRe      = regexp.MustCompile(`^Sent from`)
	inlineAddrRe    = regexp.MustCompile(`^[A-Za-z-]+:.*@.*\.[A-Za-z]{2,}`)
)

// CleanReply strips quoted history, reply headers, and signatures from an
// email body, line by line. It is a heuristic filter, not a MIME-aware
// quote parser; occasional false positives are an accepted tradeoff.
// Running it on already-clean text changes nothing.
func CleanReply(content string) string {
	var kept []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSuffix(line, "\r")
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, ">"): // quoted text
		case strings.HasPrefix(line, "On "): // "On Mon, ... wrote:"
		case headerLineRe.MatchString(line):
		case nestedQuoteRe.MatchString(line):
		case hyphenSigRe.MatchString(line):
		case underscoreSigRe.MatchString(line):
		case trimmed == "":
		case sentFromRe.MatchString(trimmed):
		case inlineAddrRe.MatchString(trimmed):
		default:
			kept = append(kept, line)
		}
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}
