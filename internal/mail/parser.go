package mail

import (
	"bytes"
	"io"
	netmail "net/mail"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset"
)

// parsedBody holds the text extracted from one raw message.
type parsedBody struct {
	Plain     string
	HTML      string
	MessageID string
	ThreadID  string
}

// Text returns the plain body, falling back to the HTML part rendered
// down to text.
func (p *parsedBody) Text() string {
	if p.Plain != "" {
		return p.Plain
	}
	return HTMLToText(p.HTML)
}

var whitespaceRegex = regexp.MustCompile(`[ \t]+`)

// HTMLToText strips an HTML body down to readable text. Script and
// style blocks are dropped and runs of whitespace collapsed.
func HTMLToText(html string) string {
	if html == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}
	doc.Find("script, style, head").Remove()

	text := doc.Find("body").Text()
	if text == "" {
		text = doc.Text()
	}

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(whitespaceRegex.ReplaceAllString(line, " "))
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// parseRawMessage parses a raw RFC 5322 message, preferring go-message
// for MIME handling and falling back to net/mail for malformed input.
func parseRawMessage(raw []byte) *parsedBody {
	parsed := &parsedBody{}

	r := bytes.NewReader(raw)
	entity, err := message.Read(r)
	if err != nil {
		r.Seek(0, io.SeekStart)
		m, err := netmail.ReadMessage(r)
		if err != nil {
			return parsed
		}
		parsed.MessageID = strings.TrimSpace(m.Header.Get("Message-Id"))
		parsed.ThreadID = threadIDFromHeader(
			m.Header.Get("References"), m.Header.Get("In-Reply-To"))
		body, _ := io.ReadAll(m.Body)
		parsed.Plain = string(body)
		return parsed
	}

	parsed.MessageID = strings.TrimSpace(entity.Header.Get("Message-Id"))
	parsed.ThreadID = threadIDFromHeader(
		entity.Header.Get("References"), entity.Header.Get("In-Reply-To"))
	parseEntity(entity, parsed)
	return parsed
}

// parseEntity walks a MIME entity collecting the first plain and HTML
// text parts. Attachments are ignored.
func parseEntity(entity *message.Entity, parsed *parsedBody) {
	mediaType, _, _ := entity.Header.ContentType()

	switch {
	case strings.HasPrefix(mediaType, "multipart/"):
		mr := entity.MultipartReader()
		for {
			part, err := mr.NextPart()
			if err != nil {
				return
			}
			parseEntity(part, parsed)
		}
	case mediaType == "text/plain" && parsed.Plain == "":
		body, _ := io.ReadAll(entity.Body)
		parsed.Plain = string(body)
	case mediaType == "text/html" && parsed.HTML == "":
		body, _ := io.ReadAll(entity.Body)
		parsed.HTML = string(body)
	}
}

// threadIDFromHeader derives a stable thread id from threading headers.
// The first References entry is the thread root; In-Reply-To is the
// fallback for clients that omit References.
func threadIDFromHeader(references, inReplyTo string) string {
	if refs := strings.Fields(references); len(refs) > 0 {
		return strings.Trim(refs[0], "<>")
	}
	return strings.Trim(strings.TrimSpace(inReplyTo), "<>")
}
