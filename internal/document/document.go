package document

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"textinsight/internal/domain"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	"golang.org/x/net/html"
)

const nonContentSelector = "script,style,noscript,template"

type options struct {
	readability bool
}

// Option configures Parse.
type Option func(*options)

// WithReadability reduces the page to its main article before it is split
// into blocks.
func WithReadability() Option {
	return func(o *options) {
		o.readability = true
	}
}

// Parse reads an HTML page into a Document. Every element holding a
// non-blank text node of its own becomes one block with the element's full
// text, in document order.
func Parse(r io.Reader, pageURL string, opts ...Option) (*domain.Document, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var title string

	if o.readability {
		parsedURL, err := url.Parse(pageURL)
		if err != nil {
			return nil, fmt.Errorf("parse URL: %w", err)
		}

		parser := readability.NewParser()
		article, err := parser.Parse(r, parsedURL)
		if err != nil {
			return nil, fmt.Errorf("extract article: %w", err)
		}

		title = strings.TrimSpace(article.Title)
		r = strings.NewReader(article.Content)
	}

	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("create document from reader: %w", err)
	}

	doc.Find(nonContentSelector).Remove()

	if title == "" {
		title = strings.TrimSpace(doc.Find("title").First().Text())
	}

	var blocks []string
	doc.Find("*").Each(func(_ int, s *goquery.Selection) {
		if !hasOwnText(s) {
			return
		}

		blocks = append(blocks, s.Text())
	})

	return &domain.Document{
		URL:    pageURL,
		Title:  title,
		Blocks: blocks,
		Text:   doc.Text(),
	}, nil
}

func hasOwnText(s *goquery.Selection) bool {
	for _, n := range s.Nodes {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode && strings.TrimSpace(c.Data) != "" {
				return true
			}
		}
	}

	return false
}
