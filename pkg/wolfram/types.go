// Package wolfram is the upstream client adapter for the Wolfram Alpha
// full results API. It owns the HTTP call and the XML parsing, and maps
// every failure into a typed *UpstreamError so callers can match on the
// error kind alone.
package wolfram

import (
	"encoding/xml"
	"strings"
)

// ResultTree is the parsed upstream response: an ordered sequence of
// pods, each an ordered sequence of subpods. Every subpod field is
// optional; upstream is under no obligation to fill any of them.
type ResultTree struct {
	XMLName xml.Name `xml:"queryresult"`

	Success   bool `xml:"success,attr"`
	ErrorFlag bool `xml:"error,attr"`

	Pods []Pod `xml:"pod"`

	// ErrorInfo is present when upstream rejected the query outright
	// (for example an invalid appid).
	ErrorInfo *ErrorInfo `xml:"error"`
}

// Pod is one titled result section.
type Pod struct {
	Title   string   `xml:"title,attr"`
	ID      string   `xml:"id,attr"`
	Subpods []Subpod `xml:"subpod"`
}

// Subpod is one leaf item within a pod. Plaintext and Image are both
// optional and independently present.
type Subpod struct {
	Title     string    `xml:"title,attr"`
	Plaintext string    `xml:"plaintext"`
	Image     *ImageRef `xml:"img"`
}

// ImageRef references a rendered result image hosted by upstream.
type ImageRef struct {
	Src         string `xml:"src,attr"`
	Alt         string `xml:"alt,attr"`
	ContentType string `xml:"contenttype,attr"`
}

// ErrorInfo is upstream's structured rejection payload.
type ErrorInfo struct {
	Code    int    `xml:"code"`
	Message string `xml:"msg"`
}

// HasText reports whether the subpod carries non-blank plaintext.
func (s *Subpod) HasText() bool {
	return strings.TrimSpace(s.Plaintext) != ""
}

// HasImage reports whether the subpod carries a resolvable image URL.
func (s *Subpod) HasImage() bool {
	return s.Image != nil && strings.TrimSpace(s.Image.Src) != ""
}
