package har

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strings"
)

// LoadHARFile loads and parses a HAR file from the given path
func LoadHARFile(filePath string) (*HARFile, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	return ParseHAR(data)
}

// ParseHAR parses a HAR document from raw JSON.
// It does not check for the entries container; that is the analyzer's job.
func ParseHAR(data []byte) (*HARFile, error) {
	var harFile HARFile
	if err := json.Unmarshal(data, &harFile); err != nil {
		return nil, fmt.Errorf("decode har: %w", err)
	}
	return &harFile, nil
}

// DecodeBase64 decodes base64 content if encoded
func DecodeBase64(text, encoding string) string {
	if encoding == "base64" && text != "" {
		if decoded, err := base64.StdEncoding.DecodeString(text); err == nil {
			return string(decoded)
		}
	}
	return text
}

// Hostname extracts the hostname of an absolute URL.
// URLs without a host are reported as unparsable.
func Hostname(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("url %q has no host", rawURL)
	}
	return strings.ToLower(u.Hostname()), nil
}

// InferResourceType guesses a resource type for entries that carry no _resourceType tag.
// It is only used for filtering and display; analysis buckets untagged entries as "other".
func InferResourceType(entry HAREntry) string {
	if entry.ResourceType != "" {
		return entry.ResourceType
	}
	if entry.Request == nil {
		return "other"
	}

	u, err := url.Parse(entry.Request.URL)
	if err != nil {
		return "other"
	}
	if u.Scheme == "ws" || u.Scheme == "wss" {
		return ResourceTypeWebSocket
	}

	if entry.Response != nil {
		if contentType, ok := Header(entry.Response.Headers, "content-type"); ok {
			contentType = strings.ToLower(contentType)
			switch {
			case strings.Contains(contentType, "text/html"):
				return "document"
			case strings.Contains(contentType, "text/css"):
				return "stylesheet"
			case strings.Contains(contentType, "javascript") || strings.Contains(contentType, "ecmascript"):
				return "script"
			case strings.Contains(contentType, "image/"):
				return "image"
			case strings.Contains(contentType, "font/") || strings.Contains(contentType, "woff"):
				return "font"
			case strings.Contains(contentType, "audio/") || strings.Contains(contentType, "video/"):
				return "media"
			case strings.Contains(contentType, "application/manifest"):
				return "manifest"
			case strings.Contains(contentType, "json") || strings.Contains(contentType, "xml"):
				return "fetch"
			}
		}
	}

	path := strings.ToLower(u.Path)
	switch {
	case strings.HasSuffix(path, ".html") || strings.HasSuffix(path, ".htm"):
		return "document"
	case strings.HasSuffix(path, ".css"):
		return "stylesheet"
	case strings.HasSuffix(path, ".js") || strings.HasSuffix(path, ".mjs"):
		return "script"
	case strings.HasSuffix(path, ".png") || strings.HasSuffix(path, ".jpg") || strings.HasSuffix(path, ".jpeg") ||
		strings.HasSuffix(path, ".gif") || strings.HasSuffix(path, ".svg") || strings.HasSuffix(path, ".webp") ||
		strings.HasSuffix(path, ".ico"):
		return "image"
	case strings.HasSuffix(path, ".woff") || strings.HasSuffix(path, ".woff2") || strings.HasSuffix(path, ".ttf"):
		return "font"
	case strings.HasSuffix(path, ".mp4") || strings.HasSuffix(path, ".webm") || strings.HasSuffix(path, ".mp3"):
		return "media"
	}

	for _, header := range entry.Request.Headers {
		name := strings.ToLower(header.Name)
		value := strings.ToLower(header.Value)
		if name == "x-requested-with" && value == "xmlhttprequest" {
			return "xhr"
		}
	}

	if strings.Contains(path, "/api/") || strings.Contains(path, "/graphql") {
		return "fetch"
	}
	return "other"
}
