package ingest

import (
	"context"
	"log"
	"regexp"
	"strings"

	"github.com/hyan/noteflow/internal/model"
)

var (
	// imageOnlyRe matches content that is exactly one markdown image.
	imageOnlyRe = regexp.MustCompile(`^!\[.*?\]\((.+?)\)$`)

	// imageURLRe extracts the http(s) URL from a markdown image link.
	imageURLRe = regexp.MustCompile(`\]\((https?://[^\s)]+)\)`)

	// imgTagRe extracts src attribute values from <img> tags with
	// loosely quoted attributes, as seen in email-derived HTML.
	imgTagRe = regexp.MustCompile(`(?i)<img[^>]+src\s*=\s*['"]?([^'"\s>]+)['"]?[^>]*>`)

	// attachmentRe matches server-side attachment placeholders.
	attachmentRe = regexp.MustCompile(`!\[\[#Attachment#([^\]]+)\]\]`)
)

// imageSuffixes are the recognized image extensions; the last 3 or 4
// characters of a URL are checked to cover jpg/png/gif vs jpeg.
var imageSuffixes = map[string]bool{
	"jpg": true, "jpeg": true, "png": true, "gif": true,
}

// cdnHostMarker identifies the media CDN whose URLs are always images
// regardless of suffix.
const cdnHostMarker = "qpic.cn"

// refKind tags a located remote reference.
type refKind int

const (
	refImgHTTPS refKind = iota
	refImgCID
	refAttachment
)

// ref is one located span: the matched text and the value to resolve.
type ref struct {
	kind  refKind
	match string // full matched text (placeholder) or URL (img src)
	value string // URL or attachment name
}

// Localizer rewrites remote-hosted media references in message bodies
// to local vault references. It never fails hard: any single asset
// failure leaves the corresponding reference unmodified.
type Localizer struct {
	assets *AssetStore

	// attachmentURL builds the remote fetch URL for a server-side
	// attachment name. Nil when no attachment endpoint is available
	// (placeholders then stay unresolved unless the message carries
	// the bytes).
	attachmentURL func(name string) string
}

// NewLocalizer creates a localizer using the given asset store and
// optional attachment endpoint URL builder.
func NewLocalizer(assets *AssetStore, attachmentURL func(name string) string) *Localizer {
	return &Localizer{assets: assets, attachmentURL: attachmentURL}
}

// Localize rewrites every resolvable remote reference in content.
// An image-only message collapses to a single local embed, or to the
// empty string when its one image cannot be fetched (such a message
// has no salvageable text and is skipped upstream).
func (l *Localizer) Localize(ctx context.Context, content string, attachments []model.Attachment) string {
	if IsImageOnly(content) {
		return l.localizeImageOnly(ctx, content)
	}

	for _, r := range locateRefs(content) {
		content = l.rewrite(ctx, content, r, attachments)
	}
	return content
}

// IsImageOnly reports whether the entire trimmed content is a single
// markdown image whose URL classifies as an image.
func IsImageOnly(content string) bool {
	trimmed := strings.TrimSpace(content)
	if !imageOnlyRe.MatchString(trimmed) {
		return false
	}
	m := imageURLRe.FindStringSubmatch(trimmed)
	if len(m) < 2 {
		return false
	}
	return isImageURL(m[1])
}

// isImageURL classifies a URL as an image by CDN host marker or by
// its trailing 3/4 characters.
func isImageURL(url string) bool {
	if strings.Index(url, cdnHostMarker) > 0 {
		return true
	}
	if len(url) >= 3 && imageSuffixes[strings.ToLower(url[len(url)-3:])] {
		return true
	}
	if len(url) >= 4 && imageSuffixes[strings.ToLower(url[len(url)-4:])] {
		return true
	}
	return false
}

// localizeImageOnly replaces the whole message with a local embed.
func (l *Localizer) localizeImageOnly(ctx context.Context, content string) string {
	trimmed := strings.TrimSpace(content)
	m := imageURLRe.FindStringSubmatch(trimmed)
	if len(m) < 2 {
		return content
	}

	asset, err := l.assets.SaveURL(ctx, m[1])
	if err != nil {
		log.Printf("localize: image-only download failed, url=%s: %v", m[1], err)
		return ""
	}
	return "![[" + asset.LocalPath + "|400]]"
}

// locateRefs scans content once and returns every rewritable span in
// processing order: <img> src values first, then attachment
// placeholders. Rewrites are applied afterwards to the evolving
// string, so later spans see earlier substitutions.
func locateRefs(content string) []ref {
	var refs []ref

	for _, m := range imgTagRe.FindAllStringSubmatch(content, -1) {
		src := m[1]
		switch {
		case strings.HasPrefix(src, "https://"):
			refs = append(refs, ref{kind: refImgHTTPS, match: src, value: src})
		case strings.HasPrefix(src, "cid:"):
			refs = append(refs, ref{kind: refImgCID, match: src, value: src[len("cid:"):]})
		}
		// Any other prefix is left untouched.
	}

	for _, m := range attachmentRe.FindAllStringSubmatch(content, -1) {
		refs = append(refs, ref{kind: refAttachment, match: m[0], value: m[1]})
	}

	return refs
}

// rewrite resolves one reference and substitutes it in content. On
// failure the reference is left byte-identical and the error logged.
func (l *Localizer) rewrite(ctx context.Context, content string, r ref, attachments []model.Attachment) string {
	switch r.kind {
	case refImgHTTPS:
		asset, err := l.assets.SaveURL(ctx, r.value)
		if err != nil {
			log.Printf("localize: img download failed, url=%s: %v", r.value, err)
			return content
		}
		return strings.Replace(content, r.match, asset.LocalPath, 1)

	case refImgCID:
		localPath, err := l.resolveAttachment(ctx, r.value, attachments)
		if err != nil {
			log.Printf("localize: cid resolve failed, name=%s: %v", r.value, err)
			return content
		}
		return strings.Replace(content, r.match, localPath, 1)

	case refAttachment:
		localPath, err := l.resolveAttachment(ctx, r.value, attachments)
		if err != nil {
			log.Printf("localize: attachment resolve failed, name=%s: %v", r.value, err)
			return content
		}
		return strings.Replace(content, r.match, "![["+localPath+"|400]]", 1)
	}
	return content
}

// resolveAttachment localizes a named attachment: message-carried
// bytes win, then the remote attachment endpoint.
func (l *Localizer) resolveAttachment(ctx context.Context, name string, attachments []model.Attachment) (string, error) {
	for _, att := range attachments {
		if att.Name == name {
			asset, err := l.assets.SaveBytes(ctx, att.Name, att.Data)
			if err != nil {
				return "", err
			}
			return asset.LocalPath, nil
		}
	}

	if l.attachmentURL == nil {
		return "", &FetchError{Err: errNoAttachmentEndpoint(name)}
	}
	asset, err := l.assets.SaveURL(ctx, l.attachmentURL(name))
	if err != nil {
		return "", err
	}
	return asset.LocalPath, nil
}

type errNoAttachmentEndpoint string

func (e errNoAttachmentEndpoint) Error() string {
	return "no attachment endpoint configured for " + string(e)
}
