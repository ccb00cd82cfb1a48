package wikikb

import (
	"crypto/md5"
	"encoding/hex"
	"net/url"
	"path"
	"strings"
)

var imageExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
	".svg": true, ".tif": true, ".tiff": true, ".webp": true,
}

// IsImage reports whether a file name has an image extension.
func IsImage(name string) bool {
	return imageExts[strings.ToLower(path.Ext(strings.TrimSpace(name)))]
}

// FindFiles finds all the file references from within an article
// body.
//
// This includes things in comments, as many I found were commented
// out.
func (ns Namespaces) FindFiles(text string) []string {
	cleaned := nowikiRE.ReplaceAllString(text, "")
	rv := []string{}
	for {
		i := strings.Index(cleaned, "[")
		if i < 0 {
			break
		}
		for i < len(cleaned) && cleaned[i] == '[' {
			i++
		}
		cleaned = cleaned[i:]
		name, ok := hasPrefixFold(strings.TrimLeft(cleaned, " "), colonize(ns.File))
		if !ok {
			continue
		}
		if end := strings.IndexAny(name, "|]"); end >= 0 {
			name = name[:end]
		}
		rv = append(rv, strings.TrimSpace(name))
	}
	return rv
}

// FindFiles finds file references using the English namespaces.
func FindFiles(text string) []string {
	return DefaultNamespaces.FindFiles(text)
}

// FindImages is FindFiles limited to pictures, without the
// commented out ones.
func (ns Namespaces) FindImages(text string) []string {
	var rv []string
	for _, f := range ns.FindFiles(StripComments(text)) {
		if IsImage(f) {
			rv = append(rv, f)
		}
	}
	return rv
}

// ImageName reduces an infobox image value, which may be a bare
// name or a whole file link, to the file name.
func (ns Namespaces) ImageName(v string) string {
	v = strings.TrimSpace(StripComments(v))
	v = strings.TrimPrefix(v, "[[")
	if rest, ok := hasPrefixFold(v, colonize(ns.File)); ok {
		v = rest
	}
	if end := strings.IndexAny(v, "|]"); end >= 0 {
		v = v[:end]
	}
	v = strings.TrimSpace(v)
	if !IsImage(v) {
		return ""
	}
	return v
}

// URLForFile gets the wikimedia URL for the given named file.
func URLForFile(name string) string {
	m := md5.New()
	name = strings.Replace(name, " ", "_", -1)
	m.Write([]byte(name))
	h := hex.EncodeToString(m.Sum([]byte{}))

	return "http://upload.wikimedia.org/wikipedia/commons/" +
		string(h[0]) + "/" + h[0:2] + "/" + url.QueryEscape(name)
}
