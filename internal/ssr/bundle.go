package ssr

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultEntrypoint is the global the bundler assigns the render module to.
const DefaultEntrypoint = "SSR"

// Shim provides TextEncoder and TextDecoder, which goja lacks and React 18
// server rendering expects.
const Shim = `function TextEncoder(){}function TextDecoder(){}TextEncoder.prototype.encode=function(e){for(var o=[],t=e.length,r=0;r<t;){var n=e.codePointAt(r),c=0,f=0;for(n<=127?(c=0,f=0):n<=2047?(c=6,f=192):n<=65535?(c=12,f=224):n<=2097151&&(c=18,f=240),o.push(f|n>>c),c-=6;c>=0;)o.push(128|n>>c&63),c-=6;r+=n>=65536?2:1}return o},TextDecoder.prototype.decode=function(e){for(var o="",t=0;t<e.length;){var r=e[t],n=0,c=0;if(r<=127?(n=0,c=255&r):r<=223?(n=1,c=31&r):r<=239?(n=2,c=15&r):r<=244&&(n=3,c=7&r),e.length-t-n>0)for(var f=0;f<n;)c=c<<6|63&(r=e[t+f+1]),f+=1;else c=65533,n=e.length-t;o+=String.fromCodePoint(c),t+=n+1}return o};`

// Bundle is the immutable, VM-ready source of a render bundle.
type Bundle struct {
	name   string
	source string
}

// NewBundle wraps application code as shim, code and entrypoint expression.
func NewBundle(code, entrypoint string) Bundle {
	if entrypoint == "" {
		entrypoint = DefaultEntrypoint
	}
	return Bundle{
		name:   "ssr/index.js",
		source: Shim + ";" + code + ";" + entrypoint,
	}
}

// RawBundle uses source verbatim, without the shim or an entrypoint.
func RawBundle(name, source string) Bundle {
	return Bundle{name: name, source: source}
}

// BundlePath returns where the bundler writes the server bundle inside dir.
func BundlePath(dir string) string {
	return filepath.Join(dir, "ssr", "index.js")
}

// LoadBundle reads the server bundle from the client dist directory.
func LoadBundle(dir, entrypoint string) (Bundle, error) {
	path := BundlePath(dir)
	code, err := os.ReadFile(path)
	if err != nil {
		return Bundle{}, fmt.Errorf("read bundle %s: %w", path, err)
	}
	b := NewBundle(string(code), entrypoint)
	b.name = path
	return b, nil
}

// Name identifies the bundle in stack traces.
func (b Bundle) Name() string { return b.name }

// Source returns the complete script text.
func (b Bundle) Source() string { return b.source }

// Size returns the source length in bytes.
func (b Bundle) Size() int { return len(b.source) }
