package forge

import (
	"regexp"
	"sort"
	"strings"
)

// sdkNamespace is never reported: generated adapters always import the
// MCP SDK, and it is installed with the scaffold rather than scanned.
const sdkNamespace = "@modelcontextprotocol"

// importPatterns match the ES-module forms a generated adapter can use to
// pull in a package: static imports (with or without bindings),
// re-exports, and dynamic import() calls. Textual matching is a
// heuristic, not a module graph.
var importPatterns = []*regexp.Regexp{
	regexp.MustCompile(`import\s+(?:[^'"]*?from\s+)?["']([^"']+)["']`),
	regexp.MustCompile(`export\s+[^'"]*?from\s+["']([^"']+)["']`),
	regexp.MustCompile(`import\s*\(\s*["']([^"']+)["']\s*\)`),
}

// nodeBuiltins are module names the Node runtime provides; installing
// them would fail, so the scan drops them, node:-prefixed or bare.
var nodeBuiltins = map[string]bool{
	"assert": true, "async_hooks": true, "buffer": true, "child_process": true,
	"cluster": true, "console": true, "constants": true, "crypto": true,
	"dgram": true, "diagnostics_channel": true, "dns": true, "domain": true,
	"events": true, "fs": true, "http": true, "http2": true, "https": true,
	"inspector": true, "module": true, "net": true, "os": true, "path": true,
	"perf_hooks": true, "process": true, "punycode": true, "querystring": true,
	"readline": true, "repl": true, "stream": true, "string_decoder": true,
	"timers": true, "tls": true, "trace_events": true, "tty": true, "url": true,
	"util": true, "v8": true, "vm": true, "worker_threads": true, "zlib": true,
}

// ScanImports extracts the npm packages a source file imports. Relative
// and absolute paths, Node built-ins, and the SDK namespace are excluded;
// deep import paths collapse to the installable package name
// (@scope/name or the first path segment). The result is sorted and
// unique.
func ScanImports(source string) []string {
	seen := map[string]bool{}
	for _, pattern := range importPatterns {
		for _, match := range pattern.FindAllStringSubmatch(source, -1) {
			if pkg, ok := packageName(match[1]); ok {
				seen[pkg] = true
			}
		}
	}
	out := make([]string, 0, len(seen))
	for pkg := range seen {
		out = append(out, pkg)
	}
	sort.Strings(out)
	return out
}

// packageName collapses a module specifier to its npm package name, or
// reports false for specifiers that are not installable packages.
func packageName(spec string) (string, bool) {
	if spec == "" ||
		strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../") ||
		strings.HasPrefix(spec, "/") || strings.HasPrefix(spec, "node:") {
		return "", false
	}
	parts := strings.Split(spec, "/")
	if strings.HasPrefix(spec, "@") {
		if len(parts) < 2 || parts[0] == sdkNamespace {
			return "", false
		}
		return parts[0] + "/" + parts[1], true
	}
	if nodeBuiltins[parts[0]] {
		return "", false
	}
	return parts[0], true
}
