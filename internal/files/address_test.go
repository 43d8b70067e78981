package files

import (
	"regexp"
	"testing"
)

func TestNewIsContentOnly(t *testing.T) {
	data := []byte("hello, world")

	a := New("report.pdf", data)
	b := New("something-else.pdf", data)
	if a.Hash != b.Hash {
		t.Error("identical bytes must produce identical hashes regardless of filename")
	}

	c := New("report.pdf", []byte("hello, world!"))
	if a.Hash == c.Hash {
		t.Error("different bytes must produce different hashes")
	}

	if len(a.Hash) != 40 {
		t.Errorf("hash length = %d, want 40 hex chars (20-byte digest)", len(a.Hash))
	}
}

func TestExtensionExtraction(t *testing.T) {
	cases := []struct {
		filename string
		want     string
	}{
		{"avatar.png", "png"},
		{"archive.tar.gz", "gz"},
		{"no-extension", DefaultExt},
		{"", DefaultExt},
		{"trailing.", DefaultExt},
	}
	for _, tc := range cases {
		t.Run(tc.filename, func(t *testing.T) {
			if got := New(tc.filename, []byte("x")).Ext; got != tc.want {
				t.Errorf("ext of %q = %q, want %q", tc.filename, got, tc.want)
			}
		})
	}
}

var shardPattern = regexp.MustCompile(`^[0-9a-f]{3}/[0-9a-f]{3}/[0-9a-f]{34}\.[A-Za-z0-9]+$`)

func TestPathShape(t *testing.T) {
	a := New("avatar.png", []byte("pixels"))
	p := a.Path()
	if !shardPattern.MatchString(p) {
		t.Errorf("path %q does not match the 3/3/34.ext shard pattern", p)
	}
	if p[:3]+p[4:7]+p[8:42] != a.Hash {
		t.Errorf("path %q does not reassemble into hash %q", p, a.Hash)
	}
}

func TestURLIsFilenameIndependent(t *testing.T) {
	data := []byte("same bytes")
	first := New("a.png", data).URL(7)
	second := New("b.png", data).URL(7)
	if first != second {
		t.Errorf("urls differ for identical bytes: %q vs %q", first, second)
	}
	otherWS := New("a.png", data).URL(8)
	if first == otherWS {
		t.Error("urls must be workspace-scoped")
	}
}

func TestValidShardedPath(t *testing.T) {
	good := New("x.txt", []byte("y")).Path()
	if !validShardedPath(good) {
		t.Errorf("generated path %q should validate", good)
	}
	bad := []string{
		"",
		"abc/def.txt",
		"../../../etc/passwd",
		"abc/def/ghi.txt",
		"zzz/abc/0123456789abcdef0123456789abcdef01.txt",
		"ab/cde/0123456789abcdef0123456789abcdef01.txt",
		"abc/def/0123456789abcdef0123456789abcdef01",
	}
	for _, p := range bad {
		if validShardedPath(p) {
			t.Errorf("path %q should be rejected", p)
		}
	}
}
