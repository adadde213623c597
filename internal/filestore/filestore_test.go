package filestore

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"billed/internal/core"
)

func TestSaveWritesFileAndReturnsPair(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	url, name, err := s.Save(core.AttachedFile{
		Name:     "hello.png",
		MIMEType: "image/png",
		Handle:   strings.NewReader("hello"),
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if name != "hello.png" {
		t.Fatalf("fileName must keep the original name, got %q", name)
	}
	if !strings.HasPrefix(url, "/uploads/") || !strings.HasSuffix(url, "hello.png") {
		t.Fatalf("unexpected url %q", url)
	}

	stored := filepath.Join(s.Dir(), strings.TrimPrefix(url, "/uploads/"))
	data, err := os.ReadFile(stored)
	if err != nil {
		t.Fatalf("read stored file: %v", err)
	}
	if string(data) != "hello" {
		t.Fatalf("content mangled: %q", data)
	}
}

func TestSaveRefusesNonImages(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, _, err := s.Save(core.AttachedFile{Name: "doc.pdf", MIMEType: "application/pdf", Handle: strings.NewReader("x")}); err == nil {
		t.Fatalf("expected refusal for pdf")
	}
}

func TestSaveUniquifiesNames(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	u1, _, err := s.Save(core.AttachedFile{Name: "same.png", MIMEType: "image/png", Handle: strings.NewReader("a")})
	if err != nil {
		t.Fatalf("save 1: %v", err)
	}
	u2, _, err := s.Save(core.AttachedFile{Name: "same.png", MIMEType: "image/png", Handle: strings.NewReader("b")})
	if err != nil {
		t.Fatalf("save 2: %v", err)
	}
	if u1 == u2 {
		t.Fatalf("two uploads share a url: %q", u1)
	}
}

func TestSanitizeName(t *testing.T) {
	cases := []struct{ in, want string }{
		{"../../etc/passwd", "passwd"},
		{"note de frais.png", "note_de_frais.png"},
		{"ok-file_1.jpeg", "ok-file_1.jpeg"},
	}
	for i, tc := range cases {
		if got := sanitizeName(tc.in); got != tc.want {
			t.Fatalf("case %d: got %q, want %q", i, got, tc.want)
		}
	}
}
