package core

import (
	"errors"
	"strings"
	"testing"
)

type fakeClipboard struct {
	text string
	err  error
}

func (f *fakeClipboard) WriteAll(text string) error {
	if f.err != nil {
		return f.err
	}
	f.text = text
	return nil
}

func TestCopyExport(t *testing.T) {
	cb := &fakeClipboard{}
	if err := CopyExport(cb, sampleDoc()); err != nil {
		t.Fatalf("CopyExport() error: %v", err)
	}
	if !strings.HasPrefix(cb.text, "{\n  \"mcpServers\"") || !strings.HasSuffix(cb.text, "}\n") {
		t.Errorf("clipboard = %q", cb.text)
	}
}

func TestCopyExport_Error(t *testing.T) {
	cb := &fakeClipboard{err: errors.New("no display")}
	if err := CopyExport(cb, sampleDoc()); err == nil {
		t.Error("CopyExport() should fail")
	}
}
