package templates

import "testing"

func TestNixString(t *testing.T) {
	tests := map[string]string{
		"plain":        `"plain"`,
		`a "quoted"`:   `"a \"quoted\""`,
		"${notInterp}": `"\${notInterp}"`,
		"two\nlines":   `"two\nlines"`,
	}
	for in, want := range tests {
		if got := NixString(in); got != want {
			t.Errorf("NixString(%q) = %s, expected %s", in, got, want)
		}
	}
}

func TestNixPackage(t *testing.T) {
	if got := NixPackage("gtk4"); got != "pkgs.gtk4" {
		t.Errorf("got %s", got)
	}

	got := NixPackage("nixpkgs/41d292bfc37309790f70f4c120b79280ce40af16#poppler")
	want := `(import (builtins.fetchTarball "https://github.com/NixOS/nixpkgs/archive/41d292bfc37309790f70f4c120b79280ce40af16.tar.gz") { inherit system; }).poppler`
	if got != want {
		t.Errorf("got %s\n\texpected %s", got, want)
	}
}

func TestShellQuote(t *testing.T) {
	if got := ShellQuote("it's"); got != `'it'\''s'` {
		t.Errorf("got %s", got)
	}
}

func TestRenderFlakeRequiresIndex(t *testing.T) {
	if _, err := RenderFlake(FlakeParams{}); err == nil {
		t.Error("expected an error without an index input")
	}
}
